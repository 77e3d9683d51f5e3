package datautil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataloop-ml/datakit/errors"
)

func TestZipDict(t *testing.T) {
	sizes := map[string]int{"train": 800, "test": 200}
	shards := map[string]int{"train": 8, "test": 2}

	seq, err := ZipDict(sizes, shards)
	require.NoError(t, err)

	var keys []string
	var rows [][]int
	for k, vs := range seq {
		keys = append(keys, k)
		rows = append(rows, vs)
	}

	assert.Equal(t, []string{"test", "train"}, keys, "keys are visited sorted")
	assert.Equal(t, [][]int{{200, 2}, {800, 8}}, rows)
}

func TestZipDict_KeyMismatch(t *testing.T) {
	a := map[string]int{"train": 1, "test": 2}
	b := map[string]int{"train": 1}

	_, err := ZipDict(a, b)
	require.Error(t, err)

	var serr *errors.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, errors.KindKeyMismatch, serr.Kind)
}

func TestZipDict_Empty(t *testing.T) {
	seq, err := ZipDict[string, int]()
	require.NoError(t, err)
	for range seq {
		t.Fatal("no keys expected")
	}
}

func TestUniqueValues(t *testing.T) {
	in := slices.Values([]string{"a", "b", "a", "c", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, slices.Collect(UniqueValues(in)))
}

func TestUniqueValues_EarlyStop(t *testing.T) {
	in := slices.Values([]int{1, 2, 3, 4})
	var got []int
	for v := range UniqueValues(in) {
		got = append(got, v)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []int{1, 2}, got)
}

func TestFirstNonNil(t *testing.T) {
	i, v := FirstNonNil([]any{nil, nil, "x", "y"})
	assert.Equal(t, 2, i)
	assert.Equal(t, "x", v)

	i, v = FirstNonNil([]any{nil, nil})
	assert.Equal(t, -1, i)
	assert.Nil(t, v)

	i, v = FirstNonNil(nil)
	assert.Equal(t, -1, i)
	assert.Nil(t, v)
}
