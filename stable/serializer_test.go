package stable

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataloop-ml/datakit/errors"
)

type sample struct {
	Name    string
	Count   int
	Ratio   float64
	Tags    []string
	private int
}

func TestSerialize_Deterministic(t *testing.T) {
	v := map[string]any{
		"name":   "train",
		"shards": []int{1, 2, 3},
		"nested": map[string]any{"a": 1, "b": 2, "c": 3},
		"ok":     true,
	}

	first, err := Serialize(v)
	require.NoError(t, err)
	second, err := Serialize(v)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSerialize_MapInsertionOrderIrrelevant(t *testing.T) {
	a := map[string]int{}
	for _, k := range []string{"x", "y", "z", "w", "v", "u"} {
		a[k] = len(k)
	}
	b := map[string]int{}
	for _, k := range []string{"u", "v", "w", "x", "y", "z"} {
		b[k] = len(k)
	}

	ab, err := Serialize(a)
	require.NoError(t, err)
	bb, err := Serialize(b)
	require.NoError(t, err)

	assert.Equal(t, ab, bb)
}

func TestSerialize_EqualTextEncodesIdentically(t *testing.T) {
	// Two distinct string objects with equal content must not diverge.
	s1 := strings.Repeat("ab", 2)
	s2 := "abab"
	one, err := Serialize([]any{s1, s2})
	require.NoError(t, err)
	two, err := Serialize([]any{s1, s1})
	require.NoError(t, err)
	assert.Equal(t, one, two)

	// The same holds through pointers: text is never memoized by identity.
	p1, p2 := new(string), new(string)
	*p1, *p2 = "shared text", "shared text"
	shared, err := Serialize([]any{p1, p1})
	require.NoError(t, err)
	distinct, err := Serialize([]any{p1, p2})
	require.NoError(t, err)
	assert.Equal(t, shared, distinct)
}

func TestSerialize_SharedReferenceMemoized(t *testing.T) {
	inner := &sample{Name: "shared", Count: 7}
	b, err := Serialize([]any{inner, inner})
	require.NoError(t, err)

	decoded, err := Deserialize(b)
	require.NoError(t, err)
	list, ok := decoded.([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, list[0], list[1])

	rec, ok := list[0].(Record)
	require.True(t, ok)
	assert.Equal(t, "github.com/dataloop-ml/datakit/stable.sample", rec.Type)
	assert.Equal(t, int64(7), rec.Fields["Count"])
	assert.NotContains(t, rec.Fields, "private")
}

func TestSerialize_StructFieldsInDeclarationOrder(t *testing.T) {
	one, err := Serialize(sample{Name: "a", Count: 1, Ratio: 0.5, Tags: []string{"t"}})
	require.NoError(t, err)
	two, err := Serialize(sample{Name: "a", Count: 1, Ratio: 0.5, Tags: []string{"t"}})
	require.NoError(t, err)
	assert.Equal(t, one, two)
}

func TestSerialize_UnsupportedType(t *testing.T) {
	_, err := Serialize(map[string]any{"ch": make(chan int)})
	require.Error(t, err)

	var serr *errors.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, errors.KindUnsupportedType, serr.Kind)
	assert.Contains(t, err.Error(), "chan int")
}

type cachingTokenizer struct {
	Vocab map[string]int
	cache map[string][]int
}

func (c *cachingTokenizer) DetachCache() any {
	saved := c.cache
	c.cache = map[string][]int{}
	return saved
}

func (c *cachingTokenizer) RestoreCache(saved any) {
	c.cache = saved.(map[string][]int)
}

func TestSerialize_CacheSuppressed(t *testing.T) {
	cold := &cachingTokenizer{Vocab: map[string]int{"a": 1}, cache: map[string][]int{}}
	warm := &cachingTokenizer{Vocab: map[string]int{"a": 1}, cache: map[string][]int{"hello": {1, 2, 3}}}

	cb, err := Serialize(cold)
	require.NoError(t, err)
	wb, err := Serialize(warm)
	require.NoError(t, err)
	assert.Equal(t, cb, wb, "ephemeral cache state must not affect the output")

	// The cache is restored after encoding.
	assert.Equal(t, map[string][]int{"hello": {1, 2, 3}}, warm.cache)
}

type fingerprint struct {
	Hi uint64
	Lo uint64
}

func TestRegistry_CustomEncoder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(reflect.TypeOf(fingerprint{}), func(s *Serializer, v reflect.Value) error {
		fp := v.Interface().(fingerprint)
		return s.Reduce("fingerprint.New", fp.Hi, fp.Lo)
	})

	b, err := SerializeWith(reg, fingerprint{Hi: 1, Lo: 2})
	require.NoError(t, err)

	decoded, err := Deserialize(b)
	require.NoError(t, err)
	red, ok := decoded.(Reduced)
	require.True(t, ok)
	assert.Equal(t, "fingerprint.New", red.Constructor)
	// Small unsigned values land in the compact integer representation.
	assert.Equal(t, []any{int64(1), int64(2)}, red.Args)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	reg := NewRegistry()
	typ := reflect.TypeOf(fingerprint{})
	reg.Register(typ, func(s *Serializer, v reflect.Value) error {
		return s.Reduce("first")
	})
	reg.Register(typ, func(s *Serializer, v reflect.Value) error {
		return s.Reduce("second")
	})

	assert.Equal(t, 1, reg.Len())

	b, err := SerializeWith(reg, fingerprint{})
	require.NoError(t, err)
	decoded, err := Deserialize(b)
	require.NoError(t, err)
	assert.Equal(t, "second", decoded.(Reduced).Constructor)
}

func TestRegistry_LookupMiss(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Lookup(reflect.TypeOf(0))
	assert.False(t, ok)
}

func TestDigest_StableAcrossCalls(t *testing.T) {
	v := map[string]any{"split": "validation", "take": 128}

	d1, err := Digest(v)
	require.NoError(t, err)
	d2, err := Digest(v)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)
}

func TestShardedPath(t *testing.T) {
	digest := "0b7e2c734dfd2e4d011fedcabed65ecce45f8040fc5248b344895c9a2d52d39f"
	path := ShardedPath(digest)

	assert.True(t, strings.HasSuffix(path, "-"+digest))
	assert.Contains(t, path, "-00000-")

	// Same digest, same shard.
	assert.Equal(t, path, ShardedPath(digest))
}
