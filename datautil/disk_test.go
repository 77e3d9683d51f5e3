package datautil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasSufficientDiskSpace(t *testing.T) {
	dir := t.TempDir()

	assert.True(t, HasSufficientDiskSpace(1, dir))
	assert.False(t, HasSufficientDiskSpace(math.MaxInt64, dir))
}

func TestHasSufficientDiskSpace_UnprobeableDirIsPermissive(t *testing.T) {
	assert.True(t, HasSufficientDiskSpace(math.MaxInt64, "/does/not/exist"))
}
