package datautil

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// HasSufficientDiskSpace reports whether the filesystem holding dir has
// strictly more than needed bytes free. When the filesystem cannot be
// probed the check degrades to true rather than blocking the caller.
func HasSufficientDiskSpace(needed int64, dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return true
	}

	var st unix.Statfs_t
	if err := unix.Statfs(abs, &st); err != nil {
		return true
	}

	free := int64(st.Bavail) * int64(st.Bsize)
	return needed < free
}
