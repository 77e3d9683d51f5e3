package datautil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dataloop-ml/datakit/errors"
)

type sizeUnit struct {
	name  string
	bytes int64
}

// Binary units first so that "MiB" is not matched by the "B" of "MB".
var sizeUnits = []sizeUnit{
	{"PiB", 1 << 50},
	{"TiB", 1 << 40},
	{"GiB", 1 << 30},
	{"MiB", 1 << 20},
	{"KiB", 1 << 10},
}

var decimalUnits = []sizeUnit{
	{"PB", 1e15},
	{"TB", 1e12},
	{"GB", 1e9},
	{"MB", 1e6},
	{"KB", 1e3},
}

// SizeStr renders a byte count for humans: two decimals with the largest
// binary unit that yields a value of at least one, plain bytes below one
// KiB. Non-positive counts render as "Unknown size".
func SizeStr(size int64) string {
	if size <= 0 {
		return "Unknown size"
	}
	f := float64(size)
	for _, u := range sizeUnits {
		if value := f / float64(u.bytes); value >= 1.0 {
			return fmt.Sprintf("%.2f %s", value, u.name)
		}
	}
	return fmt.Sprintf("%d bytes", size)
}

// ConvertFileSizeToInt parses a size expression like "1MiB" or "5GB"
// into a byte count. Binary units (KiB, MiB, GiB, TiB, PiB) are powers
// of two, decimal units (KB, MB, GB, TB, PB) powers of ten. A decimal
// unit written with a trailing lowercase 'b' denotes bits and the result
// is divided by eight. A bare integer is returned as-is.
func ConvertFileSizeToInt(size string) (int64, error) {
	s := strings.TrimSpace(size)
	upper := strings.ToUpper(s)

	for _, u := range sizeUnits {
		suffix := strings.ToUpper(u.name)
		if strings.HasSuffix(upper, suffix) {
			n, err := parseSizePrefix(s, len(suffix))
			if err != nil {
				return 0, err
			}
			return n * u.bytes, nil
		}
	}

	for _, u := range decimalUnits {
		if strings.HasSuffix(upper, u.name) {
			n, err := parseSizePrefix(s, len(u.name))
			if err != nil {
				return 0, err
			}
			n *= u.bytes
			// A lowercase trailing 'b' means bits, not bytes.
			if strings.HasSuffix(s, "b") {
				n /= 8
			}
			return n, nil
		}
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	return 0, errors.InvalidSize(size)
}

func parseSizePrefix(s string, suffixLen int) (int64, error) {
	prefix := strings.TrimSpace(s[:len(s)-suffixLen])
	n, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, errors.InvalidSize(s)
	}
	return n, nil
}
