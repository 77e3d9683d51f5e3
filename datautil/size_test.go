package datautil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataloop-ml/datakit/errors"
)

func TestSizeStr(t *testing.T) {
	tests := []struct {
		name string
		size int64
		want string
	}{
		{"unknown", 0, "Unknown size"},
		{"negative", -1, "Unknown size"},
		{"bytes", 500, "500 bytes"},
		{"kib", 1024, "1.00 KiB"},
		{"mib", 5 << 20, "5.00 MiB"},
		{"gib_fraction", 1610612736, "1.50 GiB"}, // 1.5 * 2^30
		{"tib", 1 << 40, "1.00 TiB"},
		{"pib", 3 << 50, "3.00 PiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SizeStr(tt.size))
		})
	}
}

func TestConvertFileSizeToInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1KiB", 1024},
		{"1MiB", 1048576},
		{"2GiB", 2 << 30},
		{"1TiB", 1 << 40},
		{"1PiB", 1 << 50},
		{"5KB", 5000},
		{"5MB", 5000000},
		{"5GB", 5000000000},
		{"8Gb", 1000000000}, // lowercase trailing b means bits
		{"800Mb", 100000000},
		{"1234", 1234},
		{" 10 MiB ", 10 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ConvertFileSizeToInt(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertFileSizeToInt_Invalid(t *testing.T) {
	for _, in := range []string{"", "GB", "1.5GB", "ten MiB", "5XB"} {
		t.Run(in, func(t *testing.T) {
			_, err := ConvertFileSizeToInt(in)
			require.Error(t, err)

			var serr *errors.Error
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, errors.KindInvalidSize, serr.Kind)
		})
	}
}
