package relsign

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestIsVersionAtLeastMin(t *testing.T) {
	tests := []struct {
		v          string
		minVersion string
		want       bool
	}{
		// Minimum version undefined
		{"1.2.3", "", true},

		// Either side not a release
		{"dev", "dev", true},
		{"dev", "1.2.3", true},
		{"1.2.3", "dev", true},
		{"1.2.3", "1.2", true},
		{"a.b.c", "1.2.3", true},

		{"1.2.3", "1.2.3", true},
		{"2.2.3", "1.2.3", true},
		{"1.2.4", "1.2.3", true},
		{"1.2.3", "2.2.3", false},
		{"1.2.3", "1.3.3", false},
		{"1.2.3", "1.2.4", false},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, IsVersionAtLeastMin(test.v, test.minVersion), "%s >= %s", test.v, test.minVersion)
	}
}
