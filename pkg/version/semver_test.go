package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextVersionNumber(t *testing.T) {
	cases := []struct {
		name string
		prev string
		want string
	}{
		{"increments patch", "1.0.0", "1.0.1"},
		{"keeps major and minor", "2.3.7", "2.3.8"},
		{"large patch", "1.0.99", "1.0.100"},
		{"empty resets", "", "1.0.0"},
		{"garbage resets", "abc", "1.0.0"},
		{"two components reset", "1.0", "1.0.0"},
		{"four components reset", "1.0.0.0", "1.0.0"},
		{"non-numeric patch resets", "1.0.x", "1.0.0"},
		{"signed component resets", "-1.0.0", "1.0.0"},
		{"plus-signed component resets", "1.+2.0", "1.0.0"},
		{"blank component resets", "1..0", "1.0.0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, nextVersionNumber(tc.prev))
		})
	}
}

func TestParseSemver(t *testing.T) {
	major, minor, patch, ok := parseSemver("4.12.3")
	assert.True(t, ok)
	assert.Equal(t, 4, major)
	assert.Equal(t, 12, minor)
	assert.Equal(t, 3, patch)

	_, _, _, ok = parseSemver("v1.0.0")
	assert.False(t, ok)
}
