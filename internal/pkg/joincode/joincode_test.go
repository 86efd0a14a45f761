package joincode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.Len(t, code, Length)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected character %q in code %q", r, code)
		}
		seen[code] = true
	}
	// With a 36^6 space, 100 draws colliding would point at a broken generator
	assert.Greater(t, len(seen), 90)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc123", "ABC123"},
		{"  ABC123  ", "ABC123"},
		{"\taBc123\n", "ABC123"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestIsWellFormed(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"ABC123", true},
		{"ZZZZZZ", true},
		{"000000", true},
		{"abc123", false}, // lowercase is only valid after Normalize
		{"ABC12", false},
		{"ABC1234", false},
		{"ABC12!", false},
		{"ABC 12", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsWellFormed(tt.code), "code %q", tt.code)
	}
}
