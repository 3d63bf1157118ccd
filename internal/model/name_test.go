package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameToLong(t *testing.T) {
	tests := []struct {
		name string
		in   string
		back string
	}{
		{"lower", "zezima", "zezima"},
		{"mixed case", "Zezima", "zezima"},
		{"space", "mod ash", "mod_ash"},
		{"digits", "player99", "player99"},
		{"trailing space", "bob ", "bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NameToLong(tt.in)
			assert.Positive(t, l)
			assert.Equal(t, tt.back, LongToName(l))
		})
	}

	assert.Equal(t, int64(1), NameToLong("a"))
	assert.Equal(t, int64(37+2), NameToLong("ab"))
	assert.Empty(t, LongToName(0))
}

func TestFormatName(t *testing.T) {
	assert.Equal(t, "Mod Ash", FormatName("mod_ash"))
	assert.Equal(t, "Zezima", FormatName("ZEZIMA"))
}
