package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition_Region(t *testing.T) {
	p := NewPosition(3222, 3218, 0)

	assert.Equal(t, (3222>>3)-6, p.RegionX())
	assert.Equal(t, (3218>>3)-6, p.RegionY())

	// центр загруженной области лежит в диапазоне 48..55
	assert.Equal(t, 54, p.LocalX(p))
	assert.Equal(t, 50, p.LocalY(p))
}

func TestPosition_LocalRelativeToBase(t *testing.T) {
	base := NewPosition(3200, 3200, 0)
	p := NewPosition(3210, 3195, 0)

	assert.Equal(t, 58, p.LocalX(base))
	assert.Equal(t, 43, p.LocalY(base))
}

func TestPosition_WithinDistance(t *testing.T) {
	tests := []struct {
		name  string
		other Position
		want  bool
	}{
		{"same tile", NewPosition(100, 100, 0), true},
		{"edge x", NewPosition(115, 100, 0), true},
		{"edge negative y", NewPosition(100, 85, 0), true},
		{"one past", NewPosition(116, 100, 0), false},
		{"other plane", NewPosition(100, 100, 1), false},
	}

	origin := NewPosition(100, 100, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, origin.WithinDistance(tt.other, 15))
		})
	}
}

func TestPosition_DeltaTranslate(t *testing.T) {
	a := NewPosition(100, 100, 0)
	b := a.Translate(2, -3)

	dx, dy := a.Delta(b)
	assert.Equal(t, 2, dx)
	assert.Equal(t, -3, dy)
	assert.Equal(t, NewPosition(100, 100, 0), a, "Translate must not modify receiver")
}
