package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalkingQueue_Interpolates(t *testing.T) {
	q := NewWalkingQueue()
	start := NewPosition(10, 10, 0)

	q.SetPath(start, []Position{NewPosition(12, 12, 0), NewPosition(12, 10, 0)}, false)
	assert.Equal(t, 4, q.Len())

	want := []Direction{DirNorthEast, DirNorthEast, DirSouth, DirSouth}
	pos := start
	for _, d := range want {
		var got Direction
		pos, got = q.Next(pos)
		assert.Equal(t, d, got)
	}
	assert.Equal(t, NewPosition(12, 10, 0), pos)

	_, d := q.Next(pos)
	assert.Equal(t, DirNone, d)
}

func TestWalkingQueue_Cap(t *testing.T) {
	q := NewWalkingQueue()
	q.SetPath(NewPosition(0, 0, 0), []Position{NewPosition(200, 0, 0)}, false)
	assert.Equal(t, MaxWalkingSteps, q.Len())
}

func TestWalkingQueue_NonAdjacentClears(t *testing.T) {
	q := NewWalkingQueue()
	q.SetPath(NewPosition(10, 10, 0), []Position{NewPosition(15, 10, 0)}, true)
	assert.True(t, q.Running())

	pos, d := q.Next(NewPosition(30, 30, 0))
	assert.Equal(t, DirNone, d)
	assert.Equal(t, NewPosition(30, 30, 0), pos)
	assert.Zero(t, q.Len())
}
