package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestNpc(slot int) *Npc {
	n := NewNpc(1, NewPosition(3200, 3200, 0), 10)
	n.SetSlot(slot)
	return n
}

func TestLocalView_AddContainsRemove(t *testing.T) {
	v := NewLocalView[*Npc](3)
	a, b := newTestNpc(1), newTestNpc(2)

	assert.True(t, v.Add(1, a))
	assert.False(t, v.Add(1, a), "duplicate slot")
	assert.True(t, v.Add(2, b))

	assert.True(t, v.Contains(1, a))
	assert.False(t, v.Contains(1, b), "membership checks identity")
	assert.Equal(t, []int{1, 2}, v.Slots())

	assert.True(t, v.Remove(1))
	assert.False(t, v.Remove(1))
	assert.Equal(t, []int{2}, v.Slots())
}

func TestLocalView_Capacity(t *testing.T) {
	v := NewLocalView[*Npc](2)
	v.Add(1, newTestNpc(1))
	v.Add(2, newTestNpc(2))

	assert.True(t, v.Full())
	assert.False(t, v.Add(3, newTestNpc(3)))
	assert.Equal(t, 2, v.Len())
}

func TestLocalView_EachAllowsRemoval(t *testing.T) {
	v := NewLocalView[*Npc](4)
	for i := 1; i <= 4; i++ {
		v.Add(i, newTestNpc(i))
	}

	var seen []int
	v.Each(func(slot int, _ *Npc) {
		seen = append(seen, slot)
		if slot%2 == 0 {
			v.Remove(slot)
		}
	})

	assert.Equal(t, []int{1, 2, 3, 4}, seen)
	assert.Equal(t, []int{1, 3}, v.Slots())
}

func TestLocalView_Purge(t *testing.T) {
	v := NewLocalView[*Npc](4)
	a := newTestNpc(1)
	v.Add(1, a)
	v.Add(2, newTestNpc(2))

	assert.Equal(t, 1, v.Purge(a.Base()))
	assert.False(t, v.HasSlot(1))
	assert.Equal(t, 1, v.Len())

	v.Clear()
	assert.Zero(t, v.Len())
}
