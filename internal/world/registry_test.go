package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rs2go/internal/model"
)

func newNpc() *model.Npc {
	return model.NewNpc(1, model.NewPosition(3200, 3200, 0), 10)
}

func TestRegistry_FirstFit(t *testing.T) {
	r := NewRegistry[*model.Npc](1, 5)
	assert.Equal(t, 4, r.Capacity())

	npcs := make([]*model.Npc, 4)
	for i := range npcs {
		npcs[i] = newNpc()
		slot, err := r.Register(npcs[i])
		require.NoError(t, err)
		assert.Equal(t, i+1, slot)
		assert.Equal(t, slot, npcs[i].Slot())
		assert.True(t, npcs[i].Active())
	}

	_, err := r.Register(newNpc())
	assert.ErrorIs(t, err, ErrRegistryFull)

	// освобождаем 3 и 2, следующая регистрация получает наименьший слот
	r.Unregister(3)
	r.Unregister(2)
	assert.Equal(t, -1, npcs[1].Slot())
	assert.False(t, npcs[2].Active())

	slot, err := r.Register(newNpc())
	require.NoError(t, err)
	assert.Equal(t, 2, slot)
}

func TestRegistry_RegisterTwice(t *testing.T) {
	r := NewRegistry[*model.Npc](1, 5)
	n := newNpc()
	_, err := r.Register(n)
	require.NoError(t, err)

	_, err = r.Register(n)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_SnapshotOrderAndStability(t *testing.T) {
	r := NewRegistry[*model.Npc](1, 10)
	for range 5 {
		_, err := r.Register(newNpc())
		require.NoError(t, err)
	}

	snap := r.Snapshot()
	require.Len(t, snap, 5)
	for i, n := range snap {
		assert.Equal(t, i+1, n.Slot())
	}
	assert.Same(t, &snap[0], &r.Snapshot()[0], "unchanged registry reuses the snapshot")

	removed, ok := r.Unregister(2)
	require.True(t, ok)
	assert.Len(t, snap, 5, "old snapshot is not modified by unregister")
	assert.Same(t, removed, snap[1])

	next := r.Snapshot()
	assert.Len(t, next, 4)
}

func TestRegistry_GetHolds(t *testing.T) {
	r := NewRegistry[*model.Npc](1, 4)
	n := newNpc()
	slot, _ := r.Register(n)

	got, ok := r.Get(slot)
	assert.True(t, ok)
	assert.Same(t, n, got)
	assert.True(t, r.Holds(slot, n.Base()))
	assert.False(t, r.Holds(slot, newNpc().Base()))

	_, ok = r.Get(0)
	assert.False(t, ok)
	_, ok = r.Get(100)
	assert.False(t, ok)

	_, ok = r.Unregister(slot)
	assert.True(t, ok)
	_, ok = r.Unregister(slot)
	assert.False(t, ok)
}
