package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/rs2go/internal/constants"
)

func TestNewPlayer(t *testing.T) {
	p := NewPlayer("zezima", NewPosition(3222, 3218, 0), 220, 255)

	assert.Equal(t, "zezima", p.Name())
	assert.Equal(t, NameToLong("zezima"), p.NameHash())
	assert.Equal(t, DefaultAppearance(), p.Appearance())
	assert.Equal(t, 220, p.LocalPlayers().Capacity())
	assert.Equal(t, 255, p.LocalNpcs().Capacity())
	assert.Same(t, &p.Actor, p.Base())

	hp, maxHp := p.Hitpoints()
	assert.Equal(t, DefaultPlayerHitpoints, hp)
	assert.Equal(t, DefaultPlayerHitpoints, maxHp)
}

func TestPlayer_FaceIndex(t *testing.T) {
	p := NewPlayer("bob", NewPosition(3200, 3200, 0), 220, 255)
	p.SetSlot(3)
	assert.Equal(t, 3+constants.FacePlayerOffset, p.FaceIndex())

	n := NewNpc(1, NewPosition(3200, 3200, 0), 10)
	n.SetSlot(3)
	assert.Equal(t, 3, n.FaceIndex())
}

func TestPlayer_ChatCopiesText(t *testing.T) {
	p := NewPlayer("bob", NewPosition(3200, 3200, 0), 220, 255)
	text := []byte{1, 2, 3}

	p.Chat(ChatMessage{Effects: 1, Colour: 2, Text: text})
	text[0] = 9

	msg := p.ChatPayload()
	assert.Equal(t, []byte{1, 2, 3}, msg.Text)
	assert.True(t, p.Flags().Has(FlagChat))
}

func TestPlayer_SetAppearanceFlags(t *testing.T) {
	p := NewPlayer("bob", NewPosition(3200, 3200, 0), 220, 255)
	a := DefaultAppearance()
	a.Gender = GenderFemale

	p.SetAppearance(a)
	assert.True(t, p.Flags().Has(FlagAppearance))
	assert.Equal(t, GenderFemale, p.Appearance().Gender)
}

func TestPlayer_UpdateMapRegion(t *testing.T) {
	p := NewPlayer("bob", NewPosition(3222, 3218, 0), 220, 255)
	p.ResetTick()

	assert.True(t, p.UpdateMapRegion(), "first check always loads a region")
	assert.True(t, p.NeedsPlacement())
	p.ResetTick()

	p.Teleport(NewPosition(3230, 3218, 0))
	assert.False(t, p.UpdateMapRegion(), "still inside the loaded area")

	p.Teleport(NewPosition(3222+40, 3218, 0))
	assert.True(t, p.UpdateMapRegion(), "crossed the edge margin")
	assert.Equal(t, NewPosition(3262, 3218, 0), p.RegionBase())

	p.Teleport(NewPosition(3262, 3218, 1))
	assert.True(t, p.UpdateMapRegion(), "plane change reloads")
}
