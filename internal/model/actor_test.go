package model

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rs2go/internal/constants"
)

func TestNewActor_Defaults(t *testing.T) {
	n := NewNpc(1, NewPosition(3200, 3200, 0), 10)

	assert.Equal(t, -1, n.Slot())
	assert.False(t, n.Registered())
	assert.False(t, n.Active())
	assert.True(t, n.Visible())
	assert.True(t, n.NeedsPlacement(), "new actors start with placement")
	assert.Equal(t, constants.FaceNone, n.FaceEntityPayload())

	p, s := n.Directions()
	assert.Equal(t, DirNone, p)
	assert.Equal(t, DirNone, s)
}

func TestActor_ProcessMovement(t *testing.T) {
	start := NewPosition(3200, 3200, 0)

	t.Run("walk", func(t *testing.T) {
		n := NewNpc(1, start, 10)
		n.ResetTick()
		n.Walking().SetPath(start, []Position{NewPosition(3203, 3200, 0)}, false)

		n.ProcessMovement()
		p, s := n.Directions()
		assert.Equal(t, DirEast, p)
		assert.Equal(t, DirNone, s)
		assert.Equal(t, NewPosition(3201, 3200, 0), n.Position())
	})

	t.Run("run", func(t *testing.T) {
		n := NewNpc(1, start, 10)
		n.ResetTick()
		n.Walking().SetPath(start, []Position{NewPosition(3203, 3203, 0)}, true)

		n.ProcessMovement()
		p, s := n.Directions()
		assert.Equal(t, DirNorthEast, p)
		assert.Equal(t, DirNorthEast, s)
		assert.Equal(t, NewPosition(3202, 3202, 0), n.Position())
	})

	t.Run("placement blocks movement", func(t *testing.T) {
		n := NewNpc(1, start, 10)
		n.Walking().SetPath(start, []Position{NewPosition(3203, 3200, 0)}, false)

		n.ProcessMovement()
		assert.Equal(t, start, n.Position())
	})
}

func TestActor_Teleport(t *testing.T) {
	n := NewNpc(1, NewPosition(3200, 3200, 0), 10)
	n.ResetTick()
	n.Walking().SetPath(n.Position(), []Position{NewPosition(3210, 3200, 0)}, false)

	dest := NewPosition(3000, 3000, 1)
	n.Teleport(dest)

	assert.Equal(t, dest, n.Position())
	assert.True(t, n.NeedsPlacement())
	assert.True(t, n.DiscardQueue())
	assert.Zero(t, n.Walking().Len())

	n.ResetTick()
	assert.False(t, n.NeedsPlacement())
	assert.False(t, n.DiscardQueue())
}

func TestActor_PayloadFlags(t *testing.T) {
	n := NewNpc(1, NewPosition(3200, 3200, 0), 10)

	n.Animate(866, 0)
	n.PlayGraphic(86, 100, 5)
	n.ForceChat("Hello")
	n.FaceCoordinate(NewPosition(3201, 3201, 0))

	f := n.Flags()
	assert.True(t, f.Has(FlagAnimation))
	assert.True(t, f.Has(FlagGraphic))
	assert.True(t, f.Has(FlagForcedChat))
	assert.True(t, f.Has(FlagFaceCoordinate))

	assert.Equal(t, Animation{ID: 866}, n.AnimationPayload())
	assert.Equal(t, Graphic{ID: 86, Height: 100, Delay: 5}, n.GraphicPayload())
	assert.Equal(t, "Hello", n.ForcedChatPayload())

	n.ResetTick()
	assert.False(t, f.Any())
}

func TestActor_FaceActor(t *testing.T) {
	n := NewNpc(1, NewPosition(3200, 3200, 0), 10)
	p := NewPlayer("bob", NewPosition(3201, 3200, 0), 220, 255)
	p.SetSlot(7)

	n.FaceActor(p)
	assert.Equal(t, 7+constants.FacePlayerOffset, n.FaceEntityPayload())
	assert.True(t, n.Flags().Has(FlagFaceEntity))

	n.ResetTick()
	assert.Equal(t, 7+constants.FacePlayerOffset, n.FaceEntityPayload(), "face target persists across ticks")

	n.ResetFace()
	assert.Equal(t, constants.FaceNone, n.FaceEntityPayload())
}

func TestActor_HitSlots(t *testing.T) {
	n := NewNpc(1, NewPosition(3200, 3200, 0), 10)

	assert.True(t, n.Hit(3, HitNormal))
	assert.True(t, n.Hit(2, HitPoison))
	assert.False(t, n.Hit(1, HitNormal), "third hit in one tick is rejected")

	hit, hp, maxHp := n.TakeHit(0)
	assert.Equal(t, 3, hit.Damage)
	assert.Equal(t, 7, hp)
	assert.Equal(t, 10, maxHp)

	// второй зритель видит те же значения, урон не применяется повторно
	hit, hp, _ = n.TakeHit(0)
	assert.Equal(t, 3, hit.Damage)
	assert.Equal(t, 7, hp)

	hit, hp, _ = n.TakeHit(1)
	assert.Equal(t, HitPoison, hit.Type)
	assert.Equal(t, 5, hp)
}

func TestActor_DeathHookFiresOnce(t *testing.T) {
	n := NewNpc(1, NewPosition(3200, 3200, 0), 5)

	deaths := 0
	n.SetDeathHook(func(a *Actor) {
		require.Same(t, n.Base(), a)
		deaths++
	})

	n.Hit(9, HitNormal)
	hit, hp, _ := n.TakeHit(0)
	assert.Equal(t, 5, hit.Damage, "damage is capped at remaining hitpoints")
	assert.Zero(t, hp)
	n.TakeHit(0)

	n.ResetTick()
	assert.False(t, n.Hit(1, HitNormal), "dead actors take no hits")
	assert.Equal(t, 1, deaths)
	assert.True(t, n.Dead())
}

func TestActor_ResetSettlesUnseenHits(t *testing.T) {
	n := NewNpc(1, NewPosition(3200, 3200, 0), 10)

	n.Hit(4, HitNormal)
	n.ResetTick()

	hp, _ := n.Hitpoints()
	assert.Equal(t, 6, hp, "hits nobody encoded still apply")
	assert.False(t, n.Flags().Has(FlagHit))
}

func TestActor_RequestResync(t *testing.T) {
	n := NewNpc(1, NewPosition(3200, 3200, 0), 10)
	n.ResetTick()

	n.RequestResync()
	assert.False(t, n.NeedsPlacement(), "resync applies from the next tick")

	n.ResetTick()
	assert.True(t, n.NeedsPlacement())
	assert.True(t, n.DiscardQueue())

	n.ResetTick()
	assert.False(t, n.NeedsPlacement())
}

func TestActor_ForceChatTruncates(t *testing.T) {
	n := NewNpc(1, NewPosition(3200, 3200, 0), 10)
	long := make([]byte, MaxForcedChat+20)
	for i := range long {
		long[i] = 'a'
	}

	n.ForceChat(string(long))
	assert.Len(t, n.ForcedChatPayload(), MaxForcedChat)
}

func TestActor_ForceChatKeepsRunesWhole(t *testing.T) {
	n := NewNpc(1, NewPosition(3200, 3200, 0), 10)

	// 99 ASCII bytes, then a two-byte rune across the limit
	n.ForceChat(strings.Repeat("a", MaxForcedChat-1) + "ёё")

	got := n.ForcedChatPayload()
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", MaxForcedChat-1), got)
}
