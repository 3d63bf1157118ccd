package viewsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/model"
)

// encodeBits runs fn in bit mode and returns a reader over the result.
func encodeBits(t *testing.T, fn func(b *packet.Buffer)) (*packet.BitReader, int) {
	t.Helper()
	b := packet.NewBuffer(32)
	b.StartBitAccess()
	fn(b)
	b.FinishBitAccess()
	return packet.NewBitReader(b.Bytes(), 0), b.Len()
}

func readBits(t *testing.T, r *packet.BitReader, n int) int {
	t.Helper()
	v, err := r.ReadBits(n)
	require.NoError(t, err)
	return int(v)
}

func settledNpc(pos model.Position) *model.Npc {
	n := model.NewNpc(1, pos, 10)
	n.ResetTick()
	return n
}

func TestEncodeMovement_IdleIsOneZeroBit(t *testing.T) {
	n := settledNpc(model.NewPosition(3200, 3200, 0))

	b := packet.NewBuffer(4)
	b.StartBitAccess()
	EncodeMovement(b, n.Base(), false)

	assert.Equal(t, 1, len(b.Bytes()))
	r := packet.NewBitReader(b.Bytes(), 0)
	assert.Equal(t, 0, readBits(t, r, 1))
	b.FinishBitAccess()
	assert.Equal(t, []byte{0x00}, b.Bytes())
}

func TestEncodeMovement_StandWithUpdate(t *testing.T) {
	n := settledNpc(model.NewPosition(3200, 3200, 0))

	r, _ := encodeBits(t, func(b *packet.Buffer) { EncodeMovement(b, n.Base(), true) })
	assert.Equal(t, 1, readBits(t, r, 1))
	assert.Equal(t, constants.MovementStand, readBits(t, r, 2))
}

func TestEncodeMovement_Walk(t *testing.T) {
	start := model.NewPosition(3200, 3200, 0)
	n := settledNpc(start)
	n.Walking().SetPath(start, []model.Position{start.Translate(0, -1)}, false)
	n.ProcessMovement()

	r, _ := encodeBits(t, func(b *packet.Buffer) { EncodeMovement(b, n.Base(), true) })
	assert.Equal(t, 1, readBits(t, r, 1))
	assert.Equal(t, constants.MovementWalk, readBits(t, r, 2))
	assert.Equal(t, int(model.DirSouth), readBits(t, r, 3))
	assert.Equal(t, 1, readBits(t, r, 1), "attributes follow")
}

func TestEncodeMovement_Run(t *testing.T) {
	start := model.NewPosition(3200, 3200, 0)
	n := settledNpc(start)
	n.Walking().SetPath(start, []model.Position{start.Translate(-1, 1), start.Translate(-1, 2)}, true)
	n.ProcessMovement()

	r, _ := encodeBits(t, func(b *packet.Buffer) { EncodeMovement(b, n.Base(), false) })
	assert.Equal(t, 1, readBits(t, r, 1))
	assert.Equal(t, constants.MovementRun, readBits(t, r, 2))
	assert.Equal(t, int(model.DirNorthWest), readBits(t, r, 3))
	assert.Equal(t, int(model.DirNorth), readBits(t, r, 3))
	assert.Equal(t, 0, readBits(t, r, 1))
}

func TestEncodePlacement(t *testing.T) {
	p := model.NewPlayer("bob", model.NewPosition(3222, 3218, 1), 220, 255)
	p.UpdateMapRegion()
	p.Teleport(model.NewPosition(3225, 3220, 1))

	r, _ := encodeBits(t, func(b *packet.Buffer) { encodeSelfMovement(b, p, true) })
	assert.Equal(t, 1, readBits(t, r, 1))
	assert.Equal(t, constants.MovementPlacement, readBits(t, r, 2))
	assert.Equal(t, 1, readBits(t, r, 2), "plane")
	assert.Equal(t, 1, readBits(t, r, 1), "discard queue after teleport")
	assert.Equal(t, 1, readBits(t, r, 1), "attributes follow")
	assert.Equal(t, 52, readBits(t, r, constants.LocalCoordBits))
	assert.Equal(t, 57, readBits(t, r, constants.LocalCoordBits))
}

func TestEncodeRemove(t *testing.T) {
	r, n := encodeBits(t, EncodeRemove)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, readBits(t, r, 1))
	assert.Equal(t, 3, readBits(t, r, 2))
}

func TestDeltaBits(t *testing.T) {
	tests := []struct {
		d    int
		want uint32
	}{
		{0, 0},
		{1, 1},
		{15, 15},
		{-1, 31},
		{-15, 17},
		{-16, 16},
	}

	for _, tt := range tests {
		got := deltaBits(tt.d)
		assert.Equal(t, tt.want, got, "delta %d", tt.d)

		// знаковое расширение 5-битного поля, как на клиенте
		back := int(got)
		if back > 15 {
			back -= 32
		}
		assert.Equal(t, tt.d, back)
	}
}
