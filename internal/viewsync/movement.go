package viewsync

import (
	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/model"
)

// Movement records are written in bit mode. Every record other than the idle
// one starts with a set bit followed by a two-bit movement code.

// EncodeMovement writes the movement of an already tracked actor: run, walk or
// stand, in that priority. update reports whether an attribute block follows.
// An idle actor with no attribute block costs a single zero bit.
func EncodeMovement(b *packet.Buffer, a *model.Actor, update bool) {
	primary, secondary := a.Directions()

	switch {
	case primary == model.DirNone:
		if !update {
			b.WriteBits(1, 0)
			return
		}
		b.WriteBits(1, 1)
		b.WriteBits(2, constants.MovementStand)

	case secondary == model.DirNone:
		b.WriteBits(1, 1)
		b.WriteBits(2, constants.MovementWalk)
		b.WriteBits(3, uint32(primary))
		b.WriteBit(update)

	default:
		b.WriteBits(1, 1)
		b.WriteBits(2, constants.MovementRun)
		b.WriteBits(3, uint32(primary))
		b.WriteBits(3, uint32(secondary))
		b.WriteBit(update)
	}
}

// EncodePlacement writes an absolute placement of the viewer's own actor,
// with local coordinates relative to the loaded region around base.
func EncodePlacement(b *packet.Buffer, a *model.Actor, base model.Position, update bool) {
	pos := a.Position()

	b.WriteBits(1, 1)
	b.WriteBits(2, constants.MovementPlacement)
	b.WriteBits(2, uint32(pos.Plane))
	b.WriteBit(a.DiscardQueue())
	b.WriteBit(update)
	b.WriteBits(constants.LocalCoordBits, uint32(pos.LocalY(base)))
	b.WriteBits(constants.LocalCoordBits, uint32(pos.LocalX(base)))
}

// EncodeRemove writes the eviction marker for a tracked actor.
func EncodeRemove(b *packet.Buffer) {
	b.WriteBits(1, 1)
	b.WriteBits(2, constants.MovementPlacement)
}

// encodeSelfMovement writes the viewer's own movement; placement wins over
// any step taken this tick.
func encodeSelfMovement(b *packet.Buffer, p *model.Player, update bool) {
	if p.NeedsPlacement() {
		EncodePlacement(b, p.Base(), p.RegionBase(), update)
		return
	}
	EncodeMovement(b, p.Base(), update)
}

// deltaBits wraps a signed tile delta into the DeltaBits two's complement field.
func deltaBits(d int) uint32 {
	return uint32(d) & (1<<constants.DeltaBits - 1)
}

// relativeDelta is the delta written in add records: viewer minus actor.
func relativeDelta(viewer, actor model.Position) (dx, dy int) {
	return actor.Delta(viewer)
}
