package viewsync

import (
	"log/slog"

	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/metrics"
	"github.com/udisondev/rs2go/internal/model"
)

// registry is the part of world.Registry a pass reads.
type registry[T model.Syncable] interface {
	Snapshot() []T
	Holds(slot int, actor *model.Actor) bool
}

// variant holds what differs between the player and the NPC pass.
type variant[T model.Syncable] struct {
	kind       string
	opcode     int
	slotBits   int
	terminator uint32
	// addBytes bounds the bit length of one add record, in bytes.
	addBytes int

	blocks   *blockTable[T]
	registry registry[T]
	view     func(viewer *model.Player) *model.LocalView[T]

	// eligible reports whether actor may be shown to viewer at all
	// (besides registration, visibility and distance).
	eligible func(viewer *model.Player, actor T) bool
	// writeAdd writes the add record of a newly admitted actor.
	writeAdd func(b *packet.Buffer, viewer *model.Player, slot int, actor T)
	// forced are flags added to the block of a newly admitted actor.
	forced func(actor T) model.UpdateFlag
	// writeSelf writes the viewer's own section; nil when there is none.
	writeSelf func(out, scratch *packet.Buffer, viewer *model.Player)

	admitPerTick int // 0 = unlimited
	viewDistance int
}

// passStats summarizes one pass.
type passStats struct {
	kept     int
	removed  int
	admitted int
	deferred int
	stale    int
}

// Pass builds one view update for viewer into out, using scratch for the
// deferred attribute blocks. Both buffers must be reset. Panics with a wrapped
// packet.ErrBufferOverflow when the buffers are too small.
//
// Phase 1 refreshes or evicts every tracked actor, phase 2 admits new ones in
// slot order, phase 3 appends the attribute blocks behind the list terminator.
func (v *variant[T]) Pass(viewer *model.Player, out, scratch *packet.Buffer) passStats {
	var st passStats
	view := v.view(viewer)
	origin := viewer.Position()

	out.StartVarShortHeader(v.opcode)
	out.StartBitAccess()

	if v.writeSelf != nil {
		v.writeSelf(out, scratch, viewer)
	}

	out.WriteBits(8, uint32(view.Len()))

	view.Each(func(slot int, actor T) {
		base := actor.Base()

		if !v.registry.Holds(slot, base) {
			reason := metrics.ReasonStaleEntry
			if base.Flags().Any() {
				reason = metrics.ReasonDirtyRemoved
			}
			slog.Error("view references unregistered actor",
				"kind", v.kind,
				"viewer", viewer.Name(),
				"slot", slot,
				"reason", reason)
			metrics.RecordInvariantViolation(v.kind, reason, 1)

			view.Remove(slot)
			EncodeRemove(out)
			st.stale++
			return
		}

		if !v.keeps(viewer, origin, actor) {
			view.Remove(slot)
			EncodeRemove(out)
			st.removed++
			return
		}

		flags := base.Flags().Get()
		update := flags != 0
		EncodeMovement(out, base, update)
		if update {
			v.blocks.Write(scratch, actor, flags)
		}
		st.kept++
	})

	for _, actor := range v.registry.Snapshot() {
		if view.Full() || (v.admitPerTick > 0 && st.admitted >= v.admitPerTick) {
			break
		}
		base := actor.Base()
		slot := base.Slot()
		if slot < 0 || view.HasSlot(slot) || !v.admissible(viewer, origin, actor) {
			continue
		}
		if !v.hasRoom(out, scratch) {
			st.deferred++
			break
		}

		view.Add(slot, actor)
		v.writeAdd(out, viewer, slot, actor)
		v.blocks.Write(scratch, actor, base.Flags().Get()|v.forced(actor))
		st.admitted++
	}

	if scratch.Len() > 0 {
		out.WriteBits(v.slotBits, v.terminator)
		out.FinishBitAccess()
		out.WriteBytes(scratch.Bytes())
	} else {
		out.FinishBitAccess()
	}
	out.FinishVarHeader()

	return st
}

// keeps reports whether a tracked actor stays tracked. An actor pending
// placement is evicted and re-admitted with its new position.
func (v *variant[T]) keeps(viewer *model.Player, origin model.Position, actor T) bool {
	base := actor.Base()
	return base.Active() &&
		base.Visible() &&
		!base.NeedsPlacement() &&
		origin.WithinDistance(base.Position(), v.viewDistance) &&
		v.eligible(viewer, actor)
}

func (v *variant[T]) admissible(viewer *model.Player, origin model.Position, actor T) bool {
	base := actor.Base()
	return base != viewer.Base() &&
		base.Active() &&
		base.Visible() &&
		origin.WithinDistance(base.Position(), v.viewDistance) &&
		v.eligible(viewer, actor)
}

// hasRoom reports whether one more add record and its largest attribute block
// fit into both buffers, leaving space for the terminator.
func (v *variant[T]) hasRoom(out, scratch *packet.Buffer) bool {
	const terminatorBytes = 2
	if scratch.Len()+v.blocks.reserve > scratch.Cap() {
		return false
	}
	return out.Len()+v.addBytes+terminatorBytes+scratch.Len()+v.blocks.reserve <= out.Cap()
}
