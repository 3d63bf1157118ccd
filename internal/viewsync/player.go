package viewsync

import (
	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/model"
)

func newPlayerVariant(reg registry[*model.Player], cfg Config) *variant[*model.Player] {
	return &variant[*model.Player]{
		kind:       kindPlayer,
		opcode:     constants.OpcodePlayerUpdate,
		slotBits:   constants.PlayerSlotBits,
		terminator: constants.PlayerListTerminator,
		addBytes:   3, // 11+1+1+5+5 bits

		blocks:   PlayerBlocks,
		registry: reg,
		view:     (*model.Player).LocalPlayers,

		eligible:  playerEligible,
		writeAdd:  writePlayerAdd,
		forced:    playerForced,
		writeSelf: writePlayerSelf,

		admitPerTick: cfg.PlayerAdmitPerTick,
		viewDistance: cfg.ViewDistance,
	}
}

func playerEligible(_ *model.Player, p *model.Player) bool {
	return p.LoggedIn()
}

// writePlayerSelf writes the viewer's own movement and queues its block first,
// so the client finds it at the head of the block list.
func writePlayerSelf(out, scratch *packet.Buffer, viewer *model.Player) {
	flags := viewer.Flags().Get() &^ selfExcluded
	update := flags != 0

	encodeSelfMovement(out, viewer, update)
	if update {
		PlayerBlocks.Write(scratch, viewer, flags)
	}
}

// writePlayerAdd: slot, update required, discard queue, delta Y, delta X.
func writePlayerAdd(b *packet.Buffer, viewer *model.Player, slot int, p *model.Player) {
	dx, dy := relativeDelta(viewer.Position(), p.Position())

	b.WriteBits(constants.PlayerSlotBits, uint32(slot))
	b.WriteBits(1, 1)
	b.WriteBits(1, 1)
	b.WriteBits(constants.DeltaBits, deltaBits(dy))
	b.WriteBits(constants.DeltaBits, deltaBits(dx))
}

// playerForced makes a newly admitted player carry its full look and its
// current face target.
func playerForced(p *model.Player) model.UpdateFlag {
	f := model.FlagAppearance
	if p.FaceEntityPayload() != constants.FaceNone {
		f |= model.FlagFaceEntity
	}
	return f
}
