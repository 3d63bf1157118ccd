package viewsync

import (
	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/model"
)

func newNpcVariant(reg registry[*model.Npc], cfg Config) *variant[*model.Npc] {
	return &variant[*model.Npc]{
		kind:       kindNpc,
		opcode:     constants.OpcodeNpcUpdate,
		slotBits:   constants.NpcSlotBits,
		terminator: constants.NpcListTerminator,
		addBytes:   5, // 14+5+5+1+12+1 bits

		blocks:   NpcBlocks,
		registry: reg,
		view:     (*model.Player).LocalNpcs,

		eligible: func(*model.Player, *model.Npc) bool { return true },
		writeAdd: writeNpcAdd,
		forced:   npcForced,

		admitPerTick: cfg.NpcAdmitPerTick,
		viewDistance: cfg.ViewDistance,
	}
}

// writeNpcAdd: slot, delta Y, delta X, discard queue, type, update required.
func writeNpcAdd(b *packet.Buffer, viewer *model.Player, slot int, n *model.Npc) {
	dx, dy := relativeDelta(viewer.Position(), n.Position())

	b.WriteBits(constants.NpcSlotBits, uint32(slot))
	b.WriteBits(constants.DeltaBits, deltaBits(dy))
	b.WriteBits(constants.DeltaBits, deltaBits(dx))
	b.WriteBits(1, 1)
	b.WriteBits(constants.NpcTypeBits, uint32(n.TypeID()))
	b.WriteBits(1, 1)
}

// npcForced restores the persistent face target of a newly admitted NPC.
func npcForced(n *model.Npc) model.UpdateFlag {
	if n.FaceEntityPayload() != constants.FaceNone {
		return model.FlagFaceEntity
	}
	return 0
}
