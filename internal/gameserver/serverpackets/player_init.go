package serverpackets

import (
	"fmt"

	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
)

// PlayerInit tells the client its own player slot (S2C 249).
//
// Packet structure:
//   - member  byte (add)
//   - slot    short (LE, add)
type PlayerInit struct {
	Slot   int
	Member bool
}

// Write serializes PlayerInit.
func (p PlayerInit) Write() ([]byte, error) {
	if p.Slot < 0 || p.Slot >= constants.PlayerListTerminator {
		return nil, fmt.Errorf("player init: slot %d out of range", p.Slot)
	}

	b := packet.NewBuffer(4)
	b.WriteHeader(constants.OpcodePlayerInit)
	member := 0
	if p.Member {
		member = 1
	}
	b.WriteByteT(member, packet.TransformAdd)
	b.WriteShortT(p.Slot, packet.TransformAdd, packet.LittleEndian)
	return b.Bytes(), nil
}
