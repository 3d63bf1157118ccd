package serverpackets

import (
	"fmt"

	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
)

// MaxGameMessage is the longest text that fits the var byte frame.
const MaxGameMessage = 254

// GameMessage prints a line in the client's chat box (S2C 253, var byte).
type GameMessage struct {
	Text string
}

// NewGameMessage creates a GameMessage.
func NewGameMessage(text string) GameMessage {
	return GameMessage{Text: text}
}

// Write serializes GameMessage. Text longer than MaxGameMessage is rejected.
func (p GameMessage) Write() ([]byte, error) {
	if len(p.Text) > MaxGameMessage {
		return nil, fmt.Errorf("game message: %d bytes exceeds %d", len(p.Text), MaxGameMessage)
	}

	b := packet.NewBuffer(len(p.Text) + 3)
	b.StartVarByteHeader(constants.OpcodeGameMessage)
	b.WriteString(p.Text)
	b.FinishVarHeader()
	return b.Bytes(), nil
}
