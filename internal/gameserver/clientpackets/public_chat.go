package clientpackets

import (
	"fmt"

	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/model"
)

// MaxChatLength bounds the packed chat text.
const MaxChatLength = 80

// ParsePublicChat parses a public chat packet (C2S 4).
//
// Packet structure:
//   - effects  byte (subtract)
//   - colour   byte (subtract)
//   - text     packed bytes, reversed, add
//
// The packed text is kept as is; the server relays it without unpacking.
func ParsePublicChat(data []byte) (model.ChatMessage, error) {
	r := packet.NewReader(data)

	effects, err := r.ReadByteT(packet.TransformSubtract)
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("reading effects: %w", err)
	}
	colour, err := r.ReadByteT(packet.TransformSubtract)
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("reading colour: %w", err)
	}

	n := r.Remaining()
	if n == 0 || n > MaxChatLength {
		return model.ChatMessage{}, fmt.Errorf("chat text length %d out of range", n)
	}
	text, err := r.ReadBytesReverseT(n, packet.TransformAdd)
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("reading text: %w", err)
	}

	return model.ChatMessage{
		Effects: effects & 0xFF,
		Colour:  colour & 0xFF,
		Text:    text,
	}, nil
}
