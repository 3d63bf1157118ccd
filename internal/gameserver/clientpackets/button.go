package clientpackets

import (
	"fmt"

	"github.com/udisondev/rs2go/internal/gameserver/packet"
)

// ParseButtonClick returns the interface button id of a click (C2S 185).
func ParseButtonClick(data []byte) (int, error) {
	id, err := packet.NewReader(data).ReadShort()
	if err != nil {
		return 0, fmt.Errorf("reading button id: %w", err)
	}
	return id, nil
}
