package clientpackets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/udisondev/rs2go/internal/gameserver/packet"
)

// Command is a "::" command typed in the chat box (C2S 103).
type Command struct {
	Name string
	Args []string
}

// ParseCommand parses a command packet: one newline-terminated string.
func ParseCommand(data []byte) (*Command, error) {
	line, err := packet.NewReader(data).ReadString()
	if err != nil {
		return nil, fmt.Errorf("reading command: %w", err)
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("empty command")
	}
	return &Command{
		Name: strings.ToLower(fields[0]),
		Args: fields[1:],
	}, nil
}
