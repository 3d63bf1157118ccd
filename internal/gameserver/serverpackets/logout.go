package serverpackets

import (
	"github.com/udisondev/rs2go/internal/constants"
)

// Logout closes the client session (S2C 109). No payload.
type Logout struct{}

// Write serializes Logout.
func (Logout) Write() ([]byte, error) {
	return []byte{constants.OpcodeLogout}, nil
}
