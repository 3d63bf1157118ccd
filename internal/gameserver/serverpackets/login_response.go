package serverpackets

import (
	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
)

// Handshake replies are written before the session ciphers exist and carry
// no opcode.

// ServerKeyExchange answers the login request stage.
//
// Structure:
//   - byte[8]  ignored by the client
//   - byte     status (0 = exchange keys)
//   - long     server session key
type ServerKeyExchange struct {
	ServerKey int64
}

// Write serializes ServerKeyExchange.
func (p ServerKeyExchange) Write() ([]byte, error) {
	b := packet.NewBuffer(17)
	b.WriteLong(0)
	b.WriteByteT(constants.LoginExchangeKeys, packet.TransformNone)
	b.WriteLong(p.ServerKey)
	return b.Bytes(), nil
}

// LoginResponse answers the login block.
//
// Structure:
//   - byte  return code
//   - byte  rights
//   - byte  flagged (always 0)
//
// Any code other than LoginSuccess is followed by the server closing the
// connection; only the code byte is meaningful then.
type LoginResponse struct {
	Code   int
	Rights int
}

// Write serializes LoginResponse.
func (p LoginResponse) Write() ([]byte, error) {
	b := packet.NewBuffer(3)
	b.WriteByteT(p.Code, packet.TransformNone)
	b.WriteByteT(p.Rights, packet.TransformNone)
	b.WriteByteT(0, packet.TransformNone)
	return b.Bytes(), nil
}
