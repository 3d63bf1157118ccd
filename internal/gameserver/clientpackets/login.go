package clientpackets

import (
	"errors"
	"fmt"

	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
)

// ErrBadLoginBlock is returned for a login block the server cannot accept.
var ErrBadLoginBlock = errors.New("malformed login block")

// LoginBlock is the credentials block sent after the key exchange.
//
// Block structure (after connect type and block length):
//   - byte     magic (255)
//   - short    client revision
//   - byte     low memory flag
//   - int[9]   archive CRCs (ignored)
//   - byte     secure block length
//   - byte     secure block opcode (10)
//   - long     client session key
//   - long     server session key (echo)
//   - int      client uid
//   - string   username
//   - string   password
type LoginBlock struct {
	Reconnect bool
	Revision  int
	LowMemory bool
	ClientKey int64
	ServerKey int64
	UID       int32
	Username  string
	Password  string
}

// ParseLoginBlock parses a login block. connectType is the byte that
// precedes the block length on the wire.
func ParseLoginBlock(connectType int, data []byte) (*LoginBlock, error) {
	if connectType != constants.ConnectTypeNew && connectType != constants.ConnectTypeReconnect {
		return nil, fmt.Errorf("%w: connect type %d", ErrBadLoginBlock, connectType)
	}
	r := packet.NewReader(data)

	magic, err := r.ReadByteT(packet.TransformNone)
	if err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if magic != constants.LoginBlockMagic {
		return nil, fmt.Errorf("%w: magic %d", ErrBadLoginBlock, magic)
	}

	revision, err := r.ReadShort()
	if err != nil {
		return nil, fmt.Errorf("reading revision: %w", err)
	}
	lowMem, err := r.ReadByteT(packet.TransformNone)
	if err != nil {
		return nil, fmt.Errorf("reading memory flag: %w", err)
	}
	if err := r.Skip(4 * constants.LoginCRCCount); err != nil {
		return nil, fmt.Errorf("skipping archive crcs: %w", err)
	}

	secureLen, err := r.ReadByteT(packet.TransformNone)
	if err != nil {
		return nil, fmt.Errorf("reading secure block length: %w", err)
	}
	if secureLen != r.Remaining() {
		return nil, fmt.Errorf("%w: secure block length %d, %d bytes left", ErrBadLoginBlock, secureLen, r.Remaining())
	}
	secureOp, err := r.ReadByteT(packet.TransformNone)
	if err != nil {
		return nil, fmt.Errorf("reading secure block opcode: %w", err)
	}
	if secureOp != constants.LoginRSAOpcode {
		return nil, fmt.Errorf("%w: secure block opcode %d", ErrBadLoginBlock, secureOp)
	}

	clientKey, err := r.ReadLong()
	if err != nil {
		return nil, fmt.Errorf("reading client key: %w", err)
	}
	serverKey, err := r.ReadLong()
	if err != nil {
		return nil, fmt.Errorf("reading server key: %w", err)
	}
	uid, err := r.ReadInt(packet.BigEndian)
	if err != nil {
		return nil, fmt.Errorf("reading uid: %w", err)
	}
	username, err := r.ReadString()
	if err != nil {
		return nil, fmt.Errorf("reading username: %w", err)
	}
	password, err := r.ReadString()
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return &LoginBlock{
		Reconnect: connectType == constants.ConnectTypeReconnect,
		Revision:  revision,
		LowMemory: lowMem == 1,
		ClientKey: clientKey,
		ServerKey: serverKey,
		UID:       uid,
		Username:  username,
		Password:  password,
	}, nil
}

// WriteLoginBlock builds a login block the way the client does. Used by test
// clients; returns connect type, length and block in one slice.
func WriteLoginBlock(l LoginBlock) []byte {
	secure := 1 + 8 + 8 + 4 + len(l.Username) + 1 + len(l.Password) + 1
	blockLen := 1 + 2 + 1 + 4*constants.LoginCRCCount + 1 + secure

	b := packet.NewBuffer(2 + blockLen)
	connectType := constants.ConnectTypeNew
	if l.Reconnect {
		connectType = constants.ConnectTypeReconnect
	}
	b.WriteByteT(connectType, packet.TransformNone)
	b.WriteByteT(blockLen, packet.TransformNone)

	b.WriteByteT(constants.LoginBlockMagic, packet.TransformNone)
	b.WriteShort(l.Revision)
	lowMem := 0
	if l.LowMemory {
		lowMem = 1
	}
	b.WriteByteT(lowMem, packet.TransformNone)
	for range constants.LoginCRCCount {
		b.WriteInt(0, packet.BigEndian)
	}
	b.WriteByteT(secure, packet.TransformNone)
	b.WriteByteT(constants.LoginRSAOpcode, packet.TransformNone)
	b.WriteLong(l.ClientKey)
	b.WriteLong(l.ServerKey)
	b.WriteInt(l.UID, packet.BigEndian)
	b.WriteString(l.Username)
	b.WriteString(l.Password)
	return b.Bytes()
}
