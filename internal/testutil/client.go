package testutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/crypto"
	"github.com/udisondev/rs2go/internal/gameserver/clientpackets"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/model"
)

// serverPacketSizes frames the server packets a test client understands.
var serverPacketSizes = map[int]int{
	constants.OpcodePlayerUpdate: constants.SizeVarShort,
	constants.OpcodeNpcUpdate:    constants.SizeVarShort,
	constants.OpcodeMapRegion:    4,
	constants.OpcodePlayerInit:   3,
	constants.OpcodeGameMessage:  constants.SizeVarByte,
	constants.OpcodeLogout:       0,
}

// Packet is a decoded server packet.
type Packet struct {
	Opcode  int
	Payload []byte
}

// RawClient speaks the client side of the game protocol over TCP.
type RawClient struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration

	// ciphers as seen by the client: encoder seals outbound, decoder opens inbound
	encoder *crypto.ISAAC
	decoder *crypto.ISAAC
}

// DialRaw connects to a game server.
func DialRaw(addr string, timeout time.Duration) (*RawClient, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	return &RawClient{conn: conn, r: bufio.NewReader(conn), timeout: timeout}, nil
}

// Close closes the connection.
func (c *RawClient) Close() error {
	return c.conn.Close()
}

// Login performs the handshake and returns the server's return code.
// On success the session ciphers are installed.
func (c *RawClient) Login(username, password string) (int, error) {
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	hash := model.NameToLong(username)
	if _, err := c.conn.Write([]byte{constants.LoginRequestOpcode, byte(hash >> 16 & 31)}); err != nil {
		return 0, fmt.Errorf("writing login request: %w", err)
	}

	var exchange [17]byte
	if _, err := io.ReadFull(c.r, exchange[:]); err != nil {
		return 0, fmt.Errorf("reading key exchange: %w", err)
	}
	r := packet.NewReader(exchange[9:])
	serverKey, err := r.ReadLong()
	if err != nil {
		return 0, err
	}

	clientKey := int64(0x0BADC0DE0000BEEF)
	block := clientpackets.WriteLoginBlock(clientpackets.LoginBlock{
		Revision:  constants.ClientRevision,
		ClientKey: clientKey,
		ServerKey: serverKey,
		Username:  username,
		Password:  password,
	})
	if _, err := c.conn.Write(block); err != nil {
		return 0, fmt.Errorf("writing login block: %w", err)
	}

	code, err := c.r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("reading return code: %w", err)
	}
	if code != constants.LoginSuccess {
		return int(code), nil
	}
	var rest [2]byte
	if _, err := io.ReadFull(c.r, rest[:]); err != nil {
		return 0, fmt.Errorf("reading login response: %w", err)
	}

	// The server decodes with the plain seeds and encodes with seeds + 50.
	c.encoder, c.decoder = crypto.SessionCiphers(clientKey, serverKey)
	return int(code), nil
}

// Send writes one packet, sealing its opcode.
func (c *RawClient) Send(opcode int, payload []byte) error {
	if c.encoder == nil {
		return errors.New("not logged in")
	}
	size, ok := constants.ClientPacketSizes[opcode]
	if !ok {
		return fmt.Errorf("unknown client opcode %d", opcode)
	}

	pkt := []byte{byte(opcode)}
	switch size {
	case constants.SizeVarByte:
		pkt = append(pkt, byte(len(payload)))
	case constants.SizeVarShort:
		pkt = append(pkt, byte(len(payload)>>8), byte(len(payload)))
	default:
		if size != len(payload) {
			return fmt.Errorf("opcode %d takes %d bytes, got %d", opcode, size, len(payload))
		}
	}
	pkt = append(pkt, payload...)
	packet.SealOpcode(pkt, c.encoder)

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	_, err := c.conn.Write(pkt)
	return err
}

// Read reads one server packet.
func (c *RawClient) Read() (Packet, error) {
	if c.decoder == nil {
		return Packet{}, errors.New("not logged in")
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return Packet{}, err
	}

	raw, err := c.r.ReadByte()
	if err != nil {
		return Packet{}, err
	}
	opcode := packet.OpenOpcode(raw, c.decoder)
	size, ok := serverPacketSizes[opcode]
	if !ok {
		return Packet{}, fmt.Errorf("unknown server opcode %d", opcode)
	}
	switch size {
	case constants.SizeVarByte:
		b, err := c.r.ReadByte()
		if err != nil {
			return Packet{}, err
		}
		size = int(b)
	case constants.SizeVarShort:
		var hdr [2]byte
		if _, err := io.ReadFull(c.r, hdr[:]); err != nil {
			return Packet{}, err
		}
		size = int(hdr[0])<<8 | int(hdr[1])
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(c.r, payload); err != nil {
		return Packet{}, err
	}
	return Packet{Opcode: opcode, Payload: payload}, nil
}

// ReadUntil reads packets until one with opcode arrives.
func (c *RawClient) ReadUntil(opcode int) (Packet, error) {
	for {
		p, err := c.Read()
		if err != nil {
			return Packet{}, err
		}
		if p.Opcode == opcode {
			return p, nil
		}
	}
}
