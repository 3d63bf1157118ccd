package gameserver

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/crypto"
	"github.com/udisondev/rs2go/internal/gameserver/clientpackets"
	"github.com/udisondev/rs2go/internal/gameserver/serverpackets"
	"github.com/udisondev/rs2go/internal/metrics"
	"github.com/udisondev/rs2go/internal/model"
	"github.com/udisondev/rs2go/internal/world"
)

const defaultLoginTimeout = 10 * time.Second

// ErrLoginRejected is returned when the handshake ends with a non-success code.
var ErrLoginRejected = errors.New("login rejected")

func newServerKey() (int64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("generating server key: %w", err)
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

// login runs the handshake: login request, key exchange, login block. On
// success the session ciphers are installed, the player is in the world and
// the success response has been written.
func (s *Server) login(ctx context.Context, c *GameClient, r *bufio.Reader) (*model.Player, error) {
	timeout := s.cfg.LoginTimeout
	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}
	deadline := time.Now().Add(timeout)
	if err := c.Conn().SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("setting login deadline: %w", err)
	}

	var req [2]byte
	if _, err := io.ReadFull(r, req[:]); err != nil {
		return nil, fmt.Errorf("reading login request: %w", err)
	}
	if req[0] != constants.LoginRequestOpcode {
		return nil, fmt.Errorf("unexpected login request opcode %d", req[0])
	}

	serverKey, err := newServerKey()
	if err != nil {
		return nil, err
	}
	reply, _ := serverpackets.ServerKeyExchange{ServerKey: serverKey}.Write()
	if err := c.writeRaw(reply); err != nil {
		return nil, err
	}
	c.SetState(ClientStateHandshake)

	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("reading login header: %w", err)
	}
	block := make([]byte, hdr[1])
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, fmt.Errorf("reading login block: %w", err)
	}

	lb, err := clientpackets.ParseLoginBlock(int(hdr[0]), block)
	if err != nil {
		return nil, s.reject(c, constants.LoginRejected, metrics.LoginBadBlock, err)
	}
	switch {
	case lb.Revision != constants.ClientRevision:
		return nil, s.reject(c, constants.LoginRejected, metrics.LoginRevision,
			fmt.Errorf("client revision %d", lb.Revision))
	case lb.ServerKey != serverKey:
		return nil, s.reject(c, constants.LoginBadSessionKey, metrics.LoginBadBlock,
			errors.New("server key mismatch"))
	case !validName(lb.Username):
		return nil, s.reject(c, constants.LoginInvalid, metrics.LoginBadBlock,
			fmt.Errorf("invalid username %q", lb.Username))
	}

	decoder, encoder := crypto.SessionCiphers(lb.ClientKey, serverKey)
	c.SetCiphers(decoder, encoder)

	spawn := s.cfg.World.Spawn
	p := model.NewPlayer(model.FormatName(lb.Username),
		model.NewPosition(spawn.X, spawn.Y, spawn.Plane),
		s.cfg.Sync.PlayerVisibleCap, s.cfg.Sync.NpcVisibleCap)
	p.SetMember(true)

	c.SetState(ClientStateEntering)
	loginCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	if err := s.engine.Login(loginCtx, p, c); err != nil {
		switch {
		case errors.Is(err, world.ErrAlreadyOnline):
			return nil, s.reject(c, constants.LoginAlreadyOnline, metrics.LoginOnline, err)
		case errors.Is(err, world.ErrRegistryFull):
			return nil, s.reject(c, constants.LoginWorldFull, metrics.LoginFull, err)
		default:
			return nil, s.reject(c, constants.LoginRejected, metrics.LoginBadBlock, err)
		}
	}

	resp, _ := serverpackets.LoginResponse{Code: constants.LoginSuccess, Rights: p.Rights()}.Write()
	if err := c.writeRaw(resp); err != nil {
		s.engine.Logout(p)
		return nil, err
	}
	if err := c.Conn().SetReadDeadline(time.Time{}); err != nil {
		s.engine.Logout(p)
		return nil, fmt.Errorf("clearing login deadline: %w", err)
	}
	return p, nil
}

// reject answers the login block with code and returns the cause.
func (s *Server) reject(c *GameClient, code int, reason string, cause error) error {
	metrics.RecordLoginRejected(reason)
	slog.Info("login rejected", "client", c.IP(), "code", code, "reason", reason, "error", cause)

	resp, _ := serverpackets.LoginResponse{Code: code}.Write()
	if err := c.writeRaw(resp); err != nil {
		slog.Debug("login rejection not delivered", "client", c.IP(), "error", err)
	}
	return fmt.Errorf("%w (code %d): %w", ErrLoginRejected, code, cause)
}

func validName(name string) bool {
	if name == "" || len(name) > model.MaxNameLength {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ' ':
		default:
			return false
		}
	}
	return true
}
