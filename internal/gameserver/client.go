package gameserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/model"
)

// Default write queue / timeout constants.
// Overridden by config values when available.
const (
	defaultSendQueueSize = 256
	defaultWriteTimeout  = 5 * time.Second
	defaultReadTimeout   = 60 * time.Second
)

var (
	// ErrSendQueueFull is returned when a client does not drain its outbox.
	ErrSendQueueFull = errors.New("send queue full")
	// ErrClientClosed is returned for sends to a closed client.
	ErrClientClosed = errors.New("client closed")
)

// GameClient represents a single game client connection.
type GameClient struct {
	conn net.Conn
	ip   string

	// state использует atomic.Int32 для lock-free reads в hot path
	state atomic.Int32

	// markedForDisconnection closes the connection once queued packets are written.
	markedForDisconnection atomic.Bool

	// mu защищает player (меняется при логине и выходе)
	mu     sync.Mutex
	player *model.Player

	// outMu serializes opcode sealing with queueing: the client decodes
	// opcodes in arrival order, so keys must be consumed in queue order.
	outMu   sync.Mutex
	decoder packet.Cipher
	encoder packet.Cipher

	limiter *rate.Limiter // nil = no flood protection

	sendCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
	started   atomic.Bool
	done      chan struct{} // closed when writePump exits

	writeTimeout time.Duration
}

// NewGameClient creates a new game client state for the given connection.
func NewGameClient(conn net.Conn, sendQueueSize int, writeTimeout time.Duration, limiter *rate.Limiter) (*GameClient, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return nil, fmt.Errorf("splitting host port: %w", err)
	}

	if sendQueueSize <= 0 {
		sendQueueSize = defaultSendQueueSize
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	client := &GameClient{
		conn:         conn,
		ip:           host,
		limiter:      limiter,
		sendCh:       make(chan []byte, sendQueueSize),
		closeCh:      make(chan struct{}),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
	}
	client.state.Store(int32(ClientStateConnected))
	return client, nil
}

// Conn returns the underlying network connection.
func (c *GameClient) Conn() net.Conn {
	return c.conn
}

// IP returns the client's remote IP address.
func (c *GameClient) IP() string {
	return c.ip
}

// State returns the current connection state.
func (c *GameClient) State() ClientConnectionState {
	return ClientConnectionState(c.state.Load())
}

// SetState sets the connection state.
func (c *GameClient) SetState(s ClientConnectionState) {
	c.state.Store(int32(s))
}

// Player returns the logged in player (nil before login).
func (c *GameClient) Player() *model.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.player
}

// SetPlayer binds the client to a player.
func (c *GameClient) SetPlayer(p *model.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player = p
}

// SetCiphers installs the session ciphers derived during login.
// Must be called before the first SendPacket.
func (c *GameClient) SetCiphers(decoder, encoder packet.Cipher) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	c.decoder = decoder
	c.encoder = encoder
}

// Decoder returns the inbound opcode cipher. Only the read loop uses it.
func (c *GameClient) Decoder() packet.Cipher {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	return c.decoder
}

// Allow reports whether one more inbound packet fits the flood budget.
func (c *GameClient) Allow() bool {
	return c.limiter == nil || c.limiter.Allow()
}

// SendPacket seals the opcode of a complete packet and queues it.
// Non-blocking: a full queue disconnects the client.
// OWNERSHIP: takes ownership of pkt and modifies its first byte.
func (c *GameClient) SendPacket(pkt []byte) error {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	select {
	case <-c.closeCh:
		return ErrClientClosed
	default:
	}
	// Only senders holding outMu add to sendCh, so the check cannot go stale.
	if len(c.sendCh) == cap(c.sendCh) {
		slog.Warn("send queue full, disconnecting slow client", "client", c.ip)
		c.CloseAsync()
		return ErrSendQueueFull
	}
	packet.SealOpcode(pkt, c.encoder)
	c.sendCh <- pkt
	return nil
}

// writeRaw writes handshake bytes directly, before writePump starts.
func (c *GameClient) writeRaw(data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("writing handshake: %w", err)
	}
	return nil
}

// StartWriter starts the writer goroutine. Handshake bytes must be written
// with writeRaw before that.
func (c *GameClient) StartWriter() {
	if c.started.CompareAndSwap(false, true) {
		go c.writePump()
	}
}

// writePump is a dedicated writer goroutine for this client.
// Reads sealed packets from sendCh and writes them to conn.
// Uses net.Buffers (writev syscall) for batching.
//
// Pattern: Gorilla WebSocket Chat + net.Buffers + drain batching.
func (c *GameClient) writePump() {
	defer func() {
		// Unblocks the read loop of a client closed by the engine.
		_ = c.conn.Close()
		close(c.done)
	}()

	// Pre-allocate scratch slice (one-time, reused across iterations)
	bufs := make(net.Buffers, 0, 64)

	for {
		select {
		case pkt := <-c.sendCh:
			if err := c.writeBatch(&bufs, pkt); err != nil {
				slog.Warn("write failed", "client", c.ip, "error", err)
				c.CloseAsync()
				return
			}

		case <-c.closeCh:
			// Flush what was queued before the close (logout, last update).
			if len(c.sendCh) > 0 {
				if err := c.writeBatch(&bufs, <-c.sendCh); err != nil {
					slog.Debug("final flush failed", "client", c.ip, "error", err)
				}
			}
			return
		}
	}
}

func (c *GameClient) writeBatch(bufs *net.Buffers, first []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}

	queued := len(c.sendCh)
	if queued == 0 {
		// Single packet: direct write (hot path)
		_, err := c.conn.Write(first)
		return err
	}

	// Multiple packets: net.Buffers (writev syscall, zero-copy)
	*bufs = (*bufs)[:0]
	*bufs = append(*bufs, first)
	for range queued {
		*bufs = append(*bufs, <-c.sendCh)
	}
	b := *bufs
	_, err := b.WriteTo(c.conn)
	return err
}

// CloseAsync signals the writePump to flush and stop without blocking.
// Safe to call multiple times.
func (c *GameClient) CloseAsync() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(ClientStateDisconnected))
		close(c.closeCh)
	})
}

// Closed returns a channel closed once the client is shutting down.
func (c *GameClient) Closed() <-chan struct{} {
	return c.closeCh
}

// Close stops the writePump, waits for it to flush (bounded by the write
// timeout) and closes the connection.
func (c *GameClient) Close() error {
	c.CloseAsync()
	if c.started.Load() {
		select {
		case <-c.done:
		case <-time.After(c.writeTimeout):
		}
	}
	if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// MarkForDisconnection closes the connection after the current packet is handled.
func (c *GameClient) MarkForDisconnection() {
	c.markedForDisconnection.Store(true)
}

// IsMarkedForDisconnection returns true if client is marked for disconnection.
func (c *GameClient) IsMarkedForDisconnection() bool {
	return c.markedForDisconnection.Load()
}
