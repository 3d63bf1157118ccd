package gameserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/udisondev/rs2go/internal/config"
	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/metrics"
)

// maxInboundPayload bounds one inbound payload (var short frames).
const maxInboundPayload = 5000

// Server accepts game client connections.
type Server struct {
	cfg     config.GameServer
	engine  *Engine
	clients *ClientManager
	handler *Handler

	payloads *payloadPool

	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a server that admits players into engine.
func NewServer(cfg config.GameServer, engine *Engine, clients *ClientManager) *Server {
	return &Server{
		cfg:      cfg,
		engine:   engine,
		clients:  clients,
		handler:  NewHandler(engine),
		payloads: newPayloadPool(256, maxInboundPayload),
	}
}

// Addr returns the address the server is listening on.
// Returns nil if the server hasn't started yet.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run begins listening for game client connections.
// Creates a listener on cfg.BindAddress:cfg.Port and starts the accept loop.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from the given listener until ctx is cancelled,
// then waits for open connections to finish.
// Used directly by tests with custom listeners.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("game server started", "address", ln.Addr())

	var wg sync.WaitGroup
	acceptLoop(ctx, &wg, s, ln)
	wg.Wait()

	slog.Info("game server stopped")
	return nil
}

func acceptLoop(
	ctx context.Context,
	wg *sync.WaitGroup,
	srv *Server,
	ln net.Listener,
) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("failed to accept new connection", "error", err)
			continue
		}

		// Enable TCP keepalive (detect dead connections)
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			if err := tcpConn.SetKeepAlive(true); err != nil {
				slog.Warn("set keepalive failed", "error", err)
			}
			if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
				slog.Warn("set keepalive period failed", "error", err)
			}
			// Updates are latency bound and already batched per tick.
			if err := tcpConn.SetNoDelay(true); err != nil {
				slog.Warn("set nodelay failed", "error", err)
			}
		}

		wg.Go(func() {
			handleConnection(ctx, srv, conn)
		})
	}
}

func (s *Server) newLimiter() *rate.Limiter {
	fp := s.cfg.FloodProtection
	if !fp.Enabled {
		return nil
	}
	return rate.NewLimiter(rate.Limit(fp.PacketsPerSecond), fp.Burst)
}

func handleConnection(ctx context.Context, srv *Server, conn net.Conn) {
	srv.clients.connOpened()
	defer srv.clients.connClosed()

	client, err := NewGameClient(conn, srv.cfg.SendQueueSize, srv.cfg.WriteTimeout, srv.newLimiter())
	if err != nil {
		slog.Error("failed to create game client", "error", err)
		conn.Close()
		return
	}
	defer client.Close()

	stop := context.AfterFunc(ctx, func() {
		client.CloseAsync()
		conn.Close()
	})
	defer stop()

	slog.Debug("new game client connection", "remote", client.IP())

	r := bufio.NewReader(conn)
	player, err := srv.login(ctx, client, r)
	if err != nil {
		slog.Info("login failed", "client", client.IP(), "error", err)
		return
	}
	defer OnDisconnection(srv.engine, client)

	client.StartWriter()

	readTimeout := srv.cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	for {
		if err := handlePacket(srv, client, r, readTimeout); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				slog.Info("client disconnected", "player", player.Name(), "client", client.IP())
			} else {
				slog.Warn("packet handling error", "player", player.Name(), "client", client.IP(), "error", err)
			}
			return
		}
		if client.IsMarkedForDisconnection() {
			slog.Info("client logged out", "player", player.Name())
			return
		}
	}
}

// handlePacket reads one frame (opcode, optional size, payload) and
// dispatches it. Frames over the flood budget are read and dropped.
func handlePacket(srv *Server, client *GameClient, r *bufio.Reader, readTimeout time.Duration) error {
	// Read timeout: idle client disconnects
	if err := client.Conn().SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return fmt.Errorf("setting read deadline: %w", err)
	}

	raw, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("reading opcode: %w", err)
	}
	opcode := packet.OpenOpcode(raw, client.Decoder())

	size, ok := constants.ClientPacketSizes[opcode]
	if !ok {
		return fmt.Errorf("unknown opcode %d", opcode)
	}
	switch size {
	case constants.SizeVarByte:
		b, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("reading size of %d: %w", opcode, err)
		}
		size = int(b)
	case constants.SizeVarShort:
		var hdr [2]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return fmt.Errorf("reading size of %d: %w", opcode, err)
		}
		size = int(hdr[0])<<8 | int(hdr[1])
		if size > maxInboundPayload {
			return fmt.Errorf("packet %d of %d bytes", opcode, size)
		}
	}

	payload, err := srv.payloads.Read(r, size)
	if err != nil {
		return fmt.Errorf("reading payload of %d: %w", opcode, err)
	}
	defer srv.payloads.Release(payload)

	if !client.Allow() {
		metrics.RecordFloodDrop()
		return nil
	}
	if err := srv.handler.HandlePacket(client, opcode, payload); err != nil {
		return fmt.Errorf("handling packet %d: %w", opcode, err)
	}
	return nil
}
