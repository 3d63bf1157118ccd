package viewsync

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/rs2go/internal/config"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/metrics"
	"github.com/udisondev/rs2go/internal/model"
	"github.com/udisondev/rs2go/internal/world"
)

const (
	kindPlayer = metrics.KindPlayer
	kindNpc    = metrics.KindNpc
)

// Config holds the synchronization limits and buffer sizes.
type Config struct {
	ViewDistance       int
	PlayerAdmitPerTick int
	NpcAdmitPerTick    int // 0 = unlimited

	PlayerBufferSize  int
	PlayerScratchSize int
	NpcBufferSize     int
	NpcScratchSize    int
}

// ConfigFrom extracts the synchronization settings from the server config.
func ConfigFrom(s config.Sync) Config {
	return Config{
		ViewDistance:       s.ViewDistance,
		PlayerAdmitPerTick: s.PlayerAdmitPerTick,
		NpcAdmitPerTick:    s.NpcAdmitPerTick,
		PlayerBufferSize:   s.PlayerBufferSize,
		PlayerScratchSize:  s.PlayerScratchSize,
		NpcBufferSize:      s.NpcBufferSize,
		NpcScratchSize:     s.NpcScratchSize,
	}
}

// Transport accepts completed updates. Implementations must not block and
// take ownership of the slice.
type Transport interface {
	SendPacket(pkt []byte) error
}

// Synchronizer builds player and NPC view updates.
//
// Not safe for concurrent use: passes run one after another on the tick
// goroutine, after game logic and before the flag reset.
type Synchronizer struct {
	players *variant[*model.Player]
	npcs    *variant[*model.Npc]

	playerOut, playerScratch *packet.Pool
	npcOut, npcScratch       *packet.Pool
}

// New creates a Synchronizer over the registries of w.
func New(w *world.World, cfg Config) *Synchronizer {
	return &Synchronizer{
		players:       newPlayerVariant(w.Players(), cfg),
		npcs:          newNpcVariant(w.Npcs(), cfg),
		playerOut:     packet.NewPool(cfg.PlayerBufferSize),
		playerScratch: packet.NewPool(cfg.PlayerScratchSize),
		npcOut:        packet.NewPool(cfg.NpcBufferSize),
		npcScratch:    packet.NewPool(cfg.NpcScratchSize),
	}
}

// PlayerUpdate builds the player view update (opcode 81) for viewer.
// The returned slice is owned by the caller.
func (s *Synchronizer) PlayerUpdate(viewer *model.Player) ([]byte, error) {
	return run(s.players, viewer, s.playerOut, s.playerScratch)
}

// NpcUpdate builds the NPC view update (opcode 65) for viewer.
// The returned slice is owned by the caller.
func (s *Synchronizer) NpcUpdate(viewer *model.Player) ([]byte, error) {
	return run(s.npcs, viewer, s.npcOut, s.npcScratch)
}

// Synchronize builds both updates for viewer and hands them to t.
// A failed update is dropped; the other one is still attempted.
func (s *Synchronizer) Synchronize(viewer *model.Player, t Transport) error {
	var errs []error

	if pkt, err := s.PlayerUpdate(viewer); err != nil {
		errs = append(errs, err)
	} else if err := t.SendPacket(pkt); err != nil {
		metrics.RecordDropped(kindPlayer, metrics.ReasonTransport)
		return fmt.Errorf("sending player update: %w", err)
	}

	if pkt, err := s.NpcUpdate(viewer); err != nil {
		errs = append(errs, err)
	} else if err := t.SendPacket(pkt); err != nil {
		metrics.RecordDropped(kindNpc, metrics.ReasonTransport)
		return fmt.Errorf("sending npc update: %w", err)
	}

	return errors.Join(errs...)
}

// run executes one pass. A buffer overflow drops this update: the viewer's
// view is cleared so the next update starts from an empty list, which makes
// the client forget every actor and receive them again with fresh positions.
func run[T model.Syncable](v *variant[T], viewer *model.Player, outPool, scratchPool *packet.Pool) (pkt []byte, err error) {
	out, scratch := outPool.Get(), scratchPool.Get()
	defer func() {
		outPool.Put(out)
		scratchPool.Put(scratch)
	}()

	start := time.Now()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		perr, ok := r.(error)
		if !ok || !(errors.Is(perr, packet.ErrBufferOverflow) || errors.Is(perr, packet.ErrAccessMode)) {
			panic(r)
		}

		v.view(viewer).Clear()
		if v.writeSelf != nil {
			viewer.RequestResync()
		}
		metrics.RecordDropped(v.kind, metrics.ReasonOverflow)
		slog.Error("view update dropped",
			"kind", v.kind,
			"viewer", viewer.Name(),
			"out", out.Len(),
			"scratch", scratch.Len(),
			"error", perr)

		pkt, err = nil, fmt.Errorf("%s update for %q: %w", v.kind, viewer.Name(), perr)
	}()

	st := v.Pass(viewer, out, scratch)
	pkt = out.Clone()

	metrics.RecordPass(v.kind, time.Since(start), len(pkt), v.view(viewer).Len())
	if st.deferred > 0 {
		slog.Debug("admissions deferred, buffer budget reached",
			"kind", v.kind,
			"viewer", viewer.Name(),
			"admitted", st.admitted)
	}
	return pkt, nil
}
