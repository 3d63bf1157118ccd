package gameserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/rs2go/internal/config"
	"github.com/udisondev/rs2go/internal/gameserver/serverpackets"
	"github.com/udisondev/rs2go/internal/metrics"
	"github.com/udisondev/rs2go/internal/model"
	"github.com/udisondev/rs2go/internal/viewsync"
	"github.com/udisondev/rs2go/internal/world"
)

// wanderChance is the 1-in-n chance per tick that an idle NPC starts a walk.
const wanderChance = 8

// TickHook is game logic run once per tick, before movement and
// synchronization.
type TickHook func(tick uint64)

// Engine runs the game tick. It is the only writer of the world: logins,
// logouts and inbound actions are queued with Submit and applied at the start
// of the next tick, so synchronization never races with mutation.
type Engine struct {
	cfg     config.GameServer
	world   *world.World
	sync    *viewsync.Synchronizer
	clients *ClientManager

	mu    sync.Mutex
	queue []func()

	hooks  []TickHook
	wander map[*model.Npc]int // NPC → walk radius around its spawn

	ticks    atomic.Uint64
	lastTick atomic.Int64 // duration of the last tick, ns
	started  time.Time
}

// NewEngine creates an engine over a world built from cfg.
func NewEngine(cfg config.GameServer, clients *ClientManager) *Engine {
	w := world.New(world.Options{
		PlayerSlots:     cfg.World.PlayerSlots,
		NpcSlots:        cfg.World.NpcSlots,
		NpcRespawnDelay: cfg.World.NpcRespawnTicks,
	})
	e := &Engine{
		cfg:     cfg,
		world:   w,
		sync:    viewsync.New(w, viewsync.ConfigFrom(cfg.Sync)),
		clients: clients,
		wander:  make(map[*model.Npc]int),
		started: time.Now(),
	}
	e.AddHook(func(uint64) { e.world.ProcessRespawns() })
	e.AddHook(e.wanderNpcs)
	return e
}

// World returns the engine's world.
func (e *Engine) World() *world.World {
	return e.world
}

// AddHook registers game logic. Not safe to call while Run is active.
func (e *Engine) AddHook(h TickHook) {
	e.hooks = append(e.hooks, h)
}

// Submit queues fn to run on the tick goroutine at the start of the next tick.
func (e *Engine) Submit(fn func()) {
	e.mu.Lock()
	e.queue = append(e.queue, fn)
	e.mu.Unlock()
}

func (e *Engine) drain() []func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	q := e.queue
	e.queue = nil
	return q
}

// SpawnNpcs registers static NPCs. Call before Run.
func (e *Engine) SpawnNpcs(spawns []config.NpcSpawn) error {
	for _, s := range spawns {
		pos := model.NewPosition(s.Position.X, s.Position.Y, s.Position.Plane)
		n := model.NewNpc(s.TypeID, pos, s.Hitpoints)
		if _, err := e.world.SpawnNpc(n); err != nil {
			return fmt.Errorf("spawning npc %d at %v: %w", s.TypeID, pos, err)
		}
		if s.WalkRadius > 0 {
			e.wander[n] = s.WalkRadius
		}
	}
	slog.Info("npcs spawned", "count", len(spawns), "wandering", len(e.wander))
	return nil
}

// Login queues p for entry and waits for the outcome. On success the client
// is bound to p and has the player init and map region packets queued.
func (e *Engine) Login(ctx context.Context, p *model.Player, c *GameClient) error {
	done := make(chan error, 1)
	e.Submit(func() {
		done <- e.enter(p, c)
	})

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// The request may still be applied; the logout queued behind it undoes it.
		e.Logout(p)
		return ctx.Err()
	}
}

// Logout queues the removal of p. Safe to call more than once.
func (e *Engine) Logout(p *model.Player) {
	e.Submit(func() { e.leave(p) })
}

func (e *Engine) enter(p *model.Player, c *GameClient) error {
	slot, err := e.world.AddPlayer(p)
	if err != nil {
		return err
	}
	e.clients.Register(p, c)
	c.SetPlayer(p)

	p.SetAppearance(p.Appearance())
	p.UpdateMapRegion()

	initPkt, err := serverpackets.PlayerInit{Slot: slot, Member: p.Member()}.Write()
	if err == nil {
		err = c.SendPacket(initPkt)
	}
	if err == nil {
		err = e.sendMapRegion(p, c)
	}
	if err != nil {
		e.leave(p)
		return fmt.Errorf("entering world: %w", err)
	}

	c.SetState(ClientStateInGame)
	slog.Info("player entered world", "player", p.Name(), "slot", slot, "client", c.IP())
	return nil
}

func (e *Engine) leave(p *model.Player) {
	if c := e.clients.Client(p); c != nil {
		e.clients.Unregister(p)
		c.SetPlayer(nil)
	}
	if !p.Active() {
		return
	}
	e.world.RemovePlayer(p)
	slog.Info("player left world", "player", p.Name())
}

func (e *Engine) sendMapRegion(p *model.Player, c *GameClient) error {
	pkt, err := serverpackets.NewMapRegion(p.RegionBase()).Write()
	if err != nil {
		return err
	}
	return c.SendPacket(pkt)
}

// Run ticks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	interval := e.cfg.Sync.TickInterval
	slog.Info("engine started", "tick", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return nil
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick runs one game tick: queued requests, game logic, movement,
// synchronization of every client, flag reset and deferred removals.
func (e *Engine) Tick() {
	start := time.Now()
	tick := e.ticks.Add(1)

	for _, fn := range e.drain() {
		fn()
	}
	for _, h := range e.hooks {
		h(tick)
	}

	e.processMovement()
	e.synchronize()

	e.world.ResetTick()
	if stale := e.world.FlushRemovals(); stale > 0 {
		slog.Error("removed actors still referenced after synchronization", "count", stale, "tick", tick)
		metrics.RecordInvariantViolation(metrics.KindWorld, metrics.ReasonLeftover, stale)
	}

	elapsed := time.Since(start)
	e.lastTick.Store(int64(elapsed))
	overrun := elapsed > e.cfg.Sync.TickInterval
	if overrun {
		slog.Warn("tick overran its interval", "tick", tick, "elapsed", elapsed)
	}
	metrics.RecordTick(elapsed, overrun)
	metrics.UpdateOnline(e.world.Players().Len(), e.world.Npcs().Len())
}

func (e *Engine) processMovement() {
	for _, p := range e.world.Players().Snapshot() {
		if !p.Active() {
			continue
		}
		p.ProcessMovement()
		if !p.UpdateMapRegion() {
			continue
		}
		if c := e.clients.Client(p); c != nil {
			if err := e.sendMapRegion(p, c); err != nil {
				slog.Debug("map region not sent", "player", p.Name(), "error", err)
			}
		}
	}
	for _, n := range e.world.Npcs().Snapshot() {
		n.ProcessMovement()
	}
}

// synchronize builds updates in slot order. A client whose transport fails
// is closed; its player leaves the world on the next tick so that viewers
// already synchronized this tick see a regular eviction.
func (e *Engine) synchronize() {
	for _, p := range e.world.Players().Snapshot() {
		c := e.clients.Client(p)
		if c == nil {
			continue
		}
		switch c.State() {
		case ClientStateInGame:
		case ClientStateDisconnected:
			e.Logout(p)
			continue
		default:
			continue
		}
		err := e.sync.Synchronize(p, c)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrSendQueueFull) || errors.Is(err, ErrClientClosed) {
			c.CloseAsync()
			e.Logout(p)
			continue
		}
		slog.Debug("client update incomplete", "player", p.Name(), "error", err)
	}
}

// wanderNpcs starts short random walks for idle NPCs with a walk radius.
func (e *Engine) wanderNpcs(uint64) {
	for n, radius := range e.wander {
		if !n.Active() || !n.Visible() || n.Dead() || n.Walking().Len() > 0 {
			continue
		}
		if rand.IntN(wanderChance) != 0 {
			continue
		}
		dx := rand.IntN(2*radius+1) - radius
		dy := rand.IntN(2*radius+1) - radius
		target := n.Spawn().Translate(dx, dy)
		n.Walking().SetPath(n.Position(), []model.Position{target}, false)
	}
}

func (e *Engine) shutdown() {
	logout, _ := serverpackets.Logout{}.Write()
	n := 0
	e.clients.ForEachClient(func(_ *model.Player, c *GameClient) bool {
		pkt := append([]byte(nil), logout...)
		_ = c.SendPacket(pkt)
		c.CloseAsync()
		n++
		return true
	})
	slog.Info("engine stopped", "ticks", e.ticks.Load(), "clients_closed", n)
}

// Status implements metrics.StatusProvider.
func (e *Engine) Status() metrics.Status {
	return metrics.Status{
		PlayersOnline:  e.world.Players().Len(),
		NpcsRegistered: e.world.Npcs().Len(),
		Tick:           e.ticks.Load(),
		LastTick:       time.Duration(e.lastTick.Load()).String(),
		Uptime:         time.Since(e.started).Round(time.Second).String(),
	}
}
