package world

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/rs2go/internal/model"
)

// FirstSlot is the lowest slot handed out by both registries.
const FirstSlot = 1

// Default NPC death timings in ticks.
const (
	DefaultNpcHideDelay    = 3
	DefaultNpcRespawnDelay = 25
)

// Options configures a World.
type Options struct {
	// PlayerSlots and NpcSlots bound the registries; valid slots are
	// FirstSlot..PlayerSlots-1 and FirstSlot..NpcSlots-1.
	PlayerSlots int
	NpcSlots    int

	// NpcHideDelay is how many ticks a dead NPC stays visible (death animation).
	NpcHideDelay int
	// NpcRespawnDelay is how many ticks after death an NPC returns to its spawn.
	NpcRespawnDelay int
}

type deadNpc struct {
	npc   *model.Npc
	ticks int
}

// World owns the player and NPC registries.
//
// Registration happens on the tick goroutine. Removal is deferred: a removed
// actor is deactivated at once so every viewer's pass evicts it, and its slot
// is freed in FlushRemovals after all passes of the tick ran.
type World struct {
	opts Options

	players *Registry[*model.Player]
	npcs    *Registry[*model.Npc]

	mu             sync.Mutex
	removedPlayers []*model.Player
	removedNpcs    []*model.Npc
	dead           []deadNpc
	byName         map[int64]*model.Player
}

// New creates an empty world.
func New(opts Options) *World {
	if opts.NpcHideDelay <= 0 {
		opts.NpcHideDelay = DefaultNpcHideDelay
	}
	if opts.NpcRespawnDelay <= opts.NpcHideDelay {
		opts.NpcRespawnDelay = max(DefaultNpcRespawnDelay, opts.NpcHideDelay+1)
	}
	return &World{
		opts:    opts,
		players: NewRegistry[*model.Player](FirstSlot, opts.PlayerSlots),
		npcs:    NewRegistry[*model.Npc](FirstSlot, opts.NpcSlots),
		byName:  make(map[int64]*model.Player),
	}
}

// Players returns the player registry.
func (w *World) Players() *Registry[*model.Player] {
	return w.players
}

// Npcs returns the NPC registry.
func (w *World) Npcs() *Registry[*model.Npc] {
	return w.npcs
}

// AddPlayer registers p and marks it logged in.
func (w *World) AddPlayer(p *model.Player) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.byName[p.NameHash()]; ok {
		return -1, fmt.Errorf("adding player %q: %w", p.Name(), ErrAlreadyOnline)
	}
	slot, err := w.players.Register(p)
	if err != nil {
		return -1, fmt.Errorf("adding player %q: %w", p.Name(), err)
	}
	w.byName[p.NameHash()] = p
	p.SetLoggedIn(true)

	slog.Debug("player registered", "player", p.Name(), "slot", slot, "online", w.players.Len())
	return slot, nil
}

// PlayerByName returns the online player with the given base-37 name.
func (w *World) PlayerByName(nameHash int64) (*model.Player, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.byName[nameHash]
	return p, ok
}

// RemovePlayer deactivates p. Its slot is freed by the next FlushRemovals.
func (w *World) RemovePlayer(p *model.Player) {
	if !p.Active() {
		return
	}
	p.SetLoggedIn(false)
	p.SetActive(false)

	w.mu.Lock()
	w.removedPlayers = append(w.removedPlayers, p)
	w.mu.Unlock()
}

// SpawnNpc registers n at its spawn point.
func (w *World) SpawnNpc(n *model.Npc) (int, error) {
	slot, err := w.npcs.Register(n)
	if err != nil {
		return -1, fmt.Errorf("spawning npc %d: %w", n.TypeID(), err)
	}
	n.SetDeathHook(func(*model.Actor) { w.npcDied(n) })
	return slot, nil
}

// RemoveNpc deactivates n. Its slot is freed by the next FlushRemovals.
func (w *World) RemoveNpc(n *model.Npc) {
	if !n.Active() {
		return
	}
	n.SetActive(false)

	w.mu.Lock()
	w.removedNpcs = append(w.removedNpcs, n)
	w.mu.Unlock()
}

func (w *World) npcDied(n *model.Npc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dead = append(w.dead, deadNpc{npc: n})
}

// ProcessRespawns advances dead NPCs: hidden after the death animation,
// returned to their spawn point with full hitpoints later.
func (w *World) ProcessRespawns() {
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.dead[:0]
	for _, d := range w.dead {
		d.ticks++
		switch {
		case d.ticks == w.opts.NpcHideDelay:
			d.npc.SetVisible(false)
		case d.ticks >= w.opts.NpcRespawnDelay:
			_, maxHp := d.npc.Hitpoints()
			d.npc.SetHitpoints(maxHp, maxHp)
			d.npc.Teleport(d.npc.Spawn())
			d.npc.SetVisible(true)
			continue
		}
		kept = append(kept, d)
	}
	clear(w.dead[len(kept):])
	w.dead = kept
}

// ResetTick clears per-tick state of every registered actor.
// Call once per tick after all viewers were synchronized.
func (w *World) ResetTick() {
	for _, p := range w.players.Snapshot() {
		p.ResetTick()
	}
	for _, n := range w.npcs.Snapshot() {
		n.ResetTick()
	}
}

// FlushRemovals frees the slots of actors removed during this tick and drops
// any references viewers still hold. Returns the number of purged view entries,
// which is non-zero only when a pass failed to evict a removed actor.
func (w *World) FlushRemovals() (stale int) {
	w.mu.Lock()
	players, npcs := w.removedPlayers, w.removedNpcs
	w.removedPlayers, w.removedNpcs = nil, nil
	for _, p := range players {
		delete(w.byName, p.NameHash())
	}
	w.mu.Unlock()

	if len(players) == 0 && len(npcs) == 0 {
		return 0
	}

	// removed viewers skip their pass, their views are dropped as a whole
	for _, p := range players {
		p.LocalPlayers().Clear()
		p.LocalNpcs().Clear()
	}

	viewers := w.players.Snapshot()
	for _, p := range players {
		for _, v := range viewers {
			stale += v.LocalPlayers().Purge(p.Base())
		}
		w.players.Unregister(p.Slot())
		slog.Debug("player unregistered", "player", p.Name(), "online", w.players.Len())
	}
	for _, n := range npcs {
		for _, v := range viewers {
			stale += v.LocalNpcs().Purge(n.Base())
		}
		w.npcs.Unregister(n.Slot())
	}
	return stale
}
