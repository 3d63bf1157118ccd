package model

import (
	"github.com/udisondev/rs2go/internal/constants"
)

// Player rights as the client understands them.
const (
	RightsPlayer        = 0
	RightsModerator     = 1
	RightsAdministrator = 2
)

// DefaultPlayerHitpoints is the hitpoints level of a new character.
const DefaultPlayerHitpoints = 10

// ChatMessage: сообщение публичного чата. Text хранится в упакованном виде,
// как его прислал клиент.
type ChatMessage struct {
	Effects int
	Colour  int
	Text    []byte
}

// Player: игровой персонаж подключённого клиента.
// Встраивает Actor и хранит собственные наборы видимых игроков и NPC.
type Player struct {
	Actor

	name     string
	nameHash int64
	rights   int
	member   bool
	loggedIn bool

	appearance Appearance
	chat       ChatMessage
	regionBase Position
	hasRegion  bool

	localPlayers *LocalView[*Player]
	localNpcs    *LocalView[*Npc]
}

// NewPlayer создаёт игрока в позиции pos. Размеры видимых наборов задаются
// конфигурацией синхронизации.
func NewPlayer(name string, pos Position, playerViewCap, npcViewCap int) *Player {
	p := &Player{
		Actor:        newActor(pos, DefaultPlayerHitpoints),
		name:         name,
		nameHash:     NameToLong(name),
		appearance:   DefaultAppearance(),
		localPlayers: NewLocalView[*Player](playerViewCap),
		localNpcs:    NewLocalView[*Npc](npcViewCap),
	}
	return p
}

// Base returns the shared actor state.
func (p *Player) Base() *Actor {
	return &p.Actor
}

// FaceIndex returns the face-entity value that points at this player.
func (p *Player) FaceIndex() int {
	return p.Slot() + constants.FacePlayerOffset
}

// Name возвращает отображаемое имя игрока (immutable).
func (p *Player) Name() string {
	return p.name
}

// NameHash returns the base-37 encoded name.
func (p *Player) NameHash() int64 {
	return p.nameHash
}

// Rights returns the privilege level.
func (p *Player) Rights() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rights
}

// SetRights sets the privilege level.
func (p *Player) SetRights(rights int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rights = rights
}

// Member reports whether the account has members access.
func (p *Player) Member() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.member
}

// SetMember sets members access.
func (p *Player) SetMember(member bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.member = member
}

// LoggedIn reports whether the player finished login and is in game.
func (p *Player) LoggedIn() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loggedIn
}

// SetLoggedIn marks the player as in game or leaving.
func (p *Player) SetLoggedIn(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loggedIn = v
}

// Appearance returns a copy of the current look.
func (p *Player) Appearance() Appearance {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.appearance
}

// SetAppearance changes the look and flags it for synchronization.
func (p *Player) SetAppearance(a Appearance) {
	p.mu.Lock()
	p.appearance = a
	p.mu.Unlock()
	p.flags.Set(FlagAppearance)
}

// Chat publishes a public chat message this tick.
func (p *Player) Chat(msg ChatMessage) {
	text := make([]byte, len(msg.Text))
	copy(text, msg.Text)
	msg.Text = text

	p.mu.Lock()
	p.chat = msg
	p.mu.Unlock()
	p.flags.Set(FlagChat)
}

// ChatPayload returns the pending chat message.
func (p *Player) ChatPayload() ChatMessage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.chat
}

// LocalPlayers returns the players this client tracks.
func (p *Player) LocalPlayers() *LocalView[*Player] {
	return p.localPlayers
}

// LocalNpcs returns the NPCs this client tracks.
func (p *Player) LocalNpcs() *LocalView[*Npc] {
	return p.localNpcs
}

// RegionBase returns the position the client's loaded map area is built around.
func (p *Player) RegionBase() Position {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.regionBase
}

// UpdateMapRegion checks whether the player walked close to the edge of the
// loaded area (or changed plane, or never had one). In that case the region
// base moves to the current position, placement is requested and true is
// returned; the caller must send the new region to the client.
func (p *Player) UpdateMapRegion() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos := p.position
	if p.hasRegion {
		lx, ly := pos.LocalX(p.regionBase), pos.LocalY(p.regionBase)
		inside := lx >= RegionEdge && lx < RegionSpan-RegionEdge &&
			ly >= RegionEdge && ly < RegionSpan-RegionEdge
		if inside && pos.Plane == p.regionBase.Plane {
			return false
		}
	}
	p.regionBase = pos
	p.hasRegion = true
	p.placement = true
	return true
}
