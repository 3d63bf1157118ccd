package model

import (
	"sync"
	"unicode/utf8"

	"github.com/udisondev/rs2go/internal/constants"
)

// Animation: анимация, проигрываемая актором в текущем тике.
type Animation struct {
	ID    int
	Delay int
}

// Graphic: графический эффект (spot animation) над актором.
type Graphic struct {
	ID     int
	Height int
	Delay  int
}

// HitType: тип hit splat, который рисует клиент.
type HitType int

const (
	HitBlock  HitType = 0
	HitNormal HitType = 1
	HitPoison HitType = 2
)

// Hit: отложенный удар, отображаемый как hit splat.
// Урон применяется к hitpoints один раз за тик, при первом кодировании.
type Hit struct {
	Damage  int
	Type    HitType
	applied bool
}

// Syncable is the capability the synchronization pass needs from a tracked actor.
type Syncable interface {
	// Base returns the shared actor state.
	Base() *Actor
	// FaceIndex returns the value other actors send to face this one.
	FaceIndex() int
}

// DeathHook is invoked once when an actor's hitpoints reach zero.
type DeathHook func(a *Actor)

// Actor: общее состояние игрока и NPC, участвующее в синхронизации вида.
//
// Movement state, flags and payloads are mutated by game logic during the
// tick and read by every viewer's pass afterwards. ResetTick clears them once
// after all viewers were synchronized.
type Actor struct {
	mu sync.RWMutex

	slot     int
	position Position

	primaryDir   Direction
	secondaryDir Direction

	placement    bool
	discardQueue bool
	resync       bool
	visible      bool
	active       bool

	flags UpdateFlags

	animation  Animation
	graphic    Graphic
	forcedChat string
	hits       [2]Hit
	faceEntity int
	faceCoord  Position

	hitpoints    int
	maxHitpoints int
	dead         bool
	onDeath      DeathHook

	walking *WalkingQueue
}

func newActor(pos Position, hitpoints int) Actor {
	return Actor{
		slot:         -1,
		position:     pos,
		primaryDir:   DirNone,
		secondaryDir: DirNone,
		placement:    true,
		visible:      true,
		faceEntity:   constants.FaceNone,
		hitpoints:    hitpoints,
		maxHitpoints: hitpoints,
		walking:      NewWalkingQueue(),
	}
}

// Slot возвращает индекс в реестре (-1 если не зарегистрирован).
func (a *Actor) Slot() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.slot
}

// SetSlot is called by the registry on registration and removal.
func (a *Actor) SetSlot(slot int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.slot = slot
}

// Registered reports whether the actor occupies a registry slot.
func (a *Actor) Registered() bool {
	return a.Slot() >= 0
}

// Active reports whether the actor is registered and not waiting for removal.
func (a *Actor) Active() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.active && a.slot >= 0
}

// SetActive marks the actor as taking part in synchronization.
// Deactivated actors are evicted from every view before their slot is freed.
func (a *Actor) SetActive(active bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = active
}

// Position возвращает текущие координаты (value type).
func (a *Actor) Position() Position {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.position
}

// Visible reports whether other clients may see the actor.
func (a *Actor) Visible() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.visible
}

// SetVisible hides or reveals the actor. Hidden actors are evicted by viewers.
func (a *Actor) SetVisible(visible bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.visible = visible
}

// Directions returns the steps taken this tick.
func (a *Actor) Directions() (primary, secondary Direction) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.primaryDir, a.secondaryDir
}

// NeedsPlacement reports whether the actor was teleported, spawned or changed
// plane this tick.
func (a *Actor) NeedsPlacement() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.placement
}

// DiscardQueue reports whether the client should drop its interpolated path.
func (a *Actor) DiscardQueue() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.discardQueue
}

// Flags returns the dirty set of the actor.
func (a *Actor) Flags() *UpdateFlags {
	return &a.flags
}

// Walking returns the actor's walking queue.
func (a *Actor) Walking() *WalkingQueue {
	return a.walking
}

// Teleport переносит актора в pos без интерполяции.
func (a *Actor) Teleport(pos Position) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.position = pos
	a.placement = true
	a.discardQueue = true
	a.primaryDir = DirNone
	a.secondaryDir = DirNone
	a.walking.Clear()
}

// RequestResync asks for a placement on the next tick. Used after a client
// missed an update and no longer agrees with the server on its own position.
func (a *Actor) RequestResync() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resync = true
}

// ProcessMovement advances the walking queue by one tick. A running actor
// takes two steps. Actors pending placement do not move.
func (a *Actor) ProcessMovement() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.placement {
		return
	}
	pos, dir := a.walking.Next(a.position)
	if dir == DirNone {
		return
	}
	a.position = pos
	a.primaryDir = dir

	if !a.walking.Running() {
		return
	}
	pos, dir = a.walking.Next(a.position)
	if dir == DirNone {
		return
	}
	a.position = pos
	a.secondaryDir = dir
}

// Animate plays an animation this tick.
func (a *Actor) Animate(id, delay int) {
	a.mu.Lock()
	a.animation = Animation{ID: id, Delay: delay}
	a.mu.Unlock()
	a.flags.Set(FlagAnimation)
}

// PlayGraphic plays a graphic effect this tick.
func (a *Actor) PlayGraphic(id, height, delay int) {
	a.mu.Lock()
	a.graphic = Graphic{ID: id, Height: height, Delay: delay}
	a.mu.Unlock()
	a.flags.Set(FlagGraphic)
}

// MaxForcedChat is the longest forced chat text in bytes; longer text is cut
// at a rune boundary.
const MaxForcedChat = 100

// ForceChat shows text over the actor's head.
func (a *Actor) ForceChat(text string) {
	if len(text) > MaxForcedChat {
		cut := MaxForcedChat
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	a.mu.Lock()
	a.forcedChat = text
	a.mu.Unlock()
	a.flags.Set(FlagForcedChat)
}

// Hit queues a hit splat. The first hit of a tick takes the primary slot, the
// second one the secondary slot; further hits in the same tick are rejected.
func (a *Actor) Hit(damage int, kind HitType) bool {
	if damage < 0 {
		damage = 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dead {
		return false
	}
	switch {
	case !a.flags.Has(FlagHit):
		a.hits[0] = Hit{Damage: damage, Type: kind}
		a.flags.Set(FlagHit)
	case !a.flags.Has(FlagHit2):
		a.hits[1] = Hit{Damage: damage, Type: kind}
		a.flags.Set(FlagHit2)
	default:
		return false
	}
	return true
}

// TakeHit applies the pending hit in the given slot (0 primary, 1 secondary)
// and returns it with the resulting hitpoints. Damage is subtracted only on
// the first call of the tick; later viewers see the same values.
func (a *Actor) TakeHit(idx int) (hit Hit, hitpoints, maxHitpoints int) {
	a.mu.Lock()
	died := a.applyHitLocked(idx)
	hit, hitpoints, maxHitpoints = a.hits[idx], a.hitpoints, a.maxHitpoints
	hook := a.onDeath
	a.mu.Unlock()

	if died && hook != nil {
		hook(a)
	}
	return hit, hitpoints, maxHitpoints
}

func (a *Actor) applyHitLocked(idx int) (died bool) {
	h := &a.hits[idx]
	if h.applied {
		return false
	}
	h.applied = true

	// урон не уходит ниже нуля
	if h.Damage > a.hitpoints {
		h.Damage = a.hitpoints
	}
	a.hitpoints -= h.Damage
	if a.hitpoints == 0 && !a.dead {
		a.dead = true
		return true
	}
	return false
}

// FaceActor turns the actor towards target and keeps facing it until ResetFace.
func (a *Actor) FaceActor(target Syncable) {
	idx := target.FaceIndex()
	a.mu.Lock()
	a.faceEntity = idx
	a.mu.Unlock()
	a.flags.Set(FlagFaceEntity)
}

// ResetFace stops facing an entity.
func (a *Actor) ResetFace() {
	a.mu.Lock()
	a.faceEntity = constants.FaceNone
	a.mu.Unlock()
	a.flags.Set(FlagFaceEntity)
}

// FaceCoordinate turns the actor towards a tile.
func (a *Actor) FaceCoordinate(pos Position) {
	a.mu.Lock()
	a.faceCoord = pos
	a.mu.Unlock()
	a.flags.Set(FlagFaceCoordinate)
}

// AnimationPayload returns the pending animation.
func (a *Actor) AnimationPayload() Animation {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.animation
}

// GraphicPayload returns the pending graphic.
func (a *Actor) GraphicPayload() Graphic {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.graphic
}

// ForcedChatPayload returns the pending forced chat text.
func (a *Actor) ForcedChatPayload() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.forcedChat
}

// FaceEntityPayload returns the face target index (constants.FaceNone when none).
func (a *Actor) FaceEntityPayload() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.faceEntity
}

// FaceCoordinatePayload returns the tile the actor faces.
func (a *Actor) FaceCoordinatePayload() Position {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.faceCoord
}

// Hitpoints returns current and maximum hitpoints.
func (a *Actor) Hitpoints() (current, maximum int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hitpoints, a.maxHitpoints
}

// SetHitpoints sets both values and revives a dead actor when current > 0.
func (a *Actor) SetHitpoints(current, maximum int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.maxHitpoints = maximum
	a.hitpoints = min(current, maximum)
	if a.hitpoints > 0 {
		a.dead = false
	}
}

// Dead reports whether hitpoints reached zero.
func (a *Actor) Dead() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dead
}

// SetDeathHook installs the callback fired when hitpoints reach zero.
func (a *Actor) SetDeathHook(hook DeathHook) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onDeath = hook
}

// ResetTick closes the tick for this actor: hits no viewer encoded are
// applied, then movement state and dirty flags are cleared.
// Must be called once per tick, after every viewer was synchronized.
func (a *Actor) ResetTick() {
	a.mu.Lock()
	var died bool
	if a.flags.Has(FlagHit) {
		died = a.applyHitLocked(0) || died
	}
	if a.flags.Has(FlagHit2) {
		died = a.applyHitLocked(1) || died
	}
	a.hits = [2]Hit{}
	a.primaryDir = DirNone
	a.secondaryDir = DirNone
	a.placement = a.resync
	a.discardQueue = a.resync
	a.resync = false
	a.flags.Clear()
	hook := a.onDeath
	a.mu.Unlock()

	if died && hook != nil {
		hook(a)
	}
}
