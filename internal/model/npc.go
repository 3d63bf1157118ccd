package model

// Npc: неигровой персонаж.
type Npc struct {
	Actor

	typeID int
	spawn  Position
}

// NewNpc создаёт NPC типа typeID в точке spawn.
func NewNpc(typeID int, spawn Position, hitpoints int) *Npc {
	return &Npc{
		Actor:  newActor(spawn, hitpoints),
		typeID: typeID,
		spawn:  spawn,
	}
}

// Base returns the shared actor state.
func (n *Npc) Base() *Actor {
	return &n.Actor
}

// FaceIndex returns the face-entity value that points at this NPC.
func (n *Npc) FaceIndex() int {
	return n.Slot()
}

// TypeID returns the definition id the client renders.
func (n *Npc) TypeID() int {
	return n.typeID
}

// Spawn returns the spawn point.
func (n *Npc) Spawn() Position {
	return n.spawn
}
