package model

import "sync"

type viewEntry[T Syncable] struct {
	slot  int
	actor T
}

// LocalView: упорядоченный набор акторов, которые клиент сейчас отображает.
//
// Order is admission order and matches the order the client keeps; the pass
// walks it front to back. Membership is indexed by the slot held at admission,
// so an entry survives its actor being unregistered and can be detected as stale.
type LocalView[T Syncable] struct {
	mu       sync.RWMutex
	entries  []viewEntry[T]
	bySlot   map[int]*Actor
	capacity int
}

// NewLocalView creates a view holding at most capacity actors.
func NewLocalView[T Syncable](capacity int) *LocalView[T] {
	return &LocalView[T]{
		entries:  make([]viewEntry[T], 0, capacity),
		bySlot:   make(map[int]*Actor, capacity),
		capacity: capacity,
	}
}

// Len returns the number of tracked actors.
func (v *LocalView[T]) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries)
}

// Capacity returns the maximum number of tracked actors.
func (v *LocalView[T]) Capacity() int {
	return v.capacity
}

// Full reports whether no more actors can be admitted.
func (v *LocalView[T]) Full() bool {
	return v.Len() >= v.capacity
}

// Contains reports whether actor is tracked under slot.
func (v *LocalView[T]) Contains(slot int, actor T) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	a, ok := v.bySlot[slot]
	return ok && a == actor.Base()
}

// HasSlot reports whether any actor is tracked under slot.
func (v *LocalView[T]) HasSlot(slot int) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.bySlot[slot]
	return ok
}

// Add appends actor under slot. Returns false when the view is full or the
// slot is already tracked.
func (v *LocalView[T]) Add(slot int, actor T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.entries) >= v.capacity {
		return false
	}
	if _, ok := v.bySlot[slot]; ok {
		return false
	}
	v.entries = append(v.entries, viewEntry[T]{slot: slot, actor: actor})
	v.bySlot[slot] = actor.Base()
	return true
}

// Remove drops the entry tracked under slot.
func (v *LocalView[T]) Remove(slot int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.bySlot[slot]; !ok {
		return false
	}
	delete(v.bySlot, slot)
	for i, e := range v.entries {
		if e.slot == slot {
			v.entries = append(v.entries[:i], v.entries[i+1:]...)
			break
		}
	}
	return true
}

// Each calls fn for every entry in admission order on a snapshot, so fn may
// remove entries.
func (v *LocalView[T]) Each(fn func(slot int, actor T)) {
	v.mu.RLock()
	snapshot := make([]viewEntry[T], len(v.entries))
	copy(snapshot, v.entries)
	v.mu.RUnlock()

	for _, e := range snapshot {
		fn(e.slot, e.actor)
	}
}

// Slots returns the tracked slots in admission order.
func (v *LocalView[T]) Slots() []int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]int, len(v.entries))
	for i, e := range v.entries {
		out[i] = e.slot
	}
	return out
}

// Purge removes every entry referencing actor, whatever slot it was admitted
// under. Returns the number of removed entries.
func (v *LocalView[T]) Purge(actor *Actor) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	kept := v.entries[:0]
	removed := 0
	for _, e := range v.entries {
		if e.actor.Base() == actor {
			delete(v.bySlot, e.slot)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	clear(v.entries[len(kept):])
	v.entries = kept
	return removed
}

// Clear drops all entries.
func (v *LocalView[T]) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	clear(v.entries)
	v.entries = v.entries[:0]
	clear(v.bySlot)
}
