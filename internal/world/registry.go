package world

import (
	"container/heap"
	"errors"
	"fmt"
	"sync"

	"github.com/udisondev/rs2go/internal/model"
)

// ErrRegistryFull is returned when every slot of a registry is occupied.
var ErrRegistryFull = errors.New("registry full")

// ErrAlreadyRegistered is returned when registering an actor that holds a slot.
var ErrAlreadyRegistered = errors.New("actor already registered")

// slotHeap is a min-heap of free slots; popping yields the lowest free slot.
type slotHeap []int

func (h slotHeap) Len() int           { return len(h) }
func (h slotHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h slotHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *slotHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *slotHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Registry is a fixed-capacity slot arena. Slots are small stable integers in
// [first, size); registration takes the lowest free slot.
//
// Only the tick goroutine registers and unregisters. Readers on other
// goroutines (status endpoints) are safe but may observe the previous tick.
type Registry[T model.Syncable] struct {
	mu    sync.RWMutex
	slots []T
	used  []bool
	free  slotHeap
	first int
	count int

	// snapshot of occupied slots in slot order, rebuilt after mutation
	snapshot []T
	dirty    bool
}

// NewRegistry creates a registry with slots first..size-1.
func NewRegistry[T model.Syncable](first, size int) *Registry[T] {
	if first < 0 || size <= first {
		panic(fmt.Sprintf("world: invalid registry bounds [%d, %d)", first, size))
	}
	r := &Registry[T]{
		slots: make([]T, size),
		used:  make([]bool, size),
		free:  make(slotHeap, 0, size-first),
		first: first,
	}
	for s := first; s < size; s++ {
		r.free = append(r.free, s)
	}
	heap.Init(&r.free)
	return r
}

// Register assigns the lowest free slot to actor.
func (r *Registry[T]) Register(actor T) (int, error) {
	base := actor.Base()
	if base.Registered() {
		return -1, fmt.Errorf("registering at slot %d: %w", base.Slot(), ErrAlreadyRegistered)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.free.Len() == 0 {
		return -1, fmt.Errorf("%d of %d slots taken: %w", r.count, r.Capacity(), ErrRegistryFull)
	}
	slot := heap.Pop(&r.free).(int)
	r.slots[slot] = actor
	r.used[slot] = true
	r.count++
	r.dirty = true

	base.SetSlot(slot)
	base.SetActive(true)
	return slot, nil
}

// Unregister frees slot. The actor's slot is reset to -1.
func (r *Registry[T]) Unregister(slot int) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if slot < r.first || slot >= len(r.slots) || !r.used[slot] {
		return zero, false
	}
	actor := r.slots[slot]
	r.slots[slot] = zero
	r.used[slot] = false
	r.count--
	r.dirty = true
	heap.Push(&r.free, slot)

	base := actor.Base()
	base.SetActive(false)
	base.SetSlot(-1)
	return actor, true
}

// Get returns the actor at slot.
func (r *Registry[T]) Get(slot int) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero T
	if slot < 0 || slot >= len(r.slots) || !r.used[slot] {
		return zero, false
	}
	return r.slots[slot], true
}

// Holds reports whether actor currently occupies slot.
func (r *Registry[T]) Holds(slot int, actor *model.Actor) bool {
	got, ok := r.Get(slot)
	return ok && got.Base() == actor
}

// Snapshot returns occupied slots in slot order. The slice is shared and must
// not be modified; it stays valid while the registry mutates.
func (r *Registry[T]) Snapshot() []T {
	r.mu.RLock()
	if !r.dirty && r.snapshot != nil {
		s := r.snapshot
		r.mu.RUnlock()
		return s
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dirty || r.snapshot == nil {
		s := make([]T, 0, r.count)
		for slot := r.first; slot < len(r.slots); slot++ {
			if r.used[slot] {
				s = append(s, r.slots[slot])
			}
		}
		r.snapshot = s
		r.dirty = false
	}
	return r.snapshot
}

// Len returns the number of occupied slots.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Capacity returns the number of usable slots.
func (r *Registry[T]) Capacity() int {
	return len(r.slots) - r.first
}
