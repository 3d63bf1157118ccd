package model

import "sync/atomic"

// UpdateFlag marks one optional attribute block as changed this tick.
// Bit values are internal; protocol mask bits live in constants.
type UpdateFlag uint32

const (
	FlagAnimation UpdateFlag = 1 << iota
	FlagGraphic
	FlagForcedChat
	FlagChat
	FlagAppearance
	FlagFaceEntity
	FlagFaceCoordinate
	FlagHit
	FlagHit2
)

// UpdateFlags records which attribute blocks changed since the last tick
// boundary. Every viewer reads the same flags during a tick; Clear is called
// once, after all viewers were synchronized.
type UpdateFlags struct {
	bits atomic.Uint32
}

// Set marks flag as changed.
func (f *UpdateFlags) Set(flag UpdateFlag) {
	for {
		old := f.bits.Load()
		if f.bits.CompareAndSwap(old, old|uint32(flag)) {
			return
		}
	}
}

// Has reports whether flag is set.
func (f *UpdateFlags) Has(flag UpdateFlag) bool {
	return f.bits.Load()&uint32(flag) != 0
}

// Any reports whether any flag is set.
func (f *UpdateFlags) Any() bool {
	return f.bits.Load() != 0
}

// Get returns the raw flag set.
func (f *UpdateFlags) Get() UpdateFlag {
	return UpdateFlag(f.bits.Load())
}

// Clear resets all flags.
func (f *UpdateFlags) Clear() {
	f.bits.Store(0)
}
