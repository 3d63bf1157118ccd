package packet

import "sync"

// Pool hands out reset Buffers of one fixed capacity.
// Get() returns a Buffer with Reset() called, Put() returns it to the pool.
type Pool struct {
	capacity int
	pool     sync.Pool
}

// NewPool creates a pool of buffers with the given capacity.
func NewPool(capacity int) *Pool {
	p := &Pool{capacity: capacity}
	p.pool.New = func() any {
		return NewBuffer(capacity)
	}
	return p
}

// Capacity returns the capacity of buffers handed out by this pool.
func (p *Pool) Capacity() int {
	return p.capacity
}

// Get returns a reset buffer.
func (p *Pool) Get() *Buffer {
	b := p.pool.Get().(*Buffer)
	b.Reset()
	return b
}

// Put returns the buffer to the pool.
// IMPORTANT: Do not use the Buffer (or slices from Bytes) after calling Put.
func (p *Pool) Put(b *Buffer) {
	if b == nil || b.Cap() != p.capacity {
		return
	}
	p.pool.Put(b)
}
