package gameserver

import (
	"fmt"
	"io"
	"sync"
)

// payloadPool reads inbound payloads into reused slices. Slices grown past
// maxPooled are left to the GC so one large frame does not pin memory.
type payloadPool struct {
	pool      sync.Pool
	maxPooled int
}

func newPayloadPool(defaultCap, maxPooled int) *payloadPool {
	p := &payloadPool{maxPooled: maxPooled}
	p.pool.New = func() any {
		b := make([]byte, 0, defaultCap)
		return &b
	}
	return p
}

// Read reads exactly size bytes from r. The caller returns the slice with
// Release once the handler is done with it.
func (p *payloadPool) Read(r io.Reader, size int) ([]byte, error) {
	if size < 0 || size > maxInboundPayload {
		return nil, fmt.Errorf("payload of %d bytes", size)
	}

	bp := p.pool.Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, size)
	}
	b = b[:size]
	if _, err := io.ReadFull(r, b); err != nil {
		p.Release(b)
		return nil, err
	}
	return b, nil
}

// Release returns b to the pool.
func (p *payloadPool) Release(b []byte) {
	if b == nil || cap(b) > p.maxPooled {
		return
	}
	b = b[:0]
	p.pool.Put(&b)
}
