package packet

import (
	"errors"
	"fmt"
)

// ErrBufferOverflow is the panic value (wrapped) raised when a write would exceed
// the fixed capacity of a Buffer. Buffers are scratch objects sized up front;
// overflow means the sizing budget is wrong, so writers fail fast.
var ErrBufferOverflow = errors.New("packet buffer overflow")

// ErrAccessMode is raised when a byte write happens in bit mode or vice versa.
var ErrAccessMode = errors.New("packet buffer access mode mismatch")

// StringTerminator ends every string written by WriteString.
const StringTerminator = 10

// Transform is a per-value obfuscation applied to the least significant byte
// of a byte-mode write.
type Transform uint8

const (
	TransformNone     Transform = iota
	TransformAdd                // v + 128
	TransformNegate             // -v
	TransformSubtract           // 128 - v
)

// ByteOrder selects the order of multi-byte values.
type ByteOrder uint8

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

// frame is a reserved size field waiting for FinishVarHeader.
type frame struct {
	start int // offset of the size field
	width int // 1 (var byte) or 2 (var short)
}

// Buffer is a fixed-capacity packet builder with two addressing modes:
// byte-addressed writes (default) and bit-addressed writes between
// StartBitAccess and FinishBitAccess. Bits are packed MSB-first.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	data    []byte
	pos     int // byte cursor
	bitPos  int // bit cursor, valid in bit mode
	bitMode bool
	frames  []frame
}

// NewBuffer creates a buffer with the given fixed capacity in bytes.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		data:   make([]byte, capacity),
		frames: make([]frame, 0, 2),
	}
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Len returns the number of bytes written so far.
// In bit mode partially filled bytes are counted.
func (b *Buffer) Len() int {
	if b.bitMode {
		return (b.bitPos + 7) >> 3
	}
	return b.pos
}

// Bytes returns the written bytes. The slice aliases the buffer and is only
// valid until the next Reset.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.Len()]
}

// Clone returns a copy of the written bytes.
func (b *Buffer) Clone() []byte {
	out := make([]byte, b.Len())
	copy(out, b.data)
	return out
}

// InBitMode reports whether the buffer is bit-addressed.
func (b *Buffer) InBitMode() bool {
	return b.bitMode
}

// Reset zeroes the used region and rewinds the cursors.
func (b *Buffer) Reset() {
	clear(b.data[:b.Len()])
	b.pos = 0
	b.bitPos = 0
	b.bitMode = false
	b.frames = b.frames[:0]
}

func (b *Buffer) ensure(n int) {
	if b.bitMode {
		panic(fmt.Errorf("%w: byte write in bit mode at %d", ErrAccessMode, b.bitPos))
	}
	if b.pos+n > len(b.data) {
		panic(fmt.Errorf("%w: need %d bytes at %d, capacity %d", ErrBufferOverflow, n, b.pos, len(b.data)))
	}
}

// StartBitAccess switches the buffer to bit-addressed mode.
func (b *Buffer) StartBitAccess() {
	if b.bitMode {
		return
	}
	b.bitPos = b.pos << 3
	b.bitMode = true
}

// FinishBitAccess switches back to byte mode, padding to the next byte boundary
// with zero bits.
func (b *Buffer) FinishBitAccess() {
	if !b.bitMode {
		return
	}
	if rem := b.bitPos & 7; rem != 0 {
		b.data[b.bitPos>>3] &^= byte(mask(8 - rem))
	}
	b.pos = (b.bitPos + 7) >> 3
	b.bitMode = false
}

func mask(n int) uint32 {
	return uint32((uint64(1) << n) - 1)
}

// WriteBits writes the low n bits of value, most significant bit first.
func (b *Buffer) WriteBits(n int, value uint32) {
	if !b.bitMode {
		panic(fmt.Errorf("%w: bit write in byte mode at %d", ErrAccessMode, b.pos))
	}
	if n < 1 || n > 32 {
		panic(fmt.Errorf("packet: bit count %d out of range", n))
	}
	if (b.bitPos+n+7)>>3 > len(b.data) {
		panic(fmt.Errorf("%w: need %d bits at bit %d, capacity %d bytes", ErrBufferOverflow, n, b.bitPos, len(b.data)))
	}

	bytePos := b.bitPos >> 3
	offset := 8 - (b.bitPos & 7)
	b.bitPos += n

	for ; n > offset; offset = 8 {
		b.data[bytePos] &^= byte(mask(offset))
		b.data[bytePos] |= byte((value >> (n - offset)) & mask(offset))
		bytePos++
		n -= offset
	}
	if n == offset {
		b.data[bytePos] &^= byte(mask(offset))
		b.data[bytePos] |= byte(value & mask(offset))
		return
	}
	shift := offset - n
	b.data[bytePos] &^= byte(mask(n) << shift)
	b.data[bytePos] |= byte((value & mask(n)) << shift)
}

// WriteBit writes a single flag bit.
func (b *Buffer) WriteBit(flag bool) {
	if flag {
		b.WriteBits(1, 1)
		return
	}
	b.WriteBits(1, 0)
}

func transform(v int, t Transform) byte {
	switch t {
	case TransformAdd:
		return byte(v + 128)
	case TransformNegate:
		return byte(-v)
	case TransformSubtract:
		return byte(128 - v)
	default:
		return byte(v)
	}
}

// WriteByte writes a single untransformed byte.
func (b *Buffer) WriteByte(v byte) error {
	b.ensure(1)
	b.data[b.pos] = v
	b.pos++
	return nil
}

// WriteByteT writes a single byte with the given transform.
func (b *Buffer) WriteByteT(v int, t Transform) {
	b.ensure(1)
	b.data[b.pos] = transform(v, t)
	b.pos++
}

// WriteShort writes a big-endian 16-bit value.
func (b *Buffer) WriteShort(v int) {
	b.WriteShortT(v, TransformNone, BigEndian)
}

// WriteShortT writes a 16-bit value; the transform applies to the low byte.
func (b *Buffer) WriteShortT(v int, t Transform, order ByteOrder) {
	b.ensure(2)
	hi := byte(v >> 8)
	lo := transform(v, t)
	if order == LittleEndian {
		b.data[b.pos], b.data[b.pos+1] = lo, hi
	} else {
		b.data[b.pos], b.data[b.pos+1] = hi, lo
	}
	b.pos += 2
}

// WriteInt writes a 32-bit value in the given order.
func (b *Buffer) WriteInt(v int32, order ByteOrder) {
	b.ensure(4)
	u := uint32(v)
	if order == LittleEndian {
		b.data[b.pos] = byte(u)
		b.data[b.pos+1] = byte(u >> 8)
		b.data[b.pos+2] = byte(u >> 16)
		b.data[b.pos+3] = byte(u >> 24)
	} else {
		b.data[b.pos] = byte(u >> 24)
		b.data[b.pos+1] = byte(u >> 16)
		b.data[b.pos+2] = byte(u >> 8)
		b.data[b.pos+3] = byte(u)
	}
	b.pos += 4
}

// WriteLong writes a big-endian 64-bit value.
func (b *Buffer) WriteLong(v int64) {
	b.ensure(8)
	u := uint64(v)
	for i := range 8 {
		b.data[b.pos+i] = byte(u >> (56 - 8*i))
	}
	b.pos += 8
}

// WriteString writes s followed by StringTerminator.
func (b *Buffer) WriteString(s string) {
	b.ensure(len(s) + 1)
	b.pos += copy(b.data[b.pos:], s)
	b.data[b.pos] = StringTerminator
	b.pos++
}

// WriteBytes writes raw bytes.
func (b *Buffer) WriteBytes(p []byte) {
	b.ensure(len(p))
	b.pos += copy(b.data[b.pos:], p)
}

// WriteBytesReverse writes p back to front.
func (b *Buffer) WriteBytesReverse(p []byte) {
	b.ensure(len(p))
	for i := len(p) - 1; i >= 0; i-- {
		b.data[b.pos] = p[i]
		b.pos++
	}
}

// WriteHeader writes a fixed-size packet header (the opcode byte).
// Opcodes are written in the clear; SealOpcode applies the stream cipher once
// the packet is complete.
func (b *Buffer) WriteHeader(opcode int) {
	b.WriteByteT(opcode, TransformNone)
}

// StartVarByteHeader writes the opcode and reserves a one-byte size field.
func (b *Buffer) StartVarByteHeader(opcode int) {
	b.startVar(opcode, 1)
}

// StartVarShortHeader writes the opcode and reserves a two-byte size field.
func (b *Buffer) StartVarShortHeader(opcode int) {
	b.startVar(opcode, 2)
}

func (b *Buffer) startVar(opcode, width int) {
	b.WriteHeader(opcode)
	b.ensure(width)
	b.frames = append(b.frames, frame{start: b.pos, width: width})
	b.pos += width
}

// FinishVarHeader back-patches the innermost reserved size field with the
// number of payload bytes written after it.
func (b *Buffer) FinishVarHeader() {
	if b.bitMode {
		panic(fmt.Errorf("%w: finishing header in bit mode", ErrAccessMode))
	}
	if len(b.frames) == 0 {
		panic(errors.New("packet: FinishVarHeader without a reserved size field"))
	}
	f := b.frames[len(b.frames)-1]
	b.frames = b.frames[:len(b.frames)-1]

	size := b.pos - f.start - f.width
	switch f.width {
	case 1:
		if size > 0xFF {
			panic(fmt.Errorf("%w: var byte frame of %d bytes", ErrBufferOverflow, size))
		}
		b.data[f.start] = byte(size)
	default:
		if size > 0xFFFF {
			panic(fmt.Errorf("%w: var short frame of %d bytes", ErrBufferOverflow, size))
		}
		b.data[f.start] = byte(size >> 8)
		b.data[f.start+1] = byte(size)
	}
}
