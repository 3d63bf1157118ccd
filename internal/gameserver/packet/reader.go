package packet

import (
	"fmt"
	"strings"
)

// Reader provides methods for reading inbound packet payloads.
// Multi-byte values default to big-endian; transforms mirror Buffer's.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new packet reader.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func untransform(b byte, t Transform) int {
	switch t {
	case TransformAdd:
		return int(b - 128)
	case TransformNegate:
		return int(-b)
	case TransformSubtract:
		return int(128 - b)
	default:
		return int(b)
	}
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("ReadByte: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadByteT reads an unsigned byte and reverses the transform.
func (r *Reader) ReadByteT(t Transform) (int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return untransform(b, t), nil
}

// ReadSignedByteT reads a byte, reverses the transform and sign-extends it.
func (r *Reader) ReadSignedByteT(t Transform) (int, error) {
	v, err := r.ReadByteT(t)
	if err != nil {
		return 0, err
	}
	return int(int8(v)), nil
}

// ReadShort reads an unsigned big-endian 16-bit value.
func (r *Reader) ReadShort() (int, error) {
	return r.ReadShortT(TransformNone, BigEndian)
}

// ReadShortT reads an unsigned 16-bit value; the transform applies to the low byte.
func (r *Reader) ReadShortT(t Transform, order ByteOrder) (int, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("ReadShort: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	first, second := r.data[r.pos], r.data[r.pos+1]
	r.pos += 2

	hi, lo := first, second
	if order == LittleEndian {
		hi, lo = second, first
	}
	return int(hi)<<8 | untransform(lo, t)&0xFF, nil
}

// ReadSignedShortT reads a 16-bit value and sign-extends it.
func (r *Reader) ReadSignedShortT(t Transform, order ByteOrder) (int, error) {
	v, err := r.ReadShortT(t, order)
	if err != nil {
		return 0, err
	}
	return int(int16(v)), nil
}

// ReadInt reads a 32-bit value.
func (r *Reader) ReadInt(order ByteOrder) (int32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("ReadInt: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	d := r.data[r.pos : r.pos+4]
	r.pos += 4
	if order == LittleEndian {
		return int32(uint32(d[0]) | uint32(d[1])<<8 | uint32(d[2])<<16 | uint32(d[3])<<24), nil
	}
	return int32(uint32(d[3]) | uint32(d[2])<<8 | uint32(d[1])<<16 | uint32(d[0])<<24), nil
}

// ReadLong reads a big-endian 64-bit value.
func (r *Reader) ReadLong() (int64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("ReadLong: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	var u uint64
	for i := range 8 {
		u = u<<8 | uint64(r.data[r.pos+i])
	}
	r.pos += 8
	return int64(u), nil
}

// ReadString reads bytes up to StringTerminator.
func (r *Reader) ReadString() (string, error) {
	var sb strings.Builder
	for {
		if r.pos >= len(r.data) {
			return "", fmt.Errorf("ReadString: unexpected end of data (pos=%d, len=%d)", r.pos, len(r.data))
		}
		c := r.data[r.pos]
		r.pos++
		if c == StringTerminator {
			return sb.String(), nil
		}
		sb.WriteByte(c)
	}
}

// ReadBytes reads n bytes (ZERO-COPY, returns subslice of internal data).
// Caller MUST NOT modify returned bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("ReadBytes: negative count %d", n)
	}
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("ReadBytes: not enough data (pos=%d, need=%d, len=%d)", r.pos, n, len(r.data))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBytesReverseT reads n bytes stored back to front, reversing the
// transform on each. Returns a new slice in natural order.
func (r *Reader) ReadBytesReverseT(n int, t Transform) ([]byte, error) {
	raw, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	for i := range n {
		out[n-1-i] = byte(untransform(raw[i], t))
	}
	return out, nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if r.pos+n > len(r.data) || n < 0 {
		return fmt.Errorf("Skip: cannot skip %d bytes (pos=%d, len=%d)", n, r.pos, len(r.data))
	}
	r.pos += n
	return nil
}

// Position returns the current read offset.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// BitReader reads MSB-first bit fields, the inverse of Buffer's bit mode.
type BitReader struct {
	data   []byte
	bitPos int
}

// NewBitReader creates a bit reader starting at byte offset start.
func NewBitReader(data []byte, start int) *BitReader {
	return &BitReader{data: data, bitPos: start << 3}
}

// ReadBits reads n bits (1..32).
func (r *BitReader) ReadBits(n int) (uint32, error) {
	if n < 1 || n > 32 {
		return 0, fmt.Errorf("ReadBits: bit count %d out of range", n)
	}
	if r.bitPos+n > len(r.data)<<3 {
		return 0, fmt.Errorf("ReadBits: not enough data (bit=%d, need=%d, len=%d)", r.bitPos, n, len(r.data))
	}
	var v uint32
	for range n {
		bit := (r.data[r.bitPos>>3] >> (7 - r.bitPos&7)) & 1
		v = v<<1 | uint32(bit)
		r.bitPos++
	}
	return v, nil
}

// ReadBit reads a single flag bit.
func (r *BitReader) ReadBit() (bool, error) {
	v, err := r.ReadBits(1)
	return v == 1, err
}

// BytePosition returns the byte offset after padding the current bit
// position to a byte boundary.
func (r *BitReader) BytePosition() int {
	return (r.bitPos + 7) >> 3
}

// Rest returns the bytes after the current bit position, padded to a byte
// boundary. The slice aliases the reader's data.
func (r *BitReader) Rest() []byte {
	return r.data[min(r.BytePosition(), len(r.data)):]
}
