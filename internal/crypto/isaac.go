package crypto

// ISAAC implements Bob Jenkins' ISAAC stream generator as used by the game
// protocol to obfuscate packet opcodes.
//
// A session uses two instances seeded from the login handshake:
//   - decoder: seeded with the four session key words
//   - encoder: the same words each incremented by SessionSeedOffset
//
// Every packet consumes exactly one key per direction, so both peers must
// consume keys in the same order. ISAAC is not safe for concurrent use;
// GameClient serializes access.
type ISAAC struct {
	count   int
	results [isaacSize]uint32
	memory  [isaacSize]uint32
	a, b, c uint32
}

const (
	isaacSize = 256

	// golden ratio, the initial value of every mixing register
	isaacGolden = 0x9e3779b9

	// SessionSeedOffset is added to every seed word of the encoder.
	SessionSeedOffset = 50
)

// NewISAAC creates a generator seeded with up to 256 words.
func NewISAAC(seed []uint32) *ISAAC {
	r := &ISAAC{}
	copy(r.results[:], seed)
	r.init()
	return r
}

// SessionCiphers derives the decoder/encoder pair from the client and server
// session keys exchanged during login.
func SessionCiphers(clientKey, serverKey int64) (decoder, encoder *ISAAC) {
	seed := []uint32{
		uint32(uint64(clientKey) >> 32),
		uint32(clientKey),
		uint32(uint64(serverKey) >> 32),
		uint32(serverKey),
	}
	decoder = NewISAAC(seed)
	for i := range seed {
		seed[i] += SessionSeedOffset
	}
	encoder = NewISAAC(seed)
	return decoder, encoder
}

// NextKey returns the next key of the stream.
func (r *ISAAC) NextKey() uint32 {
	if r.count == 0 {
		r.generate()
		r.count = isaacSize
	}
	r.count--
	return r.results[r.count]
}

func (r *ISAAC) generate() {
	r.c++
	r.b += r.c
	for i := range isaacSize {
		x := r.memory[i]
		switch i & 3 {
		case 0:
			r.a ^= r.a << 13
		case 1:
			r.a ^= r.a >> 6
		case 2:
			r.a ^= r.a << 2
		case 3:
			r.a ^= r.a >> 16
		}
		r.a += r.memory[(i+128)&0xFF]
		y := r.memory[(x>>2)&0xFF] + r.a + r.b
		r.memory[i] = y
		r.b = r.memory[(y>>10)&0xFF] + x
		r.results[i] = r.b
	}
}

func (r *ISAAC) init() {
	var s [8]uint32
	for i := range s {
		s[i] = isaacGolden
	}
	for range 4 {
		mix(&s)
	}
	for pass := range 2 {
		src := &r.results
		if pass == 1 {
			src = &r.memory
		}
		for i := 0; i < isaacSize; i += 8 {
			for j := range 8 {
				s[j] += src[i+j]
			}
			mix(&s)
			copy(r.memory[i:i+8], s[:])
		}
	}
	r.generate()
	r.count = isaacSize
}

func mix(s *[8]uint32) {
	s[0] ^= s[1] << 11
	s[3] += s[0]
	s[1] += s[2]
	s[1] ^= s[2] >> 2
	s[4] += s[1]
	s[2] += s[3]
	s[2] ^= s[3] << 8
	s[5] += s[2]
	s[3] += s[4]
	s[3] ^= s[4] >> 16
	s[6] += s[3]
	s[4] += s[5]
	s[4] ^= s[5] << 10
	s[7] += s[4]
	s[5] += s[6]
	s[5] ^= s[6] >> 4
	s[0] += s[5]
	s[6] += s[7]
	s[6] ^= s[7] << 8
	s[1] += s[6]
	s[7] += s[0]
	s[7] ^= s[0] >> 9
	s[2] += s[7]
	s[0] += s[1]
}
