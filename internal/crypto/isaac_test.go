package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISAAC_ReferenceVector(t *testing.T) {
	// Zero seed: the reference generator's first published output block is the
	// second block produced, read front to back; keys are handed out back to front.
	r := NewISAAC(nil)
	for range 2*isaacSize - 1 {
		r.NextKey()
	}
	assert.Equal(t, uint32(0xf650e4c8), r.NextKey())
}

func TestISAAC_Deterministic(t *testing.T) {
	seed := []uint32{1, 2, 3, 4}
	a := NewISAAC(seed)
	b := NewISAAC(seed)

	for i := range 1000 {
		require.Equal(t, a.NextKey(), b.NextKey(), "key %d diverged", i)
	}
}

func TestISAAC_SeedSensitivity(t *testing.T) {
	a := NewISAAC([]uint32{1, 2, 3, 4})
	b := NewISAAC([]uint32{1, 2, 3, 5})

	same := 0
	for range 64 {
		if a.NextKey() == b.NextKey() {
			same++
		}
	}
	assert.Less(t, same, 4, "streams with different seeds should not match")
}

func TestSessionCiphers_EncoderOffset(t *testing.T) {
	const clientKey, serverKey = int64(0x1122334455667788), int64(-42)

	dec, enc := SessionCiphers(clientKey, serverKey)

	seed := []uint32{0x11223344, 0x55667788, 0xFFFFFFFF, 0xFFFFFFD6}
	wantDec := NewISAAC(seed)
	for i := range seed {
		seed[i] += SessionSeedOffset
	}
	wantEnc := NewISAAC(seed)

	for range 10 {
		assert.Equal(t, wantDec.NextKey(), dec.NextKey())
		assert.Equal(t, wantEnc.NextKey(), enc.NextKey())
	}
}
