package gameserver

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadPool_ReadReusesSlice(t *testing.T) {
	pool := newPayloadPool(16, maxInboundPayload)

	b, err := pool.Read(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6, 7, 8}), 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, b)
	pool.Release(b)

	again, err := pool.Read(bytes.NewReader([]byte{9, 9}), 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9}, again)
}

func TestPayloadPool_ReadLargerThanDefault(t *testing.T) {
	pool := newPayloadPool(16, maxInboundPayload)

	b, err := pool.Read(bytes.NewReader(make([]byte, 4000)), 4000)
	require.NoError(t, err)
	assert.Len(t, b, 4000)
	pool.Release(b)
	pool.Release(nil)
}

func TestPayloadPool_ReadErrors(t *testing.T) {
	pool := newPayloadPool(16, maxInboundPayload)

	_, err := pool.Read(bytes.NewReader([]byte{1, 2}), 4)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = pool.Read(bytes.NewReader(nil), maxInboundPayload+1)
	assert.Error(t, err)
}

func TestPayloadPool_ZeroSize(t *testing.T) {
	pool := newPayloadPool(16, maxInboundPayload)

	b, err := pool.Read(bytes.NewReader(nil), 0)
	require.NoError(t, err)
	assert.Empty(t, b)
}

// BenchmarkPayloadPool_Read: чтение типичного входящего пакета
func BenchmarkPayloadPool_Read(b *testing.B) {
	b.ReportAllocs()

	pool := newPayloadPool(256, maxInboundPayload)
	data := make([]byte, 64)
	r := bytes.NewReader(data)

	b.ResetTimer()
	for range b.N {
		r.Reset(data)
		buf, err := pool.Read(r, len(data))
		if err != nil {
			b.Fatal(err)
		}
		pool.Release(buf)
	}
}
