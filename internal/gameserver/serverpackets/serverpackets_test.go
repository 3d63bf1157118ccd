package serverpackets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/model"
)

func TestMapRegion_Write(t *testing.T) {
	data, err := NewMapRegion(model.NewPosition(3222, 3218, 0)).Write()
	require.NoError(t, err)
	require.Len(t, data, 5)
	assert.Equal(t, byte(constants.OpcodeMapRegion), data[0])

	r := packet.NewReader(data[1:])
	x, err := r.ReadShortT(packet.TransformAdd, packet.BigEndian)
	require.NoError(t, err)
	y, err := r.ReadShort()
	require.NoError(t, err)
	assert.Equal(t, 3222>>3, x)
	assert.Equal(t, 3218>>3, y)
}

func TestPlayerInit_Write(t *testing.T) {
	data, err := PlayerInit{Slot: 300, Member: true}.Write()
	require.NoError(t, err)
	assert.Equal(t, []byte{constants.OpcodePlayerInit, 1 + 128, byte(300&0xFF + 128), 300 >> 8}, data)

	_, err = PlayerInit{Slot: constants.PlayerListTerminator}.Write()
	assert.Error(t, err)
}

func TestGameMessage_Write(t *testing.T) {
	data, err := NewGameMessage("Welcome").Write()
	require.NoError(t, err)
	assert.Equal(t, byte(constants.OpcodeGameMessage), data[0])
	assert.Equal(t, byte(len("Welcome")+1), data[1])
	assert.Equal(t, "Welcome\n", string(data[2:]))

	_, err = NewGameMessage(strings.Repeat("x", MaxGameMessage+1)).Write()
	assert.Error(t, err)
}

func TestLoginReplies_Write(t *testing.T) {
	data, err := ServerKeyExchange{ServerKey: 0x0102030405060708}.Write()
	require.NoError(t, err)
	require.Len(t, data, 17)
	assert.Equal(t, make([]byte, 8), data[:8])
	assert.Equal(t, byte(0), data[8])
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, data[9:])

	data, err = LoginResponse{Code: constants.LoginSuccess, Rights: 2}.Write()
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 2, 0}, data)

	data, err = Logout{}.Write()
	require.NoError(t, err)
	assert.Equal(t, []byte{constants.OpcodeLogout}, data)
}
