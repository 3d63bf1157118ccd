package gameserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/clientpackets"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/model"
)

type handlerFixture struct {
	engine  *Engine
	handler *Handler
	player  *model.Player
	client  *GameClient
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	cfg := testConfig()
	e := NewEngine(cfg, NewClientManager())
	p := newPlayer(cfg, "Zezima")
	c := newTestClient(t, 32)
	require.NoError(t, login(t, e, p, c))
	queued(c)

	return &handlerFixture{engine: e, handler: NewHandler(e), player: p, client: c}
}

// apply runs the queued actions without a full tick, so flags stay set.
func (f *handlerFixture) apply() {
	for _, fn := range f.engine.drain() {
		fn()
	}
}

func TestHandler_PublicChat(t *testing.T) {
	f := newHandlerFixture(t)

	b := packet.NewBuffer(16)
	b.WriteByteT(1, packet.TransformSubtract)
	b.WriteByteT(2, packet.TransformSubtract)
	text := []byte{0x11, 0x22, 0x33}
	for i := len(text) - 1; i >= 0; i-- {
		b.WriteByteT(int(text[i]), packet.TransformAdd)
	}

	require.NoError(t, f.handler.HandlePacket(f.client, constants.OpcodePublicChat, b.Bytes()))
	assert.False(t, f.player.Flags().Has(model.FlagChat), "applied on the tick goroutine")

	f.apply()
	require.True(t, f.player.Flags().Has(model.FlagChat))
	msg := f.player.ChatPayload()
	assert.Equal(t, 1, msg.Effects)
	assert.Equal(t, 2, msg.Colour)
	assert.Equal(t, text, msg.Text)
}

func TestHandler_PublicChatTooLong(t *testing.T) {
	f := newHandlerFixture(t)

	payload := make([]byte, 2+clientpackets.MaxChatLength+1)
	err := f.handler.HandlePacket(f.client, constants.OpcodePublicChat, payload)
	require.Error(t, err)
}

func TestHandler_Walk(t *testing.T) {
	f := newHandlerFixture(t)

	pos := f.player.Position()
	payload := clientpackets.WriteWalk([]model.Position{
		model.NewPosition(pos.X+3, pos.Y, 0),
	}, true)

	require.NoError(t, f.handler.HandlePacket(f.client, constants.OpcodeMapWalk, payload))
	f.apply()

	assert.Equal(t, 3, f.player.Walking().Len())
	assert.True(t, f.player.Walking().Running())
}

func TestHandler_TeleportCommand(t *testing.T) {
	f := newHandlerFixture(t)

	require.NoError(t, f.handler.HandlePacket(f.client, constants.OpcodeCommand, []byte("tele 3000 3001 1\n")))
	f.apply()

	assert.Equal(t, model.NewPosition(3000, 3001, 1), f.player.Position())
	assert.True(t, f.player.NeedsPlacement())
}

func TestHandler_AnimAndGfxCommands(t *testing.T) {
	f := newHandlerFixture(t)

	require.NoError(t, f.handler.HandlePacket(f.client, constants.OpcodeCommand, []byte("anim 866\n")))
	require.NoError(t, f.handler.HandlePacket(f.client, constants.OpcodeCommand, []byte("GFX 199\n")))
	f.apply()

	require.True(t, f.player.Flags().Has(model.FlagAnimation))
	require.True(t, f.player.Flags().Has(model.FlagGraphic))
	assert.Equal(t, 866, f.player.AnimationPayload().ID)
	assert.Equal(t, model.Graphic{ID: 199, Height: 100}, f.player.GraphicPayload())
}

func TestHandler_CommandErrorsAnswerInChat(t *testing.T) {
	tests := []struct {
		name    string
		command string
	}{
		{"unknown", "dance\n"},
		{"not a number", "tele x y\n"},
		{"bad plane", "tele 3000 3000 7\n"},
		{"wrong arity", "anim\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)

			require.NoError(t, f.handler.HandlePacket(f.client, constants.OpcodeCommand, []byte(tt.command)))
			assert.Equal(t, []int{constants.OpcodeGameMessage}, queued(f.client))

			f.apply()
			assert.False(t, f.player.Flags().Any())
		})
	}
}

func TestHandler_LogoutButton(t *testing.T) {
	f := newHandlerFixture(t)

	payload := []byte{constants.ButtonLogout >> 8, constants.ButtonLogout & 0xFF}
	require.NoError(t, f.handler.HandlePacket(f.client, constants.OpcodeButtonClick, payload))

	assert.True(t, f.client.IsMarkedForDisconnection())
	assert.Equal(t, []int{constants.OpcodeLogout}, queued(f.client))
}

func TestHandler_OtherButtonIgnored(t *testing.T) {
	f := newHandlerFixture(t)

	require.NoError(t, f.handler.HandlePacket(f.client, constants.OpcodeButtonClick, []byte{0, 1}))
	assert.False(t, f.client.IsMarkedForDisconnection())
	assert.Empty(t, queued(f.client))
}

func TestHandler_IgnoresKeepAlive(t *testing.T) {
	f := newHandlerFixture(t)

	require.NoError(t, f.handler.HandlePacket(f.client, constants.OpcodeKeepAlive, nil))
	require.NoError(t, f.handler.HandlePacket(f.client, constants.OpcodeCameraMove, []byte{0, 0, 0, 0}))
	assert.Zero(t, pending(f.engine))
}

func TestHandler_RequiresPlayer(t *testing.T) {
	e := NewEngine(testConfig(), NewClientManager())
	h := NewHandler(e)

	err := h.HandlePacket(newTestClient(t, 4), constants.OpcodeKeepAlive, nil)
	require.Error(t, err)
}
