package gameserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/model"
	"github.com/udisondev/rs2go/internal/testutil"
)

type testServer struct {
	addr    string
	engine  *Engine
	clients *ClientManager
}

// startServer runs an engine and a server on a loopback port until the test ends.
func startServer(t *testing.T) *testServer {
	t.Helper()

	cfg := testConfig()
	clients := NewClientManager()
	engine := NewEngine(cfg, clients)
	srv := NewServer(cfg, engine, clients)

	ln, addr := testutil.ListenTCP(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{}, 2)
	go func() {
		_ = engine.Run(ctx)
		done <- struct{}{}
	}()
	go func() {
		_ = srv.Serve(ctx, ln)
		done <- struct{}{}
	}()
	t.Cleanup(func() {
		cancel()
		for range 2 {
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Error("server did not stop")
				return
			}
		}
	})

	require.NoError(t, testutil.WaitForTCPReady(addr, time.Second))
	return &testServer{addr: addr, engine: engine, clients: clients}
}

func (s *testServer) dial(t *testing.T) *testutil.RawClient {
	t.Helper()
	c, err := testutil.DialRaw(s.addr, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestServer_LoginEntersWorld(t *testing.T) {
	s := startServer(t)
	c := s.dial(t)

	code, err := c.Login("zezima", "hunter2")
	require.NoError(t, err)
	require.Equal(t, constants.LoginSuccess, code)

	initPkt, err := c.Read()
	require.NoError(t, err)
	require.Equal(t, constants.OpcodePlayerInit, initPkt.Opcode)
	r := packet.NewReader(initPkt.Payload)
	member, _ := r.ReadByteT(packet.TransformAdd)
	slot, _ := r.ReadShortT(packet.TransformAdd, packet.LittleEndian)
	assert.Equal(t, 1, member)
	assert.Equal(t, 1, slot)

	region, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, constants.OpcodeMapRegion, region.Opcode)

	update, err := c.Read()
	require.NoError(t, err)
	require.Equal(t, constants.OpcodePlayerUpdate, update.Opcode)

	// the first update places the player
	br := packet.NewBitReader(update.Payload, 0)
	needed, _ := br.ReadBit()
	kind, _ := br.ReadBits(2)
	assert.True(t, needed)
	assert.Equal(t, uint32(constants.MovementPlacement), kind)

	testutil.WaitFor(t, func() bool { return s.clients.PlayerCount() == 1 }, time.Second)
}

func TestServer_DuplicateLogin(t *testing.T) {
	s := startServer(t)

	first := s.dial(t)
	code, err := first.Login("zezima", "a")
	require.NoError(t, err)
	require.Equal(t, constants.LoginSuccess, code)

	second := s.dial(t)
	code, err = second.Login("Zezima", "b")
	require.NoError(t, err)
	assert.Equal(t, constants.LoginAlreadyOnline, code)
}

func TestServer_InvalidName(t *testing.T) {
	s := startServer(t)

	c := s.dial(t)
	code, err := c.Login("bad;name", "pw")
	require.NoError(t, err)
	assert.Equal(t, constants.LoginInvalid, code)
}

func TestServer_LogoutButton(t *testing.T) {
	s := startServer(t)

	c := s.dial(t)
	code, err := c.Login("zezima", "pw")
	require.NoError(t, err)
	require.Equal(t, constants.LoginSuccess, code)
	testutil.WaitFor(t, func() bool { return s.engine.World().Players().Len() == 1 }, time.Second)

	require.NoError(t, c.Send(constants.OpcodeButtonClick, []byte{constants.ButtonLogout >> 8, constants.ButtonLogout & 0xFF}))
	_, err = c.ReadUntil(constants.OpcodeLogout)
	require.NoError(t, err)

	testutil.WaitFor(t, func() bool { return s.engine.World().Players().Len() == 0 }, 2*time.Second)

	// the name is free again
	again := s.dial(t)
	code, err = again.Login("zezima", "pw")
	require.NoError(t, err)
	assert.Equal(t, constants.LoginSuccess, code)
}

func TestServer_DisconnectLeavesWorld(t *testing.T) {
	s := startServer(t)

	c := s.dial(t)
	code, err := c.Login("zezima", "pw")
	require.NoError(t, err)
	require.Equal(t, constants.LoginSuccess, code)
	testutil.WaitFor(t, func() bool { return s.engine.World().Players().Len() == 1 }, time.Second)

	require.NoError(t, c.Close())
	testutil.WaitFor(t, func() bool { return s.engine.World().Players().Len() == 0 }, 2*time.Second)
	testutil.WaitFor(t, func() bool { return s.clients.Connected() == 0 }, time.Second)
}

func TestServer_TeleportCommandPlacesPlayer(t *testing.T) {
	s := startServer(t)

	c := s.dial(t)
	code, err := c.Login("zezima", "pw")
	require.NoError(t, err)
	require.Equal(t, constants.LoginSuccess, code)

	// consume the placement of the login
	_, err = c.ReadUntil(constants.OpcodePlayerUpdate)
	require.NoError(t, err)

	require.NoError(t, c.Send(constants.OpcodeCommand, []byte("tele 3225 3220\n")))

	for range 20 {
		p, err := c.ReadUntil(constants.OpcodePlayerUpdate)
		require.NoError(t, err)

		br := packet.NewBitReader(p.Payload, 0)
		needed, _ := br.ReadBit()
		if !needed {
			continue
		}
		kind, _ := br.ReadBits(2)
		if kind != constants.MovementPlacement {
			continue
		}
		plane, _ := br.ReadBits(2)
		_, _ = br.ReadBit() // discard queue
		_, _ = br.ReadBit() // attributes
		localY, _ := br.ReadBits(7)
		localX, _ := br.ReadBits(7)

		assert.Equal(t, uint32(0), plane)
		// the region base is still the login spawn (3222, 3218)
		spawn := s.engine.cfg.World.Spawn
		base := model.NewPosition(spawn.X, spawn.Y, spawn.Plane)
		dest := model.NewPosition(3225, 3220, 0)
		assert.Equal(t, uint32(dest.LocalY(base)), localY)
		assert.Equal(t, uint32(dest.LocalX(base)), localX)
		return
	}
	t.Fatal("no placement after teleport")
}
