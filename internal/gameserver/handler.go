package gameserver

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/clientpackets"
	"github.com/udisondev/rs2go/internal/gameserver/serverpackets"
	"github.com/udisondev/rs2go/internal/model"
)

// Handler decodes inbound packets on the connection goroutine and hands the
// resulting actions to the engine.
type Handler struct {
	engine *Engine
}

// NewHandler creates a packet handler.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// HandlePacket dispatches one inbound packet. The payload is only valid for
// the duration of the call. A returned error closes the connection.
func (h *Handler) HandlePacket(client *GameClient, opcode int, payload []byte) error {
	p := client.Player()
	if p == nil {
		return fmt.Errorf("packet %d from client without player", opcode)
	}

	switch opcode {
	case constants.OpcodePublicChat:
		return h.handleChat(p, payload)
	case constants.OpcodeMapWalk, constants.OpcodeMinimapWalk, constants.OpcodeCommandWalk:
		return h.handleWalk(p, opcode, payload)
	case constants.OpcodeButtonClick:
		return h.handleButton(client, payload)
	case constants.OpcodeCommand:
		return h.handleCommand(client, p, payload)
	default:
		// keepalive, idle, focus and camera packets carry nothing the server needs
		return nil
	}
}

func (h *Handler) handleChat(p *model.Player, payload []byte) error {
	msg, err := clientpackets.ParsePublicChat(payload)
	if err != nil {
		return fmt.Errorf("parsing chat: %w", err)
	}
	h.engine.Submit(func() { p.Chat(msg) })
	return nil
}

func (h *Handler) handleWalk(p *model.Player, opcode int, payload []byte) error {
	walk, err := clientpackets.ParseWalk(opcode, payload)
	if err != nil {
		return fmt.Errorf("parsing walk: %w", err)
	}
	h.engine.Submit(func() {
		if !p.Active() {
			return
		}
		pos := p.Position()
		for i := range walk.Waypoints {
			walk.Waypoints[i].Plane = pos.Plane
		}
		p.Walking().SetPath(pos, walk.Waypoints, walk.Run)
	})
	return nil
}

func (h *Handler) handleButton(client *GameClient, payload []byte) error {
	id, err := clientpackets.ParseButtonClick(payload)
	if err != nil {
		return fmt.Errorf("parsing button: %w", err)
	}
	if id != constants.ButtonLogout {
		slog.Debug("unhandled button", "client", client.IP(), "button", id)
		return nil
	}

	pkt, _ := serverpackets.Logout{}.Write()
	if err := client.SendPacket(pkt); err != nil {
		return fmt.Errorf("sending logout: %w", err)
	}
	client.MarkForDisconnection()
	return nil
}

// handleCommand runs a chat box command.
//
//	::tele x y [plane]
//	::anim id
//	::gfx id
func (h *Handler) handleCommand(client *GameClient, p *model.Player, payload []byte) error {
	cmd, err := clientpackets.ParseCommand(payload)
	if err != nil {
		return fmt.Errorf("parsing command: %w", err)
	}

	args, err := intArgs(cmd.Args)
	if err != nil {
		slog.Debug("bad command arguments", "client", client.IP(), "command", cmd.Name, "error", err)
		return h.message(client, "Arguments must be numbers")
	}

	switch {
	case cmd.Name == "tele" && (len(args) == 2 || len(args) == 3):
		dest := model.NewPosition(args[0], args[1], p.Position().Plane)
		if len(args) == 3 {
			dest.Plane = args[2]
		}
		if dest.Plane < 0 || dest.Plane > 3 {
			return h.message(client, "Plane must be 0-3")
		}
		h.engine.Submit(func() { p.Teleport(dest) })
	case cmd.Name == "anim" && len(args) == 1:
		h.engine.Submit(func() { p.Animate(args[0], 0) })
	case cmd.Name == "gfx" && len(args) == 1:
		h.engine.Submit(func() { p.PlayGraphic(args[0], 100, 0) })
	default:
		return h.message(client, "Unknown command: "+cmd.Name)
	}
	return nil
}

func (h *Handler) message(client *GameClient, text string) error {
	pkt, err := serverpackets.NewGameMessage(text).Write()
	if err != nil {
		return err
	}
	return client.SendPacket(pkt)
}

func intArgs(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("bad argument %q: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
}
