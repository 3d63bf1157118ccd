package clientpackets

import (
	"fmt"

	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/model"
)

// Walk is a path request (C2S 164 map click, 248 minimap click, 98 command walk).
type Walk struct {
	// Waypoints in absolute tiles; the first one is where the path starts.
	Waypoints []model.Position
	Run       bool
}

// ParseWalk parses a walk packet. Minimap walks carry an anti-cheat trailer
// that is dropped before decoding.
//
// Packet structure:
//   - firstX  short (LE, add)
//   - steps   n × (signed byte dx, signed byte dy)
//   - firstY  short (LE)
//   - run     byte (negate)
func ParseWalk(opcode int, data []byte) (*Walk, error) {
	if opcode == constants.OpcodeMinimapWalk {
		if len(data) < constants.MinimapWalkTrailer {
			return nil, fmt.Errorf("minimap walk of %d bytes has no trailer", len(data))
		}
		data = data[:len(data)-constants.MinimapWalkTrailer]
	}
	if len(data) < 5 || (len(data)-5)%2 != 0 {
		return nil, fmt.Errorf("walk payload of %d bytes", len(data))
	}
	steps := (len(data) - 5) / 2
	if steps > model.MaxWalkingSteps {
		return nil, fmt.Errorf("walk of %d steps exceeds %d", steps, model.MaxWalkingSteps)
	}

	r := packet.NewReader(data)
	firstX, err := r.ReadShortT(packet.TransformAdd, packet.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("reading first x: %w", err)
	}

	deltas := make([][2]int, steps)
	for i := range deltas {
		dx, err := r.ReadSignedByteT(packet.TransformNone)
		if err != nil {
			return nil, fmt.Errorf("reading step %d: %w", i, err)
		}
		dy, err := r.ReadSignedByteT(packet.TransformNone)
		if err != nil {
			return nil, fmt.Errorf("reading step %d: %w", i, err)
		}
		deltas[i] = [2]int{dx, dy}
	}

	firstY, err := r.ReadShortT(packet.TransformNone, packet.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("reading first y: %w", err)
	}
	run, err := r.ReadByteT(packet.TransformNegate)
	if err != nil {
		return nil, fmt.Errorf("reading run flag: %w", err)
	}

	first := model.NewPosition(firstX, firstY, 0)
	w := &Walk{
		Waypoints: make([]model.Position, 0, steps+1),
		Run:       run&0xFF == 1,
	}
	w.Waypoints = append(w.Waypoints, first)
	for _, d := range deltas {
		w.Waypoints = append(w.Waypoints, first.Translate(d[0], d[1]))
	}
	return w, nil
}

// WriteWalk builds a walk payload (without opcode) the way the client does.
func WriteWalk(waypoints []model.Position, run bool) []byte {
	first := waypoints[0]
	b := packet.NewBuffer(5 + 2*(len(waypoints)-1))
	b.WriteShortT(first.X, packet.TransformAdd, packet.LittleEndian)
	for _, wp := range waypoints[1:] {
		b.WriteByteT(wp.X-first.X, packet.TransformNone)
		b.WriteByteT(wp.Y-first.Y, packet.TransformNone)
	}
	b.WriteShortT(first.Y, packet.TransformNone, packet.LittleEndian)
	runFlag := 0
	if run {
		runFlag = 1
	}
	b.WriteByteT(runFlag, packet.TransformNegate)
	return b.Bytes()
}
