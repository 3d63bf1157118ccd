package serverpackets

import (
	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/model"
)

// MapRegion tells the client which map area to load (S2C 73).
//
// Packet structure:
//   - chunkX  short (add)  region base X >> 3
//   - chunkY  short        region base Y >> 3
//
// Local coordinates of later placements are relative to this base, so the
// packet must reach the client before the next player update.
type MapRegion struct {
	Base model.Position
}

// NewMapRegion creates a MapRegion around base.
func NewMapRegion(base model.Position) MapRegion {
	return MapRegion{Base: base}
}

// Write serializes MapRegion.
func (p MapRegion) Write() ([]byte, error) {
	b := packet.NewBuffer(5)
	b.WriteHeader(constants.OpcodeMapRegion)
	b.WriteShortT(p.Base.RegionX()+model.RegionOffset, packet.TransformAdd, packet.BigEndian)
	b.WriteShort(p.Base.RegionY() + model.RegionOffset)
	return b.Bytes(), nil
}
