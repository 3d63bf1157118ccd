package model

// Position представляет координаты тайла в игровом мире.
// Value type, передаётся по значению (immutable).
type Position struct {
	X     int
	Y     int
	Plane int // 0-3
}

// Map region geometry. The client keeps a 104×104 tile area loaded around a
// region base; local coordinates are measured from that area's corner.
const (
	// RegionOffset is how many 8-tile chunks the loaded area extends before the base chunk.
	RegionOffset = 6

	// RegionEdge is the margin (tiles) the player may not cross without a reload.
	RegionEdge = 16

	// RegionSpan is the width of the loaded area in tiles.
	RegionSpan = 104
)

// NewPosition создаёт Position с указанными координатами.
func NewPosition(x, y, plane int) Position {
	return Position{X: x, Y: y, Plane: plane}
}

// RegionX returns the map region chunk X used as origin for local coordinates.
func (p Position) RegionX() int {
	return (p.X >> 3) - RegionOffset
}

// RegionY returns the map region chunk Y used as origin for local coordinates.
func (p Position) RegionY() int {
	return (p.Y >> 3) - RegionOffset
}

// LocalX returns X relative to the area loaded around base.
func (p Position) LocalX(base Position) int {
	return p.X - 8*base.RegionX()
}

// LocalY returns Y relative to the area loaded around base.
func (p Position) LocalY(base Position) int {
	return p.Y - 8*base.RegionY()
}

// Delta returns other − p per axis.
func (p Position) Delta(other Position) (dx, dy int) {
	return other.X - p.X, other.Y - p.Y
}

// WithinDistance reports whether other is on the same plane and no further than
// dist tiles away on either axis.
func (p Position) WithinDistance(other Position, dist int) bool {
	if p.Plane != other.Plane {
		return false
	}
	dx, dy := p.Delta(other)
	return abs(dx) <= dist && abs(dy) <= dist
}

// Translate возвращает новую Position, сдвинутую на (dx, dy).
func (p Position) Translate(dx, dy int) Position {
	p.X += dx
	p.Y += dy
	return p
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
