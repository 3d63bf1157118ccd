package model

// Direction is a compass code as the client understands it.
type Direction int8

const (
	DirNone      Direction = -1
	DirNorthWest Direction = 0
	DirNorth     Direction = 1
	DirNorthEast Direction = 2
	DirWest      Direction = 3
	DirEast      Direction = 4
	DirSouthWest Direction = 5
	DirSouth     Direction = 6
	DirSouthEast Direction = 7
)

// directionTable is indexed by (sign(dy)+1)*3 + (sign(dx)+1).
var directionTable = [9]Direction{
	DirSouthWest, DirSouth, DirSouthEast,
	DirWest, DirNone, DirEast,
	DirNorthWest, DirNorth, DirNorthEast,
}

var directionDeltas = [8][2]int{
	DirNorthWest: {-1, 1},
	DirNorth:     {0, 1},
	DirNorthEast: {1, 1},
	DirWest:      {-1, 0},
	DirEast:      {1, 0},
	DirSouthWest: {-1, -1},
	DirSouth:     {0, -1},
	DirSouthEast: {1, -1},
}

// DirectionOf returns the compass code for the sign of (dx, dy).
// (0, 0) has no code and yields DirNone.
func DirectionOf(dx, dy int) Direction {
	return directionTable[(sign(dy)+1)*3+sign(dx)+1]
}

// DirectionBetween returns the direction of a single step from one tile to another.
func DirectionBetween(from, to Position) Direction {
	return DirectionOf(from.Delta(to))
}

// Valid reports whether d is one of the eight compass codes.
func (d Direction) Valid() bool {
	return d >= DirNorthWest && d <= DirSouthEast
}

// Delta returns the unit step of d. DirNone returns (0, 0).
func (d Direction) Delta() (dx, dy int) {
	if !d.Valid() {
		return 0, 0
	}
	return directionDeltas[d][0], directionDeltas[d][1]
}

func (d Direction) String() string {
	switch d {
	case DirNorthWest:
		return "NW"
	case DirNorth:
		return "N"
	case DirNorthEast:
		return "NE"
	case DirWest:
		return "W"
	case DirEast:
		return "E"
	case DirSouthWest:
		return "SW"
	case DirSouth:
		return "S"
	case DirSouthEast:
		return "SE"
	default:
		return "NONE"
	}
}
