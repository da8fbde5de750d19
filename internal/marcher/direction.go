package marcher

import "github.com/MeKo-Tech/tilemarch/internal/utils"

// Direction is the tracer heading at a polygon vertex.
type Direction uint8

// Directions of travel. Up decreases y.
const (
	None Direction = iota
	Up
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// Step returns the unit offset for one move in direction d.
func (d Direction) Step() utils.IPoint {
	switch d {
	case Up:
		return utils.IPoint{X: 0, Y: -1}
	case Down:
		return utils.IPoint{X: 0, Y: 1}
	case Left:
		return utils.IPoint{X: -1, Y: 0}
	case Right:
		return utils.IPoint{X: 1, Y: 0}
	default:
		return utils.IPoint{}
	}
}

// Bits of the 2x2 neighbourhood sampled around a grid corner.
const (
	TopLeft     = 1
	TopRight    = 2
	BottomLeft  = 4
	BottomRight = 8
)

// SampleCorner encodes the four cells touching corner (x, y) as a mask.
func SampleCorner(g *Grid, x, y int) int {
	mask := 0
	if g.IsColliding(x-1, y-1) {
		mask |= TopLeft
	}
	if g.IsColliding(x, y-1) {
		mask |= TopRight
	}
	if g.IsColliding(x-1, y) {
		mask |= BottomLeft
	}
	if g.IsColliding(x, y) {
		mask |= BottomRight
	}
	return mask
}

// ResolveDirection maps a corner mask to the next heading. The saddle masks
// 6 and 9 depend on the heading of the previous step so the walk never
// crosses itself.
func ResolveDirection(mask int, previous Direction) Direction {
	switch mask {
	case 1:
		return Up
	case 2:
		return Right
	case 3:
		return Right
	case 4:
		return Left
	case 5:
		return Up
	case 6:
		if previous == Up {
			return Left
		}
		return Right
	case 7:
		return Right
	case 8:
		return Down
	case 9:
		if previous == Right {
			return Up
		}
		return Down
	case 10:
		return Down
	case 11:
		return Down
	case 12:
		return Left
	case 13:
		return Up
	case 14:
		return Left
	default:
		return None
	}
}
