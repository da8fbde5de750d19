// Package marcher extracts closed boundary polygons from tile grids using a
// marching-squares walk over grid corners, simplifies them and scales them to
// world space. Results can be persisted to a plain-text cache.
package marcher

import (
	"math"
	"strings"
)

// Grid wraps a row-major tile array and the set of tile ids that count as
// solid. It is immutable once constructed.
type Grid struct {
	width     int
	height    int
	tiles     []int
	colliding map[int]struct{}
}

// NewGrid validates the dimensions against the tile array and copies the
// inputs. A mismatch is reported as a *ConfigurationError.
func NewGrid(width, height int, tiles []int, collidingIDs []int) (*Grid, error) {
	if width < 0 || height < 0 {
		return nil, &ConfigurationError{Width: width, Height: height, Tiles: len(tiles), Reason: "negative dimensions"}
	}
	if width != 0 && height > math.MaxInt/width {
		return nil, &ConfigurationError{Width: width, Height: height, Tiles: len(tiles), Reason: "dimensions overflow"}
	}
	if len(tiles) != width*height {
		return nil, &ConfigurationError{Width: width, Height: height, Tiles: len(tiles)}
	}

	g := &Grid{
		width:     width,
		height:    height,
		tiles:     append([]int(nil), tiles...),
		colliding: make(map[int]struct{}, len(collidingIDs)),
	}
	for _, id := range collidingIDs {
		g.colliding[id] = struct{}{}
	}
	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Tile returns the tile id at (x, y) and whether the coordinate is in range.
func (g *Grid) Tile(x, y int) (int, bool) {
	if !g.inBounds(x, y) {
		return 0, false
	}
	return g.tiles[y*g.width+x], true
}

// IsColliding reports whether the tile at (x, y) is solid. Coordinates below
// zero or at/after the grid size are never colliding.
func (g *Grid) IsColliding(x, y int) bool {
	if !g.inBounds(x, y) {
		return false
	}
	_, ok := g.colliding[g.tiles[y*g.width+x]]
	return ok
}

// CollidingCount returns the number of solid tiles.
func (g *Grid) CollidingCount() int {
	n := 0
	for _, t := range g.tiles {
		if _, ok := g.colliding[t]; ok {
			n++
		}
	}
	return n
}

// String renders the collision map as rows of 0 and 1.
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow((g.width + 1) * g.height)
	for y := range g.height {
		for x := range g.width {
			if g.IsColliding(x, y) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}
