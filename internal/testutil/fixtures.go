package testutil

import (
	"fmt"
	"strings"
)

// GridFixture is a tile grid described as ASCII art.
type GridFixture struct {
	Name   string
	Width  int
	Height int
	Tiles  []int
}

// ParseGrid converts rows of characters into a tile grid. '#' becomes tile
// id 1, '.' tile id 0 and digits their numeric value. Blank lines and
// surrounding whitespace are ignored.
func ParseGrid(art string) (GridFixture, error) {
	var rows []string
	for _, line := range strings.Split(art, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		return GridFixture{}, nil
	}

	w := len(rows[0])
	g := GridFixture{Width: w, Height: len(rows), Tiles: make([]int, 0, w*len(rows))}
	for y, row := range rows {
		if len(row) != w {
			return GridFixture{}, fmt.Errorf("row %d has %d columns, expected %d", y, len(row), w)
		}
		for _, c := range row {
			switch {
			case c == '#':
				g.Tiles = append(g.Tiles, 1)
			case c == '.':
				g.Tiles = append(g.Tiles, 0)
			case c >= '0' && c <= '9':
				g.Tiles = append(g.Tiles, int(c-'0'))
			default:
				return GridFixture{}, fmt.Errorf("row %d: unexpected character %q", y, c)
			}
		}
	}
	return g, nil
}

// MustParseGrid is ParseGrid for fixtures known to be valid.
func MustParseGrid(name, art string) GridFixture {
	g, err := ParseGrid(art)
	if err != nil {
		panic(fmt.Sprintf("fixture %s: %v", name, err))
	}
	g.Name = name
	return g
}

// Common fixtures. Tile id 1 is the solid tile unless stated otherwise.
var (
	// Square2x2 is a 2x2 solid block inside a 4x4 grid.
	Square2x2 = MustParseGrid("square", `
		....
		.##.
		.##.
		....`)

	// Empty contains no solid tiles.
	Empty = MustParseGrid("empty", `
		....
		....
		....`)

	// TwoBlocks holds two disjoint 2x2 blocks.
	TwoBlocks = MustParseGrid("two-blocks", `
		.......
		.##....
		.##.##.
		....##.
		.......`)

	// Ring is a 4x4 block with a 2x2 hole, producing an outer and an inner contour.
	Ring = MustParseGrid("ring", `
		......
		.####.
		.#..#.
		.#..#.
		.####.
		......`)

	// Diagonal has two blocks touching only at a corner (saddle point).
	Diagonal = MustParseGrid("diagonal", `
		....
		.#..
		..#.
		....`)

	// Full is solid everywhere, so its contour runs along the grid border.
	Full = MustParseGrid("full", `
		###
		###`)

	// Mixed uses several tile ids; only some of them are solid.
	Mixed = MustParseGrid("mixed", `
		.......
		.11.22.
		.11.22.
		.......
		.3333..`)

	// Staircase is an L-like shape with several direction changes.
	Staircase = MustParseGrid("staircase", `
		.......
		.#.....
		.##....
		.###...
		.####..
		.......`)
)

// Fixtures indexes the common fixtures by name.
var Fixtures = map[string]GridFixture{
	Square2x2.Name: Square2x2,
	Empty.Name:     Empty,
	TwoBlocks.Name: TwoBlocks,
	Ring.Name:      Ring,
	Diagonal.Name:  Diagonal,
	Full.Name:      Full,
	Mixed.Name:     Mixed,
	Staircase.Name: Staircase,
}

// CSV renders the fixture as rows of comma-separated tile ids.
func (g GridFixture) CSV() string {
	var b strings.Builder
	for y := range g.Height {
		for x := range g.Width {
			if x > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", g.Tiles[y*g.Width+x])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
