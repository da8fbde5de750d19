// Package level loads tile layers from Tiled TMX maps or plain CSV grids and
// turns the profiled layers into contour engines.
package level

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/lafriks/go-tiled"
)

// collidesProperty marks tileset tiles that block movement.
const collidesProperty = "collides"

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported level format")

// Layer is one rectangular grid of global tile ids. Zero is the empty tile.
type Layer struct {
	Name       string
	Width      int
	Height     int
	Tiles      []int
	TileWidth  int
	TileHeight int
	// OffsetX and OffsetY are the layer's pixel offset inside the map.
	OffsetX float64
	OffsetY float64
}

// Map is a loaded level.
type Map struct {
	Name       string
	Width      int
	Height     int
	TileWidth  int
	TileHeight int
	Layers     []*Layer

	colliding []int
}

// Layer returns the layer called name, or nil.
func (m *Map) Layer(name string) *Layer {
	for _, l := range m.Layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// CollidingIDs returns the global ids of tileset tiles flagged "collides",
// sorted ascending.
func (m *Map) CollidingIDs() []int {
	return slices.Clone(m.colliding)
}

// LoadTMX parses a Tiled map from fsys. Every tile layer is converted; object
// and image layers are ignored.
func LoadTMX(fsys fs.FS, path string) (*Map, error) {
	tm, err := tiled.LoadFile(path, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", path, err)
	}

	m := &Map{
		Name:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Width:      tm.Width,
		Height:     tm.Height,
		TileWidth:  tm.TileWidth,
		TileHeight: tm.TileHeight,
	}

	for _, ts := range tm.Tilesets {
		for _, tile := range ts.Tiles {
			if collides, _ := strconv.ParseBool(tile.Properties.GetString(collidesProperty)); collides {
				m.colliding = append(m.colliding, int(ts.FirstGID+tile.ID))
			}
		}
	}
	slices.Sort(m.colliding)

	for _, tl := range tm.Layers {
		l := &Layer{
			Name:       tl.Name,
			Width:      tm.Width,
			Height:     tm.Height,
			TileWidth:  tm.TileWidth,
			TileHeight: tm.TileHeight,
			OffsetX:    float64(tl.OffsetX),
			OffsetY:    float64(tl.OffsetY),
			Tiles:      make([]int, tm.Width*tm.Height),
		}
		for i, tile := range tl.Tiles {
			if i >= len(l.Tiles) {
				break
			}
			if tile == nil || tile.IsNil() || tile.Tileset == nil {
				continue
			}
			l.Tiles[i] = int(tile.Tileset.FirstGID + tile.ID)
		}
		m.Layers = append(m.Layers, l)
	}

	return m, nil
}

// LoadCSV reads a grid of comma-separated tile ids, one row per line. Blank
// lines are skipped and every row must have the same number of columns.
func LoadCSV(r io.Reader) (*Layer, error) {
	l := &Layer{TileWidth: 1, TileHeight: 1}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(strings.TrimSuffix(line, ","), ",")
		if l.Height == 0 {
			l.Width = len(fields)
		} else if len(fields) != l.Width {
			return nil, fmt.Errorf("line %d: %d columns, expected %d", lineNo, len(fields), l.Width)
		}
		for _, f := range fields {
			id, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			l.Tiles = append(l.Tiles, id)
		}
		l.Height++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	return l, nil
}

// Load opens a level by extension: ".tmx" for Tiled maps, ".csv" or ".txt"
// for plain grids. A plain grid becomes a map with a single layer named after
// defaultLayer.
func Load(path, defaultLayer string) (*Map, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tmx":
		return LoadTMX(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	case ".csv", ".txt":
		f, err := os.Open(path) //nolint:gosec // G304: level path is user input by design
		if err != nil {
			return nil, fmt.Errorf("open level %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()

		l, err := LoadCSV(f)
		if err != nil {
			return nil, fmt.Errorf("parse level %s: %w", path, err)
		}
		l.Name = defaultLayer
		return &Map{
			Name:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Width:      l.Width,
			Height:     l.Height,
			TileWidth:  l.TileWidth,
			TileHeight: l.TileHeight,
			Layers:     []*Layer{l},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}
