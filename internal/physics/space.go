// Package physics turns contour paths into static collision geometry.
package physics

import (
	"math"

	"github.com/MeKo-Tech/tilemarch/internal/marcher"
	"github.com/MeKo-Tech/tilemarch/internal/utils"
	"github.com/solarlune/resolv"
)

// TagContour is carried by every object created from a contour edge.
const TagContour = "contour"

const (
	defaultCellSize  = 8
	defaultThickness = 1.0
)

// Options controls how edges become objects.
type Options struct {
	// OffsetX and OffsetY translate every vertex, e.g. by the layer offset.
	OffsetX float64
	OffsetY float64
	// Thickness is the size of an edge across its direction.
	Thickness float64
	// CellSize is the broadphase cell edge length of the space.
	CellSize int
	// Tags are added to every object next to TagContour, typically the
	// layer's object type.
	Tags []string
}

func (o Options) withDefaults() Options {
	if o.Thickness <= 0 {
		o.Thickness = defaultThickness
	}
	if o.CellSize <= 0 {
		o.CellSize = defaultCellSize
	}
	return o
}

// EdgeRects returns one rectangle per polygon edge of every path, closing
// each polygon from its last vertex back to the first. Scaled coordinates
// are used when present. Zero-length edges are dropped.
func EdgeRects(paths marcher.PathSet, opts Options) []utils.Box {
	opts = opts.withDefaults()
	half := opts.Thickness / 2

	var rects []utils.Box
	for _, p := range paths {
		pts := utils.OffsetPoints(worldPoints(p), opts.OffsetX, opts.OffsetY)
		n := len(pts)
		if n < 2 {
			continue
		}
		for i := range n {
			a := pts[i]
			b := pts[(i+1)%n]
			if a == b {
				continue
			}
			box := utils.NewBox(a.X, a.Y, b.X, b.Y)
			if box.Height() < opts.Thickness {
				box.MinY -= half
				box.MaxY += half
			}
			if box.Width() < opts.Thickness {
				box.MinX -= half
				box.MaxX += half
			}
			rects = append(rects, box)
		}
	}
	return rects
}

// BuildSpace creates a space large enough for all edges and adds one static
// object per edge.
func BuildSpace(paths marcher.PathSet, opts Options) *resolv.Space {
	opts = opts.withDefaults()
	rects := EdgeRects(paths, opts)

	w, h := 0.0, 0.0
	for _, r := range rects {
		w = math.Max(w, r.MaxX)
		h = math.Max(h, r.MaxY)
	}
	space := resolv.NewSpace(int(math.Ceil(w))+opts.CellSize, int(math.Ceil(h))+opts.CellSize, opts.CellSize, opts.CellSize)
	addRects(space, rects, opts.Tags)
	return space
}

// AddPaths adds the edges of paths to an existing space and returns the
// number of objects created.
func AddPaths(space *resolv.Space, paths marcher.PathSet, opts Options) int {
	rects := EdgeRects(paths, opts)
	addRects(space, rects, opts.Tags)
	return len(rects)
}

func addRects(space *resolv.Space, rects []utils.Box, tags []string) {
	all := append([]string{TagContour}, tags...)
	for _, r := range rects {
		obj := resolv.NewObject(r.MinX, r.MinY, r.Width(), r.Height(), all...)
		obj.SetShape(resolv.NewRectangle(0, 0, r.Width(), r.Height()))
		space.Add(obj)
	}
}

func worldPoints(p marcher.Path) []utils.Point {
	if len(p.Scaled) == len(p.Polygon) && len(p.Scaled) > 0 {
		return p.Scaled
	}
	out := make([]utils.Point, len(p.Polygon))
	for i, v := range p.Polygon {
		out[i] = v.Scaled(1)
	}
	return out
}
