package marcher

import "github.com/MeKo-Tech/tilemarch/internal/utils"

// Path is one closed contour. The polygon is closed implicitly: the last
// vertex connects back to the first without being repeated.
type Path struct {
	// Polygon holds grid-corner coordinates in walk order.
	Polygon []utils.IPoint
	// Directions holds the heading of the step that reached each vertex.
	// It is empty for paths loaded from the cache.
	Directions []Direction
	// Scaled holds Polygon multiplied by the scale factor.
	Scaled []utils.Point
}

// Clone returns a deep copy of p.
func (p Path) Clone() Path {
	out := Path{}
	if p.Polygon != nil {
		out.Polygon = append([]utils.IPoint(nil), p.Polygon...)
	}
	if p.Directions != nil {
		out.Directions = append([]Direction(nil), p.Directions...)
	}
	if p.Scaled != nil {
		out.Scaled = append([]utils.Point(nil), p.Scaled...)
	}
	return out
}

// Corners returns the vertices where the contour changes direction.
func (p Path) Corners() []utils.IPoint {
	return utils.Corners(p.Polygon)
}

// IsHole reports whether p bounds a hole. Holes wind opposite to outer
// boundaries, which gives them a positive signed area.
func (p Path) IsHole() bool {
	return utils.SignedArea(p.Polygon) > 0
}

// PathSet is the ordered output of one construction.
type PathSet []Path

// Clone returns a deep copy of s.
func (s PathSet) Clone() PathSet {
	if s == nil {
		return nil
	}
	out := make(PathSet, len(s))
	for i, p := range s {
		out[i] = p.Clone()
	}
	return out
}

// Polygons returns the integer polygons of every path, in order.
func (s PathSet) Polygons() [][]utils.IPoint {
	out := make([][]utils.IPoint, len(s))
	for i, p := range s {
		out[i] = p.Polygon
	}
	return out
}

// VertexCount returns the total number of polygon vertices.
func (s PathSet) VertexCount() int {
	n := 0
	for _, p := range s {
		n += len(p.Polygon)
	}
	return n
}

// fromPolygons wraps cache-loaded polygons as paths without directions.
func fromPolygons(polys [][]utils.IPoint) PathSet {
	out := make(PathSet, 0, len(polys))
	for _, poly := range polys {
		out = append(out, Path{Polygon: poly})
	}
	return out
}
