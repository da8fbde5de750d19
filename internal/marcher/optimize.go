package marcher

import "github.com/MeKo-Tech/tilemarch/internal/utils"

// minOptimizeLen is the smallest polygon the optimizer touches.
const minOptimizeLen = 5

// Optimize drops interior vertices that sit in the middle of a straight run.
// The first and last vertex of every path are always kept. Vertex i survives
// unless the headings at i-1, i and i+1 are identical.
//
// The whole set is returned unchanged when it is empty or its first path has
// no directions (cache-loaded). Kept vertices keep their headings, so the
// result can be optimized again without change. The input is not modified.
func Optimize(paths PathSet) PathSet {
	if len(paths) == 0 || len(paths[0].Directions) == 0 {
		return paths
	}

	out := make(PathSet, 0, len(paths))
	for _, p := range paths {
		if len(p.Polygon) < minOptimizeLen || len(p.Directions) != len(p.Polygon) {
			out = append(out, p.Clone())
			continue
		}
		out = append(out, optimizePath(p))
	}
	return out
}

func optimizePath(p Path) Path {
	n := len(p.Polygon)
	out := Path{
		Polygon:    make([]utils.IPoint, 0, n),
		Directions: make([]Direction, 0, n),
	}
	for i := range n {
		if i > 0 && i < n-1 {
			prev, curr, next := p.Directions[i-1], p.Directions[i], p.Directions[i+1]
			if prev == curr && curr == next {
				continue
			}
		}
		out.Polygon = append(out.Polygon, p.Polygon[i])
		out.Directions = append(out.Directions, p.Directions[i])
	}
	return out
}
