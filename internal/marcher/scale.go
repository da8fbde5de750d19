package marcher

import "github.com/MeKo-Tech/tilemarch/internal/utils"

// Scale fills Scaled on a copy of every path with Polygon multiplied by factor.
func Scale(paths PathSet, factor float64) PathSet {
	out := make(PathSet, len(paths))
	for i, p := range paths {
		q := p.Clone()
		q.Scaled = make([]utils.Point, len(p.Polygon))
		for j, pt := range p.Polygon {
			q.Scaled[j] = pt.Scaled(factor)
		}
		out[i] = q
	}
	return out
}
