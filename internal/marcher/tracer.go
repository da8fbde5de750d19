package marcher

import "github.com/MeKo-Tech/tilemarch/internal/utils"

// defaultStepFactor bounds a single trace to a multiple of the corner count.
const defaultStepFactor = 4

// saddleDown is the saddle mask whose bottom-right cell starts its own trace.
const saddleDown = TopLeft | BottomRight

// maxTraceSteps returns the step budget of a single trace on g.
func maxTraceSteps(g *Grid, factor int) int {
	if factor <= 0 {
		factor = defaultStepFactor
	}
	return factor*(g.width+1)*(g.height+1) + 8
}

// traceContour walks the boundary starting at corner (startX, startY) until
// it returns there. Corners passed are marked in visited, except a saddle
// corner the walk leaves upwards: that corner is also the start of the
// separate contour around its bottom-right cell and must stay available to
// the scan. When the walk exceeds maxSteps the partial path is dropped and a
// *TraceError wrapping ErrTraceDivergence is returned.
func traceContour(g *Grid, visited *VisitedMask, startX, startY, maxSteps int) (Path, error) {
	var path Path

	start := utils.IPoint{X: startX, Y: startY}
	pos := start
	previous := None

	for steps := 0; ; steps++ {
		if steps >= maxSteps {
			return Path{}, &TraceError{StartX: startX, StartY: startY, Steps: steps, Err: ErrTraceDivergence}
		}

		mask := SampleCorner(g, pos.X, pos.Y)
		current := ResolveDirection(mask, previous)
		if mask != saddleDown || current != Up {
			visited.Mark(pos.X, pos.Y)
		}

		pos = pos.Add(current.Step())
		if current != None {
			path.Polygon = append(path.Polygon, pos)
			path.Directions = append(path.Directions, current)
		}
		previous = current

		if pos == start {
			return path, nil
		}
	}
}
