package utils

import (
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genIPoint generates a random lattice point.
func genIPoint() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(-50, 50),
		gen.IntRange(-50, 50),
	).Map(func(vals []interface{}) IPoint {
		return IPoint{X: vals[0].(int), Y: vals[1].(int)}
	})
}

// genRect generates an axis-aligned rectangle walked edge by edge, one unit
// per vertex, the way contours are produced.
func genRect() gopter.Gen {
	return gopter.CombineGens(
		genIPoint(),
		gen.IntRange(1, 10),
		gen.IntRange(1, 10),
	).Map(func(vals []interface{}) []IPoint {
		o := vals[0].(IPoint)
		w, h := vals[1].(int), vals[2].(int)
		var out []IPoint
		for y := 1; y <= h; y++ {
			out = append(out, IPoint{X: o.X, Y: o.Y + y})
		}
		for x := 1; x <= w; x++ {
			out = append(out, IPoint{X: o.X + x, Y: o.Y + h})
		}
		for y := h - 1; y >= 0; y-- {
			out = append(out, IPoint{X: o.X + w, Y: o.Y + y})
		}
		for x := w - 1; x >= 0; x-- {
			out = append(out, IPoint{X: o.X + x, Y: o.Y})
		}
		return out
	})
}

func TestCorners_RectangleHasFour(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("unit-step rectangles reduce to four corners", prop.ForAll(
		func(rect []IPoint) bool {
			return len(Corners(rect)) == 4
		},
		genRect(),
	))

	properties.TestingRun(t)
}

func TestCorners_SubsetOfInput(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("corners are drawn from the input", prop.ForAll(
		func(points []IPoint) bool {
			for _, c := range Corners(points) {
				if !slices.Contains(points, c) {
					return false
				}
			}
			return len(Corners(points)) <= len(points)
		},
		gen.SliceOf(genIPoint()),
	))

	properties.TestingRun(t)
}

func TestSignedArea_ReversalNegates(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("reversing the winding negates the area", prop.ForAll(
		func(points []IPoint) bool {
			rev := slices.Clone(points)
			slices.Reverse(rev)
			return SignedArea(points) == -SignedArea(rev)
		},
		gen.SliceOf(genIPoint()),
	))

	properties.Property("rectangle area matches width times height", prop.ForAll(
		func(rect []IPoint) bool {
			lo, hi := IntBounds(rect)
			a := SignedArea(rect)
			if a < 0 {
				a = -a
			}
			return a == 2*(hi.X-lo.X)*(hi.Y-lo.Y)
		},
		genRect(),
	))

	properties.TestingRun(t)
}

func TestIntBounds_ContainsAll(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every point lies within the bounds", prop.ForAll(
		func(points []IPoint) bool {
			lo, hi := IntBounds(points)
			for _, p := range points {
				if p.X < lo.X || p.Y < lo.Y || p.X > hi.X || p.Y > hi.Y {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genIPoint()),
	))

	properties.TestingRun(t)
}
