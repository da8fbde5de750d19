package utils

// Corners returns the vertices of the closed polygon pts where the incoming
// and outgoing edges are not collinear. Repeated consecutive points are
// ignored. Polygons with fewer than three distinct points are returned as-is.
func Corners(pts []IPoint) []IPoint {
	p := removeDuplicatePoints(pts)
	n := len(p)
	if n < 3 {
		return p
	}
	out := make([]IPoint, 0, n)
	for i := range n {
		prev := p[(i+n-1)%n]
		next := p[(i+1)%n]
		if cross(prev, p[i], next) != 0 {
			out = append(out, p[i])
		}
	}
	return out
}

// SignedArea returns twice the signed area of the closed polygon (shoelace).
// With y pointing down, a positive value means the polygon winds clockwise
// on screen.
func SignedArea(pts []IPoint) int {
	n := len(pts)
	if n < 3 {
		return 0
	}
	area := 0
	for i := range n {
		a := pts[i]
		b := pts[(i+1)%n]
		area += a.X*b.Y - b.X*a.Y
	}
	return area
}

// IntBounds returns the inclusive min and max corner of the points.
func IntBounds(pts []IPoint) (IPoint, IPoint) {
	if len(pts) == 0 {
		return IPoint{}, IPoint{}
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X = min(lo.X, p.X)
		lo.Y = min(lo.Y, p.Y)
		hi.X = max(hi.X, p.X)
		hi.Y = max(hi.Y, p.Y)
	}
	return lo, hi
}

// removeDuplicatePoints drops consecutive repeats, including a closing
// point that repeats the first one.
func removeDuplicatePoints(p []IPoint) []IPoint {
	q := make([]IPoint, 0, len(p))
	for _, pt := range p {
		if len(q) == 0 || q[len(q)-1] != pt {
			q = append(q, pt)
		}
	}
	if len(q) >= 2 && q[0] == q[len(q)-1] {
		q = q[:len(q)-1]
	}
	return q
}

// cross returns the z component of (a-o) x (b-a).
func cross(o, a, b IPoint) int {
	return (a.X-o.X)*(b.Y-a.Y) - (a.Y-o.Y)*(b.X-a.X)
}
