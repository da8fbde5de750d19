package marcher

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/MeKo-Tech/tilemarch/internal/testutil"
	"github.com/MeKo-Tech/tilemarch/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pts(coords ...int) []utils.IPoint {
	out := make([]utils.IPoint, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, utils.IPoint{X: coords[i], Y: coords[i+1]})
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// assertClosed checks that every vertex is one step from its predecessor in
// the recorded heading, wrapping from the last vertex to the first.
func assertClosed(t *testing.T, p Path) {
	t.Helper()
	require.Len(t, p.Directions, len(p.Polygon))
	n := len(p.Polygon)
	for i := range n {
		prev := p.Polygon[(i+n-1)%n]
		assert.Equal(t, prev.Add(p.Directions[i].Step()), p.Polygon[i], "vertex %d", i)
	}
}

func TestTraceContour_Square(t *testing.T) {
	g := newFixtureGrid(t, testutil.Square2x2)
	visited := NewVisitedMask(g.Width(), g.Height())

	path, err := traceContour(g, visited, 1, 1, maxTraceSteps(g, 0))
	require.NoError(t, err)

	assert.Equal(t, pts(1, 2, 1, 3, 2, 3, 3, 3, 3, 2, 3, 1, 2, 1, 1, 1), path.Polygon)
	assert.Equal(t, []Direction{Down, Down, Right, Right, Up, Up, Left, Left}, path.Directions)
	assert.Equal(t, utils.IPoint{X: 1, Y: 1}, path.Polygon[len(path.Polygon)-1], "walk ends on its start corner")
	assertClosed(t, path)

	for _, p := range path.Polygon {
		assert.True(t, visited.IsVisited(p.X, p.Y), "corner %v should be visited", p)
	}
	assert.False(t, visited.IsVisited(2, 2), "interior corner is never walked")
}

func TestTraceContour_InteriorStartIsEmpty(t *testing.T) {
	g := newFixtureGrid(t, testutil.Full)
	visited := NewVisitedMask(g.Width(), g.Height())

	path, err := traceContour(g, visited, 1, 1, maxTraceSteps(g, 0))
	require.NoError(t, err)
	assert.Empty(t, path.Polygon)
	assert.Empty(t, path.Directions)
	assert.True(t, visited.IsVisited(1, 1))
}

func TestTraceContour_Divergence(t *testing.T) {
	g := newFixtureGrid(t, testutil.Square2x2)
	visited := NewVisitedMask(g.Width(), g.Height())

	path, err := traceContour(g, visited, 1, 1, 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTraceDivergence))
	assert.Empty(t, path.Polygon, "partial polygon is discarded")

	var te *TraceError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 1, te.StartX)
	assert.Equal(t, 1, te.StartY)
	assert.Equal(t, 4, te.Steps)
}

func TestScan_SingleBlock(t *testing.T) {
	g := newFixtureGrid(t, testutil.Square2x2)

	paths, stats := Scan(g, ScanOptions{Logger: discardLogger()})

	require.Len(t, paths, 1)
	assert.Equal(t, 2, stats.Traces, "block start plus interior corner (2,2)")
	assert.Equal(t, 1, stats.EmptyTraces)
	assert.Zero(t, stats.Divergences)
	assert.Equal(t, 9, stats.VisitedCorners)
}

func TestScan_Empty(t *testing.T) {
	g := newFixtureGrid(t, testutil.Empty)

	paths, stats := Scan(g, ScanOptions{Logger: discardLogger()})

	assert.Empty(t, paths)
	assert.Zero(t, stats.Traces)
	assert.Zero(t, stats.VisitedCorners)
}

func TestScan_TwoBlocks(t *testing.T) {
	g := newFixtureGrid(t, testutil.TwoBlocks)

	paths, stats := Scan(g, ScanOptions{Logger: discardLogger()})

	require.Len(t, paths, 2)
	assert.Equal(t, pts(1, 2, 1, 3, 2, 3, 3, 3, 3, 2, 3, 1, 2, 1, 1, 1), paths[0].Polygon)
	assert.Equal(t, pts(4, 3, 4, 4, 5, 4, 6, 4, 6, 3, 6, 2, 5, 2, 4, 2), paths[1].Polygon)
	for _, p := range paths {
		assertClosed(t, p)
		assert.Len(t, p.Corners(), 4, "each block is a quadrilateral")
	}
	assert.Equal(t, 4, stats.Traces)
	assert.Equal(t, 2, stats.EmptyTraces)
}

func TestScan_RingHasOuterAndInnerContour(t *testing.T) {
	g := newFixtureGrid(t, testutil.Ring)

	paths, _ := Scan(g, ScanOptions{Logger: discardLogger()})

	require.Len(t, paths, 2)
	outer, inner := paths[0], paths[1]
	assert.Len(t, outer.Polygon, 16)
	assert.Len(t, inner.Polygon, 8)
	assert.ElementsMatch(t, pts(1, 1, 5, 1, 5, 5, 1, 5), outer.Corners())
	assert.ElementsMatch(t, pts(2, 2, 4, 2, 4, 4, 2, 4), inner.Corners())

	// Holes wind the opposite way to outer boundaries.
	assert.Negative(t, utils.SignedArea(outer.Polygon))
	assert.Positive(t, utils.SignedArea(inner.Polygon))
	assert.False(t, outer.IsHole())
	assert.True(t, inner.IsHole())
}

func TestScan_DiagonalBlocksAreSeparateContours(t *testing.T) {
	g := newFixtureGrid(t, testutil.Diagonal)

	paths, stats := Scan(g, ScanOptions{Logger: discardLogger()})

	require.Len(t, paths, 2)
	assert.Equal(t, pts(1, 2, 2, 2, 2, 1, 1, 1), paths[0].Polygon)
	assert.Equal(t, []Direction{Down, Right, Up, Left}, paths[0].Directions)
	assert.Equal(t, pts(2, 3, 3, 3, 3, 2, 2, 2), paths[1].Polygon)
	assert.Equal(t, []Direction{Down, Right, Up, Left}, paths[1].Directions)
	assert.Equal(t, 7, stats.VisitedCorners)
}

func TestScan_FullGridFollowsBorder(t *testing.T) {
	g := newFixtureGrid(t, testutil.Full)

	paths, _ := Scan(g, ScanOptions{Logger: discardLogger()})

	require.Len(t, paths, 1)
	assert.Len(t, paths[0].Polygon, 10)
	assert.ElementsMatch(t, pts(0, 0, 0, 2, 3, 2, 3, 0), paths[0].Corners())
	assertClosed(t, paths[0])
}

func TestScan_CollidingIDsSelectTiles(t *testing.T) {
	tests := []struct {
		name  string
		ids   []int
		paths int
	}{
		{"only ones", []int{1}, 1},
		{"ones and twos", []int{1, 2}, 2},
		{"all solid ids", []int{1, 2, 3}, 3},
		{"unknown id", []int{9}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newFixtureGrid(t, testutil.Mixed, tt.ids...)
			paths, _ := Scan(g, ScanOptions{Logger: discardLogger()})
			assert.Len(t, paths, tt.paths)
		})
	}
}

func TestScan_DivergenceIsLoggedAndSkipped(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	g := newFixtureGrid(t, testutil.Square2x2)

	paths, stats := Scan(g, ScanOptions{MaxSteps: 4, Logger: logger})

	assert.Empty(t, paths)
	assert.Equal(t, 3, stats.Traces)
	assert.Equal(t, 2, stats.Divergences)
	assert.Equal(t, 1, stats.EmptyTraces)
	assert.Contains(t, buf.String(), "discarding contour trace")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestScan_StaircaseCorners(t *testing.T) {
	g := newFixtureGrid(t, testutil.Staircase)

	paths, _ := Scan(g, ScanOptions{Logger: discardLogger()})

	require.Len(t, paths, 1)
	assertClosed(t, paths[0])
	assert.ElementsMatch(t, pts(
		1, 1, 2, 1, 2, 2, 3, 2, 3, 3, 4, 3, 4, 4, 5, 4, 5, 5, 1, 5,
	), paths[0].Corners())
}
