package physics

import (
	"io"
	"log/slog"
	"testing"

	"github.com/MeKo-Tech/tilemarch/internal/marcher"
	"github.com/MeKo-Tech/tilemarch/internal/testutil"
	"github.com/MeKo-Tech/tilemarch/internal/utils"
	"github.com/solarlune/resolv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squarePaths(t *testing.T, scale float64) marcher.PathSet {
	t.Helper()
	f := testutil.Square2x2
	e, err := marcher.New(marcher.Options{
		Width: f.Width, Height: f.Height, Tiles: f.Tiles,
		CollidingIDs: []int{1},
		Scale:        scale,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return e.Paths()
}

func TestEdgeRects_Square(t *testing.T) {
	rects := EdgeRects(squarePaths(t, 16), Options{Thickness: 2})

	require.Len(t, rects, 8)
	// First edge runs from (16,32) down to (16,48).
	assert.Equal(t, utils.Box{MinX: 15, MinY: 32, MaxX: 17, MaxY: 48}, rects[0])
	for _, r := range rects {
		assert.InDelta(t, 16.0, max(r.Width(), r.Height()), 1e-9)
		assert.InDelta(t, 2.0, min(r.Width(), r.Height()), 1e-9)
	}
}

func TestEdgeRects_OffsetAndUnscaled(t *testing.T) {
	paths := marcher.PathSet{{Polygon: []utils.IPoint{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 0}}}}

	rects := EdgeRects(paths, Options{OffsetX: 10, OffsetY: 5})

	require.Len(t, rects, 2, "zero-length edge is dropped")
	assert.Equal(t, utils.Box{MinX: 10, MinY: 4.5, MaxX: 12, MaxY: 5.5}, rects[0])
	assert.Equal(t, utils.Box{MinX: 10, MinY: 4.5, MaxX: 12, MaxY: 5.5}, rects[1])
}

func TestEdgeRects_SkipsDegeneratePaths(t *testing.T) {
	paths := marcher.PathSet{{}, {Polygon: []utils.IPoint{{X: 1, Y: 1}}}}
	assert.Empty(t, EdgeRects(paths, Options{}))
}

func TestBuildSpace(t *testing.T) {
	space := BuildSpace(squarePaths(t, 16), Options{Tags: []string{"deadly"}})

	objects := space.Objects()
	require.Len(t, objects, 8)
	for _, o := range objects {
		assert.True(t, o.HasTags(TagContour, "deadly"))
	}

	inside := resolv.NewObject(31, 31, 2, 2)
	space.Add(inside)
	assert.Nil(t, inside.Check(0, 0, TagContour), "square interior is free")

	onEdge := resolv.NewObject(15, 30, 2, 2)
	space.Add(onEdge)
	assert.NotNil(t, onEdge.Check(0, 0, TagContour))
}

func TestAddPaths(t *testing.T) {
	space := resolv.NewSpace(256, 256, 16, 16)

	n := AddPaths(space, squarePaths(t, 16), Options{OffsetX: 64})

	assert.Equal(t, 8, n)
	assert.Len(t, space.Objects(), 8)
}
