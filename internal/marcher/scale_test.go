package marcher

import (
	"testing"

	"github.com/MeKo-Tech/tilemarch/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScale(t *testing.T) {
	in := PathSet{{Polygon: pts(1, 2, 3, 4), Directions: []Direction{Down, Right}}}

	out := Scale(in, 16)

	require.Len(t, out, 1)
	assert.Equal(t, []utils.Point{{X: 16, Y: 32}, {X: 48, Y: 64}}, out[0].Scaled)
	assert.Equal(t, in[0].Polygon, out[0].Polygon)
	assert.Nil(t, in[0].Scaled, "input is left untouched")
}

func TestScale_Fractional(t *testing.T) {
	out := Scale(PathSet{{Polygon: pts(3, 5)}}, 0.5)
	assert.InDelta(t, 1.5, out[0].Scaled[0].X, 1e-9)
	assert.InDelta(t, 2.5, out[0].Scaled[0].Y, 1e-9)
}

func TestScale_Empty(t *testing.T) {
	assert.Empty(t, Scale(nil, 2))
}
