package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/tilemarch/internal/config"
	"github.com/MeKo-Tech/tilemarch/internal/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareCSV = `0,0,0,0
0,1,1,0
0,1,1,0
0,0,0,0
`

const mixedCSV = `1,1,0,2,2
1,1,0,2,2
0,0,0,0,0
`

func writeLevel(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testConfig(format string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Output.Format = format
	return &cfg
}

func TestRunScan_Text(t *testing.T) {
	path := writeLevel(t, "square.csv", squareCSV)
	var out bytes.Buffer

	err := runScan(context.Background(), testConfig("text"), scanOptions{Path: path, Layer: "level"}, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Level square (scale 0.3333)")
	assert.Contains(t, text, "Layer level [solid] 4x4, colliding ids [1]")
	assert.Contains(t, text, "1 paths, 8 vertices from scan")
	assert.Contains(t, text, "path 1: 8 vertices, corners (1,3) (3,3) (3,1) (1,1), cells (1,1)-(3,3)")
}

func TestRunScan_JSON(t *testing.T) {
	path := writeLevel(t, "square.csv", squareCSV)
	var out bytes.Buffer

	require.NoError(t, runScan(context.Background(), testConfig("json"), scanOptions{Path: path, Layer: "level"}, &out))

	var report scanReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "square", report.Level)
	require.Len(t, report.Layers, 1)

	layer := report.Layers[0]
	assert.Equal(t, "level", layer.Name)
	require.Len(t, layer.Paths, 1)
	assert.Len(t, layer.Paths[0].Polygon, 8)
	assert.Len(t, layer.Paths[0].Corners, 4)
	assert.InDelta(t, 1.0/3.0, layer.Paths[0].Scaled[0].X, 1e-9)
	assert.InDelta(t, 1.0/3.0, layer.Paths[0].Bounds.MinX, 1e-9)
	assert.InDelta(t, 1.0, layer.Paths[0].Bounds.MaxY, 1e-9)
	assert.Equal(t, 1, layer.Stats.Paths)
	assert.False(t, layer.Stats.FromCache)
	assert.Empty(t, layer.Map)
}

func TestRunScan_YAML(t *testing.T) {
	path := writeLevel(t, "square.csv", squareCSV)
	var out bytes.Buffer

	require.NoError(t, runScan(context.Background(), testConfig("yaml"), scanOptions{Path: path, Layer: "level"}, &out))

	text := out.String()
	assert.Contains(t, text, "level: square")
	assert.Contains(t, text, "name: level")
	assert.Contains(t, text, "object_type: solid")
	assert.Contains(t, text, "from_cache: false")
}

func TestRunScan_PrintMapAndPhysics(t *testing.T) {
	path := writeLevel(t, "square.csv", squareCSV)
	var out bytes.Buffer

	opts := scanOptions{Path: path, Layer: "level", PrintMap: true, Physics: true}
	require.NoError(t, runScan(context.Background(), testConfig("text"), opts, &out))

	text := out.String()
	assert.Contains(t, text, "0000\n0110\n0110\n0000\n")
	assert.Contains(t, text, "8 collision objects")
}

func TestRunScan_UsesCache(t *testing.T) {
	path := writeLevel(t, "square.csv", squareCSV)
	cfg := testConfig("text")
	cfg.Marcher.CacheDir = t.TempDir()

	var first bytes.Buffer
	require.NoError(t, runScan(context.Background(), cfg, scanOptions{Path: path, Layer: "level"}, &first))
	assert.Contains(t, first.String(), "from scan")
	assert.FileExists(t, filepath.Join(cfg.Marcher.CacheDir, "physics_path_solid.csv"))

	var second bytes.Buffer
	require.NoError(t, runScan(context.Background(), cfg, scanOptions{Path: path, Layer: "level"}, &second))
	assert.Contains(t, second.String(), "from cache")
	assert.NotContains(t, second.String(), "traces")

	cfg.Marcher.NoCache = true
	var third bytes.Buffer
	require.NoError(t, runScan(context.Background(), cfg, scanOptions{Path: path, Layer: "level"}, &third))
	assert.Contains(t, third.String(), "from scan")

	cfg.Marcher.NoCache = false
	cfg.Marcher.RefreshCache = true
	var fourth bytes.Buffer
	require.NoError(t, runScan(context.Background(), cfg, scanOptions{Path: path, Layer: "level"}, &fourth))
	assert.Contains(t, fourth.String(), "from scan")
	assert.FileExists(t, filepath.Join(cfg.Marcher.CacheDir, "physics_path_solid.csv"))
}

func TestRunScan_CollidingOverride(t *testing.T) {
	path := writeLevel(t, "mixed.csv", mixedCSV)

	tests := []struct {
		name      string
		colliding []int
		paths     int
	}{
		{"profile default", nil, 1},
		{"only twos", []int{2}, 1},
		{"ones and twos", []int{1, 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			opts := scanOptions{Path: path, Layer: "level", Colliding: tt.colliding}
			require.NoError(t, runScan(context.Background(), testConfig("json"), opts, &out))

			var report scanReport
			require.NoError(t, json.Unmarshal(out.Bytes(), &report))
			require.Len(t, report.Layers, 1)
			assert.Len(t, report.Layers[0].Paths, tt.paths)
		})
	}
}

func TestRunScan_CollidingOverrideKeepsSeparateCache(t *testing.T) {
	path := writeLevel(t, "mixed.csv", mixedCSV)
	cfg := testConfig("text")
	cfg.Marcher.CacheDir = t.TempDir()

	var first bytes.Buffer
	require.NoError(t, runScan(context.Background(), cfg, scanOptions{Path: path, Layer: "level"}, &first))
	assert.Contains(t, first.String(), "1 paths, 8 vertices from scan")

	var wider bytes.Buffer
	opts := scanOptions{Path: path, Layer: "level", Colliding: []int{1, 2}}
	require.NoError(t, runScan(context.Background(), cfg, opts, &wider))
	assert.Contains(t, wider.String(), "colliding ids [1 2]")
	assert.Contains(t, wider.String(), "2 paths, 16 vertices from scan")
	assert.FileExists(t, filepath.Join(cfg.Marcher.CacheDir, "level_1-2.csv"))

	var cached bytes.Buffer
	require.NoError(t, runScan(context.Background(), cfg, opts, &cached))
	assert.Contains(t, cached.String(), "2 paths, 16 vertices from cache")
}

func TestRunScan_Errors(t *testing.T) {
	csv := writeLevel(t, "square.csv", squareCSV)

	t.Run("unsupported level", func(t *testing.T) {
		path := writeLevel(t, "level.json", "{}")
		err := runScan(context.Background(), testConfig("text"), scanOptions{Path: path, Layer: "level"}, &bytes.Buffer{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, level.ErrUnsupportedFormat))
	})

	t.Run("invalid format", func(t *testing.T) {
		err := runScan(context.Background(), testConfig("csv"), scanOptions{Path: csv, Layer: "level"}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid output format")
	})

	t.Run("no profiled layer", func(t *testing.T) {
		err := runScan(context.Background(), testConfig("text"), scanOptions{Path: csv, Layer: "walls"}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no layer of")
	})

	t.Run("explicit layer without profile", func(t *testing.T) {
		opts := scanOptions{Path: csv, Layer: "walls", LayerSet: true}
		err := runScan(context.Background(), testConfig("text"), opts, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `layer "walls" has no profile`)
	})

	t.Run("missing file", func(t *testing.T) {
		opts := scanOptions{Path: filepath.Join(t.TempDir(), "missing.csv"), Layer: "level"}
		err := runScan(context.Background(), testConfig("text"), opts, &bytes.Buffer{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestSelectProfiles_TilesetFallback(t *testing.T) {
	cfg := testConfig("text")
	cfg.Level.Profiles = nil

	m := &level.Map{Layers: []*level.Layer{{Name: "walls"}, {Name: "spikes"}}}
	profiles, err := selectProfiles(cfg, m, scanOptions{Layer: "level"})
	require.NoError(t, err)
	assert.Empty(t, profiles, "no profiles and no tileset ids selects nothing")
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	err := writeReport(&bytes.Buffer{}, scanReport{}, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}
