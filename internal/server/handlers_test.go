package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MeKo-Tech/tilemarch/internal/testutil"
	"github.com/MeKo-Tech/tilemarch/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	mux := http.NewServeMux()
	NewServer(cfg).SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func postContours(t *testing.T, ts *httptest.Server, body any) (*http.Response, ContoursResponse) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/v1/contours", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out ContoursResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealthHandler(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.NotEmpty(t, health.Time)
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Post(ts.URL+"/health", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestContoursHandler_Square(t *testing.T) {
	ts := newTestServer(t, Config{})
	f := testutil.Square2x2

	resp, out := postContours(t, ts, ContoursRequest{
		Width: f.Width, Height: f.Height, Tiles: f.Tiles, CollidingIDs: []int{1}, Scale: 2,
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, out.Success)
	require.Len(t, out.Paths, 1)

	path := out.Paths[0]
	assert.Len(t, path.Polygon, 8)
	assert.ElementsMatch(t, []utils.IPoint{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 3}, {X: 1, Y: 3}}, path.Corners)
	require.Len(t, path.Scaled, len(path.Polygon))
	assert.Equal(t, utils.Point{X: 2, Y: 4}, path.Scaled[0])
	assert.False(t, path.Hole)

	require.NotNil(t, out.Stats)
	assert.False(t, out.Stats.FromCache)
	assert.Equal(t, 1, out.Stats.Paths)
}

func TestContoursHandler_RingReportsHole(t *testing.T) {
	ts := newTestServer(t, Config{})
	f := testutil.Ring

	resp, out := postContours(t, ts, ContoursRequest{
		Width: f.Width, Height: f.Height, Tiles: f.Tiles, CollidingIDs: []int{1},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, out.Paths, 2)
	holes := 0
	for _, p := range out.Paths {
		if p.Hole {
			holes++
		}
	}
	assert.Equal(t, 1, holes)
}

func TestContoursHandler_EmptyGrid(t *testing.T) {
	ts := newTestServer(t, Config{})
	f := testutil.Empty

	resp, out := postContours(t, ts, ContoursRequest{
		Width: f.Width, Height: f.Height, Tiles: f.Tiles, CollidingIDs: []int{1},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, out.Success)
	assert.Empty(t, out.Paths)
}

func TestContoursHandler_BadRequests(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"malformed json", `{"width": 2,`, "invalid request body"},
		{"unknown field", `{"width": 1, "height": 1, "tiles": [1], "colour": "red"}`, "invalid request body"},
		{"tile count mismatch", `{"width": 3, "height": 3, "tiles": [1, 0, 1]}`, "invalid grid configuration"},
		{"negative scale", `{"width": 1, "height": 1, "tiles": [1], "scale": -1}`, "invalid scale"},
		{"overflowing dimensions", `{"width": 4294967296, "height": 4294967296, "tiles": []}`, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/v1/contours", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var out ContoursResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.False(t, out.Success)
			assert.Contains(t, out.Error, tt.msg)
		})
	}
}

func TestContoursHandler_BodyTooLarge(t *testing.T) {
	s := NewServer(Config{MaxBodyMB: 1, Logger: testLogger()})

	body := `{"width": 1, "height": 1, "tiles": [` + strings.Repeat("0, ", 1<<19) + `0]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/contours", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.contoursHandler(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var out ContoursResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "request body exceeds")
}

func TestContoursHandler_TooManyCells(t *testing.T) {
	ts := newTestServer(t, Config{MaxCells: 15})
	f := testutil.Square2x2

	resp, out := postContours(t, ts, ContoursRequest{
		Width: f.Width, Height: f.Height, Tiles: f.Tiles, CollidingIDs: []int{1},
	})

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.False(t, out.Success)
	assert.Equal(t, "grid of 16 cells exceeds the limit of 15", out.Error)
}

func TestContoursHandler_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/v1/contours")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestContoursHandler_RateLimited(t *testing.T) {
	ts := newTestServer(t, Config{RateLimit: RateLimitConfig{Enabled: true, RequestsPerMinute: 1}})
	req := ContoursRequest{Width: 1, Height: 1, Tiles: []int{1}, CollidingIDs: []int{1}}

	resp, out := postContours(t, ts, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, out.Success)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	second, err := http.Post(ts.URL+"/v1/contours", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer second.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, "minute", second.Header.Get("X-RateLimit-Type"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, Config{})
	postContours(t, ts, ContoursRequest{Width: 1, Height: 1, Tiles: []int{1}, CollidingIDs: []int{1}})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "tilemarch_contour_requests_total")
	assert.Contains(t, string(body), "tilemarch_http_requests_total")
}
