package support

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/tilemarch/internal/server"
	"github.com/MeKo-Tech/tilemarch/internal/testutil"
	"github.com/cucumber/godog"
)

// startServer runs the real contour handlers on an httptest server.
func (testCtx *TestContext) startServer(cfg server.Config) error {
	if testCtx.HTTPTestServer != nil {
		testCtx.HTTPTestServer.Close()
	}
	cfg.CORSOrigin = "*"
	cfg.MaxBodyMB = 16
	cfg.TimeoutSec = 30
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	mux := http.NewServeMux()
	server.NewServer(cfg).SetupRoutes(mux)
	testCtx.HTTPTestServer = httptest.NewServer(mux)
	return nil
}

func (testCtx *TestContext) aContourServerIsRunning() error {
	return testCtx.startServer(server.Config{})
}

func (testCtx *TestContext) aContourServerIsRunningWithLimit(perMinute int) error {
	return testCtx.startServer(server.Config{
		RateLimit: server.RateLimitConfig{Enabled: true, RequestsPerMinute: perMinute},
	})
}

func (testCtx *TestContext) do(method, path string, body []byte) error {
	if testCtx.HTTPTestServer == nil {
		return fmt.Errorf("no server running")
	}

	req, err := http.NewRequest(method, testCtx.HTTPTestServer.URL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(data)
	testCtx.LastHTTPHeaders = map[string]string{}
	for k := range resp.Header {
		testCtx.LastHTTPHeaders[k] = resp.Header.Get(k)
	}
	return nil
}

func (testCtx *TestContext) iRequest(method, path string) error {
	return testCtx.do(method, path, nil)
}

func (testCtx *TestContext) iPostTheGrid(fixture, ids string) error {
	f, ok := testutil.Fixtures[fixture]
	if !ok {
		return fmt.Errorf("unknown grid fixture %q", fixture)
	}
	var colliding []int
	for _, s := range strings.Split(ids, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("bad tile id %q: %w", s, err)
		}
		colliding = append(colliding, id)
	}

	body, err := json.Marshal(server.ContoursRequest{
		Width: f.Width, Height: f.Height, Tiles: f.Tiles, CollidingIDs: colliding,
	})
	if err != nil {
		return err
	}
	return testCtx.do(http.MethodPost, "/v1/contours", body)
}

func (testCtx *TestContext) iPostTheBody(body *godog.DocString) error {
	return testCtx.do(http.MethodPost, "/v1/contours", []byte(body.Content))
}

func (testCtx *TestContext) theResponseStatusShouldBe(status int) error {
	if testCtx.LastHTTPStatusCode != status {
		return fmt.Errorf("expected status %d, got %d\nBody: %s", status, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain %q\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseJSONShouldContain(field string) error {
	var data any
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &data); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	return checkFieldExists(data, field)
}

func (testCtx *TestContext) theResponseShouldHavePaths(n int) error {
	var resp server.ContoursResponse
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &resp); err != nil {
		return fmt.Errorf("response is not a contour response: %w", err)
	}
	if len(resp.Paths) != n {
		return fmt.Errorf("expected %d paths, got %d", n, len(resp.Paths))
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBe(name, value string) error {
	if got := testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)]; got != value {
		return fmt.Errorf("header %s is %q, expected %q", name, got, value)
	}
	return nil
}

// RegisterServerSteps registers HTTP service steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a contour server is running$`, testCtx.aContourServerIsRunning)
	sc.Step(`^a contour server is running with a limit of (\d+) requests? per minute$`, testCtx.aContourServerIsRunningWithLimit)
	sc.Step(`^I request "(GET|POST|PUT|DELETE) ([^"]*)"$`, testCtx.iRequest)
	sc.Step(`^I post the "([^"]*)" grid with colliding ids "([^"]*)"$`, testCtx.iPostTheGrid)
	sc.Step(`^I post the contour request:$`, testCtx.iPostTheBody)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response JSON should contain "([^"]*)"$`, testCtx.theResponseJSONShouldContain)
	sc.Step(`^the response should have (\d+) paths?$`, testCtx.theResponseShouldHavePaths)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
}
