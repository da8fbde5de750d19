package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MeKo-Tech/tilemarch/internal/marcher"
	"github.com/MeKo-Tech/tilemarch/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	s.writeJSON(w, http.StatusOK, response)
}

// contoursHandler extracts the contours of a posted grid. Requests never touch
// the on-disk cache.
func (s *Server) contoursHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	}

	var req ContoursRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		contourRequestsTotal.WithLabelValues("invalid").Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	cells := int64(len(req.Tiles))
	if s.maxCells > 0 && cells > s.maxCells {
		contourRequestsTotal.WithLabelValues("invalid").Inc()
		s.writeErrorResponse(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("grid of %d cells exceeds the limit of %d", cells, s.maxCells))
		return
	}
	if !s.allow(w, r, cells) {
		return
	}
	contourGridCells.Observe(float64(cells))

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	engine, err := s.construct(ctx, req)
	if err != nil {
		var cfgErr *marcher.ConfigurationError
		switch {
		case errors.As(err, &cfgErr):
			contourRequestsTotal.WithLabelValues("invalid").Inc()
			s.writeErrorResponse(w, http.StatusBadRequest, cfgErr.Error())
		case errors.Is(err, context.DeadlineExceeded):
			contourRequestsTotal.WithLabelValues("error").Inc()
			s.writeErrorResponse(w, http.StatusGatewayTimeout, "contour extraction timed out")
		default:
			contourRequestsTotal.WithLabelValues("error").Inc()
			s.logger.Error("contour extraction failed", "error", err)
			s.writeErrorResponse(w, http.StatusInternalServerError, "contour extraction failed")
		}
		return
	}

	stats := engine.Stats()
	resp := ContoursResponse{Success: true, Stats: &stats}
	for _, p := range engine.Paths() {
		resp.Paths = append(resp.Paths, ContourPath{
			Polygon: p.Polygon,
			Corners: p.Corners(),
			Scaled:  p.Scaled,
			Hole:    p.IsHole(),
		})
	}
	contourRequestsTotal.WithLabelValues("ok").Inc()
	s.writeJSON(w, http.StatusOK, resp)
}

// construct runs the engine on its own goroutine so a slow grid cannot hold
// the request past its deadline. Construction cannot be interrupted: after a
// timeout the goroutine still runs to completion and its result is dropped.
// Server.maxCells bounds that work.
func (s *Server) construct(ctx context.Context, req ContoursRequest) (*marcher.Engine, error) {
	type result struct {
		engine *marcher.Engine
		err    error
	}
	done := make(chan result, 1)
	go func() {
		e, err := marcher.New(marcher.Options{
			Width:          req.Width,
			Height:         req.Height,
			Tiles:          req.Tiles,
			CollidingIDs:   req.CollidingIDs,
			Scale:          req.Scale,
			MaxStepsFactor: s.maxStepsFactor,
			Logger:         s.logger,
		})
		done <- result{e, err}
	}()

	select {
	case res := <-done:
		return res.engine, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ContoursResponse{Success: false, Error: message})
}
