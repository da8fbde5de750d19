package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter limits contour requests per client and caps the number of grid
// cells a client may submit per day.
type RateLimiter struct {
	mu sync.RWMutex

	requestsPerMinute int
	requestsPerHour   int
	maxRequestsPerDay int
	maxCellsPerDay    int64

	clients map[string]*ClientUsage

	now func() time.Time
}

// ClientUsage tracks usage for one client address.
type ClientUsage struct {
	RequestsLastMinute int
	RequestsLastHour   int
	RequestsToday      int
	CellsToday         int64

	minuteStart time.Time
	hourStart   time.Time
	dayStart    time.Time
}

// NewRateLimiter creates a limiter. A zero limit disables that check.
func NewRateLimiter(requestsPerMinute, requestsPerHour, maxRequestsPerDay int, maxCellsPerDay int64) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		maxRequestsPerDay: maxRequestsPerDay,
		maxCellsPerDay:    maxCellsPerDay,
		clients:           make(map[string]*ClientUsage),
		now:               time.Now,
	}
}

// Allow records a request of cells grid cells from client, or returns a
// *RateLimitError / *QuotaExceededError when it must be rejected.
func (rl *RateLimiter) Allow(client string, cells int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	usage, ok := rl.clients[client]
	if !ok {
		usage = &ClientUsage{minuteStart: now, hourStart: now, dayStart: now}
		rl.clients[client] = usage
	}
	resetWindows(usage, now)

	if rl.requestsPerMinute > 0 && usage.RequestsLastMinute >= rl.requestsPerMinute {
		return &RateLimitError{Window: "minute", Limit: rl.requestsPerMinute, RetryAfter: time.Minute - now.Sub(usage.minuteStart)}
	}
	if rl.requestsPerHour > 0 && usage.RequestsLastHour >= rl.requestsPerHour {
		return &RateLimitError{Window: "hour", Limit: rl.requestsPerHour, RetryAfter: time.Hour - now.Sub(usage.hourStart)}
	}

	resets := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	if rl.maxRequestsPerDay > 0 && usage.RequestsToday >= rl.maxRequestsPerDay {
		return &QuotaExceededError{Quota: "requests", Limit: int64(rl.maxRequestsPerDay), Used: int64(usage.RequestsToday), Resets: resets}
	}
	if rl.maxCellsPerDay > 0 && usage.CellsToday+cells > rl.maxCellsPerDay {
		return &QuotaExceededError{Quota: "cells", Limit: rl.maxCellsPerDay, Used: usage.CellsToday, Resets: resets}
	}

	usage.RequestsLastMinute++
	usage.RequestsLastHour++
	usage.RequestsToday++
	usage.CellsToday += cells
	return nil
}

func resetWindows(u *ClientUsage, now time.Time) {
	if now.YearDay() != u.dayStart.YearDay() || now.Year() != u.dayStart.Year() {
		u.RequestsToday = 0
		u.CellsToday = 0
		u.dayStart = now
	}
	if now.Sub(u.minuteStart) >= time.Minute {
		u.RequestsLastMinute = 0
		u.minuteStart = now
	}
	if now.Sub(u.hourStart) >= time.Hour {
		u.RequestsLastHour = 0
		u.hourStart = now
	}
}

// Usage returns a copy of the usage recorded for client.
func (rl *RateLimiter) Usage(client string) ClientUsage {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	if u, ok := rl.clients[client]; ok {
		return *u
	}
	return ClientUsage{}
}

// RateLimitError reports a request rate violation.
type RateLimitError struct {
	Window     string
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Window, e.Limit, e.RetryAfter)
}

// QuotaExceededError reports a daily quota violation.
type QuotaExceededError struct {
	Quota  string
	Limit  int64
	Used   int64
	Resets time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Quota, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}
