// Package health serves GET /health for every binary.
//
// A Checker holds named checks. Required checks (a database ping) turn the
// response into 503 when they fail. Soft checks (an optional cache, an open
// circuit breaker) only mark the report degraded: the service still answers,
// so the status code stays 200.
package health

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aanand-mishra/university-api/internal/breaker"
	"github.com/aanand-mishra/university-api/internal/utils/response"
)

// CheckFunc returns nil when the dependency is healthy.
type CheckFunc func(ctx context.Context) error

// Report is the JSON body of GET /health.
type Report struct {
	Status    string                 `json:"status"` // "ok", "degraded" or "down"
	Service   string                 `json:"service"`
	Uptime    string                 `json:"uptime"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Healthy  bool   `json:"healthy"`
	Required bool   `json:"required"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration"`
}

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusDown     = "down"
)

type check struct {
	fn       CheckFunc
	required bool
}

// Checker aggregates the checks of one service.
type Checker struct {
	service string
	started time.Time
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]check
}

// NewChecker creates a Checker; each check gets at most timeout to answer.
func NewChecker(service string, timeout time.Duration) *Checker {
	return &Checker{
		service: service,
		started: time.Now(),
		timeout: timeout,
		checks:  make(map[string]check),
	}
}

// AddCheck registers a check whose failure makes the service down.
func (c *Checker) AddCheck(name string, fn CheckFunc) {
	c.add(name, fn, true)
}

// AddSoftCheck registers a check whose failure only degrades the service.
func (c *Checker) AddSoftCheck(name string, fn CheckFunc) {
	c.add(name, fn, false)
}

func (c *Checker) add(name string, fn CheckFunc, required bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check{fn: fn, required: required}
}

// Check runs every check concurrently and aggregates the results.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]check, len(c.checks))
	for name, ch := range c.checks {
		checks[name] = ch
	}
	c.mu.RUnlock()

	report := Report{
		Status:    StatusOK,
		Service:   c.service,
		Uptime:    time.Since(c.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]CheckResult, len(checks)),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for name, ch := range checks {
		wg.Add(1)
		go func(name string, ch check) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			err := ch.fn(checkCtx)
			result := CheckResult{
				Healthy:  err == nil,
				Required: ch.required,
				Duration: time.Since(start).Round(time.Microsecond).String(),
			}
			if err != nil {
				result.Message = err.Error()
			}

			mu.Lock()
			report.Checks[name] = result
			mu.Unlock()
		}(name, ch)
	}
	wg.Wait()

	for _, result := range report.Checks {
		switch {
		case result.Healthy:
		case result.Required:
			report.Status = StatusDown
		case report.Status == StatusOK:
			report.Status = StatusDegraded
		}
	}
	return report
}

// Handler serves the report: 200 unless a required check failed.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Check(r.Context())

		status := http.StatusOK
		if report.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		response.WriteJSON(w, status, report)
	}
}

// Breakers returns a check that fails while any breaker in r is not CLOSED.
func Breakers(r *breaker.Registry) CheckFunc {
	return func(context.Context) error {
		var open []string
		for _, s := range r.Snapshots() {
			if s.State != breaker.StateClosed {
				open = append(open, s.Name+" is "+s.State.String())
			}
		}
		if len(open) == 0 {
			return nil
		}
		return errors.New(strings.Join(open, ", "))
	}
}
