// Package health aggregates readiness checks for the /healthz endpoint.
package health

import (
	"context"
	"sort"
	"time"
)

// Pinger is anything that can report its reachability: *sql.DB, the redis session store.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Report is the health payload.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Service runs the registered checks.
type Service struct {
	checks  map[string]Pinger
	timeout time.Duration
}

// NewService constructs a health service with a 2s per-check timeout.
func NewService() *Service {
	return &Service{checks: map[string]Pinger{}, timeout: 2 * time.Second}
}

// Register adds a named check. Nil pingers are ignored so optional backends can be
// registered unconditionally.
func (s *Service) Register(name string, p Pinger) {
	if p == nil {
		return
	}
	s.checks[name] = p
}

// Status runs every check and reports "ok" or the error text per backend.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true}
	if len(s.checks) == 0 {
		return report
	}
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	report.Checks = make(map[string]string, len(names))
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.checks[name].PingContext(cctx)
		cancel()
		if err != nil {
			report.OK = false
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}
