package services

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	checks  map[string]Pinger
	timeout time.Duration
}

func NewHealthService(checks map[string]Pinger) *HealthService {
	return &HealthService{checks: checks, timeout: 2 * time.Second}
}

// Check pings every dependency and returns the status of each. The error names
// the first failing dependency in alphabetical order.
func (s *HealthService) Check(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := make(map[string]string, len(names))
	var firstErr error
	for _, name := range names {
		if err := s.checks[name].Ping(ctx); err != nil {
			status[name] = err.Error()
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "%s unavailable", name)
			}
			continue
		}
		status[name] = "ok"
	}
	return status, firstErr
}
