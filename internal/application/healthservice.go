package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
	"github.com/ericfisherdev/threadsweep/internal/domain/port/driven"
)

// Health check failures.
var (
	ErrNoRuns    = errors.New("no triage run recorded")
	ErrRunFailed = errors.New("last triage run failed")
	ErrRunStale  = errors.New("last triage run is stale")
	ErrRunStuck  = errors.New("last triage run has not finished")
)

// HealthService judges the liveness of scheduled triage from the run ledger.
// It depends only on port interfaces.
type HealthService struct {
	runStore driven.RunStore
	now      func() time.Time
}

// NewHealthService creates a new HealthService with the required dependencies.
func NewHealthService(runStore driven.RunStore) *HealthService {
	return &HealthService{
		runStore: runStore,
		now:      time.Now,
	}
}

// CheckLatestRun returns the most recent run and a non-nil error when that
// run is missing, failed or older than maxAge. A run still in progress is
// healthy as long as it started within maxAge.
func (s *HealthService) CheckLatestRun(ctx context.Context, maxAge time.Duration) (model.Run, error) {
	run, err := s.runStore.Latest(ctx)
	if err != nil {
		if errors.Is(err, driven.ErrRunNotFound) {
			return model.Run{}, ErrNoRuns
		}
		return model.Run{}, fmt.Errorf("loading latest run: %w", err)
	}

	age := s.now().Sub(run.StartedAt)
	switch {
	case run.Status == model.RunStatusFailed:
		return run, fmt.Errorf("%w: %s", ErrRunFailed, run.Error)
	case age > maxAge && run.Status == model.RunStatusRunning:
		return run, fmt.Errorf("%w: started %s ago", ErrRunStuck, age.Round(time.Second))
	case age > maxAge:
		return run, fmt.Errorf("%w: started %s ago", ErrRunStale, age.Round(time.Second))
	}
	return run, nil
}
