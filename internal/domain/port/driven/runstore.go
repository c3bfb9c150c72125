package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
)

// ErrRunNotFound indicates no run matches the request.
var ErrRunNotFound = errors.New("run not found")

// RunStore defines the driven port for the triage run ledger.
type RunStore interface {
	StartRun(ctx context.Context, run model.Run) error
	RecordOutcome(ctx context.Context, runID string, outcome model.ThreadOutcome) error
	FinishRun(ctx context.Context, run model.Run) error
	// ListRecent returns up to limit runs ordered by start time, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.Run, error)
	// Latest returns the most recently started run, or ErrRunNotFound.
	Latest(ctx context.Context) (model.Run, error)
	// ListOutcomes returns the outcomes recorded for a run in insertion order.
	ListOutcomes(ctx context.Context, runID string) ([]model.ThreadOutcome, error)
}
