// Package application contains the triage use cases: team loading, rule
// evaluation and the run orchestration built on top of them.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
	"github.com/ericfisherdev/threadsweep/internal/domain/port/driven"
)

// DefaultPacingDelay is the pause between two threads of a run.
const DefaultPacingDelay = 250 * time.Millisecond

// RunOptions controls a single triage run.
type RunOptions struct {
	DryRun          bool
	InvalidateCache bool
}

// TriageService runs the triage pipeline: load teams, list unread threads,
// decide per thread and resolve the ones no longer needing attention.
type TriageService struct {
	gateway  driven.ThreadGateway
	loader   *TeamLoader
	holder   *TeamSnapshotHolder
	decider  *Decider
	runStore driven.RunStore
	username string
	pacing   time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
	logger   *slog.Logger
}

// TriageOption configures optional TriageService behavior.
type TriageOption func(*TriageService)

// WithRunStore records every run in the given ledger.
func WithRunStore(store driven.RunStore) TriageOption {
	return func(s *TriageService) { s.runStore = store }
}

// WithPacing sets the delay between threads. Zero disables pacing.
func WithPacing(d time.Duration) TriageOption {
	return func(s *TriageService) {
		if d >= 0 {
			s.pacing = d
		}
	}
}

// WithLogger sets the logger used by the service.
func WithLogger(logger *slog.Logger) TriageOption {
	return func(s *TriageService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSleeper replaces the pacing sleep. Intended for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) TriageOption {
	return func(s *TriageService) { s.sleep = sleep }
}

// NewTriageService creates a TriageService for username. The holder must be
// the same one the decider's rules read their teams from.
func NewTriageService(
	gateway driven.ThreadGateway,
	loader *TeamLoader,
	holder *TeamSnapshotHolder,
	decider *Decider,
	username string,
	opts ...TriageOption,
) *TriageService {
	s := &TriageService{
		gateway:  gateway,
		loader:   loader,
		holder:   holder,
		decider:  decider,
		username: username,
		pacing:   DefaultPacingDelay,
		sleep:    sleepContext,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one triage run. Only a failure to list the unread threads
// aborts the run; per-thread failures are logged, counted and skipped.
func (s *TriageService) Run(ctx context.Context, opts RunOptions) (model.RunSummary, error) {
	start := s.now()
	summary := model.RunSummary{RunID: uuid.NewString(), DryRun: opts.DryRun}
	logger := s.logger.With("run_id", summary.RunID)

	s.startLedger(ctx, logger, model.Run{
		ID:        summary.RunID,
		Username:  s.username,
		DryRun:    opts.DryRun,
		Status:    model.RunStatusRunning,
		StartedAt: start,
	})

	s.holder.Set(s.loader.Load(ctx, s.username, opts.InvalidateCache))

	threads, err := s.gateway.ListUnreadThreads(ctx)
	if err != nil {
		err = fmt.Errorf("listing unread threads: %w", err)
		s.finishLedger(ctx, logger, summary, start, err)
		return summary, err
	}

	snapshot, _ := s.holder.Snapshot()
	logger.Info("triage run started",
		"username", s.username,
		"threads", len(threads),
		"teams", len(snapshot.Teams),
		"teams_captured_at", snapshot.CapturedAt,
		"dry_run", opts.DryRun,
	)

	for i, n := range threads {
		if i > 0 && s.pacing > 0 {
			if err := s.sleep(ctx, s.pacing); err != nil {
				err = fmt.Errorf("pacing between threads: %w", err)
				s.logSummary(logger, "triage run interrupted", summary, start, "remaining", len(threads)-i, "error", err)
				s.finishLedger(ctx, logger, summary, start, err)
				return summary, err
			}
		}

		outcome := s.triageThread(ctx, logger, n, opts.DryRun)
		summary.Examined++
		switch outcome.Action {
		case model.ActionResolved, model.ActionWouldResolve:
			summary.Resolved++
		case model.ActionResolveFailed:
			summary.Failed++
		}
		s.recordOutcome(ctx, logger, summary.RunID, outcome)
	}

	s.logSummary(logger, "triage run complete", summary, start)

	s.finishLedger(ctx, logger, summary, start, nil)
	return summary, nil
}

// Check loads the teams and lists the unread threads without evaluating or
// resolving anything.
func (s *TriageService) Check(ctx context.Context) (model.CheckReport, error) {
	snapshot := s.loader.Load(ctx, s.username, false)
	s.holder.Set(snapshot)

	threads, err := s.gateway.ListUnreadThreads(ctx)
	if err != nil {
		return model.CheckReport{}, fmt.Errorf("listing unread threads: %w", err)
	}

	report := model.CheckReport{
		Username: s.username,
		Teams:    len(snapshot.Teams),
		Unread:   len(threads),
	}
	for _, n := range threads {
		if n.IsPullRequest() {
			report.PullRequests++
		}
	}
	return report, nil
}

// triageThread evaluates and, when selected, resolves a single thread. It
// never returns an error; failures are reflected in the outcome action.
func (s *TriageService) triageThread(ctx context.Context, logger *slog.Logger, n model.Notification, dryRun bool) model.ThreadOutcome {
	outcome := model.ThreadOutcome{
		ThreadID:   n.ID,
		Repository: n.Repository.FullName,
		Title:      n.Subject.Title,
		Action:     model.ActionKept,
	}

	pr := s.fetchDetail(ctx, logger, n)
	decision := s.decider.Evaluate(n, pr)
	outcome.RecordedAt = s.now()
	if !decision.Resolve {
		logger.Debug("thread kept", "thread_id", n.ID, "repo", outcome.Repository, "type", n.Subject.Type)
		return outcome
	}
	outcome.Rule = decision.Rule

	if dryRun {
		outcome.Action = model.ActionWouldResolve
		logger.Info("thread would be resolved",
			"thread_id", n.ID,
			"repo", outcome.Repository,
			"title", outcome.Title,
			"rule", decision.Rule,
		)
		return outcome
	}

	if err := s.gateway.ResolveThread(ctx, n.ID); err != nil {
		outcome.Action = model.ActionResolveFailed
		logger.Error("failed to resolve thread", "thread_id", n.ID, "repo", outcome.Repository, "error", err)
		return outcome
	}

	outcome.Action = model.ActionResolved
	outcome.RecordedAt = s.now()
	logger.Info("thread resolved",
		"thread_id", n.ID,
		"repo", outcome.Repository,
		"title", outcome.Title,
		"rule", decision.Rule,
	)
	return outcome
}

// fetchDetail returns the pull request detail for n, or nil when n is not a
// pull request or the detail cannot be obtained.
func (s *TriageService) fetchDetail(ctx context.Context, logger *slog.Logger, n model.Notification) *model.PullRequestDetail {
	if !n.IsPullRequest() {
		return nil
	}

	ref, err := model.ParsePullRequestRef(n.Subject.URL)
	if err != nil {
		logger.Warn("unparseable pull request URL", "thread_id", n.ID, "url", n.Subject.URL, "error", err)
		return nil
	}

	pr, err := s.gateway.GetPullRequestDetail(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		logger.Warn("pull request detail unavailable", "thread_id", n.ID, "pr", ref.String(), "error", err)
		return nil
	}
	return pr
}

func (s *TriageService) logSummary(logger *slog.Logger, msg string, summary model.RunSummary, start time.Time, extra ...any) {
	args := []any{
		"examined", summary.Examined,
		"resolved", summary.Resolved,
		"failed", summary.Failed,
		"dry_run", summary.DryRun,
		"duration", s.now().Sub(start).Round(time.Millisecond),
	}
	logger.Info(msg, append(args, extra...)...)
}

func (s *TriageService) startLedger(ctx context.Context, logger *slog.Logger, run model.Run) {
	if s.runStore == nil {
		return
	}
	if err := s.runStore.StartRun(ctx, run); err != nil {
		logger.Warn("failed to record run start", "error", err)
	}
}

func (s *TriageService) recordOutcome(ctx context.Context, logger *slog.Logger, runID string, outcome model.ThreadOutcome) {
	if s.runStore == nil {
		return
	}
	if err := s.runStore.RecordOutcome(ctx, runID, outcome); err != nil {
		logger.Warn("failed to record thread outcome", "thread_id", outcome.ThreadID, "error", err)
	}
}

func (s *TriageService) finishLedger(ctx context.Context, logger *slog.Logger, summary model.RunSummary, start time.Time, runErr error) {
	if s.runStore == nil {
		return
	}
	run := model.Run{
		ID:         summary.RunID,
		Username:   s.username,
		DryRun:     summary.DryRun,
		Status:     model.RunStatusSucceeded,
		Examined:   summary.Examined,
		Resolved:   summary.Resolved,
		Failed:     summary.Failed,
		StartedAt:  start,
		FinishedAt: s.now(),
	}
	if runErr != nil {
		run.Status = model.RunStatusFailed
		run.Error = runErr.Error()
	}
	// The run may have been cancelled; the ledger write still has to land.
	if err := s.runStore.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("failed to record run finish", "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
