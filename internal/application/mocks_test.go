package application_test

import (
	"context"
	"errors"
	"sync"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
)

// --- Mock implementations ---

type mockGateway struct {
	listThreads func(ctx context.Context) ([]model.Notification, error)
	getDetail   func(ctx context.Context, owner, repo string, number int) (*model.PullRequestDetail, error)
	resolve     func(ctx context.Context, threadID string) error

	mu          sync.Mutex
	detailCalls []string
	resolved    []string
}

func (m *mockGateway) ListUnreadThreads(ctx context.Context) ([]model.Notification, error) {
	if m.listThreads == nil {
		return []model.Notification{}, nil
	}
	return m.listThreads(ctx)
}

func (m *mockGateway) GetPullRequestDetail(ctx context.Context, owner, repo string, number int) (*model.PullRequestDetail, error) {
	m.mu.Lock()
	m.detailCalls = append(m.detailCalls, model.PullRequestRef{Owner: owner, Repo: repo, Number: number}.String())
	m.mu.Unlock()
	if m.getDetail == nil {
		return nil, errors.New("no detail")
	}
	return m.getDetail(ctx, owner, repo, number)
}

func (m *mockGateway) ResolveThread(ctx context.Context, threadID string) error {
	if m.resolve != nil {
		if err := m.resolve(ctx, threadID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.resolved = append(m.resolved, threadID)
	m.mu.Unlock()
	return nil
}

type mockResolver struct {
	listTeams func(ctx context.Context, username string) ([]model.Team, error)
	calls     []string
}

func (m *mockResolver) ListTeamsForUser(ctx context.Context, username string) ([]model.Team, error) {
	m.calls = append(m.calls, username)
	if m.listTeams == nil {
		return []model.Team{}, nil
	}
	return m.listTeams(ctx, username)
}

type mockCache struct {
	snapshots   map[string]model.TeamSnapshot
	invalidated []string
	puts        map[string][]model.Team
	invalidErr  error
}

func newMockCache() *mockCache {
	return &mockCache{
		snapshots: map[string]model.TeamSnapshot{},
		puts:      map[string][]model.Team{},
	}
}

func (m *mockCache) Get(username string) (model.TeamSnapshot, bool) {
	snap, ok := m.snapshots[username]
	return snap, ok
}

func (m *mockCache) Put(username string, teams []model.Team) {
	m.puts[username] = teams
}

func (m *mockCache) Invalidate(username string) error {
	m.invalidated = append(m.invalidated, username)
	if m.invalidErr != nil {
		return m.invalidErr
	}
	delete(m.snapshots, username)
	return nil
}

func (m *mockCache) ClearAll() (int, error) {
	n := len(m.snapshots)
	m.snapshots = map[string]model.TeamSnapshot{}
	return n, nil
}

type mockRunStore struct {
	started  []model.Run
	finished []model.Run
	outcomes map[string][]model.ThreadOutcome
	err      error
}

func newMockRunStore() *mockRunStore {
	return &mockRunStore{outcomes: map[string][]model.ThreadOutcome{}}
}

func (m *mockRunStore) StartRun(_ context.Context, run model.Run) error {
	m.started = append(m.started, run)
	return m.err
}

func (m *mockRunStore) RecordOutcome(_ context.Context, runID string, outcome model.ThreadOutcome) error {
	m.outcomes[runID] = append(m.outcomes[runID], outcome)
	return m.err
}

func (m *mockRunStore) FinishRun(_ context.Context, run model.Run) error {
	m.finished = append(m.finished, run)
	return m.err
}

func (m *mockRunStore) ListRecent(_ context.Context, _ int) ([]model.Run, error) {
	return m.finished, m.err
}

func (m *mockRunStore) Latest(_ context.Context) (model.Run, error) {
	if len(m.finished) == 0 {
		return model.Run{}, errors.New("no runs")
	}
	return m.finished[len(m.finished)-1], m.err
}

func (m *mockRunStore) ListOutcomes(_ context.Context, runID string) ([]model.ThreadOutcome, error) {
	return m.outcomes[runID], m.err
}
