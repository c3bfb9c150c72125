package application_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/threadsweep/internal/application"
	"github.com/ericfisherdev/threadsweep/internal/domain/model"
)

func TestScheduler_RunsImmediatelyAndOnInterval(t *testing.T) {
	var runs atomic.Int32
	gateway := &mockGateway{
		listThreads: func(_ context.Context) ([]model.Notification, error) {
			runs.Add(1)
			return []model.Notification{}, nil
		},
	}
	cache := newMockCache()
	resolver := &mockResolver{}
	holder := application.NewTeamSnapshotHolder()
	svc := application.NewTriageService(
		gateway,
		application.NewTeamLoader(cache, resolver, nil),
		holder,
		application.NewDefaultDecider("bob", holder, nil),
		"bob",
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		application.NewScheduler(svc, 10*time.Millisecond, application.RunOptions{}, nil).Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}

func TestScheduler_ContinuesAfterFailedRun(t *testing.T) {
	var runs atomic.Int32
	gateway := &mockGateway{
		listThreads: func(_ context.Context) ([]model.Notification, error) {
			runs.Add(1)
			return nil, errors.New("503 Service Unavailable")
		},
	}
	holder := application.NewTeamSnapshotHolder()
	svc := application.NewTriageService(
		gateway,
		application.NewTeamLoader(newMockCache(), &mockResolver{}, nil),
		holder,
		application.NewDefaultDecider("bob", holder, nil),
		"bob",
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go application.NewScheduler(svc, 10*time.Millisecond, application.RunOptions{}, nil).Start(ctx)

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_InvalidatesOnlyOnFirstRun(t *testing.T) {
	var runs atomic.Int32
	gateway := &mockGateway{
		listThreads: func(_ context.Context) ([]model.Notification, error) {
			runs.Add(1)
			return []model.Notification{}, nil
		},
	}
	cache := newMockCache()
	resolver := &mockResolver{}
	holder := application.NewTeamSnapshotHolder()
	svc := application.NewTriageService(
		gateway,
		application.NewTeamLoader(cache, resolver, nil),
		holder,
		application.NewDefaultDecider("bob", holder, nil),
		"bob",
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		application.NewScheduler(svc, 10*time.Millisecond, application.RunOptions{InvalidateCache: true}, nil).Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []string{"bob"}, cache.invalidated)
}
