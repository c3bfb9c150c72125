package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
	"github.com/ericfisherdev/threadsweep/internal/domain/port/driven"
)

// TeamLoader resolves a user's team snapshot from the cache, falling back to
// the remote resolver on a miss.
type TeamLoader struct {
	cache    driven.TeamCache
	resolver driven.TeamResolver
	now      func() time.Time
	logger   *slog.Logger
}

// NewTeamLoader creates a TeamLoader.
func NewTeamLoader(cache driven.TeamCache, resolver driven.TeamResolver, logger *slog.Logger) *TeamLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &TeamLoader{
		cache:    cache,
		resolver: resolver,
		now:      time.Now,
		logger:   logger,
	}
}

// Load returns the team snapshot for username. With invalidate set, the cached
// record is deleted first so the teams are fetched fresh. Load never fails: a
// resolver error yields an empty snapshot, which only costs accuracy (more
// threads kept).
func (l *TeamLoader) Load(ctx context.Context, username string, invalidate bool) model.TeamSnapshot {
	if invalidate {
		if err := l.cache.Invalidate(username); err != nil {
			l.logger.Warn("team cache invalidation failed", "username", username, "error", err)
		} else {
			l.logger.Info("team cache invalidated", "username", username)
		}
	} else if snap, ok := l.cache.Get(username); ok {
		l.logger.Debug("team cache hit",
			"username", username,
			"teams", len(snap.Teams),
			"captured_at", snap.CapturedAt,
		)
		return snap
	}

	start := l.now()
	teams, err := l.resolver.ListTeamsForUser(ctx, username)
	if err != nil {
		l.logger.Warn("team resolution failed, continuing without teams", "username", username, "error", err)
		return model.TeamSnapshot{Username: username, Teams: []model.Team{}, CapturedAt: start}
	}

	l.cache.Put(username, teams)
	l.logger.Info("teams resolved",
		"username", username,
		"teams", len(teams),
		"duration", l.now().Sub(start).Round(time.Millisecond),
	)

	return model.TeamSnapshot{Username: username, Teams: teams, CapturedAt: start}
}
