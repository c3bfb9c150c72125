package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/threadsweep/internal/adapter/driven/filecache"
	githubadapter "github.com/ericfisherdev/threadsweep/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/threadsweep/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/threadsweep/internal/application"
	"github.com/ericfisherdev/threadsweep/internal/config"
)

var errMissingToken = errors.New("no GitHub token: set THREADSWEEP_GITHUB_TOKEN or pass --token")

// services is the composition root shared by run and check.
type services struct {
	triage *application.TriageService
	db     *sqliteadapter.DB
}

func (s *services) Close() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		slog.Error("error closing ledger", "error", err)
	}
}

// buildServices wires the GitHub client, team cache, rule set and ledger. When
// no username is configured the token's owner is used.
func buildServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services, error) {
	if !cfg.HasGitHubToken() {
		return nil, errMissingToken
	}

	client := githubadapter.NewClient(cfg.GitHubToken)

	username := cfg.GitHubUsername
	if username == "" {
		login, err := client.AuthenticatedLogin(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving username from token: %w", err)
		}
		username = login
		logger.Info("username resolved from token", "username", username)
	}

	db, err := sqliteadapter.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	logger.Debug("ledger opened", "path", db.Path())

	cache := filecache.New(cfg.CacheDir, cfg.TeamCacheTTL, filecache.WithLogger(logger))
	holder := application.NewTeamSnapshotHolder()
	decider := application.NewDefaultDecider(username, holder, cfg.BotLogins)

	triage := application.NewTriageService(
		client,
		application.NewTeamLoader(cache, client, logger),
		holder,
		decider,
		username,
		application.WithRunStore(sqliteadapter.NewRunRepo(db)),
		application.WithPacing(cfg.PacingDelay),
		application.WithLogger(logger),
	)

	logger.Debug("services wired",
		"username", username,
		"rules", decider.RuleNames(),
		"cache_dir", cache.Dir(),
		"pacing", cfg.PacingDelay,
	)

	return &services{triage: triage, db: db}, nil
}
