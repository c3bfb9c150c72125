package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	sqliteadapter "github.com/ericfisherdev/threadsweep/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/threadsweep/internal/application"
	"github.com/ericfisherdev/threadsweep/internal/config"
)

func main() {
	os.Exit(check(os.Stderr))
}

// check exits 0 only when the latest ledger run succeeded (or is running)
// within THREADSWEEP_HEALTH_MAX_AGE.
func check(w io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(w, "config: %v\n", err)
		return 1
	}

	if _, err := os.Stat(cfg.DBPath); err != nil {
		fmt.Fprintf(w, "ledger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		fmt.Fprintf(w, "ledger: %v\n", err)
		return 1
	}
	defer func() { _ = db.Close() }()

	health := application.NewHealthService(sqliteadapter.NewRunRepo(db))
	run, err := health.CheckLatestRun(ctx, cfg.HealthMaxAge)
	if err != nil {
		fmt.Fprintf(w, "unhealthy: %v\n", err)
		return 1
	}

	fmt.Fprintf(w, "healthy: run %s %s at %s\n", run.ID, run.Status, run.StartedAt.Format(time.RFC3339))
	return 0
}
