package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/threadsweep/internal/application"
)

func newRunCmd(global *globalOptions) *cobra.Command {
	var (
		dryRun          bool
		invalidateCache bool
		watch           bool
		interval        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Triage unread notifications once, or repeatedly with --interval",
		Long: `Triage unread notifications and mark as done the pull request threads that
no longer need attention.

Examples:
  threadsweep run --dry-run           # Show what would be resolved
  threadsweep run --invalidate-cache  # Refresh team memberships first
  threadsweep run --interval 15m      # Keep running every 15 minutes
  threadsweep run --watch             # Keep running on THREADSWEEP_INTERVAL`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := global.load(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := buildServices(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			opts := application.RunOptions{DryRun: dryRun, InvalidateCache: invalidateCache}

			if cmd.Flags().Changed("interval") || watch {
				if !cmd.Flags().Changed("interval") {
					interval = cfg.Interval
				}
				if interval <= 0 {
					return fmt.Errorf("interval must be positive, got %s", interval)
				}
				logger.Info("scheduler started", "interval", interval)
				application.NewScheduler(svc.triage, interval, opts, logger).Start(ctx)
				return nil
			}

			_, err = svc.triage.Run(ctx, opts)
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report decisions without resolving any thread")
	cmd.Flags().BoolVar(&invalidateCache, "invalidate-cache", false, "refetch team memberships before triaging")
	cmd.Flags().BoolVar(&watch, "watch", false, "repeat the run on the configured interval until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 0, "repeat the run on this interval until interrupted")

	return cmd
}
