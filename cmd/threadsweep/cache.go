package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/threadsweep/internal/adapter/driven/filecache"
)

func newCacheCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the team membership cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached team snapshot",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, logger, err := global.load(cmd)
				if err != nil {
					return err
				}

				cache := filecache.New(cfg.CacheDir, cfg.TeamCacheTTL, filecache.WithLogger(logger))
				n, err := cache.ClearAll()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached snapshot(s) from %s\n", n, cache.Dir())
				return nil
			},
		},
		&cobra.Command{
			Use:   "invalidate",
			Short: "Remove the cached team snapshot of the configured user",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, logger, err := global.load(cmd)
				if err != nil {
					return err
				}
				if cfg.GitHubUsername == "" {
					return errors.New("no username: set THREADSWEEP_GITHUB_USERNAME or pass --username")
				}

				cache := filecache.New(cfg.CacheDir, cfg.TeamCacheTTL, filecache.WithLogger(logger))
				if err := cache.Invalidate(cfg.GitHubUsername); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "invalidated team cache for %s\n", cfg.GitHubUsername)
				return nil
			},
		},
	)

	return cmd
}
