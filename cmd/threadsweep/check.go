package main

import (
	"fmt"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/threadsweep/internal/adapter/driven/sqlite"
)

func newCheckCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify credentials, team resolution and notification access",
		Long: `Load the team memberships and list unread notifications without resolving
anything. Use it to validate a token before scheduling runs.`,
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

			report, err := svc.triage.Check(ctx)
			if err != nil {
				return err
			}

			version, dirty, err := sqliteadapter.SchemaVersion(svc.db.Writer)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:           %s\n", report.Username)
			fmt.Fprintf(out, "teams:          %d\n", report.Teams)
			fmt.Fprintf(out, "unread threads: %d\n", report.Unread)
			fmt.Fprintf(out, "pull requests:  %d\n", report.PullRequests)
			fmt.Fprintf(out, "ledger:         %s (schema v%d", svc.db.Path(), version)
			if dirty {
				fmt.Fprint(out, ", dirty")
			}
			fmt.Fprintln(out, ")")
			return nil
		},
	}
}
