package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/threadsweep/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/threadsweep/internal/domain/model"
)

// titleWidth bounds the title column in terminal cells.
const titleWidth = 60

func newHistoryCmd(global *globalOptions) *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent triage runs from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := global.load(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := sqliteadapter.Open(ctx, cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening ledger: %w", err)
			}
			defer func() { _ = db.Close() }()

			repo := sqliteadapter.NewRunRepo(db)
			if runID != "" {
				outcomes, err := repo.ListOutcomes(ctx, runID)
				if err != nil {
					return err
				}
				return writeOutcomes(cmd.OutOrStdout(), outcomes)
			}

			runs, err := repo.ListRecent(ctx, limit)
			if err != nil {
				return err
			}
			return writeHistory(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "show the thread outcomes of one run")
	return cmd
}

func writeHistory(w io.Writer, runs []model.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no runs recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tUSER\tSTATUS\tEXAMINED\tRESOLVED\tFAILED\tDURATION\tMODE")
	for _, r := range runs {
		mode := "live"
		if r.DryRun {
			mode = "dry-run"
		}
		status := string(r.Status)
		if r.Error != "" {
			status += ": " + r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Username,
			status,
			r.Examined,
			r.Resolved,
			r.Failed,
			r.Duration().Round(time.Millisecond),
			mode,
		)
	}
	return tw.Flush()
}

func writeOutcomes(w io.Writer, outcomes []model.ThreadOutcome) error {
	if len(outcomes) == 0 {
		_, err := fmt.Fprintln(w, "no outcomes recorded for this run")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "THREAD\tREPOSITORY\tACTION\tRULE\tTITLE")
	for _, o := range outcomes {
		rule := o.Rule
		if rule == "" {
			rule = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			o.ThreadID,
			o.Repository,
			o.Action,
			rule,
			runewidth.Truncate(o.Title, titleWidth, "..."),
		)
	}
	return tw.Flush()
}
