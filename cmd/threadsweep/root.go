package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/threadsweep/internal/config"
)

// globalOptions holds the flags shared by every subcommand. Flags override
// the environment and the config file.
type globalOptions struct {
	token    string
	username string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "threadsweep",
		Short: "Resolve GitHub notification threads that no longer need you",
		Long: `threadsweep walks your unread GitHub notifications and marks as done the
pull request threads that no longer need your attention: closed or merged pull
requests you are not involved in, and dependency bot pull requests you were not
asked to review.

Configuration comes from THREADSWEEP_* environment variables and an optional
YAML file named by THREADSWEEP_CONFIG. Flags take precedence over both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.token, "token", "", "GitHub token (default $THREADSWEEP_GITHUB_TOKEN or $GITHUB_TOKEN)")
	cmd.PersistentFlags().StringVar(&opts.username, "username", "", "GitHub login to triage for (default: the token's owner)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newRunCmd(opts),
		newCheckCmd(opts),
		newCacheCmd(opts),
		newHistoryCmd(opts),
	)
	return cmd
}

// load reads the configuration, applies flag overrides and installs the
// default logger.
func (o *globalOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if o.token != "" {
		cfg.GitHubToken = o.token
	}
	if o.username != "" {
		cfg.GitHubUsername = o.username
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), level)
	slog.SetDefault(logger)

	return cfg, logger, nil
}

// newLogger returns a text handler on terminals and a JSON handler otherwise,
// so scheduled runs produce machine-readable logs.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: level}
	if isTerminal(w) {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
