package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
)

// isolateEnv clears every variable config.Load reads and points the cache and
// ledger at a temporary directory.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{
		"THREADSWEEP_ENV_FILE",
		"THREADSWEEP_CONFIG",
		"THREADSWEEP_GITHUB_TOKEN",
		"THREADSWEEP_GITHUB_USERNAME",
		"THREADSWEEP_TEAM_CACHE_TTL",
		"THREADSWEEP_PACING_DELAY",
		"THREADSWEEP_INTERVAL",
		"THREADSWEEP_BOT_LOGINS",
		"THREADSWEEP_LOG_LEVEL",
		"THREADSWEEP_HEALTH_MAX_AGE",
		"GITHUB_TOKEN",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("THREADSWEEP_CACHE_DIR", filepath.Join(dir, "teams"))
	t.Setenv("THREADSWEEP_DB_PATH", filepath.Join(dir, "threadsweep.db"))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	names := []string{}
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"run", "check", "cache", "history"})

	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	for _, flag := range []string{"dry-run", "invalidate-cache", "interval", "watch"} {
		assert.NotNil(t, run.Flags().Lookup(flag), flag)
	}
	for _, flag := range []string{"token", "username", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRunCmd_RequiresToken(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "run", "--dry-run")

	assert.ErrorIs(t, err, errMissingToken)
}

func TestRunCmd_RejectsUnknownLogLevel(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "run", "--log-level", "verbose")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestCacheClear(t *testing.T) {
	dir := isolateEnv(t)
	teams := filepath.Join(dir, "teams")
	require.NoError(t, os.MkdirAll(teams, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(teams, "bob.json"), []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(teams, "alice.json"), []byte(`{}`), 0o600))

	out, err := execute(t, "cache", "clear")

	require.NoError(t, err)
	assert.Contains(t, out, "removed 2 cached snapshot(s)")
	assert.NoFileExists(t, filepath.Join(teams, "bob.json"))
}

func TestCacheInvalidate(t *testing.T) {
	dir := isolateEnv(t)
	teams := filepath.Join(dir, "teams")
	require.NoError(t, os.MkdirAll(teams, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(teams, "bob.json"), []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(teams, "alice.json"), []byte(`{}`), 0o600))

	out, err := execute(t, "cache", "invalidate", "--username", "bob")

	require.NoError(t, err)
	assert.Contains(t, out, "invalidated team cache for bob")
	assert.NoFileExists(t, filepath.Join(teams, "bob.json"))
	assert.FileExists(t, filepath.Join(teams, "alice.json"))
}

func TestCacheInvalidate_RequiresUsername(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "cache", "invalidate")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no username")
}

func TestHistory_EmptyLedger(t *testing.T) {
	isolateEnv(t)

	out, err := execute(t, "history")

	require.NoError(t, err)
	assert.Equal(t, "no runs recorded\n", out)
}

func TestWriteHistory(t *testing.T) {
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID: "r2", Username: "bob", Status: model.RunStatusFailed, Error: "listing unread threads: 401",
			StartedAt: started.Add(time.Hour), FinishedAt: started.Add(time.Hour + time.Second),
		},
		{
			ID: "r1", Username: "bob", DryRun: true, Status: model.RunStatusSucceeded,
			Examined: 12, Resolved: 5, Failed: 1,
			StartedAt: started, FinishedAt: started.Add(3 * time.Second),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeHistory(&buf, runs))

	out := buf.String()
	assert.Contains(t, out, "STARTED")
	assert.Contains(t, out, "failed: listing unread threads: 401")
	assert.Contains(t, out, "dry-run")
	assert.Contains(t, out, "3s")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseLevel(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewLogger_JSONWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("triage run complete", "resolved", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "triage run complete", entry["msg"])
	assert.EqualValues(t, 3, entry["resolved"])
}

func TestWriteOutcomes(t *testing.T) {
	outcomes := []model.ThreadOutcome{
		{ThreadID: "101", Repository: "acme/api", Action: model.ActionResolved, Rule: "merged-or-closed", Title: "Fix login"},
		{ThreadID: "102", Repository: "acme/web", Action: model.ActionKept, Title: strings.Repeat("依存関係", 30)},
	}

	var buf bytes.Buffer
	require.NoError(t, writeOutcomes(&buf, outcomes))

	out := buf.String()
	assert.Contains(t, out, "merged-or-closed")
	assert.Contains(t, out, "Fix login")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, strings.Repeat("依存関係", 30))
}

func TestWriteOutcomes_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOutcomes(&buf, nil))
	assert.Equal(t, "no outcomes recorded for this run\n", buf.String())
}
