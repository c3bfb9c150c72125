// Package config loads application configuration from environment variables
// and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the environment nor the config file sets a value.
const (
	DefaultTeamCacheTTL = 24 * time.Hour
	DefaultPacingDelay  = 250 * time.Millisecond
	DefaultInterval     = 15 * time.Minute
	DefaultHealthMaxAge = 2 * time.Hour
	DefaultLogLevel     = "info"
	DefaultDBFile       = "threadsweep.db"
)

// Config holds the application configuration.
type Config struct {
	GitHubToken    string
	GitHubUsername string
	CacheDir       string
	TeamCacheTTL   time.Duration
	PacingDelay    time.Duration
	Interval       time.Duration
	DBPath         string
	BotLogins      []string
	LogLevel       string
	HealthMaxAge   time.Duration
}

// fileConfig is the YAML file layout. Durations use Go duration syntax.
type fileConfig struct {
	GitHub struct {
		Token    string `yaml:"token"`
		Username string `yaml:"username"`
	} `yaml:"github"`
	CacheDir     string   `yaml:"cache_dir"`
	TeamCacheTTL string   `yaml:"team_cache_ttl"`
	PacingDelay  string   `yaml:"pacing_delay"`
	Interval     string   `yaml:"interval"`
	DBPath       string   `yaml:"db_path"`
	BotLogins    []string `yaml:"bot_logins"`
	LogLevel     string   `yaml:"log_level"`
	HealthMaxAge string   `yaml:"health_max_age"`
}

// HasGitHubToken returns true when a GitHub token is configured.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}

// Load builds the configuration. Values are resolved in order: defaults, the
// YAML file named by THREADSWEEP_CONFIG (if set), then THREADSWEEP_*
// environment variables. GITHUB_TOKEN is accepted as a fallback for the token.
// THREADSWEEP_ENV_FILE names a dotenv file loaded into the environment first;
// variables already set win over the file.
//
// Environment variables: THREADSWEEP_GITHUB_TOKEN, THREADSWEEP_GITHUB_USERNAME,
// THREADSWEEP_CACHE_DIR, THREADSWEEP_TEAM_CACHE_TTL (24h),
// THREADSWEEP_PACING_DELAY (250ms), THREADSWEEP_INTERVAL (15m),
// THREADSWEEP_DB_PATH, THREADSWEEP_BOT_LOGINS (comma separated),
// THREADSWEEP_LOG_LEVEL (info), THREADSWEEP_HEALTH_MAX_AGE (2h).
func Load() (*Config, error) {
	cfg := &Config{
		TeamCacheTTL: DefaultTeamCacheTTL,
		PacingDelay:  DefaultPacingDelay,
		Interval:     DefaultInterval,
		LogLevel:     DefaultLogLevel,
		HealthMaxAge: DefaultHealthMaxAge,
		BotLogins:    []string{},
	}

	if path, ok := os.LookupEnv("THREADSWEEP_ENV_FILE"); ok && path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", path, err)
		}
	}

	if path, ok := os.LookupEnv("THREADSWEEP_CONFIG"); ok && path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.CacheDir == "" || cfg.DBPath == "" {
		base, err := defaultDataDir()
		if err != nil {
			return nil, err
		}
		if cfg.CacheDir == "" {
			cfg.CacheDir = filepath.Join(base, "teams")
		}
		if cfg.DBPath == "" {
			cfg.DBPath = filepath.Join(base, DefaultDBFile)
		}
	}

	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", cfg.Interval)
	}
	if cfg.PacingDelay < 0 {
		return nil, fmt.Errorf("pacing delay must not be negative, got %s", cfg.PacingDelay)
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	setString(&c.GitHubToken, fc.GitHub.Token)
	setString(&c.GitHubUsername, fc.GitHub.Username)
	setString(&c.CacheDir, fc.CacheDir)
	setString(&c.DBPath, fc.DBPath)
	setString(&c.LogLevel, fc.LogLevel)
	if len(fc.BotLogins) > 0 {
		c.BotLogins = fc.BotLogins
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"team_cache_ttl", fc.TeamCacheTTL, &c.TeamCacheTTL},
		{"pacing_delay", fc.PacingDelay, &c.PacingDelay},
		{"interval", fc.Interval, &c.Interval},
		{"health_max_age", fc.HealthMaxAge, &c.HealthMaxAge},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config file %s: %s has invalid duration %q: %w", path, d.key, d.raw, err)
		}
		*d.dst = parsed
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("THREADSWEEP_GITHUB_TOKEN"); ok && v != "" {
		c.GitHubToken = v
	} else if c.GitHubToken == "" {
		c.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	lookupString("THREADSWEEP_GITHUB_USERNAME", &c.GitHubUsername)
	lookupString("THREADSWEEP_CACHE_DIR", &c.CacheDir)
	lookupString("THREADSWEEP_DB_PATH", &c.DBPath)
	lookupString("THREADSWEEP_LOG_LEVEL", &c.LogLevel)

	if v, ok := os.LookupEnv("THREADSWEEP_BOT_LOGINS"); ok && v != "" {
		c.BotLogins = splitList(v)
	}

	for key, dst := range map[string]*time.Duration{
		"THREADSWEEP_TEAM_CACHE_TTL": &c.TeamCacheTTL,
		"THREADSWEEP_PACING_DELAY":   &c.PacingDelay,
		"THREADSWEEP_INTERVAL":       &c.Interval,
		"THREADSWEEP_HEALTH_MAX_AGE": &c.HealthMaxAge,
	} {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
		}
		*dst = parsed
	}
	return nil
}

// defaultDataDir returns the per-user cache directory for threadsweep.
func defaultDataDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return "", fmt.Errorf("resolving data directory: %w", errors.Join(err, homeErr))
		}
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "threadsweep"), nil
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	items := []string{}
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
