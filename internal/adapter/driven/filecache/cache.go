// Package filecache implements the TeamCache port with one JSON file per user.
package filecache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
	"github.com/ericfisherdev/threadsweep/internal/domain/port/driven"
)

// DefaultTTL bounds how long a team snapshot is trusted. Team membership
// changes rarely, and there is no invalidation signal from GitHub.
const DefaultTTL = 24 * time.Hour

const recordExt = ".json"

// Compile-time interface satisfaction check.
var _ driven.TeamCache = (*TeamCache)(nil)

// record is the on-disk layout. Timestamp is epoch milliseconds.
type record struct {
	Teams     []teamRecord `json:"teams"`
	Timestamp int64        `json:"timestamp"`
	Username  string       `json:"username"`
}

type teamRecord struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Organization string `json:"organization"`
}

// TeamCache stores team membership snapshots under dir, one file per username.
type TeamCache struct {
	dir    string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a TeamCache.
type Option func(*TeamCache)

// WithClock overrides the time source used for timestamps and TTL checks.
func WithClock(now func() time.Time) Option {
	return func(c *TeamCache) { c.now = now }
}

// WithLogger sets the logger used to report swallowed write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *TeamCache) { c.logger = logger }
}

// New creates a TeamCache rooted at dir. A non-positive ttl selects DefaultTTL.
// The directory is created lazily on the first Put.
func New(dir string, ttl time.Duration, opts ...Option) *TeamCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &TeamCache{
		dir:    dir,
		ttl:    ttl,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the directory holding the cache records.
func (c *TeamCache) Dir() string {
	return c.dir
}

// Get returns the snapshot stored for username if it exists, is tagged with
// the same username and is no older than the TTL. Any read or decode problem
// is a miss.
func (c *TeamCache) Get(username string) (model.TeamSnapshot, bool) {
	data, err := os.ReadFile(c.path(username))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("team cache unreadable", "username", username, "error", err)
		}
		return model.TeamSnapshot{}, false
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		c.logger.Debug("team cache record corrupt", "username", username, "error", err)
		return model.TeamSnapshot{}, false
	}

	snap := rec.snapshot()
	if !snap.IsValidFor(username, c.now(), c.ttl) {
		c.logger.Debug("team cache record rejected",
			"username", username,
			"record_username", rec.Username,
			"age", c.now().Sub(snap.CapturedAt).Round(time.Second),
		)
		return model.TeamSnapshot{}, false
	}

	return snap, true
}

// Put stores teams for username, replacing any previous record. Failures are
// logged and otherwise ignored.
func (c *TeamCache) Put(username string, teams []model.Team) {
	if err := c.write(username, teams); err != nil {
		c.logger.Warn("team cache write failed", "username", username, "error", err)
	}
}

func (c *TeamCache) write(username string, teams []model.Team) error {
	rec := record{
		Teams:     make([]teamRecord, 0, len(teams)),
		Timestamp: c.now().UnixMilli(),
		Username:  username,
	}
	for _, t := range teams {
		rec.Teams = append(rec.Teams, teamRecord{
			ID:           t.ID,
			Name:         t.Name,
			Slug:         t.Slug,
			Organization: t.Organization,
		})
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode team cache record: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create team cache dir: %w", err)
	}

	if err := atomic.WriteFile(c.path(username), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write team cache record: %w", err)
	}
	return nil
}

// Invalidate deletes the record for username. A missing record is not an error.
func (c *TeamCache) Invalidate(username string) error {
	err := os.Remove(c.path(username))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("invalidate team cache for %q: %w", username, err)
	}
	return nil
}

// ClearAll deletes every record in the cache directory and returns how many
// were removed.
func (c *TeamCache) ClearAll() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list team cache dir: %w", err)
	}

	var removed int
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != recordExt {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (c *TeamCache) path(username string) string {
	return filepath.Join(c.dir, fileName(username))
}

// fileName maps a username to a stable file name. Bytes outside
// [A-Za-z0-9._-] become '_'; the record's username tag disambiguates
// any collision this causes.
func fileName(username string) string {
	var b strings.Builder
	for i := 0; i < len(username); i++ {
		ch := username[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
			b.WriteByte(ch)
		case ch == '.' && i > 0:
			b.WriteByte(ch)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		b.WriteByte('_')
	}
	return b.String() + recordExt
}

func (r record) snapshot() model.TeamSnapshot {
	teams := make([]model.Team, 0, len(r.Teams))
	for _, t := range r.Teams {
		teams = append(teams, model.Team{
			ID:           t.ID,
			Name:         t.Name,
			Slug:         t.Slug,
			Organization: t.Organization,
		})
	}
	return model.TeamSnapshot{
		Username:   r.Username,
		Teams:      teams,
		CapturedAt: time.UnixMilli(r.Timestamp),
	}
}
