package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/threadsweep/internal/adapter/driven/filecache"
	ghAdapter "github.com/ericfisherdev/threadsweep/internal/adapter/driven/github"
	"github.com/ericfisherdev/threadsweep/internal/application"
	"github.com/ericfisherdev/threadsweep/internal/domain/model"
)

var platformTeam = model.Team{ID: 42, Name: "Platform", Slug: "platform", Organization: "acme"}

func TestTeamLoader_CacheHitSkipsResolver(t *testing.T) {
	cache := newMockCache()
	cache.snapshots["bob"] = model.TeamSnapshot{Username: "bob", Teams: []model.Team{platformTeam}}
	resolver := &mockResolver{}

	snap := application.NewTeamLoader(cache, resolver, nil).Load(context.Background(), "bob", false)

	assert.Equal(t, []model.Team{platformTeam}, snap.Teams)
	assert.Empty(t, resolver.calls)
	assert.Empty(t, cache.puts)
}

func TestTeamLoader_MissFetchesAndStores(t *testing.T) {
	cache := newMockCache()
	resolver := &mockResolver{
		listTeams: func(_ context.Context, _ string) ([]model.Team, error) {
			return []model.Team{platformTeam}, nil
		},
	}

	snap := application.NewTeamLoader(cache, resolver, nil).Load(context.Background(), "bob", false)

	assert.Equal(t, "bob", snap.Username)
	assert.Equal(t, []model.Team{platformTeam}, snap.Teams)
	assert.False(t, snap.CapturedAt.IsZero())
	assert.Equal(t, []string{"bob"}, resolver.calls)
	assert.Equal(t, []model.Team{platformTeam}, cache.puts["bob"])
}

func TestTeamLoader_InvalidateForcesFetch(t *testing.T) {
	cache := newMockCache()
	cache.snapshots["bob"] = model.TeamSnapshot{Username: "bob", Teams: []model.Team{{Name: "Old"}}}
	resolver := &mockResolver{
		listTeams: func(_ context.Context, _ string) ([]model.Team, error) {
			return []model.Team{platformTeam}, nil
		},
	}

	snap := application.NewTeamLoader(cache, resolver, nil).Load(context.Background(), "bob", true)

	assert.Equal(t, []string{"bob"}, cache.invalidated)
	assert.Equal(t, []model.Team{platformTeam}, snap.Teams)
	assert.Len(t, resolver.calls, 1)
}

func TestTeamLoader_InvalidateFailureStillFetches(t *testing.T) {
	cache := newMockCache()
	cache.invalidErr = errors.New("permission denied")
	cache.snapshots["bob"] = model.TeamSnapshot{Username: "bob", Teams: []model.Team{{Name: "Old"}}}
	resolver := &mockResolver{
		listTeams: func(_ context.Context, _ string) ([]model.Team, error) {
			return []model.Team{platformTeam}, nil
		},
	}

	snap := application.NewTeamLoader(cache, resolver, nil).Load(context.Background(), "bob", true)

	assert.Equal(t, []model.Team{platformTeam}, snap.Teams)
}

func TestTeamLoader_ResolverFailureDegrades(t *testing.T) {
	cache := newMockCache()
	resolver := &mockResolver{
		listTeams: func(_ context.Context, _ string) ([]model.Team, error) {
			return nil, errors.New("graphql: forbidden")
		},
	}

	snap := application.NewTeamLoader(cache, resolver, nil).Load(context.Background(), "bob", false)

	assert.Equal(t, "bob", snap.Username)
	assert.NotNil(t, snap.Teams)
	assert.Empty(t, snap.Teams)
	assert.Empty(t, cache.puts, "failures are not cached")
}

func TestTeamLoader_OrganizationOutageIsNotCached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/orgs":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]any{map[string]any{"login": "acme"}})
		case "/graphql":
			http.Error(w, "bad gateway", http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/", "test-token")
	require.NoError(t, err)
	cache := filecache.New(t.TempDir(), filecache.DefaultTTL)

	snap := application.NewTeamLoader(cache, client, nil).Load(context.Background(), "alice", false)

	assert.Empty(t, snap.Teams)
	_, ok := cache.Get("alice")
	assert.False(t, ok, "an outage must not be stored as an empty membership")
}

// A record for another user stored under the requested user's file is a miss.
func TestTeamLoader_ForeignCacheRecordRefetches(t *testing.T) {
	dir := t.TempDir()
	record := `{"teams":[{"id":1,"name":"Alice Team","slug":"alice-team","organization":"acme"}],` +
		`"timestamp":` + strconv.FormatInt(time.Now().UnixMilli(), 10) + `,"username":"alice"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bob.json"), []byte(record), 0o600))

	cache := filecache.New(dir, filecache.DefaultTTL)
	resolver := &mockResolver{
		listTeams: func(_ context.Context, _ string) ([]model.Team, error) {
			return []model.Team{platformTeam}, nil
		},
	}

	snap := application.NewTeamLoader(cache, resolver, nil).Load(context.Background(), "bob", false)

	assert.Equal(t, []string{"bob"}, resolver.calls)
	assert.Equal(t, []model.Team{platformTeam}, snap.Teams)

	cached, ok := cache.Get("bob")
	require.True(t, ok)
	assert.Equal(t, "bob", cached.Username)
	assert.Equal(t, []model.Team{platformTeam}, cached.Teams)
}
