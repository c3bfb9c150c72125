package application

import (
	"sync"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
)

// TeamSnapshotHolder holds the team membership snapshot of the current run.
// Rules are built before the snapshot is known and query the holder on every
// decision, so a reload is visible to them without reconstruction.
type TeamSnapshotHolder struct {
	mu       sync.RWMutex
	snapshot model.TeamSnapshot
	loaded   bool
}

// NewTeamSnapshotHolder creates an empty holder. Until Set is called, Teams
// returns an empty slice.
func NewTeamSnapshotHolder() *TeamSnapshotHolder {
	return &TeamSnapshotHolder{}
}

// Teams returns the teams of the current snapshot, or an empty slice when no
// snapshot has been loaded yet.
func (h *TeamSnapshotHolder) Teams() []model.Team {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.snapshot.Teams == nil {
		return []model.Team{}
	}
	return h.snapshot.Teams
}

// Snapshot returns the current snapshot and whether one has been loaded.
func (h *TeamSnapshotHolder) Snapshot() (model.TeamSnapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot, h.loaded
}

// Set replaces the held snapshot.
func (h *TeamSnapshotHolder) Set(snapshot model.TeamSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshot = snapshot
	h.loaded = true
}
