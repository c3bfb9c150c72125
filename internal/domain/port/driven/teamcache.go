package driven

import "github.com/ericfisherdev/threadsweep/internal/domain/model"

// TeamCache persists team membership snapshots per username.
// Get never fails: unreadable, stale or mismatched records are reported as a
// miss. Put swallows persistence failures.
type TeamCache interface {
	Get(username string) (model.TeamSnapshot, bool)
	Put(username string, teams []model.Team)
	Invalidate(username string) error
	ClearAll() (int, error)
}
