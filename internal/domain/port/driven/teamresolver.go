package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
)

// ErrTeamsUnavailable indicates the user belongs to organizations but none of
// their team lists could be read, so an empty result would be wrong.
var ErrTeamsUnavailable = errors.New("teams unavailable for every organization")

// TeamResolver discovers the teams a user belongs to across their organizations.
type TeamResolver interface {
	// ListTeamsForUser returns ErrTeamsUnavailable (wrapped) when every
	// organization lookup failed.
	ListTeamsForUser(ctx context.Context, username string) ([]model.Team, error)
}
