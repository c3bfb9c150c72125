// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
)

// ErrInvalidThreadID is returned when a thread ID cannot be addressed by the gateway.
var ErrInvalidThreadID = errors.New("invalid thread id")

// ThreadGateway defines the driven port for the user's notification inbox.
// Pagination, authentication and rate limiting are the adapter's concern.
type ThreadGateway interface {
	// ListUnreadThreads returns every unread notification thread.
	ListUnreadThreads(ctx context.Context) ([]model.Notification, error)

	// GetPullRequestDetail fetches the live state of a single pull request.
	GetPullRequestDetail(ctx context.Context, owner, repo string, number int) (*model.PullRequestDetail, error)

	// ResolveThread marks the thread as done. Resolving a thread that is
	// already done is not an error.
	ResolveThread(ctx context.Context, threadID string) error
}
