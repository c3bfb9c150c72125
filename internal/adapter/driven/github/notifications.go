package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
	"github.com/ericfisherdev/threadsweep/internal/domain/port/driven"
)

// ListUnreadThreads retrieves every unread notification thread of the
// authenticated user. It handles pagination automatically.
func (c *Client) ListUnreadThreads(ctx context.Context) ([]model.Notification, error) {
	opts := &gh.NotificationListOptions{
		All:         false,
		ListOptions: gh.ListOptions{PerPage: pageSize},
	}

	var all []model.Notification

	for {
		threads, resp, err := c.gh.Activity.ListNotifications(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("listing notifications (page %d): %w", opts.Page, err)
		}

		logRateLimit(resp, "notifications", opts.Page, len(threads))

		for _, n := range threads {
			if !n.GetUnread() {
				continue
			}
			all = append(all, mapNotification(n))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if all == nil {
		all = []model.Notification{}
	}

	return all, nil
}

// ResolveThread marks a notification thread as done. A thread GitHub no longer
// knows about is treated as already resolved.
func (c *Client) ResolveThread(ctx context.Context, threadID string) error {
	id, err := strconv.ParseInt(threadID, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("resolving thread %q: %w", threadID, driven.ErrInvalidThreadID)
	}

	resp, err := c.gh.Activity.MarkThreadDone(ctx, id)
	if err != nil {
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			slog.Debug("thread already gone", "thread_id", threadID)
			return nil
		}
		return fmt.Errorf("marking thread %s done: %w", threadID, err)
	}

	logRateLimit(resp, "notifications/threads", 0, 1)

	return nil
}

// mapNotification converts a go-github Notification to a domain model Notification.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapNotification(n *gh.Notification) model.Notification {
	repo := n.GetRepository()

	return model.Notification{
		ID:        n.GetID(),
		Unread:    n.GetUnread(),
		Reason:    n.GetReason(),
		UpdatedAt: n.GetUpdatedAt().Time,
		Subject: model.Subject{
			Title: n.GetSubject().GetTitle(),
			URL:   n.GetSubject().GetURL(),
			Type:  model.SubjectType(n.GetSubject().GetType()),
		},
		Repository: model.RepositoryRef{
			Owner:    repo.GetOwner().GetLogin(),
			Name:     repo.GetName(),
			FullName: repo.GetFullName(),
		},
	}
}
