package model

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotPullRequestURL is returned when a subject URL does not reference a pull request.
var ErrNotPullRequestURL = errors.New("not a pull request URL")

// Notification is a snapshot of one notification thread in the user's inbox.
// It is created by the thread gateway and never mutated afterwards.
type Notification struct {
	ID         string
	Unread     bool
	Reason     string
	UpdatedAt  time.Time
	Subject    Subject
	Repository RepositoryRef
}

// Subject describes the resource a notification is about.
type Subject struct {
	Title string
	URL   string // API URL of the resource, e.g. https://api.github.com/repos/o/r/pulls/1.
	Type  SubjectType
}

// RepositoryRef identifies the repository owning a notification.
type RepositoryRef struct {
	Owner    string
	Name     string
	FullName string
}

// IsPullRequest reports whether the notification subject is a pull request.
func (n Notification) IsPullRequest() bool {
	return n.Subject.Type == SubjectPullRequest
}

// PullRequestRef is the structured address of a pull request.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

// String returns the owner/repo#number form.
func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// ParsePullRequestRef extracts owner, repository and number from a pull request
// URL. Both the API form (/repos/{owner}/{repo}/pulls/{n}) and the web form
// (/{owner}/{repo}/pull/{n}) are accepted.
func ParsePullRequestRef(raw string) (PullRequestRef, error) {
	if raw == "" {
		return PullRequestRef{}, fmt.Errorf("parse pull request ref: empty URL: %w", ErrNotPullRequestURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return PullRequestRef{}, fmt.Errorf("parse pull request ref %q: %w", raw, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// GitHub Enterprise serves the API under /api/v3.
	if len(parts) >= 2 && parts[0] == "api" && parts[1] == "v3" {
		parts = parts[2:]
	}
	if len(parts) > 0 && parts[0] == "repos" {
		parts = parts[1:]
	}

	if len(parts) != 4 || (parts[2] != "pulls" && parts[2] != "pull") {
		return PullRequestRef{}, fmt.Errorf("parse pull request ref %q: %w", raw, ErrNotPullRequestURL)
	}
	if parts[0] == "" || parts[1] == "" {
		return PullRequestRef{}, fmt.Errorf("parse pull request ref %q: missing owner or repo: %w", raw, ErrNotPullRequestURL)
	}

	number, err := strconv.Atoi(parts[3])
	if err != nil || number <= 0 {
		return PullRequestRef{}, fmt.Errorf("parse pull request ref %q: invalid number %q: %w", raw, parts[3], ErrNotPullRequestURL)
	}

	return PullRequestRef{Owner: parts[0], Repo: parts[1], Number: number}, nil
}
