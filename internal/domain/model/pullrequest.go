package model

import "strings"

// Account is a GitHub user or bot identity.
type Account struct {
	Login string
	Type  string // "User", "Bot" or "Organization".
}

// IsBot reports whether GitHub flags the account as a bot.
func (a Account) IsBot() bool {
	return a.Type == AccountTypeBot
}

// Is reports whether the account belongs to login. GitHub logins are
// case-insensitive.
func (a Account) Is(login string) bool {
	return login != "" && strings.EqualFold(a.Login, login)
}

// TeamRef is a team requested to review a pull request.
type TeamRef struct {
	Name string
	Slug string
}

// PullRequestDetail is the live pull request state used to enrich a
// PullRequest notification. It is fetched at most once per notification.
type PullRequestDetail struct {
	Number             int
	State              PRState
	Merged             bool
	Author             Account
	RequestedReviewers []Account
	RequestedTeams     []TeamRef
	Assignees          []Account
}

// IsFinalized reports whether the pull request is closed or merged. The merged
// flag is checked on its own because some payloads carry it without a closed state.
func (pr PullRequestDetail) IsFinalized() bool {
	return pr.State == PRStateClosed || pr.Merged
}

// IsAuthoredBy reports whether login authored the pull request.
func (pr PullRequestDetail) IsAuthoredBy(login string) bool {
	return pr.Author.Is(login)
}

// HasRequestedReviewer reports whether login was individually requested to review.
func (pr PullRequestDetail) HasRequestedReviewer(login string) bool {
	return containsAccount(pr.RequestedReviewers, login)
}

// IsAssignedTo reports whether login is among the assignees.
func (pr PullRequestDetail) IsAssignedTo(login string) bool {
	return containsAccount(pr.Assignees, login)
}

func containsAccount(accounts []Account, login string) bool {
	for _, a := range accounts {
		if a.Is(login) {
			return true
		}
	}
	return false
}
