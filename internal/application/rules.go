package application

import (
	"github.com/ericfisherdev/threadsweep/internal/domain/model"
)

// Rule names, used in logs and the run ledger.
const (
	RuleMergedOrClosed = "merged-or-closed"
	RuleBotAuthored    = "bot-authored"
)

// DefaultBotLogins are the bot accounts whose pull requests BotAuthoredRule
// recognizes when no other list is configured.
var DefaultBotLogins = []string{"renovate-sh-app[bot]"}

// Rule decides whether a notification can be resolved without the user's
// attention. Implementations are pure: the same inputs give the same answer,
// and a nil pr means the pull request detail is unavailable.
type Rule interface {
	Name() string
	Decide(n model.Notification, pr *model.PullRequestDetail) bool
}

// TeamSource provides read access to the current user's teams.
type TeamSource interface {
	Teams() []model.Team
}

// MergedOrClosedRule resolves pull request threads that are closed or merged
// when the user is not a requested reviewer (directly or through a team), not
// the author and not an assignee.
type MergedOrClosedRule struct {
	username string
	teams    TeamSource
}

// NewMergedOrClosedRule creates the rule for username. teams may be nil, which
// is treated as no team memberships.
func NewMergedOrClosedRule(username string, teams TeamSource) *MergedOrClosedRule {
	return &MergedOrClosedRule{username: username, teams: teams}
}

// Name implements Rule.
func (r *MergedOrClosedRule) Name() string { return RuleMergedOrClosed }

// Decide implements Rule.
func (r *MergedOrClosedRule) Decide(n model.Notification, pr *model.PullRequestDetail) bool {
	if !applicable(r.username, n, pr) {
		return false
	}
	if !pr.IsFinalized() {
		return false
	}
	if pr.HasRequestedReviewer(r.username) {
		return false
	}
	if r.teams != nil && model.MatchesRequestedTeam(r.teams.Teams(), pr.RequestedTeams) {
		return false
	}
	if pr.IsAuthoredBy(r.username) || pr.IsAssignedTo(r.username) {
		return false
	}
	return true
}

// BotAuthoredRule resolves threads of pull requests opened by a known
// dependency bot when the user is not an individually requested reviewer, not
// the author and not an assignee. Team review requests do not block it, and it
// does not look at the pull request state.
type BotAuthoredRule struct {
	username  string
	botLogins map[string]struct{}
}

// NewBotAuthoredRule creates the rule for username. An empty botLogins selects
// DefaultBotLogins. Logins match exactly.
func NewBotAuthoredRule(username string, botLogins []string) *BotAuthoredRule {
	if len(botLogins) == 0 {
		botLogins = DefaultBotLogins
	}
	set := make(map[string]struct{}, len(botLogins))
	for _, login := range botLogins {
		set[login] = struct{}{}
	}
	return &BotAuthoredRule{username: username, botLogins: set}
}

// Name implements Rule.
func (r *BotAuthoredRule) Name() string { return RuleBotAuthored }

// Decide implements Rule.
func (r *BotAuthoredRule) Decide(n model.Notification, pr *model.PullRequestDetail) bool {
	if !applicable(r.username, n, pr) {
		return false
	}
	if !r.isKnownBot(pr.Author) {
		return false
	}
	if pr.HasRequestedReviewer(r.username) {
		return false
	}
	if pr.IsAuthoredBy(r.username) || pr.IsAssignedTo(r.username) {
		return false
	}
	return true
}

func (r *BotAuthoredRule) isKnownBot(a model.Account) bool {
	_, ok := r.botLogins[a.Login]
	return ok && a.IsBot()
}

// applicable is the shared precondition: a pull request notification with
// detail available, evaluated for a known user. Missing information never
// resolves a thread.
func applicable(username string, n model.Notification, pr *model.PullRequestDetail) bool {
	return username != "" && n.IsPullRequest() && pr != nil
}
