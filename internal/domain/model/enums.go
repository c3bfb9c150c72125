package model

// SubjectType is the kind of resource a notification thread points at.
type SubjectType string

const (
	SubjectPullRequest SubjectType = "PullRequest"
	SubjectIssue       SubjectType = "Issue"
	SubjectRelease     SubjectType = "Release"
	SubjectCommit      SubjectType = "Commit"
	SubjectDiscussion  SubjectType = "Discussion"
)

// PRState represents the lifecycle state GitHub reports for a pull request.
// Merged pull requests are "closed"; the merged flag is carried separately.
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateClosed PRState = "closed"
)

// AccountTypeBot is the GitHub account type of app and bot users.
const AccountTypeBot = "Bot"

// OutcomeAction records what a triage run did with a thread.
type OutcomeAction string

const (
	ActionResolved      OutcomeAction = "resolved"
	ActionWouldResolve  OutcomeAction = "would_resolve"
	ActionKept          OutcomeAction = "kept"
	ActionResolveFailed OutcomeAction = "resolve_failed"
)

// RunStatus represents the state of a recorded triage run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)
