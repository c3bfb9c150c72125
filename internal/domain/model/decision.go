package model

// Decision is the outcome of evaluating the rule set against one notification.
type Decision struct {
	Resolve bool
	Rule    string // Name of the rule that fired; empty when the thread is kept.
}

// Keep is the decision that leaves a thread untouched.
var Keep = Decision{}
