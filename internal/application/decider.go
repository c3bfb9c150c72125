package application

import (
	"github.com/ericfisherdev/threadsweep/internal/domain/model"
)

// Decider evaluates an ordered list of rules with short-circuit OR semantics.
type Decider struct {
	rules []Rule
}

// NewDecider creates a Decider that evaluates rules in the given order.
func NewDecider(rules ...Rule) *Decider {
	return &Decider{rules: rules}
}

// NewDefaultDecider builds the standard rule set for username: the
// merged-or-closed rule first, then the bot-authored rule.
func NewDefaultDecider(username string, teams TeamSource, botLogins []string) *Decider {
	return NewDecider(
		NewMergedOrClosedRule(username, teams),
		NewBotAuthoredRule(username, botLogins),
	)
}

// Evaluate returns the decision for n. The first rule that fires wins and is
// named in the decision; if none fires the thread is kept.
func (d *Decider) Evaluate(n model.Notification, pr *model.PullRequestDetail) model.Decision {
	for _, rule := range d.rules {
		if rule.Decide(n, pr) {
			return model.Decision{Resolve: true, Rule: rule.Name()}
		}
	}
	return model.Keep
}

// Decide reports whether n should be resolved.
func (d *Decider) Decide(n model.Notification, pr *model.PullRequestDetail) bool {
	return d.Evaluate(n, pr).Resolve
}

// RuleNames returns the names of the configured rules in evaluation order.
func (d *Decider) RuleNames() []string {
	names := make([]string, 0, len(d.rules))
	for _, rule := range d.rules {
		names = append(names, rule.Name())
	}
	return names
}
