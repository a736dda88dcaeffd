package report

import (
	"context"
	"strings"
)

const (
	unassigned      = "Unassigned"
	unknownAssignee = "Unknown"
)

// MentionLookup turns an email into a chat mention token.
type MentionLookup interface {
	Mention(ctx context.Context, email string) (string, error)
}

// AssigneeStrategy renders an assignee if its trigger condition holds.
type AssigneeStrategy struct {
	Name    string
	Resolve func(ctx context.Context, a Assignee) (string, bool)
}

// MentionStrategy fires when the assignee has an email and the lookup succeeds.
func MentionStrategy(lookup MentionLookup) AssigneeStrategy {
	return AssigneeStrategy{
		Name: "mention",
		Resolve: func(ctx context.Context, a Assignee) (string, bool) {
			if a.Email == "" || lookup == nil {
				return "", false
			}
			mention, err := lookup.Mention(ctx, a.Email)
			if err != nil || mention == "" {
				return "", false
			}
			return mention, true
		},
	}
}

// EmailStrategy fires when the assignee has an email.
func EmailStrategy() AssigneeStrategy {
	return AssigneeStrategy{
		Name: "email",
		Resolve: func(_ context.Context, a Assignee) (string, bool) {
			return a.Email, a.Email != ""
		},
	}
}

// UsernameStrategy fires when the assignee has a display name.
func UsernameStrategy() AssigneeStrategy {
	return AssigneeStrategy{
		Name: "username",
		Resolve: func(_ context.Context, a Assignee) (string, bool) {
			return a.Username, a.Username != ""
		},
	}
}

// UnknownStrategy always fires.
func UnknownStrategy() AssigneeStrategy {
	return AssigneeStrategy{
		Name: "unknown",
		Resolve: func(context.Context, Assignee) (string, bool) {
			return unknownAssignee, true
		},
	}
}

// AssigneeResolver evaluates its strategies in order and uses the first that fires.
type AssigneeResolver struct {
	strategies []AssigneeStrategy
}

func NewAssigneeResolver(strategies ...AssigneeStrategy) *AssigneeResolver {
	return &AssigneeResolver{strategies: strategies}
}

// DefaultAssigneeResolver is mention, then email, then username, then "Unknown".
func DefaultAssigneeResolver(lookup MentionLookup) *AssigneeResolver {
	return NewAssigneeResolver(
		MentionStrategy(lookup),
		EmailStrategy(),
		UsernameStrategy(),
		UnknownStrategy(),
	)
}

func (r *AssigneeResolver) resolveOne(ctx context.Context, a Assignee) string {
	for _, s := range r.strategies {
		if v, ok := s.Resolve(ctx, a); ok {
			return v
		}
	}
	return unknownAssignee
}

// Resolve renders assignees as a comma-joined list in encounter order.
// Every assignee is looked up on its own; nothing is cached.
func (r *AssigneeResolver) Resolve(ctx context.Context, assignees []Assignee) string {
	if len(assignees) == 0 {
		return unassigned
	}

	parts := make([]string, 0, len(assignees))
	for _, a := range assignees {
		parts = append(parts, r.resolveOne(ctx, a))
	}
	return strings.Join(parts, ", ")
}

// AssigneeNames renders assignees without chat lookups: email, then
// username, then "Unknown". Exports use it so files read well outside chat.
func AssigneeNames(assignees []Assignee) string {
	return NewAssigneeResolver(EmailStrategy(), UsernameStrategy(), UnknownStrategy()).
		Resolve(context.Background(), assignees)
}
