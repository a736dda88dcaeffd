package report

import (
	"context"
	"time"
)

// Task is a read-only snapshot of a task in the tracking service.
type Task struct {
	ID        string
	CustomID  string
	Name      string
	CreatedAt time.Time
	Status    string
	Creator   string
	ListID    string
	Assignees []Assignee
	URL       string
}

type Assignee struct {
	Email    string
	Username string
}

// DisplayID returns the custom id when the task has one.
func (t Task) DisplayID() string {
	if t.CustomID != "" {
		return t.CustomID
	}
	return t.ID
}

// StaleTask is a task that passed the age filter, with its rendered fields.
type StaleTask struct {
	Task
	ListName     string
	AgeDays      int
	AssigneeText string
}

type TaskSource interface {
	Name() string
	FetchTasks(ctx context.Context, listID string) ([]Task, error)
	HealthCheck(ctx context.Context) error
}
