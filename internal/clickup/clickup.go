package clickup

import (
	"context"

	"github.com/Afrawles/clickup-alerts/internal/report"
)

const unknown = "Unknown"

// ClickUpSource serves the tasks of ClickUp lists restricted to a status set.
type ClickUpSource struct {
	Client   *Client
	Statuses []string
}

func NewClickUpSource(client *Client, statuses []string) *ClickUpSource {
	return &ClickUpSource{
		Client:   client,
		Statuses: statuses,
	}
}

var _ report.TaskSource = (*ClickUpSource)(nil)

func (c *ClickUpSource) Name() string {
	return "ClickUp"
}

func (c *ClickUpSource) HealthCheck(ctx context.Context) error {
	return c.Client.HealthCheck(ctx)
}

func (c *ClickUpSource) FetchTasks(ctx context.Context, listID string) ([]report.Task, error) {
	clickupTasks, err := c.Client.FetchTasks(ctx, listID, c.Statuses)
	if err != nil {
		return nil, err
	}

	tasks := make([]report.Task, 0, len(clickupTasks))
	for _, t := range clickupTasks {
		tasks = append(tasks, toTask(t, listID))
	}
	return tasks, nil
}

func toTask(t ClickUpTask, listID string) report.Task {
	task := report.Task{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.DateCreated.Time,
		Status:    t.Status.Status,
		Creator:   unknown,
		ListID:    listID,
		URL:       t.URL,
	}

	if t.CustomID != nil {
		task.CustomID = *t.CustomID
	}
	if task.Status == "" {
		task.Status = unknown
	}
	if t.Creator != nil && t.Creator.Username != "" {
		task.Creator = t.Creator.Username
	}
	if t.List.ID != "" {
		task.ListID = t.List.ID
	}

	for _, a := range t.Assignees {
		assignee := report.Assignee{Username: a.Username}
		if a.Email != nil {
			assignee.Email = *a.Email
		}
		task.Assignees = append(task.Assignees, assignee)
	}
	return task
}
