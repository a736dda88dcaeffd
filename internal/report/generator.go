package report

import (
	"context"
	"fmt"
	"time"
)

type Generator struct {
	Source        TaskSource
	Resolver      *AssigneeResolver
	ThresholdDays int
}

func NewGenerator(source TaskSource, resolver *AssigneeResolver, thresholdDays int) *Generator {
	return &Generator{
		Source:        source,
		Resolver:      resolver,
		ThresholdDays: thresholdDays,
	}
}

// Generate fetches a list's tasks and returns the ones past the age
// threshold, in fetch order, with assignees resolved.
func (g *Generator) Generate(ctx context.Context, listID, listName string, now time.Time) ([]StaleTask, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	tasks, err := g.Source.FetchTasks(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks for list %s: %w", listID, err)
	}

	var stale []StaleTask
	for _, t := range tasks {
		age := AgeDays(t.CreatedAt, now)
		if !IsStale(age, g.ThresholdDays) {
			continue
		}

		stale = append(stale, StaleTask{
			Task:         t,
			ListName:     listName,
			AgeDays:      age,
			AssigneeText: g.Resolver.Resolve(ctx, t.Assignees),
		})
	}
	return stale, nil
}

// Rows formats stale tasks into table rows.
func Rows(stale []StaleTask) []string {
	rows := make([]string, 0, len(stale))
	for _, t := range stale {
		rows = append(rows, FormatRow(t))
	}
	return rows
}

// Statistics generates summary stats
func Statistics(stale []StaleTask) map[string]any {
	stats := make(map[string]any)

	byList := make(map[string]int)
	byStatus := make(map[string]int)

	oldest := 0
	for _, t := range stale {
		byList[t.ListName]++
		byStatus[normalizeStatus(t.Status)]++
		if t.AgeDays > oldest {
			oldest = t.AgeDays
		}
	}

	stats["total"] = len(stale)
	stats["oldest_days"] = oldest
	stats["by_list"] = byList
	stats["by_status"] = byStatus
	return stats
}
