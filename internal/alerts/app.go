package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Afrawles/clickup-alerts/internal/clickup"
	"github.com/Afrawles/clickup-alerts/internal/config"
	"github.com/Afrawles/clickup-alerts/internal/report"
)

// Separator is posted once after all lists when anything was sent.
const Separator = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

type Notifier interface {
	Post(ctx context.Context, text string) error
}

// FolderLister discovers the lists of a folder.
type FolderLister interface {
	GetListsFromFolder(ctx context.Context, folderID string) ([]clickup.ListRef, error)
}

type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Generator *report.Generator
	Notifier  Notifier
	Folders   FolderLister
	Exporters []report.Exporter
	Now       func() time.Time

	// Progress, when set, is called before each list is checked.
	Progress func(list string)
}

type Summary struct {
	Lists          int
	ListsAlerted   int
	MessagesSent   int
	MessagesFailed int
	Stale          []report.StaleTask
	Exports        []string
}

func New(cfg *config.Config, logger *slog.Logger, source report.TaskSource, lookup report.MentionLookup, notifier Notifier) *Application {
	if logger == nil {
		logger = slog.Default()
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Generator: report.NewGenerator(source, report.DefaultAssigneeResolver(lookup), cfg.Alerts.AgeThresholdDays),
		Notifier:  notifier,
		Now:       time.Now,
	}
}

func (app *Application) lists(ctx context.Context) ([]config.ListConfig, error) {
	if len(app.Config.ClickUp.Lists) > 0 {
		return app.Config.ClickUp.Lists, nil
	}

	if app.Config.ClickUp.FolderID == "" || app.Folders == nil {
		return nil, fmt.Errorf("no lists configured")
	}

	refs, err := app.Folders.GetListsFromFolder(ctx, app.Config.ClickUp.FolderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lists from folder %s: %w", app.Config.ClickUp.FolderID, err)
	}

	lists := make([]config.ListConfig, 0, len(refs))
	for _, r := range refs {
		lists = append(lists, config.ListConfig{ID: r.ID, Name: r.Name})
	}
	app.Logger.Info("lists discovered", "folder_id", app.Config.ClickUp.FolderID, "count", len(lists))
	return lists, nil
}

// Run processes every list in order: fetch, filter, format, chunk, send.
// Fetch and post failures are logged and skipped.
func (app *Application) Run(ctx context.Context) (*Summary, error) {
	lists, err := app.lists(ctx)
	if err != nil {
		return nil, err
	}

	now := app.Now().UTC()
	threshold := app.Config.Alerts.AgeThresholdDays
	summary := &Summary{Lists: len(lists)}

	app.Logger.Info("checking lists for stale tasks",
		"lists", len(lists),
		"threshold_days", threshold,
		"channel", app.Config.Slack.Channel,
	)

	for _, list := range lists {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if app.Progress != nil {
			app.Progress(list.Name)
		}

		stale, err := app.Generator.Generate(ctx, list.ID, list.Name, now)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			app.logFetchError(list, err)
			continue
		}

		if len(stale) == 0 {
			app.Logger.Info("no stale tasks", "list", list.Name, "threshold_days", threshold)
			continue
		}

		summary.ListsAlerted++
		summary.Stale = append(summary.Stale, stale...)

		messages := report.BuildMessages(list.Name, app.Config.Alerts.ThresholdLabel, report.Rows(stale), app.Config.Alerts.MaxChars)
		for i, msg := range messages {
			if err := app.Notifier.Post(ctx, msg); err != nil {
				summary.MessagesFailed++
				app.Logger.Error("slack message failed", "list", list.Name, "chunk", i+1, "error", err)
				continue
			}
			summary.MessagesSent++
			app.Logger.Info("slack message sent", "list", list.Name, "chunk", i+1, "of", len(messages), "tasks", len(stale))
		}
	}

	if summary.MessagesSent > 0 && app.Config.Alerts.Separator {
		if err := app.Notifier.Post(ctx, Separator); err != nil {
			summary.MessagesFailed++
			app.Logger.Error("slack separator failed", "error", err)
		} else {
			summary.MessagesSent++
		}
	}

	for _, exp := range app.Exporters {
		path, err := exp.Export(summary.Stale, now)
		if err != nil {
			app.Logger.Error("failed to export stale tasks", "format", exp.Format(), "error", err)
			continue
		}
		summary.Exports = append(summary.Exports, path)
		app.Logger.Info("stale tasks exported", "format", exp.Format(), "file", path)
	}

	stats := report.Statistics(summary.Stale)
	app.Logger.Info("stale task check complete",
		"lists", summary.Lists,
		"lists_alerted", summary.ListsAlerted,
		"stale", stats["total"],
		"oldest_days", stats["oldest_days"],
		"by_status", stats["by_status"],
		"messages_sent", summary.MessagesSent,
		"messages_failed", summary.MessagesFailed,
	)

	return summary, nil
}

func (app *Application) logFetchError(list config.ListConfig, err error) {
	var apiErr *clickup.APIError
	if errors.As(err, &apiErr) {
		app.Logger.Error("error fetching tasks", "list", list.Name, "list_id", list.ID, "status", apiErr.StatusCode)
		return
	}
	app.Logger.Error("error fetching tasks", "list", list.Name, "list_id", list.ID, "error", err)
}
