package alerts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Afrawles/clickup-alerts/internal/clickup"
	"github.com/Afrawles/clickup-alerts/internal/config"
	"github.com/Afrawles/clickup-alerts/internal/report"
)

var testNow = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

type fakeSource struct {
	tasks  map[string][]report.Task
	errs   map[string]error
	called []string
}

func (f *fakeSource) Name() string { return "fake" }
func (f *fakeSource) HealthCheck(context.Context) error { return nil }
func (f *fakeSource) FetchTasks(_ context.Context, listID string) ([]report.Task, error) {
	f.called = append(f.called, listID)
	if err := f.errs[listID]; err != nil {
		return nil, err
	}
	return f.tasks[listID], nil
}

type fakeLookup map[string]string

func (f fakeLookup) Mention(_ context.Context, email string) (string, error) {
	if id, ok := f[email]; ok {
		return "<@" + id + ">", nil
	}
	return "", errors.New("users_not_found")
}

type fakeNotifier struct {
	posted []string
	failOn func(text string) bool
}

func (f *fakeNotifier) Post(_ context.Context, text string) error {
	if f.failOn != nil && f.failOn(text) {
		return errors.New("msg_too_long")
	}
	f.posted = append(f.posted, text)
	return nil
}

type fakeFolders struct {
	lists []clickup.ListRef
	err   error
}

func (f *fakeFolders) GetListsFromFolder(context.Context, string) ([]clickup.ListRef, error) {
	return f.lists, f.err
}

type fakeExporter struct {
	got []report.StaleTask
}

func (f *fakeExporter) Format() string { return "fake" }
func (f *fakeExporter) Export(stale []report.StaleTask, _ time.Time) (string, error) {
	f.got = stale
	return "/tmp/fake.out", nil
}

func testConfig(lists ...config.ListConfig) *config.Config {
	return &config.Config{
		ClickUp: config.ClickUpConfig{Lists: lists, Statuses: []string{"Open"}},
		Slack:   config.SlackConfig{Channel: "#alerts"},
		Alerts: config.AlertsConfig{
			AgeThresholdDays: 14,
			ThresholdLabel:   "2 Weeks",
			MaxChars:         report.DefaultMaxChars,
			Separator:        true,
		},
	}
}

func aged(id string, days int, assignees ...report.Assignee) report.Task {
	return report.Task{
		ID:        id,
		Name:      "task " + id,
		CreatedAt: testNow.AddDate(0, 0, -days),
		Status:    "open",
		Creator:   "alice",
		URL:       "https://app.clickup.com/t/" + id,
		Assignees: assignees,
	}
}

func newTestApp(cfg *config.Config, src report.TaskSource, lookup report.MentionLookup, n Notifier) *Application {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := New(cfg, logger, src, lookup, n)
	app.Now = func() time.Time { return testNow }
	return app
}

func TestRunPostsStaleTasksPerList(t *testing.T) {
	cfg := testConfig(
		config.ListConfig{ID: "l1", Name: "AWS"},
		config.ListConfig{ID: "l2", Name: "GitHub"},
		config.ListConfig{ID: "l3", Name: "Jenkins"},
	)
	src := &fakeSource{tasks: map[string][]report.Task{
		"l1": {
			aged("t5", 5),
			aged("t20", 20, report.Assignee{Email: "a@x.com"}, report.Assignee{Username: "bob"}),
			aged("t30", 30, report.Assignee{Email: "c@x.com", Username: "carol"}),
		},
		"l2": {aged("fresh", 14)},
		"l3": {aged("j40", 40)},
	}}
	notifier := &fakeNotifier{}
	exporter := &fakeExporter{}

	app := newTestApp(cfg, src, fakeLookup{"c@x.com": "U3"}, notifier)
	app.Exporters = []report.Exporter{exporter}

	summary, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if strings.Join(src.called, ",") != "l1,l2,l3" {
		t.Fatalf("lists fetched in order %v", src.called)
	}

	// AWS, Jenkins, separator
	if len(notifier.posted) != 3 {
		t.Fatalf("got %d posts, want 3: %q", len(notifier.posted), notifier.posted)
	}

	aws := notifier.posted[0]
	if !strings.Contains(aws, "Tickets in AWS Open for Over 2 Weeks") || !strings.Contains(aws, "📂 *AWS*") {
		t.Fatalf("unexpected AWS message %q", aws)
	}
	if strings.Contains(aws, "|t5>") {
		t.Fatal("fresh task reported")
	}
	i20, i30 := strings.Index(aws, "|t20>"), strings.Index(aws, "|t30>")
	if i20 < 0 || i30 < 0 || i20 > i30 {
		t.Fatal("stale rows missing or out of order")
	}
	if !strings.Contains(aws, "| a@x.com, bob") || !strings.Contains(aws, "| <@U3>") {
		t.Fatalf("assignees not resolved: %q", aws)
	}

	if !strings.Contains(notifier.posted[1], "📂 *Jenkins*") {
		t.Fatalf("second post should be Jenkins: %q", notifier.posted[1])
	}
	if notifier.posted[2] != Separator {
		t.Fatalf("last post should be the separator, got %q", notifier.posted[2])
	}

	if summary.Lists != 3 || summary.ListsAlerted != 2 || summary.MessagesSent != 3 || summary.MessagesFailed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(exporter.got) != 3 || len(summary.Exports) != 1 {
		t.Fatalf("exporter got %d tasks, exports %v", len(exporter.got), summary.Exports)
	}
}

func TestRunContinuesAfterFailures(t *testing.T) {
	cfg := testConfig(
		config.ListConfig{ID: "bad", Name: "Broken"},
		config.ListConfig{ID: "l1", Name: "AWS"},
		config.ListConfig{ID: "l2", Name: "GitHub"},
	)
	src := &fakeSource{
		tasks: map[string][]report.Task{
			"l1": {aged("a1", 20)},
			"l2": {aged("g1", 25)},
		},
		errs: map[string]error{"bad": &clickup.APIError{StatusCode: 500}},
	}
	notifier := &fakeNotifier{failOn: func(text string) bool { return strings.Contains(text, "📂 *AWS*") }}

	var logs bytes.Buffer
	app := newTestApp(cfg, src, nil, notifier)
	app.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	summary, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(notifier.posted) != 2 || !strings.Contains(notifier.posted[0], "📂 *GitHub*") || notifier.posted[1] != Separator {
		t.Fatalf("unexpected posts %q", notifier.posted)
	}
	if summary.MessagesFailed != 1 || summary.MessagesSent != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !strings.Contains(logs.String(), "status=500") {
		t.Fatalf("fetch status not logged: %s", logs.String())
	}
	if !strings.Contains(logs.String(), "msg_too_long") {
		t.Fatalf("post error reason not logged: %s", logs.String())
	}
}

func TestRunNothingStaleSendsNothing(t *testing.T) {
	cfg := testConfig(config.ListConfig{ID: "l1", Name: "AWS"})
	src := &fakeSource{tasks: map[string][]report.Task{"l1": {aged("t14", 14), {ID: "nodate"}}}}
	notifier := &fakeNotifier{}

	summary, err := newTestApp(cfg, src, nil, notifier).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(notifier.posted) != 0 {
		t.Fatalf("expected no posts, got %q", notifier.posted)
	}
	if summary.ListsAlerted != 0 || summary.MessagesSent != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestRunWithoutSeparator(t *testing.T) {
	cfg := testConfig(config.ListConfig{ID: "l1", Name: "AWS"})
	cfg.Alerts.Separator = false
	src := &fakeSource{tasks: map[string][]report.Task{"l1": {aged("t20", 20)}}}
	notifier := &fakeNotifier{}

	if _, err := newTestApp(cfg, src, nil, notifier).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(notifier.posted) != 1 || notifier.posted[0] == Separator {
		t.Fatalf("unexpected posts %q", notifier.posted)
	}
}

func TestRunSplitsLongListsIntoContinuedMessages(t *testing.T) {
	cfg := testConfig(config.ListConfig{ID: "l1", Name: "AWS"})
	cfg.Alerts.Separator = false

	var tasks []report.Task
	for i := 0; i < 30; i++ {
		tasks = append(tasks, aged(strings.Repeat("x", 3)+string(rune('a'+i%26))+string(rune('a'+i/26)), 20+i))
	}
	src := &fakeSource{tasks: map[string][]report.Task{"l1": tasks}}
	notifier := &fakeNotifier{}

	if _, err := newTestApp(cfg, src, nil, notifier).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(notifier.posted) < 2 {
		t.Fatalf("expected multiple messages, got %d", len(notifier.posted))
	}
	if !strings.Contains(notifier.posted[0], "📂 *AWS*\n") {
		t.Fatal("first message must use the plain label")
	}
	for _, m := range notifier.posted[1:] {
		if !strings.Contains(m, "📂 *AWS (continued)*") {
			t.Fatal("later messages must be labeled continued")
		}
	}

	total := 0
	for _, m := range notifier.posted {
		total += strings.Count(m, "<https://app.clickup.com/t/")
	}
	if total != len(tasks) {
		t.Fatalf("rows across messages = %d, want %d", total, len(tasks))
	}
}

func TestRunDiscoversFolderLists(t *testing.T) {
	cfg := testConfig()
	cfg.ClickUp.FolderID = "f1"
	src := &fakeSource{tasks: map[string][]report.Task{"d2": {aged("t20", 20)}}}
	notifier := &fakeNotifier{}

	app := newTestApp(cfg, src, nil, notifier)
	app.Folders = &fakeFolders{lists: []clickup.ListRef{{ID: "d1", Name: "One"}, {ID: "d2", Name: "Two"}}}

	summary, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Join(src.called, ",") != "d1,d2" || summary.Lists != 2 {
		t.Fatalf("discovered lists not used: %v", src.called)
	}
	if !strings.Contains(notifier.posted[0], "Tickets in Two") {
		t.Fatalf("unexpected post %q", notifier.posted[0])
	}

	app.Folders = &fakeFolders{err: errors.New("forbidden")}
	if _, err := app.Run(context.Background()); err == nil {
		t.Fatal("expected folder discovery error")
	}
}

func TestRunCanceled(t *testing.T) {
	cfg := testConfig(config.ListConfig{ID: "l1", Name: "AWS"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notifier := &fakeNotifier{}
	_, err := newTestApp(cfg, &fakeSource{}, nil, notifier).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(notifier.posted) != 0 {
		t.Fatal("nothing should be posted after cancel")
	}
}

func TestProgressHook(t *testing.T) {
	cfg := testConfig(config.ListConfig{ID: "l1", Name: "AWS"}, config.ListConfig{ID: "l2", Name: "GitHub"})
	app := newTestApp(cfg, &fakeSource{}, nil, &fakeNotifier{})

	var seen []string
	app.Progress = func(list string) { seen = append(seen, list) }

	if _, err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Join(seen, ",") != "AWS,GitHub" {
		t.Fatalf("progress calls %v", seen)
	}
}
