package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Exporter writes the stale tasks of one run somewhere durable.
type Exporter interface {
	Format() string
	Export(stale []StaleTask, now time.Time) (string, error)
}

type JSONExporter struct {
	OutputDir string
}

func NewJSONExporter(outputDir string) *JSONExporter {
	return &JSONExporter{OutputDir: outputDir}
}

func (e *JSONExporter) Format() string { return "json" }

type staleTaskJSON struct {
	ID        string    `json:"id"`
	List      string    `json:"list"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Creator   string    `json:"creator"`
	Assignees string    `json:"assignees"`
	AgeDays   int       `json:"age_days"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
}

func (e *JSONExporter) Export(stale []StaleTask, now time.Time) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	out := make([]staleTaskJSON, 0, len(stale))
	for _, t := range stale {
		out = append(out, staleTaskJSON{
			ID:        t.DisplayID(),
			List:      t.ListName,
			Title:     t.Name,
			Status:    t.Status,
			Creator:   t.Creator,
			Assignees: AssigneeNames(t.Assignees),
			AgeDays:   t.AgeDays,
			CreatedAt: t.CreatedAt,
			URL:       t.URL,
		})
	}

	data, err := json.MarshalIndent(out, "", "\t")
	if err != nil {
		return "", err
	}

	filename := filepath.Join(e.OutputDir, fmt.Sprintf("stale_tasks_%s.json", now.Format("2006-01-02_15-04-05")))
	return filename, os.WriteFile(filename, data, 0644)
}

func normalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	status = strings.ReplaceAll(status, "_", " ")
	return status
}

func displayStatus(status string) string {
	return cases.Title(language.English).String(normalizeStatus(status))
}
