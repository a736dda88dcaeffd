package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type CSVExporter struct {
	OutputDir string
}

func NewCSVExporter(outputDir string) *CSVExporter {
	return &CSVExporter{OutputDir: outputDir}
}

func (e *CSVExporter) Format() string { return "csv" }

func (e *CSVExporter) Export(stale []StaleTask, now time.Time) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(e.OutputDir, fmt.Sprintf("stale_tasks_%s.csv", now.Format("2006-01-02_15-04-05")))
	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"#",
		"List",
		"Task ID",
		"Task Name",
		"Status",
		"Created By",
		"Assignees",
		"Date Created",
		"Age (days)",
		"URL",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for i, t := range stale {
		row := []string{
			strconv.Itoa(i + 1),
			t.ListName,
			t.DisplayID(),
			t.Name,
			normalizeStatus(t.Status),
			t.Creator,
			AssigneeNames(t.Assignees),
			formatDate(t.CreatedAt),
			strconv.Itoa(t.AgeDays),
			t.URL,
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}
	return filename, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("02/01/06")
}
