package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const dashboardSheet = "Dashboard"

type ExcelExporter struct {
	OutputDir string
}

func NewExcelExporter(outputDir string) *ExcelExporter {
	return &ExcelExporter{OutputDir: outputDir}
}

func (e *ExcelExporter) Format() string { return "xlsx" }

func (e *ExcelExporter) Export(stale []StaleTask, now time.Time) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(e.OutputDir, fmt.Sprintf("stale_tasks_%s.xlsx", now.Format("2006-01-02_15-04-05")))

	f := excelize.NewFile()
	defer f.Close()

	listTasks := make(map[string][]StaleTask)
	listNames := []string{}
	statuses := []string{}
	seenStatus := make(map[string]bool)

	for _, t := range stale {
		if _, ok := listTasks[t.ListName]; !ok {
			listNames = append(listNames, t.ListName)
		}
		listTasks[t.ListName] = append(listTasks[t.ListName], t)

		status := normalizeStatus(t.Status)
		if !seenStatus[status] {
			statuses = append(statuses, status)
			seenStatus[status] = true
		}
	}

	if err := e.createDashboardSheet(f, listNames, statuses, listTasks, now); err != nil {
		return "", fmt.Errorf("failed to create dashboard: %w", err)
	}

	for _, list := range listNames {
		if err := e.createListSheet(f, sanitizeSheetName(list), listTasks[list]); err != nil {
			return "", fmt.Errorf("failed to create sheet for %s: %w", list, err)
		}
	}

	if idx, err := f.GetSheetIndex(dashboardSheet); err == nil {
		f.SetActiveSheet(idx)
	}
	_ = f.DeleteSheet("Sheet1")

	if err := f.SaveAs(filename); err != nil {
		return "", fmt.Errorf("failed to save excel file: %w", err)
	}

	return filename, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C0504D"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "#000000", Style: 1},
			{Type: "right", Color: "#000000", Style: 1},
			{Type: "top", Color: "#000000", Style: 1},
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
}

func (e *ExcelExporter) createDashboardSheet(f *excelize.File, listNames, statuses []string, listTasks map[string][]StaleTask, now time.Time) error {
	if _, err := f.NewSheet(dashboardSheet); err != nil {
		return err
	}

	style, err := headerStyle(f)
	if err != nil {
		return err
	}

	f.SetCellValue(dashboardSheet, "A1", "Generated:")
	f.SetCellValue(dashboardSheet, "B1", now.UTC().Format("02-01-06 15:04"))

	row := 3
	headers := []string{"List"}
	for _, s := range statuses {
		headers = append(headers, displayStatus(s))
	}
	headers = append(headers, "Total", "Oldest (days)")

	for i, h := range headers {
		cell := cellName(i+1, row)
		f.SetCellValue(dashboardSheet, cell, h)
		f.SetCellStyle(dashboardSheet, cell, cell, style)
	}
	row++

	for _, list := range listNames {
		counts := make(map[string]int)
		oldest := 0
		for _, t := range listTasks[list] {
			counts[normalizeStatus(t.Status)]++
			if t.AgeDays > oldest {
				oldest = t.AgeDays
			}
		}

		col := 1
		f.SetCellValue(dashboardSheet, cellName(col, row), list)
		col++
		for _, s := range statuses {
			f.SetCellValue(dashboardSheet, cellName(col, row), counts[s])
			col++
		}
		f.SetCellValue(dashboardSheet, cellName(col, row), len(listTasks[list]))
		col++
		f.SetCellValue(dashboardSheet, cellName(col, row), oldest)
		row++
	}

	f.SetColWidth(dashboardSheet, "A", "A", 25)
	for i := 2; i <= len(headers); i++ {
		name, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(dashboardSheet, name, name, 15)
	}
	return nil
}

func (e *ExcelExporter) createListSheet(f *excelize.File, sheetName string, tasks []StaleTask) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	style, err := headerStyle(f)
	if err != nil {
		return err
	}

	headers := []string{
		"#",
		"Task ID",
		"Task Name",
		"Status",
		"Created By",
		"Assignees",
		"Date Created",
		"Age (days)",
		"URL",
	}

	for col, header := range headers {
		cell := cellName(col+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, style)
	}

	for i, t := range tasks {
		row := i + 2
		f.SetCellValue(sheetName, cellName(1, row), i+1)
		f.SetCellValue(sheetName, cellName(2, row), t.DisplayID())
		f.SetCellValue(sheetName, cellName(3, row), t.Name)
		f.SetCellValue(sheetName, cellName(4, row), displayStatus(t.Status))
		f.SetCellValue(sheetName, cellName(5, row), t.Creator)
		f.SetCellValue(sheetName, cellName(6, row), AssigneeNames(t.Assignees))
		f.SetCellValue(sheetName, cellName(7, row), formatDate(t.CreatedAt))
		f.SetCellValue(sheetName, cellName(8, row), t.AgeDays)
		if t.URL != "" {
			f.SetCellValue(sheetName, cellName(9, row), t.URL)
			f.SetCellHyperLink(sheetName, cellName(9, row), t.URL, "External")
		}
	}

	f.SetColWidth(sheetName, "A", "A", 5)
	f.SetColWidth(sheetName, "B", "B", 15)
	f.SetColWidth(sheetName, "C", "C", 50)
	f.SetColWidth(sheetName, "D", "F", 20)
	f.SetColWidth(sheetName, "G", "H", 12)
	f.SetColWidth(sheetName, "I", "I", 40)

	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func sanitizeSheetName(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	name = strings.ReplaceAll(name, "?", "")
	name = strings.ReplaceAll(name, "*", "")
	name = strings.ReplaceAll(name, ":", "-")
	name = strings.ReplaceAll(name, "[", "(")
	name = strings.ReplaceAll(name, "]", ")")

	if name == "" || strings.EqualFold(name, dashboardSheet) {
		name = "List " + name
	}

	runes := []rune(name)
	if len(runes) > 31 {
		name = string(runes[:31])
	}

	return name
}
