package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func sampleStale() []StaleTask {
	created := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	return []StaleTask{
		{Task: Task{ID: "a1", CustomID: "OPS-1", Name: "Renew cert", Status: "open", Creator: "ann", CreatedAt: created, URL: "https://app.clickup.com/t/a1", Assignees: []Assignee{{Email: "ann@x.com", Username: "ann"}, {Username: "bo"}}}, ListName: "AWS", AgeDays: 30, AssigneeText: "<@U1>, bo"},
		{Task: Task{ID: "b2", Name: "Prune runners", Status: "on_hold", Creator: "ben", CreatedAt: created}, ListName: "GitHub/Actions", AgeDays: 30, AssigneeText: "Unassigned"},
	}
}

func TestCSVExporter(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	path, err := NewCSVExporter(t.TempDir()).Export(sampleStale(), now)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2", len(records))
	}
	if records[1][2] != "OPS-1" || records[2][2] != "b2" {
		t.Fatalf("unexpected ids %q, %q", records[1][2], records[2][2])
	}
	if records[2][4] != "on hold" {
		t.Fatalf("status not normalized: %q", records[2][4])
	}
	if records[1][6] != "ann@x.com, bo" || records[2][6] != "Unassigned" {
		t.Fatalf("assignees should be plain names, got %q and %q", records[1][6], records[2][6])
	}
	if records[1][7] != "02/01/26" || records[1][8] != "30" {
		t.Fatalf("unexpected date/age %q %q", records[1][7], records[1][8])
	}
}

func TestJSONExporter(t *testing.T) {
	path, err := NewJSONExporter(t.TempDir()).Export(sampleStale(), time.Now())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var out []staleTaskJSON
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].ID != "OPS-1" || out[1].List != "GitHub/Actions" || out[0].Assignees != "ann@x.com, bo" {
		t.Fatalf("unexpected export %+v", out)
	}
}

func TestExcelExporter(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	path, err := NewExcelExporter(t.TempDir()).Export(sampleStale(), now)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{dashboardSheet, "AWS", "GitHub-Actions"}
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %v, want %v", sheets, want)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Fatalf("sheets = %v, want %v", sheets, want)
		}
	}

	if v, _ := f.GetCellValue("AWS", "B2"); v != "OPS-1" {
		t.Fatalf("AWS!B2 = %q", v)
	}
	if v, _ := f.GetCellValue("AWS", "F2"); v != "ann@x.com, bo" {
		t.Fatalf("AWS!F2 = %q, want plain assignee names", v)
	}
	if v, _ := f.GetCellValue("GitHub-Actions", "D2"); v != "On Hold" {
		t.Fatalf("status = %q, want title-cased", v)
	}
	if v, _ := f.GetCellValue(dashboardSheet, "A4"); v != "AWS" {
		t.Fatalf("Dashboard!A4 = %q", v)
	}
}

func TestSanitizeSheetName(t *testing.T) {
	tests := map[string]string{
		"Prod Temp Access VPN":               "Prod Temp Access VPN",
		"a/b:c":                              "a-b-c",
		"Dashboard":                          "List Dashboard",
		"A very long list name that goes on": "A very long list name that goes",
	}
	for in, want := range tests {
		if got := sanitizeSheetName(in); got != want {
			t.Fatalf("sanitizeSheetName(%q) = %q, want %q", in, got, want)
		}
	}
}
