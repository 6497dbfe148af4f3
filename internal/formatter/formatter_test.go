package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/ffx/internal/models"
	"github.com/desertthunder/ffx/internal/shared"
)

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: 1, Title: "Read chapter 4", IsDone: false, SetDate: "2024-09-01", DueDate: "2024-09-14"},
		{ID: 2, Title: "Lab write-up", IsDone: true, SetDate: "2024-09-02", DueDate: "2024-09-10"},
	}
}

func TestExportToCSV(t *testing.T) {
	out, err := ExportToCSV(sampleTasks())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("output must parse as CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "ID" || records[0][4] != "DueDate" {
		t.Errorf("unexpected header row %v", records[0])
	}
	if records[1][1] != "Read chapter 4" || records[2][2] != "true" {
		t.Errorf("unexpected data rows %v", records[1:])
	}
}

func TestExportToMarkdown(t *testing.T) {
	out, err := ExportToMarkdown("student@example.org", sampleTasks())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	text := string(out)
	if !strings.Contains(text, "# Tasks for student@example.org") {
		t.Error("expected account heading")
	}
	if !strings.Contains(text, "**Total**: 2") {
		t.Error("expected total count")
	}
	if !strings.Contains(text, "- [ ] Read chapter 4") || !strings.Contains(text, "- [x] Lab write-up") {
		t.Errorf("expected checklist entries, got:\n%s", text)
	}
}

func TestExportToText(t *testing.T) {
	out, err := ExportToText(sampleTasks())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	text := string(out)
	if !strings.Contains(text, "Tasks: 2") {
		t.Error("expected task count header")
	}
	if !strings.Contains(text, "1. [ ] Read chapter 4 (due 2024-09-14)") {
		t.Errorf("unexpected text output:\n%s", text)
	}
}

func TestExportToJSON(t *testing.T) {
	out, err := ExportToJSON(sampleTasks())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var decoded []models.Task
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output must parse as JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[0].ID != 1 {
		t.Errorf("unexpected decoded tasks %+v", decoded)
	}
}

func TestWriteTasksFile(t *testing.T) {
	tc := []struct {
		format string
		want   string
	}{
		{format: "csv", want: "ID,Title"},
		{format: "markdown", want: "# Tasks for"},
		{format: "txt", want: "Tasks: 2"},
		{format: "json", want: `"title"`},
		{format: "", want: `"title"`},
	}

	for _, tt := range tc {
		name := tt.format
		if name == "" {
			name = "default"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.out")

			if err := WriteTasksFile("student@example.org", sampleTasks(), tt.format, path); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			content, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read output: %v", err)
			}
			if !strings.Contains(string(content), tt.want) {
				t.Errorf("expected %q in output, got:\n%s", tt.want, content)
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.out")

		err := WriteTasksFile("student@example.org", sampleTasks(), "yaml", path)
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected invalid flag error, got %v", err)
		}
		if _, statErr := os.Stat(path); statErr == nil {
			t.Error("expected no file to be written")
		}
	})
}
