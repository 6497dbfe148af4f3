// package formatter renders task lists in various output formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/ffx/internal/models"
	"github.com/desertthunder/ffx/internal/shared"
)

// statusMarker renders a completion state for text output.
func statusMarker(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// ExportToCSV converts a task list to CSV with columns: ID, Title, Done, SetDate, DueDate
func ExportToCSV(tasks []models.Task) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Done", "SetDate", "DueDate"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, task := range tasks {
		record := []string{
			strconv.Itoa(task.ID),
			task.Title,
			strconv.FormatBool(task.IsDone),
			task.SetDate,
			task.DueDate,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a task list to a Markdown checklist grouped under
// a heading for the account.
func ExportToMarkdown(email string, tasks []models.Task) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Tasks for %s\n\n", email))
	buf.WriteString(fmt.Sprintf("**Total**: %d\n\n", len(tasks)))

	for _, task := range tasks {
		buf.WriteString(fmt.Sprintf("- %s %s (set %s, due %s)\n", statusMarker(task.IsDone), task.Title, task.SetDate, task.DueDate))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a task list to plain text format
func ExportToText(tasks []models.Task) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Tasks: %d\n\n", len(tasks)))
	for i, task := range tasks {
		buf.WriteString(fmt.Sprintf("%d. %s %s (due %s)\n", i+1, statusMarker(task.IsDone), task.Title, task.DueDate))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a task list to indented JSON.
func ExportToJSON(tasks []models.Task) ([]byte, error) {
	return shared.MarshalJSON(tasks, true)
}

// WriteTasksFile renders tasks in the given format ("csv", "markdown", "txt"
// or "json", the default) and writes them to path.
func WriteTasksFile(email string, tasks []models.Task, format, path string) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case "csv":
		data, err = ExportToCSV(tasks)
	case "markdown":
		data, err = ExportToMarkdown(email, tasks)
	case "txt":
		data, err = ExportToText(tasks)
	case "json", "":
		data, err = ExportToJSON(tasks)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return fmt.Errorf("failed to render tasks: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write tasks file: %w", err)
	}

	return nil
}
