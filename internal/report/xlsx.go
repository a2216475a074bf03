// Package report exports notes and tasks as an Excel workbook.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"meeting-assistant-go/internal/types"
)

const (
	NotesSheet = "Notes"
	TasksSheet = "Tasks"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	noteHeader = []any{"ID", "Filename", "Created At", "Sentiment", "Language", "Summary", "Key Points"}
	taskHeader = []any{"ID", "Note ID", "Note Filename", "Task", "Deadline", "Status", "Created At"}
)

// Build lays out one row per note on the Notes sheet and one row per task on
// the Tasks sheet, each under a bold header row.
func Build(notes []types.Note, tasks []types.TaskItem) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", NotesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(TasksSheet); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := writeRow(f, NotesSheet, 1, noteHeader); err != nil {
		return nil, err
	}
	for i, n := range notes {
		row := []any{
			n.ID,
			n.Filename,
			n.CreatedAt.UTC().Format(time.RFC3339),
			string(n.Sentiment),
			n.Language,
			deref(n.Summary),
			strings.Join(n.KeyPointList(), "; "),
		}
		if err := writeRow(f, NotesSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, TasksSheet, 1, taskHeader); err != nil {
		return nil, err
	}
	for i, t := range tasks {
		row := []any{
			t.ID,
			t.NoteID,
			deref(t.NoteFilename),
			t.Task,
			deref(t.Deadline),
			string(t.Status),
			t.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writeRow(f, TasksSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	for _, sheet := range []string{NotesSheet, TasksSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}
	}
	if err := f.SetColWidth(NotesSheet, "F", "G", 60); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}
	if err := f.SetColWidth(TasksSheet, "D", "D", 60); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}
	return f, nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, notes []types.Note, tasks []types.TaskItem) error {
	f, err := Build(notes, tasks)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename is the attachment name for an export made at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("meeting-notes-%s.xlsx", t.UTC().Format("20060102-150405"))
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
