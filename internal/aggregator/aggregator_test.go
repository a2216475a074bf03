package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeting-assistant-go/internal/types"
)

func ptr(s string) *string { return &s }

func TestAggregate(t *testing.T) {
	today := time.Date(2026, 2, 20, 15, 0, 0, 0, time.UTC)
	notes := []types.Note{
		{ID: 1, Sentiment: types.SentimentPositive, Language: "English"},
		{ID: 2, Sentiment: types.SentimentUrgent, Language: "English"},
		{ID: 3, Sentiment: types.SentimentTense, Language: "Spanish"},
		{ID: 4, Language: ""},
	}
	tasks := []types.Task{
		{NoteID: 1, Status: types.TaskPending, Deadline: ptr("2026-02-13")},   // overdue
		{NoteID: 1, Status: types.TaskPending, Deadline: ptr("2026-02-10")},   // overdue, oldest
		{NoteID: 2, Status: types.TaskCompleted, Deadline: ptr("2026-01-01")}, // done
		{NoteID: 2, Status: types.TaskPending, Deadline: ptr("2026-02-20")},   // due today
		{NoteID: 3, Status: types.TaskPending, Deadline: ptr("next week")},    // unparseable
		{NoteID: 3, Status: types.TaskPending},
	}

	ins := Aggregate(notes, tasks, today)

	assert.Equal(t, 4, ins.TotalNotes)
	assert.Equal(t, 6, ins.TotalTasks)
	assert.Equal(t, map[string]int{"Positive": 1, "Neutral": 1, "Tense": 1, "Urgent": 1}, ins.BySentiment)
	assert.Equal(t, map[string]int{"English": 2, "Spanish": 1, "Unknown": 1}, ins.ByLanguage)
	assert.Equal(t, map[string]int{"pending": 5, "completed": 1}, ins.TasksByStatus)
	assert.Equal(t, 2, ins.OverdueTasks)
	require.NotNil(t, ins.OldestOverdue)
	assert.Equal(t, "2026-02-10", *ins.OldestOverdue)
	assert.InDelta(t, 0.5, ins.StressedShare, 0.001)
	assert.Equal(t, 3, ins.NotesWithTasks)
}

func TestAggregate_Empty(t *testing.T) {
	ins := Aggregate(nil, nil, time.Now())
	assert.Zero(t, ins.TotalNotes)
	assert.Zero(t, ins.StressedShare)
	assert.Nil(t, ins.OldestOverdue)
	assert.Len(t, ins.BySentiment, 4)
	assert.Equal(t, 0, ins.TasksByStatus["pending"])
}
