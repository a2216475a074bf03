package aggregator

import (
	"time"

	"meeting-assistant-go/internal/types"
)

const dateLayout = "2006-01-02"

type Insight struct {
	TotalNotes     int            `json:"total_notes"`
	TotalTasks     int            `json:"total_tasks"`
	BySentiment    map[string]int `json:"by_sentiment"`
	ByLanguage     map[string]int `json:"by_language"`
	TasksByStatus  map[string]int `json:"tasks_by_status"`
	OverdueTasks   int            `json:"overdue_tasks"`
	StressedShare  float64        `json:"stressed_share"` // Tense + Urgent notes over all notes
	OldestOverdue  *string        `json:"oldest_overdue,omitempty"`
	NotesWithTasks int            `json:"notes_with_tasks"`
}

// Aggregate summarizes notes and tasks as of today. A pending task is overdue
// when its deadline parses as YYYY-MM-DD and falls before today.
func Aggregate(notes []types.Note, tasks []types.Task, today time.Time) Insight {
	ins := Insight{
		TotalNotes:    len(notes),
		TotalTasks:    len(tasks),
		BySentiment:   map[string]int{},
		ByLanguage:    map[string]int{},
		TasksByStatus: map[string]int{},
	}
	for _, s := range types.Sentiments {
		ins.BySentiment[string(s)] = 0
	}
	ins.TasksByStatus[string(types.TaskPending)] = 0
	ins.TasksByStatus[string(types.TaskCompleted)] = 0

	stressed := 0
	for _, n := range notes {
		s := n.Sentiment
		if s == "" {
			s = types.SentimentNeutral
		}
		ins.BySentiment[string(s)]++
		if s == types.SentimentTense || s == types.SentimentUrgent {
			stressed++
		}
		lang := n.Language
		if lang == "" {
			lang = types.UnknownLanguage
		}
		ins.ByLanguage[lang]++
	}
	if len(notes) > 0 {
		ins.StressedShare = float64(stressed) / float64(len(notes))
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	withTasks := map[uint]struct{}{}
	var oldest time.Time
	for _, t := range tasks {
		ins.TasksByStatus[string(t.Status)]++
		withTasks[t.NoteID] = struct{}{}
		if t.Status != types.TaskPending || t.Deadline == nil {
			continue
		}
		due, err := time.Parse(dateLayout, *t.Deadline)
		if err != nil || !due.Before(day) {
			continue
		}
		ins.OverdueTasks++
		if oldest.IsZero() || due.Before(oldest) {
			oldest = due
		}
	}
	ins.NotesWithTasks = len(withTasks)
	if !oldest.IsZero() {
		s := oldest.Format(dateLayout)
		ins.OldestOverdue = &s
	}
	return ins
}
