package types

import "time"

// TaskBrief is the task shape returned from a pipeline run.
type TaskBrief struct {
	Task     string  `json:"task"`
	Deadline *string `json:"deadline"`
}

// ProcessResult is the response of a successful pipeline run.
type ProcessResult struct {
	Success    bool        `json:"success"`
	NoteID     uint        `json:"note_id"`
	Filename   string      `json:"filename"`
	Transcript string      `json:"transcript"`
	Summary    *string     `json:"summary"`
	KeyPoints  []string    `json:"key_points"`
	Tasks      []TaskBrief `json:"tasks"`
	Sentiment  Sentiment   `json:"sentiment"`
	Language   string      `json:"language"`
	CreatedAt  time.Time   `json:"created_at"`
}

type NoteListItem struct {
	ID        uint      `json:"id"`
	Filename  string    `json:"filename"`
	Summary   *string   `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

type NoteDetail struct {
	ID            uint      `json:"id"`
	Filename      string    `json:"filename"`
	RawTranscript string    `json:"raw_transcript"`
	Transcript    string    `json:"transcript"`
	Summary       *string   `json:"summary"`
	KeyPoints     []string  `json:"key_points"`
	Sentiment     Sentiment `json:"sentiment,omitempty"`
	Language      string    `json:"language,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type TaskItem struct {
	ID           uint       `json:"id"`
	NoteID       uint       `json:"note_id"`
	NoteFilename *string    `json:"note_filename,omitempty"`
	Task         string     `json:"task"`
	Deadline     *string    `json:"deadline"`
	Status       TaskStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

type SearchResult struct {
	Results []NoteListItem `json:"results"`
	Count   int            `json:"count"`
}

type DeleteResult struct {
	Success bool   `json:"success"`
	NoteID  uint   `json:"note_id"`
	Message string `json:"message"`
}

type TaskStatusResult struct {
	Success bool       `json:"success"`
	TaskID  uint       `json:"task_id"`
	Status  TaskStatus `json:"status"`
}

type VoiceCommandResult struct {
	Success  bool   `json:"success"`
	Command  string `json:"command"`
	Response string `json:"response"`
}

type TranslateResult struct {
	Success        bool   `json:"success"`
	NoteID         uint   `json:"note_id"`
	TargetLanguage string `json:"target_language"`
	Translation    string `json:"translation"`
}

func (n *Note) ListItem() NoteListItem {
	return NoteListItem{ID: n.ID, Filename: n.Filename, Summary: n.Summary, CreatedAt: n.CreatedAt}
}

func (n *Note) Detail() NoteDetail {
	return NoteDetail{
		ID:            n.ID,
		Filename:      n.Filename,
		RawTranscript: n.RawTranscript,
		Transcript:    n.Transcript,
		Summary:       n.Summary,
		KeyPoints:     n.KeyPointList(),
		Sentiment:     n.Sentiment,
		Language:      n.Language,
		CreatedAt:     n.CreatedAt,
	}
}

func (t *Task) Item() TaskItem {
	return TaskItem{
		ID:        t.ID,
		NoteID:    t.NoteID,
		Task:      t.Description,
		Deadline:  t.Deadline,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
	}
}
