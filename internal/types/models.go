package types

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentTense    Sentiment = "Tense"
	SentimentUrgent   Sentiment = "Urgent"
)

var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentTense, SentimentUrgent}

// ParseSentiment matches s case-insensitively against the closed set,
// ignoring surrounding whitespace and punctuation.
func ParseSentiment(s string) (Sentiment, bool) {
	s = strings.Trim(strings.TrimSpace(s), ".!\"'`*")
	for _, v := range Sentiments {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return SentimentNeutral, false
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

const UnknownLanguage = "Unknown"

// Note is one processed recording. Content columns are written once by the pipeline.
type Note struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Filename      string         `gorm:"size:255;not null" json:"filename"`
	RawTranscript string         `gorm:"type:text;not null" json:"raw_transcript"`
	Transcript    string         `gorm:"type:text;not null" json:"transcript"`
	Summary       *string        `gorm:"type:text" json:"summary"`
	KeyPoints     datatypes.JSON `gorm:"column:key_points" json:"key_points"` // []string
	Sentiment     Sentiment      `gorm:"size:16;not null;default:Neutral" json:"sentiment"`
	Language      string         `gorm:"size:64;not null;default:Unknown" json:"language"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`

	Tasks []Task `gorm:"foreignKey:NoteID;constraint:OnDelete:CASCADE" json:"-"`
}

// KeyPointList decodes the stored key points; anything unreadable yields an empty list.
func (n *Note) KeyPointList() []string {
	out := []string{}
	if n == nil || len(n.KeyPoints) == 0 {
		return out
	}
	if err := json.Unmarshal(n.KeyPoints, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// EncodeKeyPoints serializes points for the key_points column. nil encodes as [].
func EncodeKeyPoints(points []string) datatypes.JSON {
	if points == nil {
		points = []string{}
	}
	b, _ := json.Marshal(points)
	return datatypes.JSON(b)
}

// Task is one action item extracted from a Note. Only Status changes after creation.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	NoteID      uint       `gorm:"index;not null" json:"note_id"`
	Description string     `gorm:"column:task;type:text;not null" json:"task"`
	Deadline    *string    `gorm:"type:text" json:"deadline"` // YYYY-MM-DD as returned by the model
	Status      TaskStatus `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}
