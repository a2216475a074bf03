// Package extractor turns transcripts into structured meeting data by calling
// the selected text-generation backend.
//
// Summaries and tasks are the deliverable of a pipeline run, so their failures
// are returned as errors. Sentiment and language are enrichment: they come back
// as an Enriched value that falls back to a default instead of failing.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"meeting-assistant-go/internal/llm"
	"meeting-assistant-go/internal/logger"
	"meeting-assistant-go/internal/types"
)

// Operation names, as reported to the CallRecorder.
const (
	OpSummarize = "summarize"
	OpTasks     = "extract_tasks"
	OpSentiment = "sentiment"
	OpLanguage  = "language"
	OpTranslate = "translate"
	OpCommand   = "voice_command"
)

// Call outcomes, as reported to the CallRecorder.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeDegraded = "degraded"
)

// CallRecorder receives one observation per backend call.
type CallRecorder interface {
	ObserveCall(provider, operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCall(string, string, string) {}

// Summary is the structured result of summarization.
type Summary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
}

// ExtractedTask is one action item as returned by the backend. The deadline is
// passed through untouched: null becomes nil, strings are kept as written and
// any other JSON value is kept as its literal text.
type ExtractedTask struct {
	Task     string  `json:"task"`
	Deadline *string `json:"deadline"`
}

func (t *ExtractedTask) UnmarshalJSON(b []byte) error {
	var raw struct {
		Task     string          `json:"task"`
		Deadline json.RawMessage `json:"deadline"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t.Task = strings.TrimSpace(raw.Task)
	t.Deadline = nil

	d := bytes.TrimSpace(raw.Deadline)
	if len(d) == 0 || bytes.Equal(d, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(d, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			t.Deadline = &s
		}
		return nil
	}
	lit := string(d)
	t.Deadline = &lit
	return nil
}

// taskList accepts both {"tasks": [...]} and a bare array.
type taskList []ExtractedTask

func (l *taskList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []ExtractedTask
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var env struct {
		Tasks []ExtractedTask `json:"tasks"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	*l = env.Tasks
	return nil
}

type Option func(*Analyzer)

// WithClock sets the source of the reference date used to resolve relative
// deadlines.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

func WithRecorder(r CallRecorder) Option {
	return func(a *Analyzer) {
		if r != nil {
			a.rec = r
		}
	}
}

// Analyzer runs the text analyses against one backend.
type Analyzer struct {
	client  llm.Client
	adapter adapter
	log     *logger.Logger
	now     func() time.Time
	rec     CallRecorder
}

func New(kind llm.Kind, client llm.Client, log *logger.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		client:  client,
		adapter: adapterFor(kind),
		log:     log.Component("extractor"),
		now:     time.Now,
		rec:     nopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Provider() string { return a.client.Name() }

func (a *Analyzer) observe(op, outcome string) {
	a.rec.ObserveCall(a.client.Name(), op, outcome)
}

// Summarize returns a short summary and the key points of a transcript.
// KeyPoints is never nil.
func (a *Analyzer) Summarize(ctx context.Context, transcript string) (Summary, error) {
	raw, err := a.client.Complete(ctx, llm.Request{
		System: summarySystem,
		Prompt: summaryPrompt(transcript),
		JSON:   true,
	})
	if err != nil {
		a.observe(OpSummarize, OutcomeError)
		return Summary{}, fmt.Errorf("summarization failed: %w", err)
	}

	var out Summary
	if err := a.adapter.decodeJSON(raw, &out); err != nil {
		a.observe(OpSummarize, OutcomeError)
		return Summary{}, fmt.Errorf("summarization failed: %w", err)
	}
	out.Summary = strings.TrimSpace(out.Summary)
	if out.KeyPoints == nil {
		out.KeyPoints = []string{}
	}

	a.observe(OpSummarize, OutcomeOK)
	a.log.WithField("key_points", len(out.KeyPoints)).Debug("summary generated")
	return out, nil
}

// ExtractTasks lists the action items in a transcript. An empty slice means
// the meeting had none.
func (a *Analyzer) ExtractTasks(ctx context.Context, transcript string) ([]ExtractedTask, error) {
	raw, err := a.client.Complete(ctx, llm.Request{
		System: tasksSystem,
		Prompt: tasksPrompt(transcript, a.now()),
		JSON:   true,
	})
	if err != nil {
		a.observe(OpTasks, OutcomeError)
		return nil, fmt.Errorf("task extraction failed: %w", err)
	}

	var list taskList
	if err := a.adapter.decodeJSON(raw, &list); err != nil {
		a.observe(OpTasks, OutcomeError)
		return nil, fmt.Errorf("task extraction failed: %w", err)
	}
	if list == nil {
		list = taskList{}
	}

	a.observe(OpTasks, OutcomeOK)
	a.log.WithField("tasks", len(list)).Debug("tasks extracted")
	return []ExtractedTask(list), nil
}

// DetectSentiment classifies the tone of a transcript. Anything other than a
// known sentiment, including a failed call, yields Neutral.
func (a *Analyzer) DetectSentiment(ctx context.Context, transcript string) Enriched[types.Sentiment] {
	raw, err := a.client.Complete(ctx, llm.Request{
		System: classifySystem,
		Prompt: sentimentPrompt(transcript),
	})
	if err != nil {
		a.observe(OpSentiment, OutcomeDegraded)
		return Fallback(types.SentimentNeutral, err)
	}

	s, ok := types.ParseSentiment(a.adapter.text(raw))
	if !ok {
		a.observe(OpSentiment, OutcomeDegraded)
		return Fallback(s, fmt.Errorf("unexpected sentiment %q", truncate(raw, 40)))
	}
	a.observe(OpSentiment, OutcomeOK)
	return Enrich(s)
}

// DetectLanguage names the language of a transcript, or "Unknown".
func (a *Analyzer) DetectLanguage(ctx context.Context, transcript string) Enriched[string] {
	raw, err := a.client.Complete(ctx, llm.Request{
		System: classifySystem,
		Prompt: languagePrompt(transcript),
	})
	if err != nil {
		a.observe(OpLanguage, OutcomeDegraded)
		return Fallback(types.UnknownLanguage, err)
	}

	lang := strings.Trim(strings.TrimSpace(a.adapter.text(raw)), `."'`)
	if lang == "" {
		a.observe(OpLanguage, OutcomeDegraded)
		return Fallback(types.UnknownLanguage, errors.New("empty language"))
	}
	a.observe(OpLanguage, OutcomeOK)
	return Enrich(lang)
}

// Translate renders text in the target language. Failures are returned.
func (a *Analyzer) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	raw, err := a.client.Complete(ctx, llm.Request{
		Prompt: translatePrompt(text, targetLanguage),
	})
	if err != nil {
		a.observe(OpTranslate, OutcomeError)
		return "", fmt.Errorf("translation failed: %w", err)
	}
	out := a.adapter.text(raw)
	if strings.TrimSpace(out) == "" {
		a.observe(OpTranslate, OutcomeError)
		return "", errors.New("translation failed: empty response")
	}
	a.observe(OpTranslate, OutcomeOK)
	return out, nil
}

// Answer responds to a free-form command about a stored transcript.
func (a *Analyzer) Answer(ctx context.Context, command, transcript string) (string, error) {
	raw, err := a.client.Complete(ctx, llm.Request{
		System: commandSystem,
		Prompt: commandPrompt(command, transcript),
	})
	if err != nil {
		a.observe(OpCommand, OutcomeError)
		return "", fmt.Errorf("voice command failed: %w", err)
	}
	a.observe(OpCommand, OutcomeOK)
	return a.adapter.text(raw), nil
}
