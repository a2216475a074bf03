// Package pipeline turns one uploaded recording into a persisted note and its
// tasks.
//
// A run moves Received -> Transcribed -> Analyzed -> Persisted, or to Failed
// from any state. The saved recording is removed on every failure, so a failed
// run leaves neither a file nor a note behind.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"meeting-assistant-go/internal/apperr"
	"meeting-assistant-go/internal/extractor"
	"meeting-assistant-go/internal/logger"
	"meeting-assistant-go/internal/metrics"
	"meeting-assistant-go/internal/storage"
	"meeting-assistant-go/internal/transcription"
	"meeting-assistant-go/internal/types"
)

type State int

const (
	Received State = iota
	Transcribed
	Analyzed
	Persisted
	Failed
)

func (s State) String() string {
	switch s {
	case Received:
		return "received"
	case Transcribed:
		return "transcribed"
	case Analyzed:
		return "analyzed"
	case Persisted:
		return "persisted"
	default:
		return "failed"
	}
}

// FileStore saves uploads under their base name.
type FileStore interface {
	Save(filename string, r io.Reader) (*storage.Upload, error)
}

// Analyzer is the transcript half of the text-analysis capability.
type Analyzer interface {
	Summarize(ctx context.Context, transcript string) (extractor.Summary, error)
	ExtractTasks(ctx context.Context, transcript string) ([]extractor.ExtractedTask, error)
	DetectSentiment(ctx context.Context, transcript string) extractor.Enriched[types.Sentiment]
	DetectLanguage(ctx context.Context, transcript string) extractor.Enriched[string]
}

// NoteWriter stores a note together with its tasks, all or nothing.
type NoteWriter interface {
	CreateNoteWithTasks(ctx context.Context, note *types.Note, tasks []types.Task) error
}

type Recorder interface {
	RecordPipelineRun(outcome string)
	ObserveStage(stage string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordPipelineRun(string) {}
func (nopRecorder) ObserveStage(string, time.Duration) {}

type Option func(*Pipeline)

// WithTimeout bounds a whole run. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.rec = r
		}
	}
}

type Pipeline struct {
	files       FileStore
	transcriber transcription.Transcriber
	analyzer    Analyzer
	notes       NoteWriter
	log         *logger.Logger
	timeout     time.Duration
	rec         Recorder
}

func New(files FileStore, tr transcription.Transcriber, an Analyzer, notes NoteWriter, log *logger.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		files:       files,
		transcriber: tr,
		analyzer:    an,
		notes:       notes,
		log:         log.Component("pipeline"),
		rec:         nopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// analysis is the combined output of the Analyzed state.
type analysis struct {
	summary   extractor.Summary
	tasks     []extractor.ExtractedTask
	sentiment extractor.Enriched[types.Sentiment]
	language  extractor.Enriched[string]
}

// Process runs the pipeline for one upload. Any failure is returned as a
// server error whose message starts with "processing failed", except an
// unusable filename, which is a bad request.
func (p *Pipeline) Process(ctx context.Context, filename string, r io.Reader) (*types.ProcessResult, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	start := time.Now()
	log := p.log.WithField("filename", filename)

	// Received
	stageStart := time.Now()
	upload, err := p.files.Save(filename, r)
	p.rec.ObserveStage(metrics.StageSave, time.Since(stageStart))
	if err != nil {
		p.rec.RecordPipelineRun(metrics.OutcomeFailed)
		log.WithError(err).Warn("pipeline failed: save upload")
		if apperr.KindOf(err) == apperr.BadRequest {
			return nil, err
		}
		return nil, apperr.Wrap(fmt.Errorf("processing failed: %w", err))
	}
	log = log.WithField("path", upload.Path)
	log.WithField("state", Received).Info("upload received")

	succeeded := false
	defer func() {
		if succeeded {
			upload.Commit()
			return
		}
		if err := upload.Rollback(); err != nil {
			log.WithError(err).Warn("could not remove upload after failure")
		}
	}()

	fail := func(state State, err error) (*types.ProcessResult, error) {
		p.rec.RecordPipelineRun(metrics.OutcomeFailed)
		log.WithField("state", Failed).WithField("from", state).WithError(err).Warn("pipeline failed")
		return nil, apperr.Wrap(fmt.Errorf("processing failed: %w", err))
	}

	// Transcribed
	stageStart = time.Now()
	raw, err := p.transcriber.Transcribe(ctx, upload.Path)
	p.rec.ObserveStage(metrics.StageTranscribe, time.Since(stageStart))
	if err != nil {
		return fail(Received, err)
	}
	transcript := cleanTranscript(raw)
	log.WithField("state", Transcribed).WithField("chars", len(transcript)).Info("transcription complete")

	// Analyzed
	stageStart = time.Now()
	res, err := p.analyze(ctx, transcript)
	p.rec.ObserveStage(metrics.StageAnalyze, time.Since(stageStart))
	if err != nil {
		return fail(Transcribed, err)
	}
	if res.sentiment.Degraded() {
		log.WithField("cause", res.sentiment.Cause()).Debug("sentiment fell back to default")
	}
	if res.language.Degraded() {
		log.WithField("cause", res.language.Cause()).Debug("language fell back to default")
	}
	log.WithField("state", Analyzed).WithField("tasks", len(res.tasks)).Info("analysis complete")

	// Persisted
	note, tasks := buildRecords(upload.Name, raw, transcript, res)
	stageStart = time.Now()
	err = p.notes.CreateNoteWithTasks(ctx, note, tasks)
	p.rec.ObserveStage(metrics.StagePersist, time.Since(stageStart))
	if err != nil {
		return fail(Analyzed, fmt.Errorf("persist note: %w", err))
	}

	succeeded = true
	p.rec.RecordPipelineRun(metrics.OutcomeSuccess)
	log.WithField("state", Persisted).
		WithField("note_id", note.ID).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("pipeline complete")

	return buildResult(note, tasks, res.summary.KeyPoints), nil
}

// analyze runs the four transcript analyses concurrently. Only summarization
// and task extraction can fail the run; a failure cancels the others.
func (p *Pipeline) analyze(ctx context.Context, transcript string) (analysis, error) {
	var out analysis
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := p.analyzer.Summarize(gctx, transcript)
		if err != nil {
			return err
		}
		out.summary = s
		return nil
	})
	g.Go(func() error {
		t, err := p.analyzer.ExtractTasks(gctx, transcript)
		if err != nil {
			return err
		}
		out.tasks = t
		return nil
	})
	g.Go(func() error {
		out.sentiment = p.analyzer.DetectSentiment(gctx, transcript)
		return nil
	})
	g.Go(func() error {
		out.language = p.analyzer.DetectLanguage(gctx, transcript)
		return nil
	})

	if err := g.Wait(); err != nil {
		return analysis{}, err
	}
	return out, nil
}

// cleanTranscript derives the stored transcript from the raw backend text.
func cleanTranscript(raw string) string {
	return strings.TrimSpace(raw)
}

func buildRecords(filename, raw, transcript string, res analysis) (*types.Note, []types.Task) {
	var summary *string
	if s := res.summary.Summary; s != "" {
		summary = &s
	}
	note := &types.Note{
		Filename:      filename,
		RawTranscript: raw,
		Transcript:    transcript,
		Summary:       summary,
		KeyPoints:     types.EncodeKeyPoints(res.summary.KeyPoints),
		Sentiment:     res.sentiment.Value(),
		Language:      res.language.Value(),
	}
	tasks := make([]types.Task, len(res.tasks))
	for i, t := range res.tasks {
		tasks[i] = types.Task{
			Description: t.Task,
			Deadline:    t.Deadline,
			Status:      types.TaskPending,
		}
	}
	return note, tasks
}

func buildResult(note *types.Note, tasks []types.Task, keyPoints []string) *types.ProcessResult {
	if keyPoints == nil {
		keyPoints = []string{}
	}
	briefs := make([]types.TaskBrief, len(tasks))
	for i, t := range tasks {
		briefs[i] = types.TaskBrief{Task: t.Description, Deadline: t.Deadline}
	}
	return &types.ProcessResult{
		Success:    true,
		NoteID:     note.ID,
		Filename:   note.Filename,
		Transcript: note.Transcript,
		Summary:    note.Summary,
		KeyPoints:  keyPoints,
		Tasks:      briefs,
		Sentiment:  note.Sentiment,
		Language:   note.Language,
		CreatedAt:  note.CreatedAt,
	}
}
