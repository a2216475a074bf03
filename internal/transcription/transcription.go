package transcription

import (
	"context"
	"fmt"

	"meeting-assistant-go/internal/llm"
	"meeting-assistant-go/internal/logger"
)

// Transcriber turns a saved audio file into plain text. The text carries no
// guarantees about casing or punctuation.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Provider() string
}

// Error wraps any failure of a transcription call.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transcription failed (%s): %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns the transcriber for the selected provider.
func New(kind llm.Kind, openai *llm.OpenAI, gemini *llm.Gemini, log *logger.Logger) Transcriber {
	if kind == llm.KindOpenAI {
		return &openAITranscriber{client: openai, log: log.Component("transcription")}
	}
	return &geminiTranscriber{client: gemini, log: log.Component("transcription")}
}

type openAITranscriber struct {
	client *llm.OpenAI
	log    *logger.Logger
}

func (t *openAITranscriber) Provider() string { return string(llm.KindOpenAI) }

func (t *openAITranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	t.log.WithField("path", audioPath).Info("starting transcription")
	text, err := t.client.Transcribe(ctx, audioPath)
	if err != nil {
		return "", &Error{Provider: t.Provider(), Err: err}
	}
	return text, nil
}

const verbatimPrompt = "Transcribe this audio verbatim. Return only the spoken words as plain text, without timestamps, speaker labels, or commentary."

// geminiTranscriber uploads the file, waits until the service can read it, then
// asks for a verbatim transcript. Uploaded files are not deleted here; the
// service expires them.
type geminiTranscriber struct {
	client *llm.Gemini
	log    *logger.Logger
}

func (t *geminiTranscriber) Provider() string { return string(llm.KindGemini) }

func (t *geminiTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	log := t.log.WithField("path", audioPath)
	log.Info("uploading audio for transcription")

	f, err := t.client.UploadFile(ctx, audioPath)
	if err != nil {
		return "", &Error{Provider: t.Provider(), Err: err}
	}
	f, err = t.client.WaitActive(ctx, f)
	if err != nil {
		return "", &Error{Provider: t.Provider(), Err: err}
	}
	log.WithField("file", f.Name).Info("file active, requesting transcript")

	text, err := t.client.GenerateFromFile(ctx, verbatimPrompt, f)
	if err != nil {
		return "", &Error{Provider: t.Provider(), Err: err}
	}
	return text, nil
}
