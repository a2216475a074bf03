package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"

	"meeting-assistant-go/internal/apperr"
	"meeting-assistant-go/internal/types"
)

// VoiceCommand answers a free-form command against a stored transcript.
func (s *Service) VoiceCommand(ctx context.Context, noteID uint, command string) (*types.VoiceCommandResult, error) {
	if strings.TrimSpace(command) == "" {
		return nil, apperr.BadRequestf("command is required")
	}
	note, err := s.store.Notes.GetByID(ctx, nil, noteID)
	if err != nil {
		return nil, classify(err, "voice command")
	}

	answer, err := s.assistant.Answer(ctx, command, note.Transcript)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return &types.VoiceCommandResult{Success: true, Command: command, Response: answer}, nil
}

// Translate renders a note's summary in the target language. A failed
// translation is returned to the caller, never replaced by a default.
func (s *Service) Translate(ctx context.Context, noteID uint, targetLanguage string) (*types.TranslateResult, error) {
	target := strings.TrimSpace(targetLanguage)
	if target == "" {
		return nil, apperr.BadRequestf("target_language is required")
	}
	note, err := s.store.Notes.GetByID(ctx, nil, noteID)
	if err != nil {
		return nil, classify(err, "translate")
	}
	if note.Summary == nil || strings.TrimSpace(*note.Summary) == "" {
		return nil, apperr.BadRequestf("note %d has no summary to translate", noteID)
	}

	key := translationKey(noteID, *note.Summary, target)
	if s.translations != nil {
		if v, ok := s.translations.Get(key); ok {
			s.log.WithField("note_id", noteID).Debug("translation cache hit")
			return translateResult(noteID, target, v.(string)), nil
		}
	}

	out, err := s.assistant.Translate(ctx, *note.Summary, target)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if s.translations != nil {
		s.translations.Set(key, out, cache.DefaultExpiration)
	}
	return translateResult(noteID, target, out), nil
}

func translationKey(noteID uint, summary, target string) string {
	return fmt.Sprintf("%d\x00%s\x00%s", noteID, strings.ToLower(target), summary)
}

func translateResult(noteID uint, target, translation string) *types.TranslateResult {
	return &types.TranslateResult{Success: true, NoteID: noteID, TargetLanguage: target, Translation: translation}
}
