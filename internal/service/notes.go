package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"meeting-assistant-go/internal/apperr"
	"meeting-assistant-go/internal/types"
)

// MinSearchLength is the shortest accepted search query, in characters.
const MinSearchLength = 2

func (s *Service) ListNotes(ctx context.Context) ([]types.NoteListItem, error) {
	notes, err := s.store.Notes.List(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(fmt.Errorf("list notes: %w", err))
	}
	return listItems(notes), nil
}

func (s *Service) GetNote(ctx context.Context, id uint) (*types.NoteDetail, error) {
	note, err := s.store.Notes.GetByID(ctx, nil, id)
	if err != nil {
		return nil, classify(err, "get note")
	}
	d := note.Detail()
	return &d, nil
}

// DeleteNote removes a note and all of its tasks.
func (s *Service) DeleteNote(ctx context.Context, id uint) (*types.DeleteResult, error) {
	if err := s.store.DeleteNote(ctx, id); err != nil {
		return nil, classify(err, "delete note")
	}
	s.log.WithField("note_id", id).Info("note deleted")
	return &types.DeleteResult{
		Success: true,
		NoteID:  id,
		Message: fmt.Sprintf("Note %d deleted", id),
	}, nil
}

// Search finds notes whose transcript or summary contains q.
func (s *Service) Search(ctx context.Context, q string) (*types.SearchResult, error) {
	if utf8.RuneCountInString(q) < MinSearchLength {
		return nil, apperr.BadRequestf("query must be at least %d characters", MinSearchLength)
	}
	notes, err := s.store.Notes.Search(ctx, nil, q)
	if err != nil {
		return nil, apperr.Wrap(fmt.Errorf("search notes: %w", err))
	}
	items := listItems(notes)
	return &types.SearchResult{Results: items, Count: len(items)}, nil
}

func listItems(notes []types.Note) []types.NoteListItem {
	items := make([]types.NoteListItem, len(notes))
	for i := range notes {
		items[i] = notes[i].ListItem()
	}
	return items
}

// classify keeps not-found and bad-request errors as they are and marks
// everything else as a server error.
func classify(err error, op string) error {
	if apperr.KindOf(err) != apperr.Internal {
		return err
	}
	return apperr.Wrap(fmt.Errorf("%s: %w", op, err))
}
