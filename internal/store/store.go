package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"meeting-assistant-go/internal/logger"
	"meeting-assistant-go/internal/types"
)

// Store groups the repositories and the operations that span both tables.
type Store struct {
	db    *gorm.DB
	log   *logger.Logger
	Notes *NoteRepo
	Tasks *TaskRepo
}

func New(db *gorm.DB, log *logger.Logger) *Store {
	return &Store{
		db:    db,
		log:   log.Component("store"),
		Notes: NewNoteRepo(db, log),
		Tasks: NewTaskRepo(db, log),
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

// CreateNoteWithTasks inserts the note and its tasks in one transaction. On
// success note.ID and the task IDs are set and every task points at the note.
func (s *Store) CreateNoteWithTasks(ctx context.Context, note *types.Note, tasks []types.Task) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Notes.Create(ctx, tx, note); err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		for i := range tasks {
			tasks[i].NoteID = note.ID
			if tasks[i].Status == "" {
				tasks[i].Status = types.TaskPending
			}
		}
		if err := s.Tasks.CreateBatch(ctx, tx, tasks); err != nil {
			return fmt.Errorf("insert tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithField("note_id", note.ID).WithField("tasks", len(tasks)).Debug("note persisted")
	return nil
}

// DeleteNote removes a note and its tasks. Tasks are deleted explicitly so the
// cascade holds even where foreign keys are not enforced.
func (s *Store) DeleteNote(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Notes.GetByID(ctx, tx, id); err != nil {
			return err
		}
		if _, err := s.Tasks.DeleteByNote(ctx, tx, id); err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		return s.Notes.Delete(ctx, tx, id)
	})
}
