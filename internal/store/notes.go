package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"meeting-assistant-go/internal/apperr"
	"meeting-assistant-go/internal/logger"
	"meeting-assistant-go/internal/types"
)

// listColumns is the projection used by list and search.
var listColumns = []string{"id", "filename", "summary", "created_at"}

type NoteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteRepo(db *gorm.DB, log *logger.Logger) *NoteRepo {
	return &NoteRepo{db: db, log: log.Component("store.notes")}
}

func (r *NoteRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *NoteRepo) Create(ctx context.Context, tx *gorm.DB, note *types.Note) error {
	return r.conn(tx).WithContext(ctx).Omit("Tasks").Create(note).Error
}

func (r *NoteRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Note, error) {
	var note types.Note
	err := r.conn(tx).WithContext(ctx).First(&note, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("note %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// List returns notes newest first, without transcripts.
func (r *NoteRepo) List(ctx context.Context, tx *gorm.DB) ([]types.Note, error) {
	var notes []types.Note
	err := r.conn(tx).WithContext(ctx).
		Select(listColumns).
		Order("created_at DESC, id DESC").
		Find(&notes).Error
	return notes, err
}

// All returns every note with all columns, newest first.
func (r *NoteRepo) All(ctx context.Context, tx *gorm.DB) ([]types.Note, error) {
	var notes []types.Note
	err := r.conn(tx).WithContext(ctx).Order("created_at DESC, id DESC").Find(&notes).Error
	return notes, err
}

// Search matches q as a literal substring of the transcript or the summary.
func (r *NoteRepo) Search(ctx context.Context, tx *gorm.DB, q string) ([]types.Note, error) {
	pattern := "%" + escapeLike(q) + "%"
	var notes []types.Note
	err := r.conn(tx).WithContext(ctx).
		Select(listColumns).
		Where(`transcript LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&notes).Error
	return notes, err
}

func (r *NoteRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := r.conn(tx).WithContext(ctx).Delete(&types.Note{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("note %d not found", id)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
