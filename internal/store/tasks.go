package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"meeting-assistant-go/internal/apperr"
	"meeting-assistant-go/internal/logger"
	"meeting-assistant-go/internal/types"
)

type TaskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, log *logger.Logger) *TaskRepo {
	return &TaskRepo{db: db, log: log.Component("store.tasks")}
}

func (r *TaskRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *TaskRepo) CreateBatch(ctx context.Context, tx *gorm.DB, tasks []types.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(&tasks).Error
}

func (r *TaskRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Task, error) {
	var task types.Task
	err := r.conn(tx).WithContext(ctx).First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("task %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

type taskRow struct {
	ID           uint
	NoteID       uint
	Task         string
	Deadline     *string
	Status       types.TaskStatus
	CreatedAt    time.Time
	NoteFilename *string
}

// ListWithNote returns every task with its note's filename, newest first.
func (r *TaskRepo) ListWithNote(ctx context.Context, tx *gorm.DB) ([]types.TaskItem, error) {
	var rows []taskRow
	err := r.conn(tx).WithContext(ctx).
		Table("tasks").
		Select("tasks.id, tasks.note_id, tasks.task, tasks.deadline, tasks.status, tasks.created_at, notes.filename AS note_filename").
		Joins("LEFT JOIN notes ON notes.id = tasks.note_id").
		Order("tasks.created_at DESC, tasks.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]types.TaskItem, len(rows))
	for i, row := range rows {
		items[i] = types.TaskItem{
			ID:           row.ID,
			NoteID:       row.NoteID,
			NoteFilename: row.NoteFilename,
			Task:         row.Task,
			Deadline:     row.Deadline,
			Status:       row.Status,
			CreatedAt:    row.CreatedAt,
		}
	}
	return items, nil
}

// ListByNote returns the tasks of one note in extraction order.
func (r *TaskRepo) ListByNote(ctx context.Context, tx *gorm.DB, noteID uint) ([]types.Task, error) {
	var tasks []types.Task
	err := r.conn(tx).WithContext(ctx).
		Where("note_id = ?", noteID).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

// All returns every task, newest first.
func (r *TaskRepo) All(ctx context.Context, tx *gorm.DB) ([]types.Task, error) {
	var tasks []types.Task
	err := r.conn(tx).WithContext(ctx).Order("created_at DESC, id DESC").Find(&tasks).Error
	return tasks, err
}

// UpdateStatus sets a task's status and returns the updated row. Setting the
// same status twice is not an error.
func (r *TaskRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status types.TaskStatus) (*types.Task, error) {
	task, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := r.conn(tx).WithContext(ctx).Model(task).Update("status", status).Error; err != nil {
		return nil, err
	}
	task.Status = status
	return task, nil
}

func (r *TaskRepo) DeleteByNote(ctx context.Context, tx *gorm.DB, noteID uint) (int64, error) {
	res := r.conn(tx).WithContext(ctx).Where("note_id = ?", noteID).Delete(&types.Task{})
	return res.RowsAffected, res.Error
}
