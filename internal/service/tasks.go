package service

import (
	"context"
	"fmt"
	"strings"

	"meeting-assistant-go/internal/apperr"
	"meeting-assistant-go/internal/types"
)

// ListTasks returns every task with its note's filename, newest first.
func (s *Service) ListTasks(ctx context.Context) ([]types.TaskItem, error) {
	items, err := s.store.Tasks.ListWithNote(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(fmt.Errorf("list tasks: %w", err))
	}
	if items == nil {
		items = []types.TaskItem{}
	}
	return items, nil
}

// TasksForNote returns the tasks of one note. An unknown note has no tasks.
func (s *Service) TasksForNote(ctx context.Context, noteID uint) ([]types.TaskItem, error) {
	tasks, err := s.store.Tasks.ListByNote(ctx, nil, noteID)
	if err != nil {
		return nil, apperr.Wrap(fmt.Errorf("list tasks for note: %w", err))
	}
	items := make([]types.TaskItem, len(tasks))
	for i := range tasks {
		items[i] = tasks[i].Item()
	}
	return items, nil
}

// ParseTaskStatus accepts pending or completed, case-insensitively.
func ParseTaskStatus(s string) (types.TaskStatus, error) {
	switch st := types.TaskStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case types.TaskPending, types.TaskCompleted:
		return st, nil
	default:
		return "", apperr.BadRequestf("status must be %q or %q", types.TaskPending, types.TaskCompleted)
	}
}

// UpdateTaskStatus sets a task's status. Repeating the same update succeeds.
func (s *Service) UpdateTaskStatus(ctx context.Context, id uint, status string) (*types.TaskStatusResult, error) {
	st, err := ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}
	task, err := s.store.Tasks.UpdateStatus(ctx, nil, id, st)
	if err != nil {
		return nil, classify(err, "update task")
	}
	s.log.WithField("task_id", id).WithField("status", st).Info("task status updated")
	return &types.TaskStatusResult{Success: true, TaskID: task.ID, Status: task.Status}, nil
}
