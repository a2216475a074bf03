package service

import (
	"context"
	"fmt"
	"io"

	"meeting-assistant-go/internal/actionable"
	"meeting-assistant-go/internal/aggregator"
	"meeting-assistant-go/internal/apperr"
	"meeting-assistant-go/internal/report"
)

type Stats struct {
	aggregator.Insight
	Attention actionable.ActionCard `json:"attention"`
}

// Stats aggregates every note and task and picks the attention card.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	notes, err := s.store.Notes.All(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(fmt.Errorf("load notes: %w", err))
	}
	tasks, err := s.store.Tasks.All(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(fmt.Errorf("load tasks: %w", err))
	}
	ins := aggregator.Aggregate(notes, tasks, s.now())
	return &Stats{Insight: ins, Attention: actionable.Generate(ins)}, nil
}

// ExportXLSX writes every note and task to w as a workbook.
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer) error {
	notes, err := s.store.Notes.All(ctx, nil)
	if err != nil {
		return apperr.Wrap(fmt.Errorf("load notes: %w", err))
	}
	tasks, err := s.store.Tasks.ListWithNote(ctx, nil)
	if err != nil {
		return apperr.Wrap(fmt.Errorf("load tasks: %w", err))
	}
	if err := report.Write(w, notes, tasks); err != nil {
		return apperr.Wrap(err)
	}
	return nil
}
