// Package service implements the read, update and command operations over
// stored notes and tasks.
package service

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"meeting-assistant-go/internal/logger"
	"meeting-assistant-go/internal/store"
)

// Assistant is the part of the text-analysis capability that works on stored
// notes rather than fresh uploads.
type Assistant interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
	Answer(ctx context.Context, command, transcript string) (string, error)
}

type Option func(*Service)

// WithTranslationCache keeps translations for ttl. Zero disables the cache.
func WithTranslationCache(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl <= 0 {
			s.translations = nil
			return
		}
		s.translations = cache.New(ttl, 2*ttl)
	}
}

// WithClock sets the source of "today" for stats.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	store        *store.Store
	assistant    Assistant
	translations *cache.Cache
	now          func() time.Time
	log          *logger.Logger
}

func New(st *store.Store, assistant Assistant, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:     st,
		assistant: assistant,
		now:       time.Now,
		log:       log.Component("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
