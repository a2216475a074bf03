// Package app wires configuration, providers, storage and the HTTP router
// into one runnable server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"meeting-assistant-go/internal/api"
	"meeting-assistant-go/internal/config"
	"meeting-assistant-go/internal/extractor"
	"meeting-assistant-go/internal/llm"
	"meeting-assistant-go/internal/logger"
	"meeting-assistant-go/internal/metrics"
	"meeting-assistant-go/internal/pipeline"
	"meeting-assistant-go/internal/service"
	"meeting-assistant-go/internal/storage"
	"meeting-assistant-go/internal/store"
	"meeting-assistant-go/internal/transcription"
)

type App struct {
	Log     *logger.Logger
	Cfg     config.Config
	DB      *gorm.DB
	Metrics *metrics.Metrics
	Server  *http.Server
}

// New validates cfg, picks the AI provider from the credential and builds
// the server. Nothing is listening until Run.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	kind := llm.Select(cfg.APIKey)
	log.WithField("provider", kind).Info("AI provider selected")
	opts := llm.Options{
		APIKey:            cfg.APIKey,
		OpenAIBaseURL:     cfg.OpenAIBaseURL,
		ChatModel:         cfg.OpenAIChatModel,
		TranscribeModel:   cfg.OpenAITranscribeModel,
		GeminiBaseURL:     cfg.GeminiBaseURL,
		GeminiModel:       cfg.GeminiModel,
		Timeout:           cfg.HTTPTimeout,
		FileActiveTimeout: cfg.FileActiveTimeout,
	}
	openai := llm.NewOpenAI(opts)
	gemini := llm.NewGemini(opts)
	var client llm.Client = gemini
	if kind == llm.KindOpenAI {
		client = openai
	}

	m, err := metrics.New()
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	files, err := storage.NewLocal(cfg.UploadDir, log)
	if err != nil {
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	db, err := store.Open(ctx, store.Options{
		Driver:      cfg.DBDriver,
		SQLitePath:  cfg.SQLitePath,
		DSN:         cfg.DatabaseURL,
		PingRetries: 5,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	st := store.New(db, log)

	tr := transcription.New(kind, openai, gemini, log)
	an := extractor.New(kind, client, log, extractor.WithRecorder(m))
	pipe := pipeline.New(files, tr, an, st, log,
		pipeline.WithTimeout(cfg.PipelineTimeout),
		pipeline.WithRecorder(m),
	)
	svc := service.New(st, an, log, service.WithTranslationCache(cfg.TranslationCacheTTL))

	router := api.NewRouter(api.RouterConfig{
		Handler:     api.NewHandler(svc, pipe, cfg.MaxUploadMB<<20),
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
		UploadDir:   files.Dir(),
		Metrics:     m.Handler(),
	})

	// transcription of long recordings can take minutes
	writeTimeout := cfg.PipelineTimeout + 30*time.Second
	return &App{
		Log:     log,
		Cfg:     cfg,
		DB:      db,
		Metrics: m,
		Server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
			ReadTimeout:       5 * time.Minute,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       120 * time.Second,
		},
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Log.WithField("addr", a.Server.Addr).Info("listening")
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server terminated: %w", err)
	case <-ctx.Done():
	}

	a.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (a *App) Close() {
	if a == nil || a.DB == nil {
		return
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.Log.WithError(err).Warn("close database")
		}
	}
}
