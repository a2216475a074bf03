// Package api exposes the pipeline and the note/task operations over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meeting-assistant-go/internal/logger"
)

type RouterConfig struct {
	Handler     *Handler
	Log         *logger.Logger
	CORSOrigins []string
	UploadDir   string
	Metrics     http.Handler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(cfg.Log.Component("http")))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(CORS(cfg.CORSOrigins))
	}

	h := cfg.Handler
	router.GET("/healthz", h.Health)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}
	if cfg.UploadDir != "" {
		router.Static("/uploads", cfg.UploadDir)
	}

	// Pipeline
	router.POST("/transcribe", h.Transcribe)

	// Notes
	router.GET("/notes", h.ListNotes)
	router.GET("/notes/:id", h.GetNote)
	router.DELETE("/notes/:id", h.DeleteNote)
	router.GET("/search", h.Search)

	// Tasks
	router.GET("/tasks", h.ListTasks)
	router.GET("/tasks/note/:note_id", h.TasksForNote)
	router.PATCH("/tasks/:task_id", h.UpdateTaskStatus)

	// Commands
	router.POST("/voice-command", h.VoiceCommand)
	router.POST("/translate", h.Translate)

	// Reporting
	router.GET("/stats", h.Stats)
	router.GET("/export/xlsx", h.ExportXLSX)

	router.NoRoute(func(c *gin.Context) {
		respondStatus(c, http.StatusNotFound, "not_found", errRouteNotFound)
	})
	return router
}
