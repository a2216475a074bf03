package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"meeting-assistant-go/internal/apperr"
	"meeting-assistant-go/internal/report"
	"meeting-assistant-go/internal/service"
	"meeting-assistant-go/internal/types"
)

// Processor runs the upload pipeline for one recording.
type Processor interface {
	Process(ctx context.Context, filename string, r io.Reader) (*types.ProcessResult, error)
}

type Handler struct {
	svc            *service.Service
	pipe           Processor
	maxUploadBytes int64
	now            func() time.Time
}

func NewHandler(svc *service.Service, pipe Processor, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, pipe: pipe, maxUploadBytes: maxUploadBytes, now: time.Now}
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// POST /transcribe
func (h *Handler) Transcribe(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondStatus(c, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		respondError(c, apperr.BadRequestf("multipart field \"file\" is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, apperr.Wrap(fmt.Errorf("open upload: %w", err)))
		return
	}
	defer f.Close()

	requestLog(c).WithField("filename", fh.Filename).WithField("size", fh.Size).Info("upload accepted")
	res, err := h.pipe.Process(c.Request.Context(), fh.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, res)
}

// GET /notes
func (h *Handler) ListNotes(c *gin.Context) {
	notes, err := h.svc.ListNotes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, notes)
}

// GET /notes/:id
func (h *Handler) GetNote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	note, err := h.svc.GetNote(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, note)
}

// DELETE /notes/:id
func (h *Handler) DeleteNote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.DeleteNote(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, res)
}

// GET /search?q=
func (h *Handler) Search(c *gin.Context) {
	res, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, res)
}

// GET /tasks
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.svc.ListTasks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tasks)
}

// GET /tasks/note/:note_id
func (h *Handler) TasksForNote(c *gin.Context) {
	id, ok := pathID(c, "note_id")
	if !ok {
		return
	}
	tasks, err := h.svc.TasksForNote(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tasks)
}

type statusRequest struct {
	Status string `json:"status"`
}

// PATCH /tasks/:task_id
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	id, ok := pathID(c, "task_id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.UpdateTaskStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, res)
}

type voiceCommandRequest struct {
	Command string `json:"command"`
	NoteID  *uint  `json:"note_id"`
}

// POST /voice-command
func (h *Handler) VoiceCommand(c *gin.Context) {
	var req voiceCommandRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.NoteID == nil {
		respondError(c, apperr.BadRequestf("note_id is required"))
		return
	}
	res, err := h.svc.VoiceCommand(c.Request.Context(), *req.NoteID, req.Command)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, res)
}

type translateRequest struct {
	NoteID         *uint  `json:"note_id"`
	TargetLanguage string `json:"target_language"`
}

// POST /translate
func (h *Handler) Translate(c *gin.Context) {
	var req translateRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.NoteID == nil {
		respondError(c, apperr.BadRequestf("note_id is required"))
		return
	}
	res, err := h.svc.Translate(c.Request.Context(), *req.NoteID, req.TargetLanguage)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, res)
}

// GET /stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}

// GET /export/xlsx
func (h *Handler) ExportXLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.ExportXLSX(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(h.now())))
	c.Data(http.StatusOK, report.ContentType, buf.Bytes())
}

func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		respondError(c, apperr.BadRequestf("invalid %s %q", name, raw))
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.BadRequestf("invalid request body: %v", err))
		return false
	}
	return true
}
