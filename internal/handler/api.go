package handler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"discernment-trainer/internal/catalog"
	"discernment-trainer/internal/models"
	"discernment-trainer/internal/recorder"
	"discernment-trainer/internal/scoring"
	"discernment-trainer/internal/service"
	"discernment-trainer/internal/training"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	trainer *service.Trainer
	logger  *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(trainer *service.Trainer, logger *zap.Logger) *Handler {
	return &Handler{
		trainer: trainer,
		logger:  logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		// Phase flow
		api.POST("/session/start", h.Start)
		api.POST("/session/advance", h.Advance)
		api.POST("/session/restart", h.Restart)
		api.GET("/session", h.GetSnapshot)
		api.GET("/session/phase", h.GetPhase)

		// Exposure
		api.POST("/exposure/next", h.NextExposure)
		api.POST("/exposure/visible", h.MarkVisible)
		api.POST("/exposure/interactions", h.RecordInteraction)

		// Training
		api.POST("/training/submit", h.SubmitTactics)
		api.POST("/training/timeout", h.TimeoutTraining)

		// Test
		api.POST("/test/visible", h.MarkVisible)
		api.POST("/test/answers", h.RecordAnswer)

		// Results and content
		api.GET("/report", h.GetReport)
		api.GET("/catalog/:set", h.GetCatalogSlice)
		api.GET("/tactics", h.GetTactics)

		// Export
		api.GET("/export/csv", h.ExportCSV)
		api.GET("/export/json", h.ExportJSON)
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}

// bindOptional binds a JSON body that may be absent
func bindOptional(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *Handler) at(ms *int64) time.Time {
	if ms == nil {
		return h.trainer.Now()
	}
	return time.UnixMilli(*ms)
}

// fail maps domain errors to status codes
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrPhaseMismatch),
		errors.Is(err, recorder.ErrAlreadyRecorded),
		errors.Is(err, recorder.ErrOutOfOrder),
		errors.Is(err, training.ErrDrillComplete):
		status = http.StatusConflict
	case errors.Is(err, catalog.ErrUnknownSet):
		status = http.StatusNotFound
	case errors.Is(err, recorder.ErrUnknownNotification),
		errors.Is(err, training.ErrEmptySelection),
		errors.Is(err, scoring.ErrInvalidDecision),
		errors.Is(err, scoring.ErrConfidenceRange):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) phaseResponse(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"phase":      h.trainer.Phase(),
		"session_id": h.trainer.SessionID(),
	})
}

// Start leaves the landing screen
func (h *Handler) Start(c *gin.Context) {
	h.trainer.Start()
	h.phaseResponse(c)
}

// Advance continues from the exposure debrief
func (h *Handler) Advance(c *gin.Context) {
	h.trainer.Advance()
	h.phaseResponse(c)
}

// Restart clears the session
func (h *Handler) Restart(c *gin.Context) {
	h.trainer.Restart()
	h.phaseResponse(c)
}

// GetPhase returns the current phase
func (h *Handler) GetPhase(c *gin.Context) {
	h.phaseResponse(c)
}

// GetSnapshot returns the full session state
func (h *Handler) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.trainer.Snapshot())
}

// NextExposure surfaces the next exposure notification
func (h *Handler) NextExposure(c *gin.Context) {
	var req models.TimestampRequest
	if err := bindOptional(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.trainer.NextExposure(h.at(req.TimestampMs))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// MarkVisible reports when an exposure or test item appeared
func (h *Handler) MarkVisible(c *gin.Context) {
	var req models.VisibleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.trainer.MarkVisible(req.NotificationID, h.at(req.TimestampMs)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification_id": req.NotificationID})
}

// RecordInteraction records an open or ignore on an exposure notification
func (h *Handler) RecordInteraction(c *gin.Context) {
	var req models.InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	action, err := models.ParseAction(req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.trainer.RecordInteraction(req.NotificationID, action, h.at(req.TimestampMs))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"interaction": rec,
		"phase":       h.trainer.Phase(),
	})
}

// SubmitTactics checks the tactics spotted in the current training item
func (h *Handler) SubmitTactics(c *gin.Context) {
	var req models.TacticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	selected := make([]models.Tactic, 0, len(req.Tactics))
	for _, raw := range req.Tactics {
		t, err := models.ParseTactic(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		selected = append(selected, t)
	}

	fb, err := h.trainer.SubmitTactics(selected, h.at(req.TimestampMs))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": fb,
		"phase":    h.trainer.Phase(),
	})
}

// TimeoutTraining ends the current training round as a miss
func (h *Handler) TimeoutTraining(c *gin.Context) {
	var req models.TimestampRequest
	if err := bindOptional(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fb, err := h.trainer.TimeoutTraining(h.at(req.TimestampMs))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": fb,
		"phase":    h.trainer.Phase(),
	})
}

// RecordAnswer scores a verdict on the current test item
func (h *Handler) RecordAnswer(c *gin.Context) {
	var req models.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decision, err := scoring.ParseDecision(req.Decision)
	if err != nil {
		h.fail(c, err)
		return
	}

	answer, err := h.trainer.RecordAnswer(
		req.NotificationID,
		decision,
		*req.ConfidencePercent,
		strings.TrimSpace(req.ReasoningText),
		h.at(req.TimestampMs),
	)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer": answer,
		"phase":  h.trainer.Phase(),
	})
}

// GetReport returns the score report
func (h *Handler) GetReport(c *gin.Context) {
	c.JSON(http.StatusOK, h.trainer.Report())
}

// GetCatalogSlice returns the notifications of one catalog set
func (h *Handler) GetCatalogSlice(c *gin.Context) {
	set, err := catalog.ParseSet(c.Param("set"))
	if err != nil {
		h.fail(c, err)
		return
	}

	items, err := h.trainer.CatalogSlice(set)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"set":           set,
		"notifications": items,
		"total":         len(items),
	})
}

// GetTactics returns the tactic legend
func (h *Handler) GetTactics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tactics": h.trainer.Tactics()})
}

// ExportCSV exports the test answers to CSV
func (h *Handler) ExportCSV(c *gin.Context) {
	snap := h.trainer.Snapshot()

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=results-%s.csv", snap.SessionID))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"notification_id", "decision", "confidence_percent", "is_correct", "time_taken_ms", "reasoning_text"})

	// Write data
	for _, a := range snap.State.Answers {
		writer.Write([]string{
			a.NotificationID,
			string(a.Decision),
			fmt.Sprintf("%d", a.ConfidencePercent),
			fmt.Sprintf("%t", a.IsCorrect),
			fmt.Sprintf("%d", a.TimeTakenMs),
			a.ReasoningText,
		})
	}
}

// ExportJSON exports the session and its report to JSON
func (h *Handler) ExportJSON(c *gin.Context) {
	snap := h.trainer.Snapshot()

	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=results-%s.json", snap.SessionID))

	encoder := json.NewEncoder(c.Writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(gin.H{
		"session_id": snap.SessionID,
		"state":      snap.State,
		"report":     h.trainer.Report(),
	}); err != nil {
		h.logger.Error("Failed to export JSON", zap.Error(err))
	}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "discernment-trainer",
		"version": "1.0.0",
	})
}
