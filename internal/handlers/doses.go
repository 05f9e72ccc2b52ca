package handlers

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/reports"
	"sasamom-server/internal/repos"
	"sasamom-server/internal/utils"
)

// DoseHandler handles the clinical side of scheduled doses.
type DoseHandler struct {
	repos *repos.Repos
	log   *logger.Logger
	now   func() time.Time
}

// NewDoseHandler creates a new DoseHandler.
func NewDoseHandler(r *repos.Repos, baseLog *logger.Logger) *DoseHandler {
	return &DoseHandler{repos: r, log: baseLog.With("handler", "DoseHandler"), now: time.Now}
}

// CompleteDoseRequest is optional; an empty body completes the dose now.
type CompleteDoseRequest struct {
	CompletedAt string `json:"completedAt" binding:"omitempty,datetime=2006-01-02"`
}

// CompleteDose records that a dose was administered.
func (h *DoseHandler) CompleteDose(c *gin.Context) {
	var req CompleteDoseRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequest(c, "Invalid request payload: "+utils.FormatValidationError(err))
		return
	}
	at := h.now().UTC()
	if req.CompletedAt != "" {
		t, err := utils.ParseDate(req.CompletedAt)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		at = t
	}
	dose, err := h.repos.Doses.MarkCompleted(c.Request.Context(), nil, c.Param("id"), at)
	if err != nil {
		writeError(c, h.log, "Complete dose", err)
		return
	}
	utils.Success(c, "Dose marked as completed", dose)
}

// GetReport returns every dose with its reminder state and due-now flag.
func (h *DoseHandler) GetReport(c *gin.Context) {
	today, ok := dateQuery(c, h.now)
	if !ok {
		return
	}
	report, err := reports.BuildSchedule(c.Request.Context(), h.repos.Doses, today)
	if err != nil {
		writeError(c, h.log, "Build report", err)
		return
	}
	utils.Success(c, "Schedule report generated", report)
}
