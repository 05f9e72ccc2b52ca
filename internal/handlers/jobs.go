package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"sasamom-server/internal/jobs"
	"sasamom-server/internal/logger"
	"sasamom-server/internal/utils"
)

// JobHandler exposes the batch jobs for manual runs.
type JobHandler struct {
	runner *jobs.Runner
	log    *logger.Logger
	now    func() time.Time
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(runner *jobs.Runner, baseLog *logger.Logger) *JobHandler {
	return &JobHandler{runner: runner, log: baseLog.With("handler", "JobHandler"), now: utils.Today}
}

// RunSchedule schedules every child as of ?date (default today).
func (h *JobHandler) RunSchedule(c *gin.Context) {
	today, ok := dateQuery(c, h.now)
	if !ok {
		return
	}
	res, err := h.runner.Schedule(c.Request.Context(), today)
	if err != nil {
		writeError(c, h.log, "Schedule job", err)
		return
	}
	utils.Success(c, "Schedule job finished", res)
}

// RunReminders runs the reminder sweep for ?date (default today).
func (h *JobHandler) RunReminders(c *gin.Context) {
	today, ok := dateQuery(c, h.now)
	if !ok {
		return
	}
	res, err := h.runner.Remind(c.Request.Context(), today)
	if err != nil {
		writeError(c, h.log, "Reminder job", err)
		return
	}
	utils.Success(c, "Reminder job finished", res)
}
