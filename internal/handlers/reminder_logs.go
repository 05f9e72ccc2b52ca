package handlers

import (
	"github.com/gin-gonic/gin"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/repos"
	"sasamom-server/internal/utils"
)

// ReminderLogHandler exposes the delivery history of reminders.
type ReminderLogHandler struct {
	repos *repos.Repos
	log   *logger.Logger
}

// NewReminderLogHandler creates a new ReminderLogHandler.
func NewReminderLogHandler(r *repos.Repos, baseLog *logger.Logger) *ReminderLogHandler {
	return &ReminderLogHandler{repos: r, log: baseLog.With("handler", "ReminderLogHandler")}
}

// GetRemindersForDose lists every send attempt for a dose, oldest first.
func (h *ReminderLogHandler) GetRemindersForDose(c *gin.Context) {
	entries, err := h.repos.ReminderLogs.ListByDose(c.Request.Context(), nil, c.Param("id"))
	if err != nil {
		writeError(c, h.log, "List reminders", err)
		return
	}
	utils.Success(c, "Reminders retrieved successfully", entries)
}
