package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/reminders"
	"sasamom-server/internal/repos"
	"sasamom-server/internal/scheduling"
	"sasamom-server/internal/utils"
)

// writeError maps domain errors onto HTTP statuses. Anything unrecognised
// is logged and reported as a 500.
func writeError(c *gin.Context, log *logger.Logger, action string, err error) {
	switch {
	case errors.Is(err, repos.ErrNotFound), errors.Is(err, scheduling.ErrChildNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, repos.ErrVaccinationInUse),
		errors.Is(err, repos.ErrAlreadyCompleted),
		errors.Is(err, gorm.ErrDuplicatedKey):
		utils.Conflict(c, err.Error())
	case errors.Is(err, reminders.ErrGatewayNotConfigured):
		utils.PreconditionFailed(c, err.Error())
	case errors.Is(err, repos.ErrInvalidCompletion):
		utils.BadRequest(c, err.Error())
	default:
		log.Error(action+" failed", "path", c.FullPath(), "error", err)
		utils.InternalServerError(c, action+" failed: "+err.Error())
	}
}
