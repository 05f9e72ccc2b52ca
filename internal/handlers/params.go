package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"sasamom-server/internal/models"
	"sasamom-server/internal/utils"
)

// optionalDate converts an already validated YYYY-MM-DD string.
func optionalDate(s string) *datatypes.Date {
	t, err := utils.ParseDate(s)
	if err != nil {
		return nil
	}
	d := models.NewDate(t)
	return &d
}

// dateQuery reads ?date=YYYY-MM-DD, defaulting to now. It writes a 400 and
// returns false when the value is malformed.
func dateQuery(c *gin.Context, now func() time.Time) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return utils.DateOf(now()), true
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return time.Time{}, false
	}
	return t, true
}
