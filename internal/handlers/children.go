package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/models"
	"sasamom-server/internal/repos"
	"sasamom-server/internal/scheduling"
	"sasamom-server/internal/utils"
)

// ChildScheduler generates the vaccination schedule of one child.
type ChildScheduler interface {
	ScheduleChild(ctx context.Context, childID string, today time.Time) (*scheduling.Result, error)
}

// ChildHandler handles child registration and per-child schedules.
type ChildHandler struct {
	repos     *repos.Repos
	scheduler ChildScheduler
	log       *logger.Logger
	now       func() time.Time
}

// NewChildHandler creates a new ChildHandler.
func NewChildHandler(r *repos.Repos, scheduler ChildScheduler, baseLog *logger.Logger) *ChildHandler {
	return &ChildHandler{
		repos:     r,
		scheduler: scheduler,
		log:       baseLog.With("handler", "ChildHandler"),
		now:       utils.Today,
	}
}

// CreateChildRequest represents the request body for registering a child.
type CreateChildRequest struct {
	MotherID    string `json:"motherId" binding:"required"`
	Name        string `json:"name" binding:"omitempty,max=255"`
	DateOfBirth string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender" binding:"omitempty,oneof=Male Female"`
}

// ChildCreated is the child together with the doses created for it. When
// scheduling fails the child is still registered and ScheduleError says why;
// POST /children/:id/schedule retries it.
type ChildCreated struct {
	Child         *models.Child      `json:"child"`
	Schedule      *scheduling.Result `json:"schedule"`
	ScheduleError string             `json:"scheduleError,omitempty"`
}

// ChildDetail splits a child's doses the way clinic staff read them.
type ChildDetail struct {
	Child     *models.Child           `json:"child"`
	Upcoming  []*models.ScheduledDose `json:"upcoming"`
	Completed []*models.ScheduledDose `json:"completed"`
}

// CreateChild registers a child and generates its vaccination schedule.
func (h *ChildHandler) CreateChild(c *gin.Context) {
	var req CreateChildRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	mother, err := h.repos.Mothers.GetByID(ctx, nil, req.MotherID)
	if err != nil {
		writeError(c, h.log, "Get mother", err)
		return
	}

	child := models.Child{MotherID: mother.ID, Name: req.Name, Gender: models.Gender(req.Gender)}
	if child.Gender == "" {
		child.Gender = models.GenderFemale
	}
	if req.DateOfBirth != "" {
		child.DateOfBirth = optionalDate(req.DateOfBirth)
	}
	if err := h.repos.Children.Create(ctx, nil, &child); err != nil {
		writeError(c, h.log, "Create child", err)
		return
	}

	out := ChildCreated{Child: &child}
	res, err := h.scheduler.ScheduleChild(ctx, child.ID, h.now())
	if err != nil {
		h.log.Error("Child registered without schedule", "child_id", child.ID, "mother_id", mother.ID, "error", err)
		out.ScheduleError = err.Error()
		utils.Created(c, "Child registered; scheduling failed", out)
		return
	}
	out.Schedule = res
	h.log.Info("Child registered", "child_id", child.ID, "mother_id", mother.ID, "doses_created", res.Created)
	utils.Created(c, "Child registered successfully", out)
}

// GetChildByID returns a child with upcoming and completed doses.
func (h *ChildHandler) GetChildByID(c *gin.Context) {
	ctx := c.Request.Context()
	child, err := h.repos.Children.GetByID(ctx, nil, c.Param("id"))
	if err != nil {
		writeError(c, h.log, "Get child", err)
		return
	}
	doses, err := h.repos.Doses.ListByChild(ctx, nil, child.ID)
	if err != nil {
		writeError(c, h.log, "List doses", err)
		return
	}
	detail := ChildDetail{
		Child:     child,
		Upcoming:  []*models.ScheduledDose{},
		Completed: []*models.ScheduledDose{},
	}
	for _, d := range doses {
		if d.Completed {
			detail.Completed = append(detail.Completed, d)
		} else {
			detail.Upcoming = append(detail.Upcoming, d)
		}
	}
	utils.Success(c, "Child retrieved successfully", detail)
}

// ScheduleChild re-runs schedule generation for one child. Safe to repeat.
func (h *ChildHandler) ScheduleChild(c *gin.Context) {
	today, ok := dateQuery(c, h.now)
	if !ok {
		return
	}
	res, err := h.scheduler.ScheduleChild(c.Request.Context(), c.Param("id"), today)
	if err != nil {
		writeError(c, h.log, "Schedule child", err)
		return
	}
	utils.Success(c, "Child scheduled successfully", res)
}
