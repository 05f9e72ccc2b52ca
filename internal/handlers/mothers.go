package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/models"
	"sasamom-server/internal/repos"
	"sasamom-server/internal/utils"
)

// MotherHandler handles mother and pregnancy requests.
type MotherHandler struct {
	repos *repos.Repos
	log   *logger.Logger
	now   func() time.Time
}

// NewMotherHandler creates a new MotherHandler.
func NewMotherHandler(r *repos.Repos, baseLog *logger.Logger) *MotherHandler {
	return &MotherHandler{repos: r, log: baseLog.With("handler", "MotherHandler"), now: utils.Today}
}

// CreateMotherRequest represents the request body for registering a mother.
type CreateMotherRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Phone    string `json:"phone" binding:"required,msisdn"`
	Language string `json:"language" binding:"omitempty,max=50"`
	Consent  bool   `json:"consent"`
	Hospital string `json:"hospital" binding:"omitempty,max=255"`
}

// CreatePregnancyRequest represents the request body for an antenatal record.
type CreatePregnancyRequest struct {
	DueDate   string `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
	NextVisit string `json:"nextVisit" binding:"omitempty,datetime=2006-01-02"`
}

// MotherDetail is a mother with her derived status and children.
type MotherDetail struct {
	*models.Mother
	Status   models.MotherStatus `json:"status"`
	Children []*models.Child     `json:"children"`
}

// CreateMother registers a mother. Consent defaults to false.
func (h *MotherHandler) CreateMother(c *gin.Context) {
	var req CreateMotherRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	mother := models.Mother{
		Name:     req.Name,
		Phone:    req.Phone,
		Language: req.Language,
		Consent:  req.Consent,
		Hospital: req.Hospital,
	}
	if mother.Language == "" {
		mother.Language = "en"
	}
	if err := h.repos.Mothers.Create(c.Request.Context(), nil, &mother); err != nil {
		writeError(c, h.log, "Create mother", err)
		return
	}
	h.log.Info("Mother registered", "mother_id", mother.ID, "consent", mother.Consent)
	utils.Created(c, "Mother registered successfully", mother)
}

// GetMothers lists all mothers, newest first.
func (h *MotherHandler) GetMothers(c *gin.Context) {
	mothers, err := h.repos.Mothers.List(c.Request.Context(), nil)
	if err != nil {
		writeError(c, h.log, "List mothers", err)
		return
	}
	utils.Success(c, "Mothers retrieved successfully", mothers)
}

// GetMotherByID returns a mother with her current status and children.
func (h *MotherHandler) GetMotherByID(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	mother, err := h.repos.Mothers.GetByID(ctx, nil, id)
	if err != nil {
		writeError(c, h.log, "Get mother", err)
		return
	}
	children, err := h.repos.Children.ListByMother(ctx, nil, id)
	if err != nil {
		writeError(c, h.log, "List children", err)
		return
	}
	latest, err := h.repos.Mothers.LatestPregnancy(ctx, nil, id)
	if err != nil {
		writeError(c, h.log, "Load pregnancy", err)
		return
	}
	utils.Success(c, "Mother retrieved successfully", MotherDetail{
		Mother:   mother,
		Status:   mother.CurrentStatus(len(children) > 0, latest, h.now()),
		Children: children,
	})
}

// DeleteMother removes a mother with her children and their doses.
func (h *MotherHandler) DeleteMother(c *gin.Context) {
	if err := h.repos.Mothers.Delete(c.Request.Context(), nil, c.Param("id")); err != nil {
		writeError(c, h.log, "Delete mother", err)
		return
	}
	utils.Success(c, "Mother deleted successfully", nil)
}

// GetUpcomingVaccinations lists a mother's incomplete doses from today on.
func (h *MotherHandler) GetUpcomingVaccinations(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.repos.Mothers.GetByID(ctx, nil, id); err != nil {
		writeError(c, h.log, "Get mother", err)
		return
	}
	doses, err := h.repos.Doses.ListUpcomingForMother(ctx, nil, id, h.now())
	if err != nil {
		writeError(c, h.log, "List upcoming vaccinations", err)
		return
	}
	utils.Success(c, "Upcoming vaccinations retrieved successfully", doses)
}

// CreatePregnancy records an antenatal visit plan for a mother.
func (h *MotherHandler) CreatePregnancy(c *gin.Context) {
	var req CreatePregnancyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	mother, err := h.repos.Mothers.GetByID(ctx, nil, c.Param("id"))
	if err != nil {
		writeError(c, h.log, "Get mother", err)
		return
	}
	p := models.Pregnancy{MotherID: mother.ID}
	if req.DueDate != "" {
		p.DueDate = optionalDate(req.DueDate)
	}
	if req.NextVisit != "" {
		p.NextVisit = optionalDate(req.NextVisit)
	}
	if err := h.repos.Mothers.CreatePregnancy(ctx, nil, &p); err != nil {
		writeError(c, h.log, "Create pregnancy", err)
		return
	}
	utils.Created(c, "Pregnancy recorded successfully", p)
}
