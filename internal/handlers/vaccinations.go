package handlers

import (
	"github.com/gin-gonic/gin"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/models"
	"sasamom-server/internal/repos"
	"sasamom-server/internal/utils"
)

// VaccinationHandler handles the vaccination catalog.
type VaccinationHandler struct {
	repos *repos.Repos
	log   *logger.Logger
}

// NewVaccinationHandler creates a new VaccinationHandler.
func NewVaccinationHandler(r *repos.Repos, baseLog *logger.Logger) *VaccinationHandler {
	return &VaccinationHandler{repos: r, log: baseLog.With("handler", "VaccinationHandler")}
}

// CreateVaccinationRequest represents the request body for a catalog entry.
type CreateVaccinationRequest struct {
	Name               string `json:"name" binding:"required,max=255"`
	Description        string `json:"description"`
	RecommendedAgeDays int    `json:"recommendedAgeDays" binding:"min=0"`
	DoseOrder          int    `json:"doseOrder" binding:"omitempty,min=1"`
}

// GetVaccinations lists the catalog ordered by dose order.
func (h *VaccinationHandler) GetVaccinations(c *gin.Context) {
	list, err := h.repos.Vaccinations.List(c.Request.Context(), nil)
	if err != nil {
		writeError(c, h.log, "List vaccinations", err)
		return
	}
	utils.Success(c, "Vaccinations retrieved successfully", list)
}

// CreateVaccination adds a catalog entry. Names are unique.
func (h *VaccinationHandler) CreateVaccination(c *gin.Context) {
	var req CreateVaccinationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	v := models.Vaccination{
		Name:               req.Name,
		Description:        req.Description,
		RecommendedAgeDays: req.RecommendedAgeDays,
		DoseOrder:          req.DoseOrder,
	}
	if v.DoseOrder == 0 {
		v.DoseOrder = 1
	}
	if err := h.repos.Vaccinations.Create(c.Request.Context(), nil, &v); err != nil {
		writeError(c, h.log, "Create vaccination", err)
		return
	}
	utils.Created(c, "Vaccination created successfully", v)
}

// DeleteVaccination removes an unreferenced catalog entry; 409 otherwise.
func (h *VaccinationHandler) DeleteVaccination(c *gin.Context) {
	if err := h.repos.Vaccinations.Delete(c.Request.Context(), nil, c.Param("id")); err != nil {
		writeError(c, h.log, "Delete vaccination", err)
		return
	}
	utils.Success(c, "Vaccination deleted successfully", nil)
}
