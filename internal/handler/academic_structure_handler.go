package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusrec/achievement-api/internal/dto"
	"github.com/campusrec/achievement-api/internal/models"
	"github.com/campusrec/achievement-api/internal/service"
	appErrors "github.com/campusrec/achievement-api/pkg/errors"
	"github.com/campusrec/achievement-api/pkg/response"
)

// AcademicStructureHandler wires HTTP endpoints to the academic structure service.
type AcademicStructureHandler struct {
	service *service.AcademicStructureService
}

// NewAcademicStructureHandler creates a new handler.
func NewAcademicStructureHandler(svc *service.AcademicStructureService) *AcademicStructureHandler {
	return &AcademicStructureHandler{service: svc}
}

// List godoc
// @Summary List academic structures
// @Tags Hierarchy
// @Produce json
// @Param department_id query string false "Filter by department"
// @Param program_id query string false "Filter by program"
// @Success 200 {object} response.Envelope
// @Router /academic-structures [get]
func (h *AcademicStructureHandler) List(c *gin.Context) {
	filter := models.AcademicStructureFilter{
		DepartmentID: c.Query("department_id"),
		ProgramID:    c.Query("program_id"),
	}
	structures, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, structures, nil)
}

// Get returns one academic structure.
func (h *AcademicStructureHandler) Get(c *gin.Context) {
	structure, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, structure, nil)
}

// Create adds an academic structure.
func (h *AcademicStructureHandler) Create(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.AcademicStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid academic structure payload"))
		return
	}

	structure, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, structure)
}

// Update modifies an academic structure.
func (h *AcademicStructureHandler) Update(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.AcademicStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid academic structure payload"))
		return
	}

	structure, err := h.service.Update(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, structure, nil)
}

// Delete removes an academic structure.
func (h *AcademicStructureHandler) Delete(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
