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

// DivisionHandler wires HTTP endpoints to the division service.
type DivisionHandler struct {
	service *service.DivisionService
}

// NewDivisionHandler creates a new handler.
func NewDivisionHandler(svc *service.DivisionService) *DivisionHandler {
	return &DivisionHandler{service: svc}
}

// List godoc
// @Summary List divisions
// @Tags Hierarchy
// @Produce json
// @Param academic_structure_id query string false "Filter by academic structure"
// @Success 200 {object} response.Envelope
// @Router /divisions [get]
func (h *DivisionHandler) List(c *gin.Context) {
	divisions, err := h.service.List(c.Request.Context(), models.DivisionFilter{AcademicStructureID: c.Query("academic_structure_id")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, divisions, nil)
}

// Get returns one division.
func (h *DivisionHandler) Get(c *gin.Context) {
	division, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, division, nil)
}

// Create adds a division.
func (h *DivisionHandler) Create(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.DivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid division payload"))
		return
	}

	division, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, division)
}

// Update modifies a division.
func (h *DivisionHandler) Update(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.DivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid division payload"))
		return
	}

	division, err := h.service.Update(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, division, nil)
}

// Delete removes a division.
func (h *DivisionHandler) Delete(c *gin.Context) {
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
