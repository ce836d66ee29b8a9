package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusrec/achievement-api/internal/authz"
	"github.com/campusrec/achievement-api/internal/dto"
	"github.com/campusrec/achievement-api/internal/models"
	appErrors "github.com/campusrec/achievement-api/pkg/errors"
	"github.com/campusrec/achievement-api/pkg/response"
)

type achievementService interface {
	Create(ctx context.Context, p authz.Principal, req dto.CreateAchievementRequest) (*models.Achievement, error)
	ListMine(ctx context.Context, p authz.Principal, filter models.AchievementFilter) ([]models.AchievementDetail, models.Pagination, error)
	ListScoped(ctx context.Context, p authz.Principal, filter models.AchievementFilter) ([]models.AchievementDetail, models.Pagination, error)
	Get(ctx context.Context, p authz.Principal, id string) (*models.AchievementDetail, error)
	Update(ctx context.Context, p authz.Principal, id string, req dto.UpdateAchievementRequest) (*models.AchievementDetail, error)
	Delete(ctx context.Context, p authz.Principal, id string) error
	Verify(ctx context.Context, p authz.Principal, id string, req dto.ReviewAchievementRequest) (*models.AchievementDetail, error)
	Reject(ctx context.Context, p authz.Principal, id string, req dto.ReviewAchievementRequest) (*models.AchievementDetail, error)
}

// AchievementHandler wires HTTP endpoints to the achievement service.
type AchievementHandler struct {
	service achievementService
}

// NewAchievementHandler creates a new handler.
func NewAchievementHandler(svc achievementService) *AchievementHandler {
	return &AchievementHandler{service: svc}
}

// Create godoc
// @Summary Submit an achievement
// @Tags Achievements
// @Accept json
// @Produce json
// @Param payload body dto.CreateAchievementRequest true "Achievement payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /achievements [post]
func (h *AchievementHandler) Create(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid achievement payload"))
		return
	}

	achievement, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, achievement)
}

// ListMine godoc
// @Summary List own achievements
// @Tags Achievements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /achievements/mine [get]
func (h *AchievementHandler) ListMine(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, pagination, err := h.service.ListMine(c.Request.Context(), p, achievementFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &pagination)
}

// List godoc
// @Summary List achievements within reviewer scope
// @Tags Achievements
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /achievements [get]
func (h *AchievementHandler) List(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, pagination, err := h.service.ListScoped(c.Request.Context(), p, achievementFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &pagination)
}

// Get godoc
// @Summary Get one achievement
// @Tags Achievements
// @Produce json
// @Param id path string true "Achievement ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /achievements/{id} [get]
func (h *AchievementHandler) Get(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Update a pending achievement
// @Tags Achievements
// @Accept json
// @Produce json
// @Param id path string true "Achievement ID"
// @Param payload body dto.UpdateAchievementRequest true "Achievement payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /achievements/{id} [put]
func (h *AchievementHandler) Update(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid achievement payload"))
		return
	}

	detail, err := h.service.Update(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete a pending achievement
// @Tags Achievements
// @Produce json
// @Param id path string true "Achievement ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /achievements/{id} [delete]
func (h *AchievementHandler) Delete(c *gin.Context) {
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

// Verify godoc
// @Summary Verify an achievement
// @Tags Achievements
// @Accept json
// @Produce json
// @Param id path string true "Achievement ID"
// @Param payload body dto.ReviewAchievementRequest false "Review remarks"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /achievements/{id}/verify [post]
func (h *AchievementHandler) Verify(c *gin.Context) {
	h.review(c, h.service.Verify)
}

// Reject godoc
// @Summary Reject an achievement
// @Tags Achievements
// @Accept json
// @Produce json
// @Param id path string true "Achievement ID"
// @Param payload body dto.ReviewAchievementRequest false "Review remarks"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /achievements/{id}/reject [post]
func (h *AchievementHandler) Reject(c *gin.Context) {
	h.review(c, h.service.Reject)
}

func (h *AchievementHandler) review(c *gin.Context, apply func(ctx context.Context, p authz.Principal, id string, req dto.ReviewAchievementRequest) (*models.AchievementDetail, error)) {
	p, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ReviewAchievementRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
			return
		}
	}

	detail, err := apply(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

func achievementFilterFromQuery(c *gin.Context) models.AchievementFilter {
	filter := models.AchievementFilter{
		Category:            models.AchievementCategory(c.Query("category")),
		AcademicYear:        c.Query("academic_year"),
		ProgramID:           c.Query("program_id"),
		AcademicStructureID: c.Query("academic_structure_id"),
		DivisionID:          c.Query("division_id"),
		BatchID:             c.Query("batch_id"),
		Page:                intQuery(c, "page", 1),
		PageSize:            intQuery(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := models.AchievementStatus(strings.TrimSpace(part))
			if status.Valid() {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	return filter
}
