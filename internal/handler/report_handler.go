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

type reportService interface {
	Generate(ctx context.Context, p authz.Principal, req dto.ReportRequest) (*dto.ReportResponse, error)
}

// ReportHandler wires HTTP endpoints to the report service.
type ReportHandler struct {
	service reportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Generate godoc
// @Summary Generate an achievement report
// @Description Aggregate achievements within the reviewer's scope
// @Tags Reports
// @Produce json
// @Param group_by query string false "monthly|semester|class|division|batch"
// @Param status query string false "Comma separated statuses"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/achievements [get]
func (h *ReportHandler) Generate(c *gin.Context) {
	p, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := dto.ReportRequest{
		GroupBy:             dto.ReportGroupBy(c.Query("group_by")),
		Category:            models.AchievementCategory(c.Query("category")),
		AcademicYear:        c.Query("academic_year"),
		ProgramID:           c.Query("program_id"),
		AcademicStructureID: c.Query("academic_structure_id"),
		DivisionID:          c.Query("division_id"),
		BatchID:             c.Query("batch_id"),
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			req.Statuses = append(req.Statuses, models.AchievementStatus(strings.TrimSpace(part)))
		}
	}

	report, err := h.service.Generate(c.Request.Context(), p, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
