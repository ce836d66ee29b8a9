package dto

import "github.com/campusrec/achievement-api/internal/models"

// ReportGroupBy selects the aggregation dimension of a report.
type ReportGroupBy string

const (
	GroupByMonthly  ReportGroupBy = "monthly"
	GroupBySemester ReportGroupBy = "semester"
	GroupByClass    ReportGroupBy = "class"
	GroupByDivision ReportGroupBy = "division"
	GroupByBatch    ReportGroupBy = "batch"
)

// Valid reports whether the grouping dimension is known.
func (g ReportGroupBy) Valid() bool {
	switch g {
	case GroupByMonthly, GroupBySemester, GroupByClass, GroupByDivision, GroupByBatch:
		return true
	}
	return false
}

// ReportRequest captures the report query parameters. Statuses defaults to
// SUBMITTED and VERIFIED when empty.
type ReportRequest struct {
	GroupBy             ReportGroupBy
	Statuses            []models.AchievementStatus
	Category            models.AchievementCategory
	AcademicYear        string
	ProgramID           string
	AcademicStructureID string
	DivisionID          string
	BatchID             string
}

// ReportGroup is one aggregation bucket with its member records.
type ReportGroup struct {
	Key   string                     `json:"key"`
	Count int                        `json:"count"`
	Items []models.AchievementDetail `json:"items"`
}

// ReportResponse is the aggregated report payload.
type ReportResponse struct {
	GroupBy ReportGroupBy `json:"group_by"`
	Total   int           `json:"total"`
	Groups  []ReportGroup `json:"groups"`
}
