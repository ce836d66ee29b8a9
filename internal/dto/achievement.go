package dto

import (
	"time"

	"github.com/campusrec/achievement-api/internal/models"
)

// CreateAchievementRequest is the student submission payload.
type CreateAchievementRequest struct {
	Title              string                     `json:"title" validate:"required,min=3,max=200"`
	Description        string                     `json:"description" validate:"required,min=10"`
	Category           models.AchievementCategory `json:"category" validate:"required"`
	EventDate          time.Time                  `json:"event_date" validate:"required"`
	AcademicYear       string                     `json:"academic_year"`
	Semester           *string                    `json:"semester"`
	CertificatePath    *string                    `json:"certificate_path"`
	PhotoPath          *string                    `json:"photo_path"`
	IsGroupAchievement bool                       `json:"is_group_achievement"`
	GroupMembers       *string                    `json:"group_members"`
}

// UpdateAchievementRequest rewrites the student-editable fields of a record
// that is still pending review.
type UpdateAchievementRequest struct {
	Title              string                     `json:"title" validate:"required,min=3,max=200"`
	Description        string                     `json:"description" validate:"required,min=10"`
	Category           models.AchievementCategory `json:"category" validate:"required"`
	EventDate          time.Time                  `json:"event_date" validate:"required"`
	AcademicYear       string                     `json:"academic_year"`
	Semester           *string                    `json:"semester"`
	CertificatePath    *string                    `json:"certificate_path"`
	PhotoPath          *string                    `json:"photo_path"`
	IsGroupAchievement bool                       `json:"is_group_achievement"`
	GroupMembers       *string                    `json:"group_members"`
}

// ReviewAchievementRequest carries the reviewer's decision remarks.
type ReviewAchievementRequest struct {
	Remarks *string `json:"remarks"`
}

// AchievementListResponse wraps a page of achievement details.
type AchievementListResponse struct {
	Items      []models.AchievementDetail `json:"items"`
	Pagination models.Pagination          `json:"pagination"`
}
