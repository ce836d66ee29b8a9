package models

import (
	"fmt"
	"time"
)

// AchievementStatus is the record's lifecycle state. Transitions are one-way:
// SUBMITTED → VERIFIED or SUBMITTED → REJECTED, both terminal.
type AchievementStatus string

const (
	StatusSubmitted AchievementStatus = "SUBMITTED"
	StatusVerified  AchievementStatus = "VERIFIED"
	StatusRejected  AchievementStatus = "REJECTED"
)

// Valid reports whether the status is known.
func (s AchievementStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusVerified, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further mutation is permitted.
func (s AchievementStatus) Terminal() bool {
	return s == StatusVerified || s == StatusRejected
}

// AchievementCategory enumerates the fixed competition types.
type AchievementCategory string

const (
	CategoryTechnicalCompetitions AchievementCategory = "TECHNICAL_COMPETITIONS"
	CategoryHackathons            AchievementCategory = "HACKATHONS"
	CategoryInternships           AchievementCategory = "INTERNSHIPS"
	CategoryCertifications        AchievementCategory = "CERTIFICATIONS"
	CategoryResearchPublications  AchievementCategory = "RESEARCH_PUBLICATIONS"
	CategorySportsCultural        AchievementCategory = "SPORTS_CULTURAL"
)

// Valid reports whether the category is known.
func (c AchievementCategory) Valid() bool {
	switch c {
	case CategoryTechnicalCompetitions, CategoryHackathons, CategoryInternships,
		CategoryCertifications, CategoryResearchPublications, CategorySportsCultural:
		return true
	}
	return false
}

// Achievement is the core record being processed. StudentID never changes
// after creation; VerifiedBy/VerifiedAt are set together exactly once on the
// transition out of SUBMITTED.
type Achievement struct {
	ID                 string              `db:"id" json:"id"`
	Title              string              `db:"title" json:"title"`
	Description        string              `db:"description" json:"description"`
	Category           AchievementCategory `db:"category" json:"category"`
	Status             AchievementStatus   `db:"status" json:"status"`
	EventDate          time.Time           `db:"event_date" json:"event_date"`
	AcademicYear       string              `db:"academic_year" json:"academic_year"`
	Semester           *string             `db:"semester" json:"semester,omitempty"`
	CertificatePath    *string             `db:"certificate_path" json:"certificate_path,omitempty"`
	PhotoPath          *string             `db:"photo_path" json:"photo_path,omitempty"`
	IsGroupAchievement bool                `db:"is_group_achievement" json:"is_group_achievement"`
	GroupMembers       *string             `db:"group_members" json:"group_members,omitempty"`
	Remarks            *string             `db:"remarks" json:"remarks,omitempty"`
	StudentID          string              `db:"student_id" json:"student_id"`
	VerifiedBy         *string             `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt         *time.Time          `db:"verified_at" json:"verified_at,omitempty"`
	CreatedAt          time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time           `db:"updated_at" json:"updated_at"`
}

// AchievementDetail joins the owning student's identity and hierarchy names
// for reviewer listings and reports.
type AchievementDetail struct {
	Achievement
	StudentName   string  `db:"student_name" json:"student_name"`
	StudentEmail  string  `db:"student_email" json:"student_email"`
	StudentNumber *string `db:"student_number" json:"student_number,omitempty"`

	StudentDepartmentID        *string `db:"student_department_id" json:"student_department_id,omitempty"`
	StudentProgramID           *string `db:"student_program_id" json:"student_program_id,omitempty"`
	StudentAcademicStructureID *string `db:"student_academic_structure_id" json:"student_academic_structure_id,omitempty"`
	StudentDivisionID          *string `db:"student_division_id" json:"student_division_id,omitempty"`
	StudentBatchID             *string `db:"student_batch_id" json:"student_batch_id,omitempty"`

	DepartmentName        *string `db:"department_name" json:"department_name,omitempty"`
	ProgramName           *string `db:"program_name" json:"program_name,omitempty"`
	AcademicStructureName *string `db:"academic_structure_name" json:"academic_structure_name,omitempty"`
	DivisionName          *string `db:"division_name" json:"division_name,omitempty"`
	BatchName             *string `db:"batch_name" json:"batch_name,omitempty"`
}

// AchievementFilter captures the optional query filters on listings. Scope
// constraints are carried separately by the caller's resolved scope path.
type AchievementFilter struct {
	StudentID           string
	Statuses            []AchievementStatus
	Category            AchievementCategory
	AcademicYear        string
	ProgramID           string
	AcademicStructureID string
	DivisionID          string
	BatchID             string
	Page                int
	PageSize            int
}

// AcademicYearOf derives the "YYYY-YY" academic year label for a date.
// The academic year runs June through May.
func AcademicYearOf(date time.Time) string {
	year := date.Year()
	if int(date.Month()) >= 6 {
		return fmt.Sprintf("%d-%02d", year, (year+1)%100)
	}
	return fmt.Sprintf("%d-%02d", year-1, year%100)
}
