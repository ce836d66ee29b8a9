package dto

import "github.com/campusrec/achievement-api/internal/models"

// DepartmentRequest creates or updates a department.
type DepartmentRequest struct {
	Name string `json:"name" validate:"required,min=2"`
	Code string `json:"code" validate:"required,min=2,max=10"`
}

// ProgramRequest creates or updates a program.
type ProgramRequest struct {
	Name         string             `json:"name" validate:"required,min=2"`
	Code         string             `json:"code" validate:"required,min=2,max=10"`
	Type         models.ProgramType `json:"type" validate:"required"`
	DepartmentID string             `json:"department_id" validate:"required"`
}

// AcademicStructureRequest creates or updates an academic structure.
// Semester is required when IsSemester is set.
type AcademicStructureRequest struct {
	Name         string `json:"name" validate:"required,min=2"`
	Code         string `json:"code" validate:"required,min=1,max=10"`
	Level        int    `json:"level" validate:"required,min=1"`
	IsSemester   bool   `json:"is_semester"`
	Semester     *int   `json:"semester"`
	DepartmentID string `json:"department_id" validate:"required"`
	ProgramID    string `json:"program_id" validate:"required"`
}

// DivisionRequest creates or updates a division.
type DivisionRequest struct {
	Name                string `json:"name" validate:"required,min=1"`
	Code                string `json:"code" validate:"required,min=1,max=10"`
	AcademicStructureID string `json:"academic_structure_id" validate:"required"`
}

// BatchRequest creates or updates a batch.
type BatchRequest struct {
	Name       string `json:"name" validate:"required,min=1"`
	Number     int    `json:"number" validate:"required,min=1"`
	DivisionID string `json:"division_id" validate:"required"`
}
