package dto

import "github.com/campusrec/achievement-api/internal/models"

// CreateUserRequest is the admin payload for provisioning a user. Membership
// refs apply to students, assignment refs to HODs and class advisors; the
// service rejects refs that do not belong to the role.
type CreateUserRequest struct {
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=6"`
	Name      string          `json:"name" validate:"required,min=2"`
	Role      models.UserRole `json:"role" validate:"required"`
	StudentID *string         `json:"student_id"`
	Phone     string          `json:"phone"`

	DepartmentID        *string `json:"department_id"`
	ProgramID           *string `json:"program_id"`
	AcademicStructureID *string `json:"academic_structure_id"`
	DivisionID          *string `json:"division_id"`
	BatchID             *string `json:"batch_id"`

	AssignedDepartmentID        *string `json:"assigned_department_id"`
	AssignedProgramID           *string `json:"assigned_program_id"`
	AssignedAcademicStructureID *string `json:"assigned_academic_structure_id"`
	AssignedDivisionID          *string `json:"assigned_division_id"`
	AssignedBatchID             *string `json:"assigned_batch_id"`
}

// UpdateUserRequest is the admin payload for updating a user.
type UpdateUserRequest struct {
	Email     string          `json:"email" validate:"required,email"`
	Name      string          `json:"name" validate:"required,min=2"`
	Role      models.UserRole `json:"role" validate:"required"`
	StudentID *string         `json:"student_id"`
	Phone     string          `json:"phone"`
	Active    bool            `json:"active"`

	DepartmentID        *string `json:"department_id"`
	ProgramID           *string `json:"program_id"`
	AcademicStructureID *string `json:"academic_structure_id"`
	DivisionID          *string `json:"division_id"`
	BatchID             *string `json:"batch_id"`

	AssignedDepartmentID        *string `json:"assigned_department_id"`
	AssignedProgramID           *string `json:"assigned_program_id"`
	AssignedAcademicStructureID *string `json:"assigned_academic_structure_id"`
	AssignedDivisionID          *string `json:"assigned_division_id"`
	AssignedBatchID             *string `json:"assigned_batch_id"`
}

// UserListResponse wraps a page of users.
type UserListResponse struct {
	Items      []models.User     `json:"items"`
	Pagination models.Pagination `json:"pagination"`
}
