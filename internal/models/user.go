package models

import "time"

// UserRole represents the available roles. The set is closed: authorization
// switches over it exhaustively, so adding a role forces every call site to
// be revisited.
type UserRole string

const (
	RoleAdmin        UserRole = "ADMIN"
	RoleHOD          UserRole = "HOD"
	RoleClassAdvisor UserRole = "CLASS_ADVISOR"
	RoleStudent      UserRole = "STUDENT"
)

// Valid reports whether the role is one of the known tags.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleHOD, RoleClassAdvisor, RoleStudent:
		return true
	}
	return false
}

// IsReviewer reports whether the role may transition achievement status.
func (r UserRole) IsReviewer() bool {
	switch r {
	case RoleAdmin, RoleHOD, RoleClassAdvisor:
		return true
	case RoleStudent:
		return false
	}
	return false
}

// User represents an application user stored in the users table.
//
// The two reference groups are independent: membership locates a STUDENT in
// the hierarchy, assignment bounds the subtree a CLASS_ADVISOR or HOD may act
// on. An unset assignment field means no restriction at that level.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	Role         UserRole   `db:"role" json:"role"`
	StudentID    *string    `db:"student_id" json:"student_id,omitempty"`
	Phone        string     `db:"phone" json:"phone"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`

	// membership refs (students)
	DepartmentID        *string `db:"department_id" json:"department_id,omitempty"`
	ProgramID           *string `db:"program_id" json:"program_id,omitempty"`
	AcademicStructureID *string `db:"academic_structure_id" json:"academic_structure_id,omitempty"`
	DivisionID          *string `db:"division_id" json:"division_id,omitempty"`
	BatchID             *string `db:"batch_id" json:"batch_id,omitempty"`

	// assignment refs (reviewers)
	AssignedDepartmentID        *string `db:"assigned_department_id" json:"assigned_department_id,omitempty"`
	AssignedProgramID           *string `db:"assigned_program_id" json:"assigned_program_id,omitempty"`
	AssignedAcademicStructureID *string `db:"assigned_academic_structure_id" json:"assigned_academic_structure_id,omitempty"`
	AssignedDivisionID          *string `db:"assigned_division_id" json:"assigned_division_id,omitempty"`
	AssignedBatchID             *string `db:"assigned_batch_id" json:"assigned_batch_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role         *UserRole
	DepartmentID string
	Active       *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
