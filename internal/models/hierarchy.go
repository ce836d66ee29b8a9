package models

import "time"

// The organizational hierarchy is a strict containment chain:
// Batch ⊂ Division ⊂ AcademicStructure ⊂ Program ⊂ Department.
// Admin-managed reference data; read by scope filtering everywhere else.

// Department is the root of the hierarchy.
type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProgramType enumerates degree types.
type ProgramType string

const (
	ProgramUG  ProgramType = "UG"
	ProgramPG  ProgramType = "PG"
	ProgramPHD ProgramType = "PHD"
)

// Valid reports whether the program type is known.
func (t ProgramType) Valid() bool {
	switch t {
	case ProgramUG, ProgramPG, ProgramPHD:
		return true
	}
	return false
}

// Program belongs to exactly one department.
type Program struct {
	ID           string      `db:"id" json:"id"`
	Name         string      `db:"name" json:"name"`
	Code         string      `db:"code" json:"code"`
	Type         ProgramType `db:"type" json:"type"`
	DepartmentID string      `db:"department_id" json:"department_id"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// AcademicStructure is a year/level inside a program. Semester is required
// iff IsSemester is set. Code is unique per (department, program).
type AcademicStructure struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Code         string    `db:"code" json:"code"`
	Level        int       `db:"level" json:"level"`
	IsSemester   bool      `db:"is_semester" json:"is_semester"`
	Semester     *int      `db:"semester" json:"semester,omitempty"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	ProgramID    string    `db:"program_id" json:"program_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Division is a section within an academic structure.
type Division struct {
	ID                  string    `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	Code                string    `db:"code" json:"code"`
	AcademicStructureID string    `db:"academic_structure_id" json:"academic_structure_id"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// Batch is the leaf grouping inside a division.
type Batch struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Number     int       `db:"number" json:"number"`
	DivisionID string    `db:"division_id" json:"division_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ProgramFilter narrows program listings.
type ProgramFilter struct {
	DepartmentID string
}

// AcademicStructureFilter narrows structure listings.
type AcademicStructureFilter struct {
	DepartmentID string
	ProgramID    string
}

// DivisionFilter narrows division listings.
type DivisionFilter struct {
	AcademicStructureID string
}

// BatchFilter narrows batch listings.
type BatchFilter struct {
	DivisionID string
}
