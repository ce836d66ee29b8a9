package authz

import (
	"fmt"

	"github.com/campusrec/achievement-api/internal/models"
)

// ScopePath is the ordered optional hierarchy path
// (department > program > academic structure > division > batch).
//
// Used in two roles: a reviewer's assignment scope, and a student's
// membership location. A nil level on an assignment means "no restriction at
// that level"; a nil level on a membership means the student is simply not
// placed there. The same value object backs both the list-time SQL filter
// and the point-action check so the two can never disagree.
type ScopePath struct {
	DepartmentID        *string
	ProgramID           *string
	AcademicStructureID *string
	DivisionID          *string
	BatchID             *string
}

// AssignmentScope builds the reviewer scope from a user's assignment refs.
func AssignmentScope(u *models.User) ScopePath {
	return ScopePath{
		DepartmentID:        u.AssignedDepartmentID,
		ProgramID:           u.AssignedProgramID,
		AcademicStructureID: u.AssignedAcademicStructureID,
		DivisionID:          u.AssignedDivisionID,
		BatchID:             u.AssignedBatchID,
	}
}

// MembershipPath builds the student location from a user's membership refs.
func MembershipPath(u *models.User) ScopePath {
	return ScopePath{
		DepartmentID:        u.DepartmentID,
		ProgramID:           u.ProgramID,
		AcademicStructureID: u.AcademicStructureID,
		DivisionID:          u.DivisionID,
		BatchID:             u.BatchID,
	}
}

// IsUnrestricted reports whether no level constrains the scope.
func (s ScopePath) IsUnrestricted() bool {
	return s.DepartmentID == nil && s.ProgramID == nil && s.AcademicStructureID == nil &&
		s.DivisionID == nil && s.BatchID == nil
}

// Matches evaluates the conjunctive scope predicate against a student's
// membership path: every set assignment level must equal the student's
// corresponding membership value. A nil membership value never satisfies a
// set assignment level.
func (s ScopePath) Matches(member ScopePath) bool {
	for _, level := range []struct {
		assigned *string
		actual   *string
	}{
		{s.DepartmentID, member.DepartmentID},
		{s.ProgramID, member.ProgramID},
		{s.AcademicStructureID, member.AcademicStructureID},
		{s.DivisionID, member.DivisionID},
		{s.BatchID, member.BatchID},
	} {
		if level.assigned == nil {
			continue
		}
		if level.actual == nil || *level.actual != *level.assigned {
			return false
		}
	}
	return true
}

// Conditions renders the scope as SQL equality conditions over the owning
// student's membership columns, using the given table alias prefix (e.g.
// "u."). Argument placeholders continue from argOffset. The emitted
// conjunction is exactly the predicate Matches evaluates in memory.
func (s ScopePath) Conditions(prefix string, argOffset int) ([]string, []interface{}) {
	conditions := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)

	for _, level := range []struct {
		column string
		value  *string
	}{
		{"department_id", s.DepartmentID},
		{"program_id", s.ProgramID},
		{"academic_structure_id", s.AcademicStructureID},
		{"division_id", s.DivisionID},
		{"batch_id", s.BatchID},
	} {
		if level.value == nil {
			continue
		}
		args = append(args, *level.value)
		conditions = append(conditions, fmt.Sprintf("%s%s = $%d", prefix, level.column, argOffset+len(args)))
	}
	return conditions, args
}
