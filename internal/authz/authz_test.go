package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusrec/achievement-api/internal/models"
)

func TestAllowedRoleActionMatrix(t *testing.T) {
	cases := []struct {
		role   models.UserRole
		action Action
		want   bool
	}{
		{models.RoleAdmin, ActionManageHierarchy, true},
		{models.RoleAdmin, ActionManageUsers, true},
		{models.RoleAdmin, ActionReviewAchievements, true},
		{models.RoleAdmin, ActionSubmitAchievement, false},
		{models.RoleHOD, ActionReviewAchievements, true},
		{models.RoleHOD, ActionViewReports, true},
		{models.RoleHOD, ActionManageHierarchy, false},
		{models.RoleClassAdvisor, ActionReviewAchievements, true},
		{models.RoleClassAdvisor, ActionManageUsers, false},
		{models.RoleStudent, ActionSubmitAchievement, true},
		{models.RoleStudent, ActionUploadAttachment, true},
		{models.RoleStudent, ActionReviewAchievements, false},
		{models.RoleStudent, ActionViewReports, false},
		{models.UserRole("GHOST"), ActionReviewAchievements, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Allowed(tc.role, tc.action), "role=%s action=%s", tc.role, tc.action)
	}
}

func TestCanReadAchievementOwnership(t *testing.T) {
	student := Principal{UserID: "s1", Role: models.RoleStudent}

	assert.True(t, CanReadAchievement(student, ScopePath{}, "s1", ScopePath{}, models.StatusSubmitted, false))
	assert.False(t, CanReadAchievement(student, ScopePath{}, "s2", ScopePath{}, models.StatusSubmitted, false))
}

func TestCanVerifyAchievementScope(t *testing.T) {
	advisor := Principal{UserID: "a1", Role: models.RoleClassAdvisor}
	scope := ScopePath{DepartmentID: strPtr("d1")}

	inScope := ScopePath{DepartmentID: strPtr("d1")}
	outOfScope := ScopePath{DepartmentID: strPtr("d2")}

	assert.True(t, CanVerifyAchievement(advisor, scope, inScope, models.StatusSubmitted, false))
	assert.False(t, CanVerifyAchievement(advisor, scope, outOfScope, models.StatusSubmitted, false))

	// zero assignment fields means fully open scope
	assert.True(t, CanVerifyAchievement(advisor, ScopePath{}, outOfScope, models.StatusSubmitted, false))

	// students never verify, admins always may
	assert.False(t, CanVerifyAchievement(Principal{UserID: "s1", Role: models.RoleStudent}, ScopePath{}, inScope, models.StatusSubmitted, false))
	assert.True(t, CanVerifyAchievement(Principal{UserID: "adm", Role: models.RoleAdmin}, ScopePath{}, outOfScope, models.StatusSubmitted, false))
}

func TestHODSubmittedGlobalPolicy(t *testing.T) {
	hod := Principal{UserID: "h1", Role: models.RoleHOD}
	scope := ScopePath{DepartmentID: strPtr("d1")}
	foreign := ScopePath{DepartmentID: strPtr("d2")}

	// department-bounded: foreign submissions invisible
	assert.False(t, CanReadAchievement(hod, scope, "s1", foreign, models.StatusSubmitted, false))

	// submitted-global: SUBMITTED visible anywhere, terminal records stay bounded
	assert.True(t, CanReadAchievement(hod, scope, "s1", foreign, models.StatusSubmitted, true))
	assert.False(t, CanReadAchievement(hod, scope, "s1", foreign, models.StatusVerified, true))
	assert.True(t, CanVerifyAchievement(hod, scope, foreign, models.StatusSubmitted, true))
}
