// Package authz centralizes every access-control decision: which role may
// perform which action, and which achievements a reviewer's hierarchy scope
// reaches. Handlers build a Principal from verified JWT claims and thread it
// explicitly into services; nothing reads authorization state off ambient
// request context.
package authz

import "github.com/campusrec/achievement-api/internal/models"

// Principal identifies the authenticated actor of a request.
type Principal struct {
	UserID string
	Role   models.UserRole
}

// Action enumerates the access-controlled operations.
type Action string

const (
	ActionManageHierarchy    Action = "hierarchy:manage"
	ActionManageUsers        Action = "users:manage"
	ActionSubmitAchievement  Action = "achievements:submit"
	ActionReviewAchievements Action = "achievements:review"
	ActionViewReports        Action = "reports:view"
	ActionUploadAttachment   Action = "attachments:upload"
	ActionViewMetrics        Action = "metrics:view"
)

// Allowed is the pure role → action authorization function. Every switch is
// exhaustive over the closed role set; an unknown role is denied.
func Allowed(role models.UserRole, action Action) bool {
	switch action {
	case ActionManageHierarchy, ActionManageUsers, ActionViewMetrics:
		switch role {
		case models.RoleAdmin:
			return true
		case models.RoleHOD, models.RoleClassAdvisor, models.RoleStudent:
			return false
		}
	case ActionSubmitAchievement, ActionUploadAttachment:
		switch role {
		case models.RoleStudent:
			return true
		case models.RoleAdmin, models.RoleHOD, models.RoleClassAdvisor:
			return false
		}
	case ActionReviewAchievements, ActionViewReports:
		switch role {
		case models.RoleAdmin, models.RoleHOD, models.RoleClassAdvisor:
			return true
		case models.RoleStudent:
			return false
		}
	}
	return false
}

// CanReadAchievement decides whether the principal may see one achievement,
// given the owning student's membership path and the reviewer's resolved
// scope. Admins see everything; students see only their own records;
// reviewers see records whose owner falls inside their assigned scope.
// submittedGlobal widens HOD visibility to any SUBMITTED record (a
// configurable product policy).
func CanReadAchievement(p Principal, scope ScopePath, ownerID string, member ScopePath, status models.AchievementStatus, submittedGlobal bool) bool {
	switch p.Role {
	case models.RoleAdmin:
		return true
	case models.RoleStudent:
		return p.UserID == ownerID
	case models.RoleHOD:
		if submittedGlobal && status == models.StatusSubmitted {
			return true
		}
		return scope.Matches(member)
	case models.RoleClassAdvisor:
		return scope.Matches(member)
	}
	return false
}

// CanVerifyAchievement decides whether the principal may transition one
// achievement out of SUBMITTED. Identical scope predicate as reads; students
// are never reviewers.
func CanVerifyAchievement(p Principal, scope ScopePath, member ScopePath, status models.AchievementStatus, submittedGlobal bool) bool {
	switch p.Role {
	case models.RoleAdmin:
		return true
	case models.RoleStudent:
		return false
	case models.RoleHOD:
		if submittedGlobal && status == models.StatusSubmitted {
			return true
		}
		return scope.Matches(member)
	case models.RoleClassAdvisor:
		return scope.Matches(member)
	}
	return false
}
