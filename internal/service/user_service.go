package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusrec/achievement-api/internal/authz"
	"github.com/campusrec/achievement-api/internal/dto"
	"github.com/campusrec/achievement-api/internal/models"
	appErrors "github.com/campusrec/achievement-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, id string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// hierarchyResolver validates that hierarchy references exist and agree with
// their declared parents.
type hierarchyResolver interface {
	FindDepartment(ctx context.Context, id string) (*models.Department, error)
	FindProgram(ctx context.Context, id string) (*models.Program, error)
	FindAcademicStructure(ctx context.Context, id string) (*models.AcademicStructure, error)
	FindDivision(ctx context.Context, id string) (*models.Division, error)
	FindBatch(ctx context.Context, id string) (*models.Batch, error)
}

// UserService implements admin-only user management.
type UserService struct {
	repo      userRepository
	hierarchy hierarchyResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo userRepository, hierarchy hierarchyResolver, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, hierarchy: hierarchy, validator: validate, logger: logger}
}

// List returns users matching the filter. Admin only.
func (s *UserService) List(ctx context.Context, p authz.Principal, filter models.UserFilter) ([]models.User, models.Pagination, error) {
	if !authz.Allowed(p.Role, authz.ActionManageUsers) {
		return nil, models.Pagination{}, appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage users")
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, paginationOf(filter.Page, filter.PageSize, total), nil
}

// Get returns a single user. Admins see anyone; other roles only themselves.
func (s *UserService) Get(ctx context.Context, p authz.Principal, id string) (*models.User, error) {
	if p.Role != models.RoleAdmin && p.UserID != id {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to view this user")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create provisions a new user. Admin only. Hierarchy references must exist
// and agree with their parents, and must match the role: membership refs are
// for students, assignment refs for HODs and class advisors.
func (s *UserService) Create(ctx context.Context, p authz.Principal, req dto.CreateUserRequest) (*models.User, error) {
	if !authz.Allowed(p.Role, authz.ActionManageUsers) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage users")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid user payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
	}

	user := &models.User{
		Email:     req.Email,
		Name:      req.Name,
		Role:      req.Role,
		StudentID: req.StudentID,
		Phone:     req.Phone,
		Active:    true,

		DepartmentID:        req.DepartmentID,
		ProgramID:           req.ProgramID,
		AcademicStructureID: req.AcademicStructureID,
		DivisionID:          req.DivisionID,
		BatchID:             req.BatchID,

		AssignedDepartmentID:        req.AssignedDepartmentID,
		AssignedProgramID:           req.AssignedProgramID,
		AssignedAcademicStructureID: req.AssignedAcademicStructureID,
		AssignedDivisionID:          req.AssignedDivisionID,
		AssignedBatchID:             req.AssignedBatchID,
	}

	if err := s.checkRoleReferences(ctx, user); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user.PasswordHash = string(hash)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &p.UserID,
		Action:     models.AuditActionUserCreate,
		Resource:   "user",
		ResourceID: &user.ID,
	}); err != nil {
		s.logger.Warn("failed to record user create audit log", zap.Error(err))
	}

	return user, nil
}

// Update modifies an existing user. Admin only.
func (s *UserService) Update(ctx context.Context, p authz.Principal, id string, req dto.UpdateUserRequest) (*models.User, error) {
	if !authz.Allowed(p.Role, authz.ActionManageUsers) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage users")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid user payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if req.Email != user.Email {
		exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
		}
	}

	user.Email = req.Email
	user.Name = req.Name
	user.Role = req.Role
	user.StudentID = req.StudentID
	user.Phone = req.Phone
	user.Active = req.Active

	user.DepartmentID = req.DepartmentID
	user.ProgramID = req.ProgramID
	user.AcademicStructureID = req.AcademicStructureID
	user.DivisionID = req.DivisionID
	user.BatchID = req.BatchID

	user.AssignedDepartmentID = req.AssignedDepartmentID
	user.AssignedProgramID = req.AssignedProgramID
	user.AssignedAcademicStructureID = req.AssignedAcademicStructureID
	user.AssignedDivisionID = req.AssignedDivisionID
	user.AssignedBatchID = req.AssignedBatchID

	if err := s.checkRoleReferences(ctx, user); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &p.UserID,
		Action:     models.AuditActionUserUpdate,
		Resource:   "user",
		ResourceID: &user.ID,
	}); err != nil {
		s.logger.Warn("failed to record user update audit log", zap.Error(err))
	}

	return user, nil
}

// Deactivate soft-disables a user and revokes their sessions. Admin only.
func (s *UserService) Deactivate(ctx context.Context, p authz.Principal, id string) error {
	if !authz.Allowed(p.Role, authz.ActionManageUsers) {
		return appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage users")
	}
	if p.UserID == id {
		return appErrors.Clone(appErrors.ErrValidation, "cannot deactivate your own account")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate user")
	}
	if err := s.repo.RevokeUserRefreshTokens(ctx, id); err != nil {
		s.logger.Warn("failed to revoke refresh tokens on deactivate", zap.Error(err))
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &p.UserID,
		Action:     models.AuditActionUserDeactivate,
		Resource:   "user",
		ResourceID: &id,
	}); err != nil {
		s.logger.Warn("failed to record user deactivate audit log", zap.Error(err))
	}

	return nil
}

// checkRoleReferences enforces that hierarchy references match the role and
// form a consistent parent chain.
func (s *UserService) checkRoleReferences(ctx context.Context, user *models.User) error {
	hasMembership := user.DepartmentID != nil || user.ProgramID != nil || user.AcademicStructureID != nil ||
		user.DivisionID != nil || user.BatchID != nil
	hasAssignment := user.AssignedDepartmentID != nil || user.AssignedProgramID != nil ||
		user.AssignedAcademicStructureID != nil || user.AssignedDivisionID != nil || user.AssignedBatchID != nil

	switch user.Role {
	case models.RoleStudent:
		if hasAssignment {
			return appErrors.Clone(appErrors.ErrValidation, "students may not carry assignment references")
		}
		return s.checkChain(ctx, authz.MembershipPath(user))
	case models.RoleHOD, models.RoleClassAdvisor:
		if hasMembership {
			return appErrors.Clone(appErrors.ErrValidation, "reviewers may not carry membership references")
		}
		return s.checkChain(ctx, authz.AssignmentScope(user))
	case models.RoleAdmin:
		if hasMembership || hasAssignment {
			return appErrors.Clone(appErrors.ErrValidation, "admins may not carry hierarchy references")
		}
		return nil
	}
	return appErrors.Clone(appErrors.ErrValidation, "unknown role")
}

// checkChain verifies each provided reference exists and agrees with its
// declared parent where both levels are set.
func (s *UserService) checkChain(ctx context.Context, path authz.ScopePath) error {
	if path.DepartmentID != nil {
		if _, err := s.hierarchy.FindDepartment(ctx, *path.DepartmentID); err != nil {
			return s.referenceError(err, "department")
		}
	}
	if path.ProgramID != nil {
		program, err := s.hierarchy.FindProgram(ctx, *path.ProgramID)
		if err != nil {
			return s.referenceError(err, "program")
		}
		if path.DepartmentID != nil && program.DepartmentID != *path.DepartmentID {
			return appErrors.Clone(appErrors.ErrValidation, "program does not belong to the given department")
		}
	}
	if path.AcademicStructureID != nil {
		structure, err := s.hierarchy.FindAcademicStructure(ctx, *path.AcademicStructureID)
		if err != nil {
			return s.referenceError(err, "academic structure")
		}
		if path.ProgramID != nil && structure.ProgramID != *path.ProgramID {
			return appErrors.Clone(appErrors.ErrValidation, "academic structure does not belong to the given program")
		}
		if path.DepartmentID != nil && structure.DepartmentID != *path.DepartmentID {
			return appErrors.Clone(appErrors.ErrValidation, "academic structure does not belong to the given department")
		}
	}
	if path.DivisionID != nil {
		division, err := s.hierarchy.FindDivision(ctx, *path.DivisionID)
		if err != nil {
			return s.referenceError(err, "division")
		}
		if path.AcademicStructureID != nil && division.AcademicStructureID != *path.AcademicStructureID {
			return appErrors.Clone(appErrors.ErrValidation, "division does not belong to the given academic structure")
		}
	}
	if path.BatchID != nil {
		batch, err := s.hierarchy.FindBatch(ctx, *path.BatchID)
		if err != nil {
			return s.referenceError(err, "batch")
		}
		if path.DivisionID != nil && batch.DivisionID != *path.DivisionID {
			return appErrors.Clone(appErrors.ErrValidation, "batch does not belong to the given division")
		}
	}
	return nil
}

func (s *UserService) referenceError(err error, level string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrValidation, level+" reference does not exist")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve "+level)
}
