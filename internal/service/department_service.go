package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusrec/achievement-api/internal/authz"
	"github.com/campusrec/achievement-api/internal/dto"
	"github.com/campusrec/achievement-api/internal/models"
	appErrors "github.com/campusrec/achievement-api/pkg/errors"
)

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id string) error
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// DepartmentService manages the hierarchy root. The route layer admits only
// admins to the hierarchy surface; writes re-check the role here.
type DepartmentService struct {
	repo      departmentRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService constructs a DepartmentService.
func NewDepartmentService(repo departmentRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DepartmentService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns all departments.
func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// Get returns one department.
func (s *DepartmentService) Get(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	return department, nil
}

// Create adds a department. Admin only; code must be unique.
func (s *DepartmentService) Create(ctx context.Context, p authz.Principal, req dto.DepartmentRequest) (*models.Department, error) {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid department payload")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "department code already in use")
	}

	department := &models.Department{Name: req.Name, Code: req.Code}
	if err := s.repo.Create(ctx, department); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}

	s.recordWrite(ctx, p, department.ID)
	return department, nil
}

// Update modifies a department. Admin only.
func (s *DepartmentService) Update(ctx context.Context, p authz.Principal, id string, req dto.DepartmentRequest) (*models.Department, error) {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid department payload")
	}

	department, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByCode(ctx, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "department code already in use")
	}

	department.Name = req.Name
	department.Code = req.Code
	if err := s.repo.Update(ctx, department); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update department")
	}

	s.recordWrite(ctx, p, id)
	return department, nil
}

// Delete removes a department. Admin only.
func (s *DepartmentService) Delete(ctx context.Context, p authz.Principal, id string) error {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete department")
	}
	s.recordWrite(ctx, p, id)
	return nil
}

func (s *DepartmentService) recordWrite(ctx context.Context, p authz.Principal, resourceID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &p.UserID,
		Action:     models.AuditActionHierarchyWrite,
		Resource:   "department",
		ResourceID: &resourceID,
	}); err != nil {
		s.logger.Warn("failed to record hierarchy audit log", zap.Error(err))
	}
}
