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

type programRepository interface {
	List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
	Create(ctx context.Context, program *models.Program) error
	Update(ctx context.Context, program *models.Program) error
	Delete(ctx context.Context, id string) error
}

type programDepartmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

// ProgramService manages programs inside departments.
type ProgramService struct {
	repo        programRepository
	departments programDepartmentRepository
	audit       auditRecorder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewProgramService constructs a ProgramService.
func NewProgramService(repo programRepository, departments programDepartmentRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProgramService{repo: repo, departments: departments, audit: audit, validator: validate, logger: logger}
}

// List returns programs, optionally filtered by department.
func (s *ProgramService) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, error) {
	programs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return programs, nil
}

// Get returns one program.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.Program, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// Create adds a program under an existing department. Admin only.
func (s *ProgramService) Create(ctx context.Context, p authz.Principal, req dto.ProgramRequest) (*models.Program, error) {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid program payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown program type")
	}
	if err := s.checkDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	program := &models.Program{Name: req.Name, Code: req.Code, Type: req.Type, DepartmentID: req.DepartmentID}
	if err := s.repo.Create(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}

	s.recordWrite(ctx, p, program.ID)
	return program, nil
}

// Update modifies a program. Admin only.
func (s *ProgramService) Update(ctx context.Context, p authz.Principal, id string, req dto.ProgramRequest) (*models.Program, error) {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid program payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown program type")
	}

	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	program.Name = req.Name
	program.Code = req.Code
	program.Type = req.Type
	program.DepartmentID = req.DepartmentID
	if err := s.repo.Update(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}

	s.recordWrite(ctx, p, id)
	return program, nil
}

// Delete removes a program. Admin only.
func (s *ProgramService) Delete(ctx context.Context, p authz.Principal, id string) error {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete program")
	}
	s.recordWrite(ctx, p, id)
	return nil
}

func (s *ProgramService) checkDepartment(ctx context.Context, id string) error {
	if _, err := s.departments.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "department reference does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve department")
	}
	return nil
}

func (s *ProgramService) recordWrite(ctx context.Context, p authz.Principal, resourceID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &p.UserID,
		Action:     models.AuditActionHierarchyWrite,
		Resource:   "program",
		ResourceID: &resourceID,
	}); err != nil {
		s.logger.Warn("failed to record hierarchy audit log", zap.Error(err))
	}
}
