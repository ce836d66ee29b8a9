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

type academicStructureRepository interface {
	List(ctx context.Context, filter models.AcademicStructureFilter) ([]models.AcademicStructure, error)
	FindByID(ctx context.Context, id string) (*models.AcademicStructure, error)
	ExistsByCode(ctx context.Context, departmentID, programID, code string, excludeID string) (bool, error)
	Create(ctx context.Context, structure *models.AcademicStructure) error
	Update(ctx context.Context, structure *models.AcademicStructure) error
	Delete(ctx context.Context, id string) error
}

type structureProgramRepository interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

// AcademicStructureService manages year/semester levels inside programs.
type AcademicStructureService struct {
	repo      academicStructureRepository
	programs  structureProgramRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicStructureService constructs an AcademicStructureService.
func NewAcademicStructureService(repo academicStructureRepository, programs structureProgramRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *AcademicStructureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AcademicStructureService{repo: repo, programs: programs, audit: audit, validator: validate, logger: logger}
}

// List returns academic structures, optionally filtered by department or program.
func (s *AcademicStructureService) List(ctx context.Context, filter models.AcademicStructureFilter) ([]models.AcademicStructure, error) {
	structures, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic structures")
	}
	return structures, nil
}

// Get returns one academic structure.
func (s *AcademicStructureService) Get(ctx context.Context, id string) (*models.AcademicStructure, error) {
	structure, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic structure not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic structure")
	}
	return structure, nil
}

// Create adds an academic structure. Admin only. Code is unique per
// (department, program); semester is required iff IsSemester is set.
func (s *AcademicStructureService) Create(ctx context.Context, p authz.Principal, req dto.AcademicStructureRequest) (*models.AcademicStructure, error) {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByCode(ctx, req.DepartmentID, req.ProgramID, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check structure code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "structure code already in use for this program")
	}

	structure := &models.AcademicStructure{
		Name:         req.Name,
		Code:         req.Code,
		Level:        req.Level,
		IsSemester:   req.IsSemester,
		Semester:     req.Semester,
		DepartmentID: req.DepartmentID,
		ProgramID:    req.ProgramID,
	}
	if err := s.repo.Create(ctx, structure); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic structure")
	}

	s.recordWrite(ctx, p, structure.ID)
	return structure, nil
}

// Update modifies an academic structure. Admin only.
func (s *AcademicStructureService) Update(ctx context.Context, p authz.Principal, id string, req dto.AcademicStructureRequest) (*models.AcademicStructure, error) {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	structure, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByCode(ctx, req.DepartmentID, req.ProgramID, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check structure code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "structure code already in use for this program")
	}

	structure.Name = req.Name
	structure.Code = req.Code
	structure.Level = req.Level
	structure.IsSemester = req.IsSemester
	structure.Semester = req.Semester
	structure.DepartmentID = req.DepartmentID
	structure.ProgramID = req.ProgramID
	if err := s.repo.Update(ctx, structure); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update academic structure")
	}

	s.recordWrite(ctx, p, id)
	return structure, nil
}

// Delete removes an academic structure. Admin only.
func (s *AcademicStructureService) Delete(ctx context.Context, p authz.Principal, id string) error {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete academic structure")
	}
	s.recordWrite(ctx, p, id)
	return nil
}

func (s *AcademicStructureService) validateRequest(ctx context.Context, req dto.AcademicStructureRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid academic structure payload")
	}
	if req.IsSemester && req.Semester == nil {
		return appErrors.Clone(appErrors.ErrValidation, "semester is required for semester structures")
	}
	if !req.IsSemester && req.Semester != nil {
		return appErrors.Clone(appErrors.ErrValidation, "semester is only valid for semester structures")
	}

	program, err := s.programs.FindByID(ctx, req.ProgramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "program reference does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve program")
	}
	if program.DepartmentID != req.DepartmentID {
		return appErrors.Clone(appErrors.ErrValidation, "program does not belong to the given department")
	}
	return nil
}

func (s *AcademicStructureService) recordWrite(ctx context.Context, p authz.Principal, resourceID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &p.UserID,
		Action:     models.AuditActionHierarchyWrite,
		Resource:   "academic_structure",
		ResourceID: &resourceID,
	}); err != nil {
		s.logger.Warn("failed to record hierarchy audit log", zap.Error(err))
	}
}
