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

type divisionRepository interface {
	List(ctx context.Context, filter models.DivisionFilter) ([]models.Division, error)
	FindByID(ctx context.Context, id string) (*models.Division, error)
	Create(ctx context.Context, division *models.Division) error
	Update(ctx context.Context, division *models.Division) error
	Delete(ctx context.Context, id string) error
}

type divisionStructureRepository interface {
	FindByID(ctx context.Context, id string) (*models.AcademicStructure, error)
}

// DivisionService manages sections inside academic structures.
type DivisionService struct {
	repo       divisionRepository
	structures divisionStructureRepository
	audit      auditRecorder
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewDivisionService constructs a DivisionService.
func NewDivisionService(repo divisionRepository, structures divisionStructureRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *DivisionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DivisionService{repo: repo, structures: structures, audit: audit, validator: validate, logger: logger}
}

// List returns divisions, optionally filtered by academic structure.
func (s *DivisionService) List(ctx context.Context, filter models.DivisionFilter) ([]models.Division, error) {
	divisions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list divisions")
	}
	return divisions, nil
}

// Get returns one division.
func (s *DivisionService) Get(ctx context.Context, id string) (*models.Division, error) {
	division, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "division not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load division")
	}
	return division, nil
}

// Create adds a division under an existing academic structure. Admin only.
func (s *DivisionService) Create(ctx context.Context, p authz.Principal, req dto.DivisionRequest) (*models.Division, error) {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid division payload")
	}
	if err := s.checkStructure(ctx, req.AcademicStructureID); err != nil {
		return nil, err
	}

	division := &models.Division{Name: req.Name, Code: req.Code, AcademicStructureID: req.AcademicStructureID}
	if err := s.repo.Create(ctx, division); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create division")
	}

	s.recordWrite(ctx, p, division.ID)
	return division, nil
}

// Update modifies a division. Admin only.
func (s *DivisionService) Update(ctx context.Context, p authz.Principal, id string, req dto.DivisionRequest) (*models.Division, error) {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid division payload")
	}

	division, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkStructure(ctx, req.AcademicStructureID); err != nil {
		return nil, err
	}

	division.Name = req.Name
	division.Code = req.Code
	division.AcademicStructureID = req.AcademicStructureID
	if err := s.repo.Update(ctx, division); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update division")
	}

	s.recordWrite(ctx, p, id)
	return division, nil
}

// Delete removes a division. Admin only.
func (s *DivisionService) Delete(ctx context.Context, p authz.Principal, id string) error {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete division")
	}
	s.recordWrite(ctx, p, id)
	return nil
}

func (s *DivisionService) checkStructure(ctx context.Context, id string) error {
	if _, err := s.structures.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "academic structure reference does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve academic structure")
	}
	return nil
}

func (s *DivisionService) recordWrite(ctx context.Context, p authz.Principal, resourceID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &p.UserID,
		Action:     models.AuditActionHierarchyWrite,
		Resource:   "division",
		ResourceID: &resourceID,
	}); err != nil {
		s.logger.Warn("failed to record hierarchy audit log", zap.Error(err))
	}
}
