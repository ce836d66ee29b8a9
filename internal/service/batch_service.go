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

type batchRepository interface {
	List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error)
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	Create(ctx context.Context, batch *models.Batch) error
	Update(ctx context.Context, batch *models.Batch) error
	Delete(ctx context.Context, id string) error
}

type batchDivisionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Division, error)
}

// BatchService manages the leaf grouping inside divisions.
type BatchService struct {
	repo      batchRepository
	divisions batchDivisionRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBatchService constructs a BatchService.
func NewBatchService(repo batchRepository, divisions batchDivisionRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BatchService{repo: repo, divisions: divisions, audit: audit, validator: validate, logger: logger}
}

// List returns batches, optionally filtered by division.
func (s *BatchService) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error) {
	batches, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	return batches, nil
}

// Get returns one batch.
func (s *BatchService) Get(ctx context.Context, id string) (*models.Batch, error) {
	batch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return batch, nil
}

// Create adds a batch under an existing division. Admin only.
func (s *BatchService) Create(ctx context.Context, p authz.Principal, req dto.BatchRequest) (*models.Batch, error) {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid batch payload")
	}
	if err := s.checkDivision(ctx, req.DivisionID); err != nil {
		return nil, err
	}

	batch := &models.Batch{Name: req.Name, Number: req.Number, DivisionID: req.DivisionID}
	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create batch")
	}

	s.recordWrite(ctx, p, batch.ID)
	return batch, nil
}

// Update modifies a batch. Admin only.
func (s *BatchService) Update(ctx context.Context, p authz.Principal, id string, req dto.BatchRequest) (*models.Batch, error) {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid batch payload")
	}

	batch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDivision(ctx, req.DivisionID); err != nil {
		return nil, err
	}

	batch.Name = req.Name
	batch.Number = req.Number
	batch.DivisionID = req.DivisionID
	if err := s.repo.Update(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update batch")
	}

	s.recordWrite(ctx, p, id)
	return batch, nil
}

// Delete removes a batch. Admin only.
func (s *BatchService) Delete(ctx context.Context, p authz.Principal, id string) error {
	if !authz.Allowed(p.Role, authz.ActionManageHierarchy) {
		return appErrors.Clone(appErrors.ErrForbidden, "not permitted to manage the hierarchy")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete batch")
	}
	s.recordWrite(ctx, p, id)
	return nil
}

func (s *BatchService) checkDivision(ctx context.Context, id string) error {
	if _, err := s.divisions.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "division reference does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve division")
	}
	return nil
}

func (s *BatchService) recordWrite(ctx context.Context, p authz.Principal, resourceID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &p.UserID,
		Action:     models.AuditActionHierarchyWrite,
		Resource:   "batch",
		ResourceID: &resourceID,
	}); err != nil {
		s.logger.Warn("failed to record hierarchy audit log", zap.Error(err))
	}
}
