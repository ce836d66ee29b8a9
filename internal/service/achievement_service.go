package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusrec/achievement-api/internal/authz"
	"github.com/campusrec/achievement-api/internal/dto"
	"github.com/campusrec/achievement-api/internal/models"
	"github.com/campusrec/achievement-api/pkg/config"
	appErrors "github.com/campusrec/achievement-api/pkg/errors"
)

type achievementRepository interface {
	Create(ctx context.Context, a *models.Achievement) error
	FindByID(ctx context.Context, id string) (*models.AchievementDetail, error)
	List(ctx context.Context, filter models.AchievementFilter, scope *authz.ScopePath, submittedGlobal bool) ([]models.AchievementDetail, int, error)
	Update(ctx context.Context, a *models.Achievement) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	UpdateStatus(ctx context.Context, id string, target models.AchievementStatus, remarks *string, reviewerID string, at time.Time) (bool, error)
}

type achievementUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AchievementService implements the submission and verification workflow.
// Every method takes the acting principal explicitly; nothing is read from
// ambient request state.
type AchievementService struct {
	repo      achievementRepository
	users     achievementUserRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	policy    config.HODScopePolicy
}

// NewAchievementService constructs an AchievementService.
func NewAchievementService(repo achievementRepository, users achievementUserRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, policy config.HODScopePolicy) *AchievementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AchievementService{
		repo:      repo,
		users:     users,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		policy:    policy,
	}
}

// submittedGlobal reports whether the configured HOD policy widens visibility
// of pending records beyond the assigned department.
func (s *AchievementService) submittedGlobal(role models.UserRole) bool {
	return role == models.RoleHOD && s.policy == config.HODPolicySubmittedGlobal
}

// resolveScope loads the principal's user row and derives the reviewer scope.
// Admins are unrestricted. An HOD with no explicit assignment falls back to
// the department recorded on their own row.
func (s *AchievementService) resolveScope(ctx context.Context, p authz.Principal) (authz.ScopePath, error) {
	if p.Role == models.RoleAdmin {
		return authz.ScopePath{}, nil
	}
	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authz.ScopePath{}, appErrors.Clone(appErrors.ErrUnauthorized, "user no longer exists")
		}
		return authz.ScopePath{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	scope := authz.AssignmentScope(user)
	if p.Role == models.RoleHOD && scope.DepartmentID == nil {
		scope.DepartmentID = user.DepartmentID
	}
	return scope, nil
}

// Create records a new SUBMITTED achievement owned by the acting student.
// The academic year is derived from the event date when not provided.
func (s *AchievementService) Create(ctx context.Context, p authz.Principal, req dto.CreateAchievementRequest) (*models.Achievement, error) {
	if !authz.Allowed(p.Role, authz.ActionSubmitAchievement) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students may submit achievements")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid achievement payload")
	}
	if !req.Category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown achievement category")
	}

	academicYear := req.AcademicYear
	if academicYear == "" {
		academicYear = models.AcademicYearOf(req.EventDate)
	}

	achievement := &models.Achievement{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		Status:             models.StatusSubmitted,
		EventDate:          req.EventDate,
		AcademicYear:       academicYear,
		Semester:           req.Semester,
		CertificatePath:    req.CertificatePath,
		PhotoPath:          req.PhotoPath,
		IsGroupAchievement: req.IsGroupAchievement,
		GroupMembers:       req.GroupMembers,
		StudentID:          p.UserID,
	}

	if err := s.repo.Create(ctx, achievement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create achievement")
	}

	s.invalidateReportCache(ctx)
	return achievement, nil
}

// ListMine returns the acting student's own achievements.
func (s *AchievementService) ListMine(ctx context.Context, p authz.Principal, filter models.AchievementFilter) ([]models.AchievementDetail, models.Pagination, error) {
	filter.StudentID = p.UserID
	items, total, err := s.repo.List(ctx, filter, nil, false)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list achievements")
	}
	return items, paginationOf(filter.Page, filter.PageSize, total), nil
}

// ListScoped returns achievements visible to a reviewer. The reviewer scope
// is resolved from the user row on every call so reassignments apply
// immediately.
func (s *AchievementService) ListScoped(ctx context.Context, p authz.Principal, filter models.AchievementFilter) ([]models.AchievementDetail, models.Pagination, error) {
	if !authz.Allowed(p.Role, authz.ActionReviewAchievements) {
		return nil, models.Pagination{}, appErrors.Clone(appErrors.ErrForbidden, "not permitted to review achievements")
	}

	var scopePtr *authz.ScopePath
	if p.Role != models.RoleAdmin {
		scope, err := s.resolveScope(ctx, p)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		scopePtr = &scope
	}

	items, total, err := s.repo.List(ctx, filter, scopePtr, s.submittedGlobal(p.Role))
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list achievements")
	}
	return items, paginationOf(filter.Page, filter.PageSize, total), nil
}

// Get fetches one achievement, enforcing the same visibility predicate that
// scoped listings use.
func (s *AchievementService) Get(ctx context.Context, p authz.Principal, id string) (*models.AchievementDetail, error) {
	detail, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	scope, err := s.resolveScope(ctx, p)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadAchievement(p, scope, detail.StudentID, memberPathOf(detail), detail.Status, s.submittedGlobal(p.Role)) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "achievement is outside your scope")
	}
	return detail, nil
}

// Update rewrites an achievement that is still pending review. Only the
// owning student may edit, and only while the record is SUBMITTED.
func (s *AchievementService) Update(ctx context.Context, p authz.Principal, id string, req dto.UpdateAchievementRequest) (*models.AchievementDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid achievement payload")
	}
	if !req.Category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown achievement category")
	}

	detail, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.StudentID != p.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owner may edit an achievement")
	}
	if detail.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "achievement has already been processed")
	}

	academicYear := req.AcademicYear
	if academicYear == "" {
		academicYear = models.AcademicYearOf(req.EventDate)
	}

	updated := detail.Achievement
	updated.Title = req.Title
	updated.Description = req.Description
	updated.Category = req.Category
	updated.EventDate = req.EventDate
	updated.AcademicYear = academicYear
	updated.Semester = req.Semester
	updated.CertificatePath = req.CertificatePath
	updated.PhotoPath = req.PhotoPath
	updated.IsGroupAchievement = req.IsGroupAchievement
	updated.GroupMembers = req.GroupMembers

	ok, err := s.repo.Update(ctx, &updated)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update achievement")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "achievement has already been processed")
	}

	s.invalidateReportCache(ctx)
	return s.findDetail(ctx, id)
}

// Delete removes an achievement that is still pending review.
func (s *AchievementService) Delete(ctx context.Context, p authz.Principal, id string) error {
	detail, err := s.findDetail(ctx, id)
	if err != nil {
		return err
	}
	if detail.StudentID != p.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the owner may delete an achievement")
	}
	if detail.Status.Terminal() {
		return appErrors.Clone(appErrors.ErrInvalidState, "achievement has already been processed")
	}

	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete achievement")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrInvalidState, "achievement has already been processed")
	}

	s.invalidateReportCache(ctx)
	return nil
}

// Verify transitions an achievement to VERIFIED.
func (s *AchievementService) Verify(ctx context.Context, p authz.Principal, id string, req dto.ReviewAchievementRequest) (*models.AchievementDetail, error) {
	return s.review(ctx, p, id, models.StatusVerified, req.Remarks, models.AuditActionAchievementVerify)
}

// Reject transitions an achievement to REJECTED.
func (s *AchievementService) Reject(ctx context.Context, p authz.Principal, id string, req dto.ReviewAchievementRequest) (*models.AchievementDetail, error) {
	return s.review(ctx, p, id, models.StatusRejected, req.Remarks, models.AuditActionAchievementReject)
}

// review applies the one-way status transition. The repository statement
// carries the SUBMITTED precondition, so concurrent reviewers race safely:
// exactly one wins, the other sees an already-processed error.
func (s *AchievementService) review(ctx context.Context, p authz.Principal, id string, target models.AchievementStatus, remarks *string, auditAction string) (*models.AchievementDetail, error) {
	if !authz.Allowed(p.Role, authz.ActionReviewAchievements) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to review achievements")
	}

	detail, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	scope, err := s.resolveScope(ctx, p)
	if err != nil {
		return nil, err
	}
	if !authz.CanVerifyAchievement(p, scope, memberPathOf(detail), detail.Status, s.submittedGlobal(p.Role)) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "achievement is outside your scope")
	}
	if detail.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "achievement has already been processed")
	}

	now := time.Now().UTC()
	ok, err := s.repo.UpdateStatus(ctx, id, target, remarks, p.UserID, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update achievement status")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "achievement has already been processed")
	}

	if s.metrics != nil {
		s.metrics.RecordVerification(target)
	}
	s.invalidateReportCache(ctx)

	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &p.UserID,
		Action:     auditAction,
		Resource:   "achievement",
		ResourceID: &id,
		NewValues:  []byte(`{"status":"` + string(target) + `"}`),
	}); err != nil {
		s.logger.Warn("failed to record review audit log", zap.Error(err))
	}

	return s.findDetail(ctx, id)
}

func (s *AchievementService) findDetail(ctx context.Context, id string) (*models.AchievementDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "achievement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievement")
	}
	return detail, nil
}

func (s *AchievementService) invalidateReportCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, reportCacheKeyPrefix+"*"); err != nil {
		s.logger.Warn("failed to invalidate report cache", zap.Error(err))
	}
}

// memberPathOf projects the owning student's hierarchy location from a
// joined achievement row.
func memberPathOf(detail *models.AchievementDetail) authz.ScopePath {
	return authz.ScopePath{
		DepartmentID:        detail.StudentDepartmentID,
		ProgramID:           detail.StudentProgramID,
		AcademicStructureID: detail.StudentAcademicStructureID,
		DivisionID:          detail.StudentDivisionID,
		BatchID:             detail.StudentBatchID,
	}
}

func paginationOf(page, size, total int) models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
