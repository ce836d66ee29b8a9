package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/campusrec/achievement-api/internal/authz"
	"github.com/campusrec/achievement-api/internal/dto"
	"github.com/campusrec/achievement-api/internal/models"
	"github.com/campusrec/achievement-api/pkg/config"
	appErrors "github.com/campusrec/achievement-api/pkg/errors"
)

const reportCacheKeyPrefix = "reports:"

// unlabelledGroup collects records whose grouping attribute is absent.
const unlabelledGroup = "N/A"

// ReportService aggregates achievements into grouped read-side reports.
// Reports reuse the same scope filtering as listings, so a reviewer can never
// aggregate records they could not list.
type ReportService struct {
	repo   achievementRepository
	users  achievementUserRepository
	cache  *CacheService
	logger *zap.Logger
	policy config.HODScopePolicy
}

// NewReportService constructs a ReportService.
func NewReportService(repo achievementRepository, users achievementUserRepository, cache *CacheService, logger *zap.Logger, policy config.HODScopePolicy) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, users: users, cache: cache, logger: logger, policy: policy}
}

// Generate builds the grouped report for the acting reviewer.
func (s *ReportService) Generate(ctx context.Context, p authz.Principal, req dto.ReportRequest) (*dto.ReportResponse, error) {
	if !authz.Allowed(p.Role, authz.ActionViewReports) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted to view reports")
	}
	if req.GroupBy == "" {
		req.GroupBy = dto.GroupByMonthly
	}
	if !req.GroupBy.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report grouping")
	}

	statuses := req.Statuses
	if len(statuses) == 0 {
		statuses = []models.AchievementStatus{models.StatusSubmitted, models.StatusVerified}
	}
	for _, status := range statuses {
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown achievement status")
		}
	}

	cacheKey := s.cacheKey(p, req, statuses)
	var cached dto.ReportResponse
	if s.cache.Enabled() {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	scopePtr, submittedGlobal, err := s.reviewerScope(ctx, p)
	if err != nil {
		return nil, err
	}

	filter := models.AchievementFilter{
		Statuses:            statuses,
		Category:            req.Category,
		AcademicYear:        req.AcademicYear,
		ProgramID:           req.ProgramID,
		AcademicStructureID: req.AcademicStructureID,
		DivisionID:          req.DivisionID,
		BatchID:             req.BatchID,
		Page:                1,
		PageSize:            100,
	}

	var all []models.AchievementDetail
	for {
		page, total, err := s.repo.List(ctx, filter, scopePtr, submittedGlobal)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report data")
		}
		all = append(all, page...)
		if len(all) >= total || len(page) == 0 {
			break
		}
		filter.Page++
	}

	response := &dto.ReportResponse{
		GroupBy: req.GroupBy,
		Total:   len(all),
		Groups:  groupAchievements(all, req.GroupBy),
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, response, 0); err != nil {
			s.logger.Warn("failed to cache report", zap.Error(err))
		}
	}

	return response, nil
}

// reviewerScope resolves the reviewer's scope restriction. Admins aggregate
// everything; HODs fall back to their own department when unassigned.
func (s *ReportService) reviewerScope(ctx context.Context, p authz.Principal) (*authz.ScopePath, bool, error) {
	if p.Role == models.RoleAdmin {
		return nil, false, nil
	}
	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	scope := authz.AssignmentScope(user)
	if p.Role == models.RoleHOD && scope.DepartmentID == nil {
		scope.DepartmentID = user.DepartmentID
	}
	submittedGlobal := p.Role == models.RoleHOD && s.policy == config.HODPolicySubmittedGlobal
	return &scope, submittedGlobal, nil
}

func (s *ReportService) cacheKey(p authz.Principal, req dto.ReportRequest, statuses []models.AchievementStatus) string {
	parts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		parts = append(parts, string(status))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s%s:%s:%s:%s:%s:%s:%s:%s:%s",
		reportCacheKeyPrefix, p.Role, p.UserID, req.GroupBy,
		strings.Join(parts, ","), req.Category, req.AcademicYear,
		req.ProgramID+"/"+req.AcademicStructureID, req.DivisionID, req.BatchID)
}

// groupAchievements buckets records by the requested dimension. Records
// missing the attribute land in the N/A bucket. Groups are sorted by key for
// stable output.
func groupAchievements(items []models.AchievementDetail, groupBy dto.ReportGroupBy) []dto.ReportGroup {
	buckets := make(map[string][]models.AchievementDetail)
	for _, item := range items {
		key := groupKeyOf(item, groupBy)
		buckets[key] = append(buckets[key], item)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	groups := make([]dto.ReportGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, dto.ReportGroup{
			Key:   key,
			Count: len(buckets[key]),
			Items: buckets[key],
		})
	}
	return groups
}

func groupKeyOf(item models.AchievementDetail, groupBy dto.ReportGroupBy) string {
	switch groupBy {
	case dto.GroupByMonthly:
		return item.EventDate.Format("January 2006")
	case dto.GroupBySemester:
		if item.Semester == nil || *item.Semester == "" {
			return unlabelledGroup
		}
		return *item.Semester
	case dto.GroupByClass:
		if item.AcademicStructureName == nil || *item.AcademicStructureName == "" {
			return unlabelledGroup
		}
		return *item.AcademicStructureName
	case dto.GroupByDivision:
		if item.DivisionName == nil || *item.DivisionName == "" {
			return unlabelledGroup
		}
		return *item.DivisionName
	case dto.GroupByBatch:
		if item.BatchName == nil || *item.BatchName == "" {
			return unlabelledGroup
		}
		return *item.BatchName
	}
	return unlabelledGroup
}
