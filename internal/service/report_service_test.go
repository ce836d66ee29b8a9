package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusrec/achievement-api/internal/authz"
	"github.com/campusrec/achievement-api/internal/dto"
	"github.com/campusrec/achievement-api/internal/models"
	"github.com/campusrec/achievement-api/pkg/config"
	appErrors "github.com/campusrec/achievement-api/pkg/errors"
)

type memCacheRepo struct {
	entries map[string][]byte
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{entries: map[string][]byte{}}
}

func (m *memCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func reportItem(month time.Month, day int, semester, division string) models.AchievementDetail {
	item := models.AchievementDetail{
		Achievement: models.Achievement{
			ID:        "a-" + division,
			Status:    models.StatusVerified,
			EventDate: time.Date(2025, month, day, 0, 0, 0, 0, time.UTC),
		},
	}
	if semester != "" {
		item.Semester = &semester
	}
	if division != "" {
		item.DivisionName = &division
	}
	return item
}

func TestReportGroupsByMonth(t *testing.T) {
	repo := &mockAchievementRepo{listItems: []models.AchievementDetail{
		reportItem(time.July, 10, "", "A"),
		reportItem(time.July, 21, "", "B"),
		reportItem(time.August, 2, "", "C"),
	}, listTotal: 3}
	svc := NewReportService(repo, &mockAchievementUsers{}, nil, nil, config.HODPolicyDepartmentBounded)

	resp, err := svc.Generate(context.Background(), authz.Principal{UserID: "adm", Role: models.RoleAdmin}, dto.ReportRequest{})
	require.NoError(t, err)

	assert.Equal(t, dto.GroupByMonthly, resp.GroupBy)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Groups, 2)
	// groups come back sorted by key
	assert.Equal(t, "August 2025", resp.Groups[0].Key)
	assert.Equal(t, 1, resp.Groups[0].Count)
	assert.Equal(t, "July 2025", resp.Groups[1].Key)
	assert.Equal(t, 2, resp.Groups[1].Count)
}

func TestReportMissingAttributeLandsInNA(t *testing.T) {
	repo := &mockAchievementRepo{listItems: []models.AchievementDetail{
		reportItem(time.July, 10, "S1", "A"),
		reportItem(time.July, 11, "", ""),
	}, listTotal: 2}
	svc := NewReportService(repo, &mockAchievementUsers{}, nil, nil, config.HODPolicyDepartmentBounded)
	admin := authz.Principal{UserID: "adm", Role: models.RoleAdmin}

	resp, err := svc.Generate(context.Background(), admin, dto.ReportRequest{GroupBy: dto.GroupBySemester})
	require.NoError(t, err)
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, "N/A", resp.Groups[0].Key)
	assert.Equal(t, "S1", resp.Groups[1].Key)

	resp, err = svc.Generate(context.Background(), admin, dto.ReportRequest{GroupBy: dto.GroupByDivision})
	require.NoError(t, err)
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, "A", resp.Groups[0].Key)
	assert.Equal(t, "N/A", resp.Groups[1].Key)
}

func TestReportDefaultStatuses(t *testing.T) {
	repo := &mockAchievementRepo{}
	svc := NewReportService(repo, &mockAchievementUsers{}, nil, nil, config.HODPolicyDepartmentBounded)

	_, err := svc.Generate(context.Background(), authz.Principal{UserID: "adm", Role: models.RoleAdmin}, dto.ReportRequest{})
	require.NoError(t, err)

	assert.Equal(t, []models.AchievementStatus{models.StatusSubmitted, models.StatusVerified}, repo.lastFilter.Statuses)
}

func TestReportRejectsStudentsAndBadInput(t *testing.T) {
	svc := NewReportService(&mockAchievementRepo{}, &mockAchievementUsers{}, nil, nil, config.HODPolicyDepartmentBounded)

	_, err := svc.Generate(context.Background(), authz.Principal{UserID: "s1", Role: models.RoleStudent}, dto.ReportRequest{})
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err))

	admin := authz.Principal{UserID: "adm", Role: models.RoleAdmin}
	_, err = svc.Generate(context.Background(), admin, dto.ReportRequest{GroupBy: dto.ReportGroupBy("weekly")})
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))

	_, err = svc.Generate(context.Background(), admin, dto.ReportRequest{Statuses: []models.AchievementStatus{"PENDING"}})
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))
}

func TestReportScopedToReviewerAssignment(t *testing.T) {
	repo := &mockAchievementRepo{}
	users := &mockAchievementUsers{users: map[string]*models.User{
		"adv": {ID: "adv", Role: models.RoleClassAdvisor, AssignedDepartmentID: strPtr("d1")},
	}}
	svc := NewReportService(repo, users, nil, nil, config.HODPolicyDepartmentBounded)

	_, err := svc.Generate(context.Background(), authz.Principal{UserID: "adv", Role: models.RoleClassAdvisor}, dto.ReportRequest{})
	require.NoError(t, err)

	require.NotNil(t, repo.lastScope)
	assert.Equal(t, "d1", *repo.lastScope.DepartmentID)
}

func TestReportCacheHitAndInvalidation(t *testing.T) {
	repo := &mockAchievementRepo{listItems: []models.AchievementDetail{reportItem(time.July, 10, "", "A")}, listTotal: 1}
	cacheRepo := newMemCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewReportService(repo, &mockAchievementUsers{}, cache, nil, config.HODPolicyDepartmentBounded)
	admin := authz.Principal{UserID: "adm", Role: models.RoleAdmin}

	first, err := svc.Generate(context.Background(), admin, dto.ReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Total)

	// a second call is served from cache even though the data changed
	repo.listItems = append(repo.listItems, reportItem(time.August, 1, "", "B"))
	repo.listTotal = 2
	second, err := svc.Generate(context.Background(), admin, dto.ReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Total)

	// any achievement mutation drops the cached reports
	achievements := NewAchievementService(repo, &mockAchievementUsers{}, cache, nil, nil, nil, config.HODPolicyDepartmentBounded)
	_, err = achievements.Create(context.Background(), authz.Principal{UserID: "s1", Role: models.RoleStudent}, dto.CreateAchievementRequest{
		Title:       "State level hackathon",
		Description: "Won first place at the state hackathon",
		Category:    models.CategoryHackathons,
		EventDate:   time.Now(),
	})
	require.NoError(t, err)

	third, err := svc.Generate(context.Background(), admin, dto.ReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, third.Total)
}
