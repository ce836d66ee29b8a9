package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusrec/achievement-api/internal/authz"
	"github.com/campusrec/achievement-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func strPtr(s string) *string { return &s }

func achievementRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "title", "description", "category", "status", "event_date", "academic_year",
		"student_id", "created_at", "updated_at", "student_name", "student_email",
	}).AddRow("a1", "State hackathon", "Won first place", string(models.CategoryHackathons),
		string(models.StatusSubmitted), now, "2025-26", "s1", now, now, "Student", "s1@example.com")
}

func TestAchievementCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectExec("INSERT INTO achievements").WillReturnResult(sqlmock.NewResult(1, 1))

	a := &models.Achievement{
		Title:        "State hackathon",
		Description:  "Won first place",
		Category:     models.CategoryHackathons,
		Status:       models.StatusSubmitted,
		EventDate:    time.Now(),
		AcademicYear: "2025-26",
		StudentID:    "s1",
	}
	err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.id = $1")).
		WithArgs("a1").
		WillReturnRows(achievementRows())

	detail, err := repo.FindByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", detail.ID)
	assert.Equal(t, "Student", detail.StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementListAppliesScopeConditions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	scope := &authz.ScopePath{DepartmentID: strPtr("d1"), DivisionID: strPtr("dv1")}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND a.status IN ($1) AND ((u.department_id = $2 AND u.division_id = $3)) ORDER BY a.created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.StatusSubmitted, "d1", "dv1").
		WillReturnRows(achievementRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(a.id)")).
		WithArgs(models.StatusSubmitted, "d1", "dv1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	filter := models.AchievementFilter{Statuses: []models.AchievementStatus{models.StatusSubmitted}}
	items, total, err := repo.List(context.Background(), filter, scope, false)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementListSubmittedGlobalWidensScope(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	scope := &authz.ScopePath{DepartmentID: strPtr("d1")}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND ((u.department_id = $1) OR a.status = $2) ORDER BY a.created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("d1", models.StatusSubmitted).
		WillReturnRows(achievementRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(a.id)")).
		WithArgs("d1", models.StatusSubmitted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.AchievementFilter{}, scope, true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementListUnrestrictedScopeAddsNothing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 ORDER BY a.created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(achievementRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(a.id)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.AchievementFilter{}, &authz.ScopePath{}, false)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementUpdateStatusConditional(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	at := time.Now().UTC()
	remarks := strPtr("looks good")

	mock.ExpectExec(regexp.QuoteMeta("UPDATE achievements SET status = $2, remarks = $3, verified_by = $4, verified_at = $5, updated_at = $5")).
		WithArgs("a1", models.StatusVerified, remarks, "adv", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateStatus(context.Background(), "a1", models.StatusVerified, remarks, "adv", at)
	require.NoError(t, err)
	assert.True(t, ok)

	// a record no longer SUBMITTED matches zero rows; the caller sees false
	mock.ExpectExec(regexp.QuoteMeta("UPDATE achievements SET status = $2")).
		WithArgs("a1", models.StatusRejected, nil, "adv", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err = repo.UpdateStatus(context.Background(), "a1", models.StatusRejected, nil, "adv", at)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementDeleteRequiresSubmitted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM achievements WHERE id = $1 AND status = 'SUBMITTED'")).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), "a1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
