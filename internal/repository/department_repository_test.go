package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusrec/achievement-api/internal/models"
)

func TestDepartmentList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "code", "created_at", "updated_at"}).
		AddRow("d1", "Computer Science", "CS", now, now).
		AddRow("d2", "Mechanical", "ME", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, created_at, updated_at FROM departments ORDER BY name ASC")).
		WillReturnRows(rows)

	departments, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, departments, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentExistsByCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM departments WHERE code = $1 AND id <> $2 LIMIT 1")).
		WithArgs("CS", "d1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "CS", "d1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectExec("INSERT INTO departments").WillReturnResult(sqlmock.NewResult(1, 1))

	department := &models.Department{Name: "Computer Science", Code: "CS"}
	err := repo.Create(context.Background(), department)
	require.NoError(t, err)
	assert.NotEmpty(t, department.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
