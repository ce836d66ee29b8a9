package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusrec/achievement-api/internal/authz"
	"github.com/campusrec/achievement-api/internal/dto"
	"github.com/campusrec/achievement-api/internal/models"
	appErrors "github.com/campusrec/achievement-api/pkg/errors"
)

type mockDepartmentRepo struct {
	departments map[string]*models.Department
	codes       map[string]string // code -> id
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{departments: map[string]*models.Department{}, codes: map[string]string{}}
}

func (m *mockDepartmentRepo) List(ctx context.Context) ([]models.Department, error) {
	var out []models.Department
	for _, d := range m.departments {
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockDepartmentRepo) FindByID(ctx context.Context, id string) (*models.Department, error) {
	if d, ok := m.departments[id]; ok {
		copy := *d
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDepartmentRepo) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	id, ok := m.codes[code]
	return ok && id != excludeID, nil
}

func (m *mockDepartmentRepo) Create(ctx context.Context, department *models.Department) error {
	if department.ID == "" {
		department.ID = "d-new"
	}
	copy := *department
	m.departments[department.ID] = &copy
	m.codes[department.Code] = department.ID
	return nil
}

func (m *mockDepartmentRepo) Update(ctx context.Context, department *models.Department) error {
	copy := *department
	m.departments[department.ID] = &copy
	return nil
}

func (m *mockDepartmentRepo) Delete(ctx context.Context, id string) error {
	delete(m.departments, id)
	return nil
}

func TestDepartmentCreateAdminOnly(t *testing.T) {
	repo := newMockDepartmentRepo()
	audit := &mockAchievementUsers{}
	svc := NewDepartmentService(repo, audit, nil, nil)

	req := dto.DepartmentRequest{Name: "Computer Science", Code: "CS"}

	_, err := svc.Create(context.Background(), authz.Principal{UserID: "hod", Role: models.RoleHOD}, req)
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err))

	department, err := svc.Create(context.Background(), admin, req)
	require.NoError(t, err)
	assert.Equal(t, "CS", department.Code)

	require.Len(t, audit.auditLogs, 1)
	assert.Equal(t, models.AuditActionHierarchyWrite, audit.auditLogs[0].Action)
}

func TestDepartmentCodeUnique(t *testing.T) {
	repo := newMockDepartmentRepo()
	svc := NewDepartmentService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), admin, dto.DepartmentRequest{Name: "Computer Science", Code: "CS"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), admin, dto.DepartmentRequest{Name: "Cyber Security", Code: "CS"})
	assert.Equal(t, appErrors.ErrConflict.Code, errCode(t, err))

	// updating a department keeping its own code is fine
	_, err = svc.Update(context.Background(), admin, repo.codes["CS"], dto.DepartmentRequest{Name: "Computing", Code: "CS"})
	require.NoError(t, err)
}

func TestDepartmentGetNotFound(t *testing.T) {
	svc := NewDepartmentService(newMockDepartmentRepo(), nil, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err))
}

func TestDepartmentDelete(t *testing.T) {
	repo := newMockDepartmentRepo()
	repo.departments["d1"] = &models.Department{ID: "d1", Name: "Computer Science", Code: "CS"}
	svc := NewDepartmentService(repo, nil, nil, nil)

	err := svc.Delete(context.Background(), authz.Principal{UserID: "s1", Role: models.RoleStudent}, "d1")
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err))

	err = svc.Delete(context.Background(), admin, "d1")
	require.NoError(t, err)
	assert.Empty(t, repo.departments)
}
