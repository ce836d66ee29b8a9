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

type mockUserRepo struct {
	users         map[string]*models.User
	emails        map[string]bool
	revokedTokens []string
	auditLogs     []*models.AuditLog
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*models.User{}, emails: map[string]bool{}}
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *user
	return &copy, nil
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var users []models.User
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	return m.emails[email], nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "u-new"
	}
	copy := *user
	m.users[user.ID] = &copy
	m.emails[user.Email] = true
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *mockUserRepo) Deactivate(ctx context.Context, id string) error {
	user, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.Active = false
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedTokens = append(m.revokedTokens, userID)
	return nil
}

func (m *mockUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type mockHierarchy struct {
	departments map[string]*models.Department
	programs    map[string]*models.Program
	structures  map[string]*models.AcademicStructure
	divisions   map[string]*models.Division
	batches     map[string]*models.Batch
}

func (m *mockHierarchy) FindDepartment(ctx context.Context, id string) (*models.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockHierarchy) FindProgram(ctx context.Context, id string) (*models.Program, error) {
	if p, ok := m.programs[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockHierarchy) FindAcademicStructure(ctx context.Context, id string) (*models.AcademicStructure, error) {
	if s, ok := m.structures[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockHierarchy) FindDivision(ctx context.Context, id string) (*models.Division, error) {
	if d, ok := m.divisions[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockHierarchy) FindBatch(ctx context.Context, id string) (*models.Batch, error) {
	if b, ok := m.batches[id]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

func fixtureHierarchy() *mockHierarchy {
	return &mockHierarchy{
		departments: map[string]*models.Department{"d1": {ID: "d1", Name: "Computer Science", Code: "CS"}},
		programs:    map[string]*models.Program{"p1": {ID: "p1", DepartmentID: "d1", Type: models.ProgramUG}},
		structures:  map[string]*models.AcademicStructure{"as1": {ID: "as1", DepartmentID: "d1", ProgramID: "p1", Level: 2}},
		divisions:   map[string]*models.Division{"dv1": {ID: "dv1", AcademicStructureID: "as1"}},
		batches:     map[string]*models.Batch{"b1": {ID: "b1", DivisionID: "dv1", Number: 1}},
	}
}

var admin = authz.Principal{UserID: "adm", Role: models.RoleAdmin}

func studentRequest() dto.CreateUserRequest {
	return dto.CreateUserRequest{
		Email:        "student@example.com",
		Password:     "secret1",
		Name:         "Student",
		Role:         models.RoleStudent,
		DepartmentID: strPtr("d1"),
		ProgramID:    strPtr("p1"),
	}
}

func TestUserCreateStudentWithValidChain(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo, fixtureHierarchy(), nil, nil)

	req := studentRequest()
	req.AcademicStructureID = strPtr("as1")
	req.DivisionID = strPtr("dv1")
	req.BatchID = strPtr("b1")

	user, err := svc.Create(context.Background(), admin, req)
	require.NoError(t, err)
	assert.True(t, user.Active)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEmpty(t, repo.auditLogs)
}

func TestUserCreateRequiresAdmin(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), fixtureHierarchy(), nil, nil)

	for _, role := range []models.UserRole{models.RoleHOD, models.RoleClassAdvisor, models.RoleStudent} {
		_, err := svc.Create(context.Background(), authz.Principal{UserID: "u1", Role: role}, studentRequest())
		assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err), "role=%s", role)
	}
}

func TestUserCreateRejectsCrossRoleReferences(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), fixtureHierarchy(), nil, nil)

	// student carrying an assignment ref
	req := studentRequest()
	req.AssignedDepartmentID = strPtr("d1")
	_, err := svc.Create(context.Background(), admin, req)
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))

	// advisor carrying a membership ref
	advisor := dto.CreateUserRequest{
		Email:                "advisor@example.com",
		Password:             "secret1",
		Name:                 "Advisor",
		Role:                 models.RoleClassAdvisor,
		DepartmentID:         strPtr("d1"),
		AssignedDepartmentID: strPtr("d1"),
	}
	_, err = svc.Create(context.Background(), admin, advisor)
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))

	// admins carry no hierarchy refs at all
	adminReq := dto.CreateUserRequest{
		Email:        "root@example.com",
		Password:     "secret1",
		Name:         "Root",
		Role:         models.RoleAdmin,
		DepartmentID: strPtr("d1"),
	}
	_, err = svc.Create(context.Background(), admin, adminReq)
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))
}

func TestUserCreateRejectsBrokenChain(t *testing.T) {
	hierarchy := fixtureHierarchy()
	hierarchy.programs["p2"] = &models.Program{ID: "p2", DepartmentID: "d2"}
	svc := NewUserService(newMockUserRepo(), hierarchy, nil, nil)

	// program belongs to a different department
	req := studentRequest()
	req.ProgramID = strPtr("p2")
	_, err := svc.Create(context.Background(), admin, req)
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))

	// dangling reference
	req = studentRequest()
	req.ProgramID = strPtr("missing")
	_, err = svc.Create(context.Background(), admin, req)
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	repo.emails["student@example.com"] = true
	svc := NewUserService(repo, fixtureHierarchy(), nil, nil)

	_, err := svc.Create(context.Background(), admin, studentRequest())
	assert.Equal(t, appErrors.ErrConflict.Code, errCode(t, err))
}

func TestUserCreateAdvisorWithAssignmentScope(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo, fixtureHierarchy(), nil, nil)

	user, err := svc.Create(context.Background(), admin, dto.CreateUserRequest{
		Email:                "advisor@example.com",
		Password:             "secret1",
		Name:                 "Advisor",
		Role:                 models.RoleClassAdvisor,
		AssignedDepartmentID: strPtr("d1"),
		AssignedDivisionID:   strPtr("dv1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "d1", *user.AssignedDepartmentID)
	assert.Nil(t, user.DepartmentID)
}

func TestUserGetSelfOrAdmin(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["u1"] = &models.User{ID: "u1", Email: "a@example.com", Role: models.RoleStudent}
	svc := NewUserService(repo, fixtureHierarchy(), nil, nil)

	_, err := svc.Get(context.Background(), admin, "u1")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), authz.Principal{UserID: "u1", Role: models.RoleStudent}, "u1")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), authz.Principal{UserID: "u2", Role: models.RoleStudent}, "u1")
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err))
}

func TestUserDeactivate(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["u1"] = &models.User{ID: "u1", Email: "a@example.com", Role: models.RoleStudent, Active: true}
	svc := NewUserService(repo, fixtureHierarchy(), nil, nil)

	// no self-deactivation
	err := svc.Deactivate(context.Background(), authz.Principal{UserID: "u1", Role: models.RoleAdmin}, "u1")
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))

	err = svc.Deactivate(context.Background(), admin, "u1")
	require.NoError(t, err)
	assert.False(t, repo.users["u1"].Active)
	assert.Equal(t, []string{"u1"}, repo.revokedTokens)
}
