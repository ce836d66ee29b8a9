package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusrec/achievement-api/internal/dto"
	"github.com/campusrec/achievement-api/internal/models"
	appErrors "github.com/campusrec/achievement-api/pkg/errors"
)

type mockStructureRepo struct {
	structures map[string]*models.AcademicStructure
	codeTaken  bool
}

func (m *mockStructureRepo) List(ctx context.Context, filter models.AcademicStructureFilter) ([]models.AcademicStructure, error) {
	var out []models.AcademicStructure
	for _, s := range m.structures {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockStructureRepo) FindByID(ctx context.Context, id string) (*models.AcademicStructure, error) {
	if s, ok := m.structures[id]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStructureRepo) ExistsByCode(ctx context.Context, departmentID, programID, code string, excludeID string) (bool, error) {
	return m.codeTaken, nil
}

func (m *mockStructureRepo) Create(ctx context.Context, structure *models.AcademicStructure) error {
	if structure.ID == "" {
		structure.ID = "as-new"
	}
	if m.structures == nil {
		m.structures = map[string]*models.AcademicStructure{}
	}
	copy := *structure
	m.structures[structure.ID] = &copy
	return nil
}

func (m *mockStructureRepo) Update(ctx context.Context, structure *models.AcademicStructure) error {
	copy := *structure
	m.structures[structure.ID] = &copy
	return nil
}

func (m *mockStructureRepo) Delete(ctx context.Context, id string) error {
	delete(m.structures, id)
	return nil
}

type mockProgramFinder struct {
	programs map[string]*models.Program
}

func (m *mockProgramFinder) FindByID(ctx context.Context, id string) (*models.Program, error) {
	if p, ok := m.programs[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func structureRequest() dto.AcademicStructureRequest {
	return dto.AcademicStructureRequest{
		Name:         "Second Year",
		Code:         "SY",
		Level:        2,
		DepartmentID: "d1",
		ProgramID:    "p1",
	}
}

func newStructureService(repo *mockStructureRepo) *AcademicStructureService {
	programs := &mockProgramFinder{programs: map[string]*models.Program{
		"p1": {ID: "p1", DepartmentID: "d1", Type: models.ProgramUG},
	}}
	return NewAcademicStructureService(repo, programs, nil, nil, nil)
}

func TestStructureCreate(t *testing.T) {
	repo := &mockStructureRepo{}
	svc := newStructureService(repo)

	structure, err := svc.Create(context.Background(), admin, structureRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, structure.Level)
	assert.False(t, structure.IsSemester)
}

func TestStructureSemesterRequiredIffSemesterKind(t *testing.T) {
	svc := newStructureService(&mockStructureRepo{})

	req := structureRequest()
	req.IsSemester = true
	_, err := svc.Create(context.Background(), admin, req)
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))

	semester := 3
	req.Semester = &semester
	_, err = svc.Create(context.Background(), admin, req)
	require.NoError(t, err)

	// a year structure may not carry a semester number
	req = structureRequest()
	req.Semester = &semester
	_, err = svc.Create(context.Background(), admin, req)
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))
}

func TestStructureProgramMustBelongToDepartment(t *testing.T) {
	svc := newStructureService(&mockStructureRepo{})

	req := structureRequest()
	req.DepartmentID = "d2"
	_, err := svc.Create(context.Background(), admin, req)
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))

	req = structureRequest()
	req.ProgramID = "missing"
	_, err = svc.Create(context.Background(), admin, req)
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))
}

func TestStructureCodeUniquePerProgram(t *testing.T) {
	svc := newStructureService(&mockStructureRepo{codeTaken: true})

	_, err := svc.Create(context.Background(), admin, structureRequest())
	assert.Equal(t, appErrors.ErrConflict.Code, errCode(t, err))
}
