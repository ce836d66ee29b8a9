package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusrec/achievement-api/internal/models"
)

// AcademicStructureRepository manages persistence for academic structures.
type AcademicStructureRepository struct {
	db *sqlx.DB
}

// NewAcademicStructureRepository constructs an AcademicStructureRepository.
func NewAcademicStructureRepository(db *sqlx.DB) *AcademicStructureRepository {
	return &AcademicStructureRepository{db: db}
}

// List returns academic structures matching the filter ordered by level.
func (r *AcademicStructureRepository) List(ctx context.Context, filter models.AcademicStructureFilter) ([]models.AcademicStructure, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if filter.ProgramID != "" {
		args = append(args, filter.ProgramID)
		conditions = append(conditions, fmt.Sprintf("program_id = $%d", len(args)))
	}
	query := fmt.Sprintf(`SELECT id, name, code, level, is_semester, semester, department_id, program_id, created_at, updated_at
	FROM academic_structures WHERE %s ORDER BY level ASC`, strings.Join(conditions, " AND "))
	var structures []models.AcademicStructure
	if err := r.db.SelectContext(ctx, &structures, query, args...); err != nil {
		return nil, fmt.Errorf("list academic structures: %w", err)
	}
	return structures, nil
}

// FindByID fetches an academic structure by ID.
func (r *AcademicStructureRepository) FindByID(ctx context.Context, id string) (*models.AcademicStructure, error) {
	const query = `SELECT id, name, code, level, is_semester, semester, department_id, program_id, created_at, updated_at
	FROM academic_structures WHERE id = $1`
	var structure models.AcademicStructure
	if err := r.db.GetContext(ctx, &structure, query, id); err != nil {
		return nil, err
	}
	return &structure, nil
}

// ExistsByCode checks uniqueness of code per (department, program).
func (r *AcademicStructureRepository) ExistsByCode(ctx context.Context, departmentID, programID, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM academic_structures WHERE department_id = $1 AND program_id = $2 AND code = $3"
	args := []interface{}{departmentID, programID, code}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check academic structure code: %w", err)
	}
	return true, nil
}

// Create inserts a new academic structure.
func (r *AcademicStructureRepository) Create(ctx context.Context, structure *models.AcademicStructure) error {
	if structure.ID == "" {
		structure.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if structure.CreatedAt.IsZero() {
		structure.CreatedAt = now
	}
	structure.UpdatedAt = now
	const query = `INSERT INTO academic_structures (id, name, code, level, is_semester, semester, department_id, program_id, created_at, updated_at)
	VALUES (:id, :name, :code, :level, :is_semester, :semester, :department_id, :program_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, structure); err != nil {
		return fmt.Errorf("create academic structure: %w", err)
	}
	return nil
}

// Update modifies an existing academic structure.
func (r *AcademicStructureRepository) Update(ctx context.Context, structure *models.AcademicStructure) error {
	structure.UpdatedAt = time.Now().UTC()
	const query = `UPDATE academic_structures SET name = :name, code = :code, level = :level,
	is_semester = :is_semester, semester = :semester, department_id = :department_id, program_id = :program_id,
	updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, structure); err != nil {
		return fmt.Errorf("update academic structure: %w", err)
	}
	return nil
}

// Delete removes an academic structure.
func (r *AcademicStructureRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM academic_structures WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete academic structure: %w", err)
	}
	return nil
}
