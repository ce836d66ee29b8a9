package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusrec/achievement-api/internal/models"
)

// DivisionRepository manages persistence for divisions.
type DivisionRepository struct {
	db *sqlx.DB
}

// NewDivisionRepository constructs a DivisionRepository.
func NewDivisionRepository(db *sqlx.DB) *DivisionRepository {
	return &DivisionRepository{db: db}
}

// List returns divisions matching the filter ordered by name.
func (r *DivisionRepository) List(ctx context.Context, filter models.DivisionFilter) ([]models.Division, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.AcademicStructureID != "" {
		args = append(args, filter.AcademicStructureID)
		conditions = append(conditions, fmt.Sprintf("academic_structure_id = $%d", len(args)))
	}
	query := fmt.Sprintf(`SELECT id, name, code, academic_structure_id, created_at, updated_at
	FROM divisions WHERE %s ORDER BY name ASC`, strings.Join(conditions, " AND "))
	var divisions []models.Division
	if err := r.db.SelectContext(ctx, &divisions, query, args...); err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}
	return divisions, nil
}

// FindByID fetches a division by ID.
func (r *DivisionRepository) FindByID(ctx context.Context, id string) (*models.Division, error) {
	const query = `SELECT id, name, code, academic_structure_id, created_at, updated_at FROM divisions WHERE id = $1`
	var division models.Division
	if err := r.db.GetContext(ctx, &division, query, id); err != nil {
		return nil, err
	}
	return &division, nil
}

// Create inserts a new division.
func (r *DivisionRepository) Create(ctx context.Context, division *models.Division) error {
	if division.ID == "" {
		division.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if division.CreatedAt.IsZero() {
		division.CreatedAt = now
	}
	division.UpdatedAt = now
	const query = `INSERT INTO divisions (id, name, code, academic_structure_id, created_at, updated_at)
	VALUES (:id, :name, :code, :academic_structure_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, division); err != nil {
		return fmt.Errorf("create division: %w", err)
	}
	return nil
}

// Update modifies an existing division.
func (r *DivisionRepository) Update(ctx context.Context, division *models.Division) error {
	division.UpdatedAt = time.Now().UTC()
	const query = `UPDATE divisions SET name = :name, code = :code, academic_structure_id = :academic_structure_id,
	updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, division); err != nil {
		return fmt.Errorf("update division: %w", err)
	}
	return nil
}

// Delete removes a division.
func (r *DivisionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM divisions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete division: %w", err)
	}
	return nil
}
