package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusrec/achievement-api/internal/authz"
	"github.com/campusrec/achievement-api/internal/models"
)

const achievementDetailColumns = `a.id, a.title, a.description, a.category, a.status, a.event_date, a.academic_year,
	a.semester, a.certificate_path, a.photo_path, a.is_group_achievement, a.group_members, a.remarks,
	a.student_id, a.verified_by, a.verified_at, a.created_at, a.updated_at,
	u.name AS student_name, u.email AS student_email, u.student_id AS student_number,
	u.department_id AS student_department_id, u.program_id AS student_program_id,
	u.academic_structure_id AS student_academic_structure_id, u.division_id AS student_division_id,
	u.batch_id AS student_batch_id,
	d.name AS department_name, p.name AS program_name, ast.name AS academic_structure_name,
	dv.name AS division_name, b.name AS batch_name`

const achievementDetailJoins = `FROM achievements a
	JOIN users u ON u.id = a.student_id
	LEFT JOIN departments d ON d.id = u.department_id
	LEFT JOIN programs p ON p.id = u.program_id
	LEFT JOIN academic_structures ast ON ast.id = u.academic_structure_id
	LEFT JOIN divisions dv ON dv.id = u.division_id
	LEFT JOIN batches b ON b.id = u.batch_id`

// AchievementRepository manages persistence for achievement records.
type AchievementRepository struct {
	db *sqlx.DB
}

// NewAchievementRepository constructs an AchievementRepository.
func NewAchievementRepository(db *sqlx.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Create inserts a new achievement. Status and ownership are set by the
// caller; they are never updatable through this repository afterwards.
func (r *AchievementRepository) Create(ctx context.Context, a *models.Achievement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	const query = `INSERT INTO achievements (id, title, description, category, status, event_date, academic_year,
		semester, certificate_path, photo_path, is_group_achievement, group_members, remarks,
		student_id, verified_by, verified_at, created_at, updated_at)
	VALUES (:id, :title, :description, :category, :status, :event_date, :academic_year,
		:semester, :certificate_path, :photo_path, :is_group_achievement, :group_members, :remarks,
		:student_id, :verified_by, :verified_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create achievement: %w", err)
	}
	return nil
}

// FindByID fetches a single achievement joined with the owning student's
// identity and hierarchy names.
func (r *AchievementRepository) FindByID(ctx context.Context, id string) (*models.AchievementDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.id = $1", achievementDetailColumns, achievementDetailJoins)
	var detail models.AchievementDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns achievements matching the filter, restricted by the reviewer
// scope when one is provided. The scope conditions are rendered from the
// same ScopePath used for single-record authorization, so list visibility
// and point checks cannot drift apart. When submittedGlobal is set the scope
// is widened with "OR status = SUBMITTED" (HOD triage policy).
func (r *AchievementRepository) List(ctx context.Context, filter models.AchievementFilter, scope *authz.ScopePath, submittedGlobal bool) ([]models.AchievementDetail, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("a.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("a.category = $%d", len(args)))
	}
	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		conditions = append(conditions, fmt.Sprintf("a.academic_year = $%d", len(args)))
	}
	if filter.ProgramID != "" {
		args = append(args, filter.ProgramID)
		conditions = append(conditions, fmt.Sprintf("u.program_id = $%d", len(args)))
	}
	if filter.AcademicStructureID != "" {
		args = append(args, filter.AcademicStructureID)
		conditions = append(conditions, fmt.Sprintf("u.academic_structure_id = $%d", len(args)))
	}
	if filter.DivisionID != "" {
		args = append(args, filter.DivisionID)
		conditions = append(conditions, fmt.Sprintf("u.division_id = $%d", len(args)))
	}
	if filter.BatchID != "" {
		args = append(args, filter.BatchID)
		conditions = append(conditions, fmt.Sprintf("u.batch_id = $%d", len(args)))
	}

	if scope != nil {
		scopeConds, scopeArgs := scope.Conditions("u.", len(args))
		if len(scopeConds) > 0 {
			args = append(args, scopeArgs...)
			scopeClause := strings.Join(scopeConds, " AND ")
			if submittedGlobal {
				args = append(args, models.StatusSubmitted)
				scopeClause = fmt.Sprintf("(%s) OR a.status = $%d", scopeClause, len(args))
			}
			conditions = append(conditions, fmt.Sprintf("(%s)", scopeClause))
		}
	}

	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY a.created_at DESC LIMIT %d OFFSET %d",
		achievementDetailColumns, achievementDetailJoins, where, size, offset)

	var details []models.AchievementDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list achievements: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(a.id) %s WHERE %s", achievementDetailJoins, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count achievements: %w", err)
	}
	return details, total, nil
}

// Update rewrites the student-editable fields. The status precondition is
// part of the statement: a record that left SUBMITTED concurrently is not
// touched and the caller sees false.
func (r *AchievementRepository) Update(ctx context.Context, a *models.Achievement) (bool, error) {
	a.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE achievements SET title = :title, description = :description, category = :category,
		event_date = :event_date, academic_year = :academic_year, semester = :semester,
		certificate_path = :certificate_path, photo_path = :photo_path,
		is_group_achievement = :is_group_achievement, group_members = :group_members, updated_at = :updated_at
	WHERE id = :id AND status = '%s'`, models.StatusSubmitted)
	result, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return false, fmt.Errorf("update achievement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update achievement rows: %w", err)
	}
	return affected > 0, nil
}

// Delete removes an achievement while it is still SUBMITTED.
func (r *AchievementRepository) Delete(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("DELETE FROM achievements WHERE id = $1 AND status = '%s'", models.StatusSubmitted)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete achievement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete achievement rows: %w", err)
	}
	return affected > 0, nil
}

// UpdateStatus applies the one-way SUBMITTED → VERIFIED/REJECTED transition.
// The precondition and the write are one conditional statement, so two
// racing reviewers cannot both succeed; the loser observes false.
func (r *AchievementRepository) UpdateStatus(ctx context.Context, id string, target models.AchievementStatus, remarks *string, reviewerID string, at time.Time) (bool, error) {
	query := fmt.Sprintf(`UPDATE achievements SET status = $2, remarks = $3, verified_by = $4, verified_at = $5, updated_at = $5
	WHERE id = $1 AND status = '%s'`, models.StatusSubmitted)
	result, err := r.db.ExecContext(ctx, query, id, target, remarks, reviewerID, at)
	if err != nil {
		return false, fmt.Errorf("update achievement status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update achievement status rows: %w", err)
	}
	return affected > 0, nil
}
