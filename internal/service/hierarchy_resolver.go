package service

import (
	"context"

	"github.com/campusrec/achievement-api/internal/models"
)

// HierarchyResolver adapts the five hierarchy repositories into the single
// lookup surface reference validation needs.
type HierarchyResolver struct {
	departments programDepartmentRepository
	programs    structureProgramRepository
	structures  divisionStructureRepository
	divisions   batchDivisionRepository
	batches     interface {
		FindByID(ctx context.Context, id string) (*models.Batch, error)
	}
}

// NewHierarchyResolver constructs a HierarchyResolver from the entity repositories.
func NewHierarchyResolver(
	departments programDepartmentRepository,
	programs structureProgramRepository,
	structures divisionStructureRepository,
	divisions batchDivisionRepository,
	batches interface {
		FindByID(ctx context.Context, id string) (*models.Batch, error)
	},
) *HierarchyResolver {
	return &HierarchyResolver{
		departments: departments,
		programs:    programs,
		structures:  structures,
		divisions:   divisions,
		batches:     batches,
	}
}

func (r *HierarchyResolver) FindDepartment(ctx context.Context, id string) (*models.Department, error) {
	return r.departments.FindByID(ctx, id)
}

func (r *HierarchyResolver) FindProgram(ctx context.Context, id string) (*models.Program, error) {
	return r.programs.FindByID(ctx, id)
}

func (r *HierarchyResolver) FindAcademicStructure(ctx context.Context, id string) (*models.AcademicStructure, error) {
	return r.structures.FindByID(ctx, id)
}

func (r *HierarchyResolver) FindDivision(ctx context.Context, id string) (*models.Division, error) {
	return r.divisions.FindByID(ctx, id)
}

func (r *HierarchyResolver) FindBatch(ctx context.Context, id string) (*models.Batch, error) {
	return r.batches.FindByID(ctx, id)
}
