package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/models"
)

// FeeStructureRepository handles reads over the fee_structures collection.
type FeeStructureRepository struct {
	db *sqlx.DB
}

// NewFeeStructureRepository instantiates a fee structure repository.
func NewFeeStructureRepository(db *sqlx.DB) *FeeStructureRepository {
	return &FeeStructureRepository{db: db}
}

// ListBySemester returns all fee structures belonging to a semester.
func (r *FeeStructureRepository) ListBySemester(ctx context.Context, semesterID string) ([]models.FeeStructure, error) {
	const query = `SELECT id, semester_id, dept, quota_category, fee_name, amount, deadline, created_at, updated_at FROM fee_structures WHERE semester_id = $1 ORDER BY deadline NULLS LAST`
	var structures []models.FeeStructure
	if err := r.db.SelectContext(ctx, &structures, query, semesterID); err != nil {
		return nil, fmt.Errorf("list fee structures: %w", err)
	}
	return structures, nil
}
