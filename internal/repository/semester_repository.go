package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/models"
)

// SemesterRepository handles reads over the semesters collection.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository instantiates a semester repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// ListActive returns all semesters flagged active.
func (r *SemesterRepository) ListActive(ctx context.Context) ([]models.Semester, error) {
	const query = `SELECT id, name, academic_year, end_date, is_active, created_at, updated_at FROM semesters WHERE is_active = TRUE ORDER BY end_date`
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list active semesters: %w", err)
	}
	return semesters, nil
}

// FindByID loads a semester by identifier.
func (r *SemesterRepository) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	const query = `SELECT id, name, academic_year, end_date, is_active, created_at, updated_at FROM semesters WHERE id = $1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}
