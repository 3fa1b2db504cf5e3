package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PaymentRepository handles reads over the payments collection.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository instantiates a payment repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// HasVerified reports whether the student has at least one verified payment
// in the given semester.
func (r *PaymentRepository) HasVerified(ctx context.Context, studentID, semesterID string) (bool, error) {
	const query = `SELECT 1 FROM payments WHERE student_id = $1 AND semester_id = $2 AND status = 'verified' LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, semesterID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check verified payment: %w", err)
	}
	return true, nil
}
