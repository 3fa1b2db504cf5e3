package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRepositoryHasVerified(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM payments WHERE student_id = $1 AND semester_id = $2 AND status = 'verified' LIMIT 1")).
		WithArgs("stu-1", "sem-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	ok, err := repo.HasVerified(context.Background(), "stu-1", "sem-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryHasVerifiedNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM payments WHERE student_id = $1 AND semester_id = $2 AND status = 'verified' LIMIT 1")).
		WithArgs("stu-1", "sem-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	ok, err := repo.HasVerified(context.Background(), "stu-1", "sem-1")
	require.NoError(t, err)
	assert.False(t, ok, "no verified payment maps to false, not an error")
	assert.NoError(t, mock.ExpectationsWereMet())
}
