package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSemesterRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "academic_year", "end_date", "is_active", "created_at", "updated_at"}).
		AddRow("sem-1", "Even 2026", "2026", time.Now().Add(72*time.Hour), true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, academic_year, end_date, is_active, created_at, updated_at FROM semesters WHERE is_active = TRUE ORDER BY end_date")).
		WillReturnRows(rows)

	semesters, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, semesters, 1)
	assert.Equal(t, "sem-1", semesters[0].ID)
	assert.True(t, semesters[0].IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "academic_year", "end_date", "is_active", "created_at", "updated_at"}).
		AddRow("sem-1", "Even 2026", "2026", time.Now(), true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, academic_year, end_date, is_active, created_at, updated_at FROM semesters WHERE id = $1")).
		WithArgs("sem-1").
		WillReturnRows(rows)

	semester, err := repo.FindByID(context.Background(), "sem-1")
	require.NoError(t, err)
	assert.Equal(t, "2026", semester.AcademicYear)
	assert.NoError(t, mock.ExpectationsWereMet())
}
