package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeStructureRepositoryListBySemester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeeStructureRepository(db)

	deadline := time.Now().Add(72 * time.Hour)
	rows := sqlmock.NewRows([]string{"id", "semester_id", "dept", "quota_category", "fee_name", "amount", "deadline", "created_at", "updated_at"}).
		AddRow("fee-1", "sem-1", "CSE", "MQ", "Tuition Fee", int64(30000), deadline, time.Now(), time.Now()).
		AddRow("fee-2", "sem-1", "CSE", "MQ", "Exam Fee", int64(2500), nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, semester_id, dept, quota_category, fee_name, amount, deadline, created_at, updated_at FROM fee_structures WHERE semester_id = $1 ORDER BY deadline NULLS LAST")).
		WithArgs("sem-1").
		WillReturnRows(rows)

	structures, err := repo.ListBySemester(context.Background(), "sem-1")
	require.NoError(t, err)
	require.Len(t, structures, 2)
	assert.NotNil(t, structures[0].Deadline)
	assert.Nil(t, structures[1].Deadline, "structures without a deadline stay valid")
	assert.NoError(t, mock.ExpectationsWereMet())
}
