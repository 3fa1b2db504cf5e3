package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/models"
)

func TestNotificationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	n := &models.Notification{
		UserID:  "stu-1",
		Type:    models.NotificationPaymentReminder,
		Channel: models.ChannelPush,
		Title:   "Fee Payment Reminder",
		Body:    "Your fee payment deadline is in 3 day(s).",
		Data:    models.Payload{"daysRemaining": "3"},
	}
	err := repo.Create(context.Background(), n)
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID, "an id is minted when absent")
	assert.False(t, n.SentAt.IsZero(), "sent_at is stamped when absent")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "channel", "title", "body", "data", "sent_at", "read", "fcm_message_id"}).
		AddRow("n1", "stu-1", "payment_verified", "push", "Payment Verified", "body", []byte(`{"amount":"15000"}`), time.Now(), false, "fcm-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, type, channel, title, body, data, sent_at, read, fcm_message_id FROM notifications WHERE user_id = $1 ORDER BY sent_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("stu-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notifications WHERE user_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	notifications, total, err := repo.ListByUser(context.Background(), "stu-1", models.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "15000", notifications[0].Data["amount"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkRead(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read = TRUE WHERE id = $1")).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkRead(context.Background(), "n1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkReadMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read = TRUE WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
