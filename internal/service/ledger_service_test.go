package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/models"
	appErrors "github.com/Jayasrip08/apec-digital-no-dues/pkg/errors"
)

type mockNotificationRepo struct {
	created  []models.Notification
	listed   []models.Notification
	total    int
	read     []string
	readErr  error
	listErr  error
	createEr error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if m.createEr != nil {
		return m.createEr
	}
	m.created = append(m.created, *n)
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.listed, m.total, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id string) error {
	if m.readErr != nil {
		return m.readErr
	}
	m.read = append(m.read, id)
	return nil
}

func TestLedgerRecordForcesUnread(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewLedgerService(repo, nil)

	err := svc.Record(context.Background(), &models.Notification{
		UserID: "stu-1", Type: models.NotificationWelcome, Channel: models.ChannelPush, Read: true,
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.False(t, repo.created[0].Read, "new ledger entries always start unread")
}

func TestLedgerHistoryDefaultsPaging(t *testing.T) {
	repo := &mockNotificationRepo{listed: []models.Notification{{ID: "n1"}}, total: 1}
	svc := NewLedgerService(repo, nil)

	notifications, pagination, err := svc.History(context.Background(), "stu-1", models.NotificationFilter{})
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
	require.NotNil(t, pagination)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestLedgerMarkReadUnknownID(t *testing.T) {
	repo := &mockNotificationRepo{readErr: sql.ErrNoRows}
	svc := NewLedgerService(repo, nil)

	err := svc.MarkRead(context.Background(), "missing")
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestLedgerMarkRead(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewLedgerService(repo, nil)

	require.NoError(t, svc.MarkRead(context.Background(), "n1"))
	assert.Equal(t, []string{"n1"}, repo.read)
}
