package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/models"
)

func userChange(beforeToken, afterToken, role string) UserChange {
	return UserChange{
		UserID: "stu-1",
		Before: models.Student{ID: "stu-1", Name: "Arjun", Role: role, FCMToken: beforeToken},
		After:  models.Student{ID: "stu-1", Name: "Arjun", Role: role, FCMToken: afterToken},
	}
}

func TestHandleUserChangeWelcomesFirstToken(t *testing.T) {
	push := &stubPush{}
	ledger := &stubLedger{}
	svc := NewLifecycleService(push, ledger, nil, nil, nil)

	err := svc.HandleUserChange(context.Background(), userChange("", "token-abc", models.RoleStudent))
	require.NoError(t, err)

	sent := push.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "token-abc", sent[0].Token)
	assert.Equal(t, "Welcome to APEC Digital No-Dues", sent[0].Title)
	assert.Contains(t, sent[0].Body, "Arjun")
	assert.Equal(t, models.NotificationWelcome, sent[0].Data["type"])

	entries := ledger.recorded()
	require.Len(t, entries, 1)
	assert.Equal(t, models.NotificationWelcome, entries[0].Type)
	assert.Equal(t, models.ChannelPush, entries[0].Channel)
}

func TestHandleUserChangeIgnoresTokenRotation(t *testing.T) {
	push := &stubPush{}
	svc := NewLifecycleService(push, &stubLedger{}, nil, nil, nil)

	err := svc.HandleUserChange(context.Background(), userChange("token-abc", "token-xyz", models.RoleStudent))
	require.NoError(t, err)
	assert.Empty(t, push.messages())
}

func TestHandleUserChangeIgnoresTokenRemoval(t *testing.T) {
	push := &stubPush{}
	svc := NewLifecycleService(push, &stubLedger{}, nil, nil, nil)

	err := svc.HandleUserChange(context.Background(), userChange("token-abc", "", models.RoleStudent))
	require.NoError(t, err)
	assert.Empty(t, push.messages())
}

func TestHandleUserChangeIgnoresNonStudents(t *testing.T) {
	push := &stubPush{}
	svc := NewLifecycleService(push, &stubLedger{}, nil, nil, nil)

	err := svc.HandleUserChange(context.Background(), userChange("", "token-abc", models.RoleAdmin))
	require.NoError(t, err)
	assert.Empty(t, push.messages())
}

func TestHandleUserChangeSendFailureIsNotFatal(t *testing.T) {
	push := &stubPush{err: errors.New("fcm unavailable")}
	ledger := &stubLedger{}
	svc := NewLifecycleService(push, ledger, nil, nil, nil)

	err := svc.HandleUserChange(context.Background(), userChange("", "token-abc", models.RoleStudent))
	require.NoError(t, err, "a provider failure never surfaces to the event source")
	assert.Empty(t, ledger.recorded())
}

func TestHandleUserChangeRejectsMissingUserID(t *testing.T) {
	svc := NewLifecycleService(&stubPush{}, &stubLedger{}, nil, nil, nil)

	change := userChange("", "token-abc", models.RoleStudent)
	change.UserID = ""
	err := svc.HandleUserChange(context.Background(), change)
	require.Error(t, err)
}
