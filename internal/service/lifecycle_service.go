package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/models"
	appErrors "github.com/Jayasrip08/apec-digital-no-dues/pkg/errors"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/messaging"
)

// UserChange carries the observed before/after pair of a user update.
type UserChange struct {
	UserID string         `json:"user_id" validate:"required"`
	Before models.Student `json:"before"`
	After  models.Student `json:"after"`
}

// LifecycleService sends the one-time welcome message when a student's
// device registers its first push token.
type LifecycleService struct {
	push      pushSender
	ledger    notificationLedger
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLifecycleService constructs the lifecycle notifier.
func NewLifecycleService(
	push pushSender,
	ledger notificationLedger,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *LifecycleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{push: push, ledger: ledger, metrics: metrics, validator: validate, logger: logger}
}

// HandleUserChange fires only on the absent-to-present transition of the
// push token, and only for student accounts. Token rotation is ignored.
func (s *LifecycleService) HandleUserChange(ctx context.Context, change UserChange) error {
	if err := s.validator.Struct(change); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user change payload")
	}
	if change.Before.FCMToken != "" || change.After.FCMToken == "" {
		return nil
	}
	if change.After.Role != models.RoleStudent {
		return nil
	}

	title := "Welcome to APEC Digital No-Dues"
	body := fmt.Sprintf("Hello %s! You can now manage your fee payments digitally.", change.After.Name)
	data := models.Payload{"type": models.NotificationWelcome}

	messageID, err := s.push.Send(ctx, messaging.PushMessage{
		Token: change.After.FCMToken,
		Title: title,
		Body:  body,
		Data:  data,
	})
	if s.metrics != nil {
		s.metrics.ObserveSend(models.ChannelPush, models.NotificationWelcome, err == nil)
	}
	if err != nil {
		s.logger.Error("failed to send welcome notification",
			zap.String("user_id", change.UserID), zap.Error(err))
		return nil
	}
	s.logger.Info("welcome notification sent", zap.String("user_id", change.UserID))

	if s.ledger != nil {
		notification := &models.Notification{
			UserID:       change.UserID,
			Type:         models.NotificationWelcome,
			Channel:      models.ChannelPush,
			Title:        title,
			Body:         body,
			Data:         data,
			FCMMessageID: messageID,
		}
		if err := s.ledger.Record(ctx, notification); err != nil {
			s.logger.Error("failed to ledger welcome notification",
				zap.String("user_id", change.UserID), zap.Error(err))
		}
	}
	return nil
}
