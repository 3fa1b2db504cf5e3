package messaging

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/Jayasrip08/apec-digital-no-dues/pkg/config"
)

// Accent colors rendered by the client for each notification context.
const (
	ColorReminder = "#FF6B35"
	ColorVerified = "#4CAF50"
	ColorRejected = "#F44336"
)

// PushSender delivers one push notification and returns the provider's
// message id.
type PushSender interface {
	Send(ctx context.Context, msg PushMessage) (string, error)
}

// PushMessage describes one outbound push notification.
type PushMessage struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
	Color string
}

// FCMSender delivers push notifications through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
	logger *zap.Logger
}

// NewFCMSender initialises the Firebase app and messaging client from the
// provided credentials. Construction is the only place provider credentials
// are touched.
func NewFCMSender(ctx context.Context, cfg config.PushConfig, logger *zap.Logger) (*FCMSender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init fcm client: %w", err)
	}

	return &FCMSender{client: client, logger: logger}, nil
}

// Send attempts a single delivery and returns the provider message id.
// Failures are returned to the caller; the sender never retries.
func (s *FCMSender) Send(ctx context.Context, msg PushMessage) (string, error) {
	if msg.Token == "" {
		return "", fmt.Errorf("push message requires a device token")
	}

	out := &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
				Color: msg.Color,
			},
		},
	}

	id, err := s.client.Send(ctx, out)
	if err != nil {
		return "", fmt.Errorf("send push: %w", err)
	}

	s.logger.Debug("push delivered", zap.String("message_id", id))
	return id, nil
}
