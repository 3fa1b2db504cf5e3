package messaging

import (
	"context"

	"go.uber.org/zap"
)

// NopPushSender drops every push. Wired in when the push channel is switched
// off so the rest of the pipeline keeps its shape in development.
type NopPushSender struct {
	logger *zap.Logger
}

// NewNopPushSender constructs a disabled push sender.
func NewNopPushSender(logger *zap.Logger) *NopPushSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NopPushSender{logger: logger}
}

// Send logs and drops the message.
func (s *NopPushSender) Send(ctx context.Context, msg PushMessage) (string, error) {
	s.logger.Debug("push channel disabled, dropping message",
		zap.String("title", msg.Title))
	return "", nil
}

// NopEmailSender drops every email.
type NopEmailSender struct {
	logger *zap.Logger
}

// NewNopEmailSender constructs a disabled email sender.
func NewNopEmailSender(logger *zap.Logger) *NopEmailSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NopEmailSender{logger: logger}
}

// Send logs and drops the message.
func (s *NopEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Debug("email channel disabled, dropping message",
		zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
