package messaging

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/Jayasrip08/apec-digital-no-dues/pkg/config"
)

// EmailSender delivers one transactional email.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage describes one outbound transactional email.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// SendGridSender delivers transactional email through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *zap.Logger
}

// NewSendGridSender builds the sender from explicit configuration; the API
// key and verified sender address are never read from process globals.
func NewSendGridSender(cfg config.EmailConfig, logger *zap.Logger) *SendGridSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(cfg.SenderName, cfg.Sender),
		logger: logger,
	}
}

// Send attempts a single delivery. A non-2xx provider response is an error;
// the sender never retries.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if msg.To == "" {
		return fmt.Errorf("email message requires a recipient address")
	}

	to := mail.NewEmail(msg.ToName, msg.To)
	out := mail.NewSingleEmail(s.from, msg.Subject, to, "", msg.HTML)

	resp, err := s.client.SendWithContext(ctx, out)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send email: sendgrid responded %d", resp.StatusCode)
	}

	s.logger.Debug("email delivered", zap.String("to", msg.To), zap.Int("status", resp.StatusCode))
	return nil
}
