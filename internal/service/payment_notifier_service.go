package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/models"
	appErrors "github.com/Jayasrip08/apec-digital-no-dues/pkg/errors"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/messaging"
)

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type certificateIssuer interface {
	IssueIfCleared(ctx context.Context, student *models.Student) (string, error)
}

// PaymentChange carries the observed before/after pair of a payment update.
type PaymentChange struct {
	PaymentID string         `json:"payment_id" validate:"required"`
	Before    models.Payment `json:"before" validate:"required"`
	After     models.Payment `json:"after" validate:"required"`
}

// PaymentNotifierService reacts to payment status transitions. Only an
// observed change of the status value triggers sends; unrelated field
// updates are no-ops.
type PaymentNotifierService struct {
	students     studentFinder
	push         pushSender
	email        emailSender
	ledger       notificationLedger
	certificates certificateIssuer
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewPaymentNotifierService constructs the notifier. The certificate issuer
// is optional; without it verified emails fall back to the generic app hint.
func NewPaymentNotifierService(
	students studentFinder,
	push pushSender,
	email emailSender,
	ledger notificationLedger,
	certificates certificateIssuer,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *PaymentNotifierService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentNotifierService{
		students:     students,
		push:         push,
		email:        email,
		ledger:       ledger,
		certificates: certificates,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
	}
}

// HandleStatusChange inspects one payment update. Channel failures are
// isolated: a failed push never blocks the email and vice versa.
func (s *PaymentNotifierService) HandleStatusChange(ctx context.Context, change PaymentChange) error {
	if err := s.validator.Struct(change); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment change payload")
	}
	if change.Before.Status == change.After.Status {
		return nil
	}

	after := change.After
	s.logger.Info("payment status changed",
		zap.String("payment_id", change.PaymentID),
		zap.String("from", string(change.Before.Status)),
		zap.String("to", string(after.Status)))

	notificationType, title, body, color := statusContent(after)
	if notificationType == "" {
		// Unknown status, nothing to announce.
		return nil
	}

	student, err := s.students.FindByID(ctx, after.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			s.logger.Error("student not found for payment", zap.String("student_id", after.StudentID))
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	s.sendStatusPush(ctx, student, change.PaymentID, after, notificationType, title, body, color)

	if notificationType == models.NotificationPaymentVerified || notificationType == models.NotificationPaymentRejected {
		s.sendStatusEmail(ctx, student, after, notificationType)
	}
	return nil
}

func (s *PaymentNotifierService) sendStatusPush(
	ctx context.Context,
	student *models.Student,
	paymentID string,
	payment models.Payment,
	notificationType, title, body, color string,
) {
	if student.FCMToken == "" {
		s.logger.Warn("no fcm token for student", zap.String("student_id", student.ID))
		return
	}

	data := models.Payload{
		"type":      notificationType,
		"status":    string(payment.Status),
		"paymentId": paymentID,
		"amount":    strconv.FormatInt(payment.Amount, 10),
	}

	messageID, err := s.push.Send(ctx, messaging.PushMessage{
		Token: student.FCMToken,
		Title: title,
		Body:  body,
		Data:  data,
		Color: color,
	})
	s.observeSend(models.ChannelPush, notificationType, err == nil)
	if err != nil {
		s.logger.Error("failed to send status push",
			zap.String("student_id", student.ID), zap.Error(err))
		return
	}

	s.record(ctx, &models.Notification{
		UserID:       student.ID,
		Type:         notificationType,
		Channel:      models.ChannelPush,
		Title:        title,
		Body:         body,
		Data:         data,
		FCMMessageID: messageID,
	})
}

func (s *PaymentNotifierService) sendStatusEmail(
	ctx context.Context,
	student *models.Student,
	payment models.Payment,
	notificationType string,
) {
	if student.Email == "" {
		return
	}

	var subject, html string
	var err error

	switch notificationType {
	case models.NotificationPaymentVerified:
		certificateURL := s.issueCertificate(ctx, student)
		subject = messaging.VerifiedSubject()
		html, err = messaging.RenderVerified(messaging.VerifiedEmail{
			Name:           student.Name,
			Amount:         payment.Amount,
			TransactionID:  payment.TransactionID,
			CertificateURL: certificateURL,
		})
	case models.NotificationPaymentRejected:
		reason := ""
		if payment.RejectionReason != nil {
			reason = *payment.RejectionReason
		}
		subject = messaging.RejectedSubject()
		html, err = messaging.RenderRejected(messaging.RejectedEmail{
			Name:   student.Name,
			Reason: reason,
		})
	default:
		return
	}
	if err != nil {
		s.logger.Error("failed to render status email", zap.Error(err))
		return
	}

	err = s.email.Send(ctx, messaging.EmailMessage{
		To:      student.Email,
		ToName:  student.Name,
		Subject: subject,
		HTML:    html,
	})
	s.observeSend(models.ChannelEmail, notificationType, err == nil)
	if err != nil {
		s.logger.Error("failed to send status email",
			zap.String("student_id", student.ID), zap.Error(err))
		return
	}

	s.record(ctx, &models.Notification{
		UserID:  student.ID,
		Type:    notificationType,
		Channel: models.ChannelEmail,
		Title:   subject,
		Body:    fmt.Sprintf("Payment of ₹%d is %s", payment.Amount, payment.Status),
		Data: models.Payload{
			"type":   notificationType,
			"status": string(payment.Status),
			"amount": strconv.FormatInt(payment.Amount, 10),
		},
	})
}

func (s *PaymentNotifierService) issueCertificate(ctx context.Context, student *models.Student) string {
	if s.certificates == nil {
		return ""
	}
	url, err := s.certificates.IssueIfCleared(ctx, student)
	if err != nil {
		s.logger.Error("failed to issue no-dues certificate",
			zap.String("student_id", student.ID), zap.Error(err))
		return ""
	}
	return url
}

func (s *PaymentNotifierService) record(ctx context.Context, n *models.Notification) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Record(ctx, n); err != nil {
		s.logger.Error("failed to ledger notification",
			zap.String("user_id", n.UserID), zap.String("type", n.Type), zap.Error(err))
	}
}

func (s *PaymentNotifierService) observeSend(channel, notificationType string, ok bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSend(channel, notificationType, ok)
}

func statusContent(payment models.Payment) (notificationType, title, body, color string) {
	switch payment.Status {
	case models.PaymentVerified:
		return models.NotificationPaymentVerified,
			"Payment Verified",
			fmt.Sprintf("Your payment of ₹%d has been verified successfully!", payment.Amount),
			messaging.ColorVerified
	case models.PaymentRejected:
		body := "Your payment was rejected. Please contact admin."
		if payment.RejectionReason != nil && *payment.RejectionReason != "" {
			body = fmt.Sprintf("Your payment was rejected. Reason: %s", *payment.RejectionReason)
		}
		return models.NotificationPaymentRejected, "Payment Rejected", body, messaging.ColorRejected
	case models.PaymentUnderReview:
		return models.NotificationPaymentUnderReview,
			"Payment Under Review",
			fmt.Sprintf("Your payment of ₹%d is being reviewed by the admin.", payment.Amount),
			messaging.ColorRejected
	default:
		return "", "", "", ""
	}
}
