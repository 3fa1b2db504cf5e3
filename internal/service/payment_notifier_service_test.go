package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/models"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/messaging"
)

type stubStudentFinder struct {
	students map[string]models.Student
	err      error
}

func (s *stubStudentFinder) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	if st, ok := s.students[id]; ok {
		return &st, nil
	}
	return nil, sql.ErrNoRows
}

type stubIssuer struct {
	url string
	err error
}

func (s *stubIssuer) IssueIfCleared(ctx context.Context, student *models.Student) (string, error) {
	return s.url, s.err
}

func paymentChange(from, to models.PaymentStatus) PaymentChange {
	return PaymentChange{
		PaymentID: "pay-1",
		Before:    models.Payment{ID: "pay-1", StudentID: "stu-1", SemesterID: "sem-1", Amount: 15000, Status: from},
		After:     models.Payment{ID: "pay-1", StudentID: "stu-1", SemesterID: "sem-1", Amount: 15000, Status: to, TransactionID: "TXN123"},
	}
}

func newNotifierFixture() (*stubStudentFinder, *stubPush, *stubEmail, *stubLedger) {
	return &stubStudentFinder{students: map[string]models.Student{"stu-1": pendingStudent("stu-1")}},
		&stubPush{}, &stubEmail{}, &stubLedger{}
}

func TestHandleStatusChangeNoTransitionIsNoop(t *testing.T) {
	students, push, email, ledger := newNotifierFixture()
	svc := NewPaymentNotifierService(students, push, email, ledger, nil, nil, nil, nil)

	err := svc.HandleStatusChange(context.Background(), paymentChange(models.PaymentVerified, models.PaymentVerified))
	require.NoError(t, err)
	assert.Empty(t, push.messages())
	assert.Empty(t, email.messages())
	assert.Empty(t, ledger.recorded())
}

func TestHandleStatusChangeVerifiedSendsBothChannels(t *testing.T) {
	students, push, email, ledger := newNotifierFixture()
	svc := NewPaymentNotifierService(students, push, email, ledger, nil, nil, nil, nil)

	err := svc.HandleStatusChange(context.Background(), paymentChange(models.PaymentUnderReview, models.PaymentVerified))
	require.NoError(t, err)

	pushes := push.messages()
	require.Len(t, pushes, 1)
	assert.Equal(t, "Payment Verified", pushes[0].Title)
	assert.Equal(t, messaging.ColorVerified, pushes[0].Color)
	assert.Equal(t, "15000", pushes[0].Data["amount"])
	assert.Equal(t, "pay-1", pushes[0].Data["paymentId"])

	emails := email.messages()
	require.Len(t, emails, 1)
	assert.Equal(t, messaging.VerifiedSubject(), emails[0].Subject)
	assert.Contains(t, emails[0].HTML, "TXN123")

	entries := ledger.recorded()
	require.Len(t, entries, 2, "both channels are ledgered")
	channels := []string{entries[0].Channel, entries[1].Channel}
	assert.ElementsMatch(t, []string{models.ChannelPush, models.ChannelEmail}, channels)
}

func TestHandleStatusChangeRejectedUsesReasonFallback(t *testing.T) {
	students, push, email, ledger := newNotifierFixture()
	svc := NewPaymentNotifierService(students, push, email, ledger, nil, nil, nil, nil)

	err := svc.HandleStatusChange(context.Background(), paymentChange(models.PaymentUnderReview, models.PaymentRejected))
	require.NoError(t, err)

	pushes := push.messages()
	require.Len(t, pushes, 1)
	assert.Equal(t, "Payment Rejected", pushes[0].Title)
	assert.Equal(t, "Your payment was rejected. Please contact admin.", pushes[0].Body)
	assert.Equal(t, messaging.ColorRejected, pushes[0].Color)

	emails := email.messages()
	require.Len(t, emails, 1)
	assert.Contains(t, emails[0].HTML, "Please contact admin")
}

func TestHandleStatusChangeRejectedWithExplicitReason(t *testing.T) {
	students, push, email, _ := newNotifierFixture()
	svc := NewPaymentNotifierService(students, push, email, &stubLedger{}, nil, nil, nil, nil)

	change := paymentChange(models.PaymentSubmitted, models.PaymentRejected)
	reason := "Transaction id does not match bank records"
	change.After.RejectionReason = &reason

	err := svc.HandleStatusChange(context.Background(), change)
	require.NoError(t, err)

	pushes := push.messages()
	require.Len(t, pushes, 1)
	assert.Contains(t, pushes[0].Body, reason)
	emails := email.messages()
	require.Len(t, emails, 1)
	assert.Contains(t, emails[0].HTML, reason)
}

func TestHandleStatusChangeUnderReviewIsPushOnly(t *testing.T) {
	students, push, email, ledger := newNotifierFixture()
	svc := NewPaymentNotifierService(students, push, email, ledger, nil, nil, nil, nil)

	err := svc.HandleStatusChange(context.Background(), paymentChange(models.PaymentSubmitted, models.PaymentUnderReview))
	require.NoError(t, err)

	require.Len(t, push.messages(), 1)
	assert.Equal(t, "Payment Under Review", push.messages()[0].Title)
	assert.Empty(t, email.messages())
	require.Len(t, ledger.recorded(), 1)
}

func TestHandleStatusChangeUnknownStatusIsNoop(t *testing.T) {
	students, push, email, ledger := newNotifierFixture()
	svc := NewPaymentNotifierService(students, push, email, ledger, nil, nil, nil, nil)

	err := svc.HandleStatusChange(context.Background(), paymentChange(models.PaymentUnderReview, models.PaymentSubmitted))
	require.NoError(t, err)
	assert.Empty(t, push.messages())
	assert.Empty(t, email.messages())
}

func TestHandleStatusChangeMissingStudentIsLoggedNotFatal(t *testing.T) {
	_, push, email, ledger := newNotifierFixture()
	svc := NewPaymentNotifierService(&stubStudentFinder{}, push, email, ledger, nil, nil, nil, nil)

	err := svc.HandleStatusChange(context.Background(), paymentChange(models.PaymentSubmitted, models.PaymentVerified))
	require.NoError(t, err)
	assert.Empty(t, push.messages())
}

func TestHandleStatusChangePushFailureDoesNotBlockEmail(t *testing.T) {
	students, _, email, ledger := newNotifierFixture()
	push := &stubPush{err: errors.New("fcm unavailable")}
	svc := NewPaymentNotifierService(students, push, email, ledger, nil, nil, nil, nil)

	err := svc.HandleStatusChange(context.Background(), paymentChange(models.PaymentUnderReview, models.PaymentVerified))
	require.NoError(t, err)

	require.Len(t, email.messages(), 1, "email must go out despite the push failure")
	entries := ledger.recorded()
	require.Len(t, entries, 1)
	assert.Equal(t, models.ChannelEmail, entries[0].Channel)
}

func TestHandleStatusChangeSkipsChannelsWithoutAddress(t *testing.T) {
	students, push, email, ledger := newNotifierFixture()
	student := students.students["stu-1"]
	student.FCMToken = ""
	student.Email = ""
	students.students["stu-1"] = student

	svc := NewPaymentNotifierService(students, push, email, ledger, nil, nil, nil, nil)

	err := svc.HandleStatusChange(context.Background(), paymentChange(models.PaymentUnderReview, models.PaymentVerified))
	require.NoError(t, err)
	assert.Empty(t, push.messages())
	assert.Empty(t, email.messages())
	assert.Empty(t, ledger.recorded())
}

func TestHandleStatusChangeVerifiedIncludesCertificateLink(t *testing.T) {
	students, push, email, ledger := newNotifierFixture()
	student := students.students["stu-1"]
	student.PaidFee = student.TotalFee
	students.students["stu-1"] = student

	issuer := &stubIssuer{url: "https://notifier.example/certificates/abc123"}
	svc := NewPaymentNotifierService(students, push, email, ledger, issuer, nil, nil, nil)

	err := svc.HandleStatusChange(context.Background(), paymentChange(models.PaymentUnderReview, models.PaymentVerified))
	require.NoError(t, err)

	emails := email.messages()
	require.Len(t, emails, 1)
	assert.Contains(t, emails[0].HTML, issuer.url)
}

func TestHandleStatusChangeCertificateFailureStillEmails(t *testing.T) {
	students, push, email, ledger := newNotifierFixture()
	issuer := &stubIssuer{err: errors.New("disk full")}
	svc := NewPaymentNotifierService(students, push, email, ledger, issuer, nil, nil, nil)

	err := svc.HandleStatusChange(context.Background(), paymentChange(models.PaymentUnderReview, models.PaymentVerified))
	require.NoError(t, err)
	require.Len(t, email.messages(), 1)
	require.Len(t, push.messages(), 1)
}

func TestHandleStatusChangeRejectsInvalidPayload(t *testing.T) {
	students, push, email, ledger := newNotifierFixture()
	svc := NewPaymentNotifierService(students, push, email, ledger, nil, nil, nil, nil)

	err := svc.HandleStatusChange(context.Background(), PaymentChange{})
	require.Error(t, err)
}
