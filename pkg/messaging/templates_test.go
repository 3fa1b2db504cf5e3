package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalReminderSubjectPluralisation(t *testing.T) {
	assert.Equal(t, "Final Reminder: Semester Ending in 1 Day", FinalReminderSubject(1))
	assert.Equal(t, "Final Reminder: Semester Ending in 3 Days", FinalReminderSubject(3))
}

func TestDeadlineReminderSubjectPluralisation(t *testing.T) {
	assert.Equal(t, "Payment Reminder: 1 Day Left", DeadlineReminderSubject(1))
	assert.Equal(t, "Payment Reminder: 7 Days Left", DeadlineReminderSubject(7))
}

func TestRenderFinalReminder(t *testing.T) {
	html, err := RenderFinalReminder(FinalReminderEmail{
		Name:        "Arjun",
		EndDate:     time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC),
		Outstanding: 30000,
		DaysLeft:    3,
		PortalURL:   "https://apec-no-dues.web.app",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Arjun")
	assert.Contains(t, html, "30000")
	assert.Contains(t, html, "https://apec-no-dues.web.app")
}

func TestRenderRejectedDefaultsReason(t *testing.T) {
	html, err := RenderRejected(RejectedEmail{Name: "Arjun"})
	require.NoError(t, err)
	assert.Contains(t, html, "Please contact admin")
}

func TestRenderRejectedKeepsExplicitReason(t *testing.T) {
	html, err := RenderRejected(RejectedEmail{Name: "Arjun", Reason: "Amount mismatch"})
	require.NoError(t, err)
	assert.Contains(t, html, "Amount mismatch")
	assert.NotContains(t, html, "Please contact admin")
}

func TestRenderVerifiedWithoutCertificate(t *testing.T) {
	html, err := RenderVerified(VerifiedEmail{Name: "Arjun", Amount: 15000, TransactionID: "TXN123"})
	require.NoError(t, err)
	assert.Contains(t, html, "TXN123")
	assert.Contains(t, html, "download your No-Dues certificate from the app")
}

func TestRenderVerifiedEscapesInput(t *testing.T) {
	html, err := RenderVerified(VerifiedEmail{Name: "<script>alert(1)</script>", Amount: 1})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}
