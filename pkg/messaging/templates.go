package messaging

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// FinalReminderEmail holds the term-end reminder content.
type FinalReminderEmail struct {
	Name        string
	EndDate     time.Time
	Outstanding int64
	DaysLeft    int
	PortalURL   string
}

// DeadlineReminderEmail holds the fee-structure deadline reminder content.
type DeadlineReminderEmail struct {
	Name     string
	FeeName  string
	Amount   int64
	Deadline time.Time
	DaysLeft int
}

// VerifiedEmail holds the payment-verified confirmation content.
type VerifiedEmail struct {
	Name           string
	Amount         int64
	TransactionID  string
	CertificateURL string
}

// RejectedEmail holds the payment-rejected content. Reason falls back to a
// generic prompt when the admin left it empty.
type RejectedEmail struct {
	Name   string
	Reason string
}

var (
	finalReminderTmpl = template.Must(template.New("final_reminder").Parse(`
<h2>Dear {{.Name}},</h2>
<p>Your semester is ending on {{.EndDate.Format "02 Jan 2006"}}.</p>
<p>Our records show that you still have outstanding dues of <strong>&#8377;{{.Outstanding}}</strong>.</p>
<p>Please clear all dues to be eligible for your <strong>No-Dues Certificate</strong> and exams.</p>
<a href="{{.PortalURL}}" style="padding: 10px 20px; background: #f44336; color: white; text-decoration: none; border-radius: 5px;">Clear Dues Now</a>
`))

	deadlineReminderTmpl = template.Must(template.New("deadline_reminder").Parse(`
<div style="font-family: sans-serif; padding: 20px; border: 1px solid #eee;">
  <h2>Hello {{.Name}},</h2>
  <p>This is a reminder that the deadline for <strong>{{if .FeeName}}{{.FeeName}}{{else}}your fee payment{{end}}</strong> is in {{.DaysLeft}} day(s).</p>
  <p><strong>Deadline:</strong> {{.Deadline.Format "02 Jan 2006"}}</p>
  <p><strong>Amount:</strong> &#8377;{{.Amount}}</p>
  <p>Please log in to the APEC No-Dues portal to complete your payment.</p>
</div>
`))

	verifiedTmpl = template.Must(template.New("payment_verified").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #4CAF50; color: white; padding: 20px; text-align: center;">
    <h1>Payment Verified!</h1>
  </div>
  <div style="padding: 20px; background: #f9f9f9;">
    <h2>Dear {{.Name}},</h2>
    <div style="background: #4CAF50; color: white; padding: 15px; border-radius: 5px; margin: 20px 0; text-align: center;">
      <h3>Your payment has been verified!</h3>
    </div>
    <h3>Payment Details:</h3>
    <ul>
      <li><strong>Amount:</strong> &#8377;{{.Amount}}</li>
      <li><strong>Transaction ID:</strong> {{.TransactionID}}</li>
      <li><strong>Status:</strong> Verified</li>
    </ul>
    {{if .CertificateURL}}<p>Your No-Dues certificate is ready: <a href="{{.CertificateURL}}">download it here</a>.</p>{{else}}<p>You can now download your No-Dues certificate from the app.</p>{{end}}
  </div>
  <div style="text-align: center; padding: 20px; color: #666; font-size: 12px;">
    <p>APEC Digital No-Dues System</p>
  </div>
</div>
`))

	rejectedTmpl = template.Must(template.New("payment_rejected").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #f44336; color: white; padding: 20px; text-align: center;">
    <h1>Payment Rejected</h1>
  </div>
  <div style="padding: 20px; background: #f9f9f9;">
    <h2>Dear {{.Name}},</h2>
    <div style="background: #f44336; color: white; padding: 15px; border-radius: 5px; margin: 20px 0;">
      <h3>Your payment submission was rejected</h3>
    </div>
    <p><strong>Reason:</strong> {{.Reason}}</p>
    <p>Please resubmit your payment with the correct details.</p>
  </div>
  <div style="text-align: center; padding: 20px; color: #666; font-size: 12px;">
    <p>APEC Digital No-Dues System</p>
  </div>
</div>
`))
)

// RenderFinalReminder produces the term-end reminder body.
func RenderFinalReminder(data FinalReminderEmail) (string, error) {
	return render(finalReminderTmpl, data)
}

// FinalReminderSubject builds the term-end subject line.
func FinalReminderSubject(daysLeft int) string {
	return fmt.Sprintf("Final Reminder: Semester Ending in %d %s", daysLeft, dayWord(daysLeft))
}

// RenderDeadlineReminder produces the fee deadline reminder body.
func RenderDeadlineReminder(data DeadlineReminderEmail) (string, error) {
	return render(deadlineReminderTmpl, data)
}

// DeadlineReminderSubject builds the fee deadline subject line.
func DeadlineReminderSubject(daysLeft int) string {
	return fmt.Sprintf("Payment Reminder: %d %s Left", daysLeft, dayWord(daysLeft))
}

// RenderVerified produces the payment-verified body.
func RenderVerified(data VerifiedEmail) (string, error) {
	return render(verifiedTmpl, data)
}

// VerifiedSubject is the payment-verified subject line.
func VerifiedSubject() string {
	return "Payment Verified - APEC No-Dues"
}

// RenderRejected produces the payment-rejected body.
func RenderRejected(data RejectedEmail) (string, error) {
	if data.Reason == "" {
		data.Reason = "Please contact admin"
	}
	return render(rejectedTmpl, data)
}

// RejectedSubject is the payment-rejected subject line.
func RejectedSubject() string {
	return "Payment Rejected - APEC No-Dues"
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func dayWord(n int) string {
	if n == 1 {
		return "Day"
	}
	return "Days"
}
