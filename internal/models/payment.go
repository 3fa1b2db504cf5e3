package models

import "time"

// PaymentStatus enumerates the admin-driven review states of a payment.
type PaymentStatus string

const (
	PaymentSubmitted   PaymentStatus = "submitted"
	PaymentUnderReview PaymentStatus = "under_review"
	PaymentVerified    PaymentStatus = "verified"
	PaymentRejected    PaymentStatus = "rejected"
)

// Payment is a fee payment submission. Status transitions happen externally;
// the dispatcher only observes before/after pairs on update events.
type Payment struct {
	ID              string        `db:"id" json:"id"`
	StudentID       string        `db:"student_id" json:"student_id"`
	SemesterID      string        `db:"semester_id" json:"semester_id"`
	Amount          int64         `db:"amount" json:"amount"`
	Status          PaymentStatus `db:"status" json:"status"`
	RejectionReason *string       `db:"rejection_reason" json:"rejection_reason,omitempty"`
	TransactionID   string        `db:"transaction_id" json:"transaction_id"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}
