package models

import "time"

// User roles recognised by the dispatcher. Only students receive messages.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// StudentStatusPending marks accounts with uncleared lifetime dues.
const StudentStatusPending = "Pending"

// Student is a user account as stored by the application. Everything except
// the FCM token is mutated externally; the token transition from empty to set
// is observed as a change trigger.
type Student struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Email         string     `db:"email" json:"email"`
	FCMToken      string     `db:"fcm_token" json:"fcm_token"`
	Role          string     `db:"role" json:"role"`
	Dept          string     `db:"dept" json:"dept"`
	QuotaCategory string     `db:"quota_category" json:"quota_category"`
	Batch         string     `db:"batch" json:"batch"`
	TotalFee      int64      `db:"total_fee" json:"total_fee"`
	PaidFee       int64      `db:"paid_fee" json:"paid_fee"`
	Status        string     `db:"status" json:"status"`
	LastActiveAt  *time.Time `db:"last_active_at" json:"last_active_at,omitempty"`
}

// OutstandingFee is the amount still owed against the lifetime total.
func (s Student) OutstandingFee() int64 {
	return s.TotalFee - s.PaidFee
}

// DuesCleared reports whether the account owes nothing.
func (s Student) DuesCleared() bool {
	return s.TotalFee > 0 && s.PaidFee >= s.TotalFee
}

// StudentFilter narrows student queries. Zero-valued fields are ignored.
type StudentFilter struct {
	Role          string
	Dept          string
	QuotaCategory string
	Batch         string
	Status        string
}
