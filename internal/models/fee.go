package models

import "time"

// FeeStructure is a named payment obligation scoped to a department and
// quota segment within a semester. Deadline is optional; structures without
// one never produce deadline reminders.
type FeeStructure struct {
	ID            string     `db:"id" json:"id"`
	SemesterID    string     `db:"semester_id" json:"semester_id"`
	Dept          string     `db:"dept" json:"dept"`
	QuotaCategory string     `db:"quota_category" json:"quota_category"`
	FeeName       string     `db:"fee_name" json:"fee_name"`
	Amount        int64      `db:"amount" json:"amount"`
	Deadline      *time.Time `db:"deadline" json:"deadline,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
