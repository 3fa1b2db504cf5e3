package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Notification type tags understood by the client application.
const (
	NotificationPaymentReminder    = "payment_reminder"
	NotificationFinalReminder      = "final_reminder"
	NotificationPaymentVerified    = "payment_verified"
	NotificationPaymentRejected    = "payment_rejected"
	NotificationPaymentUnderReview = "payment_under_review"
	NotificationWelcome            = "welcome"
)

// Delivery channels recorded on ledger entries.
const (
	ChannelPush  = "push"
	ChannelEmail = "email"
)

// Payload is the structured data attached to a notification, stored as jsonb.
type Payload map[string]string

// Value implements driver.Valuer for jsonb storage.
func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return raw, nil
}

// Scan implements sql.Scanner for jsonb storage.
func (p *Payload) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported payload source %T", src)
	}
	return json.Unmarshal(raw, p)
}

// Notification is one ledgered delivery attempt. Records are append-only:
// the dispatcher creates them and only ever flips the read flag afterwards.
type Notification struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Type         string    `db:"type" json:"type"`
	Channel      string    `db:"channel" json:"channel"`
	Title        string    `db:"title" json:"title"`
	Body         string    `db:"body" json:"body"`
	Data         Payload   `db:"data" json:"data,omitempty"`
	SentAt       time.Time `db:"sent_at" json:"sent_at"`
	Read         bool      `db:"read" json:"read"`
	FCMMessageID string    `db:"fcm_message_id" json:"fcm_message_id,omitempty"`
}

// NotificationFilter pages through a user's notification history.
type NotificationFilter struct {
	Page     int
	PageSize int
}

// Pagination describes the page window returned by list endpoints.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
