package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard provides a write-once marker per reminder unit so that overlapping
// or double-fired job runs never deliver the same reminder twice.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGuard wraps a Redis client with the marker TTL. The TTL only needs to
// outlive a calendar day; markers for past dates are garbage.
func NewGuard(client *redis.Client, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &Guard{client: client, ttl: ttl}
}

// Acquire attempts to claim the key atomically. It returns true when this
// caller won the claim and the send may proceed, false when another run
// already claimed it.
func (g *Guard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, "dedupe:"+key, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire dedupe marker: %w", err)
	}
	return ok, nil
}

// ReminderKey builds the marker key for one (student, unit, offset, date)
// reminder. Unit is a fee structure id or a semester id depending on the path.
func ReminderKey(channel, studentID, unitID string, daysRemaining int, day time.Time) string {
	return fmt.Sprintf("reminder:%s:%s:%s:%d:%s", channel, studentID, unitID, daysRemaining, day.Format("2006-01-02"))
}
