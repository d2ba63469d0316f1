package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"donations/internal/domain"
)

const redisKeyPrefix = "donation:"

// hashWriter is the slice of the go-redis API the store uses.
type hashWriter interface {
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisStore keeps the latest status of each order in a Redis hash.
type RedisStore struct {
	rdb hashWriter
	ttl time.Duration
	now func() time.Time
}

// NewRedisStore accepts a *redis.Client (or any client exposing HSET/EXPIRE).
// A non-positive ttl keeps keys forever.
func NewRedisStore(rdb hashWriter, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

// Key returns the hash key for a tracking id.
func (s *RedisStore) Key(orderTrackingID string) string {
	return redisKeyPrefix + orderTrackingID
}

func (s *RedisStore) UpdateStatus(ctx context.Context, orderTrackingID string, status domain.TransactionStatus) error {
	key := s.Key(orderTrackingID)
	fields := map[string]any{
		"status":             status.Status,
		"payment_method":     status.PaymentMethod,
		"amount":             status.Amount.String(),
		"currency":           status.Currency,
		"merchant_reference": status.MerchantReference,
		"confirmation_code":  status.ConfirmationCode,
		"updated_at":         s.now().UTC().Format(time.RFC3339),
	}
	if err := s.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", key, err)
	}
	if s.ttl > 0 {
		if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("redis expire %s: %w", key, err)
		}
	}
	return nil
}

var (
	_ domain.OrderStore = (*RedisStore)(nil)
	_ hashWriter        = (*redis.Client)(nil)
)
