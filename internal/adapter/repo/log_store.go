package repo

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"donations/internal/domain"
)

// LogStore is the default OrderStore: it records status updates in the log
// only.
type LogStore struct {
	logger zerolog.Logger
}

func NewLogStore(logger zerolog.Logger) *LogStore {
	return &LogStore{logger: logger}
}

func (s *LogStore) UpdateStatus(_ context.Context, orderTrackingID string, status domain.TransactionStatus) error {
	s.logger.Info().
		Str("order_id", orderTrackingID).
		Str("status", status.Status).
		Str("payment_method", status.PaymentMethod).
		Time("updated_at", time.Now().UTC()).
		Msg("updating donation status")
	return nil
}

var _ domain.OrderStore = (*LogStore)(nil)
