package notify

import (
	"context"

	"github.com/rs/zerolog"

	"donations/internal/domain"
)

// LogNotifier is the default Notifier: it logs the confirmation that would be
// sent.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendConfirmation(_ context.Context, orderTrackingID string, status domain.TransactionStatus) error {
	n.logger.Info().
		Str("order_id", orderTrackingID).
		Str("amount", status.Amount.String()).
		Str("currency", status.Currency).
		Msg("would send confirmation email")
	return nil
}

var _ domain.Notifier = (*LogNotifier)(nil)
