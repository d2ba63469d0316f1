package domain

import "context"

// OrderStore persists the latest known status of a donation order.
type OrderStore interface {
	UpdateStatus(ctx context.Context, orderTrackingID string, status TransactionStatus) error
}

// Notifier sends the donor-facing confirmation once a payment completes.
type Notifier interface {
	SendConfirmation(ctx context.Context, orderTrackingID string, status TransactionStatus) error
}
