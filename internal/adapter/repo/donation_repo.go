package repo

import (
	"context"
	"fmt"
	"time"

	"donations/internal/domain"
	"donations/internal/infra"
	"donations/internal/sqlinline"
)

// DonationStatusPG implements domain.OrderStore on PostgreSQL.
type DonationStatusPG struct {
	sql infra.SQLExecutor
	now func() time.Time
}

// NewDonationStatusRepository wraps an executor such as *infra.SQLRunner.
func NewDonationStatusRepository(exec infra.SQLExecutor) *DonationStatusPG {
	return &DonationStatusPG{sql: exec, now: time.Now}
}

// UpdateStatus upserts the latest status for the order.
func (r *DonationStatusPG) UpdateStatus(ctx context.Context, orderTrackingID string, status domain.TransactionStatus) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpsertDonationStatus,
		orderTrackingID,
		status.MerchantReference,
		status.Status,
		status.PaymentMethod,
		status.Amount.String(),
		status.Currency,
		status.ConfirmationCode,
		r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert donation status: %w", err)
	}
	return nil
}

var _ domain.OrderStore = (*DonationStatusPG)(nil)
