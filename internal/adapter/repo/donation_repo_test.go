package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"donations/internal/domain"
	"donations/internal/infra"
	"donations/internal/sqlinline"
)

type execCall struct {
	query string
	args  []any
}

type recordingExec struct {
	calls []execCall
	err   error
}

func (r *recordingExec) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	r.calls = append(r.calls, execCall{query: query, args: args})
	if r.err != nil {
		return pgconn.CommandTag{}, r.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestDonationStatusPGUpdateStatus(t *testing.T) {
	exec := &recordingExec{}
	repo := NewDonationStatusRepository(exec)
	fixed := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	err := repo.UpdateStatus(context.Background(), "OT-1", domain.TransactionStatus{
		Status:            domain.StatusCompleted,
		PaymentMethod:     "MpesaKE",
		Amount:            decimal.RequireFromString("5000"),
		Currency:          "UGX",
		MerchantReference: "YUSMILE-1",
		ConfirmationCode:  "ABC123",
	})
	if err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("exec calls = %d, want 1", len(exec.calls))
	}
	call := exec.calls[0]
	if call.query != sqlinline.QUpsertDonationStatus {
		t.Fatalf("unexpected query: %s", call.query)
	}
	if _, _, err := infra.ExtractMarker(call.query); err != nil {
		t.Fatalf("query marker invalid: %v", err)
	}
	want := []any{"OT-1", "YUSMILE-1", "COMPLETED", "MpesaKE", "5000", "UGX", "ABC123", fixed}
	if len(call.args) != len(want) {
		t.Fatalf("args = %#v, want %#v", call.args, want)
	}
	for i := range want {
		if call.args[i] != want[i] {
			t.Fatalf("arg[%d] = %#v, want %#v", i, call.args[i], want[i])
		}
	}
}

func TestDonationStatusPGWrapsErrors(t *testing.T) {
	dbErr := errors.New("connection reset")
	repo := NewDonationStatusRepository(&recordingExec{err: dbErr})
	if err := repo.UpdateStatus(context.Background(), "OT-1", domain.TransactionStatus{Status: domain.StatusFailed}); !errors.Is(err, dbErr) {
		t.Fatalf("UpdateStatus() error = %v, want wrapped %v", err, dbErr)
	}
}
