package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction states reported by the payment provider. The provider owns the
// enumeration; this service only observes it.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
	StatusReversed  = "REVERSED"
	StatusInvalid   = "INVALID"
)

// NotificationTypeChange marks an IPN call that reports a status change.
const NotificationTypeChange = "CHANGE"

// Donor identifies the person behind a donation.
type Donor struct {
	Name  string
	Email string
	Phone string
}

// FirstName returns the first word of the donor name.
func (d Donor) FirstName() string {
	fields := strings.Fields(d.Name)
	if len(fields) == 0 {
		return strings.TrimSpace(d.Name)
	}
	return fields[0]
}

// LastName returns everything after the first word of the donor name.
func (d Donor) LastName() string {
	fields := strings.Fields(d.Name)
	if len(fields) < 2 {
		return ""
	}
	return strings.Join(fields[1:], " ")
}

// DonationRequest is the donor input accepted by the initiation flow.
type DonationRequest struct {
	Amount decimal.Decimal
	Donor  Donor
}

// Validate reports ErrInvalidInput when a field is missing or the amount is
// not positive.
func (r DonationRequest) Validate() error {
	var missing []string
	if !r.Amount.IsPositive() {
		missing = append(missing, "amount must be positive")
	}
	if strings.TrimSpace(r.Donor.Name) == "" {
		missing = append(missing, "name is required")
	}
	if strings.TrimSpace(r.Donor.Email) == "" {
		missing = append(missing, "email is required")
	}
	if strings.TrimSpace(r.Donor.Phone) == "" {
		missing = append(missing, "phone is required")
	}
	if len(missing) > 0 {
		return &ValidationError{Problems: missing}
	}
	return nil
}

// ValidationError lists every rejected donor field.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Problems, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Checkout is the outcome of a successful order submission.
type Checkout struct {
	RedirectURL       string
	OrderTrackingID   string
	MerchantReference string
}

// Notification is the IPN payload sent by the provider.
type Notification struct {
	OrderTrackingID        string `json:"OrderTrackingId"`
	OrderNotificationType  string `json:"OrderNotificationType"`
	OrderMerchantReference string `json:"OrderMerchantReference"`
}

// Actionable reports whether the notification asks for a status refresh.
func (n Notification) Actionable() bool {
	return n.OrderNotificationType == NotificationTypeChange && strings.TrimSpace(n.OrderTrackingID) != ""
}

// TransactionStatus is the authoritative state of an order as reported by the
// provider.
type TransactionStatus struct {
	Status                   string
	PaymentMethod            string
	Amount                   decimal.Decimal
	Currency                 string
	ConfirmationCode         string
	MerchantReference        string
	Description              string
	StatusCode               int // -1 when the provider omitted it
	PaymentStatusDescription string
	CreatedDate              string
}

// Completed reports whether the transaction reached COMPLETED.
func (s TransactionStatus) Completed() bool {
	return s.Status == StatusCompleted
}
