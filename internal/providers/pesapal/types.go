package pesapal

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"donations/internal/domain"
)

// OrderRequest is the SubmitOrderRequest payload.
type OrderRequest struct {
	ID              string         `json:"id"`
	Currency        string         `json:"currency"`
	Amount          json.Number    `json:"amount"`
	Description     string         `json:"description"`
	CallbackURL     string         `json:"callback_url"`
	CancellationURL string         `json:"cancellation_url,omitempty"`
	NotificationID  string         `json:"notification_id"`
	BillingAddress  BillingAddress `json:"billing_address"`
}

// BillingAddress carries the donor contact fields Pesapal shows on checkout.
type BillingAddress struct {
	EmailAddress string `json:"email_address,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name"`
}

// OrderResponse is the subset of the SubmitOrderRequest answer used here.
type OrderResponse struct {
	OrderTrackingID   string    `json:"order_tracking_id"`
	MerchantReference string    `json:"merchant_reference"`
	RedirectURL       string    `json:"redirect_url"`
	Error             *apiFault `json:"error"`
}

// AmountFromDecimal renders a decimal amount as a JSON number literal.
func AmountFromDecimal(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

type tokenRequest struct {
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
}

type tokenResponse struct {
	Token      string    `json:"token"`
	ExpiryDate string    `json:"expiryDate"`
	Error      *apiFault `json:"error"`
	Message    string    `json:"message"`
}

type statusResponse struct {
	PaymentMethod            string          `json:"payment_method"`
	Amount                   decimal.Decimal `json:"amount"`
	CreatedDate              string          `json:"created_date"`
	ConfirmationCode         string          `json:"confirmation_code"`
	PaymentStatusDescription string          `json:"payment_status_description"`
	Description              string          `json:"description"`
	Message                  string          `json:"message"`
	PaymentAccount           string          `json:"payment_account"`
	StatusCode               *int            `json:"status_code"`
	MerchantReference        string          `json:"merchant_reference"`
	Currency                 string          `json:"currency"`
	Status                   flexString      `json:"status"`
	Error                    *apiFault       `json:"error"`
}

// apiFault is the error object Pesapal embeds in otherwise 2xx bodies.
type apiFault struct {
	ErrorType string `json:"error_type"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func (f *apiFault) present() bool {
	return f != nil && (f.Code != "" || f.Message != "")
}

var statusCodeNames = map[int]string{
	0: domain.StatusInvalid,
	1: domain.StatusCompleted,
	2: domain.StatusFailed,
	3: domain.StatusReversed,
}

// toDomain normalizes the transaction state. Pesapal v3 reports the call
// result (e.g. "200") in `status`; the state then comes from
// payment_status_description or status_code.
func (s statusResponse) toDomain() domain.TransactionStatus {
	return domain.TransactionStatus{
		Status:                   normalizeStatus(s),
		PaymentMethod:            s.PaymentMethod,
		Amount:                   s.Amount,
		Currency:                 s.Currency,
		ConfirmationCode:         s.ConfirmationCode,
		MerchantReference:        s.MerchantReference,
		Description:              s.Description,
		StatusCode:               s.statusCode(),
		PaymentStatusDescription: s.PaymentStatusDescription,
		CreatedDate:              s.CreatedDate,
	}
}

func normalizeStatus(s statusResponse) string {
	if v := knownStatus(string(s.Status)); v != "" {
		return v
	}
	if v := knownStatus(s.PaymentStatusDescription); v != "" {
		return v
	}
	// A missing status_code must not read as 0 (INVALID).
	if s.StatusCode != nil {
		if name, ok := statusCodeNames[*s.StatusCode]; ok {
			return name
		}
	}
	return strings.ToUpper(strings.TrimSpace(string(s.Status)))
}

func (s statusResponse) statusCode() int {
	if s.StatusCode == nil {
		return -1
	}
	return *s.StatusCode
}

func knownStatus(v string) string {
	switch up := strings.ToUpper(strings.TrimSpace(v)); up {
	case domain.StatusPending, domain.StatusCompleted, domain.StatusFailed, domain.StatusReversed, domain.StatusInvalid:
		return up
	}
	return ""
}

func (f *apiFault) String() string {
	if f == nil {
		return ""
	}
	if f.Code != "" && f.Message != "" {
		return fmt.Sprintf("%s (%s)", f.Message, f.Code)
	}
	if f.Message != "" {
		return f.Message
	}
	return f.Code
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("pesapal: status is neither string nor number: %s", data)
	}
	*f = flexString(n.String())
	return nil
}
