package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"donations/internal/domain"
	"donations/internal/donation"
	"donations/internal/metrics"
	"donations/internal/middleware"
	"donations/internal/providers/pesapal"
)

const maxDonationBody = 16 << 10

type donationRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Name   string          `json:"name"`
	Email  string          `json:"email"`
	Phone  string          `json:"phone"`
}

type donationResponse struct {
	Success           bool   `json:"success"`
	RedirectURL       string `json:"redirect_url"`
	OrderID           string `json:"order_id"`
	MerchantReference string `json:"merchant_reference"`
	Message           string `json:"message"`
}

type donationError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

// ProcessDonation starts a Pesapal checkout and returns the redirect URL.
func (a *App) ProcessDonation(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDonationBody)).Decode(&req); err != nil {
		metrics.Initiations.WithLabelValues("invalid").Inc()
		a.json(w, http.StatusBadRequest, donationError{Error: "Invalid donation request", Details: "invalid payload"})
		return
	}

	checkout, err := a.Donations.Initiate(r.Context(), donation.InitiateRequest{
		Donation: domain.DonationRequest{
			Amount: req.Amount,
			Donor:  domain.Donor{Name: req.Name, Email: req.Email, Phone: req.Phone},
		},
		Origin:   a.origin(r),
		ClientIP: middleware.ClientIP(r),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			metrics.Initiations.WithLabelValues("invalid").Inc()
			a.json(w, http.StatusBadRequest, donationError{Error: "Invalid donation request", Details: errorDetails(err)})
			return
		}
		metrics.Initiations.WithLabelValues("failed").Inc()
		a.requestLogger(r).Error().Err(err).Msg("pesapal error")
		a.json(w, http.StatusInternalServerError, donationError{Error: "Payment processing failed", Details: errorDetails(err)})
		return
	}

	metrics.Initiations.WithLabelValues("ok").Inc()
	a.json(w, http.StatusOK, donationResponse{
		Success:           true,
		RedirectURL:       checkout.RedirectURL,
		OrderID:           checkout.OrderTrackingID,
		MerchantReference: checkout.MerchantReference,
		Message:           "Redirecting to Pesapal...",
	})
}

// origin picks the site root for callback URLs: the Origin header, then the
// configured public URL, then the request's own scheme and host.
func (a *App) origin(r *http.Request) string {
	if o := strings.TrimSpace(r.Header.Get("Origin")); o != "" && o != "null" {
		return o
	}
	if a.PublicBaseURL != "" {
		return a.PublicBaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + r.Host
}

func errorDetails(err error) string {
	var apiErr *pesapal.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return strings.Join(verr.Problems, ", ")
	}
	return err.Error()
}
