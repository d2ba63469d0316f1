// Package donation runs the two payment flows: initiating a Pesapal checkout
// for a donor and reconciling the provider's IPN callbacks.
package donation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"donations/internal/domain"
	"donations/internal/providers/pesapal"
)

// Gateway is the subset of the payment provider API the flows depend on.
type Gateway interface {
	RequestToken(ctx context.Context) (string, error)
	SubmitOrder(ctx context.Context, token string, order pesapal.OrderRequest) (*pesapal.OrderResponse, error)
	GetTransactionStatus(ctx context.Context, token, orderTrackingID string) (*domain.TransactionStatus, error)
}

// CountryResolver maps a client IP to an ISO country code.
type CountryResolver interface {
	CountryOr(ip, fallback string) string
}

// Outcome classifies how a notification was handled.
type Outcome string

const (
	OutcomeIgnored      Outcome = "ignored"
	OutcomeLookupFailed Outcome = "lookup_failed"
	OutcomeStoreFailed  Outcome = "store_failed"
	OutcomeNotifyFailed Outcome = "notify_failed"
	OutcomeUpdated      Outcome = "updated"
	OutcomeConfirmed    Outcome = "confirmed"
)

// Options configures a Service.
type Options struct {
	Gateway        Gateway
	Store          domain.OrderStore
	Notifier       domain.Notifier
	Countries      CountryResolver
	Logger         zerolog.Logger
	Currency       string
	CountryCode    string
	Description    string
	NotificationID string
	OrderIDPrefix  string
	// Now is overridable for tests.
	Now func() time.Time
}

// Service implements donation initiation and IPN processing.
type Service struct {
	gateway        Gateway
	store          domain.OrderStore
	notifier       domain.Notifier
	countries      CountryResolver
	logger         zerolog.Logger
	currency       string
	countryCode    string
	description    string
	notificationID string
	orderIDPrefix  string
	now            func() time.Time
}

// NewService validates the collaborators and fills in defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Gateway == nil {
		return nil, errors.New("donation: gateway is required")
	}
	if opts.Store == nil {
		return nil, errors.New("donation: order store is required")
	}
	if opts.Notifier == nil {
		return nil, errors.New("donation: notifier is required")
	}
	s := &Service{
		gateway:        opts.Gateway,
		store:          opts.Store,
		notifier:       opts.Notifier,
		countries:      opts.Countries,
		logger:         opts.Logger,
		currency:       defaultString(opts.Currency, "UGX"),
		countryCode:    defaultString(opts.CountryCode, "UG"),
		description:    defaultString(opts.Description, "Donation"),
		notificationID: opts.NotificationID,
		orderIDPrefix:  defaultString(opts.OrderIDPrefix, "YUSMILE"),
		now:            opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// InitiateRequest is the donor input plus the request context needed to
// build callback URLs.
type InitiateRequest struct {
	Donation domain.DonationRequest
	// Origin is the site root the provider redirects back to.
	Origin   string
	ClientIP string
}

// Initiate validates the donation, obtains a token and submits the order.
func (s *Service) Initiate(ctx context.Context, req InitiateRequest) (*domain.Checkout, error) {
	if err := req.Donation.Validate(); err != nil {
		return nil, err
	}
	origin := strings.TrimRight(strings.TrimSpace(req.Origin), "/")

	token, err := s.gateway.RequestToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("request token: %w", err)
	}

	donor := req.Donation.Donor
	order := pesapal.OrderRequest{
		ID:              s.NewMerchantReference(),
		Currency:        s.currency,
		Amount:          pesapal.AmountFromDecimal(req.Donation.Amount),
		Description:     s.description,
		CallbackURL:     origin + "/donation-success.html",
		CancellationURL: origin + "/donation-cancelled.html",
		NotificationID:  s.notificationID,
		BillingAddress: pesapal.BillingAddress{
			EmailAddress: strings.TrimSpace(donor.Email),
			PhoneNumber:  strings.TrimSpace(donor.Phone),
			CountryCode:  s.country(req.ClientIP),
			FirstName:    donor.FirstName(),
			LastName:     donor.LastName(),
		},
	}

	s.logger.Info().
		Str("merchant_reference", order.ID).
		Str("amount", req.Donation.Amount.String()).
		Str("donor", donor.Name).
		Str("email", donor.Email).
		Msg("processing donation")

	resp, err := s.gateway.SubmitOrder(ctx, token, order)
	if err != nil {
		return nil, fmt.Errorf("submit order %s: %w", order.ID, err)
	}
	return &domain.Checkout{
		RedirectURL:       resp.RedirectURL,
		OrderTrackingID:   resp.OrderTrackingID,
		MerchantReference: order.ID,
	}, nil
}

// NewMerchantReference returns `<prefix>-<unix millis>`.
func (s *Service) NewMerchantReference() string {
	return s.orderIDPrefix + "-" + strconv.FormatInt(s.now().UnixMilli(), 10)
}

func (s *Service) country(ip string) string {
	if s.countries == nil || ip == "" {
		return s.countryCode
	}
	return s.countries.CountryOr(ip, s.countryCode)
}

// HandleNotification refreshes the order status for CHANGE notifications,
// persists it and confirms completed payments. The error is informational;
// callers acknowledge the provider regardless.
func (s *Service) HandleNotification(ctx context.Context, n domain.Notification) (Outcome, error) {
	if !n.Actionable() {
		return OutcomeIgnored, nil
	}
	trackingID := strings.TrimSpace(n.OrderTrackingID)

	status, err := s.lookupStatus(ctx, trackingID)
	if err != nil {
		return OutcomeLookupFailed, err
	}

	if err := s.store.UpdateStatus(ctx, trackingID, *status); err != nil {
		return OutcomeStoreFailed, fmt.Errorf("%w: %s: %w", domain.ErrStore, trackingID, err)
	}
	if !status.Completed() {
		return OutcomeUpdated, nil
	}
	if err := s.notifier.SendConfirmation(ctx, trackingID, *status); err != nil {
		return OutcomeNotifyFailed, fmt.Errorf("%w: %s: %w", domain.ErrNotify, trackingID, err)
	}
	return OutcomeConfirmed, nil
}

func (s *Service) lookupStatus(ctx context.Context, trackingID string) (*domain.TransactionStatus, error) {
	token, err := s.gateway.RequestToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: token for %s: %w", domain.ErrUpstreamStatus, trackingID, err)
	}
	status, err := s.gateway.GetTransactionStatus(ctx, token, trackingID)
	if err != nil {
		return nil, fmt.Errorf("status of %s: %w", trackingID, err)
	}
	if status == nil {
		return nil, fmt.Errorf("%w: empty status for %s", domain.ErrUpstreamStatus, trackingID)
	}
	return status, nil
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
