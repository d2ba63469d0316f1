package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"donations/internal/domain"
)

// ResendOptions configures the Resend e-mail notifier.
type ResendOptions struct {
	APIKey     string
	BaseURL    string
	From       string
	To         []string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// ResendNotifier sends donation confirmations through the Resend HTTP API.
type ResendNotifier struct {
	apiKey     string
	baseURL    string
	from       string
	to         []string
	httpClient *http.Client
	logger     zerolog.Logger
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func NewResendNotifier(opts ResendOptions) (*ResendNotifier, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("resend: api key is required")
	}
	if len(opts.To) == 0 {
		return nil, errors.New("resend: at least one recipient is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &ResendNotifier{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		from:       opts.From,
		to:         opts.To,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (n *ResendNotifier) SendConfirmation(ctx context.Context, orderTrackingID string, status domain.TransactionStatus) error {
	email := resendEmail{
		From:    n.from,
		To:      n.to,
		Subject: "Thank you for your donation!",
		HTML:    confirmationHTML(orderTrackingID, status),
	}
	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("resend: encode email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("resend: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("resend: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var sent struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &sent)
	n.logger.Info().Str("order_id", orderTrackingID).Str("email_id", sent.ID).Msg("confirmation email sent")
	return nil
}

func confirmationHTML(orderTrackingID string, status domain.TransactionStatus) string {
	var b strings.Builder
	b.WriteString("<h1>Thank you for your donation!</h1>")
	fmt.Fprintf(&b, "<p>Amount: %s %s</p>", html.EscapeString(status.Amount.StringFixed(2)), html.EscapeString(status.Currency))
	if status.PaymentMethod != "" {
		fmt.Fprintf(&b, "<p>Payment method: %s</p>", html.EscapeString(status.PaymentMethod))
	}
	if status.ConfirmationCode != "" {
		fmt.Fprintf(&b, "<p>Confirmation code: %s</p>", html.EscapeString(status.ConfirmationCode))
	}
	fmt.Fprintf(&b, "<p>Reference: %s</p>", html.EscapeString(orderTrackingID))
	return b.String()
}

var _ domain.Notifier = (*ResendNotifier)(nil)
