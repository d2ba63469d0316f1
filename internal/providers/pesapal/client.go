package pesapal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"donations/internal/domain"
	"donations/internal/metrics"
)

// Operation names used in errors, logs and metrics.
const (
	OpRequestToken = "request_token"
	OpSubmitOrder  = "submit_order"
	OpGetStatus    = "get_transaction_status"
)

// ErrMissingCredentials indicates that the client was configured without a
// consumer key/secret pair.
var ErrMissingCredentials = errors.New("pesapal: consumer key and secret are required")

// APIError describes a failed provider call. It unwraps to the domain
// sentinel of the failing step.
type APIError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("pesapal: ")
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.kind }

// Options configures the Pesapal v3 client.
type Options struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	HTTPClient     *http.Client
	Logger         *zerolog.Logger
	RequestTimeout time.Duration
}

// Client performs the token, order and status calls of the Pesapal v3 API.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	logger         zerolog.Logger
}

// NewClient constructs a client with defaults for unset options.
func NewClient(opts Options) (*Client, error) {
	key := strings.TrimSpace(opts.ConsumerKey)
	secret := strings.TrimSpace(opts.ConsumerSecret)
	if key == "" || secret == "" {
		return nil, ErrMissingCredentials
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("pesapal: base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("pesapal: invalid base url: %w", err)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		baseURL:        baseURL,
		consumerKey:    key,
		consumerSecret: secret,
		httpClient:     httpClient,
		logger:         logger.With().Str("component", "pesapal").Logger(),
	}, nil
}

// BaseURL returns the API root in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestToken exchanges the consumer key/secret for a bearer token.
func (c *Client) RequestToken(ctx context.Context) (token string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProviderCall(OpRequestToken, err, time.Since(start)) }()

	var out tokenResponse
	body := tokenRequest{ConsumerKey: c.consumerKey, ConsumerSecret: c.consumerSecret}
	if err := c.do(ctx, OpRequestToken, domain.ErrUpstreamAuth, http.MethodPost, "/api/Auth/RequestToken", "", body, &out); err != nil {
		return "", err
	}
	if out.Error.present() {
		return "", &APIError{Op: OpRequestToken, Code: out.Error.Code, Message: out.Error.Message, kind: domain.ErrUpstreamAuth}
	}
	if strings.TrimSpace(out.Token) == "" {
		msg := out.Message
		if msg == "" {
			msg = "empty token"
		}
		return "", &APIError{Op: OpRequestToken, Message: msg, kind: domain.ErrUpstreamAuth}
	}
	c.logger.Debug().Str("expiry", out.ExpiryDate).Msg("token issued")
	return out.Token, nil
}

// SubmitOrder registers an order and returns the checkout redirect.
func (c *Client) SubmitOrder(ctx context.Context, token string, order OrderRequest) (resp *OrderResponse, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProviderCall(OpSubmitOrder, err, time.Since(start)) }()

	var out OrderResponse
	if err := c.do(ctx, OpSubmitOrder, domain.ErrUpstreamOrder, http.MethodPost, "/api/Transactions/SubmitOrderRequest", token, order, &out); err != nil {
		return nil, err
	}
	if out.Error.present() {
		return nil, &APIError{Op: OpSubmitOrder, Code: out.Error.Code, Message: out.Error.Message, kind: domain.ErrUpstreamOrder}
	}
	if strings.TrimSpace(out.RedirectURL) == "" {
		return nil, &APIError{Op: OpSubmitOrder, Message: "empty redirect url", kind: domain.ErrUpstreamOrder}
	}
	c.logger.Info().
		Str("merchant_reference", order.ID).
		Str("order_tracking_id", out.OrderTrackingID).
		Msg("order submitted")
	return &out, nil
}

// GetTransactionStatus fetches the authoritative state of an order.
func (c *Client) GetTransactionStatus(ctx context.Context, token, orderTrackingID string) (status *domain.TransactionStatus, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProviderCall(OpGetStatus, err, time.Since(start)) }()

	path := "/api/Transactions/GetTransactionStatus?orderTrackingId=" + url.QueryEscape(orderTrackingID)
	var out statusResponse
	if err := c.do(ctx, OpGetStatus, domain.ErrUpstreamStatus, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	if out.Error.present() {
		return nil, &APIError{Op: OpGetStatus, Code: out.Error.Code, Message: out.Error.Message, kind: domain.ErrUpstreamStatus}
	}
	result := out.toDomain()
	return &result, nil
}

func (c *Client) do(ctx context.Context, op string, kind error, method, path, token string, in, out any) error {
	var reader io.Reader
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("pesapal: encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("pesapal: build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Op: op, Message: err.Error(), kind: kind}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: "read response: " + err.Error(), kind: kind}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, kind: kind}
		var fault struct {
			Error   *apiFault `json:"error"`
			Message string    `json:"message"`
		}
		if err := json.Unmarshal(raw, &fault); err == nil {
			if fault.Error.present() {
				apiErr.Code = fault.Error.Code
				apiErr.Message = fault.Error.Message
			} else {
				apiErr.Message = fault.Message
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		c.logger.Warn().Str("op", op).Int("status", resp.StatusCode).Msg(apiErr.Message)
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: "decode response: " + err.Error(), kind: kind}
	}
	return nil
}
