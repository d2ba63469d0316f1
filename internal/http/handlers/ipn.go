package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"donations/internal/domain"
	"donations/internal/donation"
	"donations/internal/metrics"
)

const maxIPNBody = 64 << 10

// ipnTimeout bounds status lookup plus persistence once a notification has
// been accepted; it outlives the provider's connection.
const ipnTimeout = 45 * time.Second

const (
	outcomeMalformed donation.Outcome = "malformed"
	outcomePanicked  donation.Outcome = "panicked"
)

type ipnAck struct {
	Status string `json:"status"`
}

// NotificationFunc is a fallible IPN processing step.
type NotificationFunc func(r *http.Request) (donation.Outcome, error)

// Acknowledge turns op into a handler that always answers the provider with
// 200 {"status":"success"}. Pesapal retries notifications that are not
// acknowledged, so the outcome of op is only logged and counted.
func (a *App) Acknowledge(op NotificationFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		outcome, err := runNotification(op, r)
		metrics.Notifications.WithLabelValues(string(outcome)).Inc()

		logger := a.requestLogger(r)
		if err != nil {
			logger.Error().Err(err).Str("outcome", string(outcome)).Msg("IPN processing error")
		} else {
			logger.Info().Str("outcome", string(outcome)).Msg("IPN processed")
		}
		a.json(w, http.StatusOK, ipnAck{Status: "success"})
	}
}

func runNotification(op NotificationFunc, r *http.Request) (outcome donation.Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			outcome = outcomePanicked
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return op(r)
}

// ProcessIPN decodes the notification and hands it to the donation service.
func (a *App) ProcessIPN(r *http.Request) (donation.Outcome, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxIPNBody))
	if err != nil {
		return outcomeMalformed, fmt.Errorf("read ipn body: %w", err)
	}

	a.requestLogger(r).Info().
		RawJSON("body", jsonOrString(raw)).
		Interface("headers", r.Header).
		Time("timestamp", time.Now().UTC()).
		Msg("IPN received")

	var n domain.Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return outcomeMalformed, fmt.Errorf("decode ipn body: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), ipnTimeout)
	defer cancel()
	return a.Donations.HandleNotification(ctx, n)
}

func (a *App) requestLogger(r *http.Request) *zerolog.Logger {
	logger := zerolog.Ctx(r.Context())
	if logger.GetLevel() == zerolog.Disabled {
		return &a.Logger
	}
	return logger
}

// jsonOrString keeps a valid JSON body as-is in the log and quotes anything
// else.
func jsonOrString(raw []byte) []byte {
	if json.Valid(raw) {
		return raw
	}
	quoted, _ := json.Marshal(string(raw))
	return quoted
}
