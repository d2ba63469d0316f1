package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"donations/internal/domain"
	"donations/internal/donation"
	"donations/internal/http/handlers"
	"donations/internal/infra"
	"donations/internal/providers/pesapal"
)

type nopStore struct{}

func (nopStore) UpdateStatus(context.Context, string, domain.TransactionStatus) error { return nil }

type nopNotifier struct{}

func (nopNotifier) SendConfirmation(context.Context, string, domain.TransactionStatus) error {
	return nil
}

type unusedGateway struct{}

func (unusedGateway) RequestToken(context.Context) (string, error) {
	return "", domain.ErrUpstreamAuth
}

func (unusedGateway) SubmitOrder(context.Context, string, pesapal.OrderRequest) (*pesapal.OrderResponse, error) {
	return nil, domain.ErrUpstreamOrder
}

func (unusedGateway) GetTransactionStatus(context.Context, string, string) (*domain.TransactionStatus, error) {
	return nil, domain.ErrUpstreamStatus
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "donation-success.html"), []byte("thank you"), 0o644); err != nil {
		t.Fatalf("write static file: %v", err)
	}
	svc, err := donation.NewService(donation.Options{
		Gateway:  unusedGateway{},
		Store:    nopStore{},
		Notifier: nopNotifier{},
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	cfg := &infra.Config{
		StaticDir:          static,
		CORSAllowedOrigins: []string{"*"},
		RateLimitPerMin:    100,
	}
	return NewRouter(handlers.NewApp(svc, zerolog.Nop(), ""), cfg, zerolog.Nop())
}

func TestRouterPreflight(t *testing.T) {
	router := newTestRouter(t)
	tests := []struct {
		path    string
		methods string
	}{
		{path: "/api/process-donation", methods: "POST, OPTIONS"},
		{path: "/api/pesapal-ipn", methods: "GET, POST, OPTIONS"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, tc.path, nil))
			if rr.Code != http.StatusOK || rr.Body.Len() != 0 {
				t.Fatalf("preflight = %d %q", rr.Code, rr.Body.String())
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Fatalf("allow-origin = %q", got)
			}
			if got := rr.Header().Get("Access-Control-Allow-Methods"); got != tc.methods {
				t.Fatalf("allow-methods = %q, want %q", got, tc.methods)
			}
		})
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t)
	for _, path := range []string{"/api/process-donation", "/api/pesapal-ipn"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("GET %s = %d, want 405", path, rr.Code)
		}
		if body := strings.TrimSpace(rr.Body.String()); body != `{"error":"Method not allowed"}` {
			t.Fatalf("GET %s body = %q", path, body)
		}
	}
}

func TestRouterIPNAcknowledgesUpstreamFailure(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/pesapal-ipn", strings.NewReader(`{"OrderTrackingId":"OT-1","OrderNotificationType":"CHANGE"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != `{"status":"success"}` {
		t.Fatalf("body = %q", body)
	}
}

func TestRouterStaticAndProbes(t *testing.T) {
	router := newTestRouter(t)
	tests := []struct {
		path     string
		wantCode int
		contains string
	}{
		{path: "/health", wantCode: http.StatusOK, contains: "OK"},
		{path: "/api", wantCode: http.StatusOK, contains: "Hello from Render!"},
		{path: "/donation-success.html", wantCode: http.StatusOK, contains: "thank you"},
		{path: "/missing.html", wantCode: http.StatusNotFound},
		{path: "/metrics", wantCode: http.StatusOK, contains: "go_goroutines"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rr.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantCode)
			}
			if tc.contains != "" && !strings.Contains(rr.Body.String(), tc.contains) {
				t.Fatalf("body %q does not contain %q", rr.Body.String(), tc.contains)
			}
		})
	}
}
