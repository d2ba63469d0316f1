package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS([]string{"*"}, "POST", "OPTIONS")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/process-donation", nil)
	req.Header.Set("Origin", "https://yusmile.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("preflight body should be empty, got %q", rr.Body.String())
	}
	if called {
		t.Fatalf("preflight must not reach the handler")
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
		t.Fatalf("allow-methods = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Fatalf("allow-headers = %q", got)
	}
}

func TestCORSAllowlist(t *testing.T) {
	h := CORS([]string{"https://yusmile.example"}, "POST", "OPTIONS")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	allowed := httptest.NewRequest(http.MethodPost, "/", nil)
	allowed.Header.Set("Origin", "https://yusmile.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, allowed)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://yusmile.example" {
		t.Fatalf("allow-origin = %q", got)
	}

	denied := httptest.NewRequest(http.MethodPost, "/", nil)
	denied.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, denied)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin %q for foreign origin", got)
	}
}
