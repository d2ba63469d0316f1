package infra

import "testing"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PESAPAL_CONSUMER_KEY", "key")
	t.Setenv("PESAPAL_CONSUMER_SECRET", "secret")
	t.Setenv("PESAPAL_ENVIRONMENT", "")
	t.Setenv("PESAPAL_BASE_URL", "")
	t.Setenv("ORDER_STORE", "")
	t.Setenv("NOTIFIER", "")
	t.Setenv("DONATION_CURRENCY", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PesapalBaseURL != PesapalDemoURL {
		t.Fatalf("PesapalBaseURL = %q, want %q", cfg.PesapalBaseURL, PesapalDemoURL)
	}
	if cfg.Port != "3000" {
		t.Fatalf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.Currency != "UGX" {
		t.Fatalf("Currency = %q, want UGX", cfg.Currency)
	}
	if cfg.OrderStore != "log" || cfg.Notifier != "log" {
		t.Fatalf("store/notifier = %q/%q, want log/log", cfg.OrderStore, cfg.Notifier)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("CORSAllowedOrigins = %#v, want [*]", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigRequiresCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PESAPAL_CONSUMER_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when consumer secret is missing")
	}
}

func TestLoadConfigSelectsLiveEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PESAPAL_ENVIRONMENT", "LIVE")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PesapalBaseURL != PesapalLiveURL {
		t.Fatalf("PesapalBaseURL = %q, want %q", cfg.PesapalBaseURL, PesapalLiveURL)
	}
}

func TestLoadConfigHonorsBaseURLOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PESAPAL_BASE_URL", "http://localhost:9999/pesapal/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PesapalBaseURL != "http://localhost:9999/pesapal" {
		t.Fatalf("PesapalBaseURL = %q", cfg.PesapalBaseURL)
	}
}

func TestLoadConfigRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown environment", env: map[string]string{"PESAPAL_ENVIRONMENT": "staging"}},
		{name: "bad currency", env: map[string]string{"DONATION_CURRENCY": "XYZQ"}},
		{name: "postgres without url", env: map[string]string{"ORDER_STORE": "postgres", "DATABASE_URL": ""}},
		{name: "unknown store", env: map[string]string{"ORDER_STORE": "sqlite"}},
		{name: "resend without key", env: map[string]string{"NOTIFIER": "resend", "RESEND_API_KEY": ""}},
		{name: "resend without recipients", env: map[string]string{"NOTIFIER": "resend", "RESEND_API_KEY": "re_123", "NOTIFY_TO": ""}},
		{name: "negative proxy hops", env: map[string]string{"TRUSTED_PROXY_HOPS": "-1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected LoadConfig error")
			}
		})
	}
}

func TestLoadConfigParsesLists(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://yusmile.org, ,https://www.yusmile.org ")
	t.Setenv("NOTIFIER", "resend")
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("NOTIFY_TO", "ops@example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := []string{"https://yusmile.org", "https://www.yusmile.org"}
	if len(cfg.CORSAllowedOrigins) != len(expected) {
		t.Fatalf("CORSAllowedOrigins = %#v, want %#v", cfg.CORSAllowedOrigins, expected)
	}
	for i, origin := range expected {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
	if len(cfg.NotifyTo) != 1 || cfg.NotifyTo[0] != "ops@example.com" {
		t.Fatalf("NotifyTo = %#v", cfg.NotifyTo)
	}
}
