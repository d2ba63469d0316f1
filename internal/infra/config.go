package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
)

// Pesapal API roots per environment.
const (
	PesapalDemoURL = "https://cybqa.pesapal.com/pesapalv3"
	PesapalLiveURL = "https://pay.pesapal.com/v3"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	Port          string
	StaticDir     string
	PublicBaseURL string

	PesapalConsumerKey    string
	PesapalConsumerSecret string
	PesapalEnvironment    string
	PesapalBaseURL        string
	PesapalIPNID          string
	PesapalTimeout        time.Duration

	Currency      string
	CountryCode   string
	Description   string
	OrderIDPrefix string

	CORSAllowedOrigins []string
	RateLimitPerMin    int
	TrustedProxyHops   int

	OrderStore    string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	Notifier      string
	ResendAPIKey  string
	ResendBaseURL string
	NotifyFrom    string
	NotifyTo      []string

	GeoIPDBPath string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "3000"),
		StaticDir:     getEnv("STATIC_DIR", "public"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),

		PesapalConsumerKey:    os.Getenv("PESAPAL_CONSUMER_KEY"),
		PesapalConsumerSecret: os.Getenv("PESAPAL_CONSUMER_SECRET"),
		PesapalEnvironment:    strings.ToLower(getEnv("PESAPAL_ENVIRONMENT", "demo")),
		PesapalIPNID:          os.Getenv("PESAPAL_IPN_ID"),
		PesapalTimeout:        time.Second * time.Duration(getEnvInt("PESAPAL_TIMEOUT_SECONDS", 30)),

		Currency:      strings.ToUpper(getEnv("DONATION_CURRENCY", "UGX")),
		CountryCode:   strings.ToUpper(getEnv("DONATION_COUNTRY_CODE", "UG")),
		Description:   getEnv("DONATION_DESCRIPTION", "Donation to YuSmile Uganda"),
		OrderIDPrefix: getEnv("ORDER_ID_PREFIX", "YUSMILE"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		TrustedProxyHops:   getEnvInt("TRUSTED_PROXY_HOPS", 0),

		OrderStore:    strings.ToLower(getEnv("ORDER_STORE", "log")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisTTL:      time.Hour * time.Duration(getEnvInt("REDIS_TTL_HOURS", 24*30)),

		Notifier:      strings.ToLower(getEnv("NOTIFIER", "log")),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		ResendBaseURL: getEnv("RESEND_BASE_URL", "https://api.resend.com"),
		NotifyFrom:    getEnv("NOTIFY_FROM", "YuSmile Uganda <donations@yusmileuganda.org>"),
		NotifyTo:      getEnvList("NOTIFY_TO", nil),

		GeoIPDBPath: os.Getenv("GEOIP_DB_PATH"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.PesapalConsumerKey == "" || cfg.PesapalConsumerSecret == "" {
		return nil, fmt.Errorf("PESAPAL_CONSUMER_KEY and PESAPAL_CONSUMER_SECRET are required")
	}

	switch cfg.PesapalEnvironment {
	case "demo":
		cfg.PesapalBaseURL = PesapalDemoURL
	case "live":
		cfg.PesapalBaseURL = PesapalLiveURL
	default:
		return nil, fmt.Errorf("PESAPAL_ENVIRONMENT must be demo or live, got %q", cfg.PesapalEnvironment)
	}
	if override := strings.TrimRight(os.Getenv("PESAPAL_BASE_URL"), "/"); override != "" {
		cfg.PesapalBaseURL = override
	}

	if cfg.TrustedProxyHops < 0 {
		return nil, fmt.Errorf("TRUSTED_PROXY_HOPS must not be negative, got %d", cfg.TrustedProxyHops)
	}

	if _, err := currency.ParseISO(cfg.Currency); err != nil {
		return nil, fmt.Errorf("DONATION_CURRENCY %q is not an ISO 4217 code: %w", cfg.Currency, err)
	}

	switch cfg.OrderStore {
	case "log", "redis":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when ORDER_STORE=postgres")
		}
	default:
		return nil, fmt.Errorf("ORDER_STORE must be log, postgres or redis, got %q", cfg.OrderStore)
	}

	switch cfg.Notifier {
	case "log":
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is required when NOTIFIER=resend")
		}
		if len(cfg.NotifyTo) == 0 {
			return nil, fmt.Errorf("NOTIFY_TO is required when NOTIFIER=resend")
		}
	default:
		return nil, fmt.Errorf("NOTIFIER must be log or resend, got %q", cfg.Notifier)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
