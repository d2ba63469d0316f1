package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"donations/internal/adapter/repo"
	"donations/internal/domain"
	"donations/internal/donation"
	"donations/internal/http/handlers"
	httpapi "donations/internal/http/httpapi"
	"donations/internal/infra"
	"donations/internal/infra/geoip"
	"donations/internal/notify"
	"donations/internal/providers/pesapal"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	logger.Info().
		Str("environment", cfg.PesapalEnvironment).
		Str("base_url", cfg.PesapalBaseURL).
		Msg("pesapal configured")
	if cfg.PesapalIPNID == "" {
		logger.Warn().Msg("PESAPAL_IPN_ID is empty; orders will be submitted without an IPN registration")
	}

	gateway, err := pesapal.NewClient(pesapal.Options{
		BaseURL:        cfg.PesapalBaseURL,
		ConsumerKey:    cfg.PesapalConsumerKey,
		ConsumerSecret: cfg.PesapalConsumerSecret,
		Logger:         &logger,
		RequestTimeout: cfg.PesapalTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pesapal client")
	}

	countries, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open geoip database")
	}
	defer countries.Close()

	ctx := context.Background()
	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	svc, err := donation.NewService(donation.Options{
		Gateway:        gateway,
		Store:          store,
		Notifier:       openNotifier(cfg, logger),
		Countries:      countries,
		Logger:         logger,
		Currency:       cfg.Currency,
		CountryCode:    cfg.CountryCode,
		Description:    cfg.Description,
		NotificationID: cfg.PesapalIPNID,
		OrderIDPrefix:  cfg.OrderIDPrefix,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build donation service")
	}

	app := handlers.NewApp(svc, logger, cfg.PublicBaseURL)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (domain.OrderStore, func()) {
	switch cfg.OrderStore {
	case "postgres":
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		logger.Info().Msg("order store: postgres")
		return repo.NewDonationStatusRepository(infra.NewSQLRunner(pool, logger)), pool.Close
	case "redis":
		rdb, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("order store: redis")
		return repo.NewRedisStore(rdb, cfg.RedisTTL), func() { _ = rdb.Close() }
	default:
		logger.Info().Msg("order store: log")
		return repo.NewLogStore(logger), func() {}
	}
}

func openNotifier(cfg *infra.Config, logger zerolog.Logger) domain.Notifier {
	if cfg.Notifier != "resend" {
		return notify.NewLogNotifier(logger)
	}
	n, err := notify.NewResendNotifier(notify.ResendOptions{
		APIKey:  cfg.ResendAPIKey,
		BaseURL: cfg.ResendBaseURL,
		From:    cfg.NotifyFrom,
		To:      cfg.NotifyTo,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build resend notifier")
	}
	return n
}
