package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Benjamindyer/brand-influencer-sub001/internal/billing"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/config"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/credits"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/httpapi"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/identity"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/market"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/obs"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/role"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/store/pg"
	"github.com/Benjamindyer/brand-influencer-sub001/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLogger := obs.Logger()
		bootLogger.Fatal().Err(err).Msg("configuration")
	}

	logger := obs.InitLogger(obs.LogOptions{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})
	obs.Init()
	obs.InitBuildInfo(version, commit)

	// Identity provider chain: local JWT verification when a secret is
	// configured, the hosted provider behind it for sign-out and resets.
	var provider identity.Provider
	if cfg.Auth.ProviderURL != "" {
		p, err := identity.NewHTTPProvider(cfg.Auth.ProviderURL, cfg.Auth.ProviderKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("auth provider")
		}
		provider = p
	}
	if cfg.Auth.JWTSecret != "" {
		p, err := identity.NewTokenProvider(cfg.Auth.JWTSecret, provider)
		if err != nil {
			logger.Fatal().Err(err).Msg("token verifier")
		}
		provider = p
	}
	resolver, err := identity.NewResolver(provider)
	if err != nil {
		logger.Fatal().Err(err).Msg("identity resolver")
	}

	var (
		db          *sql.DB
		marketStore market.Store
		ledger      credits.Ledger
		roles       role.Store
	)
	if cfg.PostgresDSN != "" {
		pgStore, err := pg.Open(cfg.PostgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("open postgres")
		}
		defer pgStore.Close()
		db = pgStore.DB()
		marketStore = pgStore

		ledger, err = credits.NewPG(db)
		if err != nil {
			logger.Fatal().Err(err).Msg("credit ledger")
		}
		roles, err = role.NewPGStore(db)
		if err != nil {
			logger.Fatal().Err(err).Msg("role store")
		}
	} else {
		logger.Warn().Msg("MKT_PG_DSN not set; running on in-memory stores")
		mem := market.NewMemoryStore()
		marketStore = mem
		ledger = credits.NewInMemory()
		roles = market.NewRoleDirectory(mem)
	}

	events := stream.New()
	svc, err := market.NewService(marketStore, ledger, events)
	if err != nil {
		logger.Fatal().Err(err).Msg("market service")
	}

	var renewer *billing.Renewer
	if cfg.Billing.Tier1PriceID != "" || cfg.Billing.Tier2PriceID != "" || cfg.Billing.Tier3PriceID != "" {
		prices := billing.NewPriceMap(cfg.Billing.Tier1PriceID, cfg.Billing.Tier2PriceID, cfg.Billing.Tier3PriceID)
		renewer, err = billing.NewRenewer(prices, ledger)
		if err != nil {
			logger.Fatal().Err(err).Msg("billing renewer")
		}
	} else {
		logger.Warn().Msg("no billing price ids configured; billing endpoints disabled")
	}

	api := httpapi.New(httpapi.Deps{
		Resolver: resolver,
		Roles:    roles,
		Market:   svc,
		Ledger:   ledger,
		Renewer:  renewer,
		Events:   events,
		Ready:    httpapi.ReadyProbe{DB: db},
		Version:  version,
	})
	handler := httpapi.RateLimit(api.Handler(), cfg.RateBurst, cfg.RatePerSec)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Str("env", cfg.Env).
		Str("version", version).
		Msg("starting marketplace-api")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()
	obs.SetReady(true)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	obs.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info().Msg("stopped")
}
