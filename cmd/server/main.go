package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farmconnect/marketplace-gateway/internal/api"
	"github.com/farmconnect/marketplace-gateway/internal/api/handler"
	"github.com/farmconnect/marketplace-gateway/internal/core/service"
	mongodb "github.com/farmconnect/marketplace-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/farmconnect/marketplace-gateway/internal/infrastructure/db/redis"
	"github.com/farmconnect/marketplace-gateway/internal/infrastructure/marketapi"
	"github.com/farmconnect/marketplace-gateway/internal/infrastructure/queue"
	"github.com/farmconnect/marketplace-gateway/internal/pkg/config"
	"github.com/farmconnect/marketplace-gateway/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title                       Marketplace Gateway API
// @version                     1.0
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "marketplace-gateway",
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	events := mongodb.NewCartEventRepository(db)
	if err := events.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("cart event indexes failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	market := marketapi.New(marketapi.Config{
		BaseURL:          cfg.MarketAPI.BaseURL,
		Timeout:          cfg.MarketAPI.Timeout,
		AnalyticsTimeout: cfg.MarketAPI.AnalyticsTimeout,
		MaxRetryWait:     cfg.MarketAPI.MaxRetryWait,
	}, logger.Component("marketapi"))

	audit := queue.NewAuditDispatcher(cfg.Audit.Workers, events, logger.Component("audit"))
	audit.Start(context.WithoutCancel(ctx))

	sessions := service.NewSessionService(market, redisdb.NewSessionStore(rdb), cfg.Session.Secret, cfg.Session.TTL, logger.Component("session"))
	cart := service.NewCartService(
		market,
		redisdb.NewCartCache(rdb, 0),
		redisdb.NewLineLocker(rdb, 0),
		audit,
		sessions,
		logger.Component("cart"),
	)

	e := api.NewRouter(api.Dependencies{
		Sessions: sessions,
		Cart:     cart,
		History:  service.NewCartHistoryService(events),
		Trades:   service.NewTradeService(market, sessions, logger.Component("trades")),
		Catalog:  service.NewCatalogService(market, sessions, logger.Component("catalog")),
		Orders:   service.NewOrderService(market, sessions, logger.Component("orders")),
		Expenses: service.NewExpenseService(market, sessions, logger.Component("expenses")),
		Insights: service.NewInsightService(market, sessions, logger.Component("insights")),
		Guard:    service.NewAccessGuard(),
		Checks: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Cookie: handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure},
		Logger: logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("market_api", cfg.MarketAPI.BaseURL).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	audit.Close()
}
