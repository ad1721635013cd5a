package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/domeo-backend/internal/config"
	"github.com/Spok95/domeo-backend/internal/domain/catalog"
	"github.com/Spok95/domeo-backend/internal/domain/pricelist"
	"github.com/Spok95/domeo-backend/internal/domain/pricing"
	"github.com/Spok95/domeo-backend/internal/domain/resolver"
	"github.com/Spok95/domeo-backend/internal/httpapi"
	"github.com/Spok95/domeo-backend/internal/infra/db"
	httpx "github.com/Spok95/domeo-backend/internal/infra/http"
	"github.com/Spok95/domeo-backend/internal/infra/logger"
	"github.com/Spok95/domeo-backend/internal/infra/metrics"
	"github.com/Spok95/domeo-backend/internal/infra/notify"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/subosito/gotenv"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	repo := catalog.NewRepo(pool)

	groups, err := repo.LoadGroups(ctx, cfg.Catalog.Category)
	if err != nil {
		log.Error("load price groups failed", "err", err)
		return
	}
	log.Info("price groups loaded", "count", len(groups))

	tg, err := notify.New(cfg.Telegram.Token, cfg.Telegram.AdminChatID)
	if err != nil {
		// Уведомления не критичны для работы сервиса
		log.Warn("telegram notifier disabled", "err", err)
		tg = nil
	}

	env := &httpapi.Env{
		Resolver: resolver.New(repo, cfg.Catalog.Category),
		Engine:   pricing.New(repo, groups, cfg.Catalog.Category),
		Importer: pricelist.New(repo, cfg.Catalog.Category, log),
		Store:    repo,
		Notify:   tg,
		Metrics:  metrics.New(prometheus.DefaultRegisterer),
		Log:      log,
		Category: cfg.Catalog.Category,
		Currency: cfg.Catalog.Currency,
	}

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, env.Routes())
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
