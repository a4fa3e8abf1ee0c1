package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"food-storefront/bot"
	"food-storefront/config"
	"food-storefront/db"
	"food-storefront/kv"
	"food-storefront/metrics"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(ctx, cfg)
		return
	}

	if cfg.Telegram.Token == "" {
		log.Fatal("TOKEN not set")
	}

	if err := db.Init(ctx, cfg.DB); err != nil {
		log.WithError(err).Fatal("db")
	}
	defer db.Close()

	// Set AUTO_MIGRATE=1 (or "true") to apply migrations on startup.
	if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
		if err := applyMigrations(ctx, false); err != nil {
			log.WithError(err).Fatal("migrate")
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("kv")
	}

	if cfg.Metrics.Addr != "" {
		go metrics.Serve(ctx, cfg.Metrics.Addr)
	}

	b, err := bot.New(cfg, store)
	if err != nil {
		log.WithError(err).Fatal("bot")
	}

	log.WithField("kv_backend", cfg.Storage.Backend).Info("bot started")
	b.Start(ctx)
	log.Info("bot stopped")
}

func openStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		return kv.NewPostgres(db.Pool), nil
	case config.BackendRedis:
		client, err := kv.DialRedis(cfg.Storage.RedisAddr, cfg.Storage.RedisPassword)
		if err != nil {
			return nil, err
		}
		return kv.NewRedis(client, "storefront:"), nil
	case config.BackendMemory:
		log.Warn("memory kv backend: carts and settings are lost on restart")
		return kv.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown KV_BACKEND %q", cfg.Storage.Backend)
}

func runMigrate(ctx context.Context, cfg *config.Config) {
	if err := db.Init(ctx, cfg.DB); err != nil {
		log.WithError(err).Fatal("db")
	}
	defer db.Close()

	if err := applyMigrations(ctx, true); err != nil {
		log.WithError(err).Fatal("migrate")
	}
}
