package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/buzzware/cash/internal/auth"
	"github.com/buzzware/cash/internal/config"
	"github.com/buzzware/cash/internal/ledger"
	"github.com/buzzware/cash/internal/middleware"
	"github.com/buzzware/cash/internal/notify"
	"github.com/buzzware/cash/internal/rates"
	"github.com/buzzware/cash/internal/server"
	"github.com/buzzware/cash/internal/service"
	"github.com/buzzware/cash/internal/storage/sqlite"
	"github.com/buzzware/cash/pkg/logging"
)

func main() {
	logging.Setup()

	cfg := config.Load()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	rail := ledger.NewHTTPClient(ledger.HTTPClientConfig{
		BaseURL:   cfg.LedgerBaseURL,
		AppHandle: cfg.LedgerAppHandle,
		AppKey:    cfg.LedgerAppKey,
	})
	notifier := notify.NewPushClient(cfg.PushURL, cfg.PushServerKey)
	chargeRates := rates.NewProvider(store)

	transfers := service.NewTransferService(rail, chargeRates, cfg.HouseHandle)
	requests := service.NewRequestService(store, rail, transfers, notifier)
	wallets := service.NewWalletService(rail)
	users := service.NewUserService(store, rail)
	webhooks := service.NewWebhookService(store, notifier, cfg.HouseHandle)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)

	var cache middleware.IdempotencyCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			slog.Warn("redis unreachable, idempotency replay disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			cache = middleware.NewRedisCache(rdb)
		}
	}

	srv := server.New(server.Config{
		Store:       store,
		JWT:         jwtManager,
		Requests:    requests,
		Transfers:   transfers,
		Wallets:     wallets,
		Users:       users,
		Webhooks:    webhooks,
		Idempotency: cache,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
