package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"table-reservation-backend/config"
	"table-reservation-backend/internal/api"
	"table-reservation-backend/internal/clock"
	"table-reservation-backend/internal/db"
	"table-reservation-backend/internal/engine"
	"table-reservation-backend/internal/notification"
	"table-reservation-backend/internal/store"
	"table-reservation-backend/internal/validation"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type daemonEnv struct {
	ConfigPath string `env:"CONFIG_PATH,default=./config/config.yaml"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "reservasd terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// A missing .env file is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return exitConfig, fmt.Errorf("failed to read .env: %w", err)
	}

	var de daemonEnv
	if _, err := env.UnmarshalFromEnviron(&de); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	cfg, err := config.Load(de.ConfigPath)
	if err != nil {
		return exitConfig, fmt.Errorf("failed to load configuration from %s: %w", de.ConfigPath, err)
	}

	log := logs.GetLoggerFromString(cfg.LogLevel)
	log.Info("Configuration loaded", "path", de.ConfigPath, "backend", cfg.Storage.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := db.OpenBackend(cfg, log)
	if err != nil {
		return exitRuntime, err
	}
	defer backend.Close()

	reservations, err := store.Open(ctx, backend.Persister, log)
	if err != nil {
		return exitRuntime, err
	}
	if reservations.Recovered() {
		log.Warn("Stored reservations were unreadable, starting empty")
	}
	log.Info("Reservations loaded", "count", reservations.Len())

	clk := clock.RealClock{Location: cfg.Venue.Location}
	validator := validation.New(validation.Rules{
		OpenHour:  cfg.Venue.OpenHour,
		CloseHour: cfg.Venue.CloseHour,
		Tables:    cfg.Venue.Tables,
	}, clk)
	eng := engine.New(reservations, validator, clk, log)

	var webpushOptions *webpush.Options
	var pool *notification.WorkerPool
	if cfg.Push.Enabled {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, backend.DB, webpushOptions, log)
		pool.Start(ctx)
		eng.SetNotifier(pool)
		log.Info("Push notifications enabled", "workers", cfg.WorkerPool.Size)
	}

	handler := api.NewHandler(eng, backend.DB, webpushOptions, log)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(ctx, handler, &cfg.Server),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return exitRuntime, fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	log.Info("Shutdown signal received, stopping services")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("http server shutdown: %w", err)
	}
	if pool != nil {
		pool.Wait()
	}

	log.Info("Server gracefully stopped")
	return exitOK, nil
}
