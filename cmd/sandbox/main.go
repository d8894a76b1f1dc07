// Command sandbox serves the REST API the console administers, backed by PostgreSQL when
// database_url is set and by an in-memory store otherwise.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"retailadmin/config"
	"retailadmin/database"
	"retailadmin/handlers"
	"retailadmin/logger"
	"retailadmin/metrics"
	"retailadmin/routes"
)

func main() {
	configFile := flag.String("config", "", "path to a config file")
	addr := flag.String("addr", "", "address to listen on, overrides the addr setting")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: "retailadmin-sandbox",
	}); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Get().Fatal("Sandbox stopped", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	zl := logger.Get()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return err
	}

	m := metrics.New("retailadmin")
	h := handlers.New(handlers.Options{
		Store:     store,
		JWTSecret: []byte(cfg.JWTSecret),
		TokenTTL:  cfg.TokenTTL,
		UploadDir: cfg.UploadDir,
		Metrics:   m,
	})

	if cfg.AdminEmail != "" {
		created, err := h.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			zl.Info("Admin account created", zap.String("email", cfg.AdminEmail))
		}
	}

	app := routes.NewApp(h, routes.Config{
		JWTSecret: []byte(cfg.JWTSecret),
		UploadDir: cfg.UploadDir,
		Metrics:   m,
	})

	errCh := make(chan error, 1)
	go func() {
		zl.Info("Sandbox listening", cfg.LogFields()...)
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("Shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openStore(ctx context.Context, databaseURL string) (database.Store, error) {
	if databaseURL == "" {
		logger.Get().Warn("database_url is not set, records are kept in memory")
		return database.NewMemoryStore(), nil
	}
	return database.Connect(ctx, databaseURL)
}
