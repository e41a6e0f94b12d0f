package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/pharmacy_shop/pkg/db"
	server "github.com/Skotchmaster/pharmacy_shop/pkg/httpserver"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
	"github.com/Skotchmaster/pharmacy_shop/services/auth/internal/config"
	"github.com/Skotchmaster/pharmacy_shop/services/auth/internal/httpserver"
	"github.com/Skotchmaster/pharmacy_shop/services/auth/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/services/auth/internal/service"
)

func main() {
	if err := godotenv.Load("services/auth/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	var (
		store  service.UserStore
		checks []func(context.Context) error
		onStop []func()
	)
	switch cfg.StoreBackend {
	case config.BackendGorm:
		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		gdb, err := db.Open(initCtx, cfg.DatabaseURL)
		if err == nil {
			err = repo.NewGormRepo(gdb).Migrate(initCtx)
		}
		cancel()
		if err != nil {
			log.Fatalf("db init error: %v", err)
		}
		store = repo.NewGormRepo(gdb)
		checks = append(checks, func(ctx context.Context) error { return db.Ping(ctx, gdb) })
		onStop = append(onStop, func() { db.Close(gdb) })
	default:
		store = repo.NewMemoryRepo()
	}

	var revoked service.Revocations = repo.NewMemoryRevocations()
	if cfg.RedisAddr != "" {
		rr := repo.NewRedisRevocations(cfg.RedisAddr)
		revoked = rr
		checks = append(checks, rr.Ping)
		onStop = append(onStop, func() { _ = rr.Close() })
	}

	svc := &service.AuthService{
		Repo:    store,
		Revoked: revoked,
		Tokens: &tokens.Issuer{
			AccessSecret:  cfg.JWTAccessSecret,
			RefreshSecret: cfg.JWTRefreshSecret,
			AccessTTL:     cfg.JWTAccessTTL,
			RefreshTTL:    cfg.JWTRefreshTTL,
		},
	}
	if err := svc.SeedAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		log.Fatalf("seed: %v", err)
	}

	e := server.New(server.Options{
		Logger:       logger,
		AllowOrigins: cfg.CORSAllowedOrigins,
		Debug:        cfg.Development(),
	})
	server.Health(e, func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:  &httpserver.AuthHTTP{Svc: svc},
		AdminHandler: &httpserver.AdminHTTP{Svc: svc},
		JWTSecret:    cfg.JWTAccessSecret,
	})

	server.Run(e, cfg.ServerPort, logger, onStop...)
}
