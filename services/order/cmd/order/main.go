package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	pkgdb "github.com/Skotchmaster/pharmacy_shop/pkg/db"
	"github.com/Skotchmaster/pharmacy_shop/pkg/events"
	server "github.com/Skotchmaster/pharmacy_shop/pkg/httpserver"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"

	ordercfg "github.com/Skotchmaster/pharmacy_shop/services/order/internal/config"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/httpserver"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/service"
)

func main() {
	if err := godotenv.Load("services/order/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	decimal.MarshalJSONWithoutQuotes = true

	cfg := ordercfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	ledger := repo.NewGormLedger(db)
	err = ledger.Migrate(initCtx)
	cancel()
	if err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	ready := func(ctx context.Context) error { return pkgdb.Ping(ctx, db) }
	onStop := []func(){func() { pkgdb.Close(db) }}

	svc := &service.OrderService{Ledger: ledger, Events: events.Nop{}, Policy: cfg.StatusPolicy}

	if len(cfg.KafkaBrokers) > 0 {
		pub := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.ServiceName, 256, logger)
		pub.Start()
		svc.Events = pub
		onStop = append(onStop, func() { _ = pub.Close() })
	}

	e := server.New(server.Options{
		Logger:       logger,
		AllowOrigins: cfg.CORSAllowedOrigins,
		Debug:        cfg.Development(),
	})
	server.Health(e, ready)
	httpserver.Register(e, &httpserver.Deps{
		OrderHandler: &httpserver.OrderHTTP{Svc: svc},
		JWTSecret:    cfg.JWTAccessSecret,
	})

	server.Run(e, cfg.ServerPort, logger, onStop...)
}
