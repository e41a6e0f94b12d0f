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

	catalogcfg "github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/config"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/httpserver"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/search"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/service"
)

func main() {
	if err := godotenv.Load("services/catalog/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	decimal.MarshalJSONWithoutQuotes = true

	cfg := catalogcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	var (
		store  service.Store
		ready  func(context.Context) error
		onStop []func()
	)
	switch cfg.StoreBackend {
	case catalogcfg.BackendGorm:
		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		gr := repo.NewGormRepo(db)
		err = gr.Migrate(initCtx)
		cancel()
		if err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		store = gr
		ready = func(ctx context.Context) error { return pkgdb.Ping(ctx, db) }
		onStop = append(onStop, func() { pkgdb.Close(db) })
	default:
		store = repo.NewMemoryRepo()
	}

	svc := &service.CatalogService{Repo: store, Events: events.Nop{}}

	if len(cfg.KafkaBrokers) > 0 {
		pub := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.ServiceName, 256, logger)
		pub.Start()
		svc.Events = pub
		onStop = append(onStop, func() { _ = pub.Close() })
	}

	if cfg.ESURL != "" {
		esCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		es, err := search.NewES(esCtx, search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err == nil {
			err = es.EnsureIndex(esCtx)
		}
		cancel()
		if err != nil {
			logger.Warn("elasticsearch_unavailable", "reason", "falling back to store search", "error", err)
		} else {
			svc.Search = es
		}
	}

	if cfg.SeedCatalog {
		if err := svc.SeedCatalog(ctx); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	e := server.New(server.Options{
		Logger:       logger,
		AllowOrigins: cfg.CORSAllowedOrigins,
		Debug:        cfg.Development(),
	})
	server.Health(e, ready)
	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: svc},
		JWTSecret:      cfg.JWTAccessSecret,
	})

	server.Run(e, cfg.ServerPort, logger, onStop...)
}
