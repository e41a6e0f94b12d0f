package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	server "github.com/Skotchmaster/pharmacy_shop/pkg/httpserver"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"

	"github.com/Skotchmaster/pharmacy_shop/gateway/internal/config"
	"github.com/Skotchmaster/pharmacy_shop/gateway/internal/httpserver"
	"github.com/Skotchmaster/pharmacy_shop/gateway/internal/proxy"
)

func main() {
	if err := godotenv.Load("gateway/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	var upstreams []*proxy.Upstream
	mustProxy := func(name, target string) *proxy.Upstream {
		u, err := proxy.New(name, target, httpserver.APIPrefix, cfg.ProxyTimeout)
		if err != nil {
			log.Fatalf("proxy %s: %v", name, err)
		}
		upstreams = append(upstreams, u)
		return u
	}
	deps := &httpserver.Deps{
		Auth:    mustProxy("auth", cfg.AuthURL),
		Catalog: mustProxy("catalog", cfg.CatalogURL),
		Order:   mustProxy("order", cfg.OrderURL),
	}

	e := server.New(server.Options{
		Logger:       logger,
		AllowOrigins: cfg.CORSAllowedOrigins,
		Debug:        cfg.Development(),
	})
	probe := &http.Client{Timeout: 2 * time.Second}
	server.Health(e, func(ctx context.Context) error {
		for _, u := range upstreams {
			if err := ping(ctx, probe, u); err != nil {
				return err
			}
		}
		return nil
	})
	httpserver.Register(e, deps)

	server.Run(e, cfg.ServerPort, logger)
}

func ping(ctx context.Context, client *http.Client, u *proxy.Upstream) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.Target.JoinPath("/health/live").String(), nil)
	if err != nil {
		return err
	}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", u.Name, err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: live probe returned %d", u.Name, res.StatusCode)
	}
	return nil
}
