package config

import (
	"time"

	"github.com/Skotchmaster/pharmacy_shop/pkg/config"
)

type Config struct {
	config.Config

	AuthURL      string
	CatalogURL   string
	OrderURL     string
	ProxyTimeout time.Duration
}

func Load() Config {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "gateway"
	}

	gc := Config{
		Config:       cfg,
		AuthURL:      config.EnvDefault("AUTH_URL", ""),
		CatalogURL:   config.EnvDefault("CATALOG_URL", ""),
		OrderURL:     config.EnvDefault("ORDER_URL", ""),
		ProxyTimeout: config.EnvDurationDefault("PROXY_TIMEOUT", 15*time.Second),
	}
	config.MustNonEmpty(gc.AuthURL, "AUTH_URL")
	config.MustNonEmpty(gc.CatalogURL, "CATALOG_URL")
	config.MustNonEmpty(gc.OrderURL, "ORDER_URL")
	return gc
}
