package config

import (
	"github.com/Skotchmaster/pharmacy_shop/pkg/config"
)

const (
	BackendMemory = "memory"
	BackendGorm   = "gorm"
)

type ServiceConfig struct {
	config.Config

	StoreBackend      string
	SeedAdminEmail    string
	SeedAdminPassword string
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "auth"
	}

	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET")
	config.MustDistinct(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, "JWT_SECRET", "JWT_REFRESH_SECRET")

	sc := ServiceConfig{
		Config:            cfg,
		StoreBackend:      config.EnvDefault("STORE_BACKEND", defaultBackend(cfg)),
		SeedAdminEmail:    config.EnvDefault("SEED_ADMIN_EMAIL", "admin@pharmacy.com"),
		SeedAdminPassword: config.EnvDefault("SEED_ADMIN_PASSWORD", ""),
	}
	if sc.StoreBackend == BackendGorm {
		config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	}
	return sc
}

func defaultBackend(cfg config.Config) string {
	if cfg.DatabaseURL != "" {
		return BackendGorm
	}
	return BackendMemory
}
