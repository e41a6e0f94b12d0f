package config

import "github.com/Skotchmaster/pharmacy_shop/pkg/config"

const (
	BackendMemory = "memory"
	BackendGorm   = "gorm"
)

type ServiceConfig struct {
	config.Config

	StoreBackend string
	SeedCatalog  bool
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "catalog"
	}

	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	backend := BackendMemory
	if cfg.DatabaseURL != "" {
		backend = BackendGorm
	}
	sc := ServiceConfig{
		Config:       cfg,
		StoreBackend: config.EnvDefault("STORE_BACKEND", backend),
		SeedCatalog:  config.EnvBoolDefault("SEED_CATALOG", true),
	}
	if sc.StoreBackend == BackendGorm {
		config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	}
	return sc
}
