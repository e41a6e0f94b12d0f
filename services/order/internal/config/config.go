package config

import (
	"log"

	"github.com/Skotchmaster/pharmacy_shop/pkg/config"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/service"
)

// ServiceConfig always points at the database the catalog writes products to. Without
// DATABASE_URL that is the shared SQLite file.
type ServiceConfig struct {
	config.Config

	StatusPolicy service.TransitionPolicy
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "order"
	}

	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	policyName := config.EnvDefault("ORDER_STATUS_POLICY", service.PolicyAny)
	policy, err := service.PolicyByName(policyName)
	if err != nil {
		log.Fatalf("ORDER_STATUS_POLICY: %v", err)
	}

	return ServiceConfig{
		Config:       cfg,
		StatusPolicy: policy,
	}
}
