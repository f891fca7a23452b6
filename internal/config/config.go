package config

import (
	"log"

	"github.com/Skotchmaster/marketplace/pkg/config"
	"github.com/joho/godotenv"
)

type ServiceConfig struct {
	config.Config
}

// Load reads envFiles (missing files are only logged), then the environment,
// and exits when a required key is absent.
func Load(envFiles ...string) ServiceConfig {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			log.Printf("warning: could not load .env: %v", err)
		}
	}

	cfg := config.Load()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustNonEmpty(cfg.Gateway.SecretKey, "GATEWAY_SECRET_KEY")

	return ServiceConfig{Config: cfg}
}

// WebhookSecret falls back to the API secret key, which is what the
// provider signs deliveries with unless a dedicated secret is configured.
func (c ServiceConfig) WebhookSecret() string {
	if c.Gateway.WebhookSecret != "" {
		return c.Gateway.WebhookSecret
	}
	return c.Gateway.SecretKey
}
