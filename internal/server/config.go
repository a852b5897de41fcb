package server

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/config"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

func LoadConfig() (*config.AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath("./config/server")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if secret := os.Getenv("MOTOKONIG_SIGNING_SECRET"); secret != "" {
		v.Set("auth.signing_secret", secret)
	}

	var cfg config.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("auth.signing_algorithm", "HS256")
	v.SetDefault("auth.access_ttl", 30*time.Minute)
	v.SetDefault("auth.refresh_ttl", 7*24*time.Hour)
	v.SetDefault("pin.ttl", 30*24*time.Hour)
	v.SetDefault("pin.max_attempts", 5)
	v.SetDefault("pin.attempts_window", time.Hour)
	v.SetDefault("pin.hash_iterations", 100_000)
}

// ValidateConfig rejects configurations the auth core cannot run with.
// The signing secret and algorithm are process-wide immutable state, so a
// bad value here must stop startup rather than surface per-request.
func ValidateConfig(cfg *config.AppConfig) error {
	if cfg.Auth.SigningSecret == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if cfg.Auth.SigningAlgorithm != "HS256" {
		return fmt.Errorf("unsupported signing algorithm %q", cfg.Auth.SigningAlgorithm)
	}
	if cfg.Auth.AccessTTL <= 0 || cfg.Auth.RefreshTTL <= 0 {
		return fmt.Errorf("auth token TTLs must be positive")
	}
	if cfg.Pin.TTL <= 0 || cfg.Pin.AttemptsWindow <= 0 {
		return fmt.Errorf("pin TTLs must be positive")
	}
	if cfg.Pin.MaxAttempts <= 0 {
		return fmt.Errorf("pin.max_attempts must be positive")
	}
	if cfg.Pin.HashIterations <= 0 {
		return fmt.Errorf("pin.hash_iterations must be positive")
	}
	return nil
}
