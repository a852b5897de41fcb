package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/config"
)

func validConfig() *config.AppConfig {
	return &config.AppConfig{
		Auth: config.AuthConfig{
			SigningSecret:    "test-secret",
			SigningAlgorithm: "HS256",
			AccessTTL:        30 * time.Minute,
			RefreshTTL:       7 * 24 * time.Hour,
		},
		Pin: config.PinConfig{
			TTL:            30 * 24 * time.Hour,
			MaxAttempts:    5,
			AttemptsWindow: time.Hour,
			HashIterations: 100_000,
		},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.AppConfig)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(cfg *config.AppConfig) {},
		},
		{
			name:    "missing secret",
			mutate:  func(cfg *config.AppConfig) { cfg.Auth.SigningSecret = "" },
			wantErr: "signing_secret",
		},
		{
			name:    "unsupported algorithm",
			mutate:  func(cfg *config.AppConfig) { cfg.Auth.SigningAlgorithm = "RS256" },
			wantErr: "signing algorithm",
		},
		{
			name:    "zero access ttl",
			mutate:  func(cfg *config.AppConfig) { cfg.Auth.AccessTTL = 0 },
			wantErr: "TTLs must be positive",
		},
		{
			name:    "negative refresh ttl",
			mutate:  func(cfg *config.AppConfig) { cfg.Auth.RefreshTTL = -time.Hour },
			wantErr: "TTLs must be positive",
		},
		{
			name:    "zero pin ttl",
			mutate:  func(cfg *config.AppConfig) { cfg.Pin.TTL = 0 },
			wantErr: "pin TTLs",
		},
		{
			name:    "zero attempts window",
			mutate:  func(cfg *config.AppConfig) { cfg.Pin.AttemptsWindow = 0 },
			wantErr: "pin TTLs",
		},
		{
			name:    "zero max attempts",
			mutate:  func(cfg *config.AppConfig) { cfg.Pin.MaxAttempts = 0 },
			wantErr: "max_attempts",
		},
		{
			name:    "zero hash iterations",
			mutate:  func(cfg *config.AppConfig) { cfg.Pin.HashIterations = 0 },
			wantErr: "hash_iterations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
