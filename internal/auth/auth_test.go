package auth

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/config"
)

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	return logger
}

func newTestConfig() *config.AppConfig {
	return &config.AppConfig{
		Auth: config.AuthConfig{
			SigningSecret:    "test-secret-key",
			SigningAlgorithm: "HS256",
			AccessTTL:        30 * time.Minute,
			RefreshTTL:       7 * 24 * time.Hour,
		},
		Pin: config.PinConfig{
			TTL:            30 * 24 * time.Hour,
			MaxAttempts:    5,
			AttemptsWindow: time.Hour,
			// Lowered from the production default to keep tests fast.
			HashIterations: 10_000,
		},
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type testEnv struct {
	service *Service
	repo    *mockRepository
	tokens  *TokenService
	pins    *PinService
	redis   *miniredis.Miniredis
	config  *config.AppConfig
}

func newTestEnv(t *testing.T) *testEnv {
	cfg := newTestConfig()
	mr, client := newTestRedis(t)

	tokens, err := NewTokenService(&cfg.Auth, client)
	require.NoError(t, err)
	pins := NewPinService(&cfg.Pin, client)
	repo := newMockRepository()

	return &testEnv{
		service: NewService(cfg, newTestLogger(t), repo, tokens, pins),
		repo:    repo,
		tokens:  tokens,
		pins:    pins,
		redis:   mr,
		config:  cfg,
	}
}
