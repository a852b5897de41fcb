package kv

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/config"
)

// Manager owns the process-wide connection pool to the key-value store that
// backs PIN records, attempt counters, the token denylist, and the device
// blacklist.
type Manager struct {
	client *redis.Client
	config *config.RedisConfig
	logger *zap.Logger
}

func NewManager(cfg *config.RedisConfig, logger *zap.Logger) *Manager {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Manager{
		client: client,
		config: cfg,
		logger: logger,
	}
}

func (m *Manager) Client() redis.UniversalClient {
	return m.client
}

func (m *Manager) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (m *Manager) Close() error {
	return m.client.Close()
}
