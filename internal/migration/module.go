package migration

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/config"
)

// Module runs pending schema migrations during startup, before the server
// begins accepting requests.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(config *config.AppConfig) (*Migrator, error) {
					return NewMigrator(&config.Database)
				},
			),
		),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	migrator *Migrator,
	logger *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := migrator.Up(); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			version, err := migrator.Version()
			if err != nil {
				return fmt.Errorf("failed to get migration version: %w", err)
			}
			logger.Info("Database schema up to date", zap.Int64("version", version))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return migrator.Close()
		},
	})
}
