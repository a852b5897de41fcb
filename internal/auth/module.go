package auth

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/config"
	"github.com/Wayfarer545/MotoKonig-web-application-sub000/internal/kv"
)

// NewModule returns the auth module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			// Provide repository
			fx.Annotate(
				func(db *gorm.DB) UserRepository {
					return NewRepository(db)
				},
			),
			// Provide token service
			fx.Annotate(
				func(cfg *config.AppConfig, store *kv.Manager) (*TokenService, error) {
					return NewTokenService(&cfg.Auth, store.Client())
				},
			),
			// Provide PIN service
			fx.Annotate(
				func(cfg *config.AppConfig, store *kv.Manager) *PinService {
					return NewPinService(&cfg.Pin, store.Client())
				},
			),
			NewService,
			NewMiddleware,
			NewHandler,
		),
	)
}
