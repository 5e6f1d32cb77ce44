package bootstrap

import (
	"cinebooking/internal/handler/middleware"
	"cinebooking/internal/pkg/config"
	"cinebooking/internal/pkg/jwt"
	"cinebooking/internal/pkg/receipt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		fx.Annotate(
			NewJWTService,
			fx.As(new(middleware.TokenValidator)),
		),
		NewReceiptIssuer,
	),
)

func NewJWTService(cfg config.Config) *jwt.Service {
	return jwt.NewService(cfg.JWT.Secret)
}

func NewReceiptIssuer(cfg config.Config) *receipt.Issuer {
	return receipt.NewIssuer(cfg.Receipt.Secret, cfg.Receipt.Issuer)
}
