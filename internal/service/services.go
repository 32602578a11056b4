package service

import (
	"github.com/lonepengu/backend/internal/config"
	"github.com/lonepengu/backend/internal/repository"
	"github.com/lonepengu/backend/internal/token"
)

type Services struct {
	Auth    *AuthService
	User    *UserService
	AIProxy *AIProxyService
	Codec   *token.Codec
}

func NewServices(store repository.Store, cfg *config.Config) *Services {
	codec := token.NewCodec(cfg.JWTSecret)
	return &Services{
		Auth:    NewAuthService(store, codec, cfg),
		User:    NewUserService(store),
		AIProxy: NewAIProxyService(cfg),
		Codec:   codec,
	}
}
