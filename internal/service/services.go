package service

import (
	"github.com/ayria/accounts-api/internal/config"
	"github.com/ayria/accounts-api/internal/repository"
	"github.com/ayria/accounts-api/internal/security"
	"github.com/ayria/accounts-api/internal/token"
)

type Services struct {
	Auth *AuthService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	tokens := token.NewService(cfg)
	hasher := security.NewBcryptHasher()

	return &Services{
		Auth: NewAuthService(repos.User, repos.RefreshToken, tokens, hasher, cfg),
	}
}
