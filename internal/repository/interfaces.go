package repository

import (
	"context"

	"github.com/ayria/accounts-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByID(ctx context.Context, id int64) (*domain.RefreshToken, error)
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	DeactivateAllForUser(ctx context.Context, userID int64) error
}

type Repositories struct {
	User         UserRepository
	RefreshToken RefreshTokenRepository
}
