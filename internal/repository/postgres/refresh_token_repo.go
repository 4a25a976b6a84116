package postgres

import (
	"context"

	"github.com/ayria/accounts-api/internal/domain"
	"gorm.io/gorm"
)

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *refreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *refreshTokenRepository) GetByID(ctx context.Context, id int64) (*domain.RefreshToken, error) {
	var token domain.RefreshToken
	err := r.db.WithContext(ctx).First(&token, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) GetByToken(ctx context.Context, raw string) (*domain.RefreshToken, error) {
	var token domain.RefreshToken
	err := r.db.WithContext(ctx).First(&token, "token = ?", raw).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// DeactivateAllForUser flips is_active off for every token the user owns in
// a single statement. Running it twice is harmless.
func (r *refreshTokenRepository) DeactivateAllForUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("is_active", false).Error
}
