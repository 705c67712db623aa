package postgres

import (
	"context"
	"time"

	"github.com/harukisan/fixed-points-backend/internal/domain"
	"gorm.io/gorm"
)

type authTokenRepository struct {
	db *gorm.DB
}

func NewAuthTokenRepository(db *gorm.DB) *authTokenRepository {
	return &authTokenRepository{db: db}
}

func (r *authTokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *authTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.AuthToken, error) {
	var token domain.AuthToken
	err := r.db.WithContext(ctx).First(&token, "token_hash = ?", tokenHash).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *authTokenRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).Delete(&domain.AuthToken{}, "token_hash = ?", tokenHash).Error
}

func (r *authTokenRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Delete(&domain.AuthToken{}, "user_id = ?", userID).Error
}

func (r *authTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&domain.AuthToken{}, "expires_at < ?", time.Now())
	return res.RowsAffected, res.Error
}
