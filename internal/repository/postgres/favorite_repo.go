package postgres

import (
	"context"

	"github.com/harukisan/fixed-points-backend/internal/domain"
	"gorm.io/gorm"
)

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *favoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *domain.Favorite) error {
	return r.db.WithContext(ctx).Create(favorite).Error
}

func (r *favoriteRepository) Get(ctx context.Context, userID, fixedPointID uint) (*domain.Favorite, error) {
	var favorite domain.Favorite
	err := r.db.WithContext(ctx).
		First(&favorite, "user_id = ? AND fixed_point_id = ?", userID, fixedPointID).Error
	if err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, userID, fixedPointID uint) error {
	res := r.db.WithContext(ctx).
		Delete(&domain.Favorite{}, "user_id = ? AND fixed_point_id = ?", userID, fixedPointID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *favoriteRepository) CountByFixedPoint(ctx context.Context, fixedPointID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("fixed_point_id = ?", fixedPointID).
		Count(&count).Error
	return count, err
}

func (r *favoriteRepository) FixedPointIDsForUser(ctx context.Context, userID uint, ids []uint) (map[uint]bool, error) {
	if len(ids) == 0 {
		return map[uint]bool{}, nil
	}

	var favorited []uint
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("user_id = ? AND fixed_point_id IN ?", userID, ids).
		Pluck("fixed_point_id", &favorited).Error
	if err != nil {
		return nil, err
	}

	result := make(map[uint]bool, len(favorited))
	for _, id := range favorited {
		result[id] = true
	}
	return result, nil
}
