package postgres

import (
	"context"

	"github.com/harukisan/fixed-points-backend/internal/domain"
	"github.com/harukisan/fixed-points-backend/internal/repository"
	"gorm.io/gorm"
)

type fixedPointRepository struct {
	db *gorm.DB
}

func NewFixedPointRepository(db *gorm.DB) *fixedPointRepository {
	return &fixedPointRepository{db: db}
}

func (r *fixedPointRepository) Create(ctx context.Context, fp *domain.FixedPoint) error {
	// Steps are inserted in the same transaction through the association.
	return r.db.WithContext(ctx).Create(fp).Error
}

func (r *fixedPointRepository) GetByID(ctx context.Context, id uint) (*domain.FixedPoint, error) {
	var fp domain.FixedPoint
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		First(&fp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &fp, nil
}

func (r *fixedPointRepository) List(ctx context.Context, filter repository.FixedPointFilter) ([]*domain.FixedPointSummary, error) {
	q := r.db.WithContext(ctx).Model(&domain.FixedPoint{}).
		Select(`fixed_points.id, fixed_points.user_id, fixed_points.title,
			fixed_points.character_id, fixed_points.map_id, fixed_points.created_at,
			users.username AS username,
			(SELECT COUNT(*) FROM favorites WHERE favorites.fixed_point_id = fixed_points.id) AS favorites_count`).
		Joins("JOIN users ON users.id = fixed_points.user_id")

	if filter.CharacterID != "" {
		q = q.Where("fixed_points.character_id = ?", filter.CharacterID)
	}
	if filter.MapID != "" {
		q = q.Where("fixed_points.map_id = ?", filter.MapID)
	}
	if filter.UserID != 0 {
		q = q.Where("fixed_points.user_id = ?", filter.UserID)
	}
	if filter.FavoritedBy != 0 {
		// The count stays global; this join only narrows the result set.
		q = q.Joins("JOIN favorites viewer_favorites ON viewer_favorites.fixed_point_id = fixed_points.id AND viewer_favorites.user_id = ?", filter.FavoritedBy)
	}

	q = q.Order("fixed_points.created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var summaries []*domain.FixedPointSummary
	if err := q.Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *fixedPointRepository) Update(ctx context.Context, fp *domain.FixedPoint) error {
	return r.db.WithContext(ctx).Omit("Steps").Save(fp).Error
}

func (r *fixedPointRepository) Delete(ctx context.Context, id uint) error {
	// Steps and favorites cascade at the database level.
	return r.db.WithContext(ctx).Delete(&domain.FixedPoint{}, "id = ?", id).Error
}
