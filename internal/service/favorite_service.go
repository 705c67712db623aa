package service

import (
	"context"
	"errors"

	"github.com/harukisan/fixed-points-backend/internal/domain"
	"github.com/harukisan/fixed-points-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAlreadyFavorited = errors.New("already favorited")
	ErrFavoriteNotFound = errors.New("favorite not found")
)

type FavoriteService struct {
	favoriteRepo   repository.FavoriteRepository
	fixedPointRepo repository.FixedPointRepository
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, fixedPointRepo repository.FixedPointRepository) *FavoriteService {
	return &FavoriteService{
		favoriteRepo:   favoriteRepo,
		fixedPointRepo: fixedPointRepo,
	}
}

func (s *FavoriteService) Add(ctx context.Context, userID, fixedPointID uint) error {
	if _, err := s.fixedPointRepo.GetByID(ctx, fixedPointID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFixedPointNotFound
		}
		return err
	}

	favorite := &domain.Favorite{
		UserID:       userID,
		FixedPointID: fixedPointID,
	}
	if err := s.favoriteRepo.Create(ctx, favorite); err != nil {
		// The composite unique index catches concurrent double-favorites.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyFavorited
		}
		return err
	}
	return nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, fixedPointID uint) error {
	if err := s.favoriteRepo.Delete(ctx, userID, fixedPointID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}
	return nil
}

// ListForUser returns the fixed points the user has favorited, newest
// first, in the same summary shape as the main listing.
func (s *FavoriteService) ListForUser(ctx context.Context, userID uint) ([]*domain.FixedPointSummary, error) {
	return s.fixedPointRepo.List(ctx, repository.FixedPointFilter{
		FavoritedBy: userID,
		Limit:       maxPageLimit,
	})
}
