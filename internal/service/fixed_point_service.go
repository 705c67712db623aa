package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/harukisan/fixed-points-backend/internal/domain"
	"github.com/harukisan/fixed-points-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrFixedPointNotFound = errors.New("fixed point not found")
	ErrNotOwner           = errors.New("not the owner of this fixed point")
)

const (
	maxSteps         = 5
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type FixedPointService struct {
	fixedPointRepo repository.FixedPointRepository
	favoriteRepo   repository.FavoriteRepository
}

func NewFixedPointService(fixedPointRepo repository.FixedPointRepository, favoriteRepo repository.FavoriteRepository) *FixedPointService {
	return &FixedPointService{
		fixedPointRepo: fixedPointRepo,
		favoriteRepo:   favoriteRepo,
	}
}

type StepInput struct {
	StepOrder      int
	ImageURL       *string
	Description    *string
	PositionX      *float64
	PositionY      *float64
	SkillPositionX *float64
	SkillPositionY *float64
}

type CreateFixedPointInput struct {
	Title       string
	CharacterID string
	MapID       string
	Steps       []StepInput
}

func (s *FixedPointService) Create(ctx context.Context, userID uint, input CreateFixedPointInput) (*domain.FixedPoint, error) {
	if input.Title == "" || len(input.Title) > 255 {
		return nil, fmt.Errorf("%w: title must be 1-255 characters", ErrInvalidInput)
	}
	if input.CharacterID == "" || input.MapID == "" {
		return nil, fmt.Errorf("%w: character and map are required", ErrInvalidInput)
	}
	if len(input.Steps) == 0 || len(input.Steps) > maxSteps {
		return nil, fmt.Errorf("%w: a fixed point needs 1-%d steps", ErrInvalidInput, maxSteps)
	}
	for _, step := range input.Steps {
		if step.StepOrder < 1 || step.StepOrder > maxSteps {
			return nil, fmt.Errorf("%w: step order must be 1-%d", ErrInvalidInput, maxSteps)
		}
	}

	fp := &domain.FixedPoint{
		UserID:      userID,
		Title:       input.Title,
		CharacterID: input.CharacterID,
		MapID:       input.MapID,
		Steps:       make([]domain.FixedPointStep, len(input.Steps)),
	}
	for i, step := range input.Steps {
		fp.Steps[i] = domain.FixedPointStep{
			StepOrder:      step.StepOrder,
			ImageURL:       step.ImageURL,
			Description:    step.Description,
			PositionX:      step.PositionX,
			PositionY:      step.PositionY,
			SkillPositionX: step.SkillPositionX,
			SkillPositionY: step.SkillPositionY,
		}
	}

	if err := s.fixedPointRepo.Create(ctx, fp); err != nil {
		return nil, err
	}
	return fp, nil
}

// FixedPointDetail is a fixed point with the favorite info the frontend
// renders next to it.
type FixedPointDetail struct {
	*domain.FixedPoint
	FavoritesCount int64 `json:"favoritesCount"`
	IsFavorited    bool  `json:"isFavorited"`
}

// Get returns one fixed point with its steps. viewerID may be 0 for an
// anonymous caller; IsFavorited is then always false.
func (s *FixedPointService) Get(ctx context.Context, id uint, viewerID uint) (*FixedPointDetail, error) {
	fp, err := s.fixedPointRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFixedPointNotFound
		}
		return nil, err
	}

	count, err := s.favoriteRepo.CountByFixedPoint(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &FixedPointDetail{
		FixedPoint:     fp,
		FavoritesCount: count,
	}

	if viewerID != 0 {
		_, err := s.favoriteRepo.Get(ctx, viewerID, id)
		if err == nil {
			detail.IsFavorited = true
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return detail, nil
}

// ListItem is one row of a filtered listing.
type ListItem struct {
	*domain.FixedPointSummary
	IsFavorited bool `json:"isFavorited"`
}

func (s *FixedPointService) List(ctx context.Context, filter repository.FixedPointFilter, viewerID uint) ([]*ListItem, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	summaries, err := s.fixedPointRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*ListItem, len(summaries))
	for i, summary := range summaries {
		items[i] = &ListItem{FixedPointSummary: summary}
	}

	if viewerID != 0 && len(summaries) > 0 {
		ids := make([]uint, len(summaries))
		for i, summary := range summaries {
			ids[i] = summary.ID
		}
		favorited, err := s.favoriteRepo.FixedPointIDsForUser(ctx, viewerID, ids)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			item.IsFavorited = favorited[item.ID]
		}
	}

	return items, nil
}

type UpdateFixedPointInput struct {
	Title       *string
	CharacterID *string
	MapID       *string
}

// Update changes a fixed point's metadata. Only the owner may update.
func (s *FixedPointService) Update(ctx context.Context, userID, id uint, input UpdateFixedPointInput) (*domain.FixedPoint, error) {
	fp, err := s.fixedPointRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFixedPointNotFound
		}
		return nil, err
	}
	if fp.UserID != userID {
		return nil, ErrNotOwner
	}

	if input.Title != nil {
		if *input.Title == "" || len(*input.Title) > 255 {
			return nil, fmt.Errorf("%w: title must be 1-255 characters", ErrInvalidInput)
		}
		fp.Title = *input.Title
	}
	if input.CharacterID != nil {
		fp.CharacterID = *input.CharacterID
	}
	if input.MapID != nil {
		fp.MapID = *input.MapID
	}

	if err := s.fixedPointRepo.Update(ctx, fp); err != nil {
		return nil, err
	}
	return fp, nil
}

// Delete removes a fixed point and its steps. Only the owner may delete.
func (s *FixedPointService) Delete(ctx context.Context, userID, id uint) error {
	fp, err := s.fixedPointRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFixedPointNotFound
		}
		return err
	}
	if fp.UserID != userID {
		return ErrNotOwner
	}

	return s.fixedPointRepo.Delete(ctx, id)
}
