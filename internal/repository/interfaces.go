package repository

import (
	"context"

	"github.com/harukisan/fixed-points-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmailAndProvider(ctx context.Context, email string, provider domain.AuthProvider) (*domain.User, error)
	GetByDiscordID(ctx context.Context, discordID string) (*domain.User, error)
	// UsernameTaken reports whether any user other than excludeID already
	// holds the username. Pass 0 to check against all users.
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uint) error
}

type AuthTokenRepository interface {
	Create(ctx context.Context, token *domain.AuthToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.AuthToken, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// FixedPointFilter narrows List results. Zero values mean "no filter".
type FixedPointFilter struct {
	CharacterID string
	MapID       string
	UserID      uint
	FavoritedBy uint
	Limit       int
	Offset      int
}

type FixedPointRepository interface {
	Create(ctx context.Context, fp *domain.FixedPoint) error
	GetByID(ctx context.Context, id uint) (*domain.FixedPoint, error)
	List(ctx context.Context, filter FixedPointFilter) ([]*domain.FixedPointSummary, error)
	Update(ctx context.Context, fp *domain.FixedPoint) error
	Delete(ctx context.Context, id uint) error
}

type FavoriteRepository interface {
	Create(ctx context.Context, favorite *domain.Favorite) error
	Get(ctx context.Context, userID, fixedPointID uint) (*domain.Favorite, error)
	Delete(ctx context.Context, userID, fixedPointID uint) error
	CountByFixedPoint(ctx context.Context, fixedPointID uint) (int64, error)
	// FixedPointIDsForUser returns the subset of ids the user has favorited.
	FixedPointIDsForUser(ctx context.Context, userID uint, ids []uint) (map[uint]bool, error)
}

type CatalogRepository interface {
	UpsertAgents(ctx context.Context, agents []*domain.Agent) error
	GetAgents(ctx context.Context) ([]*domain.Agent, error)
	UpsertMaps(ctx context.Context, maps []*domain.GameMap) error
	GetMaps(ctx context.Context) ([]*domain.GameMap, error)
}

type Repositories struct {
	User       UserRepository
	AuthToken  AuthTokenRepository
	FixedPoint FixedPointRepository
	Favorite   FavoriteRepository
	Catalog    CatalogRepository
}
