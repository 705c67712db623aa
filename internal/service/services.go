package service

import (
	"log/slog"
	"time"

	"github.com/harukisan/fixed-points-backend/internal/auth"
	"github.com/harukisan/fixed-points-backend/internal/config"
	"github.com/harukisan/fixed-points-backend/internal/repository"
)

// oauthStateTTL bounds how long a started Discord login may wait for its
// callback.
const oauthStateTTL = 10 * time.Minute

type Services struct {
	Auth       *AuthService
	Discord    *DiscordService
	FixedPoint *FixedPointService
	Favorite   *FavoriteService
	Valorant   *ValorantService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	images, err := NewImageCache(cfg.StaticDir, logger)
	if err != nil {
		return nil, err
	}

	authService := NewAuthService(repos.User, repos.AuthToken, cfg)
	states := auth.NewMemoryStateStore(oauthStateTTL)

	return &Services{
		Auth:       authService,
		Discord:    NewDiscordService(repos.User, authService, states, cfg, logger),
		FixedPoint: NewFixedPointService(repos.FixedPoint, repos.Favorite),
		Favorite:   NewFavoriteService(repos.Favorite, repos.FixedPoint),
		Valorant:   NewValorantService(repos.Catalog, images, cfg),
	}, nil
}
