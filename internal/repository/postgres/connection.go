package postgres

import (
	"github.com/harukisan/fixed-points-backend/internal/domain"
	"github.com/harukisan/fixed-points-backend/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Surface unique-constraint violations as gorm.ErrDuplicatedKey so
		// the service layer can map them to duplicate-identity errors.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.User{},
		&domain.AuthToken{},
		&domain.FixedPoint{},
		&domain.FixedPointStep{},
		&domain.Favorite{},
		&domain.Agent{},
		&domain.GameMap{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:       NewUserRepository(db),
		AuthToken:  NewAuthTokenRepository(db),
		FixedPoint: NewFixedPointRepository(db),
		Favorite:   NewFavoriteRepository(db),
		Catalog:    NewCatalogRepository(db),
	}
}
