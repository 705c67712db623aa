package postgres

import (
	"context"

	"github.com/harukisan/fixed-points-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) UpsertAgents(ctx context.Context, agents []*domain.Agent) error {
	if len(agents) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}},
		UpdateAll: true,
	}).Create(agents).Error
}

func (r *catalogRepository) GetAgents(ctx context.Context) ([]*domain.Agent, error) {
	var agents []*domain.Agent
	err := r.db.WithContext(ctx).Order("name ASC").Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

func (r *catalogRepository) UpsertMaps(ctx context.Context, maps []*domain.GameMap) error {
	if len(maps) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}},
		UpdateAll: true,
	}).Create(maps).Error
}

func (r *catalogRepository) GetMaps(ctx context.Context) ([]*domain.GameMap, error) {
	var maps []*domain.GameMap
	err := r.db.WithContext(ctx).Order("name ASC").Find(&maps).Error
	if err != nil {
		return nil, err
	}
	return maps, nil
}
