package domain

import "time"

// FixedPoint is a tactical lineup guide for one agent on one map, made of
// up to five ordered annotated steps.
type FixedPoint struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"userId" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	CharacterID string    `json:"characterId" gorm:"size:50;index;not null"` // Valorant agent UUID
	MapID       string    `json:"mapId" gorm:"size:50;index;not null"`       // Valorant map UUID
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	User  *User            `json:"-" gorm:"foreignKey:UserID"`
	Steps []FixedPointStep `json:"steps" gorm:"constraint:OnDelete:CASCADE"`
}

type FixedPointStep struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FixedPointID uint      `json:"fixedPointId" gorm:"index;not null"`
	StepOrder    int       `json:"stepOrder" gorm:"not null"` // 1-5
	ImageURL     *string   `json:"imageUrl" gorm:"size:500"`
	Description  *string   `json:"description" gorm:"type:text"`
	// Normalized map coordinates (0-1)
	PositionX      *float64 `json:"positionX"`
	PositionY      *float64 `json:"positionY"`
	SkillPositionX *float64 `json:"skillPositionX"`
	SkillPositionY *float64 `json:"skillPositionY"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FixedPointSummary is a listing row: a fixed point joined with its author
// name and favorite count.
type FixedPointSummary struct {
	ID             uint      `json:"id"`
	UserID         uint      `json:"userId"`
	Title          string    `json:"title"`
	CharacterID    string    `json:"characterId"`
	MapID          string    `json:"mapId"`
	CreatedAt      time.Time `json:"createdAt"`
	Username       string    `json:"username"`
	FavoritesCount int64     `json:"favoritesCount"`
}
