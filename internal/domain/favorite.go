package domain

import "time"

// Favorite marks a fixed point as saved by a user. The composite unique
// index keeps a user from favoriting the same fixed point twice.
type Favorite struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"userId" gorm:"uniqueIndex:idx_user_fixed_point;not null"`
	FixedPointID uint      `json:"fixedPointId" gorm:"uniqueIndex:idx_user_fixed_point;not null"`
	CreatedAt    time.Time `json:"createdAt"`

	// Relations
	FixedPoint *FixedPoint `json:"-" gorm:"foreignKey:FixedPointID;constraint:OnDelete:CASCADE"`
}
