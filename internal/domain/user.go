package domain

import (
	"time"
)

type AuthProvider string

const (
	AuthProviderEmail   AuthProvider = "email"
	AuthProviderDiscord AuthProvider = "discord"
)

// User is reachable by exactly one identity path: PasswordHash is set for
// email accounts, DiscordID for Discord accounts, matching AuthProvider.
type User struct {
	ID              uint         `json:"id" gorm:"primaryKey"`
	Username        string       `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email           *string      `json:"email" gorm:"size:255;uniqueIndex"`
	PasswordHash    *string      `json:"-" gorm:"size:255"`
	DiscordID       *string      `json:"-" gorm:"size:255;uniqueIndex"`
	DiscordUsername *string      `json:"discordUsername,omitempty" gorm:"size:255"`
	AvatarURL       *string      `json:"avatarUrl" gorm:"size:500"`
	AuthProvider    AuthProvider `json:"authProvider" gorm:"size:20;not null"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`

	// Relations
	FixedPoints []FixedPoint `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Favorites   []Favorite   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	AuthTokens  []AuthToken  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// AuthToken records an issued refresh token. Only a SHA-256 digest of the
// token is stored; the raw token cannot be recovered from this record.
type AuthToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"index;not null"`
	TokenHash string    `json:"-" gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}
