package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Agent is a cached Valorant agent record synced from valorant-api.com.
// Image URLs point at locally cached copies under /static.
type Agent struct {
	UUID         string         `json:"uuid" gorm:"primaryKey"`
	Name         string         `json:"displayName" gorm:"not null"`
	Description  string         `json:"description" gorm:"type:text"`
	IconURL      string         `json:"displayIcon" gorm:"size:500"`
	Role         datatypes.JSON `json:"role" gorm:"type:jsonb"` // {"uuid": ..., "displayName": ...}
	LastSyncedAt time.Time      `json:"lastSyncedAt"`
}

// GameMap is a cached Valorant map record synced from valorant-api.com.
type GameMap struct {
	UUID            string    `json:"uuid" gorm:"primaryKey"`
	Name            string    `json:"displayName" gorm:"not null"`
	Coordinates     string    `json:"coordinates"`
	IconURL         string    `json:"displayIcon" gorm:"size:500"`
	ListViewIconURL string    `json:"listViewIcon" gorm:"size:500"`
	SplashURL       string    `json:"splash" gorm:"size:500"`
	LastSyncedAt    time.Time `json:"lastSyncedAt"`
}
