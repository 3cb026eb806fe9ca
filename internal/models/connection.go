package models

import (
	"time"
)

const (
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformGoogle    = "google"
)

// Connection is a per-user, per-platform OAuth credential record.
// Created on a successful OAuth callback, overwritten on reconnect and
// blanked (not deleted) on explicit disconnect.
type Connection struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	UserID string `gorm:"not null;size:128;uniqueIndex:idx_user_platform" json:"user_id"`
	// instagram | facebook | google
	Platform    string `gorm:"not null;size:50;uniqueIndex:idx_user_platform" json:"platform"`
	AccessToken string `gorm:"type:text" json:"-"`
	// Google issues refresh tokens; Meta long-lived tokens do not.
	RefreshToken string `gorm:"type:text" json:"-"`
	// IG business account ID, Google account resource name
	AccountID   string `gorm:"size:255" json:"account_id"`
	AccountName string `gorm:"size:255" json:"account_name"`
	// Facebook page credentials; pages carry their own tokens
	PageID          string     `gorm:"size:255" json:"page_id,omitempty"`
	PageAccessToken string     `gorm:"type:text" json:"-"`
	LocationID      string     `gorm:"size:255" json:"location_id,omitempty"`
	Connected       bool       `gorm:"default:false" json:"connected"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
