package models

import (
	"time"

	"gorm.io/gorm"
)

type PostStatus string

const (
	PostStatusScheduled  PostStatus = "scheduled"
	PostStatusPublishing PostStatus = "publishing"
	PostStatusPublished  PostStatus = "published"
	PostStatusFailed     PostStatus = "failed"
)

// Post is one piece of content queued for publishing. Status moves
// scheduled -> publishing -> published|failed and never back; a failed
// post stays failed until the user republishes it as a new document.
type Post struct {
	ID            uint           `gorm:"primaryKey" json:"-"`
	PublicID      string         `gorm:"uniqueIndex;not null;size:36" json:"id"`
	UserID        string         `gorm:"not null;index;size:128" json:"user_id"`
	Title         string         `gorm:"size:500" json:"title"`
	Caption       string         `gorm:"type:text" json:"caption"`
	ImageURLs     StringArray    `gorm:"type:text[]" json:"image_urls"`
	Platforms     StringArray    `gorm:"type:text[]" json:"platforms"`
	Status        PostStatus     `gorm:"size:50;default:'scheduled';index" json:"status"`
	ScheduledAt   time.Time      `gorm:"index" json:"scheduled_at"`
	PublishedAt   *time.Time     `json:"published_at"`
	MediaIDs      StringArray    `gorm:"type:text[]" json:"media_ids"`
	FailureReason string         `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
