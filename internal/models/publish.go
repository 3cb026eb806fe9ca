package models

import (
	"time"
)

// PublishRecord is the per-platform outcome of one orchestrator attempt.
// The post keeps the all-or-nothing status; these rows keep the truth
// per platform for the dashboard.
type PublishRecord struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PostID      uint       `gorm:"not null;index" json:"post_id"`
	Platform    string     `gorm:"size:50;not null;index" json:"platform"`
	Status      string     `gorm:"size:50;default:'pending'" json:"status"`
	MediaID     string     `gorm:"size:255" json:"media_id"`
	Error       string     `gorm:"type:text" json:"error"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Post Post `gorm:"foreignKey:PostID" json:"post"`
}

const (
	PublishRecordCompleted = "completed"
	PublishRecordFailed    = "failed"
)
