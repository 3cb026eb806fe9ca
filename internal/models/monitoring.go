package models

import (
	"time"
)

// ErrorLog keeps operational errors queryable from the dashboard.
type ErrorLog struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Level        string     `gorm:"size:20;not null;index" json:"level"`   // ERROR, WARN, INFO
	Source       string     `gorm:"size:100;not null;index" json:"source"` // orchestrator, publisher, server
	PlatformName string     `gorm:"size:100;index" json:"platform_name"`
	PostID       *uint      `gorm:"index" json:"post_id"`
	Title        string     `gorm:"size:500;not null" json:"title"`
	Message      string     `gorm:"type:text;not null" json:"message"`
	Context      string     `gorm:"type:jsonb" json:"context"`
	Resolved     bool       `gorm:"default:false;index" json:"resolved"`
	ResolvedAt   *time.Time `json:"resolved_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Post *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}

// MetricsSample is a raw counter/gauge sample, one row per observation.
type MetricsSample struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MetricName string    `gorm:"size:100;not null;index" json:"metric_name"`
	MetricType string    `gorm:"size:50;not null" json:"metric_type"` // gauge, counter
	Value      float64   `gorm:"not null" json:"value"`
	Tags       string    `gorm:"type:jsonb" json:"tags"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PlatformStats is a per-day, per-platform publishing rollup.
type PlatformStats struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Date           time.Time  `gorm:"index;not null" json:"date"`
	Platform       string     `gorm:"size:50;not null;index" json:"platform"`
	TotalPublishes int        `gorm:"default:0" json:"total_publishes"`
	Successful     int        `gorm:"default:0" json:"successful"`
	Failed         int        `gorm:"default:0" json:"failed"`
	LastSuccessAt  *time.Time `json:"last_success_at"`
	LastFailureAt  *time.Time `json:"last_failure_at"`
	ErrorCount     int        `gorm:"default:0" json:"error_count"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// DashboardSummary is a single-row aggregate for fast dashboard loads.
type DashboardSummary struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	TotalPosts            int        `gorm:"default:0" json:"total_posts"`
	ScheduledPosts        int        `gorm:"default:0" json:"scheduled_posts"`
	PublishedToday        int        `gorm:"default:0" json:"published_today"`
	FailedToday           int        `gorm:"default:0" json:"failed_today"`
	ConnectedAccounts     int        `gorm:"default:0" json:"connected_accounts"`
	LastPublishTime       *time.Time `json:"last_publish_time"`
	UnresolvedErrorsCount int        `gorm:"default:0" json:"unresolved_errors_count"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
