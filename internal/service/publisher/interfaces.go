package publisher

import (
	"context"
	"time"
)

// Credentials identify the target account on the remote platform.
type Credentials struct {
	AccountID   string `json:"account_id"`
	AccessToken string `json:"-"`
}

// Request is everything a platform adapter needs for one publish.
type Request struct {
	Credentials
	Caption   string   `json:"caption"`
	ImageURLs []string `json:"image_urls"`
}

// Result is the outcome of a successful publish.
type Result struct {
	MediaID     string    `json:"media_id"`
	Permalink   string    `json:"permalink,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Publisher is the per-platform publish adapter.
type Publisher interface {
	PlatformName() string
	Publish(ctx context.Context, req Request) (*Result, error)
}
