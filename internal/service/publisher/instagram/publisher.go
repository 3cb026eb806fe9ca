package instagram

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/service/publisher"
	"github.com/flowuphq/flowup/internal/service/publisher/graph"
	"github.com/flowuphq/flowup/pkg/util"
)

const (
	PlatformName = "instagram"

	// Vendor hard limit; longer captions are silently truncated.
	maxCaptionRunes = 2200
	// Carousels cap out at 10 children; rejected before any network call.
	maxCarouselItems = 10

	containerFinished = "FINISHED"
	containerError    = "ERROR"

	defaultPollInterval = 5 * time.Second
	defaultPollAttempts = 12
)

// Publisher publishes images to an Instagram business account through
// the Graph API container protocol: create container, poll its
// processing status, publish it.
type Publisher struct {
	logger       *zap.Logger
	client       *graph.Client
	pollInterval time.Duration
	pollAttempts int
}

type Option func(*Publisher)

// WithPolling overrides the container poll cadence.
func WithPolling(interval time.Duration, attempts int) Option {
	return func(p *Publisher) {
		p.pollInterval = interval
		p.pollAttempts = attempts
	}
}

func New(logger *zap.Logger, client *graph.Client, opts ...Option) *Publisher {
	p := &Publisher{
		logger:       logger,
		client:       client,
		pollInterval: defaultPollInterval,
		pollAttempts: defaultPollAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) PlatformName() string {
	return PlatformName
}

func (p *Publisher) Publish(ctx context.Context, req publisher.Request) (*publisher.Result, error) {
	if req.AccountID == "" || req.AccessToken == "" {
		return nil, fmt.Errorf("instagram publish requires account ID and access token")
	}
	if len(req.ImageURLs) == 0 {
		return nil, fmt.Errorf("instagram publish requires at least one image")
	}
	if len(req.ImageURLs) > maxCarouselItems {
		return nil, fmt.Errorf("carousel supports at most %d images, got %d", maxCarouselItems, len(req.ImageURLs))
	}

	caption := util.TruncateCaption(req.Caption, maxCaptionRunes)

	var containerID string
	var err error
	if len(req.ImageURLs) == 1 {
		containerID, err = p.createImageContainer(ctx, req.Credentials, req.ImageURLs[0], caption, false)
	} else {
		containerID, err = p.createCarouselContainer(ctx, req.Credentials, req.ImageURLs, caption)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create media container: %w", err)
	}

	if err := p.waitForContainer(ctx, req.Credentials, containerID); err != nil {
		return nil, err
	}

	mediaID, err := p.publishContainer(ctx, req.Credentials, containerID)
	if err != nil {
		return nil, fmt.Errorf("failed to publish media container: %w", err)
	}

	p.logger.Info("Instagram media published",
		zap.String("account_id", req.AccountID),
		zap.String("media_id", mediaID),
		zap.Int("image_count", len(req.ImageURLs)))

	return &publisher.Result{
		MediaID:     mediaID,
		PublishedAt: time.Now(),
	}, nil
}

func (p *Publisher) createImageContainer(ctx context.Context, creds publisher.Credentials, imageURL, caption string, carouselItem bool) (string, error) {
	params := url.Values{}
	params.Set("image_url", imageURL)
	params.Set("access_token", creds.AccessToken)
	if carouselItem {
		params.Set("is_carousel_item", "true")
	} else if caption != "" {
		params.Set("caption", caption)
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := p.client.PostForm(ctx, creds.AccountID+"/media", params, &response); err != nil {
		return "", err
	}
	if response.ID == "" {
		return "", fmt.Errorf("vendor returned no container ID")
	}
	return response.ID, nil
}

func (p *Publisher) createCarouselContainer(ctx context.Context, creds publisher.Credentials, imageURLs []string, caption string) (string, error) {
	// Each image becomes a captionless child container first.
	children := make([]string, 0, len(imageURLs))
	for _, imageURL := range imageURLs {
		childID, err := p.createImageContainer(ctx, creds, imageURL, "", true)
		if err != nil {
			return "", fmt.Errorf("failed to create carousel item: %w", err)
		}
		children = append(children, childID)
	}

	params := url.Values{}
	params.Set("media_type", "CAROUSEL")
	params.Set("children", strings.Join(children, ","))
	params.Set("access_token", creds.AccessToken)
	if caption != "" {
		params.Set("caption", caption)
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := p.client.PostForm(ctx, creds.AccountID+"/media", params, &response); err != nil {
		return "", err
	}
	if response.ID == "" {
		return "", fmt.Errorf("vendor returned no carousel container ID")
	}
	return response.ID, nil
}

// waitForContainer polls the container status at a fixed interval until
// it finishes, errors out, or the attempt budget is exhausted.
func (p *Publisher) waitForContainer(ctx context.Context, creds publisher.Credentials, containerID string) error {
	params := url.Values{}
	params.Set("fields", "status_code,status")
	params.Set("access_token", creds.AccessToken)

	for attempt := 1; attempt <= p.pollAttempts; attempt++ {
		var response struct {
			StatusCode string `json:"status_code"`
			Status     string `json:"status"`
		}
		if err := p.client.Get(ctx, containerID, params, &response); err != nil {
			return fmt.Errorf("failed to check container status: %w", err)
		}

		switch response.StatusCode {
		case containerFinished:
			return nil
		case containerError:
			return fmt.Errorf("media container processing failed: %s", response.Status)
		}

		p.logger.Debug("Media container still processing",
			zap.String("container_id", containerID),
			zap.String("status_code", response.StatusCode),
			zap.Int("attempt", attempt))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.pollInterval):
		}
	}

	return fmt.Errorf("timed out waiting for media container %s to finish processing", containerID)
}

func (p *Publisher) publishContainer(ctx context.Context, creds publisher.Credentials, containerID string) (string, error) {
	params := url.Values{}
	params.Set("creation_id", containerID)
	params.Set("access_token", creds.AccessToken)

	var response struct {
		ID string `json:"id"`
	}
	if err := p.client.PostForm(ctx, creds.AccountID+"/media_publish", params, &response); err != nil {
		return "", err
	}
	if response.ID == "" {
		return "", fmt.Errorf("vendor returned no media ID")
	}
	return response.ID, nil
}
