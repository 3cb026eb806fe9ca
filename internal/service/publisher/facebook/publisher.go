package facebook

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/service/publisher"
	"github.com/flowuphq/flowup/internal/service/publisher/graph"
)

const (
	PlatformName = "facebook"
)

// Publisher posts images to a Facebook page. A single image goes
// straight to the photos edge; multiple images are uploaded unpublished
// and attached to one feed post.
type Publisher struct {
	logger *zap.Logger
	client *graph.Client
}

func New(logger *zap.Logger, client *graph.Client) *Publisher {
	return &Publisher{
		logger: logger,
		client: client,
	}
}

func (p *Publisher) PlatformName() string {
	return PlatformName
}

func (p *Publisher) Publish(ctx context.Context, req publisher.Request) (*publisher.Result, error) {
	if req.AccountID == "" || req.AccessToken == "" {
		return nil, fmt.Errorf("facebook publish requires page ID and page access token")
	}
	if len(req.ImageURLs) == 0 {
		return nil, fmt.Errorf("facebook publish requires at least one image")
	}

	var postID string
	var err error
	if len(req.ImageURLs) == 1 {
		postID, err = p.publishSinglePhoto(ctx, req)
	} else {
		postID, err = p.publishMultiPhoto(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	p.logger.Info("Facebook post published",
		zap.String("page_id", req.AccountID),
		zap.String("post_id", postID),
		zap.Int("image_count", len(req.ImageURLs)))

	return &publisher.Result{
		MediaID:     postID,
		PublishedAt: time.Now(),
	}, nil
}

func (p *Publisher) publishSinglePhoto(ctx context.Context, req publisher.Request) (string, error) {
	params := url.Values{}
	params.Set("url", req.ImageURLs[0])
	params.Set("caption", req.Caption)
	params.Set("access_token", req.AccessToken)

	var response struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := p.client.PostForm(ctx, req.AccountID+"/photos", params, &response); err != nil {
		return "", fmt.Errorf("failed to publish photo: %w", err)
	}

	if response.PostID != "" {
		return response.PostID, nil
	}
	if response.ID == "" {
		return "", fmt.Errorf("vendor returned no post ID")
	}
	return response.ID, nil
}

func (p *Publisher) publishMultiPhoto(ctx context.Context, req publisher.Request) (string, error) {
	// Upload each photo unpublished, then attach them all to one post.
	photoIDs := make([]string, 0, len(req.ImageURLs))
	for _, imageURL := range req.ImageURLs {
		params := url.Values{}
		params.Set("url", imageURL)
		params.Set("published", "false")
		params.Set("access_token", req.AccessToken)

		var response struct {
			ID string `json:"id"`
		}
		if err := p.client.PostForm(ctx, req.AccountID+"/photos", params, &response); err != nil {
			return "", fmt.Errorf("failed to upload photo: %w", err)
		}
		if response.ID == "" {
			return "", fmt.Errorf("vendor returned no photo ID")
		}
		photoIDs = append(photoIDs, response.ID)
	}

	params := url.Values{}
	params.Set("message", req.Caption)
	params.Set("access_token", req.AccessToken)
	for i, photoID := range photoIDs {
		params.Set(fmt.Sprintf("attached_media[%d]", i), fmt.Sprintf(`{"media_fbid":"%s"}`, photoID))
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := p.client.PostForm(ctx, req.AccountID+"/feed", params, &response); err != nil {
		return "", fmt.Errorf("failed to create feed post: %w", err)
	}
	if response.ID == "" {
		return "", fmt.Errorf("vendor returned no post ID")
	}
	return response.ID, nil
}
