package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/models"
	"github.com/flowuphq/flowup/internal/service/publisher"
)

// PostStore is the slice of PostService the orchestrator needs.
type PostStore interface {
	DuePosts(now time.Time) ([]models.Post, error)
	ClaimForPublishing(postID uint) (bool, error)
	MarkPublished(postID uint, mediaIDs []string) error
	MarkFailed(postID uint, reason string) error
}

// ConnectionStore resolves stored platform credentials for a user.
type ConnectionStore interface {
	Get(userID, platform string) (*models.Connection, error)
}

// PublishRecorder persists per-platform publish outcomes.
type PublishRecorder interface {
	RecordPublish(postID uint, platform, mediaID string, publishErr error)
}

// Orchestrator scans for due posts and drives each one through its
// requested platform adapters. One goroutine per due post, no ordering
// across posts; within a post, platforms run sequentially.
type Orchestrator struct {
	logger      *zap.Logger
	posts       PostStore
	connections ConnectionStore
	manager     *publisher.Manager
	recorder    PublishRecorder
}

func NewOrchestrator(logger *zap.Logger, posts PostStore, connections ConnectionStore, manager *publisher.Manager, recorder PublishRecorder) *Orchestrator {
	return &Orchestrator{
		logger:      logger,
		posts:       posts,
		connections: connections,
		manager:     manager,
		recorder:    recorder,
	}
}

// ProcessDuePosts runs one scan-and-publish pass.
func (o *Orchestrator) ProcessDuePosts(ctx context.Context) error {
	due, err := o.posts.DuePosts(time.Now())
	if err != nil {
		return fmt.Errorf("failed to scan due posts: %w", err)
	}

	if len(due) == 0 {
		o.logger.Debug("No due posts")
		return nil
	}

	o.logger.Info("Processing due posts", zap.Int("count", len(due)))

	var wg sync.WaitGroup
	for i := range due {
		wg.Add(1)
		go func(post models.Post) {
			defer wg.Done()
			o.publishPost(ctx, &post)
		}(due[i])
	}
	wg.Wait()

	return nil
}

func (o *Orchestrator) publishPost(ctx context.Context, post *models.Post) {
	claimed, err := o.posts.ClaimForPublishing(post.ID)
	if err != nil {
		o.logger.Error("Failed to claim post",
			zap.String("post_id", post.PublicID),
			zap.Error(err))
		return
	}
	if !claimed {
		// Another orchestrator run owns this post.
		o.logger.Debug("Post already claimed, skipping",
			zap.String("post_id", post.PublicID))
		return
	}

	mediaIDs := make([]string, 0, len(post.Platforms))
	for _, platform := range post.Platforms {
		mediaID, err := o.publishToPlatform(ctx, post, platform)
		if o.recorder != nil {
			o.recorder.RecordPublish(post.ID, platform, mediaID, err)
		}
		if err != nil {
			o.logger.Error("Publish failed",
				zap.String("post_id", post.PublicID),
				zap.String("platform", platform),
				zap.Error(err))

			if markErr := o.posts.MarkFailed(post.ID, err.Error()); markErr != nil {
				o.logger.Error("Failed to record failure",
					zap.String("post_id", post.PublicID),
					zap.Error(markErr))
			}
			return
		}
		mediaIDs = append(mediaIDs, mediaID)
	}

	if err := o.posts.MarkPublished(post.ID, mediaIDs); err != nil {
		o.logger.Error("Failed to record publish",
			zap.String("post_id", post.PublicID),
			zap.Error(err))
		return
	}

	o.logger.Info("Post published",
		zap.String("post_id", post.PublicID),
		zap.Strings("platforms", []string(post.Platforms)),
		zap.Strings("media_ids", mediaIDs))
}

func (o *Orchestrator) publishToPlatform(ctx context.Context, post *models.Post, platform string) (string, error) {
	conn, err := o.connections.Get(post.UserID, platform)
	if err != nil {
		return "", fmt.Errorf("no %s connection for user: %w", platform, err)
	}

	creds, err := credentialsFor(conn, platform)
	if err != nil {
		return "", err
	}

	pub, err := o.manager.Get(platform)
	if err != nil {
		return "", err
	}

	result, err := pub.Publish(ctx, publisher.Request{
		Credentials: creds,
		Caption:     post.Caption,
		ImageURLs:   []string(post.ImageURLs),
	})
	if err != nil {
		return "", err
	}
	return result.MediaID, nil
}

func credentialsFor(conn *models.Connection, platform string) (publisher.Credentials, error) {
	if !conn.Connected {
		return publisher.Credentials{}, fmt.Errorf("%s account is disconnected", platform)
	}

	// Facebook publishes with the page's own token, not the user token.
	if platform == models.PlatformFacebook {
		if conn.PageID == "" || conn.PageAccessToken == "" {
			return publisher.Credentials{}, fmt.Errorf("facebook page is not connected")
		}
		return publisher.Credentials{
			AccountID:   conn.PageID,
			AccessToken: conn.PageAccessToken,
		}, nil
	}

	if conn.AccountID == "" || conn.AccessToken == "" {
		return publisher.Credentials{}, fmt.Errorf("%s account is missing credentials", platform)
	}
	return publisher.Credentials{
		AccountID:   conn.AccountID,
		AccessToken: conn.AccessToken,
	}, nil
}
