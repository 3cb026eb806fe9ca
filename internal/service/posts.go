package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flowuphq/flowup/internal/models"
)

// PostService owns the scheduled-post collection.
type PostService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPostService(db *gorm.DB, logger *zap.Logger) *PostService {
	return &PostService{
		db:     db,
		logger: logger,
	}
}

type CreatePostInput struct {
	Title       string    `json:"title"`
	Caption     string    `json:"caption"`
	ImageURLs   []string  `json:"image_urls"`
	Platforms   []string  `json:"platforms"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (s *PostService) Create(userID string, input CreatePostInput) (*models.Post, error) {
	if len(input.Platforms) == 0 {
		return nil, fmt.Errorf("at least one platform is required")
	}
	for _, platform := range input.Platforms {
		if platform != models.PlatformInstagram && platform != models.PlatformFacebook {
			return nil, fmt.Errorf("unsupported platform: %s", platform)
		}
	}
	if len(input.ImageURLs) == 0 {
		return nil, fmt.Errorf("at least one image is required")
	}

	scheduledAt := input.ScheduledAt
	if scheduledAt.IsZero() {
		scheduledAt = time.Now()
	}

	post := &models.Post{
		PublicID:    uuid.NewString(),
		UserID:      userID,
		Title:       input.Title,
		Caption:     input.Caption,
		ImageURLs:   models.StringArray(input.ImageURLs),
		Platforms:   models.StringArray(input.Platforms),
		Status:      models.PostStatusScheduled,
		ScheduledAt: scheduledAt,
	}

	if err := s.db.Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.logger.Info("Post scheduled",
		zap.String("post_id", post.PublicID),
		zap.String("user_id", userID),
		zap.Strings("platforms", input.Platforms),
		zap.Time("scheduled_at", scheduledAt))

	return post, nil
}

func (s *PostService) List(userID string) ([]models.Post, error) {
	var posts []models.Post
	if err := s.db.Where("user_id = ?", userID).
		Order("scheduled_at DESC").
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) Get(userID, publicID string) (*models.Post, error) {
	var post models.Post
	if err := s.db.Where("user_id = ? AND public_id = ?", userID, publicID).First(&post).Error; err != nil {
		return nil, fmt.Errorf("post not found: %w", err)
	}
	return &post, nil
}

func (s *PostService) Delete(userID, publicID string) error {
	result := s.db.Where("user_id = ? AND public_id = ?", userID, publicID).Delete(&models.Post{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Republish clones a finished or failed post into a fresh scheduled
// document referencing the same media and caption.
func (s *PostService) Republish(userID, publicID string, scheduledAt time.Time) (*models.Post, error) {
	original, err := s.Get(userID, publicID)
	if err != nil {
		return nil, err
	}
	if original.Status == models.PostStatusScheduled || original.Status == models.PostStatusPublishing {
		return nil, fmt.Errorf("post is still %s and cannot be republished", original.Status)
	}

	return s.Create(userID, CreatePostInput{
		Title:       original.Title,
		Caption:     original.Caption,
		ImageURLs:   []string(original.ImageURLs),
		Platforms:   []string(original.Platforms),
		ScheduledAt: scheduledAt,
	})
}

// DuePosts returns every post whose schedule has passed and is still
// waiting to be picked up.
func (s *PostService) DuePosts(now time.Time) ([]models.Post, error) {
	var posts []models.Post
	if err := s.db.Where("status = ? AND scheduled_at <= ?", models.PostStatusScheduled, now).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to scan due posts: %w", err)
	}
	return posts, nil
}

// ClaimForPublishing atomically moves a post from scheduled to
// publishing. The conditional update is the claim: when two runs race,
// only one sees RowsAffected > 0 and owns the post.
func (s *PostService) ClaimForPublishing(postID uint) (bool, error) {
	result := s.db.Model(&models.Post{}).
		Where("id = ? AND status = ?", postID, models.PostStatusScheduled).
		Update("status", models.PostStatusPublishing)
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim post: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *PostService) MarkPublished(postID uint, mediaIDs []string) error {
	now := time.Now()
	return s.db.Model(&models.Post{}).
		Where("id = ?", postID).
		Updates(map[string]interface{}{
			"status":         models.PostStatusPublished,
			"media_ids":      models.StringArray(mediaIDs),
			"failure_reason": "",
			"published_at":   &now,
		}).Error
}

func (s *PostService) MarkFailed(postID uint, reason string) error {
	return s.db.Model(&models.Post{}).
		Where("id = ?", postID).
		Updates(map[string]interface{}{
			"status":         models.PostStatusFailed,
			"failure_reason": reason,
		}).Error
}
