package service

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flowuphq/flowup/internal/models"
)

type MonitoringService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewMonitoringService(db *gorm.DB, logger *zap.Logger) *MonitoringService {
	return &MonitoringService{
		db:     db,
		logger: logger,
	}
}

// RecordPublish persists the per-platform outcome of one publish
// attempt and the matching counter sample.
func (m *MonitoringService) RecordPublish(postID uint, platform, mediaID string, publishErr error) {
	record := &models.PublishRecord{
		PostID:   postID,
		Platform: platform,
		MediaID:  mediaID,
	}

	if publishErr == nil {
		now := time.Now()
		record.Status = models.PublishRecordCompleted
		record.PublishedAt = &now
		m.recordMetric("publish_success", "counter", 1, map[string]interface{}{"platform": platform})
	} else {
		record.Status = models.PublishRecordFailed
		record.Error = publishErr.Error()
		m.recordMetric("publish_failure", "counter", 1, map[string]interface{}{"platform": platform})
		m.RecordError("ERROR", "publisher", fmt.Sprintf("Failed to publish to %s", platform), publishErr.Error(),
			WithPlatform(platform),
			WithPost(postID))
	}

	if err := m.db.Create(record).Error; err != nil {
		m.logger.Error("Failed to record publish outcome",
			zap.Uint("post_id", postID),
			zap.String("platform", platform),
			zap.Error(err))
	}
}

func (m *MonitoringService) RecordError(level, source, title, message string, options ...ErrorLogOption) error {
	errorLog := &models.ErrorLog{
		Level:   level,
		Source:  source,
		Title:   title,
		Message: message,
	}

	for _, option := range options {
		option(errorLog)
	}

	return m.db.Create(errorLog).Error
}

type ErrorLogOption func(*models.ErrorLog)

func WithPlatform(platformName string) ErrorLogOption {
	return func(e *models.ErrorLog) {
		e.PlatformName = platformName
	}
}

func WithPost(postID uint) ErrorLogOption {
	return func(e *models.ErrorLog) {
		e.PostID = &postID
	}
}

func WithContext(context map[string]interface{}) ErrorLogOption {
	return func(e *models.ErrorLog) {
		if contextBytes, err := json.Marshal(context); err == nil {
			e.Context = string(contextBytes)
		}
	}
}

func (m *MonitoringService) recordMetric(name, metricType string, value float64, tags map[string]interface{}) {
	var tagsJSON string
	if tags != nil {
		if tagsBytes, err := json.Marshal(tags); err == nil {
			tagsJSON = string(tagsBytes)
		}
	}

	metric := &models.MetricsSample{
		MetricName: name,
		MetricType: metricType,
		Value:      value,
		Tags:       tagsJSON,
		Timestamp:  time.Now(),
	}

	if err := m.db.Create(metric).Error; err != nil {
		m.logger.Error("Failed to record metric",
			zap.String("metric", name),
			zap.Error(err))
	}
}

// UpdatePlatformStats refreshes today's per-platform rollups.
func (m *MonitoringService) UpdatePlatformStats() error {
	today := time.Now().Truncate(24 * time.Hour)

	for _, platform := range []string{models.PlatformInstagram, models.PlatformFacebook} {
		var stats models.PlatformStats
		result := m.db.Where("date = ? AND platform = ?", today, platform).First(&stats)

		var total, successful, failed int64
		m.db.Model(&models.PublishRecord{}).Where("platform = ?", platform).Count(&total)
		m.db.Model(&models.PublishRecord{}).Where("platform = ? AND status = ?", platform, models.PublishRecordCompleted).Count(&successful)
		m.db.Model(&models.PublishRecord{}).Where("platform = ? AND status = ?", platform, models.PublishRecordFailed).Count(&failed)

		var lastSuccess, lastFailure models.PublishRecord
		m.db.Where("platform = ? AND status = ?", platform, models.PublishRecordCompleted).Order("published_at desc").First(&lastSuccess)
		m.db.Where("platform = ? AND status = ?", platform, models.PublishRecordFailed).Order("updated_at desc").First(&lastFailure)

		var errorCount int64
		m.db.Model(&models.ErrorLog{}).Where("platform_name = ? AND created_at >= ?", platform, today).Count(&errorCount)

		if result.Error == gorm.ErrRecordNotFound {
			stats = models.PlatformStats{
				Date:           today,
				Platform:       platform,
				TotalPublishes: int(total),
				Successful:     int(successful),
				Failed:         int(failed),
				ErrorCount:     int(errorCount),
			}
			if lastSuccess.ID != 0 {
				stats.LastSuccessAt = lastSuccess.PublishedAt
			}
			if lastFailure.ID != 0 {
				stats.LastFailureAt = &lastFailure.UpdatedAt
			}
			if err := m.db.Create(&stats).Error; err != nil {
				return err
			}
		} else {
			updates := map[string]interface{}{
				"total_publishes": total,
				"successful":      successful,
				"failed":          failed,
				"error_count":     errorCount,
			}
			if lastSuccess.ID != 0 {
				updates["last_success_at"] = lastSuccess.PublishedAt
			}
			if lastFailure.ID != 0 {
				updates["last_failure_at"] = lastFailure.UpdatedAt
			}
			if err := m.db.Model(&stats).Updates(updates).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// UpdateDashboardSummary refreshes the single-row dashboard aggregate.
func (m *MonitoringService) UpdateDashboardSummary() error {
	today := time.Now().Truncate(24 * time.Hour)

	var summary models.DashboardSummary
	result := m.db.First(&summary)

	var totalPosts, scheduledPosts int64
	m.db.Model(&models.Post{}).Count(&totalPosts)
	m.db.Model(&models.Post{}).Where("status = ?", models.PostStatusScheduled).Count(&scheduledPosts)

	var publishedToday, failedToday int64
	m.db.Model(&models.Post{}).Where("published_at >= ? AND status = ?", today, models.PostStatusPublished).Count(&publishedToday)
	m.db.Model(&models.Post{}).Where("updated_at >= ? AND status = ?", today, models.PostStatusFailed).Count(&failedToday)

	var connectedAccounts int64
	m.db.Model(&models.Connection{}).Where("connected = ?", true).Count(&connectedAccounts)

	var unresolvedErrors int64
	m.db.Model(&models.ErrorLog{}).Where("resolved = ?", false).Count(&unresolvedErrors)

	var lastPublish models.Post
	m.db.Where("status = ?", models.PostStatusPublished).Order("published_at desc").First(&lastPublish)

	summaryData := models.DashboardSummary{
		TotalPosts:            int(totalPosts),
		ScheduledPosts:        int(scheduledPosts),
		PublishedToday:        int(publishedToday),
		FailedToday:           int(failedToday),
		ConnectedAccounts:     int(connectedAccounts),
		UnresolvedErrorsCount: int(unresolvedErrors),
	}
	if lastPublish.ID != 0 {
		summaryData.LastPublishTime = lastPublish.PublishedAt
	}

	if result.Error == gorm.ErrRecordNotFound {
		summaryData.ID = 1 // single-row table
		return m.db.Create(&summaryData).Error
	}
	return m.db.Model(&summary).Updates(summaryData).Error
}

func (m *MonitoringService) GetDashboardSummary() (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	if err := m.db.First(&summary).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			if err := m.UpdateDashboardSummary(); err != nil {
				return nil, err
			}
			return m.GetDashboardSummary()
		}
		return nil, err
	}
	return &summary, nil
}

func (m *MonitoringService) GetRecentErrors(limit int) ([]models.ErrorLog, error) {
	var errors []models.ErrorLog
	err := m.db.Preload("Post").
		Order("created_at desc").
		Limit(limit).
		Find(&errors).Error
	return errors, err
}

// CleanupOldData drops stale samples, rollups and resolved errors.
func (m *MonitoringService) CleanupOldData(daysToKeep int) error {
	cutoffDate := time.Now().AddDate(0, 0, -daysToKeep)

	if err := m.db.Where("timestamp < ?", cutoffDate).Delete(&models.MetricsSample{}).Error; err != nil {
		return fmt.Errorf("failed to cleanup metrics samples: %w", err)
	}

	if err := m.db.Where("date < ?", cutoffDate).Delete(&models.PlatformStats{}).Error; err != nil {
		return fmt.Errorf("failed to cleanup platform stats: %w", err)
	}

	if err := m.db.Where("created_at < ? AND resolved = ?", cutoffDate, true).Delete(&models.ErrorLog{}).Error; err != nil {
		return fmt.Errorf("failed to cleanup resolved errors: %w", err)
	}

	return nil
}
