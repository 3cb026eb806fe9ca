package service

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flowuphq/flowup/internal/models"
)

// ConnectionService owns the per-user platform credential records.
type ConnectionService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewConnectionService(db *gorm.DB, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{
		db:     db,
		logger: logger,
	}
}

// Upsert overwrites the user's record for the platform; reconnecting
// replaces the previous credentials wholesale.
func (s *ConnectionService) Upsert(conn *models.Connection) error {
	conn.Connected = true
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		UpdateAll: true,
	}).Create(conn).Error
	if err != nil {
		return fmt.Errorf("failed to save connection: %w", err)
	}

	s.logger.Info("Connection saved",
		zap.String("user_id", conn.UserID),
		zap.String("platform", conn.Platform),
		zap.String("account_id", conn.AccountID))
	return nil
}

func (s *ConnectionService) Get(userID, platform string) (*models.Connection, error) {
	var conn models.Connection
	if err := s.db.Where("user_id = ? AND platform = ?", userID, platform).First(&conn).Error; err != nil {
		return nil, fmt.Errorf("connection not found: %w", err)
	}
	return &conn, nil
}

func (s *ConnectionService) List(userID string) ([]models.Connection, error) {
	var conns []models.Connection
	if err := s.db.Where("user_id = ?", userID).Find(&conns).Error; err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return conns, nil
}

// Disconnect blanks the credential fields but keeps the row so the
// dashboard can show the account was connected before.
func (s *ConnectionService) Disconnect(userID, platform string) error {
	result := s.db.Model(&models.Connection{}).
		Where("user_id = ? AND platform = ?", userID, platform).
		Updates(map[string]interface{}{
			"access_token":      "",
			"page_access_token": "",
			"connected":         false,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to disconnect: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	s.logger.Info("Connection disconnected",
		zap.String("user_id", userID),
		zap.String("platform", platform))
	return nil
}
