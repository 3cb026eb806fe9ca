package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flowuphq/flowup/internal/models"
)

func (s *Server) handleListConnections(c *gin.Context) {
	conns, err := s.Connections.List(requestUserID(c))
	if err != nil {
		s.Logger.Error("Failed to list connections", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to list connections")
		return
	}

	respondOK(c, gin.H{"connections": conns})
}

func (s *Server) handleDisconnect(c *gin.Context) {
	platform := c.Param("platform")
	switch platform {
	case models.PlatformInstagram, models.PlatformFacebook, models.PlatformGoogle:
	default:
		respondError(c, http.StatusBadRequest, "Unknown platform: "+platform)
		return
	}

	err := s.Connections.Disconnect(requestUserID(c), platform)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "No connection for platform "+platform)
		return
	}
	if err != nil {
		s.Logger.Error("Failed to disconnect", zap.String("platform", platform), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to disconnect")
		return
	}

	respondOK(c, gin.H{"platform": platform, "connected": false})
}
