package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleCronPublish lets an external cron service trigger one
// scan-and-publish pass. The shared secret is checked before anything
// else; a bad request never touches the stores.
func (s *Server) handleCronPublish(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" || s.Config.Cron.Secret == "" || token != s.Config.Cron.Secret {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := s.Orchestrator.ProcessDuePosts(c.Request.Context()); err != nil {
		s.Logger.Error("Cron publish pass failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Publish pass failed")
		return
	}

	respondOK(c, gin.H{"message": "Publish pass completed"})
}
