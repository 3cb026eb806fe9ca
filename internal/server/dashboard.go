package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) handleDashboardLogin(c *gin.Context) {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Code == "" {
		respondError(c, http.StatusBadRequest, "A TOTP code is required")
		return
	}

	if !s.Auth.ValidateCode(body.Code) {
		respondError(c, http.StatusUnauthorized, "Invalid code")
		return
	}

	token, err := s.Auth.CreateSession()
	if err != nil {
		s.Logger.Error("Failed to create session", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to create session")
		return
	}

	c.SetCookie("auth_token", token, 24*60*60, "/", "", false, true)
	respondOK(c, gin.H{"token": token})
}

func (s *Server) handleDashboardSummary(c *gin.Context) {
	summary, err := s.Monitoring.GetDashboardSummary()
	if err != nil {
		s.Logger.Error("Failed to load dashboard summary", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to load summary")
		return
	}

	respondOK(c, gin.H{"summary": summary})
}

func (s *Server) handleDashboardErrors(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			respondError(c, http.StatusBadRequest, "Limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	errors, err := s.Monitoring.GetRecentErrors(limit)
	if err != nil {
		s.Logger.Error("Failed to load recent errors", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to load errors")
		return
	}

	respondOK(c, gin.H{"errors": errors})
}
