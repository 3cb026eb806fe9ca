package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/models"
	"github.com/flowuphq/flowup/pkg/util"
)

// handleGoogleCallback finishes the Google OAuth flow and records the
// business account plus its first location.
func (s *Server) handleGoogleCallback(c *gin.Context) {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Code == "" {
		respondError(c, http.StatusBadRequest, "Authorization code is required")
		return
	}

	ctx := c.Request.Context()

	token, err := s.Google.ExchangeCode(ctx, body.Code)
	if err != nil {
		s.Logger.Error("Google code exchange failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Failed to exchange authorization code")
		return
	}

	accounts, err := s.Google.Accounts(ctx, token.AccessToken)
	if err != nil {
		s.Logger.Error("Failed to list business accounts", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Failed to list business accounts")
		return
	}
	if len(accounts) == 0 {
		respondError(c, http.StatusBadRequest, "No business accounts available")
		return
	}

	account := accounts[0]
	locations, err := s.Google.Locations(ctx, token.AccessToken, account.Name)
	if err != nil {
		s.Logger.Error("Failed to list locations", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Failed to list locations")
		return
	}

	conn := &models.Connection{
		UserID:       requestUserID(c),
		Platform:     models.PlatformGoogle,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		AccountID:    account.Name,
		AccountName:  account.AccountName,
	}
	if token.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
		conn.ExpiresAt = &t
	}
	if len(locations) > 0 {
		conn.LocationID = locations[0].Name
	}

	if err := s.Connections.Upsert(conn); err != nil {
		s.Logger.Error("Failed to save google connection", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to save connection")
		return
	}

	respondOK(c, gin.H{
		"account":   gin.H{"name": account.Name, "account_name": account.AccountName},
		"locations": locations,
	})
}

// googleConnection resolves the stored Google connection, refreshing
// the access token when it has expired.
func (s *Server) googleConnection(c *gin.Context) (*models.Connection, bool) {
	conn, err := s.Connections.Get(requestUserID(c), models.PlatformGoogle)
	if err != nil || !conn.Connected {
		respondError(c, http.StatusBadRequest, "Google account is not connected")
		return nil, false
	}

	if conn.ExpiresAt != nil && time.Now().After(*conn.ExpiresAt) && conn.RefreshToken != "" {
		token, err := s.Google.RefreshToken(c.Request.Context(), conn.RefreshToken)
		if err != nil {
			s.Logger.Error("Google token refresh failed", zap.Error(err))
			respondError(c, http.StatusUnauthorized, "Google session expired, please reconnect the account")
			return nil, false
		}
		conn.AccessToken = token.AccessToken
		if token.ExpiresIn > 0 {
			t := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
			conn.ExpiresAt = &t
		}
		if err := s.Connections.Upsert(conn); err != nil {
			s.Logger.Warn("Failed to persist refreshed token", zap.Error(err))
		}
	}

	return conn, true
}

// handleGoogleMedia uploads a photo to the connected business profile
// location. The file lands in object storage first because the media
// API only accepts a source URL.
func (s *Server) handleGoogleMedia(c *gin.Context) {
	conn, ok := s.googleConnection(c)
	if !ok {
		return
	}
	if conn.LocationID == "" {
		respondError(c, http.StatusBadRequest, "No business location on the connected account")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "A file field is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	key := util.GenerateMediaKey(conn.UserID, fileHeader.Filename, time.Now())
	sourceURL, err := s.Storage.UploadFile(key, file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		s.Logger.Error("Failed to upload media to storage", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to store media")
		return
	}

	item, err := s.Google.UploadMedia(c.Request.Context(), conn.AccessToken, conn.AccountID, conn.LocationID, sourceURL)
	if err != nil {
		s.Logger.Error("Failed to upload media to business profile", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Failed to upload media to business profile")
		return
	}

	respondOK(c, gin.H{"media": item, "source_url": sourceURL})
}

func (s *Server) handleGoogleSearchKeywords(c *gin.Context) {
	conn, ok := s.googleConnection(c)
	if !ok {
		return
	}
	if conn.LocationID == "" {
		respondError(c, http.StatusBadRequest, "No business location on the connected account")
		return
	}

	var body struct {
		Month string `json:"month"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	month := time.Now().AddDate(0, -1, 0)
	if body.Month != "" {
		parsed, err := time.Parse("2006-01", body.Month)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Month must be formatted as YYYY-MM")
			return
		}
		month = parsed
	}

	keywords, err := s.Google.SearchKeywords(c.Request.Context(), conn.AccessToken, conn.LocationID, month)
	if err != nil {
		s.Logger.Error("Failed to fetch search keywords", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Failed to fetch search keywords")
		return
	}

	respondOK(c, gin.H{"keywords": keywords, "month": month.Format("2006-01")})
}

func (s *Server) handleGoogleReviews(c *gin.Context) {
	conn, ok := s.googleConnection(c)
	if !ok {
		return
	}
	if conn.LocationID == "" {
		respondError(c, http.StatusBadRequest, "No business location on the connected account")
		return
	}

	summary, err := s.Google.Reviews(c.Request.Context(), conn.AccessToken, conn.AccountID, conn.LocationID)
	if err != nil {
		s.Logger.Error("Failed to fetch reviews", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Failed to fetch reviews")
		return
	}

	respondOK(c, gin.H{
		"reviews":        summary.Reviews,
		"average_rating": summary.AverageRating,
		"total_count":    summary.TotalCount,
	})
}
