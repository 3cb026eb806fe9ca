package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/models"
	"github.com/flowuphq/flowup/internal/service/publisher"
	"github.com/flowuphq/flowup/internal/service/publisher/graph"
	"github.com/flowuphq/flowup/internal/service/publisher/instagram"
)

// handleMetaCallback finishes the Meta OAuth flow: trades the code for
// a long-lived token, discovers the user's pages and linked Instagram
// business accounts, and stores a connection per platform.
func (s *Server) handleMetaCallback(c *gin.Context) {
	var body struct {
		Code        string `json:"code"`
		RedirectURI string `json:"redirect_uri"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Code == "" {
		respondError(c, http.StatusBadRequest, "Authorization code is required")
		return
	}

	userID := requestUserID(c)
	ctx := c.Request.Context()

	shortToken, err := s.Graph.ExchangeCode(ctx, s.Config.Meta.AppID, s.Config.Meta.AppSecret, body.RedirectURI, body.Code)
	if err != nil {
		s.Logger.Error("Meta code exchange failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Failed to exchange authorization code")
		return
	}

	longToken, err := s.Graph.LongLivedToken(ctx, s.Config.Meta.AppID, s.Config.Meta.AppSecret, shortToken.AccessToken)
	if err != nil {
		s.Logger.Error("Meta token upgrade failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Failed to obtain long-lived token")
		return
	}

	pages, err := s.Graph.UserPages(ctx, longToken.AccessToken)
	if err != nil {
		s.Logger.Error("Failed to list user pages", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Failed to list pages")
		return
	}
	if len(pages) == 0 {
		respondError(c, http.StatusBadRequest, "No pages available for this account")
		return
	}

	var expiresAt *time.Time
	if longToken.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(longToken.ExpiresIn) * time.Second)
		expiresAt = &t
	}

	connected := make([]string, 0, 2)

	// First page wins; the source of truth for multi-page accounts is a
	// follow-up reconnect with the desired page.
	page := pages[0]
	fbConn := &models.Connection{
		UserID:          userID,
		Platform:        models.PlatformFacebook,
		AccessToken:     longToken.AccessToken,
		AccountID:       page.ID,
		AccountName:     page.Name,
		PageID:          page.ID,
		PageAccessToken: page.AccessToken,
		ExpiresAt:       expiresAt,
	}
	if err := s.Connections.Upsert(fbConn); err != nil {
		s.Logger.Error("Failed to save facebook connection", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to save connection")
		return
	}
	connected = append(connected, models.PlatformFacebook)

	// Instagram rides on whichever page has a linked business account.
	for _, p := range pages {
		if p.InstagramBusinessAccount == nil {
			continue
		}
		igConn := &models.Connection{
			UserID:      userID,
			Platform:    models.PlatformInstagram,
			AccessToken: longToken.AccessToken,
			AccountID:   p.InstagramBusinessAccount.ID,
			AccountName: p.Name,
			PageID:      p.ID,
			ExpiresAt:   expiresAt,
		}
		if err := s.Connections.Upsert(igConn); err != nil {
			s.Logger.Error("Failed to save instagram connection", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Failed to save connection")
			return
		}
		connected = append(connected, models.PlatformInstagram)
		break
	}

	respondOK(c, gin.H{
		"connected": connected,
		"page":      gin.H{"id": page.ID, "name": page.Name},
	})
}

// handleMetaInsights serves Instagram account insights with a
// cache-aside layer in front of the Graph API.
func (s *Server) handleMetaInsights(c *gin.Context) {
	userID := requestUserID(c)
	metricsParam := c.DefaultQuery("metrics", "impressions,reach,follower_count")
	period := c.DefaultQuery("period", "day")
	metrics := strings.Split(metricsParam, ",")

	conn, err := s.Connections.Get(userID, models.PlatformInstagram)
	if err != nil || !conn.Connected {
		respondError(c, http.StatusBadRequest, "Instagram account is not connected")
		return
	}

	ctx := c.Request.Context()
	cacheKey := fmt.Sprintf("insights:%s:%s:%s", userID, metricsParam, period)

	var cached map[string]float64
	if hit, err := s.Cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		respondOK(c, gin.H{"insights": cached, "cached": true})
		return
	}

	insights, err := s.Graph.AccountInsights(ctx, conn.AccountID, conn.AccessToken, metrics, period)
	if err != nil {
		if graph.IsReconnect(err) {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}
		s.Logger.Error("Failed to fetch insights", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Failed to fetch insights")
		return
	}

	if err := s.Cache.SetJSON(ctx, cacheKey, insights, s.insightsTTL); err != nil {
		s.Logger.Warn("Failed to cache insights", zap.Error(err))
	}

	respondOK(c, gin.H{"insights": insights, "cached": false})
}

// handleInstagramPublish publishes immediately with the stored
// connection, skipping the scheduler.
func (s *Server) handleInstagramPublish(c *gin.Context) {
	var body struct {
		Caption   string   `json:"caption"`
		ImageURLs []string `json:"image_urls"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	conn, err := s.Connections.Get(requestUserID(c), models.PlatformInstagram)
	if err != nil || !conn.Connected {
		respondError(c, http.StatusBadRequest, "Instagram account is not connected")
		return
	}

	pub, err := s.Manager.Get(instagram.PlatformName)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Instagram publisher unavailable")
		return
	}

	result, err := pub.Publish(c.Request.Context(), publisher.Request{
		Credentials: publisher.Credentials{
			AccountID:   conn.AccountID,
			AccessToken: conn.AccessToken,
		},
		Caption:   body.Caption,
		ImageURLs: body.ImageURLs,
	})
	if err != nil {
		if graph.IsReconnect(err) {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	respondOK(c, gin.H{"media_id": result.MediaID, "published_at": result.PublishedAt})
}
