package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	tokenURL             = "https://oauth2.googleapis.com/token"
	accountManagementAPI = "https://mybusinessaccountmanagement.googleapis.com/v1"
	businessInfoAPI      = "https://mybusinessbusinessinformation.googleapis.com/v1"
	performanceAPI       = "https://businessprofileperformance.googleapis.com/v1"
	legacyAPI            = "https://mybusiness.googleapis.com/v4"
)

// Client talks to the Google Business Profile APIs. Google splits the
// surface across several hosts, so each method carries its own base.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
	logger       *zap.Logger

	tokenBase       string
	accountBase     string
	infoBase        string
	performanceBase string
	legacyBase      string
}

func NewClient(clientID, clientSecret, redirectURI string, logger *zap.Logger) *Client {
	return &Client{
		clientID:        clientID,
		clientSecret:    clientSecret,
		redirectURI:     redirectURI,
		httpClient:      &http.Client{Timeout: 60 * time.Second},
		logger:          logger,
		tokenBase:       tokenURL,
		accountBase:     accountManagementAPI,
		infoBase:        businessInfoAPI,
		performanceBase: performanceAPI,
		legacyBase:      legacyAPI,
	}
}

type apiError struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("google API error (%d %s): %s", e.Code, e.Status, e.Message)
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// ExchangeCode swaps the OAuth authorization code for tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenBase, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token TokenResponse
	if err := c.doJSON(req, &token); err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return &token, nil
}

// RefreshToken trades a refresh token for a fresh access token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenBase, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token TokenResponse
	if err := c.doJSON(req, &token); err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return &token, nil
}

type Account struct {
	Name        string `json:"name"`
	AccountName string `json:"accountName"`
	Type        string `json:"type"`
}

type accountsResponse struct {
	Accounts []Account `json:"accounts"`
}

// Accounts lists the business accounts the token can manage.
func (c *Client) Accounts(ctx context.Context, accessToken string) ([]Account, error) {
	var resp accountsResponse
	if err := c.get(ctx, c.accountBase+"/accounts", accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return resp.Accounts, nil
}

type Location struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	StoreCode string `json:"storeCode,omitempty"`
}

type locationsResponse struct {
	Locations     []Location `json:"locations"`
	NextPageToken string     `json:"nextPageToken"`
}

// Locations lists the locations under an account, following pagination.
func (c *Client) Locations(ctx context.Context, accessToken, accountName string) ([]Location, error) {
	var all []Location
	pageToken := ""
	for {
		params := url.Values{}
		params.Set("readMask", "name,title,storeCode")
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp locationsResponse
		endpoint := fmt.Sprintf("%s/%s/locations", c.infoBase, accountName)
		if err := c.get(ctx, endpoint, accessToken, params, &resp); err != nil {
			return nil, fmt.Errorf("failed to list locations: %w", err)
		}

		all = append(all, resp.Locations...)
		if resp.NextPageToken == "" {
			return all, nil
		}
		pageToken = resp.NextPageToken
	}
}

type MediaItem struct {
	Name         string `json:"name"`
	GoogleURL    string `json:"googleUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// UploadMedia attaches a publicly reachable photo URL to a location.
func (c *Client) UploadMedia(ctx context.Context, accessToken, accountName, locationName, sourceURL string) (*MediaItem, error) {
	payload := map[string]any{
		"mediaFormat": "PHOTO",
		"locationAssociation": map[string]string{
			"category": "ADDITIONAL",
		},
		"sourceUrl": sourceURL,
	}

	endpoint := fmt.Sprintf("%s/%s/%s/media", c.legacyBase, accountName, locationName)
	var item MediaItem
	if err := c.post(ctx, endpoint, accessToken, payload, &item); err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}

	c.logger.Info("Media uploaded to business profile",
		zap.String("location", locationName),
		zap.String("media", item.Name))
	return &item, nil
}

type Review struct {
	Name     string `json:"name"`
	Reviewer struct {
		DisplayName string `json:"displayName"`
	} `json:"reviewer"`
	StarRating string `json:"starRating"`
	Comment    string `json:"comment"`
	CreateTime string `json:"createTime"`
}

type reviewsResponse struct {
	Reviews          []Review `json:"reviews"`
	AverageRating    float64  `json:"averageRating"`
	TotalReviewCount int      `json:"totalReviewCount"`
}

type ReviewSummary struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"average_rating"`
	TotalCount    int      `json:"total_count"`
}

// Reviews fetches the most recent reviews for a location.
func (c *Client) Reviews(ctx context.Context, accessToken, accountName, locationName string) (*ReviewSummary, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/reviews", c.legacyBase, accountName, locationName)
	var resp reviewsResponse
	if err := c.get(ctx, endpoint, accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return &ReviewSummary{
		Reviews:       resp.Reviews,
		AverageRating: resp.AverageRating,
		TotalCount:    resp.TotalReviewCount,
	}, nil
}

type SearchKeyword struct {
	Keyword string `json:"keyword"`
	Count   int64  `json:"count"`
}

type searchKeywordsResponse struct {
	SearchKeywordsCounts []struct {
		SearchKeyword string `json:"searchKeyword"`
		InsightsValue struct {
			Value          string `json:"value"`
			ThresholdValue string `json:"threshold"`
		} `json:"insightsValue"`
	} `json:"searchKeywordsCounts"`
	NextPageToken string `json:"nextPageToken"`
}

// SearchKeywords returns the monthly search keyword impressions for a
// location. Google reports small counts only as a threshold, which is
// treated as the count itself.
func (c *Client) SearchKeywords(ctx context.Context, accessToken, locationName string, month time.Time) ([]SearchKeyword, error) {
	params := url.Values{}
	params.Set("monthlyRange.startMonth.year", fmt.Sprintf("%d", month.Year()))
	params.Set("monthlyRange.startMonth.month", fmt.Sprintf("%d", int(month.Month())))
	params.Set("monthlyRange.endMonth.year", fmt.Sprintf("%d", month.Year()))
	params.Set("monthlyRange.endMonth.month", fmt.Sprintf("%d", int(month.Month())))

	endpoint := fmt.Sprintf("%s/%s/searchkeywords/impressions/monthly", c.performanceBase, locationName)
	var resp searchKeywordsResponse
	if err := c.get(ctx, endpoint, accessToken, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch search keywords: %w", err)
	}

	keywords := make([]SearchKeyword, 0, len(resp.SearchKeywordsCounts))
	for _, kw := range resp.SearchKeywordsCounts {
		value := kw.InsightsValue.Value
		if value == "" {
			value = kw.InsightsValue.ThresholdValue
		}
		var count int64
		fmt.Sscanf(value, "%d", &count)
		keywords = append(keywords, SearchKeyword{
			Keyword: kw.SearchKeyword,
			Count:   count,
		})
	}
	return keywords, nil
}

func (c *Client) get(ctx context.Context, endpoint, accessToken string, params url.Values, result any) error {
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return c.doJSON(req, result)
}

func (c *Client) post(ctx context.Context, endpoint, accessToken string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, result)
}

func (c *Client) doJSON(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Error envelope takes precedence over the status code.
	var envelope struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return envelope.Error
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("google API returned status %d: %s", resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
