package graph

import (
	"context"
	"net/url"
)

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExchangeCode trades an OAuth authorization code for a short-lived
// user access token.
func (c *Client) ExchangeCode(ctx context.Context, appID, appSecret, redirectURI, code string) (*TokenResponse, error) {
	params := url.Values{}
	params.Set("client_id", appID)
	params.Set("client_secret", appSecret)
	params.Set("redirect_uri", redirectURI)
	params.Set("code", code)

	var token TokenResponse
	if err := c.Get(ctx, "oauth/access_token", params, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// LongLivedToken upgrades a short-lived user token to a ~60 day one.
func (c *Client) LongLivedToken(ctx context.Context, appID, appSecret, shortToken string) (*TokenResponse, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", appID)
	params.Set("client_secret", appSecret)
	params.Set("fb_exchange_token", shortToken)

	var token TokenResponse
	if err := c.Get(ctx, "oauth/access_token", params, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

type Page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`

	InstagramBusinessAccount *struct {
		ID string `json:"id"`
	} `json:"instagram_business_account"`
}

// UserPages lists the pages the user manages, each with its own page
// token and linked Instagram business account when one exists.
func (c *Client) UserPages(ctx context.Context, userToken string) ([]Page, error) {
	params := url.Values{}
	params.Set("fields", "id,name,access_token,instagram_business_account")
	params.Set("access_token", userToken)

	var response struct {
		Data []Page `json:"data"`
	}
	if err := c.Get(ctx, "me/accounts", params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}
