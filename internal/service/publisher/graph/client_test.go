package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestErrorEnvelopeWins(t *testing.T) {
	// The vendor ships errors with a 200-family body sometimes and a
	// 4xx other times; the envelope message must survive either way.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"Unsupported request","type":"GraphMethodException","code":100}}`)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "v19.0", zap.NewNop())

	err := client.Get(context.Background(), "me", nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 100, apiErr.Code)
	assert.Contains(t, err.Error(), "Unsupported request")
}

func TestExpiredSessionBecomesReconnectError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Error validating access token","type":"OAuthException","code":190}}`)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "v19.0", zap.NewNop())

	err := client.Get(context.Background(), "me/accounts", nil, nil)
	require.Error(t, err)
	assert.True(t, IsReconnect(err))
	assert.Contains(t, err.Error(), "reconnect")

	// Wrapped errors still register.
	wrapped := fmt.Errorf("listing pages: %w", err)
	assert.True(t, IsReconnect(wrapped))

	assert.False(t, IsReconnect(fmt.Errorf("plain error")))
}

func TestNonJSONErrorFallsBackToStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream unavailable")
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "v19.0", zap.NewNop())

	err := client.Get(context.Background(), "me", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestGetDecodesResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v19.0/me", r.URL.Path)
		assert.Equal(t, "token", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"42","name":"Test"}`)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "v19.0", zap.NewNop())

	params := url.Values{}
	params.Set("access_token", "token")

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, client.Get(context.Background(), "me", params, &out))
	assert.Equal(t, "42", out.ID)
	assert.Equal(t, "Test", out.Name)
}
