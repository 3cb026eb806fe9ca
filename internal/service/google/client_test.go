package google

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c := NewClient("client-id", "client-secret", "https://app.example.com/callback", zap.NewNop())
	c.tokenBase = ts.URL + "/token"
	c.accountBase = ts.URL + "/v1"
	c.infoBase = ts.URL + "/info/v1"
	c.performanceBase = ts.URL + "/perf/v1"
	c.legacyBase = ts.URL + "/v4"
	return c
}

func TestExchangeCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		r.ParseForm()
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "the-code", r.FormValue("code"))
		assert.Equal(t, "client-id", r.FormValue("client_id"))
		fmt.Fprint(w, `{"access_token":"at","refresh_token":"rt","expires_in":3600}`)
	})

	token, err := c.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "at", token.AccessToken)
	assert.Equal(t, "rt", token.RefreshToken)
	assert.EqualValues(t, 3600, token.ExpiresIn)
}

func TestLocationsFollowsPagination(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/info/v1/accounts/1/locations", r.URL.Path)
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		if r.URL.Query().Get("pageToken") == "" {
			fmt.Fprint(w, `{"locations":[{"name":"locations/1","title":"Shop A"}],"nextPageToken":"next"}`)
			return
		}
		fmt.Fprint(w, `{"locations":[{"name":"locations/2","title":"Shop B"}]}`)
	})

	locations, err := c.Locations(context.Background(), "at", "accounts/1")
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "Shop A", locations[0].Title)
	assert.Equal(t, "locations/2", locations[1].Name)
}

func TestSearchKeywordsThresholdFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/perf/v1/locations/1/searchkeywords/impressions/monthly", r.URL.Path)
		assert.Equal(t, "2026", r.URL.Query().Get("monthlyRange.startMonth.year"))
		fmt.Fprint(w, `{"searchKeywordsCounts":[
			{"searchKeyword":"coffee near me","insightsValue":{"value":"120"}},
			{"searchKeyword":"espresso bar","insightsValue":{"threshold":"15"}}
		]}`)
	})

	month := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	keywords, err := c.SearchKeywords(context.Background(), "at", "locations/1", month)
	require.NoError(t, err)
	require.Len(t, keywords, 2)
	assert.EqualValues(t, 120, keywords[0].Count)
	// Small counts only ship as a threshold.
	assert.EqualValues(t, 15, keywords[1].Count)
}

func TestErrorEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"message":"Request had insufficient authentication scopes.","status":"PERMISSION_DENIED","code":403}}`)
	})

	_, err := c.Accounts(context.Background(), "at")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PERMISSION_DENIED")
	assert.Contains(t, err.Error(), "insufficient authentication scopes")
}
