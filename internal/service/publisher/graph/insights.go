package graph

import (
	"context"
	"net/url"
	"strings"
)

type InsightValue struct {
	Value   float64 `json:"value"`
	EndTime string  `json:"end_time"`
}

type Insight struct {
	Name   string         `json:"name"`
	Period string         `json:"period"`
	Title  string         `json:"title"`
	Values []InsightValue `json:"values"`
}

// AccountInsights fetches account-level metrics for an Instagram
// business account and flattens the envelope to name -> latest value.
func (c *Client) AccountInsights(ctx context.Context, accountID, accessToken string, metrics []string, period string) (map[string]float64, error) {
	params := url.Values{}
	params.Set("metric", strings.Join(metrics, ","))
	params.Set("period", period)
	params.Set("access_token", accessToken)

	var response struct {
		Data []Insight `json:"data"`
	}
	if err := c.Get(ctx, accountID+"/insights", params, &response); err != nil {
		return nil, err
	}

	result := make(map[string]float64, len(response.Data))
	for _, insight := range response.Data {
		if len(insight.Values) == 0 {
			continue
		}
		// The vendor returns oldest-first; keep the latest sample.
		result[insight.Name] = insight.Values[len(insight.Values)-1].Value
	}
	return result, nil
}
