package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/config"
)

// GeneratorService proxies the external webhook service that produces
// post ideas and images. The webhook response shape is only loosely
// guaranteed, so every item is validated and normalized before use.
type GeneratorService struct {
	config *config.GeneratorConfig
	client *http.Client
	logger *zap.Logger
}

func NewGeneratorService(cfg *config.GeneratorConfig, logger *zap.Logger) *GeneratorService {
	return &GeneratorService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

type TextRequest struct {
	Topic    string `json:"topic"`
	Platform string `json:"platform"`
	Tone     string `json:"tone"`
	Count    int    `json:"count"`
}

type Idea struct {
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Hashtags []string `json:"hashtags"`
}

type ImageRequest struct {
	Prompt      string `json:"prompt"`
	Count       int    `json:"count"`
	AspectRatio string `json:"aspect_ratio"`
}

type GeneratedImage struct {
	URL string `json:"url"`
}

func (g *GeneratorService) GenerateText(ctx context.Context, req TextRequest) ([]Idea, error) {
	if g.config.TextWebhookURL == "" {
		return nil, fmt.Errorf("text generator webhook is not configured")
	}

	raw, err := g.callWebhook(ctx, g.config.TextWebhookURL, req)
	if err != nil {
		return nil, err
	}

	items, err := extractItems(raw)
	if err != nil {
		return nil, err
	}

	var ideas []Idea
	for _, item := range items {
		idea := Idea{
			Title: stringField(item, "title"),
			Text:  stringField(item, "text", "content", "caption"),
		}
		if tags, ok := item["hashtags"].([]interface{}); ok {
			for _, tag := range tags {
				if s, ok := tag.(string); ok {
					idea.Hashtags = append(idea.Hashtags, s)
				}
			}
		}
		if idea.Text == "" {
			// Item doesn't match the expected shape; drop it.
			continue
		}
		ideas = append(ideas, idea)
	}

	if len(ideas) == 0 {
		return nil, fmt.Errorf("generator returned no usable ideas")
	}
	return ideas, nil
}

func (g *GeneratorService) GenerateImages(ctx context.Context, req ImageRequest) ([]GeneratedImage, error) {
	if g.config.ImageWebhookURL == "" {
		return nil, fmt.Errorf("image generator webhook is not configured")
	}

	raw, err := g.callWebhook(ctx, g.config.ImageWebhookURL, req)
	if err != nil {
		return nil, err
	}

	items, err := extractItems(raw)
	if err != nil {
		return nil, err
	}

	var images []GeneratedImage
	for _, item := range items {
		url := stringField(item, "url", "image_url")
		if url == "" {
			continue
		}
		images = append(images, GeneratedImage{URL: url})
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("generator returned no usable images")
	}
	return images, nil
}

func (g *GeneratorService) callWebhook(ctx context.Context, webhookURL string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call generator webhook: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read generator response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generator webhook returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// extractItems accepts either a bare JSON array or an object wrapping
// one under a well-known key.
func extractItems(raw []byte) ([]map[string]any, error) {
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("unexpected generator response shape")
	}

	for _, key := range []string{"data", "results", "items", "images"} {
		if rawItems, ok := wrapper[key]; ok {
			if err := json.Unmarshal(rawItems, &items); err == nil {
				return items, nil
			}
		}
	}

	return nil, fmt.Errorf("unexpected generator response shape")
}

func stringField(item map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := item[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
