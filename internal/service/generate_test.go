package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/config"
)

func newGeneratorService(textURL, imageURL string) *GeneratorService {
	return NewGeneratorService(&config.GeneratorConfig{
		TextWebhookURL:  textURL,
		ImageWebhookURL: imageURL,
		TimeoutSeconds:  5,
	}, zap.NewNop())
}

func TestGenerateTextBareArray(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		fmt.Fprint(w, `[{"title":"Idea 1","text":"Caption one","hashtags":["a","b"]},{"title":"Idea 2","content":"Caption two"}]`)
	}))
	defer ts.Close()

	g := newGeneratorService(ts.URL, "")

	ideas, err := g.GenerateText(context.Background(), TextRequest{Topic: "coffee"})
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	assert.Equal(t, "Caption one", ideas[0].Text)
	assert.Equal(t, []string{"a", "b"}, ideas[0].Hashtags)
	// Alternate field names normalize to the same shape.
	assert.Equal(t, "Caption two", ideas[1].Text)
}

func TestGenerateTextWrappedArray(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"text":"Wrapped caption"}]}`)
	}))
	defer ts.Close()

	g := newGeneratorService(ts.URL, "")

	ideas, err := g.GenerateText(context.Background(), TextRequest{Topic: "coffee"})
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "Wrapped caption", ideas[0].Text)
}

func TestGenerateTextDropsInvalidItems(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"title":"no text"},{"text":"good one"}]`)
	}))
	defer ts.Close()

	g := newGeneratorService(ts.URL, "")

	ideas, err := g.GenerateText(context.Background(), TextRequest{Topic: "x"})
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "good one", ideas[0].Text)
}

func TestGenerateTextAllInvalid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"title":"no text"}]`)
	}))
	defer ts.Close()

	g := newGeneratorService(ts.URL, "")

	_, err := g.GenerateText(context.Background(), TextRequest{Topic: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable ideas")
}

func TestGenerateTextWebhookFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom")
	}))
	defer ts.Close()

	g := newGeneratorService(ts.URL, "")

	_, err := g.GenerateText(context.Background(), TextRequest{Topic: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestGenerateTextUnconfigured(t *testing.T) {
	g := newGeneratorService("", "")

	_, err := g.GenerateText(context.Background(), TextRequest{Topic: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestGenerateImages(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"images":[{"url":"https://cdn.example.com/1.png"},{"image_url":"https://cdn.example.com/2.png"},{"caption":"no url"}]}`)
	}))
	defer ts.Close()

	g := newGeneratorService("", ts.URL)

	images, err := g.GenerateImages(context.Background(), ImageRequest{Prompt: "sunset"})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "https://cdn.example.com/1.png", images[0].URL)
	assert.Equal(t, "https://cdn.example.com/2.png", images[1].URL)
}
