package instagram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/service/publisher"
	"github.com/flowuphq/flowup/internal/service/publisher/graph"
)

type graphStub struct {
	mu             chan struct{} // simple serialization for the counter
	statusCalls    int
	statusSequence []string // status_code returned per poll, last repeats
	publishedID    string
	captions       []string
	containerCount int
}

func newGraphStub(statusSequence []string, publishedID string) *graphStub {
	return &graphStub{
		mu:             make(chan struct{}, 1),
		statusSequence: statusSequence,
		publishedID:    publishedID,
	}
}

func (g *graphStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.mu <- struct{}{}
		defer func() { <-g.mu }()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/media"):
			r.ParseForm()
			g.captions = append(g.captions, r.FormValue("caption"))
			g.containerCount++
			fmt.Fprintf(w, `{"id":"container-%d"}`, g.containerCount)
		case strings.HasSuffix(r.URL.Path, "/media_publish"):
			fmt.Fprintf(w, `{"id":%q}`, g.publishedID)
		default:
			// Container status poll
			idx := g.statusCalls
			if idx >= len(g.statusSequence) {
				idx = len(g.statusSequence) - 1
			}
			g.statusCalls++
			fmt.Fprintf(w, `{"status_code":%q,"status":"detail"}`, g.statusSequence[idx])
		}
	}
}

func newTestPublisher(t *testing.T, stub *graphStub) (*Publisher, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(stub.handler())
	t.Cleanup(ts.Close)

	client := graph.NewClient(ts.URL, "v19.0", zap.NewNop())
	return New(zap.NewNop(), client, WithPolling(time.Millisecond, 3)), ts
}

func testRequest(imageCount int, caption string) publisher.Request {
	urls := make([]string, imageCount)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://cdn.example.com/img-%d.jpg", i)
	}
	return publisher.Request{
		Credentials: publisher.Credentials{AccountID: "17841400000000000", AccessToken: "token"},
		Caption:     caption,
		ImageURLs:   urls,
	}
}

func TestPublishSingleImage(t *testing.T) {
	stub := newGraphStub([]string{"IN_PROGRESS", "FINISHED"}, "media-123")
	pub, _ := newTestPublisher(t, stub)

	result, err := pub.Publish(context.Background(), testRequest(1, "hello"))
	require.NoError(t, err)
	assert.Equal(t, "media-123", result.MediaID)
	assert.Equal(t, 1, stub.containerCount)
	assert.Equal(t, 2, stub.statusCalls)
}

func TestPublishCarousel(t *testing.T) {
	stub := newGraphStub([]string{"FINISHED"}, "media-456")
	pub, _ := newTestPublisher(t, stub)

	result, err := pub.Publish(context.Background(), testRequest(3, "carousel caption"))
	require.NoError(t, err)
	assert.Equal(t, "media-456", result.MediaID)
	// Three children plus the carousel parent.
	assert.Equal(t, 4, stub.containerCount)
	// Only the parent carries the caption.
	assert.Equal(t, []string{"", "", "", "carousel caption"}, stub.captions)
}

func TestPublishRejectsOversizedCarousel(t *testing.T) {
	stub := newGraphStub([]string{"FINISHED"}, "unused")
	pub, _ := newTestPublisher(t, stub)

	_, err := pub.Publish(context.Background(), testRequest(11, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carousel supports at most 10 images")
	// The limit is enforced before any network call.
	assert.Equal(t, 0, stub.containerCount)
}

func TestPublishTruncatesCaption(t *testing.T) {
	stub := newGraphStub([]string{"FINISHED"}, "media-789")
	pub, _ := newTestPublisher(t, stub)

	long := strings.Repeat("x", 3000)
	_, err := pub.Publish(context.Background(), testRequest(1, long))
	require.NoError(t, err)
	require.Len(t, stub.captions, 1)
	assert.Len(t, []rune(stub.captions[0]), 2200)
}

func TestPublishContainerProcessingError(t *testing.T) {
	stub := newGraphStub([]string{"ERROR"}, "unused")
	pub, _ := newTestPublisher(t, stub)

	_, err := pub.Publish(context.Background(), testRequest(1, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "media container processing failed")
}

func TestPublishContainerTimeout(t *testing.T) {
	stub := newGraphStub([]string{"IN_PROGRESS"}, "unused")
	pub, _ := newTestPublisher(t, stub)

	_, err := pub.Publish(context.Background(), testRequest(1, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out waiting for media container")
	// Attempt budget from WithPolling.
	assert.Equal(t, 3, stub.statusCalls)
}

func TestPublishMissingCredentials(t *testing.T) {
	pub := New(zap.NewNop(), graph.NewClient("", "", zap.NewNop()))

	_, err := pub.Publish(context.Background(), publisher.Request{ImageURLs: []string{"https://x/y.jpg"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account ID and access token")
}
