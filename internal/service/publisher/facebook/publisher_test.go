package facebook

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/service/publisher"
	"github.com/flowuphq/flowup/internal/service/publisher/graph"
)

func testRequest(imageCount int, caption string) publisher.Request {
	urls := make([]string, imageCount)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://cdn.example.com/img-%d.jpg", i)
	}
	return publisher.Request{
		Credentials: publisher.Credentials{AccountID: "page-1", AccessToken: "page-token"},
		Caption:     caption,
		ImageURLs:   urls,
	}
}

func TestPublishSinglePhoto(t *testing.T) {
	var gotCaption string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/page-1/photos"))
		r.ParseForm()
		gotCaption = r.FormValue("caption")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"photo-1","post_id":"page-1_post-1"}`)
	}))
	defer ts.Close()

	pub := New(zap.NewNop(), graph.NewClient(ts.URL, "v19.0", zap.NewNop()))

	result, err := pub.Publish(context.Background(), testRequest(1, "single photo"))
	require.NoError(t, err)
	assert.Equal(t, "page-1_post-1", result.MediaID)
	assert.Equal(t, "single photo", gotCaption)
}

func TestPublishMultiPhoto(t *testing.T) {
	var uploads int
	var feedForm map[string][]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/photos"):
			assert.Equal(t, "false", r.FormValue("published"))
			uploads++
			fmt.Fprintf(w, `{"id":"photo-%d"}`, uploads)
		case strings.HasSuffix(r.URL.Path, "/feed"):
			feedForm = r.PostForm
			fmt.Fprint(w, `{"id":"page-1_post-2"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	pub := New(zap.NewNop(), graph.NewClient(ts.URL, "v19.0", zap.NewNop()))

	result, err := pub.Publish(context.Background(), testRequest(2, "album"))
	require.NoError(t, err)
	assert.Equal(t, "page-1_post-2", result.MediaID)
	assert.Equal(t, 2, uploads)
	require.NotNil(t, feedForm)
	assert.Equal(t, "album", feedForm["message"][0])
	assert.Equal(t, `{"media_fbid":"photo-1"}`, feedForm["attached_media[0]"][0])
	assert.Equal(t, `{"media_fbid":"photo-2"}`, feedForm["attached_media[1]"][0])
}

func TestPublishRequiresImages(t *testing.T) {
	pub := New(zap.NewNop(), graph.NewClient("", "", zap.NewNop()))

	_, err := pub.Publish(context.Background(), testRequest(0, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one image")
}
