package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flowuphq/flowup/internal/models"
	"github.com/flowuphq/flowup/internal/service"
)

type mockPostStore struct {
	mock.Mock
}

func (m *mockPostStore) Create(userID string, input service.CreatePostInput) (*models.Post, error) {
	args := m.Called(userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *mockPostStore) List(userID string) ([]models.Post, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *mockPostStore) Get(userID, publicID string) (*models.Post, error) {
	args := m.Called(userID, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *mockPostStore) Delete(userID, publicID string) error {
	args := m.Called(userID, publicID)
	return args.Error(0)
}

func (m *mockPostStore) Republish(userID, publicID string, scheduledAt time.Time) (*models.Post, error) {
	args := m.Called(userID, publicID, scheduledAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func newPostsTestServer(store *mockPostStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	s := &Server{
		Logger: zap.NewNop(),
		Posts:  store,
	}

	router := gin.New()
	router.GET("/api/v1/posts", s.handleListPosts)
	router.POST("/api/v1/posts", s.handleCreatePost)
	router.GET("/api/v1/posts/:id", s.handleGetPost)
	router.DELETE("/api/v1/posts/:id", s.handleDeletePost)
	router.POST("/api/v1/posts/:id/republish", s.handleRepublishPost)
	return router
}

func TestCreatePost(t *testing.T) {
	store := new(mockPostStore)
	created := &models.Post{PublicID: "abc-123", Status: models.PostStatusScheduled}
	store.On("Create", "user-1", mock.MatchedBy(func(input service.CreatePostInput) bool {
		return input.Caption == "hello" && len(input.Platforms) == 1
	})).Return(created, nil)

	router := newPostsTestServer(store)

	body, _ := json.Marshal(map[string]any{
		"caption":    "hello",
		"image_urls": []string{"https://cdn.example.com/a.jpg"},
		"platforms":  []string{"instagram"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"abc-123"`)
	store.AssertExpectations(t)
}

func TestCreatePostValidationError(t *testing.T) {
	store := new(mockPostStore)
	store.On("Create", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	router := newPostsTestServer(store)

	body, _ := json.Marshal(map[string]any{"caption": "no platforms"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestListPosts(t *testing.T) {
	store := new(mockPostStore)
	store.On("List", "user-1").Return([]models.Post{
		{PublicID: "p1"}, {PublicID: "p2"},
	}, nil)

	router := newPostsTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"p1"`)
	assert.Contains(t, w.Body.String(), `"p2"`)
}

func TestGetPostNotFound(t *testing.T) {
	store := new(mockPostStore)
	store.On("Get", "default", "missing").Return(nil, gorm.ErrRecordNotFound)

	router := newPostsTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePostNotFound(t *testing.T) {
	store := new(mockPostStore)
	store.On("Delete", "default", "missing").Return(gorm.ErrRecordNotFound)

	router := newPostsTestServer(store)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/posts/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRepublishPost(t *testing.T) {
	store := new(mockPostStore)
	clone := &models.Post{PublicID: "new-1", Status: models.PostStatusScheduled}
	store.On("Republish", "default", "old-1", mock.Anything).Return(clone, nil)

	router := newPostsTestServer(store)

	when := time.Now().Add(time.Hour).UTC()
	body, _ := json.Marshal(map[string]any{"scheduled_at": when})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/old-1/republish", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"new-1"`)
	store.AssertExpectations(t)
}
