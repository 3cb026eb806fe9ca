package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/config"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) ProcessDuePosts(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newCronTestServer(secret string, runner *mockRunner) *gin.Engine {
	gin.SetMode(gin.TestMode)

	s := &Server{
		Config:       &config.Config{Cron: config.CronConfig{Secret: secret}},
		Logger:       zap.NewNop(),
		Orchestrator: runner,
	}

	router := gin.New()
	router.POST("/api/v1/cron/publish-posts", s.handleCronPublish)
	return router
}

func TestCronPublishRequiresSecret(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong secret", "Bearer wrong"},
		{"no bearer prefix", "top-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := new(mockRunner)
			router := newCronTestServer("top-secret", runner)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/publish-posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
			// A rejected request never reaches the orchestrator.
			runner.AssertNotCalled(t, "ProcessDuePosts", mock.Anything)
		})
	}
}

func TestCronPublishRejectsWhenUnconfigured(t *testing.T) {
	runner := new(mockRunner)
	router := newCronTestServer("", runner)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/publish-posts", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	runner.AssertNotCalled(t, "ProcessDuePosts", mock.Anything)
}

func TestCronPublishRunsPass(t *testing.T) {
	runner := new(mockRunner)
	runner.On("ProcessDuePosts", mock.Anything).Return(nil)
	router := newCronTestServer("top-secret", runner)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/publish-posts", nil)
	req.Header.Set("Authorization", "Bearer top-secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	runner.AssertExpectations(t)
}
