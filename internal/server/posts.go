package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flowuphq/flowup/internal/service"
)

func (s *Server) handleListPosts(c *gin.Context) {
	posts, err := s.Posts.List(requestUserID(c))
	if err != nil {
		s.Logger.Error("Failed to list posts", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to list posts")
		return
	}

	respondOK(c, gin.H{"posts": posts})
}

func (s *Server) handleCreatePost(c *gin.Context) {
	var input service.CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	post, err := s.Posts.Create(requestUserID(c), input)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	respondOK(c, gin.H{"post": post})
}

func (s *Server) handleGetPost(c *gin.Context) {
	post, err := s.Posts.Get(requestUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Post not found")
		return
	}

	respondOK(c, gin.H{"post": post})
}

func (s *Server) handleDeletePost(c *gin.Context) {
	err := s.Posts.Delete(requestUserID(c), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		s.Logger.Error("Failed to delete post", zap.String("post_id", c.Param("id")), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to delete post")
		return
	}

	respondOK(c, gin.H{"deleted": c.Param("id")})
}

func (s *Server) handleRepublishPost(c *gin.Context) {
	var body struct {
		ScheduledAt time.Time `json:"scheduled_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if body.ScheduledAt.IsZero() {
		body.ScheduledAt = time.Now()
	}

	post, err := s.Posts.Republish(requestUserID(c), c.Param("id"), body.ScheduledAt)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	respondOK(c, gin.H{"post": post})
}
