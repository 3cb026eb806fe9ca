package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/service"
)

func (s *Server) handleGenerateText(c *gin.Context) {
	var req service.TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Topic == "" {
		respondError(c, http.StatusBadRequest, "A topic is required")
		return
	}

	ideas, err := s.Generator.GenerateText(c.Request.Context(), req)
	if err != nil {
		s.Logger.Error("Text generation failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}

	respondOK(c, gin.H{"ideas": ideas})
}

func (s *Server) handleGenerateImages(c *gin.Context) {
	var req service.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Prompt == "" {
		respondError(c, http.StatusBadRequest, "A prompt is required")
		return
	}

	images, err := s.Generator.GenerateImages(c.Request.Context(), req)
	if err != nil {
		s.Logger.Error("Image generation failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}

	respondOK(c, gin.H{"images": images})
}
