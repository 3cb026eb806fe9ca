package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowuphq/flowup/pkg/util"
)

// handleMediaUpload stores an uploaded image in the public bucket and
// returns its URL. The Graph API can only fetch publicly reachable
// images, so uploads go through here before a post is scheduled.
func (s *Server) handleMediaUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "A file field is required")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "Only image uploads are supported")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	key := util.GenerateMediaKey(requestUserID(c), fileHeader.Filename, time.Now())
	url, err := s.Storage.UploadFile(key, file, contentType)
	if err != nil {
		s.Logger.Error("Failed to upload media", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to store media")
		return
	}

	respondOK(c, gin.H{"url": url, "key": key})
}
