package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, data gin.H) {
	payload := gin.H{"success": true}
	for k, v := range data {
		payload[k] = v
	}
	c.JSON(http.StatusOK, payload)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// requestUserID resolves the acting user from the request. The
// dashboard frontend sends it as a header; tooling may pass a query
// parameter instead.
func requestUserID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	if id := c.Query("user_id"); id != "" {
		return id
	}
	return "default"
}
