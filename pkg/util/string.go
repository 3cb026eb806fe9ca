package util

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// TruncateCaption cuts a caption down to the given rune limit. Platform
// limits count characters, not bytes, so multi-byte captions are trimmed
// on rune boundaries.
func TruncateCaption(caption string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(caption)
	if len(runes) <= limit {
		return caption
	}
	return string(runes[:limit])
}

// GenerateSlug creates a URL-friendly slug from a title
func GenerateSlug(title string) string {
	// Convert to lowercase
	slug := strings.ToLower(title)

	// Replace spaces and special characters with hyphens
	reg := regexp.MustCompile(`[^a-z0-9]+`)
	slug = reg.ReplaceAllString(slug, "-")

	// Remove leading/trailing hyphens
	slug = strings.Trim(slug, "-")

	// Limit length
	if len(slug) > 50 {
		slug = slug[:50]
		slug = strings.Trim(slug, "-")
	}

	return slug
}

// GenerateMediaKey creates an object key for an uploaded media file,
// keeping the original extension so content sniffing stays honest.
func GenerateMediaKey(userID, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	base := GenerateSlug(strings.TrimSuffix(path.Base(filename), ext))
	if base == "" {
		base = "upload"
	}
	return fmt.Sprintf("media/%s/%s-%d%s", userID, base, now.UnixNano(), ext)
}

// ParseHashtags parses a free-form hashtag string into a clean slice.
func ParseHashtags(raw string) []string {
	if raw == "" {
		return []string{}
	}

	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n'
	})

	var tags []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		f = strings.TrimPrefix(f, "#")
		if f != "" {
			tags = append(tags, f)
		}
	}

	return tags
}
