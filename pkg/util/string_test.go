package util

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncateCaption(t *testing.T) {
	assert.Equal(t, "hello", TruncateCaption("hello", 10))
	assert.Equal(t, "hel", TruncateCaption("hello", 3))
	assert.Equal(t, "", TruncateCaption("hello", 0))

	// Multi-byte captions truncate on rune boundaries, not bytes.
	assert.Equal(t, "héll", TruncateCaption("héllo", 4))
	assert.Equal(t, "日本", TruncateCaption("日本語", 2))

	long := strings.Repeat("a", 3000)
	truncated := TruncateCaption(long, 2200)
	assert.Len(t, []rune(truncated), 2200)

	// Exactly at the limit is left untouched.
	exact := strings.Repeat("b", 2200)
	assert.Equal(t, exact, TruncateCaption(exact, 2200))
}

func TestGenerateSlug(t *testing.T) {
	assert.Equal(t, "hello-world", GenerateSlug("Hello World"))
	assert.Equal(t, "summer-sale-50-off", GenerateSlug("Summer Sale: 50% Off!"))
	assert.Equal(t, "", GenerateSlug("!!!"))
}

func TestGenerateMediaKey(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	key := GenerateMediaKey("user-1", "Beach Photo.JPG", now)
	assert.True(t, strings.HasPrefix(key, "media/user-1/beach-photo-"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	// Unusable filenames still produce a key.
	key = GenerateMediaKey("user-1", "???", now)
	assert.True(t, strings.HasPrefix(key, "media/user-1/upload-"))
}

func TestParseHashtags(t *testing.T) {
	assert.Equal(t, []string{"sale", "summer"}, ParseHashtags("#sale, #summer"))
	assert.Equal(t, []string{"one", "two", "three"}, ParseHashtags("one two\nthree"))
	assert.Empty(t, ParseHashtags(""))
}
