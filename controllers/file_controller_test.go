package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedDir(t *testing.T) {
	assert.True(t, isAllowedDir("blogs"))
	assert.True(t, isAllowedDir("trainers"))
	assert.True(t, isAllowedDir("products"))
	assert.False(t, isAllowedDir(""))
	assert.False(t, isAllowedDir("blogs/"))
	assert.False(t, isAllowedDir("../blogs"))
	assert.False(t, isAllowedDir("secrets"))
}

func TestContentTypeForKey(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"blogs/cover.png", "image/png"},
		{"trainers/intro.webp", "image/webp"},
		{"media/clip.MP4", "video/mp4"},
		{"media/clip.mov", "video/quicktime"},
		{"docs/plan", "application/octet-stream"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, contentTypeForKey(tc.key), "key %q", tc.key)
	}
}
