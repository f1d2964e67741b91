package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Strength Training 101  ", "strength-training-101"},
		{"What's New?!", "what-s-new"},
		{"already-a-slug", "already-a-slug"},
		{"MIXED Case & Symbols", "mixed-case-symbols"},
		{"---", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.title), "title %q", tc.title)
	}
}
