package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRedirectSafe(t *testing.T) {
	base := "https://psychmag.example.com"
	tests := []struct {
		name     string
		redirect string
		want     bool
	}{
		{"empty", "", true},
		{"relative path", "/admin", true},
		{"protocol relative", "//evil.com", false},
		{"backslash", "/\\evil.com", false},
		{"header injection", "/admin\r\nSet-Cookie: x", false},
		{"same host", "https://psychmag.example.com/blog", true},
		{"other host", "https://evil.com/blog", false},
		{"javascript scheme", "javascript:alert(1)", false},
		{"host case differs", "https://PsychMag.example.com/", true},
		{"scheme without host", "https:blog", false},
		{"bare word", "blog", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRedirectSafe(tt.redirect, base))
		})
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://cdn.example.com", "covers/1.jpg", "https://cdn.example.com/covers/1.jpg"},
		{"https://cdn.example.com/", "//covers/1.jpg", "https://cdn.example.com/covers/1.jpg"},
		{"", "covers/1.jpg", ""},
		{"https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PublicURL(tt.base, tt.path))
	}
}
