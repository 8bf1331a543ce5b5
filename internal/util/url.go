package util

import (
	"net/url"
	"strings"
)

// IsRedirectSafe reports whether redirect may be used as a post sign-in
// destination: empty, a local path, or an http(s) URL on baseURL's host.
func IsRedirectSafe(redirect, baseURL string) bool {
	if redirect == "" {
		return true
	}
	if strings.ContainsAny(redirect, "\r\n\\") {
		return false
	}

	if strings.HasPrefix(redirect, "/") {
		// "//host" is a protocol-relative URL
		return !strings.HasPrefix(redirect, "//")
	}

	target, err := url.Parse(redirect)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		return false
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return target.Host != "" && strings.EqualFold(target.Host, base.Host)
}

// PublicURL joins a media base URL and a stored object path. It returns an
// empty string when either part is missing so callers can omit the field.
func PublicURL(baseURL, path string) string {
	if baseURL == "" || path == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
