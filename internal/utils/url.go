package utils

import (
	"net/url"
	"path"
	"strings"
)

// IsAbsoluteURL checks if a URL is absolute
func IsAbsoluteURL(rawURL string) bool {
	// Protocol-relative URLs (starting with //) are considered absolute
	if strings.HasPrefix(rawURL, "//") {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.IsAbs()
}

// IsFileURL checks if a URL uses the file scheme
func IsFileURL(rawURL string) bool {
	return strings.HasPrefix(strings.ToLower(rawURL), "file:")
}

// IsRemoteURL reports whether rawURL names something that has to be
// fetched over the network, such as http, https or a VCS scheme
func IsRemoteURL(rawURL string) bool {
	return !IsFileURL(rawURL) && strings.Contains(rawURL, "://") && IsAbsoluteURL(rawURL)
}

// FilePathFromURL strips the file scheme from a file URL. Other input is
// returned unchanged.
func FilePathFromURL(rawURL string) string {
	if !IsFileURL(rawURL) {
		return rawURL
	}
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return u.Path
	}
	return strings.TrimPrefix(strings.TrimPrefix(rawURL, "file://"), "file:")
}

// URLBase returns the last path element of a URL or path, ignoring any
// query or fragment. Backslashes count as separators.
func URLBase(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	return path.Base(strings.ReplaceAll(p, `\`, "/"))
}
