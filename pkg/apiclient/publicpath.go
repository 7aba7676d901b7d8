package apiclient

import (
	"net/url"
	"strings"
)

// publicPathPrefixes is the allow-list of endpoints that are served without
// authentication. Requests matching these never carry an Authorization header
// and never enter the refresh flow on 401.
var publicPathPrefixes = []string{
	"/api/auth/signup",
	"/api/auth/check-email",
	"/api/auth/email-verification",
	"/api/auth/signin",
	"/api/auth/password-reset",
}

// IsPublicPath classifies a request URL as public or protected. The URL is
// resolved against baseURL and matched by pathname prefix; if either URL
// fails to parse, the matcher falls back to a raw substring check so that a
// malformed URL can never silently promote a public endpoint to protected.
func IsPublicPath(rawURL, baseURL string) bool {
	pathname, ok := resolvePathname(rawURL, baseURL)
	if !ok {
		for _, prefix := range publicPathPrefixes {
			if strings.Contains(rawURL, prefix) {
				return true
			}
		}
		return false
	}

	for _, prefix := range publicPathPrefixes {
		if strings.HasPrefix(pathname, prefix) {
			return true
		}
	}
	return false
}

func resolvePathname(rawURL, baseURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if baseURL != "" {
		base, err := url.Parse(baseURL)
		if err != nil {
			return "", false
		}
		u = base.ResolveReference(u)
	}
	if u.Path == "" {
		return "", false
	}
	return u.Path, true
}
