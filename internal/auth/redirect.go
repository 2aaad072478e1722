package auth

import (
	"net/url"
	"strings"
)

const SignInPath = "/auth/signin"

// ResolveRedirect validates a post-login callback URL against the site base
// URL. Relative and same-origin targets pass, the sign-in page itself and
// anything cross-origin fall back to the base URL.
func ResolveRedirect(target, baseURL string) string {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return baseURL
	}

	target = strings.TrimSpace(target)
	if target == "" {
		return baseURL
	}

	if strings.HasPrefix(target, "/") {
		// "//host" and "/\host" are protocol-relative in browsers
		if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
			return baseURL
		}
		if isSignIn(target) {
			return baseURL
		}
		return strings.TrimRight(baseURL, "/") + target
	}

	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return baseURL
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return baseURL
	}
	if isSignIn(u.Path) {
		return baseURL
	}
	return target
}

func isSignIn(p string) bool {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return p == SignInPath || strings.HasPrefix(p, SignInPath+"/")
}
