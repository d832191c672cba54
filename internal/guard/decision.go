package guard

import (
	"net/url"
	"strings"
)

// SignInPath is where unauthenticated visitors of protected routes are sent
const SignInPath = "/routes/auth/signin"

// Decision is the guard's verdict for one navigation
type Decision int

const (
	// Render the page immediately
	Render Decision = iota
	// Fetch the user, then render
	Fetch
	// Redirect to sign-in
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case Fetch:
		return "fetch"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decide picks the branch for path given whether a session token is present
func (r *Routes) Decide(path string, hasToken bool) Decision {
	if !r.Protected(path) {
		return Render
	}
	if !hasToken {
		return Redirect
	}
	return Fetch
}

// SignInURL builds the sign-in location carrying target as the redirect parameter
func SignInURL(target string) string {
	return SignInPath + "?" + url.Values{"redirect": {target}}.Encode()
}

// SafeRedirect returns target if it is a local absolute path, otherwise fallback.
// Protocol-relative and absolute URLs are rejected to avoid open redirects.
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") {
		return fallback
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	if strings.HasPrefix(u.Path, SignInPath) {
		return fallback
	}
	return target
}
