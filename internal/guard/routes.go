package guard

import (
	"fmt"
	"strings"
)

// Routes is the set of protected path patterns.
//
// A literal pattern matches its path exactly. A pattern ending in "/*"
// matches everything below its prefix (not the prefix itself). A segment
// starting with ":" matches any single non-empty segment.
type Routes struct {
	exact    map[string]struct{}
	prefixes []string
	patterns [][]string
}

// NewRoutes compiles patterns into a Routes set
func NewRoutes(patterns ...string) (*Routes, error) {
	r := &Routes{exact: make(map[string]struct{})}
	for _, p := range patterns {
		if !strings.HasPrefix(p, "/") {
			return nil, fmt.Errorf("protected route %q must start with /", p)
		}
		p = normalize(p)

		switch {
		case strings.HasSuffix(p, "/*"):
			prefix := strings.TrimSuffix(p, "*")
			if strings.Contains(prefix, "*") {
				return nil, fmt.Errorf("protected route %q: wildcard only allowed at the end", p)
			}
			r.prefixes = append(r.prefixes, prefix)
		case strings.Contains(p, "*"):
			return nil, fmt.Errorf("protected route %q: wildcard only allowed at the end", p)
		case strings.Contains(p, "/:"):
			r.patterns = append(r.patterns, segments(p))
		default:
			r.exact[p] = struct{}{}
		}
	}
	return r, nil
}

// MustRoutes is NewRoutes for static pattern lists
func MustRoutes(patterns ...string) *Routes {
	r, err := NewRoutes(patterns...)
	if err != nil {
		panic(err)
	}
	return r
}

// Protected reports whether path requires authentication
func (r *Routes) Protected(path string) bool {
	path = normalize(path)

	if _, ok := r.exact[path]; ok {
		return true
	}
	for _, prefix := range r.prefixes {
		if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
			return true
		}
	}
	if len(r.patterns) == 0 {
		return false
	}

	parts := segments(path)
	for _, pattern := range r.patterns {
		if matchSegments(pattern, parts) {
			return true
		}
	}
	return false
}

func matchSegments(pattern, parts []string) bool {
	if len(pattern) != len(parts) {
		return false
	}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			if parts[i] == "" {
				return false
			}
			continue
		}
		if seg != parts[i] {
			return false
		}
	}
	return true
}

// normalize drops a trailing slash so "/routes/profile/" and
// "/routes/profile" are the same route
func normalize(path string) string {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func segments(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}
