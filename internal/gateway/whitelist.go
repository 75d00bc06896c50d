package gateway

import "path"

// Whitelist decides which request paths bypass authentication at the edge:
// the auth endpoints themselves, health probes and API docs.
type Whitelist struct {
	patterns []string
}

// NewWhitelist builds a matcher from the configured patterns. A pattern is an
// exact path, a `/**` prefix (matches any depth below it), or a single-level
// glob in path.Match syntax.
func NewWhitelist(patterns []string) *Whitelist {
	return &Whitelist{patterns: patterns}
}

// Match reports whether the path is whitelisted.
func (w *Whitelist) Match(requestPath string) bool {
	for _, pattern := range w.patterns {
		if matchPattern(pattern, requestPath) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, requestPath string) bool {
	if pattern == requestPath {
		return true
	}

	if len(pattern) > 3 && pattern[len(pattern)-3:] == "/**" {
		prefix := pattern[:len(pattern)-3]
		return requestPath == prefix || (len(requestPath) > len(prefix) && requestPath[:len(prefix)+1] == prefix+"/")
	}

	ok, err := path.Match(pattern, requestPath)
	return err == nil && ok
}
