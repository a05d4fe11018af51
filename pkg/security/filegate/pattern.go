package filegate

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
)

// PatternMatcher decides whether a workspace-relative path passes the allow
// and deny globs.
type PatternMatcher struct {
	allowed []glob.Glob
	denied  []glob.Glob
}

// NewPatternMatcher compiles the allow and deny globs.
func NewPatternMatcher(allowed, denied []string) (*PatternMatcher, error) {
	pm := &PatternMatcher{}

	for _, pattern := range allowed {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		pm.allowed = append(pm.allowed, g)
	}

	for _, pattern := range denied {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		pm.denied = append(pm.denied, g)
	}

	return pm, nil
}

// IsAllowed reports whether path may be touched. Deny wins over allow, and an
// empty allow list admits everything not denied.
//
// The path is tried both as given and with a "./" prefix so that "**/x"
// also matches x at the workspace root.
func (pm *PatternMatcher) IsAllowed(path string) bool {
	path = filepath.ToSlash(filepath.Clean(path))
	forms := []string{path, "./" + path}

	for _, g := range pm.denied {
		if matchAny(g, forms) {
			return false
		}
	}

	if len(pm.allowed) == 0 {
		return true
	}

	for _, g := range pm.allowed {
		if matchAny(g, forms) {
			return true
		}
	}
	return false
}

func matchAny(g glob.Glob, forms []string) bool {
	for _, f := range forms {
		if g.Match(f) {
			return true
		}
	}
	return false
}
