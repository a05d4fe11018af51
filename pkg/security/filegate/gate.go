// Package filegate confines the file-touching actions (read_file,
// take_screenshot) to a workspace directory and a set of allow/deny globs.
//
// Paths are resolved against the workspace root with tilde expansion and
// symlink evaluation, so a link that escapes the workspace is rejected the
// same way as a "../" path.
package filegate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotExist is returned by ReadText when the file is absent.
var ErrNotExist = errors.New("file does not exist")

// Violation is returned when a path is outside the workspace or rejected by
// the patterns.
type Violation struct {
	Path   string
	Reason string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("access to '%s' denied: %s", v.Path, v.Reason)
}

// IsViolation reports whether err is a Violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}

// Gate checks and performs file access for actions.
type Gate struct {
	root    string
	matcher *PatternMatcher
}

// New creates a gate rooted at workspace.
func New(workspace string, allowed, denied []string) (*Gate, error) {
	if workspace == "" {
		return nil, fmt.Errorf("workspace directory cannot be empty")
	}

	absPath, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace directory: %w", err)
	}

	evalPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate workspace directory symlinks: %w", err)
	}

	matcher, err := NewPatternMatcher(allowed, denied)
	if err != nil {
		return nil, err
	}

	return &Gate{root: evalPath, matcher: matcher}, nil
}

// Root returns the absolute workspace directory.
func (g *Gate) Root() string {
	return g.root
}

// CheckRead resolves path and verifies it may be read. It does not check
// existence.
func (g *Gate) CheckRead(path string) (string, error) {
	return g.check(path)
}

// CheckWrite resolves path and verifies it may be written.
func (g *Gate) CheckWrite(path string) (string, error) {
	abs, err := g.check(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return "", &Violation{Path: path, Reason: "is a directory"}
	}
	return abs, nil
}

func (g *Gate) check(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &Violation{Path: path, Reason: "empty path"}
	}

	abs, err := g.resolve(path)
	if err != nil {
		return "", err
	}

	if !g.within(abs) {
		return "", &Violation{Path: path, Reason: "outside workspace"}
	}

	rel, err := filepath.Rel(g.root, abs)
	if err != nil {
		return "", fmt.Errorf("failed to make path relative: %w", err)
	}
	if !g.matcher.IsAllowed(rel) {
		return "", &Violation{Path: path, Reason: "does not match allowed patterns"}
	}
	return abs, nil
}

// Exists reports whether path names an existing regular file inside the
// workspace.
func (g *Gate) Exists(path string) bool {
	abs, err := g.resolve(path)
	if err != nil || !g.within(abs) {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// ReadText checks path and returns the file contents.
func (g *Gate) ReadText(path string) (string, error) {
	abs, err := g.CheckRead(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotExist
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteFile checks path and writes data, creating parent directories.
func (g *Gate) WriteFile(path string, data []byte) (string, error) {
	abs, err := g.CheckWrite(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0750); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(abs, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return abs, nil
}

// resolve makes path absolute against the workspace root, expanding ~ and
// evaluating symlinks of the longest existing prefix.
func (g *Gate) resolve(path string) (string, error) {
	expanded := path
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand ~: %w", err)
		}
		expanded = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	clean := filepath.Clean(expanded)
	if !filepath.IsAbs(clean) {
		clean = filepath.Join(g.root, clean)
	}
	return resolveSymlinks(clean), nil
}

func (g *Gate) within(abs string) bool {
	sep := string(filepath.Separator)
	return abs == g.root || strings.HasPrefix(abs+sep, g.root+sep)
}

// resolveSymlinks evaluates the longest existing prefix of path and rejoins
// the missing components.
func resolveSymlinks(path string) string {
	var missing []string
	current := path

	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved
		}

		dir := filepath.Dir(current)
		if dir == current {
			return path
		}
		missing = append(missing, filepath.Base(current))
		current = dir
	}
}
