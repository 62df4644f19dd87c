// Package relpath provides a root-relative path value that can be split off a root
// directory and rebased onto any other root.
package relpath

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	ErrNotDescendant  = errors.New("target is not a descendant of root")
	ErrInvalidSegment = errors.New("invalid path segment")
)

// RelativePath is an ordered list of path segments relative to some root.
// The zero value represents the root itself.
type RelativePath struct {
	segments []string
}

// New splits target off root. Both paths are made absolute and have their symbolic links resolved before comparison.
func New(root string, target string) (RelativePath, error) {
	canonicalRoot, err := canonicalize(root)
	if err != nil {
		return RelativePath{}, err
	}
	canonicalTarget, err := canonicalize(target)
	if err != nil {
		return RelativePath{}, err
	}
	return Split(canonicalRoot, canonicalTarget)
}

// Split is the lexical part of New: it neither touches the filesystem nor resolves links.
func Split(root string, target string) (RelativePath, error) {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(target))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return RelativePath{}, fmt.Errorf("%w: root '%s', target '%s'", ErrNotDescendant, root, target)
	}
	if rel == "." {
		return RelativePath{}, nil
	}
	return FromSegments(strings.Split(rel, string(filepath.Separator)))
}

// FromSegments validates and wraps the given segments. The slice is copied.
func FromSegments(segments []string) (RelativePath, error) {
	copied := make([]string, len(segments))
	for i, segment := range segments {
		if err := checkSegment(segment); err != nil {
			return RelativePath{}, err
		}
		copied[i] = segment
	}
	return RelativePath{segments: copied}, nil
}

func checkSegment(segment string) error {
	switch {
	case segment == "", segment == ".", segment == "..":
		return fmt.Errorf("%w: %q", ErrInvalidSegment, segment)
	case strings.ContainsRune(segment, '/'), strings.ContainsRune(segment, filepath.Separator):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidSegment, segment)
	case strings.ContainsRune(segment, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidSegment, segment)
	case !utf8.ValidString(segment):
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidSegment, segment)
	}
	return nil
}

// Segments returns a copy of the path segments.
func (p RelativePath) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Rebase joins the path onto root, yielding a system-native path.
func (p RelativePath) Rebase(root string) string {
	return filepath.Join(append([]string{root}, p.segments...)...)
}

func (p RelativePath) Equal(other RelativePath) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// String joins the segments with slashes regardless of OS.
func (p RelativePath) String() string {
	return strings.Join(p.segments, "/")
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", abs, err)
	}
	return resolved, nil
}
