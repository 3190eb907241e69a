package tree

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrNotFound reports a path segment that does not exist.
	ErrNotFound = errors.New("no such entry")
	// ErrNotDirectory reports an attempt to descend into a file or link.
	ErrNotDirectory = errors.New("not a directory")
	// ErrConflict reports an entry whose kind contradicts an existing node.
	ErrConflict = errors.New("conflicting entry")
	// ErrInvalidName reports an empty or separator-bearing child name.
	ErrInvalidName = errors.New("invalid name")
)

const (
	navigationErrorFormat = "cannot resolve %q under %q: %v"
	invalidNameFormat     = "name %q: %w"
	duplicateNameFormat   = "entry %q already exists in %q: %w"
	conflictFormat        = "entry %q exists as a %s: %w"
)

// NavigationError describes a failed lookup or descent.
type NavigationError struct {
	Path    string
	Segment string
	Err     error
}

func (navigationError *NavigationError) Error() string {
	return fmt.Sprintf(navigationErrorFormat, navigationError.Segment, navigationError.Path, navigationError.Err)
}

func (navigationError *NavigationError) Unwrap() error {
	return navigationError.Err
}

// SplitPath breaks a slash or backslash separated path into its non-empty
// segments. Dot segments are kept and resolved during navigation.
func SplitPath(value string) []string {
	normalized := strings.ReplaceAll(value, alternatePathSeparator, pathSeparator)
	rawSegments := strings.Split(normalized, pathSeparator)
	segments := make([]string, 0, len(rawSegments))
	for _, segment := range rawSegments {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// Cd navigates existing nodes only.
func (node *Node) Cd(value string) (*Node, error) {
	return node.CdSegments(SplitPath(value))
}

// CdSegments navigates existing nodes following the given names. "." stays in
// place and ".." moves to the parent; the root is its own parent.
func (node *Node) CdSegments(segments []string) (*Node, error) {
	current := node
	for _, segment := range segments {
		switch segment {
		case "", currentSegment:
			continue
		case parentSegment:
			if current.Parent != nil {
				current = current.Parent
			}
			continue
		}
		if !current.IsDir() {
			return nil, &NavigationError{Path: current.Path(), Segment: segment, Err: ErrNotDirectory}
		}
		next := current.Child(segment)
		if next == nil {
			return nil, &NavigationError{Path: current.Path(), Segment: segment, Err: ErrNotFound}
		}
		current = next
	}
	return current, nil
}

// Mkdir navigates the path creating missing directories and returns the final
// directory. A segment that exists as a file or link yields ErrConflict.
func (node *Node) Mkdir(value string) (*Node, error) {
	return node.mkdirSegments(SplitPath(value))
}

func (node *Node) mkdirSegments(segments []string) (*Node, error) {
	current := node
	for _, segment := range segments {
		switch segment {
		case currentSegment:
			continue
		case parentSegment:
			if current.Parent != nil {
				current = current.Parent
			}
			continue
		}
		next := current.Child(segment)
		if next == nil {
			created, addError := current.Add(segment, &Directory{})
			if addError != nil {
				return nil, addError
			}
			next = created
		}
		if !next.IsDir() {
			return nil, fmt.Errorf(conflictFormat, next.Path(), kindName(next.Kind()), ErrConflict)
		}
		current = next
	}
	return current, nil
}

// Create navigates the path creating intermediate directories and places
// content at the last segment. When the last segment already exists the
// existing node is returned: a placeholder file receives file content, an
// existing node of the same kind is kept as is, and a kind mismatch yields
// ErrConflict.
func (node *Node) Create(value string, content Content) (*Node, error) {
	segments := SplitPath(value)
	if len(segments) == 0 {
		return nil, fmt.Errorf(invalidNameFormat, value, ErrInvalidName)
	}
	parent, mkdirError := node.mkdirSegments(segments[:len(segments)-1])
	if mkdirError != nil {
		return nil, mkdirError
	}
	name := segments[len(segments)-1]
	if name == currentSegment || name == parentSegment {
		return nil, fmt.Errorf(invalidNameFormat, name, ErrInvalidName)
	}
	if content == nil {
		content = &TextFile{}
	}
	existing := parent.Child(name)
	if existing == nil {
		return parent.Add(name, content)
	}
	if existing.Kind() != content.kind() {
		return nil, fmt.Errorf(conflictFormat, existing.Path(), kindName(existing.Kind()), ErrConflict)
	}
	if existing.IsPlaceholder() {
		existing.Content = content
	}
	return existing, nil
}

// RelativeTarget converts an absolute in-tree path into a link target
// relative to the directory identified by fromDirectory.
func RelativeTarget(fromDirectory []string, absoluteTarget string) string {
	cleaned := path.Clean(pathSeparator + strings.ReplaceAll(absoluteTarget, alternatePathSeparator, pathSeparator))
	targetSegments := SplitPath(cleaned)
	common := 0
	for common < len(fromDirectory) && common < len(targetSegments) && fromDirectory[common] == targetSegments[common] {
		common++
	}
	relative := make([]string, 0, len(fromDirectory)-common+len(targetSegments)-common)
	for range fromDirectory[common:] {
		relative = append(relative, parentSegment)
	}
	relative = append(relative, targetSegments[common:]...)
	if len(relative) == 0 {
		return currentSegment
	}
	return strings.Join(relative, pathSeparator)
}

func kindName(kind Kind) string {
	switch kind {
	case KindDirectory:
		return "directory"
	case KindLink:
		return "link"
	default:
		return "file"
	}
}
