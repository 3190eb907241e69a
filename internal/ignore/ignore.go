// Package ignore prunes tree entries with gitignore syntax patterns.
package ignore

import (
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/temirov/txdir/internal/tree"
)

const (
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"

	commentPrefix            = "#"
	readPatternsErrorFormat  = "read ignore patterns under %q: %w"
	patternDescriptionFormat = "%d patterns"
)

// Filter decides whether a path is ignored. A nil Filter ignores nothing.
type Filter struct {
	patterns []gitignore.Pattern
	matcher  gitignore.Matcher
}

// New returns a filter holding the given extra patterns, which apply at
// every depth.
func New(exclude []string) *Filter {
	filter := &Filter{}
	filter.AddLines(nil, exclude)
	return filter
}

// Add appends parsed patterns. Later patterns take precedence.
func (filter *Filter) Add(patterns ...gitignore.Pattern) {
	filter.patterns = append(filter.patterns, patterns...)
	filter.matcher = nil
}

// AddLines parses gitignore lines scoped to the directory given by domain.
// Blank lines and comments are skipped.
func (filter *Filter) AddLines(domain []string, lines []string) {
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(trimmed) == "" || strings.HasPrefix(trimmed, commentPrefix) {
			continue
		}
		filter.Add(gitignore.ParsePattern(trimmed, domain))
	}
}

// Match reports whether the path given as segments is ignored.
func (filter *Filter) Match(segments []string, isDir bool) bool {
	if filter == nil || len(filter.patterns) == 0 || len(segments) == 0 {
		return false
	}
	if filter.matcher == nil {
		filter.matcher = gitignore.NewMatcher(filter.patterns)
	}
	return filter.matcher.Match(segments, isDir)
}

// Len returns the number of patterns held.
func (filter *Filter) Len() int {
	if filter == nil {
		return 0
	}
	return len(filter.patterns)
}

func (filter *Filter) String() string {
	return fmt.Sprintf(patternDescriptionFormat, filter.Len())
}

// FromFilesystem reads .gitignore files (and .git/info/exclude) found at or
// below base in fileSystem, then appends the extra patterns.
func FromFilesystem(fileSystem billy.Filesystem, base []string, exclude []string) (*Filter, error) {
	patterns, readError := gitignore.ReadPatterns(fileSystem, base)
	if readError != nil {
		return nil, fmt.Errorf(readPatternsErrorFormat, strings.Join(base, "/"), readError)
	}
	filter := &Filter{}
	filter.Add(patterns...)
	filter.AddLines(nil, exclude)
	return filter, nil
}

// FromTree collects patterns from .gitignore text files held in an
// in-memory tree. Domains are relative to root, so rendering a subtree only
// honours ignore files inside it.
func FromTree(root *tree.Node, exclude []string) *Filter {
	filter := &Filter{}
	rootDepth := len(root.Segments())
	for node := range root.Walk() {
		if node.Name != GitIgnoreFileName {
			continue
		}
		textFile, isText := node.Content.(*tree.TextFile)
		if !isText {
			continue
		}
		domain := node.Parent.Segments()[rootDepth:]
		filter.AddLines(domain, textFile.Lines)
	}
	filter.AddLines(nil, exclude)
	return filter
}
