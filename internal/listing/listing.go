// Package listing selects and orders the tree entries that a rendering shows.
package listing

import (
	"iter"
	"slices"
	"strings"

	"github.com/temirov/txdir/internal/content"
	"github.com/temirov/txdir/internal/ignore"
	"github.com/temirov/txdir/internal/tree"
)

// DefaultMaxDepth bounds traversal when no explicit depth is configured.
const DefaultMaxDepth = 30

const dotPrefix = "."

// Options controls which entries a rendering or scan includes and how much
// of each one it shows.
type Options struct {
	IncludeDot     bool
	IncludeFiles   bool
	IncludeContent bool
	IncludeBinary  bool
	// MaxDepth is the number of levels listed; zero or less means DefaultMaxDepth.
	MaxDepth     int
	UseGitignore bool
	Exclude      []string
}

// DefaultOptions lists everything except dot entries and binary content.
func DefaultOptions() Options {
	return Options{
		IncludeFiles:   true,
		IncludeContent: true,
		MaxDepth:       DefaultMaxDepth,
		UseGitignore:   true,
	}
}

// Depth returns the effective depth limit.
func (options Options) Depth() int {
	if options.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return options.MaxDepth
}

// Hides reports whether the name and kind are excluded regardless of any
// ignore patterns.
func (options Options) Hides(name string, isFile bool) bool {
	if name == ignore.GitDirectoryName {
		return true
	}
	if !options.IncludeDot && strings.HasPrefix(name, dotPrefix) {
		return true
	}
	return isFile && !options.IncludeFiles
}

// ContentLines returns the content lines shown for a file node.
func (options Options) ContentLines(node *tree.Node) []string {
	if !options.IncludeContent || !node.IsFile() {
		return nil
	}
	return content.EncodeLines(node.Content, options.IncludeBinary)
}

// Entry is one listed node.
type Entry struct {
	Node *tree.Node
	// Segments is the path of the node relative to the listing root.
	Segments []string
	// Lasts holds, for the node and each ancestor below the listing root,
	// whether it is the last listed sibling. Lasts[len(Lasts)-1] is the node.
	Lasts []bool
	// ListedChildren counts the children listed below a directory; it is zero
	// for empty directories and for directories at the depth limit.
	ListedChildren int
}

// Depth is zero for children of the listing root.
func (entry Entry) Depth() int {
	return len(entry.Segments) - 1
}

// IsLast reports whether the entry is the last listed sibling.
func (entry Entry) IsLast() bool {
	return entry.Lasts[len(entry.Lasts)-1]
}

// Path joins the relative segments with slashes.
func (entry Entry) Path() string {
	return strings.Join(entry.Segments, "/")
}

type frame struct {
	nodes    []*tree.Node
	index    int
	segments []string
	lasts    []bool
}

// Entries yields the listed nodes below root in pre-order. Siblings are
// sorted by name when sortByName is set and kept in insertion order
// otherwise.
func Entries(root *tree.Node, options Options, sortByName bool) iter.Seq[Entry] {
	var filter *ignore.Filter
	if options.UseGitignore {
		filter = ignore.FromTree(root, options.Exclude)
	} else if len(options.Exclude) > 0 {
		filter = ignore.New(options.Exclude)
	}
	maxDepth := options.Depth()

	visible := func(node *tree.Node, segments []string) []*tree.Node {
		var listed []*tree.Node
		for _, child := range node.Children() {
			if options.Hides(child.Name, child.IsFile()) {
				continue
			}
			if filter.Match(append(slices.Clone(segments), child.Name), child.IsDir()) {
				continue
			}
			listed = append(listed, child)
		}
		if sortByName {
			slices.SortStableFunc(listed, func(left, right *tree.Node) int {
				return strings.Compare(left.Name, right.Name)
			})
		}
		return listed
	}

	return func(yield func(Entry) bool) {
		if maxDepth < 1 {
			return
		}
		stack := []*frame{{nodes: visible(root, nil)}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.index >= len(top.nodes) {
				stack = stack[:len(stack)-1]
				continue
			}
			node := top.nodes[top.index]
			top.index++
			segments := append(slices.Clone(top.segments), node.Name)
			lasts := append(slices.Clone(top.lasts), top.index == len(top.nodes))
			entry := Entry{Node: node, Segments: segments, Lasts: lasts}
			var children []*tree.Node
			if node.IsDir() && len(segments) < maxDepth {
				children = visible(node, segments)
				entry.ListedChildren = len(children)
			}
			if !yield(entry) {
				return
			}
			if len(children) > 0 {
				stack = append(stack, &frame{nodes: children, segments: segments, lasts: lasts})
			}
		}
	}
}
