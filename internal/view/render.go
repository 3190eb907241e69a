// Package view converts trees to and from the indented view format:
//
//	└─ tmpt/
//	   ├─ a/
//	   │  ├─ aa.txt
//	            this is aa
//
//	   │  └─ f.txt -> ../b/e/f.txt
//	   └─ b/
//
// Directories end with a slash, links show their target after an arrow and
// file content is indented two levels below its entry.
package view

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/temirov/txdir/internal/glyphs"
	"github.com/temirov/txdir/internal/listing"
	"github.com/temirov/txdir/internal/tree"
)

const (
	directorySuffix     = "/"
	linkArrow           = " -> "
	lineSeparator       = "\n"
	contentIndentLevels = 2
	writeErrorFormat    = "write view line: %w"
)

// Options controls view rendering.
type Options struct {
	listing.Options
	Glyphs glyphs.Set
}

// DefaultOptions renders with Unicode glyphs and the default listing.
func DefaultOptions() Options {
	return Options{Options: listing.DefaultOptions(), Glyphs: glyphs.Unicode}
}

func (options Options) glyphSet() glyphs.Set {
	if options.Glyphs.Middle == 0 {
		return glyphs.Unicode
	}
	return options.Glyphs
}

// Lines renders the children of root, sorted by name, one string per line.
func Lines(root *tree.Node, options Options) []string {
	set := options.glyphSet()
	var lines []string
	for entry := range listing.Entries(root, options.Options, true) {
		var prefix strings.Builder
		for _, ancestorIsLast := range entry.Lasts[:len(entry.Lasts)-1] {
			prefix.WriteString(set.Continuation(ancestorIsLast))
		}
		node := entry.Node
		line := prefix.String() + set.Branch(entry.IsLast()) + node.Name
		switch {
		case node.IsDir():
			line += directorySuffix
		case node.IsLink():
			line += linkArrow + node.LinkTarget()
		}
		lines = append(lines, line)

		contentIndent := strings.Repeat(" ", utf8.RuneCountInString(prefix.String())+contentIndentLevels*glyphs.Width)
		for _, contentLine := range options.ContentLines(node) {
			if contentLine == "" {
				lines = append(lines, "")
				continue
			}
			lines = append(lines, contentIndent+contentLine)
		}
	}
	return lines
}

// String renders the view as a single string, each line terminated by a
// newline exactly as Render writes it.
func String(root *tree.Node, options Options) string {
	var builder strings.Builder
	for _, line := range Lines(root, options) {
		builder.WriteString(line)
		builder.WriteString(lineSeparator)
	}
	return builder.String()
}

// Render writes the view to writer, each line terminated by a newline.
func Render(writer io.Writer, root *tree.Node, options Options) error {
	for _, line := range Lines(root, options) {
		if _, writeError := io.WriteString(writer, line+lineSeparator); writeError != nil {
			return fmt.Errorf(writeErrorFormat, writeError)
		}
	}
	return nil
}
