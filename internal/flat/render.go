// Package flat converts trees to and from the flat format, one leaf path per
// line:
//
//	tmpt/a/aa.txt
//	   this is aa
//	tmpt/a/f.txt -> ../b/e/f.txt
//	tmpt/b/c/d/
//
// Content lines follow their file indented by three spaces.
package flat

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/txdir/internal/glyphs"
	"github.com/temirov/txdir/internal/listing"
	"github.com/temirov/txdir/internal/tree"
)

const (
	directorySuffix  = "/"
	linkArrow        = " -> "
	lineSeparator    = "\n"
	writeErrorFormat = "write flat line: %w"
)

var contentIndent = strings.Repeat(" ", glyphs.Width)

// Format names a text encoding of a tree.
type Format int

const (
	// FormatFlat is the line-per-path encoding.
	FormatFlat Format = iota
	// FormatView is the indented encoding with branch glyphs.
	FormatView
)

// Detect reports which encoding lines use. Any line starting with a branch
// glyph marks an indented view.
func Detect(lines []string) Format {
	if _, isView := glyphs.Detect(lines); isView {
		return FormatView
	}
	return FormatFlat
}

// Lines renders the leaves below root in insertion order.
func Lines(root *tree.Node, options listing.Options) []string {
	var lines []string
	for entry := range listing.Entries(root, options, false) {
		node := entry.Node
		switch {
		case node.IsDir():
			if entry.ListedChildren == 0 {
				lines = append(lines, entry.Path()+directorySuffix)
			}
		case node.IsLink():
			lines = append(lines, entry.Path()+linkArrow+node.LinkTarget())
		default:
			lines = append(lines, entry.Path())
			for _, contentLine := range options.ContentLines(node) {
				if contentLine == "" {
					lines = append(lines, "")
					continue
				}
				lines = append(lines, contentIndent+contentLine)
			}
		}
	}
	return lines
}

// String renders the flat text with every line terminated by a newline.
func String(root *tree.Node, options listing.Options) string {
	var builder strings.Builder
	for _, line := range Lines(root, options) {
		builder.WriteString(line)
		builder.WriteString(lineSeparator)
	}
	return builder.String()
}

// Render writes the flat text to writer.
func Render(writer io.Writer, root *tree.Node, options listing.Options) error {
	if _, writeError := io.WriteString(writer, String(root, options)); writeError != nil {
		return fmt.Errorf(writeErrorFormat, writeError)
	}
	return nil
}
