// Package glyphs defines the character sets used to draw tree structure.
package glyphs

import (
	"strings"
	"unicode"
)

// Width is the number of columns every branch and continuation group spans.
const Width = 3

// Set is a family of tree drawing characters.
type Set struct {
	Name       string
	Middle     rune
	End        rune
	Horizontal rune
	Vertical   rune
	// StrictBranch requires the horizontal character right after a branch
	// character for it to count as a branch marker.
	StrictBranch bool
}

var (
	// Unicode draws trees with box drawing characters.
	Unicode = Set{Name: "unicode", Middle: '├', End: '└', Horizontal: '─', Vertical: '│'}
	// ASCII draws trees with plain ASCII characters.
	ASCII = Set{Name: "ascii", Middle: '`', End: '`', Horizontal: '-', Vertical: '|', StrictBranch: true}
)

// Branch returns the three column group drawn before an entry name.
func (set Set) Branch(isLast bool) string {
	branch := set.Middle
	if isLast {
		branch = set.End
	}
	return string([]rune{branch, set.Horizontal, ' '})
}

// Continuation returns the three column group drawn below an entry for its
// descendants.
func (set Set) Continuation(isLast bool) string {
	if isLast {
		return strings.Repeat(" ", Width)
	}
	return string([]rune{set.Vertical, ' ', ' '})
}

// NameColumn returns the rune column where the entry name on line starts:
// past the leading padding and, when one is present, a single branch
// character together with the horizontal characters and spaces after it.
// Lines holding nothing past that point report false.
func (set Set) NameColumn(line string) (int, bool) {
	runes := []rune(line)
	column := 0
	for column < len(runes) && (unicode.IsSpace(runes[column]) || runes[column] == set.Vertical) {
		column++
	}
	if column < len(runes) && (runes[column] == set.Middle || runes[column] == set.End) {
		column++
		for column < len(runes) && runes[column] == set.Horizontal {
			column++
		}
		for column < len(runes) && unicode.IsSpace(runes[column]) {
			column++
		}
	}
	if column >= len(runes) {
		return 0, false
	}
	return column, true
}

// IsPadding reports whether the rune can precede an entry or content on a
// line without carrying meaning of its own.
func (set Set) IsPadding(character rune) bool {
	return character == ' ' || character == set.Vertical
}

// HasBranch reports whether a line carries a branch marker. In strict sets
// a branch character counts at the start of the line or when followed by
// the horizontal character; otherwise it counts anywhere.
func (set Set) HasBranch(line string) bool {
	if set.StrictBranch {
		return set.StartsWithBranch(line) || strings.Contains(line, set.pair())
	}
	return strings.ContainsRune(line, set.Middle) || strings.ContainsRune(line, set.End)
}

func (set Set) pair() string {
	return string([]rune{set.Middle, set.Horizontal})
}

// StartsWithBranch reports whether the line begins with a branch marker once
// spaces and vertical continuation characters are skipped.
func (set Set) StartsWithBranch(line string) bool {
	trimmed := strings.TrimLeftFunc(line, set.IsPadding)
	if trimmed == "" {
		return false
	}
	first := []rune(trimmed)[0]
	return first == set.Middle || first == set.End
}

// Detect picks the glyph set used by text lines and reports whether any line
// carries a branch marker at all, which marks the text as an indented view.
func Detect(lines []string) (Set, bool) {
	for _, line := range lines {
		if Unicode.StartsWithBranch(line) {
			return Unicode, true
		}
	}
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimLeftFunc(line, ASCII.IsPadding), ASCII.pair()) {
			return ASCII, true
		}
	}
	return Unicode, false
}
