package glyphs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/temirov/txdir/internal/glyphs"
)

func TestGroups(t *testing.T) {
	assert.Equal(t, "├─ ", glyphs.Unicode.Branch(false))
	assert.Equal(t, "└─ ", glyphs.Unicode.Branch(true))
	assert.Equal(t, "│  ", glyphs.Unicode.Continuation(false))
	assert.Equal(t, "   ", glyphs.Unicode.Continuation(true))
	assert.Equal(t, "`- ", glyphs.ASCII.Branch(false))
	assert.Equal(t, "`- ", glyphs.ASCII.Branch(true))
	assert.Equal(t, "|  ", glyphs.ASCII.Continuation(false))
}

func TestDetect(t *testing.T) {
	testCases := []struct {
		name       string
		lines      []string
		expectSet  string
		expectView bool
	}{
		{name: "unicode_view", lines: []string{"└─ tmpt/", "   ├─ a/"}, expectSet: "unicode", expectView: true},
		{name: "hand_written", lines: []string{"tmpt", "└─ a", "   ├aa.txt"}, expectSet: "unicode", expectView: true},
		{name: "ascii_view", lines: []string{"`- r/", "   `- a/"}, expectSet: "ascii", expectView: true},
		{name: "flat", lines: []string{"r/a/x.txt", "   Text in x"}, expectSet: "unicode", expectView: false},
		{name: "flat_with_backtick", lines: []string{"r/a.md", "   `code`"}, expectSet: "unicode", expectView: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			set, isView := glyphs.Detect(testCase.lines)
			assert.Equal(t, testCase.expectSet, set.Name)
			assert.Equal(t, testCase.expectView, isView)
		})
	}
}

func TestHasBranch(t *testing.T) {
	assert.True(t, glyphs.Unicode.HasBranch("text ├ inside"))
	assert.False(t, glyphs.Unicode.HasBranch("│ padding only"))
	assert.True(t, glyphs.ASCII.HasBranch("|  `- a"))
	assert.True(t, glyphs.ASCII.HasBranch("   `aa.txt"))
	assert.False(t, glyphs.ASCII.HasBranch("use `go test`"))
}

func TestNameColumn(t *testing.T) {
	testCases := []struct {
		name         string
		set          glyphs.Set
		line         string
		expectColumn int
		expectName   bool
	}{
		{name: "plain", set: glyphs.Unicode, line: "tmpt", expectColumn: 0, expectName: true},
		{name: "rendered_branch", set: glyphs.Unicode, line: "│  └─ a/", expectColumn: 6, expectName: true},
		{name: "hand_written_branch", set: glyphs.Unicode, line: "   ├aa.txt", expectColumn: 4, expectName: true},
		{name: "name_with_horizontal", set: glyphs.Unicode, line: "├─ ─rule", expectColumn: 3, expectName: true},
		{name: "ascii_name_with_dash", set: glyphs.ASCII, line: "`- -rf/", expectColumn: 3, expectName: true},
		{name: "ascii_name_with_backtick", set: glyphs.ASCII, line: "|  `- `tick", expectColumn: 6, expectName: true},
		{name: "content", set: glyphs.ASCII, line: "         hello", expectColumn: 9, expectName: true},
		{name: "continuation_only", set: glyphs.Unicode, line: "│  │", expectName: false},
		{name: "bare_branch", set: glyphs.ASCII, line: "   `- ", expectName: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			column, hasName := testCase.set.NameColumn(testCase.line)
			assert.Equal(t, testCase.expectName, hasName)
			assert.Equal(t, testCase.expectColumn, column)
		})
	}
}
