package listing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/txdir/internal/listing"
	"github.com/temirov/txdir/internal/tree"
)

func buildTree(t *testing.T) *tree.Node {
	t.Helper()
	root := tree.NewRoot()
	for _, entryPath := range []string{"z/b.txt", "z/a.txt", "a/.env", "a/build/out.bin", "a/main.go"} {
		_, createError := root.Create(entryPath, &tree.TextFile{Lines: []string{entryPath}})
		require.NoError(t, createError)
	}
	_, createError := root.Create(".gitignore", &tree.TextFile{Lines: []string{"# generated", "build/"}})
	require.NoError(t, createError)
	_, mkdirError := root.Mkdir(".git/objects")
	require.NoError(t, mkdirError)
	return root
}

func collectPaths(root *tree.Node, options listing.Options, sortByName bool) []string {
	var paths []string
	for entry := range listing.Entries(root, options, sortByName) {
		paths = append(paths, entry.Path())
	}
	return paths
}

func TestEntriesOrdering(t *testing.T) {
	root := buildTree(t)
	options := listing.DefaultOptions()
	assert.Equal(t, []string{"z", "z/b.txt", "z/a.txt", "a", "a/main.go"}, collectPaths(root, options, false))
	assert.Equal(t, []string{"a", "a/main.go", "z", "z/a.txt", "z/b.txt"}, collectPaths(root, options, true))
}

func TestEntriesFilters(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(options *listing.Options)
		expected []string
	}{
		{
			name:     "dot_entries",
			mutate:   func(options *listing.Options) { options.IncludeDot = true },
			expected: []string{".gitignore", "a", "a/.env", "a/main.go", "z", "z/a.txt", "z/b.txt"},
		},
		{
			name:     "without_gitignore",
			mutate:   func(options *listing.Options) { options.UseGitignore = false },
			expected: []string{"a", "a/build", "a/build/out.bin", "a/main.go", "z", "z/a.txt", "z/b.txt"},
		},
		{
			name:     "exclude_pattern",
			mutate:   func(options *listing.Options) { options.Exclude = []string{"*.txt"} },
			expected: []string{"a", "a/main.go", "z"},
		},
		{
			name:     "directories_only",
			mutate:   func(options *listing.Options) { options.IncludeFiles = false },
			expected: []string{"a", "z"},
		},
		{
			name:     "depth_one",
			mutate:   func(options *listing.Options) { options.MaxDepth = 1 },
			expected: []string{"a", "z"},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			options := listing.DefaultOptions()
			testCase.mutate(&options)
			assert.Equal(t, testCase.expected, collectPaths(buildTree(t), options, true))
		})
	}
}

func TestEntryShape(t *testing.T) {
	root := buildTree(t)
	var entries []listing.Entry
	for entry := range listing.Entries(root, listing.DefaultOptions(), true) {
		entries = append(entries, entry)
	}
	require.Len(t, entries, 5)

	directoryA := entries[0]
	assert.Equal(t, 0, directoryA.Depth())
	assert.False(t, directoryA.IsLast())
	assert.Equal(t, 1, directoryA.ListedChildren)

	lastFile := entries[4]
	assert.Equal(t, "z/b.txt", lastFile.Path())
	assert.Equal(t, 1, lastFile.Depth())
	assert.Equal(t, []bool{true, true}, lastFile.Lasts)
}

func TestDepthLimitHidesChildren(t *testing.T) {
	root := buildTree(t)
	options := listing.DefaultOptions()
	options.MaxDepth = 1
	for entry := range listing.Entries(root, options, true) {
		assert.Zero(t, entry.ListedChildren, entry.Path())
	}
}

func TestContentLines(t *testing.T) {
	root := tree.NewRoot()
	textNode, createError := root.Create("notes.txt", &tree.TextFile{Lines: []string{"first  ", "second"}})
	require.NoError(t, createError)
	binaryNode, createError := root.Create("blob", &tree.BinaryFile{Data: []byte{0x00, 0xff}})
	require.NoError(t, createError)

	options := listing.DefaultOptions()
	assert.Equal(t, []string{"first", "second"}, options.ContentLines(textNode))
	assert.Empty(t, options.ContentLines(binaryNode))

	options.IncludeBinary = true
	assert.Equal(t, []string{"b'AP8='"}, options.ContentLines(binaryNode))

	options.IncludeContent = false
	assert.Empty(t, options.ContentLines(textNode))
}
