package ignore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/txdir/internal/filesystem"
	"github.com/temirov/txdir/internal/ignore"
	"github.com/temirov/txdir/internal/tree"
)

func TestNilFilterIgnoresNothing(t *testing.T) {
	var filter *ignore.Filter
	assert.False(t, filter.Match([]string{"a"}, false))
	assert.Equal(t, 0, filter.Len())
}

func TestExtraPatternsApplyAtAnyDepth(t *testing.T) {
	filter := ignore.New([]string{"*.log", "", "# comment", "build/"})
	assert.Equal(t, 2, filter.Len())
	assert.True(t, filter.Match([]string{"a", "b", "x.log"}, false))
	assert.True(t, filter.Match([]string{"build"}, true))
	assert.False(t, filter.Match([]string{"build"}, false))
	assert.False(t, filter.Match([]string{"main.go"}, false))
}

func TestFromTreeScopesPatternsToTheirDirectory(t *testing.T) {
	root := tree.NewRoot()
	_, err := root.Create(".gitignore", &tree.TextFile{Lines: []string{"c"}})
	require.NoError(t, err)
	_, err = root.Create("a/b/.gitignore", &tree.TextFile{Lines: []string{"*.tmp"}})
	require.NoError(t, err)

	filter := ignore.FromTree(root, nil)
	assert.True(t, filter.Match([]string{"c"}, true))
	assert.True(t, filter.Match([]string{"x", "c"}, false))
	assert.True(t, filter.Match([]string{"a", "b", "z.tmp"}, false))
	assert.False(t, filter.Match([]string{"z.tmp"}, false))

	subtree, err := root.Cd("a")
	require.NoError(t, err)
	scoped := ignore.FromTree(subtree, nil)
	assert.False(t, scoped.Match([]string{"c"}, true))
	assert.True(t, scoped.Match([]string{"b", "z.tmp"}, false))
}

func TestFromFilesystemReadsNestedGitignoreFiles(t *testing.T) {
	baseDirectory := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(baseDirectory, ".gitignore"), []byte("dist\n"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(baseDirectory, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(baseDirectory, "pkg", ".gitignore"), []byte("*.gen\n"), 0o600))

	fileSystem, err := filesystem.NewOS(baseDirectory)
	require.NoError(t, err)
	filter, err := ignore.FromFilesystem(fileSystem, nil, []string{"*.bak"})
	require.NoError(t, err)

	assert.True(t, filter.Match([]string{"dist"}, true))
	assert.True(t, filter.Match([]string{"pkg", "a.gen"}, false))
	assert.False(t, filter.Match([]string{"a.gen"}, false))
	assert.True(t, filter.Match([]string{"notes.bak"}, false))
	assert.False(t, filter.Match([]string{"pkg", "main.go"}, false))
}
