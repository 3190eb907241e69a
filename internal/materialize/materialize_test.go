package materialize_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/txdir/internal/filesystem"
	"github.com/temirov/txdir/internal/flat"
	"github.com/temirov/txdir/internal/listing"
	"github.com/temirov/txdir/internal/materialize"
	"github.com/temirov/txdir/internal/scan"
	"github.com/temirov/txdir/internal/tree"
)

const sampleFlat = `tmpt/a/aa.txt
    this is aa

tmpt/a/f.txt -> ../b/e/f.txt
tmpt/b/c/d/
tmpt/b/k/e -> /tmpt/a
tmpt/b/e/f.txt
tmpt/b/g.txt
         this is g
tmpt/b/blob
   b'AP8='
`

func parseFlat(t *testing.T, text string) *tree.Node {
	t.Helper()
	root, parseErrors := flat.NewParser(zap.NewNop(), nil).Parse(context.Background(), text)
	require.Empty(t, parseErrors)
	return root
}

func everything() listing.Options {
	options := listing.DefaultOptions()
	options.IncludeDot = true
	options.IncludeBinary = true
	return options
}

func TestBuildRoundTripsThroughScan(t *testing.T) {
	directory := t.TempDir()
	fileSystem, fileSystemError := filesystem.NewOS(directory)
	require.NoError(t, fileSystemError)
	original := parseFlat(t, sampleFlat)

	lastDirectory, buildError := materialize.NewMaterializer(fileSystem, zap.NewNop()).Build(original)
	require.NoError(t, buildError)
	assert.Equal(t, "tmpt/b/e", lastDirectory)

	target, readlinkError := os.Readlink(filepath.Join(directory, "tmpt", "b", "k", "e"))
	require.NoError(t, readlinkError)
	assert.Equal(t, "../../../tmpt/a", target)

	blob, readError := os.ReadFile(filepath.Join(directory, "tmpt", "b", "blob"))
	require.NoError(t, readError)
	assert.Equal(t, []byte{0x00, 0xff}, blob)

	aa, readError := os.ReadFile(filepath.Join(directory, "tmpt", "a", "aa.txt"))
	require.NoError(t, readError)
	assert.Equal(t, "this is aa\n\n", string(aa))

	scanned, scanError := scan.NewScanner(fileSystem, everything(), nil).Scan(context.Background(), ".")
	require.NoError(t, scanError)
	assert.True(t, tree.Equal(original, scanned), flat.String(scanned, everything()))
}

func TestBuildIsIdempotent(t *testing.T) {
	fileSystem := filesystem.NewMemory()
	root := parseFlat(t, sampleFlat)
	materializer := materialize.NewMaterializer(fileSystem, nil)

	_, firstError := materializer.Build(root)
	require.NoError(t, firstError)
	_, secondError := materializer.Build(root)
	require.NoError(t, secondError)

	data, readError := util.ReadFile(fileSystem, "tmpt/b/g.txt")
	require.NoError(t, readError)
	assert.Equal(t, "this is g\n", string(data))
}

func TestPlaceholdersNeverTruncate(t *testing.T) {
	fileSystem := filesystem.NewMemory()
	materializer := materialize.NewMaterializer(fileSystem, nil)
	withContent := parseFlat(t, "t/a/aa.txt\n    this is aa\n    this is aa\nt/b/bb.txt\n    this is bb\n")
	_, buildError := materializer.Build(withContent)
	require.NoError(t, buildError)

	withoutContent := parseFlat(t, "t/a/aa.txt\nt/b/bb.txt\nt/b/new.txt\n")
	_, buildError = materializer.Build(withoutContent)
	require.NoError(t, buildError)

	data, readError := util.ReadFile(fileSystem, "t/a/aa.txt")
	require.NoError(t, readError)
	assert.Equal(t, "this is aa\nthis is aa\n", string(data))
	created, statError := fileSystem.Stat("t/b/new.txt")
	require.NoError(t, statError)
	assert.Zero(t, created.Size())

	replaced := parseFlat(t, "t/a/aa.txt\n   replaced\n")
	_, buildError = materializer.Build(replaced)
	require.NoError(t, buildError)
	data, readError = util.ReadFile(fileSystem, "t/a/aa.txt")
	require.NoError(t, readError)
	assert.Equal(t, "replaced\n", string(data))
}

func TestExistingLinksAreKept(t *testing.T) {
	fileSystem := filesystem.NewMemory()
	require.NoError(t, fileSystem.Symlink("elsewhere", "link"))
	root := tree.NewRoot()
	_, createError := root.Create("link", &tree.Link{Target: "other"})
	require.NoError(t, createError)

	_, buildError := materialize.NewMaterializer(fileSystem, nil).Build(root)
	require.NoError(t, buildError)
	target, readlinkError := fileSystem.Readlink("link")
	require.NoError(t, readlinkError)
	assert.Equal(t, "elsewhere", target)
}

func TestFailuresSkipOnlyTheirSubtree(t *testing.T) {
	fileSystem := filesystem.NewMemory()
	require.NoError(t, util.WriteFile(fileSystem, "blocked", []byte("file in the way"), 0o644))
	root := parseFlat(t, "blocked/inner.txt\n   inner\nfree/ok.txt\n   ok\n")

	_, buildError := materialize.NewMaterializer(fileSystem, nil).Build(root)
	require.Error(t, buildError)
	assert.Contains(t, buildError.Error(), "blocked")

	exists, existsError := filesystem.Exists(fileSystem, "blocked/inner.txt")
	require.NoError(t, existsError)
	assert.False(t, exists)
	data, readError := util.ReadFile(fileSystem, "free/ok.txt")
	require.NoError(t, readError)
	assert.Equal(t, "ok\n", string(data))
}

func TestBuildSubtreeWritesRelativeToIt(t *testing.T) {
	fileSystem := filesystem.NewMemory()
	root := parseFlat(t, "outer/inner/x.txt\n   x\n")
	subtree, cdError := root.Cd("outer")
	require.NoError(t, cdError)

	lastDirectory, buildError := materialize.NewMaterializer(fileSystem, nil).Build(subtree)
	require.NoError(t, buildError)
	assert.Equal(t, "inner", lastDirectory)
	data, readError := util.ReadFile(fileSystem, "inner/x.txt")
	require.NoError(t, readError)
	assert.Equal(t, "x\n", string(data))
}
