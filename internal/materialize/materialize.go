// Package materialize writes a tree into a billy filesystem.
package materialize

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/temirov/txdir/internal/content"
	"github.com/temirov/txdir/internal/filesystem"
	"github.com/temirov/txdir/internal/tree"
	"github.com/temirov/txdir/internal/utils"
)

const (
	directoryPermissions os.FileMode = 0o755
	filePermissions      os.FileMode = 0o644

	mkdirErrorFormat   = "create directory %q: %w"
	symlinkErrorFormat = "create link %q: %w"
	writeErrorFormat   = "write file %q: %w"

	skippedExistingMessage = "keeping existing entry"
	wroteFileMessage       = "wrote file"
	createdLinkMessage     = "created link"
	pathFieldName          = "path"
	sizeFieldName          = "size"
	targetFieldName        = "target"
)

// buildMutex serializes Build calls across all materializers.
var buildMutex sync.Mutex

// Materializer creates the nodes of a tree below the root of FileSystem.
type Materializer struct {
	FileSystem billy.Filesystem
	Logger     *zap.Logger
}

// NewMaterializer returns a materializer writing into fileSystem.
func NewMaterializer(fileSystem billy.Filesystem, logger *zap.Logger) *Materializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Materializer{FileSystem: fileSystem, Logger: logger}
}

// Build creates every node below root in pre-order. Directories are created
// with their parents; links and content-less files are only created when
// nothing exists at their path yet; files with content overwrite what is
// there. A failure is recorded and the subtree below it skipped while
// independent subtrees continue. Build returns the filesystem path of the
// last directory it created along with the joined failures.
func (materializer *Materializer) Build(root *tree.Node) (string, error) {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	logger := materializer.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rootDepth := len(root.Segments())
	var failures []error
	var failedPrefixes []string
	lastDirectory := ""

	for node := range root.Walk() {
		nodePath := path.Join(node.Segments()[rootDepth:]...)
		if underFailure(nodePath, failedPrefixes) {
			continue
		}
		var buildError error
		switch {
		case node.IsDir():
			if buildError = materializer.FileSystem.MkdirAll(nodePath, directoryPermissions); buildError != nil {
				buildError = fmt.Errorf(mkdirErrorFormat, nodePath, buildError)
			} else {
				lastDirectory = nodePath
			}
		case node.IsLink():
			buildError = materializer.createUnlessExists(logger, nodePath, func() error {
				if symlinkError := materializer.FileSystem.Symlink(node.LinkTarget(), nodePath); symlinkError != nil {
					return fmt.Errorf(symlinkErrorFormat, nodePath, symlinkError)
				}
				logger.Debug(createdLinkMessage, zap.String(pathFieldName, nodePath), zap.String(targetFieldName, node.LinkTarget()))
				return nil
			})
		case node.IsPlaceholder():
			buildError = materializer.createUnlessExists(logger, nodePath, func() error {
				return materializer.writeFile(logger, nodePath, nil)
			})
		default:
			buildError = materializer.writeFile(logger, nodePath, content.Bytes(node.Content))
		}
		if buildError != nil {
			failures = append(failures, buildError)
			failedPrefixes = append(failedPrefixes, nodePath)
		}
	}
	return lastDirectory, errors.Join(failures...)
}

func (materializer *Materializer) createUnlessExists(logger *zap.Logger, nodePath string, create func() error) error {
	exists, existsError := filesystem.Exists(materializer.FileSystem, nodePath)
	if existsError != nil {
		return existsError
	}
	if exists {
		logger.Debug(skippedExistingMessage, zap.String(pathFieldName, nodePath))
		return nil
	}
	return create()
}

func (materializer *Materializer) writeFile(logger *zap.Logger, nodePath string, data []byte) error {
	if writeError := util.WriteFile(materializer.FileSystem, nodePath, data, filePermissions); writeError != nil {
		return fmt.Errorf(writeErrorFormat, nodePath, writeError)
	}
	logger.Debug(wroteFileMessage, zap.String(pathFieldName, nodePath), utils.SizeField(sizeFieldName, len(data)))
	return nil
}

func underFailure(nodePath string, failedPrefixes []string) bool {
	for _, prefix := range failedPrefixes {
		if strings.HasPrefix(nodePath, prefix+"/") {
			return true
		}
	}
	return false
}
