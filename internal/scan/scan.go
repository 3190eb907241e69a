// Package scan reads a directory of a billy filesystem into a tree.
package scan

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/txdir/internal/content"
	"github.com/temirov/txdir/internal/ignore"
	"github.com/temirov/txdir/internal/listing"
	"github.com/temirov/txdir/internal/tree"
	"github.com/temirov/txdir/internal/utils"
)

const (
	statErrorFormat      = "stat %q: %w"
	notDirectoryFormat   = "scan %q: not a directory"
	readDirectoryMessage = "skipping unreadable directory"
	readLinkMessage      = "skipping unreadable link"
	readFileMessage      = "keeping unreadable file without content"
	binaryOmittedMessage = "omitting binary content"
	ignoreLoadMessage    = "ignore files could not be read"
	pathFieldName        = "path"
	mimeTypeFieldName    = "mime_type"
	sizeFieldName        = "size"
	currentDirectory     = "."
)

// Scanner builds trees from a filesystem.
type Scanner struct {
	FileSystem billy.Filesystem
	Options    listing.Options
	Logger     *zap.Logger
	// Workers bounds concurrent file reads; zero or less uses GOMAXPROCS.
	Workers int
}

// NewScanner returns a scanner over fileSystem.
func NewScanner(fileSystem billy.Filesystem, options listing.Options, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{FileSystem: fileSystem, Options: options, Logger: logger}
}

type fileJob struct {
	node       *tree.Node
	systemPath string
}

type directoryJob struct {
	node     *tree.Node
	segments []string
}

// Scan returns a tree whose root holds the entries of the directory at
// scanPath. Directories are listed in name order; unreadable directories and
// links are logged and skipped.
func (scanner *Scanner) Scan(ctx context.Context, scanPath string) (*tree.Node, error) {
	logger := scanner.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	baseSegments := cleanSegments(scanPath)
	basePath := joinSegments(baseSegments)
	info, statError := scanner.FileSystem.Stat(basePath)
	if statError != nil {
		return nil, fmt.Errorf(statErrorFormat, scanPath, statError)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf(notDirectoryFormat, scanPath)
	}

	filter := ignore.New(scanner.Options.Exclude)
	if scanner.Options.UseGitignore {
		loaded, loadError := ignore.FromFilesystem(scanner.FileSystem, baseSegments, scanner.Options.Exclude)
		if loadError != nil {
			logger.Warn(ignoreLoadMessage, zap.String(pathFieldName, basePath), zap.Error(loadError))
		} else {
			filter = loaded
		}
	}

	root := tree.NewRoot()
	maxDepth := scanner.Options.Depth()
	var files []fileJob
	stack := []directoryJob{{node: root}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if ctxError := ctx.Err(); ctxError != nil {
			return nil, ctxError
		}

		directoryPath := joinSegments(append(slices.Clone(baseSegments), current.segments...))
		entries, readError := scanner.FileSystem.ReadDir(directoryPath)
		if readError != nil {
			logger.Warn(readDirectoryMessage, zap.String(pathFieldName, directoryPath), zap.Error(readError))
			continue
		}
		slices.SortFunc(entries, func(left, right os.FileInfo) int {
			return strings.Compare(left.Name(), right.Name())
		})

		var subdirectories []directoryJob
		for _, entry := range entries {
			name := entry.Name()
			isLink := entry.Mode()&os.ModeSymlink != 0
			isDirectory := entry.IsDir() && !isLink
			if scanner.Options.Hides(name, !isDirectory && !isLink) {
				continue
			}
			relativeSegments := append(slices.Clone(current.segments), name)
			if filter.Match(append(slices.Clone(baseSegments), relativeSegments...), isDirectory) {
				continue
			}
			entryPath := scanner.FileSystem.Join(directoryPath, name)

			switch {
			case isLink:
				target, linkError := scanner.FileSystem.Readlink(entryPath)
				if linkError != nil {
					logger.Warn(readLinkMessage, zap.String(pathFieldName, entryPath), zap.Error(linkError))
					continue
				}
				if _, addError := current.node.Add(name, &tree.Link{Target: relativeLinkTarget(directoryPath, target)}); addError != nil {
					return nil, addError
				}
			case isDirectory:
				child, addError := current.node.Add(name, &tree.Directory{})
				if addError != nil {
					return nil, addError
				}
				if len(relativeSegments) < maxDepth {
					subdirectories = append(subdirectories, directoryJob{node: child, segments: relativeSegments})
				}
			default:
				child, addError := current.node.Add(name, &tree.TextFile{})
				if addError != nil {
					return nil, addError
				}
				if scanner.Options.IncludeContent {
					files = append(files, fileJob{node: child, systemPath: entryPath})
				}
			}
		}
		for index := len(subdirectories) - 1; index >= 0; index-- {
			stack = append(stack, subdirectories[index])
		}
	}

	if loadError := scanner.loadContents(ctx, logger, files); loadError != nil {
		return nil, loadError
	}
	return root, nil
}

// loadContents reads file contents concurrently. Each job owns its node, so
// the workers never touch shared state.
func (scanner *Scanner) loadContents(ctx context.Context, logger *zap.Logger, files []fileJob) error {
	workers := scanner.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for _, job := range files {
		group.Go(func() error {
			if ctxError := groupCtx.Err(); ctxError != nil {
				return ctxError
			}
			data, readError := util.ReadFile(scanner.FileSystem, job.systemPath)
			if readError != nil {
				logger.Warn(readFileMessage, zap.String(pathFieldName, job.systemPath), zap.Error(readError))
				return nil
			}
			decoded := content.Decode(data)
			if _, isBinary := decoded.(*tree.BinaryFile); isBinary && !scanner.Options.IncludeBinary {
				logger.Debug(binaryOmittedMessage,
					zap.String(pathFieldName, job.systemPath),
					zap.String(mimeTypeFieldName, utils.DetectMimeType(data)),
					utils.SizeField(sizeFieldName, len(data)),
				)
				return nil
			}
			job.node.Content = decoded
			return nil
		})
	}
	return group.Wait()
}

// relativeLinkTarget keeps relative targets and rewrites absolute ones,
// which the filesystem reports relative to its own root, relative to the
// directory holding the link.
func relativeLinkTarget(directoryPath, target string) string {
	slashed := filepath.ToSlash(target)
	if !path.IsAbs(slashed) {
		return slashed
	}
	return tree.RelativeTarget(cleanSegments(directoryPath), slashed)
}

func cleanSegments(scanPath string) []string {
	cleaned := path.Clean(filepath.ToSlash(scanPath))
	var segments []string
	for _, segment := range tree.SplitPath(cleaned) {
		if segment != currentDirectory {
			segments = append(segments, segment)
		}
	}
	return segments
}

func joinSegments(segments []string) string {
	if len(segments) == 0 {
		return currentDirectory
	}
	return path.Join(segments...)
}
