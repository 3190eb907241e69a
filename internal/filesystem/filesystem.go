// Package filesystem provides the filesystem capability handed to scanners
// and materializers. Every capability is rooted at an explicit base path, so
// relative paths never depend on the process working directory.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

const (
	absolutePathErrorFormat = "resolve absolute path for %q: %w"
	readFileErrorFormat     = "read %q: %w"
	statErrorFormat         = "stat %q: %w"
)

// Kind describes what a path on disk refers to.
type Kind int

const (
	// KindMissing marks a path that does not exist.
	KindMissing Kind = iota
	// KindDirectory marks a directory.
	KindDirectory
	// KindRegular marks a regular file or anything else that is not a directory.
	KindRegular
)

// NewOS returns a filesystem rooted at basePath on the host.
func NewOS(basePath string) (billy.Filesystem, error) {
	absolutePath, absolutePathError := filepath.Abs(basePath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(absolutePathErrorFormat, basePath, absolutePathError)
	}
	return osfs.New(absolutePath), nil
}

// NewMemory returns an empty in-memory filesystem.
func NewMemory() billy.Filesystem {
	return memfs.New()
}

// ReadHostFile reads a file addressed by a host path.
func ReadHostFile(hostPath string) ([]byte, error) {
	absolutePath, absolutePathError := filepath.Abs(hostPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(absolutePathErrorFormat, hostPath, absolutePathError)
	}
	hostFileSystem := osfs.New(filepath.Dir(absolutePath))
	data, readError := util.ReadFile(hostFileSystem, filepath.Base(absolutePath))
	if readError != nil {
		return nil, fmt.Errorf(readFileErrorFormat, hostPath, readError)
	}
	return data, nil
}

// Inspect reports what a host path refers to. Symbolic links are followed.
func Inspect(hostPath string) (Kind, error) {
	absolutePath, absolutePathError := filepath.Abs(hostPath)
	if absolutePathError != nil {
		return KindMissing, fmt.Errorf(absolutePathErrorFormat, hostPath, absolutePathError)
	}
	hostFileSystem := osfs.New(filepath.Dir(absolutePath))
	info, statError := hostFileSystem.Stat(filepath.Base(absolutePath))
	if statError != nil {
		if os.IsNotExist(statError) {
			return KindMissing, nil
		}
		return KindMissing, fmt.Errorf(statErrorFormat, hostPath, statError)
	}
	if info.IsDir() {
		return KindDirectory, nil
	}
	return KindRegular, nil
}

// Exists reports whether anything, including a dangling link, exists at
// path inside fileSystem.
func Exists(fileSystem billy.Filesystem, path string) (bool, error) {
	_, statError := fileSystem.Lstat(path)
	if statError == nil {
		return true, nil
	}
	if os.IsNotExist(statError) {
		return false, nil
	}
	return false, fmt.Errorf(statErrorFormat, path, statError)
}
