// Package utils provides helper functions, including version retrieval.
package utils

import (
	"errors"
	"runtime/debug"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

const (
	unknownVersion      = "unknown"
	developmentVersion  = "(devel)"
	developmentPrefix   = "devel-"
	shortHashLength     = 7
	currentDirectoryArg = "."
)

// GetApplicationVersion attempts to determine the application version using various methods.
// It checks Go build info first, then falls back to the tags of the enclosing
// Git repository.
func GetApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != developmentVersion {
		return buildInfo.Main.Version
	}
	return versionFromRepository(currentDirectoryArg)
}

// versionFromRepository opens the repository containing startDirectory and
// returns the tag pointing at HEAD, or a development version naming the
// abbreviated HEAD hash when no tag matches.
func versionFromRepository(startDirectory string) string {
	repository, openError := git.PlainOpenWithOptions(startDirectory, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return unknownVersion
	}
	head, headError := repository.Head()
	if headError != nil {
		return unknownVersion
	}
	tags, tagsError := repository.Tags()
	if tagsError != nil {
		return unknownVersion
	}
	defer tags.Close()

	version := ""
	iterationError := tags.ForEach(func(reference *plumbing.Reference) error {
		target := reference.Hash()
		if annotated, annotatedError := repository.TagObject(target); annotatedError == nil {
			target = annotated.Target
		}
		if target == head.Hash() {
			version = reference.Name().Short()
			return storer.ErrStop
		}
		return nil
	})
	if iterationError != nil && !errors.Is(iterationError, storer.ErrStop) {
		return unknownVersion
	}
	if version != "" {
		return version
	}
	return developmentPrefix + head.Hash().String()[:shortHashLength]
}
