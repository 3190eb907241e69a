package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/util"

	"github.com/temirov/txdir/internal/filesystem"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `# txdir defaults; command line flags override these values.
ascii: false
binary: false
flat: false
dot: false
no_files: false
no_content: false
max_depth: 30
exclude: []
use_gitignore: true
copy: false
log_level: warn
`)

// ErrConfigurationExists reports an existing configuration file that Force
// would overwrite.
var ErrConfigurationExists = errors.New("configuration file already exists")

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default configuration to the requested
// target and returns the path written.
func InitializeConfiguration(options InitOptions) (string, error) {
	directory, fileName, resolveErr := resolveInitDestination(options)
	if resolveErr != nil {
		return "", resolveErr
	}
	destinationPath := filepath.Join(directory, fileName)

	directoryFileSystem, fileSystemErr := filesystem.NewOS(directory)
	if fileSystemErr != nil {
		return "", fileSystemErr
	}
	exists, existsErr := filesystem.Exists(directoryFileSystem, fileName)
	if existsErr != nil {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, existsErr)
	}
	if exists && !options.Force {
		return "", fmt.Errorf("%w at %s", ErrConfigurationExists, destinationPath)
	}
	if writeErr := util.WriteFile(directoryFileSystem, fileName, []byte(defaultConfigurationTemplate), 0o600); writeErr != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, writeErr)
	}
	return destinationPath, nil
}

func resolveInitDestination(options InitOptions) (string, string, error) {
	switch options.Target {
	case "", InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		return workingDirectory, LocalConfigFileName, nil
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", "", fmt.Errorf("resolve home directory for configuration: %w", err)
		}
		return filepath.Join(homeDirectory, GlobalConfigDirectoryName), GlobalConfigFileName, nil
	default:
		return "", "", fmt.Errorf("unsupported init target %q", options.Target)
	}
}
