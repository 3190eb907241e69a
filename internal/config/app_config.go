// Package config discovers and merges txdir configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/temirov/txdir/internal/utils"
)

const (
	// LocalConfigFileName is looked up in the working directory.
	LocalConfigFileName = ".txdir.yaml"
	// GlobalConfigDirectoryName is the directory below the home directory
	// holding the global configuration.
	GlobalConfigDirectoryName = ".txdir"
	// GlobalConfigFileName is the global configuration file name.
	GlobalConfigFileName = "config.yaml"
	// EnvironmentPrefix prefixes environment variables overriding configuration.
	EnvironmentPrefix = "TXDIR"

	keyASCII        = "ascii"
	keyBinary       = "binary"
	keyFlat         = "flat"
	keyDot          = "dot"
	keyNoFiles      = "no_files"
	keyNoContent    = "no_content"
	keyMaxDepth     = "max_depth"
	keyExclude      = "exclude"
	keyUseGitignore = "use_gitignore"
	keyCopy         = "copy"
	keyLogLevel     = "log_level"
)

var environmentKeys = []string{
	keyASCII, keyBinary, keyFlat, keyDot, keyNoFiles, keyNoContent,
	keyMaxDepth, keyExclude, keyUseGitignore, keyCopy, keyLogLevel,
}

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// Environment overrides the process environment lookup; nil uses os.LookupEnv.
	Environment func(key string) (string, bool)
}

// ApplicationConfiguration holds defaults for the command line flags. Nil
// pointers mean the value was not configured.
type ApplicationConfiguration struct {
	ASCII        *bool    `mapstructure:"ascii"`
	Binary       *bool    `mapstructure:"binary"`
	Flat         *bool    `mapstructure:"flat"`
	Dot          *bool    `mapstructure:"dot"`
	NoFiles      *bool    `mapstructure:"no_files"`
	NoContent    *bool    `mapstructure:"no_content"`
	MaxDepth     *int     `mapstructure:"max_depth"`
	Exclude      []string `mapstructure:"exclude"`
	UseGitignore *bool    `mapstructure:"use_gitignore"`
	Copy         *bool    `mapstructure:"copy"`
	LogLevel     string   `mapstructure:"log_level"`
}

// LoadApplicationConfiguration loads configuration from the global file, the
// local or explicit file and finally the TXDIR_ environment, later sources
// overriding earlier ones.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, GlobalConfigDirectoryName, GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		if options.ExplicitFilePath != "" {
			if _, statErr := os.Stat(localPath); statErr != nil {
				return ApplicationConfiguration{}, fmt.Errorf("configuration file %s: %w", localPath, statErr)
			}
		}
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	environmentConfig, environmentErr := loadConfigurationFromEnvironment(options.Environment)
	if environmentErr != nil {
		return ApplicationConfiguration{}, environmentErr
	}
	merged = merged.Merge(environmentConfig)

	merged.Exclude = utils.DeduplicatePatterns(merged.Exclude)
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, LocalConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// loadConfigurationFromEnvironment reads TXDIR_<KEY> variables. Lists are
// comma separated.
func loadConfigurationFromEnvironment(lookup func(key string) (string, bool)) (ApplicationConfiguration, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	reader := viper.New()
	for _, key := range environmentKeys {
		variableName := EnvironmentPrefix + "_" + strings.ToUpper(key)
		if value, present := lookup(variableName); present {
			reader.Set(key, value)
		}
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode %s environment: %w", EnvironmentPrefix, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined
// configuration. The result shares no pointers or slices with either input.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := ApplicationConfiguration{
		ASCII:        mergeBool(config.ASCII, override.ASCII),
		Binary:       mergeBool(config.Binary, override.Binary),
		Flat:         mergeBool(config.Flat, override.Flat),
		Dot:          mergeBool(config.Dot, override.Dot),
		NoFiles:      mergeBool(config.NoFiles, override.NoFiles),
		NoContent:    mergeBool(config.NoContent, override.NoContent),
		UseGitignore: mergeBool(config.UseGitignore, override.UseGitignore),
		Copy:         mergeBool(config.Copy, override.Copy),
		MaxDepth:     cloneInt(config.MaxDepth),
		Exclude:      slices.Clone(config.Exclude),
		LogLevel:     config.LogLevel,
	}
	if override.MaxDepth != nil {
		result.MaxDepth = cloneInt(override.MaxDepth)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = slices.Clone(utils.DeduplicatePatterns(override.Exclude))
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	return result
}

func mergeBool(current, override *bool) *bool {
	if override != nil {
		return cloneBool(override)
	}
	return cloneBool(current)
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
