// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/txdir/internal/config"
	"github.com/temirov/txdir/internal/content"
	"github.com/temirov/txdir/internal/dsl"
	"github.com/temirov/txdir/internal/fetch"
	"github.com/temirov/txdir/internal/filesystem"
	"github.com/temirov/txdir/internal/flat"
	"github.com/temirov/txdir/internal/glyphs"
	"github.com/temirov/txdir/internal/listing"
	"github.com/temirov/txdir/internal/materialize"
	"github.com/temirov/txdir/internal/scan"
	"github.com/temirov/txdir/internal/services/clipboard"
	"github.com/temirov/txdir/internal/tree"
	"github.com/temirov/txdir/internal/utils"
	"github.com/temirov/txdir/internal/view"
)

const (
	rootUse              = "txdir [infile] [outdir]"
	rootShortDescription = "convert between directory trees and text trees"
	rootLongDescription  = `txdir turns a directory into an indented text tree (like the tree tool)
or a flat listing, and turns such text back into directories and files.

infile: absent or - reads a text tree from stdin, a file is read as a text
tree (indented or flat, detected automatically), a directory is scanned.
outdir: absent or - prints the tree, an existing file makes txdir do nothing,
anything else is created and the tree is built inside it.`
	rootUsageExample = `  # Print a directory as an indented tree
  txdir ./project

  # Print a flat listing without file content
  txdir -l -n ./project

  # Build the tree described in a text file under ./out
  txdir tree.txt ./out

  # Same as mkdir -p a/{b,c}/d a/{u,v} a/x a/g.x
  txdir - . -c 'a/b,c/d..a/u,v/g.x,g\.x'`

	asciiFlagName         = "ascii"
	binaryFlagName        = "binary"
	flatFlagName          = "flat"
	noFilesFlagName       = "no-files"
	dotFlagName           = "dot"
	noContentFlagName     = "no-content"
	maxDepthFlagName      = "max-depth"
	descriptionsFlagName  = "cmds"
	excludeFlagName       = "exclude"
	noGitignoreFlagName   = "no-gitignore"
	configFlagName        = "config"
	copyFlagName          = "copy"
	logLevelFlagName      = "log-level"
	asciiShorthand        = "a"
	binaryShorthand       = "b"
	flatShorthand         = "l"
	noFilesShorthand      = "f"
	dotShorthand          = "d"
	noContentShorthand    = "n"
	maxDepthShorthand     = "m"
	descriptionsShorthand = "c"
	excludeShorthand      = "e"

	asciiFlagDescription        = "draw the tree with ASCII glyphs"
	binaryFlagDescription       = "include binary file content as base64"
	flatFlagDescription         = "print a flat listing instead of an indented tree"
	noFilesFlagDescription      = "omit files and list directories only"
	dotFlagDescription          = "include dot files and directories"
	noContentFlagDescription    = "omit file content"
	maxDepthFlagDescription     = "maximum depth to scan, parse and print"
	descriptionsFlagDescription = "directories described with the path DSL (',' ends a name, '.' goes up, '/' goes down); repeatable"
	excludeFlagDescription      = "exclude entries matching a gitignore pattern; repeatable"
	noGitignoreFlagDescription  = "do not honour .gitignore files"
	configFlagDescription       = "configuration file to use instead of ./" + config.LocalConfigFileName
	copyFlagDescription         = "also copy the printed tree to the clipboard"
	logLevelFlagDescription     = "diagnostic log level (debug, info, warn, error)"

	initUse                   = "init"
	initShortDescription      = "write a default configuration file"
	initGlobalFlagName        = "global"
	initForceFlagName         = "force"
	initGlobalFlagDescription = "write ~/" + config.GlobalConfigDirectoryName + "/" + config.GlobalConfigFileName + " instead of ./" + config.LocalConfigFileName
	initForceFlagDescription  = "overwrite an existing configuration file"
	initWrittenFormat         = "configuration written to %s\n"

	versionTemplate       = "txdir version: {{.Version}}\n"
	standardStreamName    = "-"
	defaultLogLevel       = "warn"
	outputDirectoryMode   = 0o755
	maximumPositionalArgs = 2
	minimumMaxDepth       = 1

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	logLevelErrorFormat         = "invalid log level %q: %w"
	maxDepthErrorFormat         = "max depth must be at least %d, got %d"
	loggerErrorFormat           = "build logger: %w"
	readInputErrorFormat        = "read input: %w"
	inputMissingErrorFormat     = "input %q does not exist"
	graftErrorFormat            = "combine described directories with input: %w"
	outputDirectoryErrorFormat  = "create output directory %q: %w"
	renderErrorFormat           = "render tree: %w"
	clipboardCopyErrorFormat    = "copy to clipboard: %w"

	outputIsFileMessage      = "output is an existing file; nothing to do"
	parsedInputMessage       = "parsed text tree"
	scannedInputMessage      = "scanned directory"
	builtTreeMessage         = "built tree"
	incompleteBuildMessage   = "some entries could not be built"
	pathFieldName            = "path"
	formatFieldName          = "format"
	diagnosticCountFieldName = "diagnostics"
	lastDirectoryFieldName   = "last_directory"
	flatFormatFieldValue     = "flat"
	indentedFormatFieldValue = "view"
)

// Dependencies are the collaborators the command talks to. Zero values fall
// back to the process streams, the system clipboard and a URL fetcher.
type Dependencies struct {
	Input            io.Reader
	Output           io.Writer
	Clipboard        clipboard.Copier
	Fetcher          fetch.Fetcher
	Environment      func(key string) (string, bool)
	WorkingDirectory string
	// Logger replaces the logger built from the configured level.
	Logger *zap.Logger
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Input == nil {
		dependencies.Input = os.Stdin
	}
	if dependencies.Output == nil {
		dependencies.Output = os.Stdout
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	if dependencies.Fetcher == nil {
		dependencies.Fetcher = fetch.NewFetcher(nil)
	}
	if dependencies.Environment == nil {
		dependencies.Environment = os.LookupEnv
	}
	return dependencies
}

// Execute runs the txdir application with the process arguments.
func Execute() error {
	rootCommand := NewRootCommand(Dependencies{})
	rootCommand.SetArgs(joinToggleValues(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(context.Background())
}

type commandFlags struct {
	ascii        bool
	binary       bool
	flat         bool
	noFiles      bool
	dot          bool
	noContent    bool
	noGitignore  bool
	copyOutput   bool
	maxDepth     int
	descriptions []string
	exclude      []string
	configPath   string
	logLevel     string
}

// NewRootCommand builds the txdir command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	dependencies = dependencies.withDefaults()
	var flags commandFlags

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Version:      utils.GetApplicationVersion(),
		Args:         cobra.MaximumNArgs(maximumPositionalArgs),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			settings, settingsError := resolveSettings(command, flags, dependencies)
			if settingsError != nil {
				return settingsError
			}
			logger := dependencies.Logger
			if logger == nil {
				builtLogger, loggerError := utils.NewApplicationLogger(settings.logLevel)
				if loggerError != nil {
					return fmt.Errorf(loggerErrorFormat, loggerError)
				}
				defer func() { _ = builtLogger.Sync() }()
				logger = builtLogger
			}
			inputPath, outputPath := positionalPaths(arguments, settings.workingDirectory)
			invocation := &run{
				dependencies: dependencies,
				settings:     settings,
				logger:       logger,
				descriptions: flags.descriptions,
			}
			return invocation.execute(command.Context(), inputPath, outputPath)
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)

	flagSet := rootCommand.Flags()
	registerToggle(flagSet, &flags.ascii, asciiFlagName, asciiShorthand, false, asciiFlagDescription)
	registerToggle(flagSet, &flags.binary, binaryFlagName, binaryShorthand, false, binaryFlagDescription)
	registerToggle(flagSet, &flags.flat, flatFlagName, flatShorthand, false, flatFlagDescription)
	registerToggle(flagSet, &flags.noFiles, noFilesFlagName, noFilesShorthand, false, noFilesFlagDescription)
	registerToggle(flagSet, &flags.dot, dotFlagName, dotShorthand, false, dotFlagDescription)
	registerToggle(flagSet, &flags.noContent, noContentFlagName, noContentShorthand, false, noContentFlagDescription)
	registerToggle(flagSet, &flags.noGitignore, noGitignoreFlagName, "", false, noGitignoreFlagDescription)
	registerToggle(flagSet, &flags.copyOutput, copyFlagName, "", false, copyFlagDescription)
	flagSet.IntVarP(&flags.maxDepth, maxDepthFlagName, maxDepthShorthand, listing.DefaultMaxDepth, maxDepthFlagDescription)
	flagSet.StringArrayVarP(&flags.descriptions, descriptionsFlagName, descriptionsShorthand, nil, descriptionsFlagDescription)
	flagSet.StringArrayVarP(&flags.exclude, excludeFlagName, excludeShorthand, nil, excludeFlagDescription)
	flagSet.StringVar(&flags.configPath, configFlagName, "", configFlagDescription)
	flagSet.StringVar(&flags.logLevel, logLevelFlagName, defaultLogLevel, logLevelFlagDescription)

	rootCommand.AddCommand(createInitCommand(dependencies))
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

func createInitCommand(dependencies Dependencies) *cobra.Command {
	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			workingDirectory, workingDirectoryError := resolveWorkingDirectory(dependencies)
			if workingDirectoryError != nil {
				return workingDirectoryError
			}
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			written, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: workingDirectory,
			})
			if initError != nil {
				return initError
			}
			_, printError := fmt.Fprintf(dependencies.Output, initWrittenFormat, written)
			return printError
		},
	}
	registerToggle(initCommand.Flags(), &global, initGlobalFlagName, "", false, initGlobalFlagDescription)
	registerToggle(initCommand.Flags(), &force, initForceFlagName, "", false, initForceFlagDescription)
	return initCommand
}

// settings is the effective configuration of one invocation.
type settings struct {
	listing          listing.Options
	glyphs           glyphs.Set
	flat             bool
	copyOutput       bool
	logLevel         zapcore.Level
	workingDirectory string
}

// resolveSettings layers explicitly set flags over the loaded configuration.
func resolveSettings(command *cobra.Command, flags commandFlags, dependencies Dependencies) (settings, error) {
	workingDirectory, workingDirectoryError := resolveWorkingDirectory(dependencies)
	if workingDirectoryError != nil {
		return settings{}, workingDirectoryError
	}
	configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: flags.configPath,
		Environment:      dependencies.Environment,
	})
	if configurationError != nil {
		return settings{}, configurationError
	}

	changed := command.Flags().Changed
	pick := func(flagName string, flagValue bool, configured *bool, fallback bool) bool {
		if changed(flagName) {
			return flagValue
		}
		if configured != nil {
			return *configured
		}
		return fallback
	}

	options := listing.DefaultOptions()
	options.IncludeBinary = pick(binaryFlagName, flags.binary, configuration.Binary, false)
	options.IncludeDot = pick(dotFlagName, flags.dot, configuration.Dot, false)
	options.IncludeFiles = !pick(noFilesFlagName, flags.noFiles, configuration.NoFiles, false)
	options.IncludeContent = !pick(noContentFlagName, flags.noContent, configuration.NoContent, false)
	options.UseGitignore = !pick(noGitignoreFlagName, flags.noGitignore, invert(configuration.UseGitignore), false)
	options.MaxDepth = flags.maxDepth
	if !changed(maxDepthFlagName) && configuration.MaxDepth != nil {
		options.MaxDepth = *configuration.MaxDepth
	}
	if options.MaxDepth < minimumMaxDepth {
		return settings{}, fmt.Errorf(maxDepthErrorFormat, minimumMaxDepth, options.MaxDepth)
	}
	options.Exclude = utils.DeduplicatePatterns(append(append([]string{}, configuration.Exclude...), flags.exclude...))

	levelName := flags.logLevel
	if !changed(logLevelFlagName) && strings.TrimSpace(configuration.LogLevel) != "" {
		levelName = configuration.LogLevel
	}
	level, levelError := zapcore.ParseLevel(strings.TrimSpace(levelName))
	if levelError != nil {
		return settings{}, fmt.Errorf(logLevelErrorFormat, levelName, levelError)
	}

	glyphSet := glyphs.Unicode
	if pick(asciiFlagName, flags.ascii, configuration.ASCII, false) {
		glyphSet = glyphs.ASCII
	}
	return settings{
		listing:          options,
		glyphs:           glyphSet,
		flat:             pick(flatFlagName, flags.flat, configuration.Flat, false),
		copyOutput:       pick(copyFlagName, flags.copyOutput, configuration.Copy, false),
		logLevel:         level,
		workingDirectory: workingDirectory,
	}, nil
}

func invert(value *bool) *bool {
	if value == nil {
		return nil
	}
	inverted := !*value
	return &inverted
}

func resolveWorkingDirectory(dependencies Dependencies) (string, error) {
	if dependencies.WorkingDirectory != "" {
		return dependencies.WorkingDirectory, nil
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	return workingDirectory, nil
}

// positionalPaths returns the input and output paths, resolving relative
// host paths against workingDirectory so they agree with configuration
// discovery.
func positionalPaths(arguments []string, workingDirectory string) (string, string) {
	inputPath, outputPath := standardStreamName, standardStreamName
	if len(arguments) > 0 && arguments[0] != "" {
		inputPath = hostPath(arguments[0], workingDirectory)
	}
	if len(arguments) > 1 && arguments[1] != "" {
		outputPath = hostPath(arguments[1], workingDirectory)
	}
	return inputPath, outputPath
}

func hostPath(argument string, workingDirectory string) string {
	if argument == standardStreamName || filepath.IsAbs(argument) {
		return argument
	}
	return filepath.Join(workingDirectory, argument)
}

// run carries one invocation from input selection to output.
type run struct {
	dependencies Dependencies
	settings     settings
	logger       *zap.Logger
	descriptions []string
}

func (invocation *run) execute(ctx context.Context, inputPath, outputPath string) error {
	root := tree.NewRoot()
	if len(invocation.descriptions) > 0 {
		dsl.FromCommands(root, invocation.descriptions)
	}
	inputTree, inputError := invocation.readInput(ctx, inputPath)
	if inputError != nil {
		return inputError
	}
	if inputTree != nil {
		if len(invocation.descriptions) == 0 {
			root = inputTree
		} else if _, graftError := root.Graft(inputTree); graftError != nil {
			return fmt.Errorf(graftErrorFormat, graftError)
		}
	}
	if outputPath == standardStreamName {
		return invocation.print(root)
	}
	return invocation.build(root, outputPath)
}

// readInput returns nil when stdin is skipped because directories were
// described on the command line.
func (invocation *run) readInput(ctx context.Context, inputPath string) (*tree.Node, error) {
	if inputPath == standardStreamName {
		if len(invocation.descriptions) > 0 {
			return nil, nil
		}
		data, readError := io.ReadAll(invocation.dependencies.Input)
		if readError != nil {
			return nil, fmt.Errorf(readInputErrorFormat, readError)
		}
		return invocation.parseText(ctx, inputPath, string(data)), nil
	}
	kind, inspectError := filesystem.Inspect(inputPath)
	if inspectError != nil {
		return nil, inspectError
	}
	switch kind {
	case filesystem.KindDirectory:
		fileSystem, fileSystemError := filesystem.NewOS(inputPath)
		if fileSystemError != nil {
			return nil, fileSystemError
		}
		scanned, scanError := scan.NewScanner(fileSystem, invocation.settings.listing, invocation.logger).Scan(ctx, ".")
		if scanError != nil {
			return nil, scanError
		}
		invocation.logger.Debug(scannedInputMessage, zap.String(pathFieldName, inputPath))
		return scanned, nil
	case filesystem.KindRegular:
		data, readError := filesystem.ReadHostFile(inputPath)
		if readError != nil {
			return nil, fmt.Errorf(readInputErrorFormat, readError)
		}
		return invocation.parseText(ctx, inputPath, string(data)), nil
	default:
		return nil, fmt.Errorf(inputMissingErrorFormat, inputPath)
	}
}

// parseText reads a text tree in whichever format the lines use. Problems
// with single entries are logged by the parsers and never fail the run.
func (invocation *run) parseText(ctx context.Context, source string, text string) *tree.Node {
	lines := content.SplitLines(text)
	for index, line := range lines {
		lines[index] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	var root *tree.Node
	var diagnostics []error
	formatName := indentedFormatFieldValue
	if flat.Detect(lines) == flat.FormatFlat {
		formatName = flatFormatFieldValue
		root, diagnostics = flat.NewParser(invocation.logger, invocation.dependencies.Fetcher).ParseLines(ctx, lines)
	} else {
		parser := view.NewParser(invocation.logger, invocation.dependencies.Fetcher)
		parser.MaxDepth = invocation.settings.listing.MaxDepth
		root, diagnostics = parser.ParseLines(ctx, lines)
	}
	invocation.logger.Debug(parsedInputMessage,
		zap.String(pathFieldName, source),
		zap.String(formatFieldName, formatName),
		zap.Int(diagnosticCountFieldName, len(diagnostics)),
	)
	return root
}

// renderOptions prints what the tree holds. Scanning already applied the
// dot, ignore and binary policies, and text input is echoed in full.
func (invocation *run) renderOptions() listing.Options {
	options := invocation.settings.listing
	options.IncludeDot = true
	options.IncludeBinary = true
	options.UseGitignore = false
	options.Exclude = nil
	return options
}

func (invocation *run) print(root *tree.Node) error {
	writer := invocation.dependencies.Output
	var clipboardBuffer *bytes.Buffer
	if invocation.settings.copyOutput {
		clipboardBuffer = &bytes.Buffer{}
		writer = io.MultiWriter(writer, clipboardBuffer)
	}

	var renderError error
	if invocation.settings.flat {
		renderError = flat.Render(writer, root, invocation.renderOptions())
	} else {
		renderError = view.Render(writer, root, view.Options{Options: invocation.renderOptions(), Glyphs: invocation.settings.glyphs})
	}
	if renderError != nil {
		return fmt.Errorf(renderErrorFormat, renderError)
	}

	if clipboardBuffer != nil {
		if copyError := invocation.dependencies.Clipboard.Copy(clipboardBuffer.String()); copyError != nil {
			return fmt.Errorf(clipboardCopyErrorFormat, copyError)
		}
	}
	return nil
}

// build materializes root inside outputPath. Entries that fail are logged;
// the run still succeeds.
func (invocation *run) build(root *tree.Node, outputPath string) error {
	kind, inspectError := filesystem.Inspect(outputPath)
	if inspectError != nil {
		return inspectError
	}
	if kind == filesystem.KindRegular {
		invocation.logger.Info(outputIsFileMessage, zap.String(pathFieldName, outputPath))
		return nil
	}
	fileSystem, fileSystemError := filesystem.NewOS(outputPath)
	if fileSystemError != nil {
		return fileSystemError
	}
	if mkdirError := fileSystem.MkdirAll(".", outputDirectoryMode); mkdirError != nil {
		return fmt.Errorf(outputDirectoryErrorFormat, outputPath, mkdirError)
	}
	lastDirectory, buildError := materialize.NewMaterializer(fileSystem, invocation.logger).Build(root)
	if buildError != nil {
		invocation.logger.Warn(incompleteBuildMessage, zap.String(pathFieldName, outputPath), zap.Error(buildError))
	}
	invocation.logger.Debug(builtTreeMessage, zap.String(pathFieldName, outputPath), zap.String(lastDirectoryFieldName, lastDirectory))
	return nil
}
