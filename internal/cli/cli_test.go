package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/txdir/internal/config"
)

type recordingClipboard struct {
	copied []string
}

func (clipboard *recordingClipboard) Copy(text string) error {
	clipboard.copied = append(clipboard.copied, text)
	return nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("stdin must not be read")
}

func noEnvironment(string) (string, bool) {
	return "", false
}

func runCommand(t *testing.T, dependencies Dependencies, arguments ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	output := &bytes.Buffer{}
	dependencies.Output = output
	if dependencies.Input == nil {
		dependencies.Input = strings.NewReader("")
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Environment == nil {
		dependencies.Environment = noEnvironment
	}
	if dependencies.WorkingDirectory == "" {
		dependencies.WorkingDirectory = t.TempDir()
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = &recordingClipboard{}
	}
	command := NewRootCommand(dependencies)
	command.SetArgs(joinToggleValues(command, arguments))
	command.SetOut(output)
	command.SetErr(io.Discard)
	executionError := command.ExecuteContext(context.Background())
	return output.String(), executionError
}

func writeTestFile(t *testing.T, filePath string, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(t, os.WriteFile(filePath, []byte(data), 0o644))
}

func sampleDirectory(t *testing.T) string {
	t.Helper()
	directory := t.TempDir()
	writeTestFile(t, filepath.Join(directory, "a", "x.txt"), "Text in x\n")
	return directory
}

func TestDirectoryInputPrintsTree(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		expected  string
	}{
		{
			name:     "indented",
			expected: "└─ a/\n   └─ x.txt\n         Text in x\n",
		},
		{
			name:      "flat",
			arguments: []string{"-l"},
			expected:  "a/x.txt\n   Text in x\n",
		},
		{
			name:      "flat_without_content",
			arguments: []string{"--flat", "yes", "-n"},
			expected:  "a/x.txt\n",
		},
		{
			name:      "directories_only",
			arguments: []string{"-f"},
			expected:  "└─ a/\n",
		},
		{
			name:      "ascii",
			arguments: []string{"-a", "-n"},
			expected:  "`- a/\n   `- x.txt\n",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			arguments := append(append([]string{}, testCase.arguments...), sampleDirectory(t))
			output, executionError := runCommand(t, Dependencies{}, arguments...)
			require.NoError(t, executionError)
			assert.Equal(t, testCase.expected, output)
		})
	}
}

func TestStandardInputIsConverted(t *testing.T) {
	indented := "└─ a/\n   └─ x.txt\n         Text in x\n"
	flatListing := "a/x.txt\n   Text in x\n"

	output, executionError := runCommand(t, Dependencies{Input: strings.NewReader(indented)}, "-l")
	require.NoError(t, executionError)
	assert.Equal(t, flatListing, output)

	output, executionError = runCommand(t, Dependencies{Input: strings.NewReader(flatListing)}, "-")
	require.NoError(t, executionError)
	assert.Equal(t, indented, output)
}

func TestDescriptionsSkipStandardInput(t *testing.T) {
	output, executionError := runCommand(t, Dependencies{Input: failingReader{}}, "-c", "a/b,c", "-c", "d", "-l")
	require.NoError(t, executionError)
	assert.Equal(t, "a/b/\na/c/\nd/\n", output)
}

func TestDescriptionsCombineWithDirectoryInput(t *testing.T) {
	output, executionError := runCommand(t, Dependencies{}, "-l", "-n", "-c", "a/extra", sampleDirectory(t))
	require.NoError(t, executionError)
	assert.Equal(t, "a/extra/\na/x.txt\n", output)
}

func TestTextFileIsBuiltIntoOutputDirectory(t *testing.T) {
	workspace := t.TempDir()
	inputPath := filepath.Join(workspace, "tree.txt")
	writeTestFile(t, inputPath, "t/a.txt\n   hello\nt/d/\nt/ln -> a.txt\n")
	outputPath := filepath.Join(workspace, "out", "nested")

	output, executionError := runCommand(t, Dependencies{}, inputPath, outputPath)
	require.NoError(t, executionError)
	assert.Empty(t, output)

	data, readError := os.ReadFile(filepath.Join(outputPath, "t", "a.txt"))
	require.NoError(t, readError)
	assert.Equal(t, "hello\n", string(data))
	assert.DirExists(t, filepath.Join(outputPath, "t", "d"))
	target, readlinkError := os.Readlink(filepath.Join(outputPath, "t", "ln"))
	require.NoError(t, readlinkError)
	assert.Equal(t, "a.txt", target)
}

func TestRelativePathsResolveAgainstWorkingDirectory(t *testing.T) {
	workingDirectory := t.TempDir()
	writeTestFile(t, filepath.Join(workingDirectory, "input", "tree.txt"), "t/a.txt\n   hello\n")

	_, executionError := runCommand(t, Dependencies{WorkingDirectory: workingDirectory}, filepath.Join("input", "tree.txt"), "built")
	require.NoError(t, executionError)
	data, readError := os.ReadFile(filepath.Join(workingDirectory, "built", "t", "a.txt"))
	require.NoError(t, readError)
	assert.Equal(t, "hello\n", string(data))

	output, executionError := runCommand(t, Dependencies{WorkingDirectory: workingDirectory}, "-l", "built")
	require.NoError(t, executionError)
	assert.Equal(t, "t/a.txt\n   hello\n", output)
}

func TestPositionalPaths(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "work")
	absolute := filepath.Join(string(filepath.Separator), "elsewhere", "tree.txt")

	inputPath, outputPath := positionalPaths(nil, base)
	assert.Equal(t, standardStreamName, inputPath)
	assert.Equal(t, standardStreamName, outputPath)

	inputPath, outputPath = positionalPaths([]string{"-", "out"}, base)
	assert.Equal(t, standardStreamName, inputPath)
	assert.Equal(t, filepath.Join(base, "out"), outputPath)

	inputPath, outputPath = positionalPaths([]string{absolute, "-"}, base)
	assert.Equal(t, absolute, inputPath)
	assert.Equal(t, standardStreamName, outputPath)
}

func TestExistingFileOutputIsLeftAlone(t *testing.T) {
	workspace := t.TempDir()
	outputPath := filepath.Join(workspace, "occupied")
	writeTestFile(t, outputPath, "keep me")

	_, executionError := runCommand(t, Dependencies{Input: strings.NewReader("t/a.txt\n   hello\n")}, "-", outputPath)
	require.NoError(t, executionError)
	data, readError := os.ReadFile(outputPath)
	require.NoError(t, readError)
	assert.Equal(t, "keep me", string(data))
}

func TestMissingInputFails(t *testing.T) {
	_, executionError := runCommand(t, Dependencies{}, filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, executionError)
}

func TestDiagnosticsDoNotFailTheRun(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	input := "f.txt\n\n   late content\ng.txt\n   kept\n"

	output, executionError := runCommand(t, Dependencies{Input: strings.NewReader(input), Logger: zap.New(core)}, "-l")
	require.NoError(t, executionError)
	assert.Equal(t, "g.txt\n   kept\n", output)
	assert.Equal(t, 1, logs.FilterMessage("parse diagnostic").Len())
}

func TestConfigurationIsOverriddenByFlags(t *testing.T) {
	workingDirectory := t.TempDir()
	writeTestFile(t, filepath.Join(workingDirectory, config.LocalConfigFileName), "flat: true\nno_content: true\n")
	directory := sampleDirectory(t)

	output, executionError := runCommand(t, Dependencies{WorkingDirectory: workingDirectory}, directory)
	require.NoError(t, executionError)
	assert.Equal(t, "a/x.txt\n", output, "configured flat listing")

	output, executionError = runCommand(t, Dependencies{WorkingDirectory: workingDirectory}, "--flat=false", directory)
	require.NoError(t, executionError)
	assert.Equal(t, "└─ a/\n   └─ x.txt\n", output, "flag wins over configuration")
}

func TestEnvironmentConfiguresRun(t *testing.T) {
	environment := func(key string) (string, bool) {
		if key == config.EnvironmentPrefix+"_FLAT" {
			return "true", true
		}
		return "", false
	}
	output, executionError := runCommand(t, Dependencies{Environment: environment}, "-n", sampleDirectory(t))
	require.NoError(t, executionError)
	assert.Equal(t, "a/x.txt\n", output)
}

func TestInvalidLogLevelFails(t *testing.T) {
	_, executionError := runCommand(t, Dependencies{}, "--log-level", "chatty", sampleDirectory(t))
	assert.Error(t, executionError)
}

func TestMaxDepthBelowOneFails(t *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		configuration string
	}{
		{name: "zero_flag", arguments: []string{"-m", "0"}},
		{name: "negative_flag", arguments: []string{"--max-depth=-2"}},
		{name: "zero_configured", configuration: "max_depth: 0\n"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			workingDirectory := t.TempDir()
			if testCase.configuration != "" {
				writeTestFile(t, filepath.Join(workingDirectory, config.LocalConfigFileName), testCase.configuration)
			}
			arguments := append(append([]string{}, testCase.arguments...), sampleDirectory(t))
			output, executionError := runCommand(t, Dependencies{WorkingDirectory: workingDirectory}, arguments...)
			require.Error(t, executionError)
			assert.Contains(t, executionError.Error(), "max depth must be at least 1")
			assert.Empty(t, output)
		})
	}

	output, executionError := runCommand(t, Dependencies{}, "-m", "1", "-n", sampleDirectory(t))
	require.NoError(t, executionError)
	assert.Equal(t, "└─ a/\n", output)
}

func TestCopyFlagCopiesPrintedText(t *testing.T) {
	recorder := &recordingClipboard{}
	output, executionError := runCommand(t, Dependencies{Clipboard: recorder}, "--copy", "-l", sampleDirectory(t))
	require.NoError(t, executionError)
	assert.Equal(t, []string{output}, recorder.copied)
}

func TestInitCommandWritesConfiguration(t *testing.T) {
	workingDirectory := t.TempDir()
	output, executionError := runCommand(t, Dependencies{WorkingDirectory: workingDirectory}, "init")
	require.NoError(t, executionError)
	expectedPath := filepath.Join(workingDirectory, config.LocalConfigFileName)
	assert.Contains(t, output, expectedPath)
	assert.FileExists(t, expectedPath)

	_, executionError = runCommand(t, Dependencies{WorkingDirectory: workingDirectory}, "init")
	assert.ErrorIs(t, executionError, config.ErrConfigurationExists)
	_, executionError = runCommand(t, Dependencies{WorkingDirectory: workingDirectory}, "init", "--force")
	assert.NoError(t, executionError)
}
