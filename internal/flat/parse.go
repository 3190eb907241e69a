package flat

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/temirov/txdir/internal/content"
	"github.com/temirov/txdir/internal/diagnostics"
	"github.com/temirov/txdir/internal/fetch"
	"github.com/temirov/txdir/internal/tree"
)

const (
	linkMarker       = "->"
	fetchMarker      = "<<"
	absolutePrefix   = "/"
	parentPrefix     = "../"
	backslashSuffix  = "\\"
	pathSeparator    = "/"
	rootSegmentCount = 1
)

// Parser reads flat text into a tree. Problems with individual lines are
// logged and collected; parsing continues past them.
type Parser struct {
	Logger  *zap.Logger
	Fetcher fetch.Fetcher
}

// NewParser returns a parser using the given logger and fetcher.
func NewParser(logger *zap.Logger, fetcher fetch.Fetcher) *Parser {
	return &Parser{Logger: logger, Fetcher: fetcher}
}

// Parse reads flat text into a new tree.
func (parser *Parser) Parse(ctx context.Context, text string) (*tree.Node, []error) {
	return parser.ParseLines(ctx, content.SplitLines(text))
}

// ParseLines reads flat lines into a new tree.
func (parser *Parser) ParseLines(ctx context.Context, lines []string) (*tree.Node, []error) {
	root := tree.NewRoot()
	return root, parser.ParseInto(ctx, root, lines)
}

// ParseInto reads flat lines below an existing directory node.
func (parser *Parser) ParseInto(ctx context.Context, root *tree.Node, lines []string) []error {
	collector := diagnostics.NewCollector(parser.Logger)
	report := func(index int, reason string, cause error) {
		collector.Report(&diagnostics.StructuralParseError{
			Line:   index + 1,
			Entry:  strings.TrimSpace(lines[index]),
			Reason: reason,
			Err:    cause,
		})
	}
	create := func(index int, entryPath string, nodeContent tree.Content) {
		if _, createError := root.Create(entryPath, nodeContent); createError != nil {
			report(index, diagnostics.ReasonConflict, createError)
		}
	}

	for index := 0; index < len(lines); index++ {
		line := lines[index]
		if content.IsBlank(line) {
			continue
		}
		if isIndented(line) {
			report(index, diagnostics.ReasonOrphanContent, nil)
			continue
		}
		entry := strings.TrimRightFunc(line, unicode.IsSpace)

		switch strings.Count(entry, linkMarker) {
		case 0:
		case 1:
			linkPath, target, _ := strings.Cut(entry, linkMarker)
			linkPath = strings.TrimSpace(linkPath)
			target = strings.TrimSpace(target)
			if linkPath == "" {
				report(index, diagnostics.ReasonMalformedEntry, nil)
				continue
			}
			if target == "" {
				report(index, diagnostics.ReasonMissingTarget, nil)
				continue
			}
			create(index, linkPath, &tree.Link{Target: relativeToRoot(linkPath, target)})
			continue
		default:
			report(index, diagnostics.ReasonMalformedEntry, nil)
			continue
		}

		if filePath, rawURL, found := strings.Cut(entry, fetchMarker); found {
			filePath = strings.TrimSpace(filePath)
			rawURL = strings.TrimSpace(rawURL)
			if filePath == "" {
				report(index, diagnostics.ReasonMalformedEntry, nil)
				continue
			}
			if rawURL == "" {
				report(index, diagnostics.ReasonMissingFetchURL, nil)
				continue
			}
			data, fetchError := fetch.Retrieve(ctx, parser.Fetcher, rawURL)
			if fetchError != nil {
				collector.Report(fetchError)
				continue
			}
			create(index, filePath, content.Decode(data))
			continue
		}

		if strings.HasSuffix(entry, pathSeparator) || strings.HasSuffix(entry, backslashSuffix) {
			if _, mkdirError := root.Mkdir(entry); mkdirError != nil {
				report(index, diagnostics.ReasonConflict, mkdirError)
			}
			continue
		}

		end := index + 1
		for end < len(lines) && (content.IsBlank(lines[end]) || isIndented(lines[end])) {
			end++
		}
		collected := lines[index+1 : end]
		entryIndex := index
		index = end - 1
		switch {
		case allBlank(collected):
			create(entryIndex, entry, &tree.TextFile{})
		case content.IsBlank(collected[0]):
			report(entryIndex, diagnostics.ReasonEmptyFirstLine, nil)
		default:
			create(entryIndex, entry, content.FromLines(content.StripMargin(collected, isMargin)))
		}
	}
	return collector.Errors()
}

// relativeToRoot turns an absolute target into one relative to the link's
// directory by climbing to the root. Relative targets are kept as written.
func relativeToRoot(linkPath, target string) string {
	if !strings.HasPrefix(target, absolutePrefix) {
		return target
	}
	segmentCount := len(tree.SplitPath(linkPath))
	climbs := max(segmentCount-rootSegmentCount, 0)
	return strings.Repeat(parentPrefix, climbs) + strings.TrimPrefix(target, absolutePrefix)
}

func isIndented(line string) bool {
	return line != "" && isMargin(rune(line[0]))
}

func isMargin(character rune) bool {
	return character == ' ' || character == '\t'
}

func allBlank(lines []string) bool {
	for _, line := range lines {
		if !content.IsBlank(line) {
			return false
		}
	}
	return true
}
