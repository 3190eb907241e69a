package view

import (
	"context"
	"path"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/temirov/txdir/internal/content"
	"github.com/temirov/txdir/internal/diagnostics"
	"github.com/temirov/txdir/internal/fetch"
	"github.com/temirov/txdir/internal/glyphs"
	"github.com/temirov/txdir/internal/listing"
	"github.com/temirov/txdir/internal/tree"
)

const (
	absoluteLinkPrefix   = "/"
	alternateNameMarker  = "<-"
	linkMarker           = "->"
	fetchMarker          = "<<"
	slashMarker          = "/"
	backslashMarker      = "\\"
	directoryValueCutset = " /\\"
)

type delimiter int

const (
	delimiterNone delimiter = iota
	delimiterDirectory
	delimiterLink
	delimiterFetch
)

// Parser reads the view format back into a tree. Problems with individual
// entries are reported through Logger and collected; they never abort the
// parse.
type Parser struct {
	Logger  *zap.Logger
	Fetcher fetch.Fetcher
	// Glyphs forces a glyph set; nil detects it from the input.
	Glyphs *glyphs.Set
	// MaxDepth bounds nesting; zero or less means listing.DefaultMaxDepth.
	MaxDepth int
}

// NewParser returns a parser using the given logger and fetcher.
func NewParser(logger *zap.Logger, fetcher fetch.Fetcher) *Parser {
	return &Parser{Logger: logger, Fetcher: fetcher}
}

// Parse reads view text into a new tree.
func (parser *Parser) Parse(ctx context.Context, text string) (*tree.Node, []error) {
	return parser.ParseLines(ctx, content.SplitLines(text))
}

// ParseLines reads view lines into a new tree.
func (parser *Parser) ParseLines(ctx context.Context, lines []string) (*tree.Node, []error) {
	root := tree.NewRoot()
	return root, parser.ParseInto(ctx, root, lines)
}

// ParseInto reads view lines below an existing directory node and returns
// the diagnostics reported along the way.
func (parser *Parser) ParseInto(ctx context.Context, root *tree.Node, lines []string) []error {
	set, _ := glyphs.Detect(lines)
	if parser.Glyphs != nil {
		set = *parser.Glyphs
	}
	maxDepth := parser.MaxDepth
	if maxDepth <= 0 {
		maxDepth = listing.DefaultMaxDepth
	}
	run := &parseRun{
		ctx:       ctx,
		fetcher:   parser.Fetcher,
		set:       set,
		maxDepth:  maxDepth,
		collector: diagnostics.NewCollector(parser.Logger),
	}
	source := make([]sourceLine, 0, len(lines))
	for index, line := range lines {
		source = append(source, sourceLine{number: index + 1, text: line})
	}
	run.parseLevel(root, source, 0)
	return run.collector.Errors()
}

type sourceLine struct {
	number int
	text   string
}

type parseRun struct {
	ctx       context.Context
	fetcher   fetch.Fetcher
	set       glyphs.Set
	maxDepth  int
	collector *diagnostics.Collector
}

func (run *parseRun) report(line sourceLine, reason string, cause error) {
	run.collector.Report(&diagnostics.StructuralParseError{Line: line.number, Entry: strings.TrimSpace(line.text), Reason: reason, Err: cause})
}

// parseLevel strips the common margin of one nesting level and applies every
// entry whose name starts at that margin together with the lines that follow
// it.
func (run *parseRun) parseLevel(cursor *tree.Node, lines []sourceLine, depth int) {
	start, margin := run.baseline(lines)
	if start < 0 {
		return
	}
	stripped := make([]sourceLine, 0, len(lines)-start)
	var entryIndexes []int
	for index, line := range lines[start:] {
		if column, hasName := run.set.NameColumn(line.text); hasName && column == margin {
			entryIndexes = append(entryIndexes, index)
		}
		runes := []rune(line.text)
		if len(runes) > margin {
			runes = runes[margin:]
		} else {
			runes = nil
		}
		stripped = append(stripped, sourceLine{number: line.number, text: strings.TrimRightFunc(string(runes), unicode.IsSpace)})
	}
	for position, entryIndex := range entryIndexes {
		end := len(stripped)
		if position+1 < len(entryIndexes) {
			end = entryIndexes[position+1]
		}
		run.applyEntry(cursor, stripped[entryIndex], stripped[entryIndex+1:end], depth)
	}
}

// baseline finds the first line holding an entry name and returns its index
// and the column where that name starts. Entries of the level are the lines
// whose names start at the same column.
func (run *parseRun) baseline(lines []sourceLine) (int, int) {
	for index, line := range lines {
		if column, hasName := run.set.NameColumn(line.text); hasName {
			return index, column
		}
	}
	return -1, 0
}

func (run *parseRun) applyEntry(cursor *tree.Node, entry sourceLine, following []sourceLine, depth int) {
	if strings.HasPrefix(entry.text, absoluteLinkPrefix) {
		run.applyAbsoluteLink(cursor, entry)
		return
	}
	name, kind, value := splitEntry(entry.text)
	if name == "" {
		run.report(entry, diagnostics.ReasonMalformedEntry, nil)
		return
	}
	if kind == delimiterDirectory && value != "" {
		directory, mkdirError := cursor.Mkdir(name)
		if mkdirError != nil {
			run.report(entry, diagnostics.ReasonConflict, mkdirError)
			return
		}
		run.applyEntry(directory, sourceLine{number: entry.number, text: value}, following, depth+1)
		return
	}
	if hasText(following) {
		if run.isSubtree(following) {
			directory, mkdirError := cursor.Mkdir(name)
			if mkdirError != nil {
				run.report(entry, diagnostics.ReasonConflict, mkdirError)
				return
			}
			if depth+1 >= run.maxDepth {
				run.report(entry, diagnostics.ReasonDepthExceeded, nil)
				return
			}
			run.parseLevel(directory, following, depth+1)
			return
		}
		if content.IsBlank(following[0].text) {
			run.report(entry, diagnostics.ReasonEmptyFirstLine, nil)
			return
		}
		texts := make([]string, 0, len(following))
		for _, line := range following {
			texts = append(texts, line.text)
		}
		run.create(cursor, entry, name, content.FromLines(content.StripMargin(texts, run.isContentPadding)))
		return
	}
	switch kind {
	case delimiterDirectory:
		if _, mkdirError := cursor.Mkdir(name); mkdirError != nil {
			run.report(entry, diagnostics.ReasonConflict, mkdirError)
		}
	case delimiterLink:
		if value == "" {
			run.report(entry, diagnostics.ReasonMissingTarget, nil)
			return
		}
		target := value
		if strings.HasPrefix(target, absoluteLinkPrefix) {
			target = tree.RelativeTarget(cursor.Segments(), target)
		}
		run.create(cursor, entry, name, &tree.Link{Target: target})
	case delimiterFetch:
		if value == "" {
			run.report(entry, diagnostics.ReasonMissingFetchURL, nil)
			return
		}
		data, fetchError := fetch.Retrieve(run.ctx, run.fetcher, value)
		if fetchError != nil {
			run.collector.Report(fetchError)
			return
		}
		run.create(cursor, entry, name, content.Decode(data))
	default:
		run.create(cursor, entry, name, &tree.TextFile{})
	}
}

// applyAbsoluteLink handles "/in/tree/path" and "/in/tree/path <- name"
// lines: a link in the current directory pointing at an absolute in-tree path.
func (run *parseRun) applyAbsoluteLink(cursor *tree.Node, entry sourceLine) {
	body := entry.text
	alternateName := ""
	if markerIndex := strings.Index(body, alternateNameMarker); markerIndex >= 0 {
		alternateName = strings.TrimSpace(body[markerIndex+len(alternateNameMarker):])
		body = body[:markerIndex]
	}
	absolutePath := path.Clean(strings.ReplaceAll(strings.TrimSpace(body), backslashMarker, slashMarker))
	name := alternateName
	if name == "" {
		name = path.Base(absolutePath)
	}
	if name == "" || name == slashMarker || name == "." {
		run.report(entry, diagnostics.ReasonMalformedEntry, nil)
		return
	}
	run.create(cursor, entry, name, &tree.Link{Target: tree.RelativeTarget(cursor.Segments(), absolutePath)})
}

func (run *parseRun) create(cursor *tree.Node, entry sourceLine, name string, nodeContent tree.Content) {
	if _, createError := cursor.Create(name, nodeContent); createError != nil {
		run.report(entry, diagnostics.ReasonConflict, createError)
	}
}

// isSubtree decides whether the lines following an entry describe children
// rather than file content: any branch marker makes them children.
func (run *parseRun) isSubtree(lines []sourceLine) bool {
	for _, line := range lines {
		if run.set.HasBranch(line.text) {
			return true
		}
	}
	return false
}

// splitEntry separates an entry line into its name, the first delimiter and
// the text after that delimiter.
func splitEntry(text string) (string, delimiter, string) {
	markers := []struct {
		marker string
		kind   delimiter
	}{
		{marker: linkMarker, kind: delimiterLink},
		{marker: fetchMarker, kind: delimiterFetch},
		{marker: slashMarker, kind: delimiterDirectory},
		{marker: backslashMarker, kind: delimiterDirectory},
	}
	cut := len(text)
	markerLength := 0
	kind := delimiterNone
	for _, candidate := range markers {
		if index := strings.Index(text, candidate.marker); index >= 0 && index < cut {
			cut = index
			markerLength = len(candidate.marker)
			kind = candidate.kind
		}
	}
	name := strings.TrimSpace(text[:cut])
	if kind == delimiterNone {
		return name, kind, ""
	}
	value := strings.TrimSpace(text[cut+markerLength:])
	if kind == delimiterDirectory {
		value = strings.TrimLeft(value, directoryValueCutset)
	}
	return name, kind, value
}

func hasText(lines []sourceLine) bool {
	for _, line := range lines {
		if !content.IsBlank(line.text) {
			return true
		}
	}
	return false
}

// isContentPadding treats the Unicode vertical as margin so content copied
// together with its tree prefix still strips cleanly. ASCII verticals are
// too common in text to be treated the same way.
func (run *parseRun) isContentPadding(character rune) bool {
	return character == ' ' || (!run.set.StrictBranch && character == run.set.Vertical)
}
