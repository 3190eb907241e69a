// Package diagnostics collects the non-fatal problems found while parsing
// text encodings of a tree.
package diagnostics

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Reasons carried by StructuralParseError.
const (
	ReasonEmptyFirstLine  = "first line of file content must not be empty"
	ReasonMalformedEntry  = "malformed entry"
	ReasonMissingTarget   = "link entry without target"
	ReasonMissingFetchURL = "fetch entry without url"
	ReasonConflict        = "entry conflicts with an existing node"
	ReasonDepthExceeded   = "maximum depth exceeded"
	ReasonOrphanContent   = "indented line without a preceding file entry"
	structuralErrorFormat = "line %d: %s: %q"
	diagnosticMessage     = "parse diagnostic"
	lineFieldName         = "line"
	entryFieldName        = "entry"
	reasonFieldName       = "reason"
)

// StructuralParseError reports an input line that does not form a valid
// entry. Parsing continues past it.
type StructuralParseError struct {
	Line   int
	Entry  string
	Reason string
	Err    error
}

func (parseError *StructuralParseError) Error() string {
	message := fmt.Sprintf(structuralErrorFormat, parseError.Line, parseError.Reason, parseError.Entry)
	if parseError.Err != nil {
		return message + ": " + parseError.Err.Error()
	}
	return message
}

func (parseError *StructuralParseError) Unwrap() error {
	return parseError.Err
}

// Collector gathers the non-fatal errors of one parse and mirrors each to a
// logger.
type Collector struct {
	logger *zap.Logger
	errors []error
}

// NewCollector returns a collector logging through logger; nil discards.
func NewCollector(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger}
}

// Report records err and logs it at warn level.
func (collector *Collector) Report(err error) {
	collector.errors = append(collector.errors, err)
	var parseError *StructuralParseError
	if errors.As(err, &parseError) {
		collector.logger.Warn(diagnosticMessage,
			zap.Int(lineFieldName, parseError.Line),
			zap.String(entryFieldName, parseError.Entry),
			zap.String(reasonFieldName, parseError.Reason),
			zap.Error(parseError.Err),
		)
		return
	}
	collector.logger.Warn(diagnosticMessage, zap.Error(err))
}

// Errors returns everything reported so far.
func (collector *Collector) Errors() []error {
	return collector.errors
}
