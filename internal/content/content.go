// Package content converts file bytes to and from the representations used
// by the text encodings: decoded text lines, or raw bytes carried as a single
// base64 marker line.
package content

import (
	"encoding/base64"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/temirov/txdir/internal/tree"
)

const (
	binaryMarkerPrefix = "b'"
	binaryMarkerSuffix = "'"
	lineTerminator     = "\n"
	carriageReturn     = "\r"
	windowsTerminator  = "\r\n"
)

// IsBinary reports whether the provided byte slice appears to contain binary data.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return false
}

// SplitLines splits text into lines without terminators. CRLF and lone CR
// are treated as line ends, and a final terminator does not produce an
// extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	normalized := strings.ReplaceAll(text, windowsTerminator, lineTerminator)
	normalized = strings.ReplaceAll(normalized, carriageReturn, lineTerminator)
	normalized = strings.TrimSuffix(normalized, lineTerminator)
	return strings.Split(normalized, lineTerminator)
}

// Decode classifies raw bytes as text or binary content.
func Decode(data []byte) tree.Content {
	if IsBinary(data) {
		return &tree.BinaryFile{Data: append([]byte(nil), data...)}
	}
	return &tree.TextFile{Lines: SplitLines(string(data))}
}

// Bytes returns the bytes written to disk for file content. Every text line
// ends with exactly one newline.
func Bytes(fileContent tree.Content) []byte {
	switch typed := fileContent.(type) {
	case *tree.TextFile:
		if len(typed.Lines) == 0 {
			return nil
		}
		var builder strings.Builder
		for _, line := range typed.Lines {
			builder.WriteString(line)
			builder.WriteString(lineTerminator)
		}
		return []byte(builder.String())
	case *tree.BinaryFile:
		return typed.Data
	default:
		return nil
	}
}

// EncodeLines returns the content lines emitted by the text encodings.
// Trailing whitespace is dropped and whitespace-only lines become empty.
// Binary content becomes one marker line, or nothing when includeBinary is
// false.
func EncodeLines(fileContent tree.Content, includeBinary bool) []string {
	switch typed := fileContent.(type) {
	case *tree.TextFile:
		lines := make([]string, 0, len(typed.Lines))
		for _, line := range typed.Lines {
			lines = append(lines, strings.TrimRightFunc(line, unicode.IsSpace))
		}
		return lines
	case *tree.BinaryFile:
		if !includeBinary {
			return nil
		}
		return []string{BinaryMarker(typed.Data)}
	default:
		return nil
	}
}

// BinaryMarker renders raw bytes as b'<base64>'.
func BinaryMarker(data []byte) string {
	return binaryMarkerPrefix + base64.StdEncoding.EncodeToString(data) + binaryMarkerSuffix
}

// ParseBinaryMarker decodes a line produced by BinaryMarker.
func ParseBinaryMarker(line string) ([]byte, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(binaryMarkerPrefix)+len(binaryMarkerSuffix) {
		return nil, false
	}
	if !strings.HasPrefix(trimmed, binaryMarkerPrefix) || !strings.HasSuffix(trimmed, binaryMarkerSuffix) {
		return nil, false
	}
	encoded := trimmed[len(binaryMarkerPrefix) : len(trimmed)-len(binaryMarkerSuffix)]
	decoded, decodeError := base64.StdEncoding.DecodeString(encoded)
	if decodeError != nil || len(decoded) == 0 {
		return nil, false
	}
	return decoded, true
}

// FromLines builds file content from lines collected by a parser. A single
// marker line decodes to binary content; anything else is text. Text whose
// only line is a valid marker therefore reads back as binary.
func FromLines(lines []string) tree.Content {
	if len(lines) == 1 {
		if decoded, isMarker := ParseBinaryMarker(lines[0]); isMarker {
			return &tree.BinaryFile{Data: decoded}
		}
	}
	return &tree.TextFile{Lines: lines}
}

// IsBlank reports whether a line holds nothing but whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// StripMargin removes a common left margin from collected content lines.
// The margin is the padding of the first line, capped so that no line loses
// anything but padding. isPadding decides which runes count as padding.
func StripMargin(lines []string, isPadding func(rune) bool) []string {
	if len(lines) == 0 {
		return nil
	}
	margin := leadingPadding(lines[0], isPadding)
	for _, line := range lines[1:] {
		if IsBlank(line) {
			continue
		}
		if padding := leadingPadding(line, isPadding); padding < margin {
			margin = padding
		}
	}
	stripped := make([]string, 0, len(lines))
	for _, line := range lines {
		runes := []rune(strings.TrimRightFunc(line, unicode.IsSpace))
		if len(runes) <= margin {
			stripped = append(stripped, "")
			continue
		}
		stripped = append(stripped, string(runes[margin:]))
	}
	return stripped
}

func leadingPadding(line string, isPadding func(rune) bool) int {
	count := 0
	for _, character := range line {
		if !isPadding(character) {
			break
		}
		count++
	}
	return count
}
