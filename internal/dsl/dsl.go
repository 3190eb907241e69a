// Package dsl implements the terse path-description language used to create
// directory trees in bulk, for example "a/b/d.c/d..a/u,v".
//
// A comma ends a name, a dot ends a name and moves up one level, a slash ends
// a name and descends into the most recently named child. A backslash makes
// the next character literal.
package dsl

import (
	"strings"

	"github.com/temirov/txdir/internal/tree"
)

// TokenKind identifies a token of a path description.
type TokenKind int

const (
	// TokenName is a literal directory name.
	TokenName TokenKind = iota
	// TokenComma separates siblings.
	TokenComma
	// TokenUp moves the cursor to its parent.
	TokenUp
	// TokenDown moves the cursor into its most recently named child.
	TokenDown
)

const (
	commaCharacter  = ','
	upCharacter     = '.'
	downCharacter   = '/'
	escapeCharacter = '\\'
)

// Token is a single lexical element of a path description.
type Token struct {
	Kind TokenKind
	Text string
}

// Tokenize splits a description into names and control tokens. Empty names
// are dropped and a trailing lone backslash is kept literally.
func Tokenize(description string) []Token {
	var tokens []Token
	var name strings.Builder
	escaped := false

	flushName := func() {
		if name.Len() > 0 {
			tokens = append(tokens, Token{Kind: TokenName, Text: name.String()})
			name.Reset()
		}
	}

	for _, character := range description {
		if escaped {
			name.WriteRune(character)
			escaped = false
			continue
		}
		switch character {
		case escapeCharacter:
			escaped = true
		case commaCharacter:
			flushName()
			tokens = append(tokens, Token{Kind: TokenComma, Text: string(character)})
		case upCharacter:
			flushName()
			tokens = append(tokens, Token{Kind: TokenUp, Text: string(character)})
		case downCharacter:
			flushName()
			tokens = append(tokens, Token{Kind: TokenDown, Text: string(character)})
		default:
			name.WriteRune(character)
		}
	}
	if escaped {
		name.WriteRune(escapeCharacter)
	}
	flushName()
	return tokens
}

// FromCommands builds directories described by each description below root.
// Every description starts with a fresh cursor at root. A nil root yields a
// new tree. Names that already exist are reused; names that clash with an
// existing file or link are skipped.
func FromCommands(root *tree.Node, descriptions []string) *tree.Node {
	if root == nil {
		root = tree.NewRoot()
	}
	lastNamed := map[*tree.Node]*tree.Node{}
	for _, description := range descriptions {
		cursor := root
		for _, token := range Tokenize(description) {
			switch token.Kind {
			case TokenName:
				child := cursor.Child(token.Text)
				if child == nil {
					created, addError := cursor.Add(token.Text, &tree.Directory{})
					if addError != nil {
						continue
					}
					child = created
				}
				lastNamed[cursor] = child
			case TokenUp:
				if cursor.Parent != nil {
					cursor = cursor.Parent
				}
			case TokenDown:
				target := lastNamed[cursor]
				if target == nil {
					children := cursor.Children()
					if len(children) > 0 {
						target = children[len(children)-1]
					}
				}
				if target != nil && target.IsDir() {
					cursor = target
				}
			}
		}
	}
	return root
}
