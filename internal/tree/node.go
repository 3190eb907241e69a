// Package tree models a directory tree made of directories, files and
// symbolic links. The model is purely in memory; scanning and materializing
// live in separate packages.
package tree

import (
	"fmt"
	"strings"
)

// Kind identifies which variant of Content a node carries.
type Kind int

const (
	// KindDirectory marks a node holding children.
	KindDirectory Kind = iota
	// KindFile marks a node holding text lines or raw bytes.
	KindFile
	// KindLink marks a symbolic link.
	KindLink
)

const (
	pathSeparator          = "/"
	alternatePathSeparator = "\\"
	currentSegment         = "."
	parentSegment          = ".."
	nodeStringFormat       = "<Node %s>"
	rootDisplayName        = "/"
)

// Content is the payload of a node. It is implemented by *Directory,
// *TextFile, *BinaryFile and *Link only.
type Content interface {
	kind() Kind
}

// Directory holds an ordered list of uniquely named children.
type Directory struct {
	Children []*Node
}

// TextFile holds decoded text lines without their line terminators.
// A TextFile without lines is a placeholder: it marks a file whose content
// was never supplied.
type TextFile struct {
	Lines []string
}

// BinaryFile holds raw bytes that are not valid text.
type BinaryFile struct {
	Data []byte
}

// Link holds a relative symbolic link target.
type Link struct {
	Target string
}

func (*Directory) kind() Kind  { return KindDirectory }
func (*TextFile) kind() Kind   { return KindFile }
func (*BinaryFile) kind() Kind { return KindFile }
func (*Link) kind() Kind       { return KindLink }

// Node is an element of a tree. Parent is a non-owning back reference and is
// nil only for the root.
type Node struct {
	Name    string
	Parent  *Node
	Content Content
}

// NewRoot returns an empty root directory.
func NewRoot() *Node {
	return &Node{Content: &Directory{}}
}

// Kind reports the variant of the node's content.
func (node *Node) Kind() Kind {
	if node.Content == nil {
		return KindFile
	}
	return node.Content.kind()
}

// IsDir reports whether the node is a directory.
func (node *Node) IsDir() bool { return node.Kind() == KindDirectory }

// IsFile reports whether the node is a text or binary file.
func (node *Node) IsFile() bool { return node.Kind() == KindFile }

// IsLink reports whether the node is a symbolic link.
func (node *Node) IsLink() bool { return node.Kind() == KindLink }

// IsBinary reports whether the node is a file holding raw bytes.
func (node *Node) IsBinary() bool {
	_, binary := node.Content.(*BinaryFile)
	return binary
}

// IsPlaceholder reports whether the node is a file that has no content yet.
func (node *Node) IsPlaceholder() bool {
	if node.Content == nil {
		return true
	}
	textFile, isText := node.Content.(*TextFile)
	return isText && len(textFile.Lines) == 0
}

// IsRoot reports whether the node has no parent.
func (node *Node) IsRoot() bool { return node.Parent == nil }

// Children returns the node's children, or nil when the node is not a directory.
func (node *Node) Children() []*Node {
	directory, isDirectory := node.Content.(*Directory)
	if !isDirectory {
		return nil
	}
	return directory.Children
}

// Child returns the direct child with the given name, or nil.
func (node *Node) Child(name string) *Node {
	for _, child := range node.Children() {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// LinkTarget returns the target of a link node and an empty string otherwise.
func (node *Node) LinkTarget() string {
	link, isLink := node.Content.(*Link)
	if !isLink {
		return ""
	}
	return link.Target
}

// Root walks up to the root of the tree.
func (node *Node) Root() *Node {
	current := node
	for current.Parent != nil {
		current = current.Parent
	}
	return current
}

// Segments returns the names from the root down to the node; the root itself
// contributes nothing.
func (node *Node) Segments() []string {
	var reversed []string
	for current := node; current.Parent != nil; current = current.Parent {
		reversed = append(reversed, current.Name)
	}
	segments := make([]string, len(reversed))
	for index, name := range reversed {
		segments[len(reversed)-1-index] = name
	}
	return segments
}

// Path returns the slash-joined path of the node from the root.
func (node *Node) Path() string {
	return strings.Join(node.Segments(), pathSeparator)
}

// Depth returns the number of edges between the node and the root.
func (node *Node) Depth() int {
	depth := 0
	for current := node; current.Parent != nil; current = current.Parent {
		depth++
	}
	return depth
}

func (node *Node) String() string {
	if node.IsRoot() {
		return fmt.Sprintf(nodeStringFormat, rootDisplayName)
	}
	return fmt.Sprintf(nodeStringFormat, node.Path())
}

// Add appends a new child. It fails when the node is not a directory, the
// name is empty or contains a separator, or a sibling already uses the name.
func (node *Node) Add(name string, content Content) (*Node, error) {
	directory, isDirectory := node.Content.(*Directory)
	if !isDirectory {
		return nil, &NavigationError{Path: node.Path(), Segment: name, Err: ErrNotDirectory}
	}
	if name == "" || strings.Contains(name, pathSeparator) {
		return nil, fmt.Errorf(invalidNameFormat, name, ErrInvalidName)
	}
	if node.Child(name) != nil {
		return nil, fmt.Errorf(duplicateNameFormat, name, node.Path(), ErrConflict)
	}
	if content == nil {
		content = &TextFile{}
	}
	child := &Node{Name: name, Parent: node, Content: content}
	directory.Children = append(directory.Children, child)
	return child, nil
}
