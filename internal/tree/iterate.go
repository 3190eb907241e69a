package tree

import (
	"bytes"
	"iter"
	"slices"
)

// Walk yields every node below the receiver in pre-order, children in
// insertion order. The receiver itself is not yielded.
func (node *Node) Walk() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		stack := reversedChildren(node)
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(current) {
				return
			}
			stack = append(stack, reversedChildren(current)...)
		}
	}
}

// Leaves yields files, links and empty directories in pre-order.
func (node *Node) Leaves() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for current := range node.Walk() {
			if current.IsDir() && len(current.Children()) > 0 {
				continue
			}
			if !yield(current) {
				return
			}
		}
	}
}

func reversedChildren(node *Node) []*Node {
	children := slices.Clone(node.Children())
	slices.Reverse(children)
	return children
}

// Clone returns a detached deep copy of the node and its descendants.
func (node *Node) Clone() *Node {
	cloned := &Node{Name: node.Name}
	switch content := node.Content.(type) {
	case *Directory:
		directory := &Directory{Children: make([]*Node, 0, len(content.Children))}
		for _, child := range content.Children {
			childCopy := child.Clone()
			childCopy.Parent = cloned
			directory.Children = append(directory.Children, childCopy)
		}
		cloned.Content = directory
	case *TextFile:
		cloned.Content = &TextFile{Lines: slices.Clone(content.Lines)}
	case *BinaryFile:
		cloned.Content = &BinaryFile{Data: bytes.Clone(content.Data)}
	case *Link:
		cloned.Content = &Link{Target: content.Target}
	default:
		cloned.Content = &TextFile{}
	}
	return cloned
}

// Graft attaches a copy of other below the receiver and returns the root of
// the receiver's tree. When other is a root its children are attached
// instead. A name already present below the receiver is merged.
func (node *Node) Graft(other *Node) (*Node, error) {
	if !node.IsDir() {
		return nil, &NavigationError{Path: node.Path(), Segment: other.Name, Err: ErrNotDirectory}
	}
	sources := []*Node{other}
	if other.IsRoot() {
		sources = other.Children()
	}
	for _, source := range sources {
		if graftError := graftInto(node, source.Clone()); graftError != nil {
			return nil, graftError
		}
	}
	return node.Root(), nil
}

func graftInto(parent *Node, source *Node) error {
	existing := parent.Child(source.Name)
	if existing == nil {
		added, addError := parent.Add(source.Name, source.Content)
		if addError != nil {
			return addError
		}
		for _, child := range added.Children() {
			child.Parent = added
		}
		return nil
	}
	if existing.IsDir() && source.IsDir() {
		for _, child := range source.Children() {
			if graftError := graftInto(existing, child); graftError != nil {
				return graftError
			}
		}
		return nil
	}
	_, createError := parent.Create(source.Name, source.Content)
	return createError
}

// Equal reports whether two subtrees hold the same names, kinds and content.
// Children are compared by name, so sibling order is irrelevant.
func Equal(left *Node, right *Node) bool {
	if left == nil || right == nil {
		return left == right
	}
	switch leftContent := left.Content.(type) {
	case *Directory:
		rightContent, ok := right.Content.(*Directory)
		if !ok || len(leftContent.Children) != len(rightContent.Children) {
			return false
		}
		for _, leftChild := range leftContent.Children {
			rightChild := right.Child(leftChild.Name)
			if rightChild == nil || !Equal(leftChild, rightChild) {
				return false
			}
		}
		return true
	case *TextFile:
		rightContent, ok := right.Content.(*TextFile)
		return ok && slices.Equal(leftContent.Lines, rightContent.Lines)
	case *BinaryFile:
		rightContent, ok := right.Content.(*BinaryFile)
		return ok && bytes.Equal(leftContent.Data, rightContent.Data)
	case *Link:
		rightContent, ok := right.Content.(*Link)
		return ok && leftContent.Target == rightContent.Target
	default:
		return right.IsPlaceholder()
	}
}
