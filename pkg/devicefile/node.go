package devicefile

// NodeKind distinguishes elements from comments.
type NodeKind uint8

const (
	// ElementNode is a tagged node with attributes and children.
	ElementNode NodeKind = iota
	// CommentNode is a document comment. It canonicalizes to nothing.
	CommentNode
)

// Attr is one node attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is one node of a conditional document.
type Node struct {
	Kind     NodeKind
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// NewElement creates an element node.
func NewElement(tag string, attrs ...Attr) *Node {
	return &Node{Kind: ElementNode, Tag: tag, Attrs: attrs}
}

// NewComment creates a comment node.
func NewComment(text string) *Node {
	return &Node{Kind: CommentNode, Text: text}
}

// A is shorthand for an Attr literal.
func A(name, value string) Attr {
	return Attr{Name: name, Value: value}
}

// Append adds children and returns n for chaining.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// WithText sets the text content and returns n for chaining.
func (n *Node) WithText(text string) *Node {
	n.Text = text
	return n
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first element child with the given tag, or nil.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Kind == ElementNode && c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns all element children with the given tag.
func (n *Node) ChildrenByTag(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == ElementNode && c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}
