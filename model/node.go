package model

import (
	"fmt"
	"reflect"
	"strings"
)

// Type names shared by every editor document, whatever the schema.
const (
	DocType  = "doc"
	TextType = "text"
)

// This struct represents a node in the tree that makes up an editor document.
// So a document is an instance of Node of type "doc", with children that are
// also instances of Node.
//
// Block nodes carry attributes and content. Text nodes carry their text and
// the marks applied to it. The JSON encoding is the one the editor frontend
// reads and writes.
type Node struct {
	// The type of node that this is: "doc", "text" or the name of a block
	// rule.
	Type string `json:"type"`
	// An object mapping attribute names to values. The kind of attributes
	// allowed are determined by the block rule for the node type.
	Attrs map[string]interface{} `json:"attrs,omitempty"`
	// The node's children.
	Content []*Node `json:"content,omitempty"`
	// For text nodes, this contains the node's text content.
	Text *string `json:"text,omitempty"`
	// The marks applied to this node. The mark of the XML element closest to
	// the text comes first.
	Marks []*Mark `json:"marks,omitempty"`
}

func NewNode(typ string, attrs map[string]interface{}, content []*Node) *Node {
	return &Node{Type: typ, Attrs: attrs, Content: content}
}

// NewDoc creates a document node holding the given children.
func NewDoc(content ...*Node) *Node {
	return &Node{Type: DocType, Content: content}
}

func NewTextNode(text string, marks []*Mark) *Node {
	return &Node{Type: TextType, Text: &text, Marks: marks}
}

// True when this is a text node.
func (n *Node) IsText() bool {
	return n.Text != nil
}

// Concatenates all the text nodes found in this node and its children.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.IsText() {
		return *n.Text
	}
	var sb strings.Builder
	for _, child := range n.Content {
		sb.WriteString(child.TextContent())
	}
	return sb.String()
}

// Test whether two nodes represent the same piece of document.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if other == nil || !n.SameMarkup(other) {
		return false
	}
	if n.IsText() != other.IsText() {
		return false
	}
	if n.IsText() && *n.Text != *other.Text {
		return false
	}
	if len(n.Content) != len(other.Content) {
		return false
	}
	for i := range n.Content {
		if !n.Content[i].Eq(other.Content[i]) {
			return false
		}
	}
	return true
}

// Compare the markup (type, attributes, and marks) of this node to those of
// another. Returns true if both have the same markup.
func (n *Node) SameMarkup(other *Node) bool {
	return n.Type == other.Type && sameAttrs(n.Attrs, other.Attrs) && SameMarkSet(n.Marks, other.Marks)
}

// Create a copy of this node, with the given set of marks instead of the
// node's own marks.
func (n *Node) Mark(marks []*Mark) *Node {
	if SameMarkSet(n.Marks, marks) {
		return n
	}
	cpy := *n
	cpy.Marks = marks
	return &cpy
}

// Compact removes empty attributes, marks and content from the node and all
// of its descendants, in place. Text is kept even when empty. It returns the
// node itself.
func (n *Node) Compact() *Node {
	if len(n.Attrs) == 0 {
		n.Attrs = nil
	}
	if len(n.Marks) == 0 {
		n.Marks = nil
	}
	if len(n.Content) == 0 {
		n.Content = nil
	}
	for _, m := range n.Marks {
		m.Compact()
	}
	for _, child := range n.Content {
		child.Compact()
	}
	return n
}

// Return a string representation of this node for debugging purposes.
func (n *Node) String() string {
	name := n.Type
	if n.IsText() {
		name = fmt.Sprintf("%q", *n.Text)
	} else if len(n.Content) > 0 {
		parts := make([]string, len(n.Content))
		for i, child := range n.Content {
			parts[i] = child.String()
		}
		name += fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	}
	return wrapMarks(n.Marks, name)
}

func wrapMarks(marks []*Mark, str string) string {
	for _, m := range marks {
		str = fmt.Sprintf("%s(%s)", m.Type, str)
	}
	return str
}

func sameAttrs(a, b map[string]interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !reflect.DeepEqual(v, w) {
			return false
		}
	}
	return true
}
