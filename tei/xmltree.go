package tei

import (
	"github.com/uedition/teiconv/selector"
)

// xmlNode is the mutable tree the serializer assembles before it is written
// out as XML. Names and attribute keys are in prefixed form. Each node is
// owned by exactly one parent.
type xmlNode struct {
	name     string
	attrs    map[string]string
	children []*xmlNode
	text     string
}

func newXMLNode(name string) *xmlNode {
	return &xmlNode{name: name}
}

// newPathNode creates a node satisfying step, carrying its predicate
// attribute if it has one.
func newPathNode(step selector.Step) *xmlNode {
	n := newXMLNode(step.Tag)
	n.setAttrs(step.Attrs())
	return n
}

func (n *xmlNode) setAttrs(attrs map[string]string) {
	if len(attrs) == 0 {
		return
	}
	if n.attrs == nil {
		n.attrs = make(map[string]string, len(attrs))
	}
	for k, v := range attrs {
		n.attrs[k] = v
	}
}

func (n *xmlNode) appendChild(child *xmlNode) {
	n.children = append(n.children, child)
}

// findNodes returns the nodes path resolves to. The first step has to match
// n itself.
func findNodes(n *xmlNode, path selector.Path) []*xmlNode {
	if n == nil || len(path) == 0 || !path[0].MatchName(n.name, n.attrs) {
		return nil
	}
	if len(path) == 1 {
		return []*xmlNode{n}
	}
	var nodes []*xmlNode
	for _, child := range n.children {
		nodes = append(nodes, findNodes(child, path[1:])...)
	}
	return nodes
}

// createPath appends one new node per step below parent, each nested in the
// previous one, and returns the deepest. An empty path returns parent.
func createPath(parent *xmlNode, path selector.Path) *xmlNode {
	for _, step := range path {
		node := newPathNode(step)
		parent.appendChild(node)
		parent = node
	}
	return parent
}

// ensureExists makes sure path resolves from root and returns the first node
// it resolves to. The longest prefix that already resolves is kept and only
// the missing trailing steps are created.
func ensureExists(root *xmlNode, path selector.Path) (*xmlNode, error) {
	for pivot := len(path); pivot > 0; pivot-- {
		if nodes := findNodes(root, path[:pivot]); len(nodes) > 0 {
			return createPath(nodes[0], path[pivot:]), nil
		}
	}
	return nil, &PathError{Path: path}
}
