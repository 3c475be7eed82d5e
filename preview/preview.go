// Package preview renders editor documents as HTML, for a read-only view of a
// section outside the editor.
package preview

import (
	"bytes"
	"io"

	"github.com/uedition/teiconv/model"
	"github.com/uedition/teiconv/schema"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	defaultBlockTag = "div"
	defaultMarkTag  = "span"
	typeAttr        = "data-type"
)

// ToDOM creates the element for a node or a mark from its attributes.
type ToDOM = func(attrs map[string]interface{}) *html.Node

// A Serializer knows how to convert editor nodes and marks of various types
// to HTML nodes.
type Serializer struct {
	// The node serialization functions, by block name.
	Nodes map[string]ToDOM
	// The mark serialization functions, by mark name. Marks without one are
	// not rendered.
	Marks map[string]ToDOM
}

// FromSchema builds a serializer from the tag hints and html-attribute rules
// of the schema.
func FromSchema(s *schema.Schema) *Serializer {
	d := &Serializer{Nodes: map[string]ToDOM{}, Marks: map[string]ToDOM{}}
	for _, b := range s.Blocks {
		d.Nodes[b.Name] = domGenerator(b, defaultBlockTag)
	}
	for _, m := range s.Marks {
		d.Marks[m.Name] = domGenerator(m, defaultMarkTag)
	}
	return d
}

func domGenerator(rule *schema.NodeRule, fallback string) ToDOM {
	tag := rule.Tag
	if tag == "" {
		tag = fallback
	}
	a := atom.Lookup([]byte(tag))
	return func(attrs map[string]interface{}) *html.Node {
		htmlAttrs := []html.Attribute{{Key: typeAttr, Val: rule.Name}}
		for _, r := range rule.Attributes {
			if r.Kind() != schema.HTMLAttribute {
				continue
			}
			v, ok := schema.AttrValue(attrs, r.Name)
			if !ok {
				v = r.Default
			}
			if v != "" {
				htmlAttrs = append(htmlAttrs, html.Attribute{Key: r.Name, Val: v})
			}
		}
		return &html.Node{
			Type:     html.ElementNode,
			DataAtom: a,
			Data:     tag,
			Attr:     htmlAttrs,
		}
	}
}

func (d *Serializer) hasMark(name string) bool {
	_, ok := d.Marks[name]
	return ok
}

// SerializeFragment appends the HTML for content to target, which is a new
// document node when nil. Adjacent text nodes sharing outer marks share the
// elements for them.
func (d *Serializer) SerializeFragment(content []*model.Node, target *html.Node) *html.Node {
	if target == nil {
		target = &html.Node{Type: html.DocumentNode}
	}
	type activeMark struct {
		mark *model.Mark
		top  *html.Node
	}
	var active []activeMark
	top := target
	for _, node := range content {
		// Marks are stored innermost first; the outermost is opened first.
		marks := make([]*model.Mark, 0, len(node.Marks))
		for i := len(node.Marks) - 1; i >= 0; i-- {
			if d.hasMark(node.Marks[i].Type) {
				marks = append(marks, node.Marks[i])
			}
		}
		keep := 0
		for keep < len(active) && keep < len(marks) && marks[keep].Eq(active[keep].mark) {
			keep++
		}
		for keep < len(active) {
			n := len(active)
			top, active = active[n-1].top, active[:n-1]
		}
		for _, add := range marks[keep:] {
			markDOM := d.Marks[add.Type](add.Attrs)
			active = append(active, activeMark{mark: add, top: top})
			top.AppendChild(markDOM)
			top = markDOM
		}
		if child := d.SerializeNode(node); child != nil {
			top.AppendChild(child)
		}
	}
	return target
}

// SerializeNode converts a single node, with its content but without its
// marks. Nodes of unknown type give nil.
func (d *Serializer) SerializeNode(node *model.Node) *html.Node {
	if node.IsText() {
		return &html.Node{Type: html.TextNode, Data: *node.Text}
	}
	domFn := d.Nodes[node.Type]
	if domFn == nil {
		return nil
	}
	topNode := domFn(node.Attrs)
	d.SerializeFragment(node.Content, topNode)
	return topNode
}

// Render writes the HTML for the content of doc to w.
func (d *Serializer) Render(w io.Writer, doc *model.Node) error {
	if doc == nil {
		return nil
	}
	root := d.SerializeFragment(doc.Content, nil)
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// RenderString is Render into a string.
func (d *Serializer) RenderString(doc *model.Node) (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
