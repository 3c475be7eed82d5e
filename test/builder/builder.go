// Package builder has shorthand constructors for editor documents, for use
// in tests.
//
//	Doc(P("plain ", Strong("bold")), H2("Title"))
package builder

import (
	"github.com/uedition/teiconv/model"
	"github.com/uedition/teiconv/schema"
	"github.com/uedition/teiconv/schema/basic"
	"github.com/uedition/teiconv/schema/list"
)

// Spec names a rule and fixes some of its attributes. The rule is given by
// "nodeType" or "markType"; all other keys are attributes.
type Spec map[string]interface{}

// A NodeBuilder creates a node. Its arguments can be strings (text),
// nodes, slices of nodes (from a MarkBuilder) and attribute maps.
type NodeBuilder func(args ...interface{}) *model.Node

// A MarkBuilder adds a mark to the text nodes given as arguments. It takes
// the same arguments as a NodeBuilder.
type MarkBuilder func(args ...interface{}) []*model.Node

func takeAttrs(attrs map[string]interface{}, args []interface{}) (map[string]interface{}, []*model.Node) {
	result := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		result[k] = v
	}
	var content []*model.Node
	for _, arg := range args {
		switch a := arg.(type) {
		case string:
			content = append(content, model.NewTextNode(a, nil))
		case *model.Node:
			content = append(content, a)
		case []*model.Node:
			content = append(content, a...)
		case map[string]interface{}:
			for k, v := range a {
				result[k] = v
			}
		}
	}
	return result, content
}

func defaults(rules []*schema.AttributeRule) map[string]interface{} {
	attrs := make(map[string]interface{}, len(rules))
	for _, r := range rules {
		if r.Kind() == schema.StaticAttribute {
			attrs[r.Name] = r.Value
		} else {
			attrs[r.Name] = r.Default
		}
	}
	return attrs
}

func merge(base, over map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		if k != "nodeType" && k != "markType" {
			out[k] = v
		}
	}
	return out
}

func block(typ string, attrs map[string]interface{}) NodeBuilder {
	return func(args ...interface{}) *model.Node {
		a, content := takeAttrs(attrs, args)
		return model.NewNode(typ, a, content).Compact()
	}
}

func mark(typ string, attrs map[string]interface{}) MarkBuilder {
	return func(args ...interface{}) []*model.Node {
		a, content := takeAttrs(attrs, args)
		m := model.NewMark(typ, a).Compact()
		out := make([]*model.Node, 0, len(content))
		for _, n := range content {
			if n.IsText() && !m.IsInSet(n.Marks) {
				// Outer marks go last, as the parser orders them.
				marks := append(append([]*model.Mark{}, n.Marks...), m)
				n = n.Mark(marks)
			}
			out = append(out, n)
		}
		return out
	}
}

// Builders returns a builder per block and mark rule of s, keyed by rule
// name, plus "doc". The names add builders for rules with fixed attributes.
func Builders(s *schema.Schema, names map[string]Spec) map[string]interface{} {
	result := map[string]interface{}{"schema": s}
	result[model.DocType] = NodeBuilder(func(args ...interface{}) *model.Node {
		_, content := takeAttrs(nil, args)
		return model.NewDoc(content...).Compact()
	})
	for _, b := range s.Blocks {
		result[b.Name] = block(b.Name, defaults(b.Attributes))
	}
	for _, m := range s.Marks {
		result[m.Name] = mark(m.Name, defaults(m.Attributes))
	}
	for name, spec := range names {
		if typ, ok := spec["nodeType"].(string); ok {
			if b, found := s.Block(typ); found {
				result[name] = block(typ, merge(defaults(b.Attributes), spec))
			}
		}
		if typ, ok := spec["markType"].(string); ok {
			if m, found := s.Mark(typ); found {
				result[name] = mark(typ, merge(defaults(m.Attributes), spec))
			}
		}
	}
	return result
}

var testSchema = &schema.Schema{
	Blocks:   list.AddListRules(basic.Blocks),
	Marks:    basic.Marks,
	Sections: basic.Sections,
}

var out = Builders(testSchema, map[string]Spec{
	"p":        {"nodeType": "paragraph"},
	"h1":       {"nodeType": "heading", "type": "level-1"},
	"h2":       {"nodeType": "heading", "type": "level-2"},
	"h3":       {"nodeType": "heading", "type": "level-3"},
	"li":       {"nodeType": "list_item"},
	"ul":       {"nodeType": "bullet_list"},
	"ol":       {"nodeType": "ordered_list"},
	"strong":   {"markType": "bold"},
	"em":       {"markType": "italic"},
	"fn":       {"markType": "footnoteRef"},
	"pb":       {"markType": "pageBeginning"},
	"la":       {"markType": "foreignLanguage", "xml:lang": "la"},
	"footnote": {"markType": "footnoteRef", "target": "footnote-1"},
})

var (
	Schema     = out["schema"].(*schema.Schema)
	Doc        = out["doc"].(NodeBuilder)
	P          = out["p"].(NodeBuilder)
	Blockquote = out["quote"].(NodeBuilder)
	H1         = out["h1"].(NodeBuilder)
	H2         = out["h2"].(NodeBuilder)
	H3         = out["h3"].(NodeBuilder)
	Li         = out["li"].(NodeBuilder)
	Ul         = out["ul"].(NodeBuilder)
	Ol         = out["ol"].(NodeBuilder)
	Strong     = out["strong"].(MarkBuilder)
	Em         = out["em"].(MarkBuilder)
	Fn         = out["fn"].(MarkBuilder)
	Footnote   = out["footnote"].(MarkBuilder)
	Pb         = out["pb"].(MarkBuilder)
	Latin      = out["la"].(MarkBuilder)
)
