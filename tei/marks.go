package tei

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/uedition/teiconv/model"
	"github.com/uedition/teiconv/schema"
	"github.com/uedition/teiconv/selector"
)

// flattenMarks follows a chain of nested mark elements, starting at el, down
// to the text. It returns the text and the marks ordered innermost wrapper
// first. Only the first child element of each wrapper is followed; an
// element without children ends the chain.
func (p *Parser) flattenMarks(el *etree.Element, rule *nodeRule) (string, []*model.Mark, error) {
	type link struct {
		el   *etree.Element
		rule *nodeRule
	}
	chain := []link{{el, rule}}
	var text string
	for cur := el; ; {
		children := cur.ChildElements()
		if len(children) == 0 {
			text = cur.Text()
			break
		}
		next := children[0]
		d, ok := p.match(next)
		if !ok {
			if len(next.ChildElements()) > 0 {
				return "", nil, &UnknownNodeError{Tag: selector.ElementName(next), Attrs: selector.Attrs(next)}
			}
			text = next.Text()
			break
		}
		if !d.mark {
			return "", nil, fmt.Errorf("%w: mark %s wraps block %s", ErrMarkContent, chain[len(chain)-1].rule.Name, d.rule.Name)
		}
		chain = append(chain, link{next, d.rule})
		cur = next
	}

	marks := make([]*model.Mark, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		l := chain[i]
		attrs := selector.Attrs(l.el)
		marks = append(marks, model.NewMark(l.rule.Name, schema.ToEditor(attrs, l.rule.Attributes)))
		if name, ok := l.rule.TextAttr(); ok {
			if v, ok := attrs[name]; ok {
				text = v
			}
		}
	}
	return text, marks, nil
}

// wrapper is a mark with the rule that renders it.
type wrapper struct {
	rule *nodeRule
	mark *model.Mark
}

// nestMarks builds one element per wrapper around text. The first wrapper
// becomes the outermost element and the text ends up in the innermost one,
// unless a text attribute rule takes it. It returns nil without wrappers.
func nestMarks(text string, wrappers []wrapper) *xmlNode {
	var outer, inner *xmlNode
	for _, w := range wrappers {
		node := newPathNode(w.rule.step)
		attrs, rest := schema.TextToXML(w.mark.Attrs, w.rule.Attributes, text)
		node.setAttrs(attrs)
		node.text = rest
		if outer == nil {
			outer = node
		} else {
			inner.text = ""
			inner.children = []*xmlNode{node}
		}
		inner = node
	}
	return outer
}
