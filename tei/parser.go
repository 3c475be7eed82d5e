package tei

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/uedition/teiconv/model"
	"github.com/uedition/teiconv/schema"
	"github.com/uedition/teiconv/selector"
	"go.uber.org/zap"
)

// A Parser reads TEI documents into editor sections.
type Parser struct {
	rules *rules
	// Checked top to bottom: blocks first, then marks.
	dispatch []dispatchRule
	log      *zap.Logger
}

type dispatchRule struct {
	rule   *nodeRule
	handle func(el *etree.Element, rule *nodeRule) (*model.Node, error)
	mark   bool
}

// NewParser creates a parser for the schema. The schema is validated first.
func NewParser(s *schema.Schema, opts ...Option) (*Parser, error) {
	o := newOptions(opts)
	r, err := compile(s)
	if err != nil {
		return nil, err
	}
	p := &Parser{rules: r, log: o.log}
	for _, b := range r.blocks {
		p.dispatch = append(p.dispatch, dispatchRule{rule: b, handle: p.parseBlock})
	}
	for _, m := range r.marks {
		p.dispatch = append(p.dispatch, dispatchRule{rule: m, handle: p.parseMark, mark: true})
	}
	return p, nil
}

// Parse reads a document and returns one section per section rule, in schema
// order. Zero bytes of input count as a document where every section is
// absent.
func (p *Parser) Parse(data []byte) ([]*model.Section, error) {
	if len(data) == 0 {
		p.log.Debug("empty document")
		return p.emptySections(), nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return p.ParseDocument(doc)
}

// ParseDocument is Parse for an already parsed XML document.
func (p *Parser) ParseDocument(doc *etree.Document) ([]*model.Section, error) {
	if doc.Root() == nil {
		return nil, ErrNoRoot
	}
	sections := make([]*model.Section, 0, len(p.rules.sections))
	for _, rule := range p.rules.sections {
		sec, err := p.parseSection(doc, rule)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", rule.Name, err)
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

func (p *Parser) emptySections() []*model.Section {
	sections := make([]*model.Section, 0, len(p.rules.sections))
	for _, rule := range p.rules.sections {
		sections = append(sections, model.NewSection(rule.Name, rule.Title, rule.Type))
	}
	return sections
}

func (p *Parser) parseSection(doc *etree.Document, rule *sectionRule) (*model.Section, error) {
	sec := model.NewSection(rule.Name, rule.Title, rule.Type)
	switch rule.Type {
	case model.MetadataSection:
		if el := rule.path.First(doc); el != nil {
			for _, child := range el.ChildElements() {
				sec.Metadata = append(sec.Metadata, parseMetadata(child))
			}
		}
	case model.TextSection:
		if el := rule.path.First(doc); el != nil {
			d, err := p.parseDoc(el)
			if err != nil {
				return nil, err
			}
			sec.Doc = d
		}
	case model.TextListSection:
		for _, el := range rule.path.All(doc) {
			d, err := p.parseDoc(el)
			if err != nil {
				return nil, err
			}
			id := el.SelectAttrValue("xml:id", "")
			sec.Texts = append(sec.Texts, model.NewSubDoc(id, d))
		}
	}
	p.log.Debug("parsed section", zap.String("section", rule.Name), zap.Bool("empty", sec.IsEmpty()))
	return sec, nil
}

// parseDoc parses the children of el into a compacted document.
func (p *Parser) parseDoc(el *etree.Element) (*model.Node, error) {
	content, err := p.parseChildren(el)
	if err != nil {
		return nil, err
	}
	return model.NewDoc(content...).Compact(), nil
}

func (p *Parser) parseChildren(el *etree.Element) ([]*model.Node, error) {
	children := el.ChildElements()
	content := make([]*model.Node, 0, len(children))
	for _, child := range children {
		node, err := p.parseNode(child)
		if err != nil {
			return nil, err
		}
		content = append(content, node)
	}
	return content, nil
}

func (p *Parser) match(el *etree.Element) (dispatchRule, bool) {
	for _, d := range p.dispatch {
		if d.rule.step.Match(el) {
			return d, true
		}
	}
	return dispatchRule{}, false
}

func (p *Parser) parseNode(el *etree.Element) (*model.Node, error) {
	if d, ok := p.match(el); ok {
		return d.handle(el, d.rule)
	}
	if len(el.ChildElements()) == 0 {
		return model.NewTextNode(el.Text(), nil), nil
	}
	return nil, &UnknownNodeError{Tag: selector.ElementName(el), Attrs: selector.Attrs(el)}
}

func (p *Parser) parseBlock(el *etree.Element, rule *nodeRule) (*model.Node, error) {
	content, err := p.parseChildren(el)
	if err != nil {
		return nil, err
	}
	return model.NewNode(rule.Name, schema.ToEditor(selector.Attrs(el), rule.Attributes), content), nil
}

func (p *Parser) parseMark(el *etree.Element, rule *nodeRule) (*model.Node, error) {
	text, marks, err := p.flattenMarks(el, rule)
	if err != nil {
		return nil, err
	}
	return model.NewTextNode(text, marks), nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// parseMetadata copies el and its descendants without consulting the schema.
func parseMetadata(el *etree.Element) *model.MetadataNode {
	node := &model.MetadataNode{
		Type:    selector.ElementName(el),
		Attrs:   []model.MetadataAttr{},
		Content: []*model.MetadataNode{},
	}
	if text := el.Text(); !isBlank(text) {
		node.Text = text
	}
	for _, a := range el.Attr {
		if selector.IsNamespaceDecl(a) {
			continue
		}
		node.Attrs = append(node.Attrs, model.MetadataAttr{
			Type:  selector.Qualify(selector.AttrURI(el, a), a.Key),
			Value: a.Value,
		})
	}
	for _, child := range el.ChildElements() {
		node.Content = append(node.Content, parseMetadata(child))
	}
	return node
}
