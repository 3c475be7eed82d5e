package tei

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/uedition/teiconv/model"
	"github.com/uedition/teiconv/schema"
	"go.uber.org/zap"
)

const (
	rootName    = "tei:TEI"
	segmentName = "tei:seg"
	idAttr      = "xml:id"
)

// A Serializer writes editor sections back to TEI documents.
type Serializer struct {
	rules  *rules
	log    *zap.Logger
	strict bool
}

// NewSerializer creates a serializer for the schema. The schema is validated
// first.
func NewSerializer(s *schema.Schema, opts ...Option) (*Serializer, error) {
	o := newOptions(opts)
	r, err := compile(s)
	if err != nil {
		return nil, err
	}
	return &Serializer{rules: r, log: o.log, strict: o.strict}, nil
}

// Serialize builds a TEI document from the sections and returns it as
// indented XML with a leading declaration. Sections are matched to section
// rules by name; sections without a rule are skipped.
func (s *Serializer) Serialize(sections []*model.Section) ([]byte, error) {
	root, err := s.build(sections)
	if err != nil {
		return nil, err
	}
	return write(root)
}

func (s *Serializer) build(sections []*model.Section) (*xmlNode, error) {
	for _, sec := range lo.Filter(sections, func(sec *model.Section, _ int) bool { return sec != nil && !s.rules.isSection(sec.Name) }) {
		s.log.Debug("skipping section without rule", zap.String("section", sec.Name))
	}

	root := newXMLNode(rootName)
	for _, rule := range s.rules.sections {
		sec, ok := lo.Find(sections, func(sec *model.Section) bool { return sec != nil && sec.Name == rule.Name })
		if !ok {
			continue
		}
		if sec.Type != rule.Type {
			return nil, fmt.Errorf("section %s: type %q does not match rule type %q", rule.Name, sec.Type, rule.Type)
		}
		var err error
		switch rule.Type {
		case model.MetadataSection:
			err = s.buildMetadata(root, rule, sec)
		case model.TextSection:
			err = s.buildText(root, rule, sec)
		case model.TextListSection:
			err = s.buildTextList(root, rule, sec)
		}
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", rule.Name, err)
		}
	}
	return root, nil
}

// buildMetadata replaces the children of the section element.
func (s *Serializer) buildMetadata(root *xmlNode, rule *sectionRule, sec *model.Section) error {
	parent, err := ensureExists(root, rule.path)
	if err != nil {
		return err
	}
	parent.children = nil
	for _, m := range sec.Metadata {
		if m != nil {
			parent.appendChild(metadataNode(m))
		}
	}
	return nil
}

func metadataNode(m *model.MetadataNode) *xmlNode {
	n := newXMLNode(m.Type)
	attrs := make(map[string]string, len(m.Attrs))
	for _, a := range m.Attrs {
		attrs[a.Type] = a.Value
	}
	n.setAttrs(attrs)
	if !isBlank(m.Text) {
		n.text = m.Text
	}
	for _, child := range m.Content {
		if child != nil {
			n.appendChild(metadataNode(child))
		}
	}
	return n
}

func (s *Serializer) buildText(root *xmlNode, rule *sectionRule, sec *model.Section) error {
	parent, err := ensureExists(root, rule.path)
	if err != nil {
		return err
	}
	return s.appendContent(parent, sec.Doc)
}

// buildTextList adds one element per entry below the shared parent of the
// section path.
func (s *Serializer) buildTextList(root *xmlNode, rule *sectionRule, sec *model.Section) error {
	parent, err := ensureExists(root, rule.path.Parent())
	if err != nil {
		return err
	}
	for _, sub := range sec.Texts {
		if sub == nil {
			continue
		}
		node := newPathNode(rule.path.Last())
		if id, ok := sub.ID(); ok {
			node.setAttrs(map[string]string{idAttr: id})
		}
		parent.appendChild(node)
		if err := s.appendContent(node, sub.Content); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) appendContent(parent *xmlNode, doc *model.Node) error {
	if doc == nil {
		return nil
	}
	for _, child := range doc.Content {
		node, err := s.render(child)
		if err != nil {
			return err
		}
		if node != nil {
			parent.appendChild(node)
		}
	}
	return nil
}

// render translates one editor node. It returns nil for nodes that are
// omitted.
func (s *Serializer) render(n *model.Node) (*xmlNode, error) {
	if n == nil {
		return nil, nil
	}
	if n.IsText() {
		return s.renderText(n)
	}
	rule, ok := s.rules.block(n.Type)
	if !ok {
		return nil, s.unknown("block", n.Type, n.TextContent())
	}
	node := newPathNode(rule.step)
	node.setAttrs(schema.ToXML(n.Attrs, rule.Attributes))
	if err := s.appendContent(node, n); err != nil {
		return nil, err
	}
	return node, nil
}

// renderText wraps the text in one element per mark, in mark name order.
// Text without marks becomes a segment.
func (s *Serializer) renderText(n *model.Node) (*xmlNode, error) {
	var text string
	if n.Text != nil {
		text = *n.Text
	}
	wrappers := make([]wrapper, 0, len(n.Marks))
	for _, m := range model.SortMarks(n.Marks) {
		rule, ok := s.rules.mark(m.Type)
		if !ok {
			if err := s.unknown("mark", m.Type, text); err != nil {
				return nil, err
			}
			continue
		}
		wrappers = append(wrappers, wrapper{rule: rule, mark: m})
	}
	if node := nestMarks(text, wrappers); node != nil {
		return node, nil
	}
	seg := newXMLNode(segmentName)
	seg.text = text
	return seg, nil
}

// unknown reports a name with no rule. Strict serializers fail, the others
// log and go on without the node.
func (s *Serializer) unknown(kind, name, text string) error {
	if s.strict {
		return &UnknownRuleError{Kind: kind, Name: name}
	}
	s.log.Warn("omitting node without rule", zap.String("kind", kind), zap.String("name", name), zap.String("text", text))
	return nil
}
