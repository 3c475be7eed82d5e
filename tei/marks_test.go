package tei

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uedition/teiconv/model"
	"github.com/uedition/teiconv/schema/basic"
	"github.com/uedition/teiconv/selector"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(basic.Schema)
	require.NoError(t, err)
	return p
}

func element(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xml))
	require.NotNil(t, doc.Root())
	return doc.Root()
}

func TestFlattenMarks(t *testing.T) {
	p := newTestParser(t)
	el := element(t, `<tei:hi xmlns:tei="http://www.tei-c.org/ns/1.0" style="font-weight-bold"><tei:hi style="font-style-italic">very</tei:hi></tei:hi>`)
	d, ok := p.match(el)
	require.True(t, ok)

	text, marks, err := p.flattenMarks(el, d.rule)
	require.NoError(t, err)
	assert.Equal(t, "very", text)
	require.Len(t, marks, 2)
	assert.Equal(t, "italic", marks[0].Type)
	assert.Equal(t, "bold", marks[1].Type)
	assert.Equal(t, "font-weight-bold", marks[1].Attrs["style"])
}

func TestFlattenMarksTextAttribute(t *testing.T) {
	p := newTestParser(t)
	el := element(t, `<tei:pb xmlns:tei="http://www.tei-c.org/ns/1.0" n="12"/>`)
	d, ok := p.match(el)
	require.True(t, ok)

	text, marks, err := p.flattenMarks(el, d.rule)
	require.NoError(t, err)
	assert.Equal(t, "12", text)
	require.Len(t, marks, 1)
	assert.Equal(t, "pageBeginning", marks[0].Type)
}

func TestFlattenMarksUnknownLeaf(t *testing.T) {
	p := newTestParser(t)
	el := element(t, `<tei:hi xmlns:tei="http://www.tei-c.org/ns/1.0" style="font-weight-bold"><tei:seg>bold</tei:seg></tei:hi>`)
	d, _ := p.match(el)

	text, marks, err := p.flattenMarks(el, d.rule)
	require.NoError(t, err)
	assert.Equal(t, "bold", text)
	assert.Len(t, marks, 1)
}

func TestFlattenMarksErrors(t *testing.T) {
	p := newTestParser(t)

	el := element(t, `<tei:hi xmlns:tei="http://www.tei-c.org/ns/1.0" style="font-weight-bold"><tei:p><tei:seg>x</tei:seg></tei:p></tei:hi>`)
	d, _ := p.match(el)
	_, _, err := p.flattenMarks(el, d.rule)
	assert.ErrorIs(t, err, ErrMarkContent)

	el = element(t, `<tei:hi xmlns:tei="http://www.tei-c.org/ns/1.0" style="font-weight-bold"><tei:lg><tei:l>x</tei:l></tei:lg></tei:hi>`)
	d, _ = p.match(el)
	_, _, err = p.flattenMarks(el, d.rule)
	assert.ErrorIs(t, err, ErrUnknownNode)
	assert.EqualError(t, err, "unknown node type: <tei:lg>")
}

func TestNestMarks(t *testing.T) {
	p := newTestParser(t)
	bold, _ := p.rules.mark("bold")
	italic, _ := p.rules.mark("italic")

	node := nestMarks("very", []wrapper{
		{rule: bold, mark: model.NewMark("bold", nil)},
		{rule: italic, mark: model.NewMark("italic", nil)},
	})
	require.NotNil(t, node)
	assert.Equal(t, "tei:hi", node.name)
	assert.Equal(t, map[string]string{"style": "font-weight-bold"}, node.attrs)
	assert.Equal(t, "", node.text)
	require.Len(t, node.children, 1)
	inner := node.children[0]
	assert.Equal(t, map[string]string{"style": "font-style-italic"}, inner.attrs)
	assert.Equal(t, "very", inner.text)
	assert.Empty(t, inner.children)

	assert.Nil(t, nestMarks("plain", nil))
}

func TestNestMarksAttributes(t *testing.T) {
	p := newTestParser(t)
	ref, _ := p.rules.mark("footnoteRef")
	pb, _ := p.rules.mark("pageBeginning")

	node := nestMarks("1", []wrapper{{rule: ref, mark: model.NewMark("footnoteRef", map[string]interface{}{"target": "footnote-42"})}})
	assert.Equal(t, map[string]string{"type": "footnote", "target": "#footnote-42"}, node.attrs)
	assert.Equal(t, "1", node.text)

	node = nestMarks("12", []wrapper{{rule: pb, mark: model.NewMark("pageBeginning", nil)}})
	assert.Equal(t, map[string]string{"n": "12"}, node.attrs)
	assert.Equal(t, "", node.text)
}

func TestEnsureExists(t *testing.T) {
	root := newXMLNode("tei:TEI")
	body := selector.MustParsePath("/tei:TEI/tei:text/tei:body")

	node, err := ensureExists(root, body)
	require.NoError(t, err)
	assert.Equal(t, "tei:body", node.name)
	require.Len(t, root.children, 1)

	// Resolving again finds the same node.
	again, err := ensureExists(root, body)
	require.NoError(t, err)
	assert.Same(t, node, again)

	// Only the missing steps are added, with their predicate attributes.
	notes := selector.MustParsePath(`/tei:TEI/tei:text/tei:noteGrp[@type="footnotes"]`)
	grp, err := ensureExists(root, notes)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"type": "footnotes"}, grp.attrs)
	require.Len(t, root.children, 1)
	assert.Len(t, root.children[0].children, 2)
	assert.Len(t, findNodes(root, notes), 1)

	_, err = ensureExists(root, selector.MustParsePath("/tei:teiCorpus/tei:TEI"))
	var perr *PathError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, ErrEnsurePath)
	assert.EqualError(t, err, "failed to ensure /tei:teiCorpus/tei:TEI exists")
}

func TestFindNodesPredicate(t *testing.T) {
	root := newXMLNode("tei:TEI")
	text := newXMLNode("tei:text")
	root.appendChild(text)
	grp := newXMLNode("tei:noteGrp")
	grp.setAttrs(map[string]string{"type": "apparatus"})
	text.appendChild(grp)

	assert.Empty(t, findNodes(root, selector.MustParsePath(`/tei:TEI/tei:text/tei:noteGrp[@type="footnotes"]`)))
	assert.Len(t, findNodes(root, selector.MustParsePath(`/tei:TEI/tei:text/tei:noteGrp`)), 1)
}

func TestWrite(t *testing.T) {
	root := newXMLNode("tei:TEI")
	text := newXMLNode("tei:text")
	text.setAttrs(map[string]string{"xml:id": "t1", "type": "main"})
	root.appendChild(text)
	other := newXMLNode("{http://example.com/ns}extra")
	other.setAttrs(map[string]string{"uedition:flag": "yes"})
	other.text = "x"
	text.appendChild(other)

	data, err := write(root)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))
	el := doc.Root()
	assert.Equal(t, "tei:TEI", selector.ElementName(el))
	assert.Equal(t, selector.TEINamespace, el.SelectAttrValue("xmlns:tei", ""))
	assert.Equal(t, selector.UEditionNamespace, el.SelectAttrValue("xmlns:uedition", ""))
	assert.Equal(t, "http://example.com/ns", el.SelectAttrValue("xmlns:ns1", ""))
	// Fixed prefixes are declared first, generated ones after.
	decls := lo.Map(el.Attr[:3], func(a etree.Attr, _ int) string { return a.FullKey() })
	assert.Equal(t, []string{"xmlns:tei", "xmlns:uedition", "xmlns:ns1"}, decls)

	children := el.ChildElements()
	require.Len(t, children, 1)
	// Attributes come out sorted.
	require.Len(t, children[0].Attr, 2)
	assert.Equal(t, "type", children[0].Attr[0].Key)
	assert.Equal(t, "id", children[0].Attr[1].Key)
	extra := children[0].ChildElements()[0]
	assert.Equal(t, "{http://example.com/ns}extra", selector.ElementName(extra))
	assert.Equal(t, "x", extra.Text())
}

func TestWriteUnknownPrefix(t *testing.T) {
	root := newXMLNode("tei:TEI")
	root.appendChild(newXMLNode("foo:bar"))
	_, err := write(root)
	assert.Error(t, err)
}
