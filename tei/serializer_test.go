package tei_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uedition/teiconv/model"
	"github.com/uedition/teiconv/schema"
	"github.com/uedition/teiconv/schema/basic"
	"github.com/uedition/teiconv/tei"
	. "github.com/uedition/teiconv/test/builder"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func serialize(t *testing.T, s *schema.Schema, sections []*model.Section, opts ...tei.Option) []byte {
	t.Helper()
	ser, err := tei.NewSerializer(s, opts...)
	require.NoError(t, err)
	data, err := ser.Serialize(sections)
	require.NoError(t, err)
	return data
}

func readXML(t *testing.T, data []byte) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))
	return doc
}

func textSection(doc *model.Node) *model.Section {
	sec := model.NewSection("text", "Text", model.TextSection)
	sec.Doc = doc
	return sec
}

func TestSerializeDeclaration(t *testing.T) {
	data := serialize(t, basic.Schema, nil)
	assert.True(t, bytes.HasPrefix(data, []byte(`<?xml version="1.0" encoding="UTF-8"?>`+"\n")), string(data))

	doc := readXML(t, data)
	require.NotNil(t, doc.Root())
	assert.Equal(t, "TEI", doc.Root().Tag)
	assert.Equal(t, "tei", doc.Root().Space)
	assert.Equal(t, "http://www.tei-c.org/ns/1.0", doc.Root().SelectAttrValue("xmlns:tei", ""))
}

func TestSerializeText(t *testing.T) {
	data := serialize(t, basic.Schema, []*model.Section{textSection(Doc(
		H1("Title"),
		P("plain ", Strong(Em("very")), Latin("ora")),
	))})

	doc := readXML(t, data)
	body := doc.FindElement("/tei:TEI/tei:text/tei:body")
	require.NotNil(t, body, string(data))

	blocks := body.ChildElements()
	require.Len(t, blocks, 2)
	assert.Equal(t, "head", blocks[0].Tag)
	assert.Equal(t, "level-1", blocks[0].SelectAttrValue("type", ""))
	assert.Equal(t, "Title", blocks[0].FindElement("tei:seg").Text())

	inline := blocks[1].ChildElements()
	require.Len(t, inline, 3)
	assert.Equal(t, "seg", inline[0].Tag)
	assert.Equal(t, "plain ", inline[0].Text())

	// Marks nest in name order: bold outside italic.
	assert.Equal(t, "font-weight-bold", inline[1].SelectAttrValue("style", ""))
	inner := inline[1].ChildElements()
	require.Len(t, inner, 1)
	assert.Equal(t, "font-style-italic", inner[0].SelectAttrValue("style", ""))
	assert.Equal(t, "very", inner[0].Text())

	assert.Equal(t, "foreign", inline[2].Tag)
	assert.Equal(t, "la", inline[2].SelectAttrValue("xml:lang", ""))
}

func TestSerializeIDRef(t *testing.T) {
	data := serialize(t, basic.Schema, []*model.Section{textSection(Doc(
		P(Fn(map[string]interface{}{"target": "footnote-42"}, "1")),
	))})
	ref := readXML(t, data).FindElement("//tei:ref")
	require.NotNil(t, ref)
	assert.Equal(t, "#footnote-42", ref.SelectAttrValue("target", ""))
	assert.Equal(t, "footnote", ref.SelectAttrValue("type", ""))

	sections := parse(t, basic.Schema, data)
	mark := section(t, sections, "text").Doc.Content[0].Content[0].Marks[0]
	assert.Equal(t, "footnote-42", mark.Attrs["target"])
}

func TestSerializeTextList(t *testing.T) {
	notes := model.NewSection("footnotes", "Footnotes", model.TextListSection)
	notes.Texts = []*model.SubDoc{
		model.NewSubDoc("footnote-1", Doc(P("One"))),
		model.NewSubDoc("footnote-2", Doc(P("Two"))),
	}
	data := serialize(t, basic.Schema, []*model.Section{textSection(Doc(P("Body"))), notes})

	doc := readXML(t, data)
	groups := doc.FindElements("//tei:noteGrp")
	require.Len(t, groups, 1, string(data))
	assert.Equal(t, "footnotes", groups[0].SelectAttrValue("type", ""))

	items := groups[0].ChildElements()
	require.Len(t, items, 2)
	for i, id := range []string{"footnote-1", "footnote-2"} {
		assert.Equal(t, "note", items[i].Tag)
		assert.Equal(t, id, items[i].SelectAttrValue("xml:id", ""))
	}

	// The body and the notes share one tei:text.
	assert.Len(t, doc.FindElements("/tei:TEI/tei:text"), 1)
}

func TestSerializeMetadata(t *testing.T) {
	meta := model.NewSection("metadata", "Metadata", model.MetadataSection)
	meta.Metadata = []*model.MetadataNode{{
		Type: "tei:fileDesc",
		Content: []*model.MetadataNode{{
			Type:  "tei:title",
			Text:  "A Letter",
			Attrs: []model.MetadataAttr{{Type: "type", Value: "main"}, {Type: "xml:id", Value: "t"}},
		}, {
			Type: "tei:note",
			Text: "   ",
		}},
	}}
	data := serialize(t, basic.Schema, []*model.Section{meta})

	doc := readXML(t, data)
	title := doc.FindElement("/tei:TEI/tei:teiHeader/tei:fileDesc/tei:title")
	require.NotNil(t, title, string(data))
	assert.Equal(t, "A Letter", title.Text())
	require.Len(t, title.Attr, 2)
	assert.Equal(t, "type", title.Attr[0].Key)
	assert.Equal(t, "id", title.Attr[1].Key)

	note := doc.FindElement("//tei:note")
	require.NotNil(t, note)
	assert.Equal(t, "", note.Text())
}

func TestSerializeUnknownRules(t *testing.T) {
	sections := []*model.Section{textSection(Doc(
		model.NewNode("table", nil, []*model.Node{model.NewTextNode("cell", nil)}),
		P(model.NewTextNode("x", []*model.Mark{model.NewMark("underline", nil)})),
	))}

	core, logs := observer.New(zap.WarnLevel)
	data := serialize(t, basic.Schema, sections, tei.WithLogger(zap.New(core)))
	body := readXML(t, data).FindElement("//tei:body")
	require.NotNil(t, body)
	// The block is dropped, the text keeps going without its mark.
	blocks := body.ChildElements()
	require.Len(t, blocks, 1)
	seg := blocks[0].FindElement("tei:seg")
	require.NotNil(t, seg)
	assert.Equal(t, "x", seg.Text())
	omitted := logs.FilterMessage("omitting node without rule").All()
	require.Len(t, omitted, 2)
	assert.Equal(t, "table", omitted[0].ContextMap()["name"])
	assert.Equal(t, "cell", omitted[0].ContextMap()["text"])
	assert.Equal(t, "underline", omitted[1].ContextMap()["name"])
	assert.Equal(t, "x", omitted[1].ContextMap()["text"])

	ser, err := tei.NewSerializer(basic.Schema, tei.WithStrict(true))
	require.NoError(t, err)
	_, err = ser.Serialize(sections)
	assert.ErrorIs(t, err, tei.ErrUnknownRule)
	var rerr *tei.UnknownRuleError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "block", rerr.Kind)
	assert.Equal(t, "table", rerr.Name)
}

func TestSerializeSkipsUnknownSections(t *testing.T) {
	extra := model.NewSection("apparatus", "Apparatus", model.TextSection)
	extra.Doc = Doc(P("lost"))
	data := serialize(t, basic.Schema, []*model.Section{extra})
	assert.Nil(t, readXML(t, data).FindElement("//tei:p"))
}

func TestSerializeNullEntries(t *testing.T) {
	input := `[
		null,
		{"name": "metadata", "title": "Metadata", "type": "metadata", "content": [
			null,
			{"type": "tei:fileDesc", "attrs": [], "text": "", "content": [null, {"type": "tei:title", "attrs": [], "text": "A Letter", "content": []}]}
		]},
		{"name": "text", "title": "Text", "type": "text", "content": {"type": "doc", "content": [null]}}
	]`
	var sections []*model.Section
	require.NoError(t, json.Unmarshal([]byte(input), &sections))
	require.Nil(t, sections[0])

	data := serialize(t, basic.Schema, sections)
	doc := readXML(t, data)
	title := doc.FindElement("/tei:TEI/tei:teiHeader/tei:fileDesc/tei:title")
	require.NotNil(t, title, string(data))
	assert.Equal(t, "A Letter", title.Text())
	require.Len(t, doc.FindElement("/tei:TEI/tei:teiHeader").ChildElements(), 1)
	require.NotNil(t, doc.FindElement("//tei:body"))
	assert.Empty(t, doc.FindElement("//tei:body").ChildElements())
}

func TestSerializeTypeMismatch(t *testing.T) {
	wrong := model.NewSection("text", "Text", model.MetadataSection)
	ser, err := tei.NewSerializer(basic.Schema)
	require.NoError(t, err)
	_, err = ser.Serialize([]*model.Section{wrong})
	assert.Error(t, err)
}

func TestSerializeUnresolvablePath(t *testing.T) {
	s := &schema.Schema{Sections: []*schema.SectionRule{
		{Name: "text", Title: "Text", Type: model.TextSection, Selector: "/tei:teiCorpus/tei:TEI/tei:text"},
	}}
	ser, err := tei.NewSerializer(s)
	require.NoError(t, err)
	_, err = ser.Serialize([]*model.Section{textSection(Doc())})
	assert.ErrorIs(t, err, tei.ErrEnsurePath)
	assert.Contains(t, err.Error(), "failed to ensure /tei:teiCorpus/tei:TEI/tei:text exists")
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"testdata/letter.xml", "testdata/default-namespace.xml"} {
		first := parse(t, basic.Schema, readFile(t, name))
		second := parse(t, basic.Schema, serialize(t, basic.Schema, first))

		want, err := json.Marshal(first)
		require.NoError(t, err)
		got, err := json.Marshal(second)
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got), name)
	}
}

func TestRoundTripJSON(t *testing.T) {
	first := parse(t, Schema, readFile(t, "testdata/letter.xml"))
	data, err := json.Marshal(first)
	require.NoError(t, err)

	// Sections come back from the editor as JSON.
	var edited []*model.Section
	require.NoError(t, json.Unmarshal(data, &edited))
	second := parse(t, Schema, serialize(t, Schema, edited))

	for i := range first {
		a, err := json.Marshal(first[i])
		require.NoError(t, err)
		b, err := json.Marshal(second[i])
		require.NoError(t, err)
		assert.JSONEq(t, string(a), string(b), first[i].Name)
	}
}
