// Package basic defines a basic uEdition TEI schema, whose rules can be
// reused in other schemas.
package basic

import (
	"github.com/uedition/teiconv/model"
	"github.com/uedition/teiconv/schema"
)

var (
	headingAttrs = []*schema.AttributeRule{
		{Name: "type", Type: schema.StringAttribute, Default: "level-1"},
	}
	boldAttrs = []*schema.AttributeRule{
		{Name: "style", Type: schema.StaticAttribute, Value: "font-weight-bold"},
	}
	italicAttrs = []*schema.AttributeRule{
		{Name: "style", Type: schema.StaticAttribute, Value: "font-style-italic"},
	}
	footnoteRefAttrs = []*schema.AttributeRule{
		{Name: "type", Type: schema.StaticAttribute, Value: "footnote"},
		{Name: "target", Type: schema.IDRefAttribute},
	}
	foreignAttrs = []*schema.AttributeRule{
		{Name: "xml:lang", Type: schema.StringAttribute},
	}
	pageBeginningAttrs = []*schema.AttributeRule{
		{Name: "n", Type: schema.TextAttribute},
	}
)

// Blocks are the rules for the blocks defined in this schema.
var Blocks = []*schema.NodeRule{
	// A heading. The type attribute holds the level, "level-1" to "level-6".
	{Name: "heading", Selector: "tei:head", Attributes: headingAttrs, Tag: "h1", Content: "inline*"},

	// A plain paragraph. Rendered as a <p> element.
	{Name: "paragraph", Selector: "tei:p", Tag: "p", Content: "inline*"},

	// A block quotation wrapping one or more paragraphs.
	{Name: "quote", Selector: "tei:quote", Tag: "blockquote", Content: "block+"},
}

// Marks are the rules for the marks in the schema.
var Marks = []*schema.NodeRule{
	// Bold text, tei:hi with a fixed style.
	{Name: "bold", Selector: `tei:hi[@style="font-weight-bold"]`, Attributes: boldAttrs, Tag: "strong"},

	// Italic text, tei:hi with a fixed style.
	{Name: "italic", Selector: `tei:hi[@style="font-style-italic"]`, Attributes: italicAttrs, Tag: "em"},

	// A reference to a footnote in the footnotes section.
	{Name: "footnoteRef", Selector: `tei:ref[@type="footnote"]`, Attributes: footnoteRefAttrs, Tag: "sup"},

	// Text in another language.
	{Name: "foreignLanguage", Selector: "tei:foreign", Attributes: foreignAttrs, Tag: "span"},

	// A page beginning. The page number is shown as the text and stored in
	// the n attribute.
	{Name: "pageBeginning", Selector: "tei:pb", Attributes: pageBeginningAttrs, Tag: "span", Text: "@n"},
}

// Sections are the sections of a uEdition TEI document.
var Sections = []*schema.SectionRule{
	{Name: "metadata", Title: "Metadata", Type: model.MetadataSection, Selector: "/tei:TEI/tei:teiHeader"},
	{Name: "text", Title: "Text", Type: model.TextSection, Selector: "/tei:TEI/tei:text/tei:body"},
	{Name: "footnotes", Title: "Footnotes", Type: model.TextListSection, Selector: `/tei:TEI/tei:text/tei:noteGrp[@type="footnotes"]/tei:note`},
}

// Schema is the basic uEdition schema: headings, paragraphs and quotes,
// common inline formatting, footnotes and the TEI header.
//
// To reuse rules from this schema, extend it or read from Blocks, Marks and
// Sections.
var Schema = &schema.Schema{
	Blocks:   Blocks,
	Marks:    Marks,
	Sections: Sections,
}
