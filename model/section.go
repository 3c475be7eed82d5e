package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SectionType selects how a section is located and what its content looks
// like.
type SectionType string

const (
	// A schema-free copy of the section element's children.
	MetadataSection SectionType = "metadata"
	// A single editor document.
	TextSection SectionType = "text"
	// One editor document per matching element.
	TextListSection SectionType = "textlist"
)

// Valid reports whether t is one of the known section types.
func (t SectionType) Valid() bool {
	switch t {
	case MetadataSection, TextSection, TextListSection:
		return true
	}
	return false
}

// Section is one top-level editable region of a document. Exactly one of the
// content fields is used, depending on Type.
type Section struct {
	Name  string
	Title string
	Type  SectionType

	// Content of a metadata section.
	Metadata []*MetadataNode
	// Content of a text section. Nil when the section is absent from the
	// document, which encodes as {}.
	Doc *Node
	// Content of a textlist section.
	Texts []*SubDoc
}

// NewSection creates a section with the empty content shape of its type.
func NewSection(name, title string, typ SectionType) *Section {
	s := &Section{Name: name, Title: title, Type: typ}
	switch typ {
	case MetadataSection:
		s.Metadata = []*MetadataNode{}
	case TextListSection:
		s.Texts = []*SubDoc{}
	}
	return s
}

// IsEmpty reports whether the section has no content.
func (s *Section) IsEmpty() bool {
	switch s.Type {
	case MetadataSection:
		return len(s.Metadata) == 0
	case TextSection:
		return s.Doc == nil
	case TextListSection:
		return len(s.Texts) == 0
	}
	return true
}

type sectionJSON struct {
	Name    string          `json:"name"`
	Title   string          `json:"title"`
	Type    SectionType     `json:"type"`
	Content json.RawMessage `json:"content"`
}

func (s *Section) MarshalJSON() ([]byte, error) {
	var content interface{}
	switch s.Type {
	case MetadataSection:
		if s.Metadata == nil {
			content = []*MetadataNode{}
		} else {
			content = s.Metadata
		}
	case TextSection:
		if s.Doc == nil {
			content = struct{}{}
		} else {
			content = s.Doc
		}
	case TextListSection:
		if s.Texts == nil {
			content = []*SubDoc{}
		} else {
			content = s.Texts
		}
	default:
		return nil, fmt.Errorf("section %s: unknown section type %q", s.Name, s.Type)
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(sectionJSON{Name: s.Name, Title: s.Title, Type: s.Type, Content: raw})
}

func (s *Section) UnmarshalJSON(data []byte) error {
	var aux sectionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = *NewSection(aux.Name, aux.Title, aux.Type)
	if isNull(aux.Content) {
		if !aux.Type.Valid() {
			return fmt.Errorf("section %s: unknown section type %q", aux.Name, aux.Type)
		}
		return nil
	}
	switch aux.Type {
	case MetadataSection:
		return json.Unmarshal(aux.Content, &s.Metadata)
	case TextSection:
		var doc Node
		if err := json.Unmarshal(aux.Content, &doc); err != nil {
			return err
		}
		if doc.Type != "" || len(doc.Content) > 0 {
			s.Doc = &doc
		}
		return nil
	case TextListSection:
		return json.Unmarshal(aux.Content, &s.Texts)
	}
	return fmt.Errorf("section %s: unknown section type %q", aux.Name, aux.Type)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// SubDoc is one entry of a textlist section, such as a single footnote.
type SubDoc struct {
	Attrs   map[string]string `json:"attrs,omitempty"`
	Content *Node             `json:"content"`
}

// NewSubDoc creates an entry with the given id and document.
func NewSubDoc(id string, doc *Node) *SubDoc {
	return &SubDoc{Attrs: map[string]string{"id": id}, Content: doc}
}

// ID returns the entry's id attribute.
func (d *SubDoc) ID() (string, bool) {
	id, ok := d.Attrs["id"]
	return id, ok
}
