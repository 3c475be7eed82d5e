package model

import "encoding/json"

// MetadataNode is a schema-free copy of one element of a metadata section,
// such as the TEI header. Names are kept in prefixed form ("tei:title").
type MetadataNode struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	Attrs   []MetadataAttr  `json:"attrs"`
	Content []*MetadataNode `json:"content"`
}

// MetadataAttr is a single attribute of a MetadataNode.
type MetadataAttr struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// MarshalJSON always writes attrs and content as arrays.
func (m *MetadataNode) MarshalJSON() ([]byte, error) {
	type plain MetadataNode
	out := plain(*m)
	if out.Attrs == nil {
		out.Attrs = []MetadataAttr{}
	}
	if out.Content == nil {
		out.Content = []*MetadataNode{}
	}
	return json.Marshal(out)
}

// Attr returns the value of the named attribute.
func (m *MetadataNode) Attr(name string) (string, bool) {
	for _, a := range m.Attrs {
		if a.Type == name {
			return a.Value, true
		}
	}
	return "", false
}
