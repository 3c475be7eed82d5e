// Package schema holds the declarative description of how a TEI document maps
// onto editor documents: block rules, mark rules and section rules, each
// anchored by a selector.
//
// A Schema is read-only once loaded. Parsers and serializers compile its
// selectors for their own use and never modify it.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/uedition/teiconv/model"
	"github.com/uedition/teiconv/selector"
)

// AttributeType controls how an attribute is translated between XML and the
// editor.
type AttributeType string

const (
	// Copied as is. Absent values fall back to the default.
	StringAttribute AttributeType = "string"
	// Always written with the rule's fixed value.
	StaticAttribute AttributeType = "static"
	// A reference to an xml:id. Stored without the leading "#" in the editor.
	IDRefAttribute AttributeType = "id-ref"
	// Holds the text of the node in XML.
	TextAttribute AttributeType = "text"
	// Only used when rendering HTML. Never written to XML.
	HTMLAttribute AttributeType = "html-attribute"
)

// Valid reports whether t is a known attribute type. The empty type counts as
// StringAttribute.
func (t AttributeType) Valid() bool {
	switch t {
	case "", StringAttribute, StaticAttribute, IDRefAttribute, TextAttribute, HTMLAttribute:
		return true
	}
	return false
}

// AttributeRule maps one XML attribute to one editor attribute.
type AttributeRule struct {
	// The name of the attribute, in prefixed form for namespaced attributes.
	Name string `yaml:"name" json:"name"`
	// A fixed value to use for static attributes.
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
	// The type of attribute this is. Defaults to string.
	Type AttributeType `yaml:"type,omitempty" json:"type,omitempty"`
	// The default value to use if none is set.
	Default string `yaml:"default,omitempty" json:"default,omitempty"`
}

// Kind returns the attribute type, resolving the empty type to string.
func (r *AttributeRule) Kind() AttributeType {
	if r.Type == "" {
		return StringAttribute
	}
	return r.Type
}

// NodeRule describes a block or a mark.
type NodeRule struct {
	// The name to use to address this node. Unique within its list.
	Name string `yaml:"name" json:"name"`
	// The single-step selector identifying the XML element.
	Selector string `yaml:"selector" json:"selector"`
	// The attributes used on this node, in order.
	Attributes []*AttributeRule `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	// The HTML tag to use to render the node.
	Tag string `yaml:"tag,omitempty" json:"tag,omitempty"`
	// Where to get the text from. "@name" takes it from attribute name.
	Text string `yaml:"text,omitempty" json:"text,omitempty"`
	// Allowed child nodes. Only relevant for block nodes.
	Content string `yaml:"content,omitempty" json:"content,omitempty"`
}

// TextAttr returns the attribute the node's text is taken from, if the rule
// redirects it.
func (r *NodeRule) TextAttr() (string, bool) {
	if strings.HasPrefix(r.Text, "@") && len(r.Text) > 1 {
		return r.Text[1:], true
	}
	return "", false
}

// SectionRule describes one top-level region of the document.
type SectionRule struct {
	// The name of the section.
	Name string `yaml:"name" json:"name"`
	// The title to show in the UI.
	Title string `yaml:"title" json:"title"`
	// The kind of section.
	Type model.SectionType `yaml:"type" json:"type"`
	// The absolute selector to retrieve this section.
	Selector string `yaml:"selector" json:"selector"`
	// Sidebar configuration for the UI. Not used by the converter.
	Sidebar []map[string]interface{} `yaml:"sidebar,omitempty" json:"sidebar,omitempty"`
}

// Schema is the full mapping configuration. List order is priority: the
// first matching rule wins.
type Schema struct {
	Blocks   []*NodeRule    `yaml:"blocks" json:"blocks"`
	Marks    []*NodeRule    `yaml:"marks" json:"marks"`
	Sections []*SectionRule `yaml:"sections" json:"sections"`
}

// Block returns the block rule with the given name.
func (s *Schema) Block(name string) (*NodeRule, bool) {
	return lo.Find(s.Blocks, func(r *NodeRule) bool { return r.Name == name })
}

// Mark returns the mark rule with the given name.
func (s *Schema) Mark(name string) (*NodeRule, bool) {
	return lo.Find(s.Marks, func(r *NodeRule) bool { return r.Name == name })
}

// Section returns the section rule with the given name.
func (s *Schema) Section(name string) (*SectionRule, bool) {
	return lo.Find(s.Sections, func(r *SectionRule) bool { return r.Name == name })
}

// Extend returns a new schema with blocks and marks appended after the
// existing rules. The receiver is not modified.
func (s *Schema) Extend(blocks, marks []*NodeRule) *Schema {
	out := &Schema{
		Blocks:   make([]*NodeRule, 0, len(s.Blocks)+len(blocks)),
		Marks:    make([]*NodeRule, 0, len(s.Marks)+len(marks)),
		Sections: append([]*SectionRule(nil), s.Sections...),
	}
	out.Blocks = append(append(out.Blocks, s.Blocks...), blocks...)
	out.Marks = append(append(out.Marks, s.Marks...), marks...)
	return out
}

// ErrInvalid is wrapped by every ValidationError.
var ErrInvalid = errors.New("invalid schema")

// ValidationError lists every problem found in a schema.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Validate checks that every selector compiles and names are unique.
func (s *Schema) Validate() error {
	var problems []string
	problems = append(problems, validateNodes("block", s.Blocks)...)
	problems = append(problems, validateNodes("mark", s.Marks)...)
	seen := map[string]bool{}
	for i, sec := range s.Sections {
		if sec == nil {
			problems = append(problems, fmt.Sprintf("section %d is empty", i))
			continue
		}
		if sec.Name == "" {
			problems = append(problems, fmt.Sprintf("section %d has no name", i))
		} else if seen[sec.Name] {
			problems = append(problems, fmt.Sprintf("duplicate section %q", sec.Name))
		}
		seen[sec.Name] = true
		if !sec.Type.Valid() {
			problems = append(problems, fmt.Sprintf("section %q: unknown type %q", sec.Name, sec.Type))
		}
		path, err := selector.ParsePath(sec.Selector)
		if err != nil {
			problems = append(problems, fmt.Sprintf("section %q: %v", sec.Name, err))
		} else if sec.Type == model.TextListSection && len(path) < 2 {
			problems = append(problems, fmt.Sprintf("section %q: textlist selector %q needs a parent step", sec.Name, sec.Selector))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validateNodes(kind string, rules []*NodeRule) []string {
	var problems []string
	seen := map[string]bool{}
	for i, r := range rules {
		if r == nil {
			problems = append(problems, fmt.Sprintf("%s %d is empty", kind, i))
			continue
		}
		if r.Name == "" {
			problems = append(problems, fmt.Sprintf("%s %d has no name", kind, i))
		} else if seen[r.Name] {
			problems = append(problems, fmt.Sprintf("duplicate %s %q", kind, r.Name))
		}
		seen[r.Name] = true
		if _, err := selector.ParseStep(r.Selector); err != nil {
			problems = append(problems, fmt.Sprintf("%s %q: %v", kind, r.Name, err))
		}
		for _, a := range r.Attributes {
			if a == nil || a.Name == "" {
				problems = append(problems, fmt.Sprintf("%s %q: attribute without name", kind, r.Name))
				continue
			}
			if !a.Type.Valid() {
				problems = append(problems, fmt.Sprintf("%s %q: attribute %q has unknown type %q", kind, r.Name, a.Name, a.Type))
			}
		}
	}
	return problems
}
