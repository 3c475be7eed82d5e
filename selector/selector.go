// Package selector implements the compact XPath-like selectors used by the
// schema: single steps of the form prefix:Name[@attr="value"] and absolute
// paths of such steps. Nothing else of XPath is supported.
package selector

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// ErrSyntax is returned for selectors that cannot be parsed.
var ErrSyntax = errors.New("invalid selector")

var stepRegexp = regexp.MustCompile(`^([a-z]+):([a-zA-Z][a-zA-Z0-9]*)(?:\[@((?:[a-zA-Z]+:)?[a-zA-Z]+)="([^"]*)"\])?$`)

// Step is a single element test with an optional attribute equality
// predicate.
type Step struct {
	// Tag in prefixed form, e.g. "tei:hi".
	Tag string
	// Attr is the predicate attribute in prefixed or bare form. Empty when
	// there is no predicate.
	Attr string
	// Value the predicate attribute must have.
	Value string

	uri   string
	local string
	// Namespace of the predicate attribute.
	attrURI   string
	attrLocal string
}

// ParseStep parses a single step.
func ParseStep(expr string) (Step, error) {
	m := stepRegexp.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return Step{}, fmt.Errorf("%w: %q", ErrSyntax, expr)
	}
	uri, ok := NamespaceURI(m[1])
	if !ok {
		return Step{}, fmt.Errorf("%w: unknown namespace prefix %q in %q", ErrSyntax, m[1], expr)
	}
	s := Step{Tag: m[1] + ":" + m[2], uri: uri, local: m[2]}
	if m[3] != "" {
		s.Attr, s.Value = m[3], m[4]
		attrURI, local, ok := SplitName(m[3])
		if !ok {
			return Step{}, fmt.Errorf("%w: unknown namespace prefix in attribute %q in %q", ErrSyntax, m[3], expr)
		}
		s.attrURI, s.attrLocal = attrURI, local
	}
	return s, nil
}

// MustParseStep is like ParseStep but panics on error.
func MustParseStep(expr string) Step {
	s, err := ParseStep(expr)
	if err != nil {
		panic(err)
	}
	return s
}

// HasPredicate reports whether the step carries an attribute predicate.
func (s Step) HasPredicate() bool {
	return s.Attr != ""
}

func (s Step) String() string {
	if s.HasPredicate() {
		return fmt.Sprintf(`%s[@%s="%s"]`, s.Tag, s.Attr, s.Value)
	}
	return s.Tag
}

// Match tests el against the step. The element's tag must have the step's
// namespace and local name, and the predicate attribute, if any, must be
// present with exactly the predicate value.
func (s Step) Match(el *etree.Element) bool {
	if el == nil || el.Tag != s.local || ElementURI(el) != s.uri {
		return false
	}
	if !s.HasPredicate() {
		return true
	}
	for _, a := range el.Attr {
		if a.Key == s.attrLocal && !IsNamespaceDecl(a) && AttrURI(el, a) == s.attrURI {
			return a.Value == s.Value
		}
	}
	return false
}

// MatchName tests a node given by its prefixed name and prefixed attributes.
func (s Step) MatchName(name string, attrs map[string]string) bool {
	if name != s.Tag {
		return false
	}
	if !s.HasPredicate() {
		return true
	}
	v, ok := attrs[s.Attr]
	return ok && v == s.Value
}

// Attrs returns the attributes a node needs to satisfy the step.
func (s Step) Attrs() map[string]string {
	if !s.HasPredicate() {
		return nil
	}
	return map[string]string{s.Attr: s.Value}
}

// Path is an absolute sequence of steps, starting at the document root.
type Path []Step

// ParsePath parses an absolute, slash-separated path. The leading slash is
// optional.
func ParsePath(expr string) (Path, error) {
	parts := splitPath(strings.TrimPrefix(strings.TrimSpace(expr), "/"))
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrSyntax)
	}
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		step, err := ParseStep(part)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", expr, err)
		}
		path = append(path, step)
	}
	return path, nil
}

// MustParsePath is like ParsePath but panics on error.
func MustParsePath(expr string) Path {
	p, err := ParsePath(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// splitPath splits on slashes outside of quoted predicate values.
func splitPath(expr string) []string {
	if expr == "" {
		return nil
	}
	var parts []string
	quoted := false
	start := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '"':
			quoted = !quoted
		case '/':
			if !quoted {
				parts = append(parts, expr[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, expr[start:])
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return "/" + strings.Join(parts, "/")
}

// Parent returns the path without its last step.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Last returns the final step.
func (p Path) Last() Step {
	return p[len(p)-1]
}

// All returns every element of doc the path resolves to, in document order.
func (p Path) All(doc *etree.Document) []*etree.Element {
	if doc == nil || len(p) == 0 {
		return nil
	}
	root := doc.Root()
	if !p[0].Match(root) {
		return nil
	}
	current := []*etree.Element{root}
	for _, step := range p[1:] {
		var next []*etree.Element
		for _, el := range current {
			for _, child := range el.ChildElements() {
				if step.Match(child) {
					next = append(next, child)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// First returns the first element the path resolves to, or nil.
func (p Path) First(doc *etree.Document) *etree.Element {
	if all := p.All(doc); len(all) > 0 {
		return all[0]
	}
	return nil
}
