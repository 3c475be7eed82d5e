package tei

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/uedition/teiconv/selector"
)

var (
	// ErrUnknownNode is returned when an element with child elements matches
	// no rule.
	ErrUnknownNode = errors.New("unknown node type")
	// ErrMarkContent is returned when a mark element wraps a block.
	ErrMarkContent = errors.New("mark wraps non-text content")
	// ErrUnknownRule is returned by strict serializers for block or mark
	// names missing from the schema.
	ErrUnknownRule = errors.New("unknown rule")
	// ErrEnsurePath is returned when a section path cannot be anchored in
	// the document tree.
	ErrEnsurePath = errors.New("failed to ensure path exists")
	// ErrNoRoot is returned for documents without a root element.
	ErrNoRoot = errors.New("document has no root element")
)

// UnknownNodeError identifies an element the schema does not describe.
type UnknownNodeError struct {
	Tag   string
	Attrs map[string]string
}

func (e *UnknownNodeError) Error() string {
	keys := lo.Keys(e.Attrs)
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString("unknown node type: <")
	sb.WriteString(e.Tag)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%q", k, e.Attrs[k])
	}
	sb.WriteString(">")
	return sb.String()
}

func (e *UnknownNodeError) Unwrap() error {
	return ErrUnknownNode
}

// UnknownRuleError names a block or mark that has no rule.
type UnknownRuleError struct {
	// "block" or "mark".
	Kind string
	Name string
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

func (e *UnknownRuleError) Unwrap() error {
	return ErrUnknownRule
}

// PathError reports a path that could not be synthesized.
type PathError struct {
	Path selector.Path
}

func (e *PathError) Error() string {
	return fmt.Sprintf("failed to ensure %s exists", e.Path)
}

func (e *PathError) Unwrap() error {
	return ErrEnsurePath
}
