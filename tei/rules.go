// Package tei converts between TEI XML documents and editor documents, as
// described by a schema.
//
// A Parser reads XML into a list of sections, one per section rule. A
// Serializer turns such a list back into XML, synthesizing the structure the
// section selectors describe. Both are safe for concurrent use.
package tei

import (
	"github.com/samber/lo"
	"github.com/uedition/teiconv/schema"
	"github.com/uedition/teiconv/selector"
	"go.uber.org/zap"
)

type nodeRule struct {
	*schema.NodeRule
	step selector.Step
}

type sectionRule struct {
	*schema.SectionRule
	path selector.Path
}

// rules is a schema with its selectors compiled.
type rules struct {
	blocks   []*nodeRule
	marks    []*nodeRule
	sections []*sectionRule
}

func compile(s *schema.Schema) (*rules, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	r := &rules{}
	for _, b := range s.Blocks {
		r.blocks = append(r.blocks, &nodeRule{NodeRule: b, step: selector.MustParseStep(b.Selector)})
	}
	for _, m := range s.Marks {
		r.marks = append(r.marks, &nodeRule{NodeRule: m, step: selector.MustParseStep(m.Selector)})
	}
	for _, sec := range s.Sections {
		r.sections = append(r.sections, &sectionRule{SectionRule: sec, path: selector.MustParsePath(sec.Selector)})
	}
	return r, nil
}

func (r *rules) block(name string) (*nodeRule, bool) {
	return lo.Find(r.blocks, func(b *nodeRule) bool { return b.Name == name })
}

func (r *rules) mark(name string) (*nodeRule, bool) {
	return lo.Find(r.marks, func(m *nodeRule) bool { return m.Name == name })
}

func (r *rules) isSection(name string) bool {
	return lo.ContainsBy(r.sections, func(sec *sectionRule) bool { return sec.Name == name })
}

type options struct {
	log    *zap.Logger
	strict bool
}

// Option configures a Parser or Serializer.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithStrict makes a Serializer fail on block and mark names missing from
// the schema instead of omitting those nodes. Parsers ignore it.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

func newOptions(opts []Option) *options {
	o := &options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
