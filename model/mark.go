package model

import "sort"

// A mark is a piece of information that can be attached to a text node, such
// as it being emphasized or being a footnote reference. It has a type, the
// name of a mark rule, and optionally a set of attributes that provide
// further information (such as the target of the reference).
type Mark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

func NewMark(typ string, attrs map[string]interface{}) *Mark {
	return &Mark{Type: typ, Attrs: attrs}
}

// Test whether this mark has the same type and attributes as another mark.
func (m *Mark) Eq(other *Mark) bool {
	if m == other {
		return true
	}
	if other == nil || m.Type != other.Type {
		return false
	}
	return sameAttrs(m.Attrs, other.Attrs)
}

// Test whether this mark is in the given set of marks.
func (m *Mark) IsInSet(set []*Mark) bool {
	for _, other := range set {
		if m.Eq(other) {
			return true
		}
	}
	return false
}

// Compact drops an empty attribute map.
func (m *Mark) Compact() *Mark {
	if len(m.Attrs) == 0 {
		m.Attrs = nil
	}
	return m
}

// Test whether two sets of marks are identical. Order matters.
func SameMarkSet(a, b []*Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}

// SortMarks returns a copy of the set ordered by mark type name. Marks of the
// same type keep their relative order.
func SortMarks(marks []*Mark) []*Mark {
	set := make([]*Mark, len(marks))
	copy(set, marks)
	sort.SliceStable(set, func(i, j int) bool {
		return set[i].Type < set[j].Type
	})
	return set
}
