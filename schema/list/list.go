// Package list exports list-related block rules. Lists are TEI list elements
// told apart by their rend attribute, holding one item element per entry.
// Items can hold paragraphs and further lists.
package list

import "github.com/uedition/teiconv/schema"

var (
	// An ordered list, represented as a TEI list with rend="numbered". The
	// n attribute is the number the list starts counting at.
	orderedList = schema.NodeRule{
		Name:     "ordered_list",
		Selector: `tei:list[@rend="numbered"]`,
		Attributes: []*schema.AttributeRule{
			{Name: "rend", Type: schema.StaticAttribute, Value: "numbered"},
			{Name: "n", Type: schema.StringAttribute, Default: "1"},
		},
		Tag:     "ol",
		Content: "list_item+",
	}

	// A bullet list, a TEI list with rend="bulleted".
	bulletList = schema.NodeRule{
		Name:     "bullet_list",
		Selector: `tei:list[@rend="bulleted"]`,
		Attributes: []*schema.AttributeRule{
			{Name: "rend", Type: schema.StaticAttribute, Value: "bulleted"},
		},
		Tag:     "ul",
		Content: "list_item+",
	}

	// A list item (<tei:item>).
	listItem = schema.NodeRule{
		Name:     "list_item",
		Selector: "tei:item",
		Tag:      "li",
		Content:  "block+",
	}
)

func add(rule schema.NodeRule) *schema.NodeRule {
	return &rule
}

// AddListRules is a convenience function for adding the list blocks to a list
// of block rules. It adds orderedList as "ordered_list", bulletList as
// "bullet_list" and listItem as "list_item", after the given rules, and
// returns a new slice.
func AddListRules(blocks []*schema.NodeRule) []*schema.NodeRule {
	out := make([]*schema.NodeRule, 0, len(blocks)+3)
	out = append(out, blocks...)
	return append(out, add(orderedList), add(bulletList), add(listItem))
}
