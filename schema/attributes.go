package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToEditor translates XML attributes into editor attributes. Every rule
// yields a value: present attributes are copied (id-refs lose their leading
// "#"), absent ones take the rule's default.
func ToEditor(xmlAttrs map[string]string, rules []*AttributeRule) map[string]interface{} {
	attrs := make(map[string]interface{}, len(rules))
	for _, r := range rules {
		v, ok := xmlAttrs[r.Name]
		switch {
		case !ok:
			attrs[r.Name] = r.Default
		case r.Kind() == IDRefAttribute:
			attrs[r.Name] = strings.TrimPrefix(v, "#")
		default:
			attrs[r.Name] = v
		}
	}
	return attrs
}

// ToXML translates editor attributes into XML attributes for a node without
// text. Text and html-attribute rules produce nothing.
func ToXML(editorAttrs map[string]interface{}, rules []*AttributeRule) map[string]string {
	attrs := map[string]string{}
	for _, r := range rules {
		switch r.Kind() {
		case StringAttribute:
			if v, ok := AttrValue(editorAttrs, r.Name); ok {
				attrs[r.Name] = v
			} else if r.Default != "" {
				attrs[r.Name] = r.Default
			}
		case StaticAttribute:
			attrs[r.Name] = r.Value
		case IDRefAttribute:
			if v, ok := AttrValue(editorAttrs, r.Name); ok {
				attrs[r.Name] = "#" + v
			}
		}
	}
	return attrs
}

// TextToXML is ToXML for nodes holding text. A text rule moves the text into
// its attribute; the returned text is what remains for the element content.
func TextToXML(editorAttrs map[string]interface{}, rules []*AttributeRule, text string) (map[string]string, string) {
	attrs := ToXML(editorAttrs, rules)
	for _, r := range rules {
		if r.Kind() == TextAttribute {
			attrs[r.Name] = text
			text = ""
		}
	}
	return attrs, text
}

// AttrValue returns the named editor attribute as a string. Missing and null
// values are reported as absent.
func AttrValue(attrs map[string]interface{}, name string) (string, bool) {
	v, ok := attrs[name]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	case json.Number:
		return val.String(), true
	}
	return fmt.Sprint(v), true
}
