package tei

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/samber/lo"
	"github.com/uedition/teiconv/selector"
)

// writer turns an xmlNode tree into an etree document. Prefixed names are
// checked against the fixed prefix table and {uri}local names get generated
// prefixes, all declared on the root element.
type writer struct {
	// Prefixes in use, mapped to their URI.
	used map[string]string
	// Generated prefixes by URI.
	generated map[string]string
}

func write(root *xmlNode) ([]byte, error) {
	w := &writer{used: map[string]string{}, generated: map[string]string{}}
	tei, _ := selector.NamespaceURI("tei")
	w.used["tei"] = tei

	el, err := w.element(root)
	if err != nil {
		return nil, err
	}
	// Fixed prefixes come first in table order, then the generated ones.
	decls := lo.Filter(selector.Prefixes(), func(prefix string, _ int) bool {
		_, ok := w.used[prefix]
		return ok && prefix != "xml"
	})
	generated := lo.Values(w.generated)
	sort.Strings(generated)
	decls = append(decls, generated...)
	attrs := make([]etree.Attr, 0, len(decls)+len(el.Attr))
	for _, prefix := range decls {
		attrs = append(attrs, etree.Attr{Space: "xmlns", Key: prefix, Value: w.used[prefix]})
	}
	el.Attr = append(attrs, el.Attr...)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.SetRoot(el)
	doc.Indent(2)
	return doc.WriteToBytes()
}

func (w *writer) element(n *xmlNode) (*etree.Element, error) {
	name, err := w.name(n.name)
	if err != nil {
		return nil, err
	}
	el := etree.NewElement(name)
	keys := lo.Keys(n.attrs)
	sort.Strings(keys)
	for _, k := range keys {
		key, err := w.name(k)
		if err != nil {
			return nil, err
		}
		el.CreateAttr(key, n.attrs[k])
	}
	if n.text != "" {
		el.SetText(n.text)
	}
	for _, child := range n.children {
		c, err := w.element(child)
		if err != nil {
			return nil, err
		}
		el.AddChild(c)
	}
	return el, nil
}

// name checks a prefixed, bare or {uri}local name and returns it in the
// prefixed form that is written out.
func (w *writer) name(name string) (string, error) {
	uri, local, ok := selector.SplitName(name)
	if !ok {
		return "", fmt.Errorf("unknown namespace prefix in %q", name)
	}
	if uri == "" {
		return local, nil
	}
	if strings.HasPrefix(name, "{") {
		prefix, known := selector.Prefix(uri)
		if !known {
			prefix, known = w.generated[uri]
		}
		if !known {
			prefix = "ns" + strconv.Itoa(len(w.generated)+1)
			w.generated[uri] = prefix
		}
		w.used[prefix] = uri
		return prefix + ":" + local, nil
	}
	w.used[name[:strings.Index(name, ":")]] = uri
	return name, nil
}
