package selector

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// Namespace URIs of the fixed prefixes.
const (
	TEINamespace      = "http://www.tei-c.org/ns/1.0"
	XMLNamespace      = "http://www.w3.org/XML/1998/namespace"
	UEditionNamespace = "https://uedition.readthedocs.org"
)

var namespaces = map[string]string{
	"tei":      TEINamespace,
	"xml":      XMLNamespace,
	"uedition": UEditionNamespace,
}

// NamespaceURI returns the URI bound to one of the fixed prefixes.
func NamespaceURI(prefix string) (string, bool) {
	uri, ok := namespaces[prefix]
	return uri, ok
}

// Prefix returns the fixed prefix bound to uri.
func Prefix(uri string) (string, bool) {
	for prefix, u := range namespaces {
		if u == uri {
			return prefix, true
		}
	}
	return "", false
}

// Prefixes lists the fixed prefixes in lexicographic order.
func Prefixes() []string {
	prefixes := make([]string, 0, len(namespaces))
	for prefix := range namespaces {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	return prefixes
}

// ElementURI resolves the namespace of el through the xmlns declarations in
// scope. Undeclared prefixes fall back to the fixed table.
func ElementURI(el *etree.Element) string {
	return resolve(el, el.Space, true)
}

// AttrURI resolves the namespace of an attribute of el. Unprefixed
// attributes are in no namespace.
func AttrURI(el *etree.Element, attr etree.Attr) string {
	if attr.Space == "" {
		return ""
	}
	return resolve(el, attr.Space, false)
}

func resolve(el *etree.Element, prefix string, useDefault bool) string {
	if prefix == "xml" {
		return XMLNamespace
	}
	if prefix == "" && !useDefault {
		return ""
	}
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" {
				return a.Value
			}
			if prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	uri, _ := NamespaceURI(prefix)
	return uri
}

// IsNamespaceDecl reports whether attr is an xmlns declaration.
func IsNamespaceDecl(attr etree.Attr) bool {
	return attr.Space == "xmlns" || (attr.Space == "" && attr.Key == "xmlns")
}

// Qualify writes a namespace URI and local name in prefixed form. Names in
// no namespace stay bare; URIs outside the fixed table use {uri}local.
func Qualify(uri, local string) string {
	if uri == "" {
		return local
	}
	if prefix, ok := Prefix(uri); ok {
		return prefix + ":" + local
	}
	return "{" + uri + "}" + local
}

// ElementName returns the prefixed name of el.
func ElementName(el *etree.Element) string {
	return Qualify(ElementURI(el), el.Tag)
}

// Attrs returns the attributes of el keyed by prefixed name, without xmlns
// declarations.
func Attrs(el *etree.Element) map[string]string {
	attrs := make(map[string]string, len(el.Attr))
	for _, a := range el.Attr {
		if IsNamespaceDecl(a) {
			continue
		}
		attrs[Qualify(AttrURI(el, a), a.Key)] = a.Value
	}
	return attrs
}

// SplitName splits a prefixed or {uri}local name into namespace URI and
// local name. Unknown prefixes are returned as an error-free empty URI with
// ok set to false.
func SplitName(name string) (uri, local string, ok bool) {
	if strings.HasPrefix(name, "{") {
		if end := strings.Index(name, "}"); end > 0 {
			return name[1:end], name[end+1:], true
		}
		return "", name, false
	}
	if i := strings.Index(name, ":"); i >= 0 {
		uri, ok := NamespaceURI(name[:i])
		return uri, name[i+1:], ok
	}
	return "", name, true
}
