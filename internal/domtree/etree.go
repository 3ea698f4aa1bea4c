package domtree

import (
	"github.com/beevik/etree"

	"github.com/go-xmlsec/c14n2"
)

// FromEtreeDocument returns doc's root element as a c14n2.Node, with a
// Document ancestor so ParentNode() chains terminate the same way
// FromXML's do.
func FromEtreeDocument(doc *etree.Document) (c14n2.Node, error) {
	root := doc.Root()
	if root == nil {
		return nil, errNoRoot
	}

	docNode := &node{typ: c14n2.NodeDocument}
	el := buildEtreeElement(root, docNode)
	docNode.children = []c14n2.Node{el}
	return el, nil
}

// FromEtreeElement adapts a standalone *etree.Element - one built up
// programmatically rather than parsed from a document, as tests often
// do - with no Document ancestor. Its ParentNode() is nil.
func FromEtreeElement(root *etree.Element) c14n2.Node {
	return buildEtreeElement(root, nil)
}

var errNoRoot = &rootError{}

type rootError struct{}

func (*rootError) Error() string { return "domtree: document has no root element" }

func buildEtreeElement(el *etree.Element, parent c14n2.Node) *node {
	prefix, local := el.Space, el.Tag

	n := &node{
		typ:    c14n2.NodeElement,
		local:  local,
		prefix: prefix,
		uri:    lookupEtreeNS(el, prefix),
		name:   qualify(prefix, local),
		parent: parent,
	}

	for _, a := range el.Attr {
		n.attrs = append(n.attrs, buildEtreeAttr(a, el, n))
	}

	for _, child := range el.Child {
		switch c := child.(type) {
		case *etree.Element:
			n.children = append(n.children, buildEtreeElement(c, n))
		case *etree.CharData:
			typ := c14n2.NodeText
			if c.IsCData() {
				typ = c14n2.NodeCDATA
			}
			n.children = append(n.children, &node{typ: typ, value: c.Data, parent: n})
		case *etree.Comment:
			n.children = append(n.children, &node{typ: c14n2.NodeComment, value: c.Data, parent: n})
		case *etree.ProcInst:
			n.children = append(n.children, &node{typ: c14n2.NodeProcInst, local: c.Target, value: c.Inst, parent: n})
		}
	}

	return n
}

func buildEtreeAttr(a etree.Attr, owner *etree.Element, parent *node) *node {
	prefix, local := a.Space, a.Key
	var uri string

	switch {
	case prefix == "" && local == "xmlns":
	case prefix == "xmlns":
	case prefix != "":
		uri = lookupEtreeNS(owner, prefix)
	}

	return &node{
		typ:    c14n2.NodeAttribute,
		local:  local,
		prefix: prefix,
		uri:    uri,
		name:   qualify(prefix, local),
		value:  a.Value,
		parent: parent,
	}
}

func lookupEtreeNS(el *etree.Element, prefix string) string {
	for cur := el; cur != nil; cur = cur.Parent() {
		for _, a := range cur.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" {
				return a.Value
			}
			if a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	return ""
}
