package domtree

import (
	"fmt"
	"io"

	"encoding/xml"

	"golang.org/x/net/html/charset"

	"github.com/go-xmlsec/c14n2"
	"github.com/go-xmlsec/c14n2/internal/nsstack"
)

// FromXML decodes r as a single well-formed XML document and returns its
// root element as a c14n2.Node. ParentNode() on the root yields a
// Document node whose own ParentNode() is nil, per the Node contract.
//
// It reads with RawToken rather than Token: Go's encoding/xml normally
// replaces a prefixed name's Space field with the resolved namespace URI
// and throws the literal author prefix away, which this engine can't
// work with (Node.Prefix and Node.NamespaceURI are both needed,
// separately). RawToken leaves Space as the raw prefix string exactly as
// written, and this builder resolves namespace URIs itself by tracking
// xmlns declarations depth by depth with the same stack the core
// canonicalizer uses.
//
// A caveat worth knowing about: encoding/xml does not distinguish a
// CDATA section from ordinary character data, so every text run built
// here comes back as NodeText, never NodeCDATA. Use the etree-backed
// builders in etree.go if CDATA fidelity matters.
func FromXML(r io.Reader) (c14n2.Node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	decl := nsstack.New()
	doc := &node{typ: c14n2.NodeDocument}
	open := []*node{doc}
	depth := 0

	for {
		tok, err := dec.RawToken()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			for _, a := range t.Attr {
				switch {
				case a.Name.Space == "" && a.Name.Local == "xmlns":
					decl.Define("", a.Value, depth)
				case a.Name.Space == "xmlns":
					decl.Define(a.Name.Local, a.Value, depth)
				}
			}

			parent := open[len(open)-1]
			prefix := t.Name.Space
			uri, _ := decl.Lookup(prefix)

			el := &node{
				typ:    c14n2.NodeElement,
				local:  t.Name.Local,
				prefix: prefix,
				uri:    uri,
				name:   qualify(prefix, t.Name.Local),
				parent: parent,
			}

			for _, a := range t.Attr {
				aPrefix, aLocal := a.Name.Space, a.Name.Local
				var aURI string
				if aPrefix == "" && aLocal == "xmlns" {
					// default-namespace declaration, left as-is
				} else if aPrefix == "xmlns" {
					// prefixed declaration, left as-is
				} else if aPrefix != "" {
					aURI, _ = decl.Lookup(aPrefix)
				}

				el.attrs = append(el.attrs, &node{
					typ:    c14n2.NodeAttribute,
					local:  aLocal,
					prefix: aPrefix,
					uri:    aURI,
					name:   qualify(aPrefix, aLocal),
					value:  a.Value,
					parent: el,
				})
			}

			parent.children = append(parent.children, el)
			open = append(open, el)

		case xml.EndElement:
			decl.PopLevel(depth)
			open = open[:len(open)-1]
			depth--

		case xml.CharData:
			parent := open[len(open)-1]
			parent.children = append(parent.children, &node{
				typ:    c14n2.NodeText,
				value:  string(t),
				parent: parent,
			})

		case xml.Comment:
			parent := open[len(open)-1]
			parent.children = append(parent.children, &node{
				typ:    c14n2.NodeComment,
				value:  string(t),
				parent: parent,
			})

		case xml.ProcInst:
			parent := open[len(open)-1]
			parent.children = append(parent.children, &node{
				typ:    c14n2.NodeProcInst,
				local:  t.Target,
				value:  string(t.Inst),
				parent: parent,
			})

		case xml.Directive:
			// DTDs and other directives carry nothing canonicalization
			// cares about; skipped.
		}
	}

	for _, child := range doc.children {
		if child.Type() == c14n2.NodeElement {
			return child, nil
		}
	}
	return nil, fmt.Errorf("domtree: input has no root element")
}
