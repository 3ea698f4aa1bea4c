package c14n2

import (
	"fmt"
	"strings"

	"github.com/go-xmlsec/c14n2/internal/sortattr"
	"github.com/go-xmlsec/c14n2/internal/xpathrw"
)

// startElement increments depth, folds in this element's own xmlns
// attributes and its own default-namespace inheritance, computes which
// declarations must actually be rendered, assigns sequential prefixes if
// configured, then writes the start tag.
func (c *Canonicalizer) startElement(node Node) error {
	c.depth++
	c.recordSpacePreserve(node)
	c.addNamespaces(node)

	decls, err := c.visibilityDecls(node)
	if err != nil {
		return err
	}

	if c.params.PrefixRewrite == PrefixRewriteSequential {
		sortattr.SortNSDeclsByURI(decls)
		for i := range decls {
			decls[i].Prefix = c.allocateSequentialPrefix(decls[i].URI)
			c.used.Define(decls[i].URI, decls[i].Prefix, c.depth)
		}
		if !c.params.PVDNP {
			sortattr.SortNSDeclsByPrefix(decls)
		}
	} else {
		sortattr.SortNSDeclsByPrefix(decls)
	}

	nodePrefix := node.Prefix()
	nodeURI, err := c.resolvePrefix(nodePrefix)
	if err != nil {
		return err
	}
	renderedPrefix, err := c.newPrefixFor(nodePrefix)
	if err != nil {
		return err
	}

	c.writeName("<", renderedPrefix, node.LocalName())

	for _, d := range decls {
		if d.Prefix == "" {
			fmt.Fprintf(&c.out, ` xmlns="%s"`, d.URI)
		} else {
			fmt.Fprintf(&c.out, ` xmlns:%s="%s"`, d.Prefix, d.URI)
		}
	}

	attrs, err := c.processAttributes(node, nodeURI)
	if err != nil {
		return err
	}
	for _, a := range attrs {
		switch {
		case a.XMLVerbatim:
			fmt.Fprintf(&c.out, ` xml:%s="%s"`, a.LocalName, a.Value)
		case a.Prefix == "":
			fmt.Fprintf(&c.out, ` %s="%s"`, a.LocalName, a.Value)
		default:
			fmt.Fprintf(&c.out, ` %s:%s="%s"`, a.Prefix, a.LocalName, a.Value)
		}
	}

	c.out.WriteByte('>')
	return nil
}

// endElement writes the end tag, then pops everything this element's
// depth pushed off the three scoped stacks.
func (c *Canonicalizer) endElement(node Node) error {
	renderedPrefix, err := c.newPrefixFor(node.Prefix())
	if err != nil {
		return err
	}
	c.writeName("</", renderedPrefix, node.LocalName())
	c.out.WriteByte('>')

	c.declared.PopLevel(c.depth)
	c.used.PopLevel(c.depth)
	c.space.PopLevel(c.depth)
	c.depth--
	return nil
}

func (c *Canonicalizer) writeName(open, prefix, local string) {
	if prefix == "" {
		fmt.Fprintf(&c.out, "%s%s", open, local)
	} else {
		fmt.Fprintf(&c.out, "%s%s:%s", open, prefix, local)
	}
}

// text escapes the run, optionally trims it when no enclosing element
// carries xml:space="preserve", then - if the parent element is QName-
// or XPath-aware - reparses and rewrites prefixes in the escaped value.
func (c *Canonicalizer) text(node Node) error {
	value := escapeText(node.NodeValue())

	if c.params.TrimTextNodes && !c.spacePreserveActive() {
		value = strings.Trim(value, " \t\n\v\f\r")
	}

	if parent := node.ParentNode(); parent != nil && parent.Type() == NodeElement {
		elemURI, err := c.resolvePrefix(parent.Prefix())
		if err == nil {
			key := qnameKey(elemURI, parent.LocalName())
			if c.params.QNameAwareElements[key] {
				rewritten, err := c.rewriteQNameValue(value)
				if err != nil {
					return err
				}
				value = rewritten
			}
			if c.params.QNameAwareXPathElements[key] {
				rewritten, err := c.rewriteXPath(value)
				if err != nil {
					return err
				}
				value = rewritten
			}
		}
	}

	c.out.WriteString(value)
	return nil
}

// cdata escapes the payload like text but never reparses it as a QName
// or XPath expression - the source grammar can't mark a CDATA section
// QName-aware in the first place.
func (c *Canonicalizer) cdata(node Node) {
	c.out.WriteString(escapeCDATA(node.NodeValue()))
}

// recordSpacePreserve pushes this element's own xml:space value, if any,
// onto the space stack at the current depth. A closer xml:space="default"
// correctly shadows an ancestor's "preserve" because Lookup always
// returns the most recently pushed entry.
func (c *Canonicalizer) recordSpacePreserve(node Node) {
	for _, attr := range node.Attributes() {
		if attr.Prefix() == "xml" && attr.LocalName() == "space" {
			if c.isExcluded(attr) {
				continue
			}
			c.space.Define("space", attr.NodeValue(), c.depth)
			return
		}
	}
}

func (c *Canonicalizer) spacePreserveActive() bool {
	v, ok := c.space.Lookup("space")
	return ok && v == "preserve"
}

// addNamespaces folds this element's own xmlns/xmlns:* attributes into
// the declared-prefix stack, then - per the reference implementation -
// unconditionally re-declares the default prefix if this element is
// itself unprefixed and in a non-empty namespace, so an inherited
// default namespace re-declares cleanly at this depth even when the
// author never wrote it out again.
func (c *Canonicalizer) addNamespaces(node Node) {
	for _, attr := range node.Attributes() {
		if c.isExcluded(attr) {
			continue
		}
		switch {
		case attr.Prefix() == "" && attr.LocalName() == "xmlns":
			c.declared.Define("", attr.NodeValue(), c.depth)
		case attr.Prefix() == "xmlns":
			c.declared.Define(attr.LocalName(), attr.NodeValue(), c.depth)
		}
	}

	if node.Prefix() == "" && node.NamespaceURI() != "" {
		c.declared.Define("", node.NamespaceURI(), c.depth)
	}
}

// visibilityDecls decides which namespace declarations must be rendered
// on this start tag. The actual determination of which prefixes are
// visibly used - node's own prefix, every attribute's prefix, any
// QName/XPath-aware value, anywhere in the rendered subtree - already
// happened in the planVisibility pre-pass; this just renders whatever
// that pass anchored here.
func (c *Canonicalizer) visibilityDecls(node Node) ([]sortattr.NSDecl, error) {
	var decls []sortattr.NSDecl
	sequential := c.params.PrefixRewrite == PrefixRewriteSequential
	seenURI := make(map[string]bool)

	for prefix := range c.visibilityPlan[node] {
		if err := c.markVisible(prefix, &decls, sequential, seenURI); err != nil {
			return nil, err
		}
	}

	return decls, nil
}

// markVisible records that prefix's in-scope declaration must be
// rendered on the current start tag, appending a namespace declaration
// to decls if one isn't already visible with the same meaning.
// Grounded on c14n2py's addNSDeclarationForPrefix.
func (c *Canonicalizer) markVisible(prefix string, decls *[]sortattr.NSDecl, sequential bool, seenURI map[string]bool) error {
	if prefix == "xml" {
		return nil
	}

	uri, err := c.resolvePrefix(prefix)
	if err != nil {
		return err
	}

	if sequential {
		if uri == "" {
			// The default namespace is trivially absent: no URI, so nothing
			// for a sequential replacement prefix to stand in for.
			return nil
		}
		if _, ok := c.used.Lookup(uri); ok {
			return nil
		}
		if seenURI[uri] {
			// Another prefix anchored on this same element already queued a
			// declaration for this URI - c14n2py's visibility set dedups by
			// URI the same way (addNSDeclarationForPrefix), since only one
			// sequential name will ever be allocated per URI regardless of
			// how many author prefixes bound it.
			return nil
		}
		seenURI[uri] = true
		*decls = append(*decls, sortattr.NSDecl{URI: uri})
		return nil
	}

	existing, ok := c.used.Lookup(prefix)
	if !ok && prefix == "" && uri == "" {
		// The default namespace has never been used and is itself empty:
		// record it as seen, but don't emit a no-op xmlns="" the author
		// never wrote.
		c.used.Define(prefix, uri, c.depth)
		return nil
	}
	if !ok || existing != uri {
		c.used.Define(prefix, uri, c.depth)
		*decls = append(*decls, sortattr.NSDecl{URI: uri, Prefix: prefix})
	}
	return nil
}

func textPrefix(text string) string {
	if idx := strings.IndexByte(text, ':'); idx >= 0 {
		return text[:idx]
	}
	return ""
}

// directText concatenates node's direct Text/CDATA children - the
// closest real-DOM equivalent of reading an element's "own" text for the
// QName/XPath visibility lookahead; generalizes the reference
// implementation's nodeValue read to a real-DOM child list.
func directText(node Node) string {
	var sb strings.Builder
	for _, child := range node.ChildNodes() {
		switch child.Type() {
		case NodeText, NodeCDATA:
			sb.WriteString(child.NodeValue())
		}
	}
	return sb.String()
}

// processAttributes resolves every surviving attribute's effective URI
// and (if configured) QName-rewritten value, then sorts by (URI, local
// name) with unqualified attributes first.
func (c *Canonicalizer) processAttributes(node Node, nodeURI string) ([]sortattr.Attr, error) {
	nodeLocal := node.LocalName()
	var out []sortattr.Attr

	for _, attr := range node.Attributes() {
		if c.isExcluded(attr) {
			continue
		}
		prefix := attr.Prefix()
		if prefix == "xmlns" || (prefix == "" && attr.LocalName() == "xmlns") {
			continue
		}

		value := escapeAttrValue(attr.NodeValue())

		if prefix == "xml" {
			out = append(out, sortattr.Attr{
				EffectiveURI: xmlNamespaceURI,
				LocalName:    attr.LocalName(),
				Value:        value,
				XMLVerbatim:  true,
			})
			continue
		}

		rec := sortattr.Attr{LocalName: attr.LocalName()}

		if prefix == "" {
			rec.EffectiveURI = sortattr.UnqualifiedSentinel
			key := UnqualifiedAttrKey{ElementURI: nodeURI, ElementLocal: nodeLocal, LocalName: attr.LocalName()}
			if c.params.QNameAwareUnqualifiedAttributes[key] {
				rewritten, err := c.rewriteQNameValue(value)
				if err != nil {
					return nil, err
				}
				value = rewritten
			}
		} else {
			attrURI, err := c.resolvePrefix(prefix)
			if err != nil {
				return nil, err
			}
			rec.EffectiveURI = attrURI

			key := qnameKey(attrURI, attr.LocalName())
			if c.params.QNameAwareQualifiedAttributes[key] {
				rewritten, err := c.rewriteQNameValue(value)
				if err != nil {
					return nil, err
				}
				value = rewritten
			}

			newPrefix, err := c.newPrefixFor(prefix)
			if err != nil {
				return nil, err
			}
			rec.Prefix = newPrefix
		}

		rec.Value = value
		out = append(out, rec)
	}

	sortattr.SortAttrs(out)
	return out, nil
}

// rewriteXPath reparses an already-escaped XPath expression and rewrites
// every prefix it finds via newPrefixFor. A prefix that fails to resolve
// propagates resolvePrefix's error; a string literal that never closes is
// reported as a BadXPathError.
func (c *Canonicalizer) rewriteXPath(text string) (string, error) {
	var resolveErr error

	out, err := xpathrw.Rewrite(text, func(prefix string) (string, bool) {
		newPrefix, rerr := c.newPrefixFor(prefix)
		if rerr != nil {
			resolveErr = rerr
			return prefix, true
		}
		return newPrefix, true
	})

	if resolveErr != nil {
		return "", resolveErr
	}
	if err != nil {
		return "", newBadXPathError(text)
	}
	return out, nil
}
