package c14n2

import "github.com/go-xmlsec/c14n2/internal/xpathrw"

// planVisibility walks the portion of the tree process() will actually
// visit (same include/exclude and traversal-restriction rules) and
// decides, for every namespace prefix visibly used anywhere in that
// output, which single rendered element must carry its declaration.
//
// A used prefix is anchored at the nearest element - at or above the
// point of use - that itself carries the author's own xmlns attribute
// for it; if no rendered element declares it (the binding is inherited
// from outside the rendered subtree, via the ancestor bootstrap), it
// anchors at the render root instead. This means a namespace some deep
// descendant relies on, but which an ancestor already declared and nothing
// in between overrides, is rendered once at that ancestor - not
// re-declared at the point of use - mirroring how the declaration
// already sat in the source. It takes a second pass over the tree
// because, run in one top-down streaming pass, an ancestor can't yet
// know whether a not-yet-visited descendant will need what it declares.
func (c *Canonicalizer) planVisibility(renderRoot Node, pending []Node) (map[Node]map[string]bool, error) {
	plan := make(map[Node]map[string]bool)
	mark := func(owner Node, prefix string) {
		if owner == nil || prefix == "xml" {
			return
		}
		set, ok := plan[owner]
		if !ok {
			set = make(map[string]bool)
			plan[owner] = set
		}
		set[prefix] = true
	}

	var walk func(node Node, pending []Node) error
	walk = func(node Node, pending []Node) error {
		if c.isExcluded(node) {
			return nil
		}

		if node.Type() == NodeElement {
			c.depth++
			c.addNamespaces(node)
			if err := c.scanElementUses(node, renderRoot, mark); err != nil {
				return err
			}
		}

		if len(pending) > 0 && pending[0] == node {
			pending = pending[1:]
		}

		if node.HasChildNodes() {
			restrict := len(pending) > 0 && pending[0].ParentNode() == node
			for _, child := range node.ChildNodes() {
				if !restrict || (len(pending) > 0 && child == pending[0]) {
					if err := walk(child, pending); err != nil {
						return err
					}
				}
			}
		}

		if node.Type() == NodeElement {
			c.declared.PopLevel(c.depth)
			c.depth--
		}

		return nil
	}

	if err := walk(renderRoot, pending); err != nil {
		return nil, err
	}
	return plan, nil
}

// scanElementUses records every namespace prefix node visibly uses - its
// own name, its attributes' names, and any QName- or XPath-aware value -
// against the element that should end up rendering that prefix's
// declaration. It is the only place that decides what counts as "used";
// visibilityDecls renders what it records.
func (c *Canonicalizer) scanElementUses(node, renderRoot Node, mark func(Node, string)) error {
	nodeURI, err := c.resolvePrefix(node.Prefix())
	if err != nil {
		return err
	}
	nodeLocal := node.LocalName()

	use := func(prefix string) error {
		if prefix == "xml" {
			return nil
		}
		if _, err := c.resolvePrefix(prefix); err != nil {
			return err
		}
		mark(c.findOwner(node, prefix, renderRoot), prefix)
		return nil
	}

	if err := use(node.Prefix()); err != nil {
		return err
	}

	for _, attr := range node.Attributes() {
		if c.isExcluded(attr) {
			continue
		}
		prefix := attr.Prefix()
		if prefix == "xmlns" || (prefix == "" && attr.LocalName() == "xmlns") {
			continue
		}
		if prefix == "xml" {
			continue
		}

		value := escapeAttrValue(attr.NodeValue())

		if prefix == "" {
			key := UnqualifiedAttrKey{ElementURI: nodeURI, ElementLocal: nodeLocal, LocalName: attr.LocalName()}
			if c.params.QNameAwareUnqualifiedAttributes[key] {
				if err := use(textPrefix(value)); err != nil {
					return err
				}
			}
			continue
		}

		attrURI, err := c.resolvePrefix(prefix)
		if err != nil {
			return err
		}
		if c.params.QNameAwareQualifiedAttributes[qnameKey(attrURI, attr.LocalName())] {
			if err := use(textPrefix(value)); err != nil {
				return err
			}
		}
		if err := use(prefix); err != nil {
			return err
		}
	}

	elemKey := qnameKey(nodeURI, nodeLocal)

	if c.params.QNameAwareElements[elemKey] {
		if err := use(textPrefix(escapeText(directText(node)))); err != nil {
			return err
		}
	}

	if c.params.QNameAwareXPathElements[elemKey] {
		for _, prefix := range xpathrw.Prefixes(directText(node)) {
			if err := use(prefix); err != nil {
				return err
			}
		}
	}

	return nil
}

// findOwner walks from node up to (and including) renderRoot, returning
// the nearest element that declares prefix itself; renderRoot if none
// of them do.
func (c *Canonicalizer) findOwner(node Node, prefix string, renderRoot Node) Node {
	for cur := node; ; cur = cur.ParentNode() {
		if c.declaresPrefix(cur, prefix) {
			return cur
		}
		if cur == renderRoot {
			return renderRoot
		}
	}
}

func (c *Canonicalizer) declaresPrefix(el Node, prefix string) bool {
	if el.Type() != NodeElement {
		return false
	}
	for _, attr := range el.Attributes() {
		if c.isExcluded(attr) {
			continue
		}
		if prefix == "" && attr.Prefix() == "" && attr.LocalName() == "xmlns" {
			return true
		}
		if prefix != "" && attr.Prefix() == "xmlns" && attr.LocalName() == prefix {
			return true
		}
	}
	return false
}
