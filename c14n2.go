// Package c14n2 implements an XML Canonicalization 2.0 engine: a
// deterministic transform from an in-memory XML tree (see Node) to a
// canonical byte sequence suitable for digital-signature input.
//
// The package has no opinion on how the tree was built - feed it a DOM
// from encoding/xml, github.com/beevik/etree, or anything else that
// implements Node. See internal/domtree for adapters wiring both.
package c14n2

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/go-xmlsec/c14n2/internal/nsstack"
)

const xmlNamespaceURI = "http://www.w3.org/XML/1998/namespace"
const soapEnvelopeNamespaceURI = "http://schemas.xmlsoap.org/soap/envelope/"

// Canonicalizer holds the mutable state of a single canonicalization run:
// the two prefix stacks, the sequential-rewrite counter, the current
// depth, and the output buffer. It is not safe for concurrent use and is
// never reused across calls to Canonicalize.
type Canonicalizer struct {
	params Params

	declared *nsstack.Stack // prefix -> in-scope URI
	used     *nsstack.Stack // visibility bookkeeping; keying depends on mode
	space    *nsstack.Stack // tracks xml:space="preserve"/"default" by ancestor

	redefined map[string]string // uri -> n<k>, write-once for the whole run
	counter   int

	depth int
	out   bytes.Buffer

	exclude map[Node]bool
	pending []Node // document-ordered include closure, consumed front-first

	visibilityPlan map[Node]map[string]bool // element -> prefixes it must declare, from planVisibility

	log *logrus.Entry // nil means "don't log"
}

// Option configures a Canonicalizer beyond Params.
type Option func(*Canonicalizer)

// WithLogger attaches a logrus entry that receives a debug-level trace
// each time a sequential n<k> prefix is allocated; nothing else is logged.
// Library callers that don't pass this get silent operation; the CLI
// (cmd/c14n2) always does.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Canonicalizer) { c.log = log }
}

func newCanonicalizer(params Params, opts ...Option) *Canonicalizer {
	c := &Canonicalizer{
		params:    params,
		declared:  nsstack.New(),
		used:      nsstack.New(),
		space:     nsstack.New(),
		redefined: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Canonicalizer) debugf(format string, args ...interface{}) {
	if c.log != nil {
		c.log.Debugf(format, args...)
	}
}

// Canonicalize renders the subtree rooted at node into canonical form. If
// include is non-empty, only the closure (under parent-of, bounded at
// node) of its entries - plus whatever those ancestors' other descendants
// pull in once a listed node is fully entered - is rendered; everything
// else in the subtree is skipped. If exclude is non-empty, any listed
// element is dropped with its whole subtree, and any listed attribute is
// dropped unless it is an xmlns or xml declaration.
func Canonicalize(node Node, params Params, include, exclude []Node, opts ...Option) ([]byte, error) {
	if node == nil {
		return nil, newInputShapeError("root node must not be nil")
	}

	c := newCanonicalizer(params, opts...)

	if len(exclude) > 0 {
		c.exclude = make(map[Node]bool, len(exclude))
		for _, n := range exclude {
			c.exclude[n] = true
		}
	}

	c.seedAncestors(node)

	var pending []Node
	if len(include) > 0 {
		p, err := closure(node, include)
		if err != nil {
			return nil, err
		}
		pending = p
	}

	plan, err := c.planVisibility(node, pending)
	if err != nil {
		return nil, err
	}
	c.visibilityPlan = plan

	if len(pending) == 0 {
		if err := c.process(node); err != nil {
			return nil, err
		}
		return c.out.Bytes(), nil
	}

	c.pending = pending
	for len(c.pending) > 0 {
		front := c.pending[0]
		if err := c.process(front); err != nil {
			return nil, err
		}
	}

	return c.out.Bytes(), nil
}

// seedAncestors re-declares ancestor namespaces before rendering starts:
// every xmlns:* declaration from node up to the document root is
// re-declared at successively negative depths (root most negative), with
// a synthetic SOAP-ENV fallback seeded one level below the root.
// Grounded on c14n2py.DOMCanonicalizerHandler.loadParentNamespaces.
func (c *Canonicalizer) seedAncestors(node Node) {
	var ancestors []Node
	for p := node.ParentNode(); p != nil; p = p.ParentNode() {
		ancestors = append(ancestors, p)
	}

	n := len(ancestors)
	c.declared.Define("SOAP-ENV", soapEnvelopeNamespaceURI, -(n + 2))

	// ancestors[n-1] is the document root; ancestors[0] is node's immediate
	// parent. Declare root first so closer ancestors shadow it.
	for i := n - 1; i >= 0; i-- {
		el := ancestors[i]
		if el.Type() != NodeElement {
			continue
		}
		depth := -(i + 2)
		for _, attr := range el.Attributes() {
			switch {
			case attr.Prefix() == "" && attr.LocalName() == "xmlns":
				c.declared.Define("", attr.NodeValue(), depth)
			case attr.Prefix() == "xmlns":
				c.declared.Define(attr.LocalName(), attr.NodeValue(), depth)
			}
		}
	}

	if _, ok := c.declared.Lookup(""); !ok {
		c.declared.Define("", "", 0)
	}
}

// isExcluded reports whether n is dropped from output: an excluded element
// drops itself (and, by virtue of process() returning early, its whole
// subtree); an excluded attribute is dropped unless it declares a
// namespace or is in the reserved xml: family.
func (c *Canonicalizer) isExcluded(n Node) bool {
	if c.exclude == nil || !c.exclude[n] {
		return false
	}
	switch n.Type() {
	case NodeElement:
		return true
	case NodeAttribute:
		prefix := n.Prefix()
		return prefix != "xmlns" && prefix != "xml" && !(prefix == "" && n.LocalName() == "xmlns")
	default:
		return false
	}
}

// process is the subtree driver, grounded on
// c14n2py.DOMCanonicalizer.process. With no include list, c.pending is
// always nil and every child is visited unconditionally. With an include
// list, children are restricted to the path leading to the queue's
// current front; once that front's parent no longer matches the node
// being visited (because the front was fully entered, or the queue is
// exhausted), recursion becomes unconditional again for everything below.
func (c *Canonicalizer) process(n Node) error {
	if c.isExcluded(n) {
		return nil
	}

	switch n.Type() {
	case NodeElement:
		if err := c.startElement(n); err != nil {
			return err
		}
	case NodeText:
		if err := c.text(n); err != nil {
			return err
		}
	case NodeCDATA:
		c.cdata(n)
	case NodeComment, NodeProcInst:
		// always dropped.
	}

	if len(c.pending) > 0 && c.pending[0] == n {
		c.pending = c.pending[1:]
	}

	if n.HasChildNodes() {
		restrict := len(c.pending) > 0 && c.pending[0].ParentNode() == n
		for _, child := range n.ChildNodes() {
			if !restrict || (len(c.pending) > 0 && child == c.pending[0]) {
				if err := c.process(child); err != nil {
					return err
				}
			}
		}
	}

	if n.Type() == NodeElement {
		if err := c.endElement(n); err != nil {
			return err
		}
	}

	return nil
}

// closure computes the include-list traversal queue: for every included
// node, every ancestor up to and including root is added (once), and the
// result is sorted into document order. An included node that never
// reaches root is a caller error - an include/exclude list naming a node
// outside the canonicalized subtree.
func closure(root Node, include []Node) ([]Node, error) {
	seen := make(map[Node]bool, len(include)*2)
	var all []Node

	for _, n := range include {
		cur := n
		for {
			if !seen[cur] {
				seen[cur] = true
				all = append(all, cur)
			}
			if cur == root {
				break
			}
			parent := cur.ParentNode()
			if parent == nil {
				return nil, newInputShapeError("include list entry is not within the canonicalized subtree")
			}
			cur = parent
		}
	}

	sort.Slice(all, func(i, j int) bool { return compareDocOrder(all[i], all[j]) < 0 })
	return all, nil
}

func nodeDepth(n Node) int {
	d := 0
	for p := n.ParentNode(); p != nil; p = p.ParentNode() {
		d++
	}
	return d
}

// compareDocOrder orders two nodes in document order: an ancestor before
// its descendants, otherwise by sibling position under their nearest
// common ancestor.
func compareDocOrder(a, b Node) int {
	if a == b {
		return 0
	}

	da, db := nodeDepth(a), nodeDepth(b)
	if da != db {
		// Lift the deeper node to the shallower one's depth; landing on the
		// other node means that node is its ancestor and comes first.
		ua, ub := a, b
		for ; da > db; da-- {
			ua = ua.ParentNode()
		}
		for ; db > da; db-- {
			ub = ub.ParentNode()
		}
		if ua == ub {
			if ua == a {
				return -1
			}
			return 1
		}
		return compareDocOrder(ua, ub)
	}

	pa, pb := a.ParentNode(), b.ParentNode()
	switch {
	case pa == nil && pb == nil:
		return 0
	case pa == nil:
		return -1
	case pb == nil:
		return 1
	case pa == pb:
		return childIndex(pa, a) - childIndex(pa, b)
	default:
		return compareDocOrder(pa, pb)
	}
}

func childIndex(parent, n Node) int {
	for i, child := range parent.ChildNodes() {
		if child == n {
			return i
		}
	}
	return -1
}

func (c *Canonicalizer) allocateSequentialPrefix(uri string) string {
	if p, ok := c.redefined[uri]; ok {
		return p
	}
	p := fmt.Sprintf("n%d", c.counter)
	c.counter++
	c.redefined[uri] = p
	c.debugf("allocated sequential prefix %s for %s", p, uri)
	return p
}
