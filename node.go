package c14n2

// NodeType identifies the kind of a Node, mirroring the subset of the DOM
// node types this engine cares about.
type NodeType int

const (
	NodeDocument NodeType = iota
	NodeElement
	NodeAttribute
	NodeText
	NodeCDATA
	NodeComment
	NodeProcInst
)

// Node is the read-only tree interface the core consumes. The parser or DOM
// library that produces the tree is an external collaborator; this package
// never constructs a Node itself (the adapters under internal/domtree do,
// for the CLI and for tests).
//
// Node identity is by reference: two Nodes describing structurally equal
// content are not interchangeable for Include/Exclude purposes unless they
// are literally the same value.
type Node interface {
	Type() NodeType

	// LocalName is the name without any prefix. For attributes this is the
	// attribute's own local name, not the owning element's.
	LocalName() string

	// Prefix is the in-document prefix as written by the author, or "" for
	// an unprefixed name (including the default namespace case).
	Prefix() string

	// NamespaceURI is the resolved namespace URI, or "" if none applies.
	NamespaceURI() string

	// NodeName is the raw, possibly prefixed name as it appeared in the
	// source (e.g. "xs:int"); used only for diagnostics.
	NodeName() string

	// NodeValue is the node's textual content: attribute value, text run,
	// CDATA payload. Empty for elements and the document node.
	NodeValue() string

	// Attributes returns this element's attributes in source order.
	// Non-element nodes return nil.
	Attributes() []Node

	// ChildNodes returns this node's children in document order.
	ChildNodes() []Node

	// ParentNode returns the parent, or nil for the document node (or for a
	// node that has been detached).
	ParentNode() Node

	// HasChildNodes reports whether ChildNodes() would be non-empty.
	HasChildNodes() bool
}
