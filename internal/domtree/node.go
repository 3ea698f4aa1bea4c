// Package domtree provides two ways to get a c14n2.Node tree from actual
// bytes: FromXML, a minimal encoding/xml-based builder (RawToken, not
// Token, so author prefixes survive), and
// FromEtreeElement/FromEtreeDocument, an adapter over a
// github.com/beevik/etree tree for callers who already parse with etree
// (and who want real CDATA nodes, which encoding/xml can't tell apart
// from ordinary text).
package domtree

import "github.com/go-xmlsec/c14n2"

// node is the shared concrete Node implementation both builders in this
// package construct. Nothing outside domtree ever sees the struct
// itself, only the c14n2.Node interface it satisfies.
type node struct {
	typ    c14n2.NodeType
	local  string
	prefix string
	uri    string
	name   string
	value  string
	attrs  []c14n2.Node
	children []c14n2.Node
	parent c14n2.Node
}

func (n *node) Type() c14n2.NodeType          { return n.typ }
func (n *node) LocalName() string             { return n.local }
func (n *node) Prefix() string                { return n.prefix }
func (n *node) NamespaceURI() string          { return n.uri }
func (n *node) NodeName() string              { return n.name }
func (n *node) NodeValue() string             { return n.value }
func (n *node) Attributes() []c14n2.Node      { return n.attrs }
func (n *node) ChildNodes() []c14n2.Node      { return n.children }
func (n *node) ParentNode() c14n2.Node        { return n.parent }
func (n *node) HasChildNodes() bool           { return len(n.children) > 0 }

func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
