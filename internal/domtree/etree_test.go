package domtree_test

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"github.com/go-xmlsec/c14n2"
	"github.com/go-xmlsec/c14n2/internal/domtree"
)

// A CDATA section's carriage returns are left untouched by the core
// canonicalizer's escaping rules, unlike an ordinary text node's - a
// distinction FromXML can never exercise, since encoding/xml collapses
// CDATA into plain character data on the way in. Building the tree with
// etree instead preserves which one the author actually wrote.
func TestFromEtreeElementPreservesCDATA(t *testing.T) {
	root := etree.NewElement("a")
	root.CreateAttr("xmlns:x", "u1")
	b := root.CreateElement("x:b")
	b.CreateCData("x\ry")

	node := domtree.FromEtreeElement(root)

	var cdata c14n2.Node
	for _, child := range node.ChildNodes() {
		if child.LocalName() == "b" {
			for _, grandchild := range child.ChildNodes() {
				if grandchild.Type() == c14n2.NodeCDATA {
					cdata = grandchild
				}
			}
		}
	}
	require.NotNil(t, cdata)
	require.Equal(t, "x\ry", cdata.NodeValue())

	out, err := c14n2.Canonicalize(node, c14n2.DefaultParams(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, "<a xmlns:x=\"u1\"><x:b>x\ry</x:b></a>", string(out))
}

func TestFromEtreeDocumentNilRootError(t *testing.T) {
	doc := etree.NewDocument()
	_, err := domtree.FromEtreeDocument(doc)
	require.Error(t, err)
}
