package c14n2_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-xmlsec/c14n2"
	"github.com/go-xmlsec/c14n2/internal/domtree"
)

func parseXML(t *testing.T, src string) c14n2.Node {
	t.Helper()
	root, err := domtree.FromXML(strings.NewReader(src))
	require.NoError(t, err)
	return root
}

func canonicalize(t *testing.T, root c14n2.Node, params c14n2.Params) string {
	t.Helper()
	out, err := c14n2.Canonicalize(root, params, nil, nil)
	require.NoError(t, err)
	return string(out)
}

func TestCanonicalizeEndToEnd(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		want   string
		params func() c14n2.Params
	}{
		{
			name: "default namespace with nested override",
			in:   `<a xmlns="u1"><b xmlns="u2"></b></a>`,
			want: `<a xmlns="u1"><b xmlns="u2"></b></a>`,
		},
		{
			name: "unused declaration stripped, used one hoisted to declaring ancestor",
			in:   `<a xmlns:x="u1" xmlns:y="u2"><x:b></x:b></a>`,
			want: `<a xmlns:x="u1"><x:b></x:b></a>`,
		},
		{
			name: "unqualified attributes sort before qualified ones",
			in:   `<a xmlns:x="u1" x:q="1" p="2"></a>`,
			want: `<a xmlns:x="u1" p="2" x:q="1"></a>`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := parseXML(t, tc.in)
			params := c14n2.DefaultParams()
			if tc.params != nil {
				params = tc.params()
			}
			got := canonicalize(t, root, params)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCanonicalizeSequentialPrefixRewrite(t *testing.T) {
	root := parseXML(t, `<a xmlns:m="u1" xmlns:n="u2"><m:b></m:b><n:c></n:c><m:d></m:d></a>`)

	params := c14n2.DefaultParams()
	params.PrefixRewrite = c14n2.PrefixRewriteSequential

	got := canonicalize(t, root, params)
	want := `<a xmlns:n0="u1" xmlns:n1="u2"><n0:b></n0:b><n1:c></n1:c><n0:d></n0:d></a>`
	require.Equal(t, want, got)
}

func TestCanonicalizeSequentialPrefixRewriteDedupsEqualURIDeclarations(t *testing.T) {
	// Two distinct author prefixes bound to the same URI, each used by a
	// different child, must still only ever produce one xmlns:n<k> - both
	// collapse onto the single sequential name allocated for that URI.
	root := parseXML(t, `<root xmlns:p="u" xmlns:q="u"><p:a></p:a><q:b></q:b></root>`)

	params := c14n2.DefaultParams()
	params.PrefixRewrite = c14n2.PrefixRewriteSequential

	got := canonicalize(t, root, params)
	want := `<root xmlns:n0="u"><n0:a></n0:a><n0:b></n0:b></root>`
	require.Equal(t, want, got)
}

func TestCanonicalizeSequentialPrefixRewriteStableAcrossAuthorNames(t *testing.T) {
	// Property P5: two documents that differ only in which author prefixes
	// name the same URIs, in the same structural order, canonicalize to
	// identical bytes under sequential rewriting.
	a := parseXML(t, `<a xmlns:m="u1" xmlns:n="u2"><m:b></m:b><n:c></n:c></a>`)
	b := parseXML(t, `<a xmlns:foo="u1" xmlns:bar="u2"><foo:b></foo:b><bar:c></bar:c></a>`)

	params := c14n2.DefaultParams()
	params.PrefixRewrite = c14n2.PrefixRewriteSequential

	require.Equal(t, canonicalize(t, a, params), canonicalize(t, b, params))
}

func TestCanonicalizeQNameAwareUnqualifiedAttribute(t *testing.T) {
	root := parseXML(t, `<a xmlns:xs="http://www.w3.org/2001/XMLSchema" type="xs:int"></a>`)

	params := c14n2.DefaultParams()
	params.PrefixRewrite = c14n2.PrefixRewriteSequential
	params.QNameAwareUnqualifiedAttributes = map[c14n2.UnqualifiedAttrKey]bool{
		{ElementURI: "", ElementLocal: "a", LocalName: "type"}: true,
	}

	got := canonicalize(t, root, params)
	want := `<a xmlns:n0="http://www.w3.org/2001/XMLSchema" type="n0:int"></a>`
	require.Equal(t, want, got)
}

func TestCanonicalizeXPathRewriteSkipsStringLiterals(t *testing.T) {
	root := parseXML(t, `<a xmlns:ns1="u1" xmlns:ns2="u2" xmlns:ns3="u3">`+
		`<e>self::ns1:foo/ns2:bar[@ns1:x='ns3:y']</e></a>`)

	params := c14n2.DefaultParams()
	params.PrefixRewrite = c14n2.PrefixRewriteSequential
	params.QNameAwareXPathElements = map[c14n2.QName]bool{
		{URI: "", LocalName: "e"}: true,
	}

	got := canonicalize(t, root, params)
	want := `<a xmlns:n0="u1" xmlns:n1="u2"><e>self::n0:foo/n1:bar[@n0:x='ns3:y']</e></a>`
	require.Equal(t, want, got)
}

func TestCanonicalizeAttributeModeDoesNotPreExpandTabAndNewlineCharRefs(t *testing.T) {
	// Literal "#x9"/"#xA" text is only pre-expanded to an entity on the
	// text path; an attribute value containing that literal text passes
	// through unchanged, while the same literal text in a text node does
	// get expanded.
	root := parseXML(t, `<a foo="a#x9b#xAc">a#x9b#xAc</a>`)

	got := canonicalize(t, root, c14n2.DefaultParams())
	want := `<a foo="a#x9b#xAc">a&#x9;b&#xA;c</a>`
	require.Equal(t, want, got)
}

func TestCanonicalizeTrimRespectsXMLSpace(t *testing.T) {
	params := c14n2.DefaultParams()
	params.TrimTextNodes = true

	preserved := parseXML(t, `<a xml:space="preserve">  hi  </a>`)
	require.Equal(t, `<a xml:space="preserve">  hi  </a>`, canonicalize(t, preserved, params))

	trimmed := parseXML(t, `<a>  hi  </a>`)
	require.Equal(t, `<a>hi</a>`, canonicalize(t, trimmed, params))
}

func TestCanonicalizeExcludingNamespaceAttributeIsNoOp(t *testing.T) {
	root := parseXML(t, `<a xmlns:x="u1"><x:b></x:b></a>`)

	var xmlnsX c14n2.Node
	for _, attr := range root.Attributes() {
		if attr.Prefix() == "xmlns" && attr.LocalName() == "x" {
			xmlnsX = attr
		}
	}
	require.NotNil(t, xmlnsX)

	out, err := c14n2.Canonicalize(root, c14n2.DefaultParams(), nil, []c14n2.Node{xmlnsX})
	require.NoError(t, err)
	require.Equal(t, `<a xmlns:x="u1"><x:b></x:b></a>`, string(out))
}

func TestCanonicalizeIdempotent(t *testing.T) {
	root := parseXML(t, `<a xmlns:x="u1" xmlns:y="u2"><x:b p="2" x:q="1"></x:b></a>`)

	out1 := canonicalize(t, root, c14n2.DefaultParams())

	reparsed := parseXML(t, out1)
	out2 := canonicalize(t, reparsed, c14n2.DefaultParams())

	require.Equal(t, out1, out2)
}

func TestCanonicalizeIgnoresSiblingDeclarationOrder(t *testing.T) {
	a := parseXML(t, `<a xmlns:x="u1" xmlns:y="u2"><x:b></x:b></a>`)
	b := parseXML(t, `<a xmlns:y="u2" xmlns:x="u1"><x:b></x:b></a>`)

	require.Equal(t, canonicalize(t, a, c14n2.DefaultParams()), canonicalize(t, b, c14n2.DefaultParams()))
}

func TestCanonicalizeIgnoresAttributeOrder(t *testing.T) {
	a := parseXML(t, `<a p="1" q="2"></a>`)
	b := parseXML(t, `<a q="2" p="1"></a>`)

	require.Equal(t, canonicalize(t, a, c14n2.DefaultParams()), canonicalize(t, b, c14n2.DefaultParams()))
}

func TestCanonicalizeIgnoresUnreferencedDeclaration(t *testing.T) {
	bare := parseXML(t, `<a xmlns:x="u1"><b></b></a>`)
	withExtra := parseXML(t, `<a xmlns:x="u1" xmlns:z="u9"><b></b></a>`)

	require.Equal(t, canonicalize(t, bare, c14n2.DefaultParams()), canonicalize(t, withExtra, c14n2.DefaultParams()))
}

func TestCanonicalizeIncludeList(t *testing.T) {
	root := parseXML(t, `<a xmlns:x="u1"><x:b><c></c></x:b><x:d></x:d></a>`)

	var b, c c14n2.Node
	for _, child := range root.ChildNodes() {
		if child.LocalName() == "b" {
			b = child
			for _, grandchild := range child.ChildNodes() {
				if grandchild.LocalName() == "c" {
					c = grandchild
				}
			}
		}
	}
	require.NotNil(t, b)
	require.NotNil(t, c)

	out, err := c14n2.Canonicalize(root, c14n2.DefaultParams(), []c14n2.Node{c}, nil)
	require.NoError(t, err)
	require.Equal(t, `<a xmlns:x="u1"><x:b><c></c></x:b></a>`, string(out))
}

func TestCanonicalizeNilRoot(t *testing.T) {
	_, err := c14n2.Canonicalize(nil, c14n2.DefaultParams(), nil, nil)
	require.Error(t, err)

	var shapeErr *c14n2.InputShapeError
	require.ErrorAs(t, err, &shapeErr)
}
