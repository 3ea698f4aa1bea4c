package sortattr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-xmlsec/c14n2/internal/sortattr"
)

func TestSortAttrsUnqualifiedBeforeQualified(t *testing.T) {
	attrs := []sortattr.Attr{
		{EffectiveURI: "http://www.w3.org", LocalName: "attr"},
		{EffectiveURI: sortattr.UnqualifiedSentinel, LocalName: "q"},
	}
	sortattr.SortAttrs(attrs)
	assert.Equal(t, "q", attrs[0].LocalName)
	assert.Equal(t, "attr", attrs[1].LocalName)
}

func TestSortAttrsTieBreakByURIThenLocal(t *testing.T) {
	attrs := []sortattr.Attr{
		{EffectiveURI: "a", LocalName: "attr"},
		{EffectiveURI: "b", LocalName: "attr"},
		{EffectiveURI: sortattr.UnqualifiedSentinel, LocalName: "attr2"},
		{EffectiveURI: sortattr.UnqualifiedSentinel, LocalName: "attr"},
	}
	sortattr.SortAttrs(attrs)

	var got []string
	for _, a := range attrs {
		got = append(got, a.EffectiveURI+"/"+a.LocalName)
	}
	assert.Equal(t, []string{
		" /attr",
		" /attr2",
		"a/attr",
		"b/attr",
	}, got)
}

func TestSortNSDeclsByPrefix(t *testing.T) {
	decls := []sortattr.NSDecl{
		{Prefix: "b", URI: "urn:b"},
		{Prefix: "", URI: "urn:default"},
		{Prefix: "a", URI: "urn:a"},
	}
	sortattr.SortNSDeclsByPrefix(decls)
	assert.Equal(t, []string{"", "a", "b"}, []string{decls[0].Prefix, decls[1].Prefix, decls[2].Prefix})
}

func TestSortNSDeclsByURI(t *testing.T) {
	decls := []sortattr.NSDecl{
		{Prefix: "m", URI: "urn:u2"},
		{Prefix: "n", URI: "urn:u1"},
	}
	sortattr.SortNSDeclsByURI(decls)
	assert.Equal(t, []string{"urn:u1", "urn:u2"}, []string{decls[0].URI, decls[1].URI})
}
