// Package sortattr implements the two ordering rules the canonicalizer
// needs when emitting a start tag: attributes sorted by (effective URI,
// local name), and namespace declarations sorted either by prefix (the
// default) or by URI (sequential mode with PVDNP preserved).
//
// It sorts already-resolved records instead of sorting raw
// encoding/xml.Attr values against a live prefix stack at comparison
// time - this engine resolves each attribute's effective URI once, up
// front, so Less never needs to consult the stack.
package sortattr

import "sort"

// UnqualifiedSentinel is the effective URI assigned to unqualified
// attributes so they sort before every qualified attribute - any
// non-empty namespace URI of printable characters is lexicographically
// greater than a single space (the empty string would sort before it).
const UnqualifiedSentinel = " "

// Attr is an attribute resolved and ready for ordering and emission.
type Attr struct {
	EffectiveURI string // UnqualifiedSentinel, or the attribute's namespace URI
	LocalName    string
	Prefix       string // rendered prefix ("" for none); not a sort key
	Value        string // already escaped
	XMLVerbatim  bool   // true for xml:* attributes, rendered without rewrite
}

type byURIThenLocal []Attr

func (a byURIThenLocal) Len() int      { return len(a) }
func (a byURIThenLocal) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a byURIThenLocal) Less(i, j int) bool {
	if a[i].EffectiveURI != a[j].EffectiveURI {
		return a[i].EffectiveURI < a[j].EffectiveURI
	}
	return a[i].LocalName < a[j].LocalName
}

// SortAttrs orders attrs in place: unqualified attributes first (grouped
// by the sentinel), then qualified ones by (URI, local).
func SortAttrs(attrs []Attr) {
	sort.Sort(byURIThenLocal(attrs))
}

// NSDecl is a namespace declaration resolved and ready for ordering and
// emission. Prefix is "" for the default-namespace declaration.
type NSDecl struct {
	URI    string
	Prefix string
}

type byPrefix []NSDecl

func (d byPrefix) Len() int           { return len(d) }
func (d byPrefix) Swap(i, j int)      { d[i], d[j] = d[j], d[i] }
func (d byPrefix) Less(i, j int) bool { return d[i].Prefix < d[j].Prefix }

type byURI []NSDecl

func (d byURI) Len() int           { return len(d) }
func (d byURI) Swap(i, j int)      { d[i], d[j] = d[j], d[i] }
func (d byURI) Less(i, j int) bool { return d[i].URI < d[j].URI }

// SortNSDeclsByPrefix orders decls by prefix ascending (the empty/default
// prefix sorts first). Used in non-sequential mode, and in sequential
// mode whenever PVDNP is not in effect.
func SortNSDeclsByPrefix(decls []NSDecl) {
	sort.Sort(byPrefix(decls))
}

// SortNSDeclsByURI orders decls by URI ascending. Used to assign
// sequential n<k> prefixes in URI order, and to preserve that same order
// at emission time when PVDNP mode is set.
func SortNSDeclsByURI(decls []NSDecl) {
	sort.Sort(byURI(decls))
}
