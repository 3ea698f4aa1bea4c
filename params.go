package c14n2

// QName identifies an element or a qualified attribute by (namespace URI,
// local name) for the qname-aware configuration sets.
type QName struct {
	URI       string
	LocalName string
}

// UnqualifiedAttrKey identifies an unqualified attribute by the element it
// appears on, since an unqualified attribute has no namespace of its own
// and inherits its owning element's for matching purposes.
type UnqualifiedAttrKey struct {
	ElementURI   string
	ElementLocal string
	LocalName    string
}

// PrefixRewriteMode selects whether author prefixes are kept (None) or
// replaced with sequential n0, n1, ... names written once per URI.
type PrefixRewriteMode int

const (
	PrefixRewriteNone PrefixRewriteMode = iota
	PrefixRewriteSequential
)

// Params configures a single Canonicalize call. The zero value is not
// valid for PVDNP purposes - use DefaultParams.
type Params struct {
	// IgnoreComments drops comment nodes. Default true; this core always
	// drops comments and processing instructions regardless, so
	// this field exists for interface completeness but has no effect of
	// its own (see SPEC_FULL.md §4.1).
	IgnoreComments bool

	// TrimTextNodes strips leading/trailing ASCII whitespace from text
	// nodes, unless an ancestor carries xml:space="preserve".
	TrimTextNodes bool

	// PrefixRewrite selects the sequential n0, n1, ... remapping.
	PrefixRewrite PrefixRewriteMode

	// PVDNP preserves the URI-sorted namespace-declaration order from
	// sequential-mode prefix assignment at emission time, instead of
	// re-sorting declarations by (rewritten) prefix. Only relevant when
	// PrefixRewrite is Sequential. Defaults to true in DefaultParams,
	// matching the only reference implementation available (c14n2py
	// hard-codes PVDNP_MODE = True).
	PVDNP bool

	// QNameAwareElements: text content of a matching element is parsed as
	// a QName and its prefix rewritten.
	QNameAwareElements map[QName]bool

	// QNameAwareQualifiedAttributes: value of a matching qualified
	// attribute is parsed as a QName and its prefix rewritten.
	QNameAwareQualifiedAttributes map[QName]bool

	// QNameAwareUnqualifiedAttributes: value of a matching unqualified
	// attribute is parsed as a QName and its prefix rewritten.
	QNameAwareUnqualifiedAttributes map[UnqualifiedAttrKey]bool

	// QNameAwareXPathElements: text content of a matching element is
	// reparsed as an XPath expression; every prefix found is rewritten.
	QNameAwareXPathElements map[QName]bool
}

// DefaultParams returns the baseline defaults: comments dropped,
// text nodes untrimmed, author prefixes kept, no QName-aware sets.
func DefaultParams() Params {
	return Params{
		IgnoreComments: true,
		PVDNP:          true,
	}
}

func qnameKey(uri, local string) QName {
	return QName{URI: uri, LocalName: local}
}
