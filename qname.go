package c14n2

import "strings"

// rewriteQNameValue takes a value shaped "prefix:local" (or bare
// "local"), resolves its prefix against the declared-prefix stack, and
// replaces it with the currently in-scope rendered prefix (rewritten, in
// sequential mode; unchanged otherwise). A value with no ':' is returned
// unchanged - there's no prefix to rewrite.
func (c *Canonicalizer) rewriteQNameValue(value string) (string, error) {
	idx := strings.IndexByte(value, ':')
	if idx < 0 {
		return value, nil
	}

	prefix := value[:idx]
	local := value[idx+1:]

	if prefix == "xml" {
		return value, nil
	}

	newPrefix, err := c.newPrefixFor(prefix)
	if err != nil {
		return "", err
	}

	return newPrefix + ":" + local, nil
}

// resolvePrefix looks up prefix's in-scope URI. "xml" is always
// resolvable to the fixed XML namespace, even though it is never
// declared via an xmlns attribute - the reserved prefix is implicit per
// the XML namespaces recommendation, and this engine never requires
// documents to declare it explicitly. A named prefix with no enclosing
// declaration is an InputShapeError; an unresolvable default prefix (which
// the ancestor bootstrap always defines) is an InternalInvariantError.
func (c *Canonicalizer) resolvePrefix(prefix string) (string, error) {
	if prefix == "xml" {
		return xmlNamespaceURI, nil
	}
	uri, ok := c.declared.Lookup(prefix)
	if !ok {
		if prefix != "" {
			return "", newInputShapeError("prefix \"" + prefix + "\" has no enclosing namespace declaration")
		}
		return "", newInternalInvariantError(prefix)
	}
	return uri, nil
}

// newPrefixFor resolves prefix to its in-scope URI, then returns the
// prefix that should actually be rendered for that URI: the sequential
// replacement if prefix rewriting is active, or prefix unchanged
// otherwise.
func (c *Canonicalizer) newPrefixFor(prefix string) (string, error) {
	if prefix == "xml" {
		return prefix, nil
	}

	uri, err := c.resolvePrefix(prefix)
	if err != nil {
		return "", err
	}

	if c.params.PrefixRewrite == PrefixRewriteSequential {
		if uri == "" {
			// No namespace at all: nothing to rewrite, rendered unprefixed.
			return "", nil
		}
		if newPrefix, ok := c.used.Lookup(uri); ok {
			return newPrefix, nil
		}
		// A URI visibly used but never rendered as a declaration (e.g. the
		// element's own namespace, already declared by an ancestor) still
		// needs a stable sequential name; allocate one without emitting a
		// fresh declaration for it.
		return c.allocateSequentialPrefix(uri), nil
	}

	return prefix, nil
}
