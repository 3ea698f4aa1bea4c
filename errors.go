package c14n2

import (
	"fmt"

	"github.com/pkg/errors"
)

// InputShapeError reports a caller-supplied tree or parameter set that
// can't be canonicalized as given: a nil root, an include entry that
// doesn't belong to the tree rooted at the start node, or a prefix with no
// enclosing declaration at all. Exclude entries are not checked; one
// outside the tree simply never matches anything.
type InputShapeError struct {
	Reason string
	cause  error
}

func (e *InputShapeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("c14n2: invalid input: %s: %v", e.Reason, e.cause)
	}
	return fmt.Sprintf("c14n2: invalid input: %s", e.Reason)
}

func (e *InputShapeError) Unwrap() error { return e.cause }

func newInputShapeError(reason string) error {
	return &InputShapeError{Reason: reason}
}

// InternalInvariantError reports a prefix that resolved to no URI at a
// point where the engine's bookkeeping guarantees one should exist -
// effectively a lost xmlns="" context.
type InternalInvariantError struct {
	Prefix string
}

func (e *InternalInvariantError) Error() string {
	return fmt.Sprintf("c14n2: prefix %q has no in-scope namespace declaration", e.Prefix)
}

func newInternalInvariantError(prefix string) error {
	return errors.WithStack(&InternalInvariantError{Prefix: prefix})
}

// BadXPathError reports an XPath expression that the reparser could not
// finish scanning because a string literal was never closed. The
// partially rewritten prefix is discarded; nothing is emitted for it.
type BadXPathError struct {
	Expr string
}

func (e *BadXPathError) Error() string {
	return fmt.Sprintf("c14n2: unterminated string literal in XPath expression %q", e.Expr)
}

func newBadXPathError(expr string) error {
	return errors.WithStack(&BadXPathError{Expr: expr})
}
