// Package xpathrw rewrites namespace prefixes appearing inside an XPath
// expression, for QName-aware XPath elements. The reference
// implementation (c14n2py) scans right-to-left with a five-state machine
// and grows its output buffer from the right. This implementation scans
// left-to-right instead, an equally correct alternative as long as the
// same characters end up rewritten - only a prefix immediately followed
// by a single ':' (not '::', the axis separator) and not inside a string
// literal is a rewrite candidate.
package xpathrw

import "github.com/go-xmlsec/c14n2/internal/ncname"

// Resolve looks up a prefix's replacement. It returns ok=false if prefix
// has no resolution, in which case the original prefix is kept verbatim.
type Resolve func(prefix string) (replacement string, ok bool)

// ErrUnterminatedString is returned (wrapped by the caller into a
// BadXPathError) when a quoted string literal is never closed.
type ErrUnterminatedString struct {
	Expr  string
	Quote byte
}

func (e *ErrUnterminatedString) Error() string {
	return "xpathrw: unterminated string literal"
}

// Rewrite rewrites every QName prefix in expr via resolve and returns the
// result. Text inside single- or double-quoted string literals is copied
// through unchanged. "::" (an axis separator, e.g. "child::foo") is never
// mistaken for a prefix separator.
func Rewrite(expr string, resolve Resolve) (string, error) {
	out := make([]byte, 0, len(expr))
	n := len(expr)
	i := 0

	for i < n {
		c := expr[i]

		switch c {
		case '\'', '"':
			end := indexByteFrom(expr, c, i+1)
			if end < 0 {
				return "", &ErrUnterminatedString{Expr: expr, Quote: c}
			}
			out = append(out, expr[i:end+1]...)
			i = end + 1

		default:
			if ncname.IsChar(c) {
				j := i
				for j < n && ncname.IsChar(expr[j]) {
					j++
				}

				// A prefix is this run followed by exactly one ':' (not
				// the "::" axis separator).
				if j < n && expr[j] == ':' && (j+1 >= n || expr[j+1] != ':') {
					prefix := expr[i:j]
					if replacement, ok := resolve(prefix); ok {
						out = append(out, replacement...)
					} else {
						out = append(out, prefix...)
					}
					out = append(out, ':')
					i = j + 1
				} else {
					out = append(out, expr[i:j]...)
					i = j
				}
			} else {
				out = append(out, c)
				i++
			}
		}
	}

	return string(out), nil
}

// Prefixes returns every distinct QName prefix Rewrite would attempt to
// resolve in expr, in first-seen order, ignoring string-literal contents
// and axis separators exactly like Rewrite does. Used during visibility
// planning to decide which namespace declarations an XPath-aware
// element's content needs before Rewrite ever runs. A malformed
// expression (unterminated string) simply stops scanning and returns
// what it found so far - Rewrite is the one that reports that error.
func Prefixes(expr string) []string {
	var out []string
	seen := make(map[string]bool)
	n := len(expr)
	i := 0

	for i < n {
		c := expr[i]

		switch c {
		case '\'', '"':
			end := indexByteFrom(expr, c, i+1)
			if end < 0 {
				return out
			}
			i = end + 1

		default:
			if ncname.IsChar(c) {
				j := i
				for j < n && ncname.IsChar(expr[j]) {
					j++
				}
				if j < n && expr[j] == ':' && (j+1 >= n || expr[j+1] != ':') {
					prefix := expr[i:j]
					if !seen[prefix] {
						seen[prefix] = true
						out = append(out, prefix)
					}
					i = j + 1
				} else {
					i = j
				}
			} else {
				i++
			}
		}
	}

	return out
}

func indexByteFrom(s string, c byte, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
