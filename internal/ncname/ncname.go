// Package ncname implements the narrow NCName-character alphabet this
// engine uses for QName and XPath prefix scanning: ASCII letters, digits,
// '_', '-' and '.'. It works on single bytes, so non-ASCII letters are
// not NCName characters here. This deliberately drops the usual leading-character
// restriction (NCNames can't normally start with a digit or '-') since
// nothing here ever needs to tell where a name starts versus continues -
// a maximal run of these characters is always the candidate.
package ncname

// IsChar reports whether c is an NCName character under this engine's
// relaxed alphabet.
func IsChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-' || c == '.':
		return true
	default:
		return false
	}
}
