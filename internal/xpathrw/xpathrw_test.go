package xpathrw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-xmlsec/c14n2/internal/xpathrw"
)

func resolver(m map[string]string) xpathrw.Resolve {
	return func(prefix string) (string, bool) {
		v, ok := m[prefix]
		return v, ok
	}
}

func TestRewriteScenario6(t *testing.T) {
	// self::ns1:foo/ns2:bar[@ns1:x='ns3:y'] - ns3 is inside a string literal
	// and must not be touched, even though it looks like a QName prefix.
	expr := `self::ns1:foo/ns2:bar[@ns1:x='ns3:y']`
	out, err := xpathrw.Rewrite(expr, resolver(map[string]string{
		"ns1": "n0",
		"ns2": "n1",
		"ns3": "n2",
	}))
	require.NoError(t, err)
	assert.Equal(t, `self::n0:foo/n1:bar[@n0:x='ns3:y']`, out)
}

func TestRewriteAxisSeparatorNotRewritten(t *testing.T) {
	out, err := xpathrw.Rewrite(`child::ns1:foo`, resolver(map[string]string{"ns1": "n0"}))
	require.NoError(t, err)
	assert.Equal(t, `child::n0:foo`, out)
}

func TestRewriteUnknownPrefixKeptVerbatim(t *testing.T) {
	out, err := xpathrw.Rewrite(`ns9:foo`, resolver(nil))
	require.NoError(t, err)
	assert.Equal(t, `ns9:foo`, out)
}

func TestRewriteNoPrefix(t *testing.T) {
	out, err := xpathrw.Rewrite(`foo/bar[@x='y']`, resolver(nil))
	require.NoError(t, err)
	assert.Equal(t, `foo/bar[@x='y']`, out)
}

func TestRewriteUnterminatedString(t *testing.T) {
	_, err := xpathrw.Rewrite(`ns1:foo[@x='unterminated]`, resolver(map[string]string{"ns1": "n0"}))
	assert.Error(t, err)
}

func TestRewriteDoubleQuotedLiteralUntouched(t *testing.T) {
	out, err := xpathrw.Rewrite(`ns1:foo[@x="ns2:bar"]`, resolver(map[string]string{
		"ns1": "n0",
		"ns2": "n1",
	}))
	require.NoError(t, err)
	assert.Equal(t, `n0:foo[@x="ns2:bar"]`, out)
}
