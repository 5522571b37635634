package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String(), "token %d missing a string representation", tok)
	}
}

func TestLookupKw(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		expect := tok >= kwStart && tok <= kwEnd
		val := LookupKw(tok.String())
		if expect {
			require.Equal(t, tok, val)
		} else {
			require.Equal(t, IDENT, val)
		}
	}
}

func TestLookupPunct(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		expect := tok >= punctStart && tok <= punctEnd
		val := LookupPunct(tok.String())
		if expect {
			require.Equal(t, tok, val)
		} else {
			require.Equal(t, ILLEGAL, val)
		}
	}
}

func TestOperatorClasses(t *testing.T) {
	require.True(t, LT.IsRelOp())
	require.True(t, GE.IsRelOp())
	require.False(t, EQL.IsRelOp())

	require.True(t, EQL.IsEqOp())
	require.True(t, NEQ.IsEqOp())
	require.False(t, LT.IsEqOp())

	require.True(t, PLUS.IsAddOp())
	require.True(t, MINUS.IsAddOp())
	require.False(t, STAR.IsAddOp())

	require.True(t, STAR.IsMulOp())
	require.True(t, SLASH.IsMulOp())
	require.True(t, PERCENT.IsMulOp())
	require.False(t, PLUS.IsMulOp())
}

func TestLiteral(t *testing.T) {
	val := Value{Raw: "abc123", Int: 7}

	require.Equal(t, "abc123", IDENT.Literal(val))
	require.Equal(t, "abc123", INT.Literal(val))
	require.Equal(t, "+", PLUS.Literal(Value{}))
	require.Equal(t, "const", CONST.Literal(Value{}))
	require.Equal(t, "", ILLEGAL.Literal(val))
}

func TestGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "'const'", CONST.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
}
