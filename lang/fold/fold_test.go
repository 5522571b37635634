package fold_test

import (
	"context"
	"testing"

	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/cerr"
	"github.com/mna/sysyc/lang/fold"
	"github.com/mna/sysyc/lang/parser"
	"github.com/mna/sysyc/lang/symtab"
	"github.com/mna/sysyc/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constExpr parses src as the initializer of a const definition, which is
// less brittle than building expression trees by hand.
func constExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	fs := token.NewFileSet()
	full := "const int tEsT__ = " + src + ";"
	unit, err := parser.ParseUnit(context.Background(), fs, "fold.sy", []byte(full))
	require.NoError(t, err)
	decl := unit.Items[0].(*ast.Decl)
	return decl.Defs[0].Init.Expr
}

func TestFoldArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want int32
	}{
		{"0", 0},
		{"1 + 2 * 3", 7},
		{"10 - 4 - 3", 3},
		{"7 / 2", 3},
		{"-7 / 2", -3},
		{"7 % 3", 1},
		{"-7 % 3", -1},
		{"7 % -3", 1},
		{"-(3)", -3},
		{"+5", 5},
		{"!0", 1},
		{"!42", 0},
		{"1 < 2", 1},
		{"2 < 1", 0},
		{"2 <= 2", 1},
		{"3 > 2", 1},
		{"3 >= 4", 0},
		{"1 == 1", 1},
		{"1 != 1", 0},
		{"1 && 2", 1},
		{"1 && 0", 0},
		{"0 || 0", 0},
		{"0 || 3", 1},
		{"2147483647 + 1", -2147483648}, // two's-complement wrap
		{"0x10 + 010", 24},
	}

	env := symtab.NewEnv()
	for _, c := range cases {
		c := c
		t.Run(c.src, func(t *testing.T) {
			got, err := fold.Expr(env, constExpr(t, c.src))
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestFoldConstBindings(t *testing.T) {
	env := symtab.NewEnv()
	require.NoError(t, env.Declare("N", symtab.ConstInt{Val: 3}))
	require.NoError(t, env.Declare("M", symtab.ConstInt{Val: 4}))

	got, err := fold.Expr(env, constExpr(t, "N * M + 1"))
	require.NoError(t, err)
	assert.Equal(t, int32(13), got)
}

func TestFoldIdempotence(t *testing.T) {
	// folding an already-constant expression is the identity on its value
	env := symtab.NewEnv()
	e := constExpr(t, "6 * 7")
	v1, err := fold.Expr(env, e)
	require.NoError(t, err)
	v2, err := fold.Expr(env, e)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestFoldErrors(t *testing.T) {
	env := symtab.NewEnv()
	require.NoError(t, env.Declare("x", symtab.IntVar{Name: "x_0"}))
	require.NoError(t, env.Declare("a", symtab.Array{Name: "a_1", Dims: []int32{3}}))
	require.NoError(t, env.Declare("N", symtab.ConstInt{Val: 3}))

	cases := []struct {
		src  string
		kind cerr.Kind
	}{
		{"missing", cerr.Undefined},
		{"x + 1", cerr.ConstNotConst},
		{"a", cerr.ConstNotConst},
		{"N[0]", cerr.KindMismatch},
		{"1 / 0", cerr.ConstNotConst},
		{"1 % 0", cerr.ConstNotConst},
		{"getint()", cerr.ConstNotConst},
	}
	for _, c := range cases {
		c := c
		t.Run(c.src, func(t *testing.T) {
			_, err := fold.Expr(env, constExpr(t, c.src))
			require.Error(t, err)
			assert.Equal(t, c.kind, cerr.KindOf(err))
		})
	}
}

func TestFoldDims(t *testing.T) {
	env := symtab.NewEnv()
	require.NoError(t, env.Declare("N", symtab.ConstInt{Val: 3}))

	dims, err := fold.Dims(env, []ast.Expr{constExpr(t, "N"), constExpr(t, "N - 1")})
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 2}, dims)

	_, err = fold.Dims(env, []ast.Expr{constExpr(t, "0")})
	require.Error(t, err)
	assert.Equal(t, cerr.KindMismatch, cerr.KindOf(err))

	dims, err = fold.Dims(env, nil)
	require.NoError(t, err)
	assert.Nil(t, dims)
}
