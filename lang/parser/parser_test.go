package parser_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/parser"
	"github.com/mna/sysyc/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, src string) (*ast.CompUnit, error) {
	t.Helper()
	fs := token.NewFileSet()
	return parser.ParseUnit(context.Background(), fs, "test.sy", []byte(src))
}

// printTree renders the AST with the debug printer, which gives a compact
// one-line-per-node form convenient for assertions.
func printTree(t *testing.T, unit *ast.CompUnit) string {
	t.Helper()
	var buf bytes.Buffer
	p := ast.Printer{Output: &buf, NodeFmt: "%#v"}
	require.NoError(t, p.Print(unit, nil))
	return buf.String()
}

func TestParseValid(t *testing.T) {
	cases := []struct {
		name     string
		src      string
		contains []string
	}{
		{
			"empty main",
			"int main() { return 0; }",
			[]string{"funcdef int main", "return", "number 0"},
		},
		{
			"void function",
			"void f() { }",
			[]string{"funcdef void f"},
		},
		{
			"global var and const",
			"const int N = 3; int g = N; int main() { return g; }",
			[]string{"constdecl", "def N", "vardecl", "def g", "lval g"},
		},
		{
			"multiple defs per decl",
			"int main() { int a = 1, b, c = 2; return a + c; }",
			[]string{"def a", "def b", "def c"},
		},
		{
			"array decl with nested init",
			"int main() { int a[3][2] = {1, {2, 3}, 4}; return a[0][0]; }",
			[]string{"def a {dims=2}", "initlist {items=3}", "lval a {indices=2}"},
		},
		{
			"empty init list",
			"int a[2] = {}; int main() { return a[0]; }",
			[]string{"initlist {items=0}"},
		},
		{
			"function with params",
			"int f(int x, int a[], int b[][3]) { return x + a[0] + b[1][2]; }",
			[]string{"param x {extradims=0}", "param a {extradims=0}", "param b {extradims=1}"},
		},
		{
			"call with args",
			"int f(int x) { return x; } int main() { return f(5); }",
			[]string{"call f {args=1}"},
		},
		{
			"if else while break continue",
			"int main() { int i = 0; while (i < 10) { if (i == 5) { break; } else { i = i + 1; continue; } } return i; }",
			[]string{"while", "if {hasElse=1}", "break", "continue", "assign"},
		},
		{
			"dangling else binds to inner if",
			"int main() { if (1) if (0) return 1; else return 2; return 3; }",
			[]string{"if {hasElse=0}", "if {hasElse=1}"},
		},
		{
			"precedence chain",
			"int main() { return 1 || 2 && 3 == 4 < 5 + 6 * 7; }",
			[]string{"binary ||", "binary &&", "binary ==", "binary <", "binary +", "binary *"},
		},
		{
			"unary operators",
			"int main() { return -+!1; }",
			[]string{"unary -", "unary +", "unary !"},
		},
		{
			"empty statement and expression statement",
			"void f() {} int main() { ; f(); return 0; }",
			[]string{"empty", "exprstmt"},
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			unit, err := parseOne(t, c.src)
			require.NoError(t, err)
			tree := printTree(t, unit)
			for _, want := range c.contains {
				assert.Contains(t, tree, want)
			}
		})
	}
}

func TestParsePrecedenceShape(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3)
	unit, err := parseOne(t, "int main() { return 1 + 2 * 3; }")
	require.NoError(t, err)

	fd := unit.Items[0].(*ast.FuncDef)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	add := ret.X.(*ast.BinaryExpr)
	require.Equal(t, token.PLUS, add.Op)
	require.IsType(t, &ast.NumberExpr{}, add.X)
	mul := add.Y.(*ast.BinaryExpr)
	require.Equal(t, token.STAR, mul.Op)
}

func TestParseLeftAssociativity(t *testing.T) {
	// 10 - 4 - 3 must parse as (10 - 4) - 3
	unit, err := parseOne(t, "int main() { return 10 - 4 - 3; }")
	require.NoError(t, err)

	fd := unit.Items[0].(*ast.FuncDef)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	outer := ret.X.(*ast.BinaryExpr)
	require.Equal(t, token.MINUS, outer.Op)
	inner := outer.X.(*ast.BinaryExpr)
	require.Equal(t, token.MINUS, inner.Op)
	require.IsType(t, &ast.NumberExpr{}, outer.Y)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"missing semicolon", "int main() { return 0 }"},
		{"const without init", "const int N; int main() { return 0; }"},
		{"void with var decl", "void x; int main() { return 0; }"},
		{"assign to call", "int f() { return 0; } int main() { f() = 1; return 0; }"},
		{"unbalanced paren", "int main() { return (1; }"},
		{"missing expression", "int main() { return *; }"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			_, err := parseOne(t, c.src)
			require.Error(t, err)
		})
	}
}

func TestParseRecoversAfterError(t *testing.T) {
	// the bad statement is dropped but the rest of the unit still parses
	unit, err := parseOne(t, "int main() { int x = ; x = 1; return x; }")
	require.Error(t, err)
	require.NotNil(t, unit)

	tree := printTree(t, unit)
	assert.Contains(t, tree, "assign")
	assert.Contains(t, tree, "return")
}
