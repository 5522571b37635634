package ast

import (
	"fmt"
	"strconv"

	"github.com/mna/sysyc/lang/token"
)

// NumberExpr is an integer literal.
type NumberExpr struct {
	ValPos token.Pos
	Val    int32
}

func (n *NumberExpr) expr() {}
func (n *NumberExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "number "+strconv.Itoa(int(n.Val)), nil)
}
func (n *NumberExpr) Span() (start, end token.Pos) {
	return n.ValPos, n.ValPos + 1
}
func (n *NumberExpr) Walk(v Visitor) {}

// LValExpr is a reference to a variable or array element: an identifier
// optionally followed by one or more "[expr]" index subscripts. A LValExpr
// with no Indices is either a scalar reference or, when it names an array
// or a pointer parameter, the whole-array/pointer value itself.
type LValExpr struct {
	Name    string
	NamePos token.Pos
	Indices []Expr
	End     token.Pos
}

func (n *LValExpr) expr() {}
func (n *LValExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "lval "+n.Name, map[string]int{"indices": len(n.Indices)})
}
func (n *LValExpr) Span() (start, end token.Pos) { return n.NamePos, n.End }
func (n *LValExpr) Walk(v Visitor) {
	for _, idx := range n.Indices {
		Walk(v, idx)
	}
}

// UnaryExpr is a prefixed "+", "-" or "!" applied to an operand.
type UnaryExpr struct {
	Op    token.Token
	OpPos token.Pos
	X     Expr
}

func (n *UnaryExpr) expr() {}
func (n *UnaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "unary "+n.Op.String(), nil)
}
func (n *UnaryExpr) Span() (start, end token.Pos) {
	_, end = n.X.Span()
	return n.OpPos, end
}
func (n *UnaryExpr) Walk(v Visitor) { Walk(v, n.X) }

// BinaryExpr is a left-associative binary operation: arithmetic, relational,
// equality, or short-circuiting logical "&&"/"||".
type BinaryExpr struct {
	X     Expr
	Op    token.Token
	OpPos token.Pos
	Y     Expr
}

func (n *BinaryExpr) expr() {}
func (n *BinaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "binary "+n.Op.String(), nil)
}
func (n *BinaryExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	_, end = n.Y.Span()
	return start, end
}
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.X)
	Walk(v, n.Y)
}

// CallExpr is a function call with zero or more argument expressions.
type CallExpr struct {
	Func    string
	FuncPos token.Pos
	Args    []Expr
	End     token.Pos
}

func (n *CallExpr) expr() {}
func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call "+n.Func, map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Span() (start, end token.Pos) { return n.FuncPos, n.End }
func (n *CallExpr) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}
