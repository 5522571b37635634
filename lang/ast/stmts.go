package ast

import (
	"fmt"

	"github.com/mna/sysyc/lang/token"
)

// AssignStmt is "lval = expr ;".
type AssignStmt struct {
	Left      *LValExpr
	AssignPos token.Pos
	Right     Expr
	End       token.Pos
}

func (n *AssignStmt) BlockEnding() bool             { return false }
func (n *AssignStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "assign", nil) }
func (n *AssignStmt) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	return start, n.End
}
func (n *AssignStmt) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

// ExprStmt is a bare expression statement (only function calls are useful,
// since SysY has no other side-effecting expression forms), or the empty
// statement ";" when X is nil.
type ExprStmt struct {
	X     Expr // nil for the empty statement
	Start token.Pos
	End   token.Pos
}

func (n *ExprStmt) BlockEnding() bool { return false }
func (n *ExprStmt) Format(f fmt.State, verb rune) {
	if n.X == nil {
		format(f, verb, n, "empty", nil)
		return
	}
	format(f, verb, n, "exprstmt", nil)
}
func (n *ExprStmt) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *ExprStmt) Walk(v Visitor) {
	if n.X != nil {
		Walk(v, n.X)
	}
}

// BlockStmt wraps a Block so it can appear directly in a statement list.
type BlockStmt struct {
	Body *Block
}

func (n *BlockStmt) BlockEnding() bool             { return false }
func (n *BlockStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "blockstmt", nil) }
func (n *BlockStmt) Span() (start, end token.Pos)  { return n.Body.Span() }
func (n *BlockStmt) Walk(v Visitor)                { Walk(v, n.Body) }

// IfStmt is "if (cond) then [else else]".
type IfStmt struct {
	IfPos token.Pos
	Cond  Expr
	Then  Stmt
	Else  Stmt // nil if no else branch
}

func (n *IfStmt) BlockEnding() bool { return false }
func (n *IfStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "if", map[string]int{"hasElse": boolCount(n.Else != nil)})
}
func (n *IfStmt) Span() (start, end token.Pos) {
	_, end = n.Then.Span()
	if n.Else != nil {
		_, end = n.Else.Span()
	}
	return n.IfPos, end
}
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}

// WhileStmt is "while (cond) body".
type WhileStmt struct {
	WhilePos token.Pos
	Cond     Expr
	Body     Stmt
}

func (n *WhileStmt) BlockEnding() bool             { return false }
func (n *WhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *WhileStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.WhilePos, end
}
func (n *WhileStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}

// BreakStmt is "break ;", valid only inside a WhileStmt body.
type BreakStmt struct {
	Start token.Pos
	End   token.Pos
}

func (n *BreakStmt) BlockEnding() bool             { return true }
func (n *BreakStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "break", nil) }
func (n *BreakStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *BreakStmt) Walk(v Visitor)                {}

// ContinueStmt is "continue ;", valid only inside a WhileStmt body.
type ContinueStmt struct {
	Start token.Pos
	End   token.Pos
}

func (n *ContinueStmt) BlockEnding() bool             { return true }
func (n *ContinueStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "continue", nil) }
func (n *ContinueStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *ContinueStmt) Walk(v Visitor)                {}

// ReturnStmt is "return [expr] ;". X is nil for a bare return in a void
// function.
type ReturnStmt struct {
	Start token.Pos
	X     Expr
	End   token.Pos
}

func (n *ReturnStmt) BlockEnding() bool             { return true }
func (n *ReturnStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *ReturnStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *ReturnStmt) Walk(v Visitor) {
	if n.X != nil {
		Walk(v, n.X)
	}
}

// DeclStmt wraps a local Decl (const-decl or var-decl) so it can appear
// directly in a block's statement list.
type DeclStmt struct {
	D *Decl
}

func (n *DeclStmt) BlockEnding() bool             { return false }
func (n *DeclStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "declstmt", nil) }
func (n *DeclStmt) Span() (start, end token.Pos)  { return n.D.Span() }
func (n *DeclStmt) Walk(v Visitor)                { Walk(v, n.D) }

func boolCount(b bool) int {
	if b {
		return 1
	}
	return 0
}
