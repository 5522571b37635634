// Package ast defines the abstract syntax tree produced by the parser for a
// SysY compilation unit: global declarations and function definitions, the
// statement and expression forms of §3 of the specification, and nothing
// else — there is no separate "typed AST" stage, since SysY has a single
// scalar type (i32) and the only type-like information a node carries is
// its array shape.
package ast

import (
	"fmt"

	"github.com/mna/sysyc/lang/token"
)

// Node represents any node in the AST.
type Node interface {
	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)

	// Walk enters each child node inside itself, to implement the Visitor
	// pattern.
	Walk(v Visitor)
}

// Expr represents an expression in the AST.
type Expr interface {
	Node
	expr()
}

// Stmt represents a statement in the AST.
type Stmt interface {
	Node

	// BlockEnding reports whether the statement is a control-flow terminator
	// (return, break, continue). The parser still accepts statements after it
	// in the same block; they are unreachable.
	BlockEnding() bool
}

// RetKind is the return kind of a function definition.
type RetKind int

const (
	RetInt RetKind = iota
	RetVoid
)

func (k RetKind) String() string {
	if k == RetVoid {
		return "void"
	}
	return "int"
}

// CompUnit is the root of the AST: an ordered sequence of global items.
type CompUnit struct {
	Items []GlobalItem
}

func (n *CompUnit) Format(f fmt.State, verb rune) {
	format(f, verb, n, "compunit", map[string]int{"items": len(n.Items)})
}
func (n *CompUnit) Span() (start, end token.Pos) {
	if len(n.Items) == 0 {
		return token.NoPos, token.NoPos
	}
	start, _ = n.Items[0].Span()
	_, end = n.Items[len(n.Items)-1].Span()
	return start, end
}

func (n *CompUnit) Walk(v Visitor) {
	for _, it := range n.Items {
		Walk(v, it)
	}
}

// GlobalItem is either a *FuncDef or a *Decl at file scope.
type GlobalItem interface {
	Node
	globalItem()
}

// FuncDef is a function definition: return kind, name, optional parameter
// list and a body block.
type FuncDef struct {
	Ret     RetKind
	RetPos  token.Pos
	Name    string
	NamePos token.Pos
	Params  []*FuncFParam
	Body    *Block
	EndPos  token.Pos
}

func (n *FuncDef) globalItem() {}
func (n *FuncDef) Format(f fmt.State, verb rune) {
	format(f, verb, n, "funcdef "+n.Ret.String()+" "+n.Name, map[string]int{"params": len(n.Params)})
}
func (n *FuncDef) Span() (start, end token.Pos) { return n.RetPos, n.EndPos }
func (n *FuncDef) Walk(v Visitor) {
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.Body != nil {
		Walk(v, n.Body)
	}
}

// FuncFParam is a single formal parameter. Per §3: an empty Dims list means
// a scalar int; IsArray with zero ExtraDims means a bare pointer decayed
// from a 1-D array actual; IsArray with N ExtraDims means a pointer to an
// (N)-dimensional array, decayed from an (N+1)-dimensional array actual.
type FuncFParam struct {
	Name      string
	NamePos   token.Pos
	IsArray   bool
	ExtraDims []Expr // dimensions after the first (empty) one; only valid when IsArray
	EndPos    token.Pos
}

func (n *FuncFParam) Format(f fmt.State, verb rune) {
	format(f, verb, n, "param "+n.Name, map[string]int{"extradims": len(n.ExtraDims)})
}
func (n *FuncFParam) Span() (start, end token.Pos) { return n.NamePos, n.EndPos }
func (n *FuncFParam) Walk(v Visitor) {
	for _, d := range n.ExtraDims {
		Walk(v, d)
	}
}

// Block is an ordered sequence of statements, including declarations
// (represented as *DeclStmt) interleaved with other statements.
type Block struct {
	Lbrace token.Pos
	Rbrace token.Pos
	Stmts  []Stmt
}

func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *Block) Span() (start, end token.Pos) { return n.Lbrace, n.Rbrace }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

// Decl is a const-decl or var-decl, listing one or more definitions sharing
// the "const" flag.
type Decl struct {
	IsConst bool
	Start   token.Pos
	End     token.Pos
	Defs    []*Def
}

func (n *Decl) globalItem() {}
func (n *Decl) Format(f fmt.State, verb rune) {
	label := "vardecl"
	if n.IsConst {
		label = "constdecl"
	}
	format(f, verb, n, label, map[string]int{"defs": len(n.Defs)})
}
func (n *Decl) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *Decl) Walk(v Visitor) {
	for _, d := range n.Defs {
		Walk(v, d)
	}
}

// Def is a single VarDef or ConstDef: a name, its dimension list (empty for
// a scalar), and an optional initializer (required for const-defs, which
// the parser enforces).
type Def struct {
	Name    string
	NamePos token.Pos
	Dims    []Expr // constant-foldable dimension expressions, outermost first
	Init    *InitVal
	End     token.Pos
}

func (n *Def) Format(f fmt.State, verb rune) {
	format(f, verb, n, "def "+n.Name, map[string]int{"dims": len(n.Dims)})
}
func (n *Def) Span() (start, end token.Pos) { return n.NamePos, n.End }
func (n *Def) Walk(v Visitor) {
	for _, d := range n.Dims {
		Walk(v, d)
	}
	if n.Init != nil {
		Walk(v, n.Init)
	}
}

// InitVal is either a single expression or an ordered, possibly ragged,
// list of InitVal. Exactly one of Expr and List is meaningful: Expr != nil
// for a leaf, List != nil (possibly empty, for "{}") otherwise.
type InitVal struct {
	Start token.Pos
	End   token.Pos
	Expr  Expr
	List  []*InitVal
}

// IsList reports whether this InitVal is an aggregate (possibly empty list)
// rather than a single leaf expression.
func (n *InitVal) IsList() bool { return n.Expr == nil }

func (n *InitVal) Format(f fmt.State, verb rune) {
	if n.IsList() {
		format(f, verb, n, "initlist", map[string]int{"items": len(n.List)})
		return
	}
	format(f, verb, n, "initexpr", nil)
}
func (n *InitVal) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *InitVal) Walk(v Visitor) {
	if n.Expr != nil {
		Walk(v, n.Expr)
		return
	}
	for _, it := range n.List {
		Walk(v, it)
	}
}
