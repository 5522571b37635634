// Package fold implements compile-time evaluation of expressions that the
// language requires to be integer constants: array dimensions, global
// initializers and const bindings.
package fold

import (
	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/cerr"
	"github.com/mna/sysyc/lang/symtab"
	"github.com/mna/sysyc/lang/token"
)

// Expr evaluates e to an i32. It fails if any name in e does not resolve to
// a compile-time constant binding, or on division/modulo by zero. Arithmetic
// is signed 32-bit with two's-complement wrapping; division truncates toward
// zero and the remainder keeps the sign of the dividend (the Go semantics,
// which match the source language). Logical && and || operate on the already
// evaluated values: constants are side-effect free, so short-circuiting has
// nothing to skip.
func Expr(env *symtab.Env, e ast.Expr) (int32, error) {
	switch e := e.(type) {
	case *ast.NumberExpr:
		return e.Val, nil

	case *ast.LValExpr:
		b, err := env.MustLookup(e.Name)
		if err != nil {
			return 0, err
		}
		c, ok := b.(symtab.ConstInt)
		if !ok {
			return 0, cerr.Errorf(cerr.ConstNotConst, "%s is not a compile-time constant", e.Name)
		}
		if len(e.Indices) > 0 {
			return 0, cerr.Errorf(cerr.KindMismatch, "%s is not an array", e.Name)
		}
		return c.Val, nil

	case *ast.UnaryExpr:
		v, err := Expr(env, e.X)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case token.PLUS:
			return v, nil
		case token.MINUS:
			return -v, nil
		case token.NOT:
			return b2i(v == 0), nil
		}
		return 0, cerr.Errorf(cerr.ConstNotConst, "invalid unary operator %s", e.Op)

	case *ast.BinaryExpr:
		return binary(env, e)

	case *ast.CallExpr:
		return 0, cerr.Errorf(cerr.ConstNotConst, "call to %s in constant expression", e.Func)
	}
	return 0, cerr.Errorf(cerr.ConstNotConst, "expression is not a compile-time constant")
}

func binary(env *symtab.Env, e *ast.BinaryExpr) (int32, error) {
	l, err := Expr(env, e.X)
	if err != nil {
		return 0, err
	}
	r, err := Expr(env, e.Y)
	if err != nil {
		return 0, err
	}

	switch e.Op {
	case token.PLUS:
		return l + r, nil
	case token.MINUS:
		return l - r, nil
	case token.STAR:
		return l * r, nil
	case token.SLASH:
		if r == 0 {
			return 0, cerr.Errorf(cerr.ConstNotConst, "division by zero in constant expression")
		}
		return l / r, nil
	case token.PERCENT:
		if r == 0 {
			return 0, cerr.Errorf(cerr.ConstNotConst, "modulo by zero in constant expression")
		}
		return l % r, nil
	case token.EQL:
		return b2i(l == r), nil
	case token.NEQ:
		return b2i(l != r), nil
	case token.LT:
		return b2i(l < r), nil
	case token.GT:
		return b2i(l > r), nil
	case token.LE:
		return b2i(l <= r), nil
	case token.GE:
		return b2i(l >= r), nil
	case token.AND_AND:
		return b2i(l != 0 && r != 0), nil
	case token.OR_OR:
		return b2i(l != 0 || r != 0), nil
	}
	return 0, cerr.Errorf(cerr.ConstNotConst, "invalid binary operator %s", e.Op)
}

// Dims folds each array dimension expression to a positive i32.
func Dims(env *symtab.Env, dims []ast.Expr) ([]int32, error) {
	if len(dims) == 0 {
		return nil, nil
	}
	res := make([]int32, len(dims))
	for i, d := range dims {
		v, err := Expr(env, d)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, cerr.Errorf(cerr.KindMismatch, "array dimension must be positive, got %d", v)
		}
		res[i] = v
	}
	return res, nil
}

func b2i(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
