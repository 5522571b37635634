package irgen

import (
	"fmt"
	"strings"

	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/cerr"
	"github.com/mna/sysyc/lang/symtab"
	"github.com/mna/sysyc/lang/token"
)

// binOps maps source operators to KoopaIR binary instruction names.
var binOps = map[token.Token]string{
	token.PLUS:    "add",
	token.MINUS:   "sub",
	token.STAR:    "mul",
	token.SLASH:   "div",
	token.PERCENT: "mod",
	token.EQL:     "eq",
	token.NEQ:     "ne",
	token.LT:      "lt",
	token.GT:      "gt",
	token.LE:      "le",
	token.GE:      "ge",
}

// expr emits the instructions computing e and returns them as a prelude
// along with the result designating the computed value.
func (em *emitter) expr(e ast.Expr) (string, result, error) {
	switch e := e.(type) {
	case *ast.NumberExpr:
		return "", imm(e.Val), nil

	case *ast.UnaryExpr:
		return em.unary(e)

	case *ast.BinaryExpr:
		if e.Op == token.AND_AND || e.Op == token.OR_OR {
			return em.logical(e)
		}
		return em.binary(e)

	case *ast.LValExpr:
		return em.lvalValue(e)

	case *ast.CallExpr:
		return em.call(e)
	}
	return "", result{}, cerr.Errorf(cerr.KindMismatch, "unknown expression %v", e)
}

// scalarExpr is expr with the pointer-argument flag cleared: operand
// positions (indices, conditions, arithmetic operands) always want the
// scalar value of an LValue, whatever the enclosing context wanted.
func (em *emitter) scalarExpr(e ast.Expr) (string, result, error) {
	saved := em.inPtrArg
	em.inPtrArg = false
	prelude, res, err := em.expr(e)
	em.inPtrArg = saved
	return prelude, res, err
}

func (em *emitter) unary(e *ast.UnaryExpr) (string, result, error) {
	prelude, x, err := em.scalarExpr(e.X)
	if err != nil {
		return "", result{}, err
	}
	if !x.hasValue() {
		return "", result{}, cerr.Errorf(cerr.KindMismatch, "expression produces no value")
	}

	// immediates fold in place, no temporary needed
	if x.kind == resImm {
		switch e.Op {
		case token.PLUS:
			return prelude, x, nil
		case token.MINUS:
			return prelude, imm(-x.imm), nil
		case token.NOT:
			if x.imm == 0 {
				return prelude, imm(1), nil
			}
			return prelude, imm(0), nil
		}
	}

	switch e.Op {
	case token.PLUS:
		return prelude, x, nil
	case token.MINUS:
		t := em.newTemp()
		return prelude + fmt.Sprintf("  %s = sub 0, %s\n", t.operand(), x.operand()), t, nil
	case token.NOT:
		t := em.newTemp()
		return prelude + fmt.Sprintf("  %s = eq %s, 0\n", t.operand(), x.operand()), t, nil
	}
	return "", result{}, cerr.Errorf(cerr.KindMismatch, "invalid unary operator %s", e.Op)
}

func (em *emitter) binary(e *ast.BinaryExpr) (string, result, error) {
	op, ok := binOps[e.Op]
	if !ok {
		return "", result{}, cerr.Errorf(cerr.KindMismatch, "invalid binary operator %s", e.Op)
	}

	lp, l, err := em.scalarExpr(e.X)
	if err != nil {
		return "", result{}, err
	}
	rp, r, err := em.scalarExpr(e.Y)
	if err != nil {
		return "", result{}, err
	}
	if !l.hasValue() || !r.hasValue() {
		return "", result{}, cerr.Errorf(cerr.KindMismatch, "expression produces no value")
	}

	t := em.newTemp()
	inst := fmt.Sprintf("  %s = %s %s, %s\n", t.operand(), op, l.operand(), r.operand())
	return lp + rp + inst, t, nil
}

// logical emits the short-circuiting form of && and ||. The boolean result
// goes through a stack cell so both paths merge on a plain load: a flat
// bit-or would evaluate both sides and change observable behavior when the
// right side calls a function.
func (em *emitter) logical(e *ast.BinaryExpr) (string, result, error) {
	var sb strings.Builder

	cellIdent := "land"
	if e.Op == token.OR_OR {
		cellIdent = "lor"
	}
	cell := "@" + em.newVar(cellIdent)
	fmt.Fprintf(&sb, "  %s = alloc i32\n", cell)

	lp, l, err := em.scalarExpr(e.X)
	if err != nil {
		return "", result{}, err
	}
	if !l.hasValue() {
		return "", result{}, cerr.Errorf(cerr.KindMismatch, "expression produces no value")
	}
	sb.WriteString(lp)

	trueL, falseL, endL := em.newFlag(), em.newFlag(), em.newFlag()
	fmt.Fprintf(&sb, "  br %s, %%%s, %%%s\n", l.operand(), trueL, falseL)

	// evalRHS emits the right side normalized to 0/1 and stored in the cell.
	evalRHS := func() error {
		rp, r, err := em.scalarExpr(e.Y)
		if err != nil {
			return err
		}
		if !r.hasValue() {
			return cerr.Errorf(cerr.KindMismatch, "expression produces no value")
		}
		sb.WriteString(rp)
		t1, t2 := em.newTemp(), em.newTemp()
		fmt.Fprintf(&sb, "  %s = or %s, 0\n", t1.operand(), r.operand())
		fmt.Fprintf(&sb, "  %s = ne %s, 0\n", t2.operand(), t1.operand())
		fmt.Fprintf(&sb, "  store %s, %s\n", t2.operand(), cell)
		return nil
	}

	if e.Op == token.OR_OR {
		// left true: result is 1 without touching the right side
		fmt.Fprintf(&sb, "%%%s:\n", trueL)
		fmt.Fprintf(&sb, "  store 1, %s\n", cell)
		fmt.Fprintf(&sb, "  jump %%%s\n", endL)

		fmt.Fprintf(&sb, "%%%s:\n", falseL)
		if err := evalRHS(); err != nil {
			return "", result{}, err
		}
		fmt.Fprintf(&sb, "  jump %%%s\n", endL)
	} else {
		// left true: the right side decides; left false: result is 0
		fmt.Fprintf(&sb, "%%%s:\n", trueL)
		if err := evalRHS(); err != nil {
			return "", result{}, err
		}
		fmt.Fprintf(&sb, "  jump %%%s\n", endL)

		fmt.Fprintf(&sb, "%%%s:\n", falseL)
		fmt.Fprintf(&sb, "  store 0, %s\n", cell)
		fmt.Fprintf(&sb, "  jump %%%s\n", endL)
	}

	fmt.Fprintf(&sb, "%%%s:\n", endL)
	t := em.newTemp()
	fmt.Fprintf(&sb, "  %s = load %s\n", t.operand(), cell)
	return sb.String(), t, nil
}

// call emits a function call. Each actual is emitted with the
// pointer-argument flag of the corresponding formal, so array LValues decay
// to element pointers exactly where the callee expects a pointer.
func (em *emitter) call(e *ast.CallExpr) (string, result, error) {
	b, err := em.env.MustLookup(e.Func)
	if err != nil {
		return "", result{}, err
	}
	fn, ok := b.(symtab.Func)
	if !ok {
		return "", result{}, cerr.Errorf(cerr.KindMismatch, "%s is not a function", e.Func)
	}
	if len(e.Args) != len(fn.PtrParams) {
		return "", result{}, cerr.Errorf(cerr.KindMismatch,
			"%s expects %d arguments, got %d", e.Func, len(fn.PtrParams), len(e.Args))
	}

	var sb strings.Builder
	operands := make([]string, len(e.Args))
	for i, arg := range e.Args {
		em.inPtrArg = fn.PtrParams[i]
		prelude, res, err := em.expr(arg)
		em.inPtrArg = false
		if err != nil {
			return "", result{}, err
		}
		if !res.hasValue() {
			return "", result{}, cerr.Errorf(cerr.KindMismatch, "argument %d of %s produces no value", i+1, e.Func)
		}
		sb.WriteString(prelude)
		operands[i] = res.operand()
	}

	args := strings.Join(operands, ", ")
	if fn.Void {
		fmt.Fprintf(&sb, "  call @%s(%s)\n", fn.Name, args)
		return sb.String(), nothing(), nil
	}
	t := em.newTemp()
	fmt.Fprintf(&sb, "  %s = call @%s(%s)\n", t.operand(), fn.Name, args)
	return sb.String(), t, nil
}
