package irgen

import (
	"fmt"
	"strings"

	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/cerr"
	"github.com/mna/sysyc/lang/symtab"
)

// access is the outcome of walking an LValue's index chain: the address of
// the designated storage (or the pointer value itself for a bare pointer
// parameter) and how many array dimensions the indices left uncovered.
type access struct {
	prelude   string
	addr      string // "@name" or "%n"
	remaining int    // 0 means the address designates a scalar
	loaded    bool   // addr is a pointer value, not the address of one (bare Ptr)
}

// lvalValue emits lv in value position. A fully indexed element loads; a
// partially indexed array decays to an element pointer when the context is
// a pointer argument, and is an error otherwise.
func (em *emitter) lvalValue(lv *ast.LValExpr) (string, result, error) {
	wantPtr := em.inPtrArg

	b, err := em.env.MustLookup(lv.Name)
	if err != nil {
		return "", result{}, err
	}

	if c, ok := b.(symtab.ConstInt); ok {
		if len(lv.Indices) > 0 {
			return "", result{}, cerr.Errorf(cerr.KindMismatch, "%s is not an array", lv.Name)
		}
		if wantPtr {
			return "", result{}, cerr.Errorf(cerr.KindMismatch, "%s is a constant, not an array", lv.Name)
		}
		return "", imm(c.Val), nil
	}

	acc, err := em.index(lv, b)
	if err != nil {
		return "", result{}, err
	}

	if acc.remaining == 0 {
		if wantPtr {
			return "", result{}, cerr.Errorf(cerr.KindMismatch,
				"%s designates a scalar where an array is expected", lv.Name)
		}
		t := em.newTemp()
		return acc.prelude + fmt.Sprintf("  %s = load %s\n", t.operand(), acc.addr), t, nil
	}

	// a sub-array (or whole array/pointer) only makes sense where the
	// callee expects a pointer
	if !wantPtr {
		return "", result{}, cerr.Errorf(cerr.KindMismatch, "%s designates an array, not a value", lv.Name)
	}
	if acc.loaded {
		// a bare pointer parameter is already an element pointer
		t := mustTemp(acc.addr)
		return acc.prelude, t, nil
	}
	t := em.newTemp()
	return acc.prelude + fmt.Sprintf("  %s = getelemptr %s, 0\n", t.operand(), acc.addr), t, nil
}

// lvalAddr emits lv in assignment position and returns the address of the
// scalar cell to store into.
func (em *emitter) lvalAddr(lv *ast.LValExpr) (prelude, addr string, err error) {
	b, err := em.env.MustLookup(lv.Name)
	if err != nil {
		return "", "", err
	}
	if _, ok := b.(symtab.ConstInt); ok {
		return "", "", cerr.Errorf(cerr.KindMismatch, "cannot assign to constant %s", lv.Name)
	}

	acc, err := em.index(lv, b)
	if err != nil {
		return "", "", err
	}
	if acc.remaining != 0 || acc.loaded {
		return "", "", cerr.Errorf(cerr.KindMismatch, "cannot assign to array %s", lv.Name)
	}
	return acc.prelude, acc.addr, nil
}

// index resolves the storage designated by lv over its binding, emitting
// the getelemptr/getptr chain for the index expressions.
func (em *emitter) index(lv *ast.LValExpr, b symtab.Binding) (access, error) {
	switch b := b.(type) {
	case symtab.IntVar:
		if len(lv.Indices) > 0 {
			return access{}, cerr.Errorf(cerr.KindMismatch, "%s is not an array", lv.Name)
		}
		return access{addr: "@" + b.Name}, nil

	case symtab.Array:
		if len(lv.Indices) > len(b.Dims) {
			return access{}, cerr.Errorf(cerr.KindMismatch, "too many indices for array %s", lv.Name)
		}
		var sb strings.Builder
		cur := "@" + b.Name
		for _, idx := range lv.Indices {
			prelude, res, err := em.indexOperand(idx)
			if err != nil {
				return access{}, err
			}
			sb.WriteString(prelude)
			t := em.newTemp()
			fmt.Fprintf(&sb, "  %s = getelemptr %s, %s\n", t.operand(), cur, res.operand())
			cur = t.operand()
		}
		return access{
			prelude:   sb.String(),
			addr:      cur,
			remaining: len(b.Dims) - len(lv.Indices),
		}, nil

	case symtab.Ptr:
		// the parameter slot holds the pointer; load it first
		var sb strings.Builder
		t := em.newTemp()
		fmt.Fprintf(&sb, "  %s = load @%s\n", t.operand(), b.Name)
		cur := t.operand()

		// one indexable level for the pointer itself, plus the array dims
		total := len(b.Dims) + 1
		if len(lv.Indices) > total {
			return access{}, cerr.Errorf(cerr.KindMismatch, "too many indices for %s", lv.Name)
		}
		for i, idx := range lv.Indices {
			prelude, res, err := em.indexOperand(idx)
			if err != nil {
				return access{}, err
			}
			sb.WriteString(prelude)
			nt := em.newTemp()
			// the first index walks the sequence the pointer addresses; the
			// rest unwrap the array type each step uncovers
			op := "getelemptr"
			if i == 0 {
				op = "getptr"
			}
			fmt.Fprintf(&sb, "  %s = %s %s, %s\n", nt.operand(), op, cur, res.operand())
			cur = nt.operand()
		}
		return access{
			prelude:   sb.String(),
			addr:      cur,
			remaining: total - len(lv.Indices),
			loaded:    len(lv.Indices) == 0,
		}, nil

	case symtab.Func:
		return access{}, cerr.Errorf(cerr.KindMismatch, "%s is a function", lv.Name)
	}
	return access{}, cerr.Errorf(cerr.KindMismatch, "%s cannot be indexed", lv.Name)
}

// indexOperand emits an index expression in scalar context.
func (em *emitter) indexOperand(idx ast.Expr) (string, result, error) {
	prelude, res, err := em.scalarExpr(idx)
	if err != nil {
		return "", result{}, err
	}
	if !res.hasValue() {
		return "", result{}, cerr.Errorf(cerr.KindMismatch, "index produces no value")
	}
	return prelude, res, nil
}

// mustTemp converts a %n operand string back to its result; it only ever
// receives temporaries produced by this emitter.
func mustTemp(op string) result {
	var n int
	if _, err := fmt.Sscanf(op, "%%%d", &n); err != nil {
		panic("irgen: not a temporary: " + op)
	}
	return temp(n)
}
