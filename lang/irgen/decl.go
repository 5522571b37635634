package irgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/cerr"
	"github.com/mna/sysyc/lang/fold"
	"github.com/mna/sysyc/lang/symtab"
	"golang.org/x/exp/slices"
)

func (em *emitter) foldDims(dims []ast.Expr) ([]int32, error) {
	return fold.Dims(em.env, dims)
}

// arrayType builds the KoopaIR aggregate type for the given dimensions,
// outermost first in dims, outermost last in the text: [3][2] of i32 is
// [[i32, 2], 3].
func arrayType(dims []int32) string {
	typ := "i32"
	rev := slices.Clone(dims)
	slices.Reverse(rev)
	for _, d := range rev {
		typ = fmt.Sprintf("[%s, %d]", typ, d)
	}
	return typ
}

// globalDecl emits the global allocations for a declaration. Constant
// scalars produce no IR at all, only a binding.
func (em *emitter) globalDecl(d *ast.Decl) (string, error) {
	var sb strings.Builder
	for _, def := range d.Defs {
		dims, err := em.foldDims(def.Dims)
		if err != nil {
			return "", err
		}

		if len(dims) == 0 && d.IsConst {
			v, err := em.foldScalarInit(def)
			if err != nil {
				return "", err
			}
			if err := em.env.Declare(def.Name, symtab.ConstInt{Val: v}); err != nil {
				return "", err
			}
			continue
		}

		name := def.Name + "_global"
		if len(dims) == 0 {
			// global scalar variable: the initializer must fold
			init := "zeroinit"
			if def.Init != nil {
				v, err := em.foldScalarInit(def)
				if err != nil {
					return "", err
				}
				init = strconv.Itoa(int(v))
			}
			fmt.Fprintf(&sb, "global @%s = alloc i32, %s\n", name, init)
			if err := em.env.Declare(def.Name, symtab.IntVar{Name: name}); err != nil {
				return "", err
			}
			continue
		}

		// global array, const or not: a literal aggregate when initialized,
		// zeroinit otherwise
		init := "zeroinit"
		if def.Init != nil {
			if !def.Init.IsList() {
				return "", cerr.Errorf(cerr.KindMismatch, "%s requires an aggregate initializer", def.Name)
			}
			flat, err := em.flatten(def.Init.List, dims)
			if err != nil {
				return "", err
			}
			vals := make([]int32, len(flat))
			for i, e := range flat {
				if e == nil {
					continue
				}
				v, err := fold.Expr(em.env, e)
				if err != nil {
					return "", err
				}
				vals[i] = v
			}
			init = aggregate(vals, dims)
		}
		fmt.Fprintf(&sb, "global @%s = alloc %s, %s\n", name, arrayType(dims), init)
		if err := em.env.Declare(def.Name, symtab.Array{Name: name, Dims: dims}); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// foldScalarInit folds the single-expression initializer of def.
func (em *emitter) foldScalarInit(def *ast.Def) (int32, error) {
	if def.Init == nil {
		return 0, cerr.Errorf(cerr.ConstNotConst, "%s requires an initializer", def.Name)
	}
	if def.Init.IsList() {
		return 0, cerr.Errorf(cerr.KindMismatch, "%s is a scalar, not an aggregate", def.Name)
	}
	return fold.Expr(em.env, def.Init.Expr)
}

// localDecl emits the allocations and initializing stores for a local
// declaration.
func (em *emitter) localDecl(d *ast.Decl) error {
	for _, def := range d.Defs {
		dims, err := em.foldDims(def.Dims)
		if err != nil {
			return err
		}

		if len(dims) == 0 {
			if d.IsConst {
				v, err := em.foldScalarInit(def)
				if err != nil {
					return err
				}
				if err := em.env.Declare(def.Name, symtab.ConstInt{Val: v}); err != nil {
					return err
				}
				continue
			}

			name := em.newVar(def.Name)
			em.codef("  @%s = alloc i32\n", name)
			if def.Init != nil {
				if def.Init.IsList() {
					return cerr.Errorf(cerr.KindMismatch, "%s is a scalar, not an aggregate", def.Name)
				}
				prelude, res, err := em.scalarExpr(def.Init.Expr)
				if err != nil {
					return err
				}
				if !res.hasValue() {
					return cerr.Errorf(cerr.KindMismatch, "expression produces no value")
				}
				em.code.WriteString(prelude)
				em.codef("  store %s, @%s\n", res.operand(), name)
			}
			if err := em.env.Declare(def.Name, symtab.IntVar{Name: name}); err != nil {
				return err
			}
			continue
		}

		// local array
		name := em.newVar(def.Name)
		em.codef("  @%s = alloc %s\n", name, arrayType(dims))
		if def.Init != nil {
			if !def.Init.IsList() {
				return cerr.Errorf(cerr.KindMismatch, "%s requires an aggregate initializer", def.Name)
			}
			flat, err := em.flatten(def.Init.List, dims)
			if err != nil {
				return err
			}
			if err := em.fillArray(name, dims, flat, d.IsConst); err != nil {
				return err
			}
		}
		if err := em.env.Declare(def.Name, symtab.Array{Name: name, Dims: dims}); err != nil {
			return err
		}
	}
	return nil
}

// fillArray stores every flattened element of a local array, zeros
// included: stack storage is not implicitly cleared. Constant arrays fold
// each element so a non-constant leaf is caught here.
func (em *emitter) fillArray(name string, dims []int32, flat []ast.Expr, isConst bool) error {
	// row-major strides, so the flat index maps back to one index per dim
	strides := make([]int, len(dims))
	stride := 1
	for j := len(dims) - 1; j >= 0; j-- {
		strides[j] = stride
		stride *= int(dims[j])
	}

	for i, e := range flat {
		var op string
		switch {
		case e == nil:
			op = "0"
		case isConst:
			v, err := fold.Expr(em.env, e)
			if err != nil {
				return err
			}
			op = strconv.Itoa(int(v))
		default:
			prelude, res, err := em.scalarExpr(e)
			if err != nil {
				return err
			}
			if !res.hasValue() {
				return cerr.Errorf(cerr.KindMismatch, "expression produces no value")
			}
			em.code.WriteString(prelude)
			op = res.operand()
		}

		// chain of getelemptr from the aggregate down to the element
		cur := "@" + name
		rem := i
		for j := range dims {
			t := em.newTemp()
			em.codef("  %s = getelemptr %s, %d\n", t.operand(), cur, rem/strides[j])
			rem %= strides[j]
			cur = t.operand()
		}
		em.codef("  store %s, %s\n", op, cur)
	}
	return nil
}

// flatten lays out a possibly ragged initializer list over the declared
// dimensions, producing one entry per element in row-major order; nil
// entries are zero fill. A sub-list consumes one whole sub-aggregate at its
// nesting level with its own fresh cursor; integer leaves flow through the
// shape until a sub-list or the end of the row stops them.
func (em *emitter) flatten(items []*ast.InitVal, dims []int32) ([]ast.Expr, error) {
	pos := 0
	res, err := em.flattenAt(items, &pos, dims)
	if err != nil {
		return nil, err
	}
	if pos < len(items) {
		if items[pos].IsList() && len(dims) == 1 {
			return nil, cerr.Errorf(cerr.KindMismatch, "aggregate initializer where a scalar element is expected")
		}
		return nil, cerr.Errorf(cerr.BadInitializer, "too many initializer values")
	}
	return res, nil
}

func (em *emitter) flattenAt(items []*ast.InitVal, pos *int, dims []int32) ([]ast.Expr, error) {
	total := 1
	for _, d := range dims {
		total *= int(d)
	}
	res := make([]ast.Expr, 0, total)

	if len(dims) == 1 {
		// innermost row: consume leaves until the row is filled or a
		// sub-list stops it; the remainder is zero fill
		for len(res) < total && *pos < len(items) {
			it := items[*pos]
			if it.IsList() {
				break
			}
			res = append(res, it.Expr)
			*pos++
		}
		return pad(res, total), nil
	}

	sub := dims[1:]
	for len(res) < total && *pos < len(items) {
		it := items[*pos]
		if it.IsList() {
			// a nested list is self-contained: it fills exactly one
			// sub-aggregate, zero-padded internally
			*pos++
			inner, err := em.flatten(it.List, sub)
			if err != nil {
				return nil, err
			}
			res = append(res, inner...)
		} else {
			// leaves flow through the sub-aggregate's shape
			inner, err := em.flattenAt(items, pos, sub)
			if err != nil {
				return nil, err
			}
			res = append(res, inner...)
		}
	}
	return pad(res, total), nil
}

func pad(res []ast.Expr, total int) []ast.Expr {
	for len(res) < total {
		res = append(res, nil)
	}
	return res
}

// aggregate renders the folded values as a nested literal aggregate
// matching the dimensions.
func aggregate(vals []int32, dims []int32) string {
	if len(dims) == 1 {
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = strconv.Itoa(int(v))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	sub := dims[1:]
	subTotal := 1
	for _, d := range sub {
		subTotal *= int(d)
	}
	parts := make([]string, dims[0])
	for i := range parts {
		parts[i] = aggregate(vals[i*subTotal:(i+1)*subTotal], sub)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
