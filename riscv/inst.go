package riscv

import (
	"fmt"
	"strings"

	"github.com/mna/sysyc/koopa"
	"github.com/mna/sysyc/lang/cerr"
)

// fits12 reports whether off fits the signed 12-bit immediate of lw/sw/addi.
func fits12(off int) bool {
	return off >= -2048 && off <= 2047
}

// loadFrom emits "lw reg, off(sp)", going through t3 when the offset
// exceeds the immediate range.
func (fe *funcEmitter) loadFrom(sb *strings.Builder, reg string, off int) {
	if fits12(off) {
		fmt.Fprintf(sb, "  lw %s, %d(sp)\n", reg, off)
		return
	}
	fmt.Fprintf(sb, "  li t3, %d\n", off)
	sb.WriteString("  add t3, t3, sp\n")
	fmt.Fprintf(sb, "  lw %s, 0(t3)\n", reg)
}

// storeTo emits "sw reg, off(sp)" with the same large-offset fallback.
func (fe *funcEmitter) storeTo(sb *strings.Builder, reg string, off int) {
	if fits12(off) {
		fmt.Fprintf(sb, "  sw %s, %d(sp)\n", reg, off)
		return
	}
	fmt.Fprintf(sb, "  li t3, %d\n", off)
	sb.WriteString("  add t3, t3, sp\n")
	fmt.Fprintf(sb, "  sw %s, 0(t3)\n", reg)
}

// materialize puts the value of v into reg: literals load with li,
// allocs and globals yield their address, computed values reload from
// their frame slot, and argument references read the incoming registers
// or the caller's stack.
func (fe *funcEmitter) materialize(sb *strings.Builder, v *koopa.Value, reg string) error {
	switch v.Kind {
	case koopa.Integer:
		fmt.Fprintf(sb, "  li %s, %d\n", reg, v.Int)

	case koopa.Alloc:
		off := fe.fr.offsets[v]
		if fits12(off) {
			fmt.Fprintf(sb, "  addi %s, sp, %d\n", reg, off)
		} else {
			fmt.Fprintf(sb, "  li %s, %d\n", reg, off)
			fmt.Fprintf(sb, "  add %s, %s, sp\n", reg, reg)
		}

	case koopa.GlobalAlloc:
		fmt.Fprintf(sb, "  la %s, %s\n", reg, fe.globals[v])

	case koopa.FuncArgRef:
		if v.ArgIdx < 8 {
			fmt.Fprintf(sb, "  mv %s, a%d\n", reg, v.ArgIdx)
		} else {
			// the caller left it just above our frame
			fe.loadFrom(sb, reg, fe.fr.size+(v.ArgIdx-8)*4)
		}

	case koopa.Load, koopa.Binary, koopa.GetElemPtr, koopa.GetPtr, koopa.Call:
		off, ok := fe.fr.offsets[v]
		if !ok {
			return cerr.Errorf(cerr.IRShape, "value %s has no frame slot", v.Name)
		}
		fe.loadFrom(sb, reg, off)

	default:
		return cerr.Errorf(cerr.IRShape, "cannot materialize value of kind %s", v.Kind)
	}
	return nil
}

// inst lowers a single instruction into the body.
func (fe *funcEmitter) inst(v *koopa.Value) error {
	sb := &fe.body
	switch v.Kind {
	case koopa.Alloc:
		// space was reserved by the frame pass; no code
		return nil

	case koopa.Load:
		src := v.Args[0]
		switch src.Kind {
		case koopa.Alloc:
			fe.loadFrom(sb, "t5", fe.fr.offsets[src])
		case koopa.GlobalAlloc:
			fmt.Fprintf(sb, "  la t5, %s\n", fe.globals[src])
			sb.WriteString("  lw t5, 0(t5)\n")
		default:
			// a computed pointer: its slot holds the address
			if err := fe.materialize(sb, src, "t5"); err != nil {
				return err
			}
			sb.WriteString("  lw t5, 0(t5)\n")
		}
		fe.storeTo(sb, "t5", fe.fr.offsets[v])
		return nil

	case koopa.Store:
		val, dst := v.Args[0], v.Args[1]
		if err := fe.materialize(sb, val, "t5"); err != nil {
			return err
		}
		switch dst.Kind {
		case koopa.Alloc:
			fe.storeTo(sb, "t5", fe.fr.offsets[dst])
		case koopa.GlobalAlloc:
			fmt.Fprintf(sb, "  la t6, %s\n", fe.globals[dst])
			sb.WriteString("  sw t5, 0(t6)\n")
		default:
			if err := fe.materialize(sb, dst, "t6"); err != nil {
				return err
			}
			sb.WriteString("  sw t5, 0(t6)\n")
		}
		return nil

	case koopa.Binary:
		return fe.binary(v)

	case koopa.Branch:
		if err := fe.materialize(sb, v.Args[0], "t5"); err != nil {
			return err
		}
		fmt.Fprintf(sb, "  bnez t5, %s\n", fe.label(v.Blocks[0]))
		fmt.Fprintf(sb, "  j %s\n", fe.label(v.Blocks[1]))
		return nil

	case koopa.Jump:
		fmt.Fprintf(sb, "  j %s\n", fe.label(v.Blocks[0]))
		return nil

	case koopa.Return:
		if len(v.Args) > 0 {
			if err := fe.materialize(sb, v.Args[0], "a0"); err != nil {
				return err
			}
		}
		fmt.Fprintf(sb, "  j %s_end\n", fe.fn.Name)
		return nil

	case koopa.Call:
		return fe.call(v)

	case koopa.GetElemPtr, koopa.GetPtr:
		return fe.address(v)
	}
	return cerr.Errorf(cerr.IRShape, "cannot lower instruction of kind %s", v.Kind)
}

// binary lowers a two-operand instruction: both operands to scratch
// registers, compute into t5, store to the slot.
func (fe *funcEmitter) binary(v *koopa.Value) error {
	sb := &fe.body
	if err := fe.materialize(sb, v.Args[0], "t5"); err != nil {
		return err
	}
	if err := fe.materialize(sb, v.Args[1], "t6"); err != nil {
		return err
	}

	switch v.Op {
	case "add", "sub", "mul", "and", "or":
		fmt.Fprintf(sb, "  %s t5, t5, t6\n", v.Op)
	case "div":
		sb.WriteString("  div t5, t5, t6\n")
	case "mod":
		sb.WriteString("  rem t5, t5, t6\n")
	case "lt":
		sb.WriteString("  slt t5, t5, t6\n")
	case "gt":
		sb.WriteString("  sgt t5, t5, t6\n")
	case "eq":
		sb.WriteString("  xor t5, t5, t6\n")
		sb.WriteString("  seqz t5, t5\n")
	case "ne":
		sb.WriteString("  xor t5, t5, t6\n")
		sb.WriteString("  snez t5, t5\n")
	case "le":
		// less-than or equal, without a branch
		sb.WriteString("  slt t4, t5, t6\n")
		sb.WriteString("  xor t3, t5, t6\n")
		sb.WriteString("  seqz t3, t3\n")
		sb.WriteString("  or t5, t4, t3\n")
	case "ge":
		sb.WriteString("  sgt t4, t5, t6\n")
		sb.WriteString("  xor t3, t5, t6\n")
		sb.WriteString("  seqz t3, t3\n")
		sb.WriteString("  or t5, t4, t3\n")
	default:
		return cerr.Errorf(cerr.IRShape, "cannot lower binary op %q", v.Op)
	}

	fe.storeTo(sb, "t5", fe.fr.offsets[v])
	return nil
}

// call marshals arguments into a0-a7 and the bottom of the frame for the
// overflow, emits the call, and stores the returned a0 when the call
// produces a value.
func (fe *funcEmitter) call(v *koopa.Value) error {
	sb := &fe.body
	for i, arg := range v.Args {
		if i < 8 {
			if err := fe.materialize(sb, arg, fmt.Sprintf("a%d", i)); err != nil {
				return err
			}
			continue
		}
		if err := fe.materialize(sb, arg, "t5"); err != nil {
			return err
		}
		fe.storeTo(sb, "t5", (i-8)*4)
	}
	fmt.Fprintf(sb, "  call %s\n", v.Callee)
	if v.Name != "" {
		fe.storeTo(sb, "a0", fe.fr.offsets[v])
	}
	return nil
}

// address lowers getelemptr/getptr: base address plus index times the
// element stride.
func (fe *funcEmitter) address(v *koopa.Value) error {
	sb := &fe.body
	if err := fe.materialize(sb, v.Args[0], "t5"); err != nil {
		return err
	}
	if err := fe.materialize(sb, v.Args[1], "t6"); err != nil {
		return err
	}
	stride := v.Type.Elem.Size()
	fmt.Fprintf(sb, "  li t4, %d\n", stride)
	sb.WriteString("  mul t6, t6, t4\n")
	sb.WriteString("  add t5, t5, t6\n")
	fe.storeTo(sb, "t5", fe.fr.offsets[v])
	return nil
}
