// Package riscv implements the second translation stage: walking the
// in-memory KoopaIR program and emitting 32-bit RISC-V assembly.
//
// The register model is deliberately minimal: every IR result is stored
// back to its stack slot immediately and operands are reloaded at each use,
// with t3-t6 as scratch. There is no liveness analysis and no allocation;
// the frame is the single source of truth for every value's location.
package riscv

import (
	"fmt"
	"strings"

	"github.com/mna/sysyc/koopa"
	"github.com/mna/sysyc/lang/cerr"
)

const debug = false

func debugf(format string, args ...any) {
	if debug {
		fmt.Printf("riscv: "+format+"\n", args...)
	}
}

// EmitProgram lowers the whole program to assembly text.
func EmitProgram(prog *koopa.Program) (string, error) {
	var sb strings.Builder

	// globals first, each under its own label: global k, in program order,
	// is global_var_<k>
	globalNames := make(map[*koopa.Value]string, len(prog.Globals))
	if len(prog.Globals) > 0 {
		sb.WriteString("  .data\n")
		for k, g := range prog.Globals {
			name := fmt.Sprintf("global_var_%d", k)
			globalNames[g] = name
			fmt.Fprintf(&sb, "  .globl %s\n%s:\n", name, name)
			if err := emitGlobalInit(&sb, g.Init); err != nil {
				return "", err
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("  .text\n")
	for _, fn := range prog.Funcs {
		text, err := emitFunction(fn, globalNames)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// emitGlobalInit renders a global's initializer as .word directives, or a
// single .zero for an all-zeroes aggregate.
func emitGlobalInit(sb *strings.Builder, init *koopa.Value) error {
	switch init.Kind {
	case koopa.Integer:
		fmt.Fprintf(sb, "  .word %d\n", init.Int)
		return nil
	case koopa.ZeroInit:
		if size := init.Type.Size(); size > 4 {
			fmt.Fprintf(sb, "  .zero %d\n", size)
		} else {
			sb.WriteString("  .word 0\n")
		}
		return nil
	case koopa.Aggregate:
		for _, e := range init.Elems {
			if err := emitGlobalInit(sb, e); err != nil {
				return err
			}
		}
		return nil
	}
	return cerr.Errorf(cerr.IRShape, "cannot lower global initializer of kind %s", init.Kind)
}

// funcEmitter carries the per-function lowering state.
type funcEmitter struct {
	fn      *koopa.Function
	fr      *frame
	globals map[*koopa.Value]string
	body    strings.Builder
}

func emitFunction(fn *koopa.Function, globals map[*koopa.Value]string) (string, error) {
	fe := &funcEmitter{fn: fn, fr: buildFrame(fn), globals: globals}
	debugf("fun %s frame=%d", fn.Name, fe.fr.size)

	var sb strings.Builder
	fmt.Fprintf(&sb, "  .globl %s\n%s:\n", fn.Name, fn.Name)

	// prologue: the frame delta goes through t5 because it can exceed the
	// 12-bit immediate range of addi
	if fe.fr.size > 0 {
		fmt.Fprintf(&sb, "  li t5, -%d\n", fe.fr.size)
		sb.WriteString("  add sp, sp, t5\n")
	}
	if fe.fr.hasCall {
		fe.storeTo(&sb, "ra", fe.fr.raOff)
	}

	for _, blk := range fn.Blocks {
		fmt.Fprintf(&fe.body, "%s:\n", fe.label(blk.Name))
		for _, inst := range blk.Insts {
			if err := fe.inst(inst); err != nil {
				return "", err
			}
		}
	}
	sb.WriteString(fe.body.String())

	// single epilogue: every return jumps here
	fmt.Fprintf(&sb, "%s_end:\n", fn.Name)
	if fe.fr.hasCall {
		fe.loadFrom(&sb, "ra", fe.fr.raOff)
	}
	if fe.fr.size > 0 {
		fmt.Fprintf(&sb, "  li t5, %d\n", fe.fr.size)
		sb.WriteString("  add sp, sp, t5\n")
	}
	sb.WriteString("  ret\n")
	return sb.String(), nil
}

// label renders a block label unique across the program.
func (fe *funcEmitter) label(block string) string {
	return fe.fn.Name + "_" + block
}
