// Package irgen implements the first translation stage: walking the AST of
// a SysY compilation unit and emitting the textual KoopaIR program that the
// second stage lowers to assembly.
//
// Emission is a single structural walk in source order. Fresh-name counters
// for temporaries (%0, %1, ...), labels (%flag0, ...) and allocated
// variables (@x_0, ...) are monotonic for the whole unit, which guarantees
// the pairwise-distinct names the IR re-reader requires. Each expression
// emission returns a prelude (the instructions that compute it) and a
// result (nothing, an immediate, a temporary, or a control-flow
// terminator); statements append directly to the current function body.
package irgen

import (
	"fmt"
	"strings"

	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/symtab"
)

const debug = false

// header declares the runtime library; it starts every emitted program.
const header = `decl @getint(): i32
decl @getch(): i32
decl @getarray(*i32): i32
decl @putint(i32)
decl @putch(i32)
decl @putarray(i32, *i32)
decl @starttime()
decl @stoptime()
`

// EmitUnit translates the AST into a textual KoopaIR program. The first
// fatal error aborts the emission.
func EmitUnit(unit *ast.CompUnit) (string, error) {
	em := &emitter{env: symtab.NewEnv()}
	em.env.PredeclareRuntime()

	var out strings.Builder
	out.WriteString(header)

	for _, item := range unit.Items {
		switch item := item.(type) {
		case *ast.Decl:
			text, err := em.globalDecl(item)
			if err != nil {
				return "", err
			}
			out.WriteString(text)

		case *ast.FuncDef:
			text, err := em.funcDef(item)
			if err != nil {
				return "", err
			}
			out.WriteString("\n")
			out.WriteString(text)
		}
	}
	return out.String(), nil
}

// emitter carries the mutable walk state: the symbol environment, the
// fresh-name counters, the innermost loop's label pair and the
// pointer-argument flag consulted by LValue emission.
type emitter struct {
	env *symtab.Env

	tempID int
	varID  int
	flagID int

	// labels of the innermost enclosing loop; empty outside any loop.
	loopEnter string
	loopEnd   string

	// set for the duration of emitting a call actual whose formal is
	// pointer-typed, so array LValues decay instead of loading.
	inPtrArg bool

	// current function body and return kind.
	code    strings.Builder
	retVoid bool
}

// newTemp allocates the next temporary and returns its result.
func (em *emitter) newTemp() result {
	t := em.tempID
	em.tempID++
	return temp(t)
}

// newFlag allocates the next label, returned without the leading "%".
func (em *emitter) newFlag() string {
	f := em.flagID
	em.flagID++
	return fmt.Sprintf("flag%d", f)
}

// newVar allocates a variable alias for ident, returned without the "@".
func (em *emitter) newVar(ident string) string {
	v := em.varID
	em.varID++
	return fmt.Sprintf("%s_%d", ident, v)
}

// codef appends a formatted line to the current function body.
func (em *emitter) codef(format string, args ...any) {
	fmt.Fprintf(&em.code, format, args...)
}

// freshLabel emits a synthetic label so the text remains parseable after a
// control-flow terminator.
func (em *emitter) freshLabel() {
	em.codef("%%%s:\n", em.newFlag())
}

func debugf(format string, args ...any) {
	if debug {
		fmt.Printf("irgen: "+format+"\n", args...)
	}
}

// funcDef emits one function definition. The function's own binding is
// declared before its body, so recursive calls resolve.
func (em *emitter) funcDef(fd *ast.FuncDef) (string, error) {
	ptrFlags := make([]bool, len(fd.Params))
	for i, p := range fd.Params {
		ptrFlags[i] = p.IsArray
	}
	fn := symtab.Func{Name: fd.Name, Void: fd.Ret == ast.RetVoid, PtrParams: ptrFlags}
	if err := em.env.Declare(fd.Name, fn); err != nil {
		return "", err
	}
	debugf("fun %s", fd.Name)

	em.code.Reset()
	em.retVoid = fn.Void

	snap := em.env.Enter()
	defer em.env.Leave(snap)

	// header with formal parameters
	var hdr strings.Builder
	fmt.Fprintf(&hdr, "fun @%s(", fd.Name)
	type paramSlot struct {
		formal  string
		binding symtab.Binding
		typ     string
	}
	slots := make([]paramSlot, len(fd.Params))
	for i, p := range fd.Params {
		if i > 0 {
			hdr.WriteString(", ")
		}
		formal := "@" + p.Name
		var typ string
		var b symtab.Binding
		if p.IsArray {
			dims, err := em.foldDims(p.ExtraDims)
			if err != nil {
				return "", err
			}
			typ = "*" + arrayType(dims)
			b = symtab.Ptr{Name: em.newVar(p.Name), Dims: dims}
		} else {
			typ = "i32"
			b = symtab.IntVar{Name: em.newVar(p.Name)}
		}
		fmt.Fprintf(&hdr, "%s: %s", formal, typ)
		slots[i] = paramSlot{formal: formal, binding: b, typ: typ}
	}
	hdr.WriteString(")")
	if !fn.Void {
		hdr.WriteString(": i32")
	}
	hdr.WriteString(" {\n%entry:\n")

	// spill each parameter into a local slot so it is addressable like any
	// other variable
	for i, p := range fd.Params {
		slot := slots[i]
		var slotName string
		switch b := slot.binding.(type) {
		case symtab.IntVar:
			slotName = b.Name
		case symtab.Ptr:
			slotName = b.Name
		}
		em.codef("  @%s = alloc %s\n", slotName, slot.typ)
		em.codef("  store %s, @%s\n", slot.formal, slotName)
		if err := em.env.Declare(p.Name, slot.binding); err != nil {
			return "", err
		}
	}

	// body block, in its own scope so locals may shadow parameters
	if err := em.block(fd.Body); err != nil {
		return "", err
	}

	// defensive trailing return; unreachable when the body already returned
	// on every path, and the fallback value when it did not
	if fn.Void {
		em.codef("  ret\n")
	} else {
		em.codef("  ret 0\n")
	}

	return hdr.String() + em.code.String() + "}\n", nil
}

// block walks a block in a fresh scope.
func (em *emitter) block(b *ast.Block) error {
	snap := em.env.Enter()
	defer em.env.Leave(snap)

	for _, s := range b.Stmts {
		if err := em.stmt(s); err != nil {
			return err
		}
	}
	return nil
}
