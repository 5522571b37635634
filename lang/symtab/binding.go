package symtab

import "fmt"

// A Binding records what a source-level name denotes: a compile-time
// constant, a scalar variable, an array, a pointer parameter or a function.
// The Name carried by variable-like bindings is the KoopaIR symbol (without
// its "@" sigil) that the emitter allocated for the storage.
type Binding interface {
	fmt.Stringer
	binding()
}

// ConstInt is a compile-time integer constant. It has no storage; reads
// fold to the literal value.
type ConstInt struct {
	Val int32
}

// IntVar is a scalar i32 variable backed by an allocated cell.
type IntVar struct {
	Name string
}

// Array is an array of i32 with compile-time dimensions, outermost first.
type Array struct {
	Name string
	Dims []int32
}

// Ptr is a formal parameter that received a pointer, decayed from an array
// actual. Dims holds the dimensions after the first (decayed) one, so a
// scalar pointer parameter "int p[]" has no Dims.
type Ptr struct {
	Name string
	Dims []int32
}

// Func is a function signature. PtrParams marks, for each formal parameter,
// whether it is pointer-typed (arrays are passed by pointer). Void functions
// produce no value.
type Func struct {
	Name      string
	Void      bool
	PtrParams []bool
}

func (ConstInt) binding() {}
func (IntVar) binding()   {}
func (Array) binding()    {}
func (Ptr) binding()      {}
func (Func) binding()     {}

func (b ConstInt) String() string { return fmt.Sprintf("const %d", b.Val) }
func (b IntVar) String() string   { return "var @" + b.Name }
func (b Array) String() string    { return fmt.Sprintf("array @%s%v", b.Name, b.Dims) }
func (b Ptr) String() string      { return fmt.Sprintf("ptr @%s%v", b.Name, b.Dims) }
func (b Func) String() string {
	ret := "int"
	if b.Void {
		ret = "void"
	}
	return fmt.Sprintf("func @%s/%d %s", b.Name, len(b.PtrParams), ret)
}
