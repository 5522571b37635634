// Package koopa implements the in-memory form of a KoopaIR program and the
// re-reader that builds it from the textual IR emitted by the first stage.
// The second stage walks this representation to produce assembly; it never
// touches the text again.
package koopa

// Kind discriminates the Value sum: every instruction, constant and global
// of the IR is a Value.
type Kind int

//nolint:revive
const (
	Integer     Kind = iota // a literal i32 operand
	Alloc                   // a stack allocation; the value is the address
	GlobalAlloc             // a global allocation with an initializer
	ZeroInit                // the all-zeroes initializer
	Aggregate               // a nested literal initializer
	Load                    // read through a pointer
	Store                   // write through a pointer
	Binary                  // two-operand arithmetic/comparison
	Branch                  // conditional two-way jump
	Jump                    // unconditional jump
	Return                  // function return, with optional operand
	FuncArgRef              // reference to the n-th incoming argument
	Call                    // function call, with optional result
	GetElemPtr              // index into an array, stripping one array level
	GetPtr                  // offset a pointer, keeping its type
)

var kindNames = [...]string{
	Integer:     "integer",
	Alloc:       "alloc",
	GlobalAlloc: "global_alloc",
	ZeroInit:    "zeroinit",
	Aggregate:   "aggregate",
	Load:        "load",
	Store:       "store",
	Binary:      "binary",
	Branch:      "branch",
	Jump:        "jump",
	Return:      "return",
	FuncArgRef:  "func_arg_ref",
	Call:        "call",
	GetElemPtr:  "getelemptr",
	GetPtr:      "getptr",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "<invalid kind>"
	}
	return kindNames[k]
}

// Value is one node of a function's data-flow graph (or a global). Only the
// fields relevant to its Kind are set.
type Value struct {
	Kind Kind
	Name string // result name ("%0", "@x_0", "@g_global"), empty when the value produces none
	Type *Type  // the value's own type; pointer types are explicit

	Int    int32    // Integer: the literal
	Op     string   // Binary: the operation name (add, sub, ..., ge)
	Args   []*Value // operands, in instruction order
	Blocks []string // Branch: true/false targets; Jump: the single target (label names without "%")
	Callee string   // Call: the callee name without "@"
	ArgIdx int      // FuncArgRef: 0-based argument index
	Init   *Value   // GlobalAlloc: Integer, ZeroInit or Aggregate
	Elems  []*Value // Aggregate: element initializers, in layout order
}

// BasicBlock is a labeled, ordered run of instructions. The first stage
// guarantees every block ends with a terminator (br, jump or ret).
type BasicBlock struct {
	Name  string // label without "%"
	Insts []*Value
}

// Function is a named, ordered sequence of basic blocks.
type Function struct {
	Name    string // without "@"
	RetVoid bool
	Params  []*Value // FuncArgRef values carrying the formal names and types
	Blocks  []*BasicBlock
}

// FuncDecl is an external function declaration (the runtime library).
type FuncDecl struct {
	Name    string
	RetVoid bool
	Params  []*Type
}

// Program is the ordered layout of a whole compilation unit.
type Program struct {
	Decls   []*FuncDecl
	Globals []*Value // GlobalAlloc values in emission order
	Funcs   []*Function
}
