// Package symtab implements the scoped symbol environment shared by the
// constant folder and the KoopaIR emitter: a stack of scopes mapping names
// to bindings, with lookup resolving to the nearest enclosing scope.
package symtab

import (
	"github.com/dolthub/swiss"
	"github.com/mna/sysyc/lang/cerr"
)

// Env is the symbol environment. The zero value is not usable; create one
// with NewEnv, which establishes the global (depth 0) scope.
type Env struct {
	scopes []*swiss.Map[string, Binding]
}

// NewEnv creates an environment with an empty global scope.
func NewEnv() *Env {
	env := &Env{}
	env.scopes = append(env.scopes, swiss.NewMap[string, Binding](16))
	return env
}

// Snapshot is the opaque token returned by Enter and consumed by Leave.
type Snapshot int

// Enter opens a new scope at depth Depth()+1 and returns the token that
// Leave requires to close it.
func (e *Env) Enter() Snapshot {
	e.scopes = append(e.scopes, swiss.NewMap[string, Binding](8))
	return Snapshot(len(e.scopes) - 1)
}

// Leave closes the scope opened by the Enter that returned snap, discarding
// every binding declared since. It panics if scopes are closed out of order,
// which is a bug in the walk, not a user error.
func (e *Env) Leave(snap Snapshot) {
	if int(snap) != len(e.scopes)-1 || snap == 0 {
		panic("symtab: scope closed out of order")
	}
	e.scopes = e.scopes[:snap]
}

// Depth returns the current lexical depth; the global scope is depth 0.
func (e *Env) Depth() int {
	return len(e.scopes) - 1
}

// Declare records a binding for name in the current scope. It fails with a
// Redefinition error if name is already bound at this depth; bindings in
// shallower scopes are shadowed, not conflicting.
func (e *Env) Declare(name string, b Binding) error {
	top := e.scopes[len(e.scopes)-1]
	if top.Has(name) {
		return cerr.Errorf(cerr.Redefinition, "%s is already declared in this scope", name)
	}
	top.Put(name, b)
	return nil
}

// Lookup returns the binding nearest in depth for name, or a false ok if
// name is not bound in any enclosing scope.
func (e *Env) Lookup(name string) (Binding, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if b, ok := e.scopes[i].Get(name); ok {
			return b, true
		}
	}
	return nil, false
}

// MustLookup is Lookup returning an Undefined error instead of a bool.
func (e *Env) MustLookup(name string) (Binding, error) {
	b, ok := e.Lookup(name)
	if !ok {
		return nil, cerr.Errorf(cerr.Undefined, "%s is not declared", name)
	}
	return b, nil
}

// PredeclareRuntime populates the global scope with the SysY runtime
// library functions. It must be called on a fresh environment, before any
// user declaration.
func (e *Env) PredeclareRuntime() {
	for _, f := range runtimeFuncs {
		e.scopes[0].Put(f.Name, f)
	}
}

// The fixed runtime library table: name, return kind and pointer-flag vector
// for each function the language links against.
var runtimeFuncs = []Func{
	{Name: "getint", Void: false, PtrParams: []bool{}},
	{Name: "getch", Void: false, PtrParams: []bool{}},
	{Name: "getarray", Void: false, PtrParams: []bool{true}},
	{Name: "putint", Void: true, PtrParams: []bool{false}},
	{Name: "putch", Void: true, PtrParams: []bool{false}},
	{Name: "putarray", Void: true, PtrParams: []bool{false, true}},
	{Name: "starttime", Void: true, PtrParams: []bool{}},
	{Name: "stoptime", Void: true, PtrParams: []bool{}},
}
