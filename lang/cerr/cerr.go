// Package cerr defines the fatal error kinds of the compiler. Compilation
// aborts on the first such error; the kind tag is the diagnostic, there is no
// recovery and no warning level.
package cerr

import (
	"errors"
	"fmt"
)

// Kind tags a fatal compiler error.
type Kind int

//nolint:revive
const (
	None           Kind = iota // not an error
	Parse                      // the scanner/parser reported syntax errors
	Redefinition               // a name declared twice at the same depth
	Undefined                  // a name referenced with no binding in scope
	KindMismatch               // a binding used as the wrong kind of thing
	BadInitializer             // a ragged list that cannot fill the declared shape
	ConstNotConst              // a constant expression that cannot be evaluated at compile time
	IRShape                    // an IR value kind the assembly emitter cannot lower

	maxKind
)

var kindNames = [...]string{
	None:           "no error",
	Parse:          "parse error",
	Redefinition:   "redefinition",
	Undefined:      "undefined",
	KindMismatch:   "kind mismatch",
	BadInitializer: "bad initializer",
	ConstNotConst:  "constant is not constant",
	IRShape:        "unsupported IR shape",
}

func (k Kind) String() string {
	if k < 0 || k >= maxKind {
		return fmt.Sprintf("<invalid Kind %d>", int(k))
	}
	return kindNames[k]
}

// Error is the sentinel error value for a Kind. All fatal compiler errors
// wrap one of the exported Err* values, so callers can match on the kind
// with errors.Is and map it to an exit code.
type Error struct {
	K Kind
}

func (e *Error) Error() string { return e.K.String() }

// Sentinel errors, one per kind.
var (
	ErrParse          = &Error{Parse}
	ErrRedefinition   = &Error{Redefinition}
	ErrUndefined      = &Error{Undefined}
	ErrKindMismatch   = &Error{KindMismatch}
	ErrBadInitializer = &Error{BadInitializer}
	ErrConstNotConst  = &Error{ConstNotConst}
	ErrIRShape        = &Error{IRShape}
)

var sentinels = [...]*Error{
	Parse:          ErrParse,
	Redefinition:   ErrRedefinition,
	Undefined:      ErrUndefined,
	KindMismatch:   ErrKindMismatch,
	BadInitializer: ErrBadInitializer,
	ConstNotConst:  ErrConstNotConst,
	IRShape:        ErrIRShape,
}

// Errorf creates a fatal error of kind k with a formatted detail message.
// The returned error wraps the kind's sentinel, so errors.Is(err,
// cerr.ErrRedefinition) etc. hold.
func Errorf(k Kind, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinels[k]}, args...)...)
}

// KindOf returns the Kind of err, or None if err does not wrap one of the
// sentinel errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.K
	}
	return None
}
