package koopa

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeKind discriminates the Type sum.
type TypeKind int

const (
	// Int32 is the scalar i32 type.
	Int32 TypeKind = iota
	// Ptr is a pointer *T.
	Ptr
	// Array is a sized array [T, N].
	Array
	// Unit is the absent type of void functions and valueless instructions.
	Unit
)

// Type represents a KoopaIR type. Types are immutable once parsed.
type Type struct {
	Kind TypeKind
	Elem *Type // pointee for Ptr, element for Array
	Len  int32 // number of elements for Array
}

var (
	typeInt32 = &Type{Kind: Int32}
	typeUnit  = &Type{Kind: Unit}
)

// PtrTo returns the pointer type to elem.
func PtrTo(elem *Type) *Type { return &Type{Kind: Ptr, Elem: elem} }

// Size returns the storage size of the type in bytes on the 32-bit target.
func (t *Type) Size() int {
	switch t.Kind {
	case Int32, Ptr:
		return 4
	case Array:
		return int(t.Len) * t.Elem.Size()
	}
	return 0
}

func (t *Type) String() string {
	switch t.Kind {
	case Int32:
		return "i32"
	case Ptr:
		return "*" + t.Elem.String()
	case Array:
		return fmt.Sprintf("[%s, %d]", t.Elem, t.Len)
	case Unit:
		return "unit"
	}
	return "<invalid type>"
}

// parseTypePrefix parses the leading type in s and returns it along with
// the unconsumed remainder.
func parseTypePrefix(s string) (*Type, string, error) {
	s = strings.TrimLeft(s, " ")
	switch {
	case strings.HasPrefix(s, "i32"):
		return typeInt32, s[3:], nil

	case strings.HasPrefix(s, "*"):
		elem, rest, err := parseTypePrefix(s[1:])
		if err != nil {
			return nil, "", err
		}
		return PtrTo(elem), rest, nil

	case strings.HasPrefix(s, "["):
		elem, rest, err := parseTypePrefix(s[1:])
		if err != nil {
			return nil, "", err
		}
		rest = strings.TrimLeft(rest, " ")
		if !strings.HasPrefix(rest, ",") {
			return nil, "", fmt.Errorf("malformed array type near %q", rest)
		}
		rest = strings.TrimLeft(rest[1:], " ")
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, "", fmt.Errorf("unterminated array type near %q", rest)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(rest[:end]), 10, 32)
		if err != nil || n <= 0 {
			return nil, "", fmt.Errorf("invalid array length in type near %q", rest)
		}
		return &Type{Kind: Array, Elem: elem, Len: int32(n)}, rest[end+1:], nil
	}
	return nil, "", fmt.Errorf("unknown type near %q", s)
}

// ParseType parses s as a complete type.
func ParseType(s string) (*Type, error) {
	t, rest, err := parseTypePrefix(s)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("trailing characters after type: %q", rest)
	}
	return t, nil
}
