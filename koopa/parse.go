package koopa

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/dolthub/swiss"
)

// Parse loads a program from its textual IR form. The text is expected to
// be well-formed first-stage output: declarations, then any interleaving of
// global allocations and function bodies. The first malformed line aborts
// with an error naming it.
func Parse(b []byte) (*Program, error) {
	p := parse{
		s:       bufio.NewScanner(bytes.NewReader(b)),
		prog:    &Program{},
		globals: swiss.NewMap[string, *Value](16),
	}

	for p.next() {
		line := p.line
		switch {
		case line == "":
			// blank separator
		case strings.HasPrefix(line, "decl "):
			p.decl(line)
		case strings.HasPrefix(line, "global "):
			p.global(line)
		case strings.HasPrefix(line, "fun "):
			p.function(line)
		default:
			p.fail("unexpected line %q", line)
		}
		if p.err != nil {
			return nil, p.err
		}
	}
	return p.prog, p.err
}

type parse struct {
	s       *bufio.Scanner
	lineNum int
	line    string // current line, trimmed
	prog    *Program
	globals *swiss.Map[string, *Value]
	err     error
}

func (p *parse) next() bool {
	if p.err != nil {
		return false
	}
	if !p.s.Scan() {
		return false
	}
	p.lineNum++
	p.line = strings.TrimSpace(p.s.Text())
	return true
}

func (p *parse) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf("line %d: %s", p.lineNum, fmt.Sprintf(format, args...))
	}
}

// decl parses "decl @name(T, T): T" (the return type is optional).
func (p *parse) decl(line string) {
	rest := strings.TrimPrefix(line, "decl ")
	name, rest, ok := cutSymbol(rest, '@')
	if !ok || !strings.HasPrefix(rest, "(") {
		p.fail("malformed decl %q", line)
		return
	}
	inner, after, ok := cutParens(rest)
	if !ok {
		p.fail("malformed decl %q", line)
		return
	}

	d := FuncDecl{Name: name, RetVoid: true}
	for inner != "" {
		t, remaining, err := parseTypePrefix(inner)
		if err != nil {
			p.fail("decl %s: %v", name, err)
			return
		}
		d.Params = append(d.Params, t)
		inner = strings.TrimPrefix(strings.TrimLeft(remaining, " "), ",")
		inner = strings.TrimLeft(inner, " ")
	}
	if after = strings.TrimSpace(after); after != "" {
		if !strings.HasPrefix(after, ":") {
			p.fail("malformed decl %q", line)
			return
		}
		if _, err := ParseType(after[1:]); err != nil {
			p.fail("decl %s: %v", name, err)
			return
		}
		d.RetVoid = false
	}
	p.prog.Decls = append(p.prog.Decls, &d)
}

// global parses "global @name = alloc TYPE, INIT".
func (p *parse) global(line string) {
	rest := strings.TrimPrefix(line, "global ")
	name, rest, ok := cutSymbol(rest, '@')
	if !ok || !strings.HasPrefix(rest, " = alloc ") {
		p.fail("malformed global %q", line)
		return
	}
	rest = strings.TrimPrefix(rest, " = alloc ")

	typ, rest, err := parseTypePrefix(rest)
	if err != nil {
		p.fail("global %s: %v", name, err)
		return
	}
	rest = strings.TrimLeft(rest, " ")
	if !strings.HasPrefix(rest, ",") {
		p.fail("global %s: missing initializer", name)
		return
	}
	init, rest, err := parseInitPrefix(strings.TrimLeft(rest[1:], " "), typ)
	if err != nil {
		p.fail("global %s: %v", name, err)
		return
	}
	if strings.TrimSpace(rest) != "" {
		p.fail("global %s: trailing characters %q", name, rest)
		return
	}

	v := &Value{Kind: GlobalAlloc, Name: "@" + name, Type: PtrTo(typ), Init: init}
	p.prog.Globals = append(p.prog.Globals, v)
	p.globals.Put(v.Name, v)
}

// parseInitPrefix parses a global initializer: an integer, "zeroinit", or a
// nested aggregate matching typ.
func parseInitPrefix(s string, typ *Type) (*Value, string, error) {
	s = strings.TrimLeft(s, " ")
	if strings.HasPrefix(s, "zeroinit") {
		return &Value{Kind: ZeroInit, Type: typ}, s[len("zeroinit"):], nil
	}
	if strings.HasPrefix(s, "{") {
		if typ.Kind != Array {
			return nil, "", fmt.Errorf("aggregate initializer for non-array type %s", typ)
		}
		agg := &Value{Kind: Aggregate, Type: typ}
		s = s[1:]
		for {
			elem, rest, err := parseInitPrefix(s, typ.Elem)
			if err != nil {
				return nil, "", err
			}
			agg.Elems = append(agg.Elems, elem)
			s = strings.TrimLeft(rest, " ")
			if strings.HasPrefix(s, ",") {
				s = strings.TrimLeft(s[1:], " ")
				continue
			}
			if strings.HasPrefix(s, "}") {
				if int32(len(agg.Elems)) != typ.Len {
					return nil, "", fmt.Errorf("aggregate has %d elements, type %s wants %d",
						len(agg.Elems), typ, typ.Len)
				}
				return agg, s[1:], nil
			}
			return nil, "", fmt.Errorf("malformed aggregate near %q", s)
		}
	}

	end := len(s)
	for i, r := range s {
		if r == ',' || r == '}' || r == ' ' {
			end = i
			break
		}
	}
	n, err := strconv.ParseInt(s[:end], 10, 32)
	if err != nil {
		return nil, "", fmt.Errorf("invalid initializer near %q", s)
	}
	return &Value{Kind: Integer, Int: int32(n), Type: typeInt32}, s[end:], nil
}

// function parses a "fun" header and its body lines through the closing
// brace.
func (p *parse) function(line string) {
	rest := strings.TrimPrefix(line, "fun ")
	name, rest, ok := cutSymbol(rest, '@')
	if !ok || !strings.HasPrefix(rest, "(") {
		p.fail("malformed function header %q", line)
		return
	}
	inner, after, ok := cutParens(rest)
	if !ok {
		p.fail("malformed function header %q", line)
		return
	}

	fn := &Function{Name: name, RetVoid: true}
	locals := swiss.NewMap[string, *Value](32)

	idx := 0
	for inner != "" {
		pname, prest, ok := cutSymbol(inner, '@')
		if !ok || !strings.HasPrefix(prest, ":") {
			p.fail("malformed parameter in %q", line)
			return
		}
		t, prest, err := parseTypePrefix(prest[1:])
		if err != nil {
			p.fail("function %s: %v", name, err)
			return
		}
		arg := &Value{Kind: FuncArgRef, Name: "@" + pname, ArgIdx: idx, Type: t}
		fn.Params = append(fn.Params, arg)
		locals.Put(arg.Name, arg)
		idx++

		inner = strings.TrimPrefix(strings.TrimLeft(prest, " "), ",")
		inner = strings.TrimLeft(inner, " ")
	}

	after = strings.TrimSpace(after)
	if strings.HasPrefix(after, ":") {
		fn.RetVoid = false
		after = strings.TrimSpace(after[1:])
		if !strings.HasSuffix(after, "{") {
			p.fail("malformed function header %q", line)
			return
		}
		if _, err := ParseType(strings.TrimSpace(strings.TrimSuffix(after, "{"))); err != nil {
			p.fail("function %s: %v", name, err)
			return
		}
	} else if after != "{" {
		p.fail("malformed function header %q", line)
		return
	}

	var cur *BasicBlock
	for p.next() {
		line := p.line
		switch {
		case line == "":
			continue
		case line == "}":
			p.prog.Funcs = append(p.prog.Funcs, fn)
			return
		case strings.HasPrefix(line, "%") && strings.HasSuffix(line, ":"):
			cur = &BasicBlock{Name: strings.TrimSuffix(line[1:], ":")}
			fn.Blocks = append(fn.Blocks, cur)
		default:
			if cur == nil {
				p.fail("instruction before any label in function %s", name)
				return
			}
			inst := p.inst(locals, line)
			if p.err != nil {
				return
			}
			cur.Insts = append(cur.Insts, inst)
		}
	}
	p.fail("unterminated function %s", name)
}

// inst parses a single instruction line within a function.
func (p *parse) inst(locals *swiss.Map[string, *Value], line string) *Value {
	var name string
	rhs := line
	if i := strings.Index(line, " = "); i > 0 && (line[0] == '%' || line[0] == '@') {
		name = line[:i]
		rhs = line[i+3:]
	}

	op, rest, _ := strings.Cut(rhs, " ")
	v := &Value{Name: name}

	switch op {
	case "alloc":
		typ, err := ParseType(rest)
		if err != nil {
			p.fail("alloc: %v", err)
			return nil
		}
		v.Kind = Alloc
		v.Type = PtrTo(typ)

	case "load":
		src := p.operand(locals, rest)
		if p.err != nil {
			return nil
		}
		if src.Type == nil || src.Type.Kind != Ptr {
			p.fail("load from non-pointer %q", rest)
			return nil
		}
		v.Kind = Load
		v.Args = []*Value{src}
		v.Type = src.Type.Elem

	case "store":
		args := p.operands(locals, rest, 2)
		if p.err != nil {
			return nil
		}
		v.Kind = Store
		v.Args = args
		v.Type = typeUnit

	case "br":
		parts := splitOperands(rest)
		if len(parts) != 3 {
			p.fail("malformed br %q", line)
			return nil
		}
		cond := p.operand(locals, parts[0])
		if p.err != nil {
			return nil
		}
		t, okT := strings.CutPrefix(parts[1], "%")
		f, okF := strings.CutPrefix(parts[2], "%")
		if !okT || !okF {
			p.fail("malformed br targets %q", line)
			return nil
		}
		v.Kind = Branch
		v.Args = []*Value{cond}
		v.Blocks = []string{t, f}
		v.Type = typeUnit

	case "jump":
		target, ok := strings.CutPrefix(strings.TrimSpace(rest), "%")
		if !ok {
			p.fail("malformed jump %q", line)
			return nil
		}
		v.Kind = Jump
		v.Blocks = []string{target}
		v.Type = typeUnit

	case "ret":
		v.Kind = Return
		v.Type = typeUnit
		if rest = strings.TrimSpace(rest); rest != "" {
			arg := p.operand(locals, rest)
			if p.err != nil {
				return nil
			}
			v.Args = []*Value{arg}
		}

	case "call":
		p.call(locals, v, rest)
		if p.err != nil {
			return nil
		}

	case "getelemptr":
		args := p.operands(locals, rest, 2)
		if p.err != nil {
			return nil
		}
		base := args[0]
		if base.Type == nil || base.Type.Kind != Ptr || base.Type.Elem.Kind != Array {
			p.fail("getelemptr base is not a pointer to array: %q", line)
			return nil
		}
		v.Kind = GetElemPtr
		v.Args = args
		v.Type = PtrTo(base.Type.Elem.Elem)

	case "getptr":
		args := p.operands(locals, rest, 2)
		if p.err != nil {
			return nil
		}
		base := args[0]
		if base.Type == nil || base.Type.Kind != Ptr {
			p.fail("getptr base is not a pointer: %q", line)
			return nil
		}
		v.Kind = GetPtr
		v.Args = args
		v.Type = base.Type

	default:
		if !binaryOps[op] {
			p.fail("unknown instruction %q", line)
			return nil
		}
		args := p.operands(locals, rest, 2)
		if p.err != nil {
			return nil
		}
		v.Kind = Binary
		v.Op = op
		v.Args = args
		v.Type = typeInt32
	}

	if v.Name != "" {
		locals.Put(v.Name, v)
	}
	return v
}

var binaryOps = map[string]bool{
	"add": true, "sub": true, "mul": true, "div": true, "mod": true,
	"and": true, "or": true, "eq": true, "ne": true,
	"lt": true, "gt": true, "le": true, "ge": true,
}

// call parses "call @f(...)" into v, typing the result i32 when the call is
// named (a value-producing call).
func (p *parse) call(locals *swiss.Map[string, *Value], v *Value, rest string) {
	callee, rest, ok := cutSymbol(strings.TrimSpace(rest), '@')
	if !ok || !strings.HasPrefix(rest, "(") {
		p.fail("malformed call %q", rest)
		return
	}
	inner, after, ok := cutParens(rest)
	if !ok || strings.TrimSpace(after) != "" {
		p.fail("malformed call to %s", callee)
		return
	}

	v.Kind = Call
	v.Callee = callee
	v.Type = typeUnit
	if v.Name != "" {
		v.Type = typeInt32
	}
	if inner = strings.TrimSpace(inner); inner != "" {
		for _, part := range splitOperands(inner) {
			arg := p.operand(locals, part)
			if p.err != nil {
				return
			}
			v.Args = append(v.Args, arg)
		}
	}
}

// operand resolves a single operand: a named local, a named global, or an
// integer literal.
func (p *parse) operand(locals *swiss.Map[string, *Value], s string) *Value {
	s = strings.TrimSpace(s)
	if s == "" {
		p.fail("empty operand")
		return nil
	}
	if s[0] == '%' || s[0] == '@' {
		if v, ok := locals.Get(s); ok {
			return v
		}
		if v, ok := p.globals.Get(s); ok {
			return v
		}
		p.fail("undefined operand %q", s)
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		p.fail("invalid operand %q", s)
		return nil
	}
	return &Value{Kind: Integer, Int: int32(n), Type: typeInt32}
}

// operands resolves a comma-separated operand list of exactly n entries.
func (p *parse) operands(locals *swiss.Map[string, *Value], s string, n int) []*Value {
	parts := splitOperands(s)
	if len(parts) != n {
		p.fail("want %d operands, got %d in %q", n, len(parts), s)
		return nil
	}
	res := make([]*Value, n)
	for i, part := range parts {
		res[i] = p.operand(locals, part)
		if p.err != nil {
			return nil
		}
	}
	return res
}

func splitOperands(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// cutSymbol strips a leading sigil (@ or %) and returns the symbol name up
// to the first delimiter, along with the remainder.
func cutSymbol(s string, sigil byte) (name, rest string, ok bool) {
	if len(s) == 0 || s[0] != sigil {
		return "", s, false
	}
	s = s[1:]
	end := len(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			end = i
			break
		}
	}
	if end == 0 {
		return "", s, false
	}
	return s[:end], s[end:], true
}

// cutParens returns the contents of the balanced parenthesized group that
// starts s, and everything after it.
func cutParens(s string) (inner, after string, ok bool) {
	if !strings.HasPrefix(s, "(") {
		return "", "", false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}
