package koopa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		src  string
		want string
		size int
	}{
		{"i32", "i32", 4},
		{"*i32", "*i32", 4},
		{"[i32, 3]", "[i32, 3]", 12},
		{"[[i32, 2], 3]", "[[i32, 2], 3]", 24},
		{"*[i32, 3]", "*[i32, 3]", 4},
	}
	for _, c := range cases {
		c := c
		t.Run(c.src, func(t *testing.T) {
			typ, err := ParseType(c.src)
			require.NoError(t, err)
			assert.Equal(t, c.want, typ.String())
			assert.Equal(t, c.size, typ.Size())
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, src := range []string{"", "i64", "[i32]", "[i32, ]", "[i32, 0]", "i32 x", "*"} {
		_, err := ParseType(src)
		assert.Error(t, err, src)
	}
}

func TestParseMinimalProgram(t *testing.T) {
	src := `decl @getint(): i32
decl @putint(i32)

fun @main(): i32 {
%entry:
  ret 0
%flag0:
  ret 0
}
`
	prog, err := Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, prog.Decls, 2)
	assert.Equal(t, "getint", prog.Decls[0].Name)
	assert.False(t, prog.Decls[0].RetVoid)
	assert.Equal(t, "putint", prog.Decls[1].Name)
	assert.True(t, prog.Decls[1].RetVoid)

	require.Len(t, prog.Funcs, 1)
	fn := prog.Funcs[0]
	assert.Equal(t, "main", fn.Name)
	assert.False(t, fn.RetVoid)
	require.Len(t, fn.Blocks, 2)
	assert.Equal(t, "entry", fn.Blocks[0].Name)
	assert.Equal(t, "flag0", fn.Blocks[1].Name)

	ret := fn.Blocks[0].Insts[0]
	assert.Equal(t, Return, ret.Kind)
	require.Len(t, ret.Args, 1)
	assert.Equal(t, Integer, ret.Args[0].Kind)
	assert.Equal(t, int32(0), ret.Args[0].Int)
}

func TestParseGlobals(t *testing.T) {
	src := `global @x_global = alloc i32, 42
global @z_global = alloc i32, zeroinit
global @a_global = alloc [i32, 3], {1, 2, 0}
global @m_global = alloc [[i32, 2], 2], {{1, 2}, {3, 4}}
`
	prog, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Globals, 4)

	x := prog.Globals[0]
	assert.Equal(t, GlobalAlloc, x.Kind)
	assert.Equal(t, "@x_global", x.Name)
	assert.Equal(t, "*i32", x.Type.String())
	assert.Equal(t, Integer, x.Init.Kind)
	assert.Equal(t, int32(42), x.Init.Int)

	assert.Equal(t, ZeroInit, prog.Globals[1].Init.Kind)

	a := prog.Globals[2]
	require.Equal(t, Aggregate, a.Init.Kind)
	require.Len(t, a.Init.Elems, 3)
	assert.Equal(t, int32(2), a.Init.Elems[1].Int)

	m := prog.Globals[3]
	require.Equal(t, Aggregate, m.Init.Kind)
	require.Len(t, m.Init.Elems, 2)
	require.Equal(t, Aggregate, m.Init.Elems[0].Kind)
	assert.Equal(t, int32(4), m.Init.Elems[1].Elems[1].Int)
}

func TestParseInstructions(t *testing.T) {
	src := `global @g_global = alloc i32, 7

fun @f(@x: i32, @a: *i32): i32 {
%entry:
  @x_0 = alloc i32
  store @x, @x_0
  @a_1 = alloc *i32
  store @a, @a_1
  %0 = load @x_0
  %1 = add %0, 1
  %2 = load @g_global
  %3 = lt %1, %2
  br %3, %flag0, %flag1
%flag0:
  %4 = load @a_1
  %5 = getptr %4, %1
  %6 = load %5
  ret %6
%flag2:
  jump %flag1
%flag1:
  %7 = call @f(%1, %4)
  ret %7
}
`
	prog, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 1)
	fn := prog.Funcs[0]

	require.Len(t, fn.Params, 2)
	assert.Equal(t, FuncArgRef, fn.Params[0].Kind)
	assert.Equal(t, 0, fn.Params[0].ArgIdx)
	assert.Equal(t, "i32", fn.Params[0].Type.String())
	assert.Equal(t, "*i32", fn.Params[1].Type.String())

	entry := fn.Blocks[0]
	alloc := entry.Insts[0]
	assert.Equal(t, Alloc, alloc.Kind)
	assert.Equal(t, "*i32", alloc.Type.String())

	store := entry.Insts[1]
	assert.Equal(t, Store, store.Kind)
	assert.Same(t, fn.Params[0], store.Args[0])
	assert.Same(t, alloc, store.Args[1])

	load := entry.Insts[4]
	assert.Equal(t, Load, load.Kind)
	assert.Equal(t, "i32", load.Type.String())

	bin := entry.Insts[5]
	assert.Equal(t, Binary, bin.Kind)
	assert.Equal(t, "add", bin.Op)
	assert.Same(t, load, bin.Args[0])
	assert.Equal(t, int32(1), bin.Args[1].Int)

	br := entry.Insts[len(entry.Insts)-1]
	assert.Equal(t, Branch, br.Kind)
	assert.Equal(t, []string{"flag0", "flag1"}, br.Blocks)

	blk := fn.Blocks[1]
	gp := blk.Insts[1]
	assert.Equal(t, GetPtr, gp.Kind)
	assert.Equal(t, "*i32", gp.Type.String())

	jump := fn.Blocks[2].Insts[0]
	assert.Equal(t, Jump, jump.Kind)
	assert.Equal(t, []string{"flag1"}, jump.Blocks)

	call := fn.Blocks[3].Insts[0]
	assert.Equal(t, Call, call.Kind)
	assert.Equal(t, "f", call.Callee)
	assert.Equal(t, "i32", call.Type.String())
	require.Len(t, call.Args, 2)
}

func TestParseGetElemPtrTypes(t *testing.T) {
	src := `fun @f(): i32 {
%entry:
  @m_0 = alloc [[i32, 3], 2]
  %0 = getelemptr @m_0, 1
  %1 = getelemptr %0, 2
  %2 = load %1
  ret %2
}
`
	prog, err := Parse([]byte(src))
	require.NoError(t, err)
	insts := prog.Funcs[0].Blocks[0].Insts

	assert.Equal(t, "*[[i32, 3], 2]", insts[0].Type.String())
	assert.Equal(t, "*[i32, 3]", insts[1].Type.String())
	assert.Equal(t, "*i32", insts[2].Type.String())
	assert.Equal(t, "i32", insts[3].Type.String())
}

func TestParseVoidCall(t *testing.T) {
	src := `decl @putint(i32)

fun @main(): i32 {
%entry:
  call @putint(42)
  ret 0
}
`
	prog, err := Parse([]byte(src))
	require.NoError(t, err)
	call := prog.Funcs[0].Blocks[0].Insts[0]
	assert.Equal(t, Call, call.Kind)
	assert.Equal(t, Unit, call.Type.Kind)
	assert.Equal(t, "", call.Name)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"garbage line", "hello world\n"},
		{"undefined operand", "fun @f(): i32 {\n%entry:\n  ret %0\n}\n"},
		{"unterminated function", "fun @f(): i32 {\n%entry:\n  ret 0\n"},
		{"instruction before label", "fun @f(): i32 {\n  ret 0\n}\n"},
		{"bad global init", "global @x_global = alloc i32, oops\n"},
		{"aggregate arity", "global @a_global = alloc [i32, 3], {1, 2}\n"},
		{"load non-pointer", "fun @f(): i32 {\n%entry:\n  %0 = add 1, 2\n  %1 = load %0\n  ret 0\n}\n"},
		{"unknown instruction", "fun @f(): i32 {\n%entry:\n  %0 = frob 1, 2\n  ret 0\n}\n"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.src))
			require.Error(t, err)
		})
	}
}
