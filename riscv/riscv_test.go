package riscv

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/mna/sysyc/koopa"
	"github.com/mna/sysyc/lang/cerr"
	"github.com/mna/sysyc/lang/irgen"
	"github.com/mna/sysyc/lang/parser"
	"github.com/mna/sysyc/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compile runs the full pipeline: SysY source to assembly text.
func compile(t *testing.T, src string) string {
	t.Helper()
	fs := token.NewFileSet()
	unit, err := parser.ParseUnit(context.Background(), fs, "test.sy", []byte(src))
	require.NoError(t, err)
	ir, err := irgen.EmitUnit(unit)
	require.NoError(t, err)
	prog, err := koopa.Parse([]byte(ir))
	require.NoError(t, err, "IR:\n%s", ir)
	asm, err := EmitProgram(prog)
	require.NoError(t, err)
	return asm
}

func TestEmitReturnZero(t *testing.T) {
	asm := compile(t, "int main() { return 0; }")
	assert.Contains(t, asm, "  .text\n")
	assert.Contains(t, asm, "  .globl main\n")
	assert.Contains(t, asm, "main:\n")
	assert.Contains(t, asm, "  li a0, 0\n")
	assert.Contains(t, asm, "  j main_end\n")
	assert.Contains(t, asm, "main_end:\n")
	assert.True(t, strings.HasSuffix(strings.TrimRight(asm, "\n"), "ret"))
}

func TestFrameAlignment(t *testing.T) {
	srcs := []string{
		"int main() { int x = 1; return x; }",
		"int main() { int a[3]; return 0; }",
		"int main() { int a[5][7]; int x; int y; return 0; }",
		"int f(int x) { return x; } int main() { return f(1); }",
		"int main() { int s = 0; int i = 0; while (i < 9) { s = s + i * i; i = i + 1; } return s; }",
	}
	rx := regexp.MustCompile(`li t5, -(\d+)`)
	for _, src := range srcs {
		asm := compile(t, src)
		ms := rx.FindAllStringSubmatch(asm, -1)
		require.NotEmpty(t, ms, "no frame setup in:\n%s", asm)
		for _, m := range ms {
			n, err := strconv.Atoi(m[1])
			require.NoError(t, err)
			assert.Zero(t, n%16, "frame size %d not 16-aligned for %q", n, src)
		}
	}
}

func TestFrameLayout(t *testing.T) {
	// one alloc of 12 bytes, one scalar slot, no call: the frame
	// holds the array storage plus the instruction slots
	fr := buildFrame(&koopa.Function{
		Name: "f",
		Blocks: []*koopa.BasicBlock{{
			Name: "entry",
			Insts: []*koopa.Value{
				{Kind: koopa.Alloc, Name: "@a_0", Type: koopa.PtrTo(mustType(t, "[i32, 3]"))},
				{Kind: koopa.Binary, Name: "%0", Op: "add", Type: mustType(t, "i32")},
				{Kind: koopa.Return},
			},
		}},
	})
	assert.False(t, fr.hasCall)
	assert.Equal(t, 16, fr.size)
	assert.Len(t, fr.offsets, 2)
}

func mustType(t *testing.T, s string) *koopa.Type {
	t.Helper()
	typ, err := koopa.ParseType(s)
	require.NoError(t, err)
	return typ
}

func TestArithmeticLowering(t *testing.T) {
	asm := compile(t, "int main() { return 1 + 2 * 3; }")
	assert.Contains(t, asm, "  mul t5, t5, t6\n")
	assert.Contains(t, asm, "  add t5, t5, t6\n")
}

func TestComparisonLowering(t *testing.T) {
	asm := compile(t, "int main() { int a = 1; int b = 2; return (a == b) + (a != b) + (a <= b) + (a >= b) + (a < b) + (a > b); }")
	assert.Contains(t, asm, "  seqz t5, t5\n")
	assert.Contains(t, asm, "  snez t5, t5\n")
	assert.Contains(t, asm, "  slt t5, t5, t6\n")
	assert.Contains(t, asm, "  sgt t5, t5, t6\n")
	// le/ge go through the slt/sgt + equality combination
	assert.Contains(t, asm, "  slt t4, t5, t6\n")
	assert.Contains(t, asm, "  sgt t4, t5, t6\n")
	assert.Contains(t, asm, "  or t5, t4, t3\n")
}

func TestDivModLowering(t *testing.T) {
	asm := compile(t, "int main() { int a = 7; int b = 2; return a / b + a % b; }")
	assert.Contains(t, asm, "  div t5, t5, t6\n")
	assert.Contains(t, asm, "  rem t5, t5, t6\n")
}

func TestBranchLowering(t *testing.T) {
	asm := compile(t, "int main() { if (1) { return 1; } return 0; }")
	assert.Regexp(t, `bnez t5, main_flag\d+`, asm)
	assert.Regexp(t, `j main_flag\d+`, asm)
}

func TestCallLowering(t *testing.T) {
	asm := compile(t, "int f(int x) { return x * x; } int main() { return f(5); }")

	// caller: argument in a0, call, result saved from a0
	assert.Contains(t, asm, "  li a0, 5\n")
	assert.Contains(t, asm, "  call f\n")
	assert.Regexp(t, `call f\n  sw a0, \d+\(sp\)`, asm)

	// ra is saved and restored around the frame because main makes a call
	assert.Regexp(t, `sw ra, \d+\(sp\)`, asm)
	assert.Regexp(t, `lw ra, \d+\(sp\)`, asm)

	// callee: incoming a0 spilled to its slot
	assert.Regexp(t, `mv t5, a0`, asm)
}

func TestCallManyArgsUsesStack(t *testing.T) {
	src := `
int f(int a, int b, int c, int d, int e, int g, int h, int i, int j, int k) {
  return a + j + k;
}
int main() { return f(1, 2, 3, 4, 5, 6, 7, 8, 9, 10); }
`
	asm := compile(t, src)

	// caller: eight register args, two stack args at the frame bottom
	for i := 0; i < 8; i++ {
		assert.Contains(t, asm, "  li a"+strconv.Itoa(i)+", "+strconv.Itoa(i+1)+"\n")
	}
	assert.Contains(t, asm, "  sw t5, 0(sp)\n")
	assert.Contains(t, asm, "  sw t5, 4(sp)\n")

	// callee: it sets up a frame of its own (the ninth and tenth arguments
	// sit above it)
	rx := regexp.MustCompile(`li t5, -(\d+)`)
	require.NotEmpty(t, rx.FindStringSubmatch(asm))
}

func TestGlobalData(t *testing.T) {
	asm := compile(t, "int g = 7; int z; int main() { return g + z; }")
	assert.Contains(t, asm, "  .data\n")
	assert.Contains(t, asm, "  .globl global_var_0\nglobal_var_0:\n  .word 7\n")
	assert.Contains(t, asm, "  .globl global_var_1\nglobal_var_1:\n  .word 0\n")
	assert.Contains(t, asm, "  la t5, global_var_0\n")
	assert.Contains(t, asm, "  lw t5, 0(t5)\n")
}

func TestGlobalArrayData(t *testing.T) {
	asm := compile(t, "int a[3] = {1, 2}; int b[4][2]; int main() { return a[0]; }")
	assert.Contains(t, asm, "  .word 1\n  .word 2\n  .word 0\n")
	assert.Contains(t, asm, "  .zero 32\n")
}

func TestGetElemPtrLowering(t *testing.T) {
	asm := compile(t, "int main() { int a[4]; a[2] = 9; return a[2]; }")

	// address arithmetic: base + index * stride
	assert.Contains(t, asm, "  li t4, 4\n")
	assert.Contains(t, asm, "  mul t6, t6, t4\n")
	assert.Contains(t, asm, "  add t5, t5, t6\n")
	// the alloc's address materializes from the frame
	assert.Regexp(t, `addi t5, sp, \d+`, asm)
	// the store goes through the computed pointer
	assert.Contains(t, asm, "  sw t5, 0(t6)\n")
}

func TestMatrixStride(t *testing.T) {
	asm := compile(t, "int main() { int m[2][3]; m[1][2] = 5; return m[1][2]; }")
	// the first index steps over whole rows of 12 bytes
	assert.Contains(t, asm, "  li t4, 12\n")
	assert.Contains(t, asm, "  li t4, 4\n")
}

func TestPointerParamLowering(t *testing.T) {
	src := `
int get(int a[], int i) { return a[i]; }
int main() { int b[3] = {1, 2, 3}; return get(b, 2); }
`
	asm := compile(t, src)
	// the callee loads the pointer from its spill slot, offsets it, then
	// dereferences
	assert.Contains(t, asm, "  call get\n")
	assert.Regexp(t, `mv t5, a0\n  sw t5, \d+\(sp\)`, asm)
}

func TestIRShapeError(t *testing.T) {
	prog := &koopa.Program{
		Funcs: []*koopa.Function{{
			Name: "broken",
			Blocks: []*koopa.BasicBlock{{
				Name:  "entry",
				Insts: []*koopa.Value{{Kind: koopa.Aggregate}},
			}},
		}},
	}
	_, err := EmitProgram(prog)
	require.Error(t, err)
	assert.Equal(t, cerr.IRShape, cerr.KindOf(err))
}

func TestVoidFunction(t *testing.T) {
	asm := compile(t, "void f() { } int main() { f(); return 0; }")
	assert.Contains(t, asm, "  .globl f\nf:\n")
	assert.Contains(t, asm, "  j f_end\n")
	assert.Contains(t, asm, "  call f\n")
}
