package irgen_test

import (
	"testing"

	"github.com/mna/sysyc/koopa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The KoopaIR text produced by the first stage must be accepted by the IR
// re-reader for every well-typed input.
func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"return zero", "int main() { return 0; }"},
		{"arithmetic", "int main() { return 1 + 2 * 3; }"},
		{"const array", "const int N = 3; int a[N] = {1, 2}; int main() { return a[0] + a[1] + a[2]; }"},
		{"call", "int f(int x) { return x * x; } int main() { return f(5); }"},
		{"loop with continue", "int main() { int s = 0; int i = 0; while (i < 5) { s = s + i; i = i + 1; if (i == 3) { continue; } } return s; }"},
		{"short circuit div", "int main() { int a = 1; int b = 0; if (a || 1 / b) { return 1; } return 0; }"},
		{"nested loops", `
int main() {
  int i = 0;
  int s = 0;
  while (i < 3) {
    int j = 0;
    while (j < 3) {
      if (j == 2) { break; }
      s = s + 1;
      j = j + 1;
    }
    i = i + 1;
  }
  return s;
}`},
		{"matrix params", `
int get(int a[][3], int i, int j) { return a[i][j]; }
void set(int a[][3], int i, int j, int v) { a[i][j] = v; }
int main() {
  int m[2][3] = {{1, 2, 3}, {4, 5, 6}};
  set(m, 1, 2, 9);
  return get(m, 1, 2);
}`},
		{"runtime library", `
int main() {
  int a[10];
  int n = getarray(a);
  starttime();
  putarray(n, a);
  putint(n);
  putch(10);
  stoptime();
  return 0;
}`},
		{"globals", `
int g;
int h = 5;
const int N = 2;
int a[N][N] = {1, 2, 3};
void bump() { g = g + h; }
int main() { bump(); return g + a[1][0]; }`},
		{"logic operators", "int main() { int a = 2; int b = 0; return (a && b) + (a || b) + !a; }"},
		{"empty void body", "void f() { } int main() { f(); return 0; }"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			text := emit(t, c.src)
			prog, err := koopa.Parse([]byte(text))
			require.NoError(t, err, "emitted IR:\n%s", text)
			require.NotEmpty(t, prog.Funcs)

			// every block of every function ends with a terminator, which the
			// second stage relies on
			for _, fn := range prog.Funcs {
				for _, blk := range fn.Blocks {
					require.NotEmpty(t, blk.Insts, "%s/%s empty block", fn.Name, blk.Name)
					last := blk.Insts[len(blk.Insts)-1]
					switch last.Kind {
					case koopa.Branch, koopa.Jump, koopa.Return:
					default:
						t.Fatalf("%s/%s does not end with a terminator: %v", fn.Name, blk.Name, last.Kind)
					}
				}
			}

			// branch and jump targets all resolve to labels of the function
			for _, fn := range prog.Funcs {
				labels := map[string]bool{}
				for _, blk := range fn.Blocks {
					labels[blk.Name] = true
				}
				for _, blk := range fn.Blocks {
					for _, inst := range blk.Insts {
						for _, target := range inst.Blocks {
							assert.True(t, labels[target], "%s: unknown target %s", fn.Name, target)
						}
					}
				}
			}
		})
	}
}
