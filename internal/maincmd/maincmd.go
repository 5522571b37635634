// Package maincmd implements the command-line driver of the compiler: it
// validates the rigid positional argument contract, runs the two
// translation stages and maps the first fatal error to a distinguishing
// exit code.
package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/sysyc/koopa"
	"github.com/mna/sysyc/lang/cerr"
	"github.com/mna/sysyc/lang/irgen"
	"github.com/mna/sysyc/lang/parser"
	"github.com/mna/sysyc/lang/scanner"
	"github.com/mna/sysyc/lang/token"
	"github.com/mna/sysyc/riscv"
)

const binName = "sysyc"

var usage = fmt.Sprintf(`usage: %s <mode> <input> <ignored> <output>
       %[1]s -h|--help
       %[1]s -v|--version

Compiler for the SysY programming language.

The <mode> selects the output of the compilation:
       -koopa                    Translate the source file to textual
                                 KoopaIR and write it to <output>.
       -riscv                    Translate the source file to 32-bit
                                 RISC-V assembly and write it to <output>.

The third argument is ignored; it exists so the command line reads
naturally as '%[1]s -koopa input.sy -o output.koopa'.
`, binName)

// Mode selects the compilation output.
type Mode string

// The two supported modes.
const (
	ModeKoopa Mode = "-koopa"
	ModeRiscv Mode = "-riscv"
)

// Cmd is the command-line entry point.
type Cmd struct {
	BuildVersion string
	BuildDate    string
}

// Main parses the arguments and runs the compiler, returning the process
// exit code.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	rest := args[1:]
	if len(rest) == 1 {
		switch rest[0] {
		case "-h", "--help":
			fmt.Fprint(stdio.Stdout, usage)
			return mainer.Success
		case "-v", "--version":
			fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
			return mainer.Success
		}
	}

	if len(rest) != 4 {
		fmt.Fprintf(stdio.Stderr, "invalid arguments\n%s", usage)
		return mainer.InvalidArgs
	}
	mode := Mode(rest[0])
	if mode != ModeKoopa && mode != ModeRiscv {
		fmt.Fprintf(stdio.Stderr, "invalid mode %q\n%s", rest[0], usage)
		return mainer.InvalidArgs
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := Run(ctx, mode, rest[1], rest[3]); err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return exitCode(err)
	}
	return mainer.Success
}

// Run executes the compilation of inPath into outPath for the given mode.
func Run(ctx context.Context, mode Mode, inPath, outPath string) error {
	src, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	fs := token.NewFileSet()
	unit, err := parser.ParseUnit(ctx, fs, inPath, src)
	if err != nil {
		return err
	}

	ir, err := irgen.EmitUnit(unit)
	if err != nil {
		return err
	}
	if mode == ModeKoopa {
		return os.WriteFile(outPath, []byte(ir), 0600)
	}

	prog, err := koopa.Parse([]byte(ir))
	if err != nil {
		return err
	}
	asm, err := riscv.EmitProgram(prog)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(asm), 0600)
}

// exitCode maps each fatal error kind to its own exit code, so a failure
// can be told apart without parsing stderr.
func exitCode(err error) mainer.ExitCode {
	if _, ok := err.(scanner.ErrorList); ok {
		return exitParse
	}
	if k := cerr.KindOf(err); k != cerr.None {
		return exitBase + mainer.ExitCode(k)
	}
	return mainer.Failure
}

const (
	// exitBase offsets the cerr kind values past the generic mainer codes.
	exitBase mainer.ExitCode = 9
	// exitParse is exitBase + cerr.Parse, the code for syntax errors.
	exitParse mainer.ExitCode = exitBase + mainer.ExitCode(cerr.Parse)
)
