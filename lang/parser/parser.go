// Package parser implements the parser that transforms SysY source code into
// an abstract syntax tree (AST).
package parser

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/scanner"
	"github.com/mna/sysyc/lang/token"
)

// ParseFiles is a helper function that parses the source files and returns the
// fileset along with the ASTs and any error encountered. The error, if
// non-nil, is guaranteed to be a scanner.ErrorList.
func ParseFiles(ctx context.Context, files ...string) (*token.FileSet, []*ast.CompUnit, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var p parser
	res := make([]*ast.CompUnit, 0, len(files))
	fs := token.NewFileSet()

	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			p.errors.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		p.init(fs, file, b)
		res = append(res, p.parseCompUnit())
	}
	p.errors.Sort()
	return fs, res, p.errors.Err()
}

// ParseUnit is a helper function that parses a single compilation unit from a
// slice of bytes and returns the AST and any error encountered. The unit is
// added to the provided fset for position reporting under the name specified
// in filename. The error, if non-nil, is guaranteed to be a
// scanner.ErrorList.
func ParseUnit(ctx context.Context, fset *token.FileSet, filename string, src []byte) (*ast.CompUnit, error) {
	var p parser
	p.init(fset, filename, src)
	unit := p.parseCompUnit()
	return unit, p.errors.Err()
}

// parser parses source files and generates an AST.
type parser struct {
	// those fields are immutable after p.init
	scanner scanner.Scanner
	errors  scanner.ErrorList
	file    *token.File

	// current token
	tok token.Token
	val token.Value
}

func (p *parser) init(fset *token.FileSet, filename string, src []byte) {
	p.file = fset.AddFile(filename, -1, len(src))
	p.scanner.Init(p.file, src, p.errors.Add)

	// advance to first token
	p.advance()
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

var errPanicMode = errors.New("panic")

// expect returns the position of the current token and consumes it if it is
// one of the expected tokens, otherwise it reports an error and panics with
// errPanicMode which gets recovered at the block-item level, skipping tokens
// to a synchronization point.
func (p *parser) expect(toks ...token.Token) token.Pos {
	pos := p.val.Pos

	var buf strings.Builder
	var ok bool
	for i, tok := range toks {
		if p.tok == tok {
			ok = true
			break
		}
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(tok.GoString())
	}

	if !ok {
		var lbl string
		if len(toks) > 1 {
			lbl = "one of " + buf.String()
		} else {
			lbl = buf.String()
		}
		p.errorExpected(pos, lbl)
		panic(errPanicMode)
	}

	p.advance()
	return pos
}

// expectIdent consumes an IDENT token and returns its name and position.
func (p *parser) expectIdent() (string, token.Pos) {
	name, pos := p.val.Raw, p.val.Pos
	p.expect(token.IDENT)
	return name, pos
}

// sync skips tokens until a likely statement boundary, so parsing can resume
// after a syntax error. The semicolon is consumed, the closing brace is not.
func (p *parser) sync() {
	for {
		switch p.tok {
		case token.SEMI:
			p.advance()
			return
		case token.RBRACE, token.EOF:
			return
		}
		p.advance()
	}
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errors.Add(token.PositionFor(p.file, pos), msg)
}

func (p *parser) errorExpected(pos token.Pos, msg string) {
	msg = "expected " + msg
	if pos == p.val.Pos {
		// the error happened at the current position;
		// make the error message more specific
		switch lit := p.tok.Literal(p.val); lit {
		case "":
			msg += ", found " + p.tok.GoString()
		default:
			// print 123 rather than 'INT', etc.
			msg += ", found " + lit
		}
	}
	p.error(pos, msg)
}
