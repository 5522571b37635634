// Some of the scanner package is adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/mna/sysyc/lang/token"
)

// TokenAndValue combines the token type with the token value type in the same
// struct.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanFiles is a helper function that tokenizes the source files and returns
// the list of tokens, grouped by the file at the same index, and produces any
// error encountered. The error, if non-nil, is guaranteed to implement
// Unwrap() []error.
func ScanFiles(ctx context.Context, files ...string) (*token.FileSet, [][]TokenAndValue, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var (
		s      Scanner
		tokVal token.Value
		el     ErrorList
	)

	fs := token.NewFileSet()
	tokensByFile := make([][]TokenAndValue, len(files))
	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		fsf := fs.AddFile(file, -1, len(b))
		s.Init(fsf, b, el.Add)
		for {
			tok := s.Scan(&tokVal)
			tokensByFile[i] = append(tokensByFile[i], TokenAndValue{
				Token: tok,
				Value: tokVal,
			})
			if tok == token.EOF {
				break
			}
		}
	}
	el.Sort()
	return fs, tokensByFile, el.Err()
}

// Scanner tokenizes SysY source files for the parser to consume. Comments
// (both "//" and "/* */" forms) are whitespace as far as the token stream is
// concerned: they are skipped and never surface as a token, since nothing
// downstream ever needs to reattach a comment to a node.
type Scanner struct {
	// immutable state after Init
	file *token.File // source file handle
	src  []byte
	err  func(pos token.Position, msg string)

	// mutable scanning state
	cur  rune // current character
	off  int  // character offset in bytes of cur
	roff int  // reading offset in bytes (position after current character)
}

// Init initializes the scanner to tokenize a new file. It panics if the file
// size is not the same as the length of the src slice.
func (s *Scanner) Init(file *token.File, src []byte, errHandler func(token.Position, string)) {
	if file.Size() != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}

	s.file = file
	s.src = src
	s.err = errHandler

	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.advance()
}

// peek returns the byte following the most recently read character without
// advancing the scanner. If the scanner is at EOF, peek returns 0.
func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

// advance reads the next Unicode char into s.cur; s.cur < 0 means
// end-of-file.
func (s *Scanner) advance() {
	if s.cur == '\n' {
		s.file.AddLine(s.off)
	}

	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}

	s.off = s.roff

	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, "illegal UTF-8 encoding")
		}
	}
	s.roff += w
	s.cur = r
}

func (s *Scanner) error(off int, msg string) {
	if s.err != nil {
		s.err(token.PositionFor(s.file, s.file.Pos(off)), msg)
	}
}

func (s *Scanner) errorf(off int, format string, args ...any) {
	s.error(off, fmt.Sprintf(format, args...))
}

// advanceIf advances only if the current char matches.
func (s *Scanner) advanceIf(match byte) bool {
	if s.cur == rune(match) {
		s.advance()
		return true
	}
	return false
}

// Scan returns the next token in the source file.
func (s *Scanner) Scan(tokVal *token.Value) (tok token.Token) {
	s.skipWhitespaceAndComments()

	pos := s.file.Pos(s.off)
	start := s.off

	switch cur := s.cur; {
	case isLetter(cur):
		lit := s.ident()
		tok = token.IDENT
		if len(lit) > 1 {
			tok = token.LookupKw(lit)
		}
		*tokVal = token.Value{Raw: lit, Pos: pos}

	case isDecimal(cur):
		var base int
		var lit string
		lit, base = s.number()
		tok = token.INT
		*tokVal = token.Value{Raw: lit, Pos: pos}
		v, err := numberToInt(lit, base)
		if err != nil && errors.Is(err, strconv.ErrRange) {
			s.error(start, "integer literal value out of range")
		}
		tokVal.Int = v

	default:
		s.advance() // always make progress
		switch cur {
		case '=':
			tok = token.ASSIGN
			if s.advanceIf('=') {
				tok = token.EQL
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '(', ')', ',', '{', '}', '[', ']', ';':
			tok = token.LookupPunct(string(cur))
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '+', '-', '*', '%':
			tok = token.LookupPunct(string(cur))
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '/':
			tok = token.SLASH
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '!':
			tok = token.NOT
			if s.advanceIf('=') {
				tok = token.NEQ
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '<':
			tok = token.LT
			if s.advanceIf('=') {
				tok = token.LE
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '>':
			tok = token.GT
			if s.advanceIf('=') {
				tok = token.GE
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '&':
			tok = token.ILLEGAL
			if s.advanceIf('&') {
				tok = token.AND_AND
			} else {
				s.error(start, "illegal character '&', expected '&&'")
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '|':
			tok = token.ILLEGAL
			if s.advanceIf('|') {
				tok = token.OR_OR
			} else {
				s.error(start, "illegal character '|', expected '||'")
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case -1:
			tok = token.EOF
			*tokVal = token.Value{Raw: "", Pos: pos}

		default:
			s.errorf(start, "illegal character %#U", cur)
			tok = token.ILLEGAL
			*tokVal = token.Value{Raw: string(cur), Pos: pos}
		}
	}
	return tok
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch {
		case isWhitespace(s.cur):
			s.advance()
		case s.cur == '/' && s.peek() == '/':
			s.skipLineComment()
		case s.cur == '/' && s.peek() == '*':
			s.skipBlockComment()
		default:
			return
		}
	}
}

func isWhitespace(rn rune) bool {
	return rn == ' ' || rn == '\t' || rn == '\n' || rn == '\r'
}

func isLetter(rn rune) bool {
	return 'a' <= rn && rn <= 'z' ||
		'A' <= rn && rn <= 'Z' ||
		rn == '_' ||
		rn >= utf8.RuneSelf && unicode.IsLetter(rn)
}

func isDigit(rn rune) bool {
	return isDecimal(rn) || rn >= utf8.RuneSelf && unicode.IsDigit(rn)
}
