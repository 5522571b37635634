package parser

import (
	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/token"
)

// parseCompUnit parses a whole compilation unit: a sequence of global
// declarations and function definitions, until EOF.
func (p *parser) parseCompUnit() *ast.CompUnit {
	var unit ast.CompUnit
	for p.tok != token.EOF {
		before := p.val.Pos
		if item := p.parseGlobalItem(); item != nil {
			unit.Items = append(unit.Items, item)
		} else if p.val.Pos == before && p.tok != token.EOF {
			// recovery stopped without consuming anything; skip the
			// offending token so the loop always makes progress
			p.advance()
		}
	}
	return &unit
}

// parseGlobalItem parses a single global item. Both declarations and
// function definitions start with a type keyword and an identifier; the
// token that follows the identifier disambiguates ("(" starts a function
// definition, anything else continues a declaration).
func (p *parser) parseGlobalItem() (item ast.GlobalItem) {
	defer func() {
		if e := recover(); e != nil {
			if e != errPanicMode {
				panic(e)
			}
			p.sync()
			item = nil
		}
	}()

	if p.tok == token.CONST {
		return p.parseConstDecl()
	}

	ret, retPos := ast.RetInt, p.val.Pos
	if p.tok == token.VOID {
		ret = ast.RetVoid
	}
	p.expect(token.INT_KW, token.VOID)

	name, namePos := p.expectIdent()
	if p.tok == token.LPAREN {
		return p.parseFuncDef(ret, retPos, name, namePos)
	}

	if ret == ast.RetVoid {
		p.errorExpected(p.val.Pos, "'(' after void function name")
		panic(errPanicMode)
	}
	return p.parseVarDeclRest(retPos, name, namePos)
}

// parseConstDecl parses "const int Def {, Def} ;", with the "const" token
// current.
func (p *parser) parseConstDecl() *ast.Decl {
	decl := ast.Decl{IsConst: true, Start: p.val.Pos}
	p.expect(token.CONST)
	p.expect(token.INT_KW)

	for {
		decl.Defs = append(decl.Defs, p.parseDef(true))
		if p.tok != token.COMMA {
			break
		}
		p.advance()
	}
	decl.End = p.expect(token.SEMI) + 1
	return &decl
}

// parseVarDecl parses "int Def {, Def} ;", with the "int" token current.
func (p *parser) parseVarDecl() *ast.Decl {
	start := p.val.Pos
	p.expect(token.INT_KW)
	name, namePos := p.expectIdent()
	return p.parseVarDeclRest(start, name, namePos)
}

// parseVarDeclRest parses the remainder of a var-decl once the leading "int"
// and the first definition's name have been consumed.
func (p *parser) parseVarDeclRest(start token.Pos, name string, namePos token.Pos) *ast.Decl {
	decl := ast.Decl{Start: start}
	decl.Defs = append(decl.Defs, p.parseDefRest(name, namePos, false))
	for p.tok == token.COMMA {
		p.advance()
		decl.Defs = append(decl.Defs, p.parseDef(false))
	}
	decl.End = p.expect(token.SEMI) + 1
	return &decl
}

// parseDef parses a single definition: name, optional dimensions and
// optional initializer (required when constant).
func (p *parser) parseDef(isConst bool) *ast.Def {
	name, namePos := p.expectIdent()
	return p.parseDefRest(name, namePos, isConst)
}

func (p *parser) parseDefRest(name string, namePos token.Pos, isConst bool) *ast.Def {
	def := ast.Def{Name: name, NamePos: namePos}
	for p.tok == token.LBRACK {
		p.advance()
		def.Dims = append(def.Dims, p.parseExp())
		def.End = p.expect(token.RBRACK) + 1
	}
	if def.End == token.NoPos {
		def.End = namePos + token.Pos(len(name))
	}

	if p.tok == token.ASSIGN {
		p.advance()
		def.Init = p.parseInitVal()
		_, def.End = def.Init.Span()
	} else if isConst {
		p.errorExpected(p.val.Pos, "'=' (constant definitions require an initializer)")
		panic(errPanicMode)
	}
	return &def
}

// parseInitVal parses an initializer: either a single expression or a
// brace-enclosed, comma-separated (possibly empty, possibly nested) list.
func (p *parser) parseInitVal() *ast.InitVal {
	if p.tok != token.LBRACE {
		var iv ast.InitVal
		iv.Expr = p.parseExp()
		iv.Start, iv.End = iv.Expr.Span()
		return &iv
	}

	iv := ast.InitVal{Start: p.val.Pos, List: []*ast.InitVal{}}
	p.advance()
	for p.tok != token.RBRACE {
		iv.List = append(iv.List, p.parseInitVal())
		if p.tok != token.COMMA {
			break
		}
		p.advance()
	}
	iv.End = p.expect(token.RBRACE) + 1
	return &iv
}

// parseFuncDef parses a function definition once the return kind and name
// have been consumed, with the "(" token current.
func (p *parser) parseFuncDef(ret ast.RetKind, retPos token.Pos, name string, namePos token.Pos) *ast.FuncDef {
	fd := ast.FuncDef{Ret: ret, RetPos: retPos, Name: name, NamePos: namePos}
	p.expect(token.LPAREN)
	for p.tok != token.RPAREN {
		fd.Params = append(fd.Params, p.parseFuncFParam())
		if p.tok != token.COMMA {
			break
		}
		p.advance()
	}
	p.expect(token.RPAREN)

	fd.Body = p.parseBlock()
	_, fd.EndPos = fd.Body.Span()
	return &fd
}

// parseFuncFParam parses "int name" optionally followed by "[]" and any
// number of "[exp]" extra dimensions.
func (p *parser) parseFuncFParam() *ast.FuncFParam {
	p.expect(token.INT_KW)
	name, namePos := p.expectIdent()
	param := ast.FuncFParam{Name: name, NamePos: namePos}
	param.EndPos = namePos + token.Pos(len(name))

	if p.tok == token.LBRACK {
		p.advance()
		param.EndPos = p.expect(token.RBRACK) + 1
		param.IsArray = true
		for p.tok == token.LBRACK {
			p.advance()
			param.ExtraDims = append(param.ExtraDims, p.parseExp())
			param.EndPos = p.expect(token.RBRACK) + 1
		}
	}
	return &param
}
