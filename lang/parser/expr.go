package parser

import (
	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/token"
)

// Expression parsing follows the SysY precedence chain, one function per
// level: LOr > LAnd > Eq > Rel > Add > Mul > Unary > Primary. All binary
// operators are left-associative.

func (p *parser) parseExp() ast.Expr {
	return p.parseLOrExp()
}

func (p *parser) parseLOrExp() ast.Expr {
	x := p.parseLAndExp()
	for p.tok == token.OR_OR {
		opPos := p.val.Pos
		p.advance()
		y := p.parseLAndExp()
		x = &ast.BinaryExpr{X: x, Op: token.OR_OR, OpPos: opPos, Y: y}
	}
	return x
}

func (p *parser) parseLAndExp() ast.Expr {
	x := p.parseEqExp()
	for p.tok == token.AND_AND {
		opPos := p.val.Pos
		p.advance()
		y := p.parseEqExp()
		x = &ast.BinaryExpr{X: x, Op: token.AND_AND, OpPos: opPos, Y: y}
	}
	return x
}

func (p *parser) parseEqExp() ast.Expr {
	x := p.parseRelExp()
	for p.tok.IsEqOp() {
		op, opPos := p.tok, p.val.Pos
		p.advance()
		y := p.parseRelExp()
		x = &ast.BinaryExpr{X: x, Op: op, OpPos: opPos, Y: y}
	}
	return x
}

func (p *parser) parseRelExp() ast.Expr {
	x := p.parseAddExp()
	for p.tok.IsRelOp() {
		op, opPos := p.tok, p.val.Pos
		p.advance()
		y := p.parseAddExp()
		x = &ast.BinaryExpr{X: x, Op: op, OpPos: opPos, Y: y}
	}
	return x
}

func (p *parser) parseAddExp() ast.Expr {
	x := p.parseMulExp()
	for p.tok.IsAddOp() {
		op, opPos := p.tok, p.val.Pos
		p.advance()
		y := p.parseMulExp()
		x = &ast.BinaryExpr{X: x, Op: op, OpPos: opPos, Y: y}
	}
	return x
}

func (p *parser) parseMulExp() ast.Expr {
	x := p.parseUnaryExp()
	for p.tok.IsMulOp() {
		op, opPos := p.tok, p.val.Pos
		p.advance()
		y := p.parseUnaryExp()
		x = &ast.BinaryExpr{X: x, Op: op, OpPos: opPos, Y: y}
	}
	return x
}

func (p *parser) parseUnaryExp() ast.Expr {
	if p.tok.IsAddOp() || p.tok == token.NOT {
		op, opPos := p.tok, p.val.Pos
		p.advance()
		x := p.parseUnaryExp()
		return &ast.UnaryExpr{Op: op, OpPos: opPos, X: x}
	}
	return p.parsePrimaryExp()
}

func (p *parser) parsePrimaryExp() ast.Expr {
	switch p.tok {
	case token.INT:
		x := &ast.NumberExpr{ValPos: p.val.Pos, Val: p.val.Int}
		p.advance()
		return x

	case token.LPAREN:
		p.advance()
		x := p.parseExp()
		p.expect(token.RPAREN)
		return x

	case token.IDENT:
		name, namePos := p.expectIdent()
		if p.tok == token.LPAREN {
			return p.parseCallRest(name, namePos)
		}
		lval := ast.LValExpr{Name: name, NamePos: namePos}
		lval.End = namePos + token.Pos(len(name))
		for p.tok == token.LBRACK {
			p.advance()
			lval.Indices = append(lval.Indices, p.parseExp())
			lval.End = p.expect(token.RBRACK) + 1
		}
		return &lval

	default:
		p.errorExpected(p.val.Pos, "expression")
		panic(errPanicMode)
	}
}

// parseCallRest parses the argument list of a call, the callee name having
// been consumed and "(" being the current token.
func (p *parser) parseCallRest(name string, namePos token.Pos) ast.Expr {
	call := ast.CallExpr{Func: name, FuncPos: namePos}
	p.expect(token.LPAREN)
	for p.tok != token.RPAREN {
		call.Args = append(call.Args, p.parseExp())
		if p.tok != token.COMMA {
			break
		}
		p.advance()
	}
	call.End = p.expect(token.RPAREN) + 1
	return &call
}
