package parser

import (
	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/token"
)

// parseBlock parses "{ BlockItem... }".
func (p *parser) parseBlock() *ast.Block {
	block := ast.Block{Lbrace: p.val.Pos}
	p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		if stmt := p.parseBlockItem(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}
	block.Rbrace = p.expect(token.RBRACE) + 1
	return &block
}

// parseBlockItem parses a declaration or a statement. Syntax errors inside
// the item are recovered here: tokens are skipped to a synchronization point
// and the item is dropped, so that the rest of the block still gets parsed.
func (p *parser) parseBlockItem() (stmt ast.Stmt) {
	defer func() {
		if e := recover(); e != nil {
			if e != errPanicMode {
				panic(e)
			}
			p.sync()
			stmt = nil
		}
	}()

	switch p.tok {
	case token.CONST:
		return &ast.DeclStmt{D: p.parseConstDecl()}
	case token.INT_KW:
		return &ast.DeclStmt{D: p.parseVarDecl()}
	default:
		return p.parseStmt()
	}
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.tok {
	case token.RETURN:
		return p.parseReturnStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.BREAK:
		start := p.val.Pos
		p.advance()
		end := p.expect(token.SEMI) + 1
		return &ast.BreakStmt{Start: start, End: end}
	case token.CONTINUE:
		start := p.val.Pos
		p.advance()
		end := p.expect(token.SEMI) + 1
		return &ast.ContinueStmt{Start: start, End: end}
	case token.LBRACE:
		return &ast.BlockStmt{Body: p.parseBlock()}
	case token.SEMI:
		start := p.val.Pos
		p.advance()
		return &ast.ExprStmt{Start: start, End: start + 1}
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *parser) parseReturnStmt() ast.Stmt {
	stmt := ast.ReturnStmt{Start: p.val.Pos}
	p.expect(token.RETURN)
	if p.tok != token.SEMI {
		stmt.X = p.parseExp()
	}
	stmt.End = p.expect(token.SEMI) + 1
	return &stmt
}

func (p *parser) parseIfStmt() ast.Stmt {
	stmt := ast.IfStmt{IfPos: p.val.Pos}
	p.expect(token.IF)
	p.expect(token.LPAREN)
	stmt.Cond = p.parseExp()
	p.expect(token.RPAREN)
	stmt.Then = p.parseStmt()
	if p.tok == token.ELSE {
		p.advance()
		stmt.Else = p.parseStmt()
	}
	return &stmt
}

func (p *parser) parseWhileStmt() ast.Stmt {
	stmt := ast.WhileStmt{WhilePos: p.val.Pos}
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	stmt.Cond = p.parseExp()
	p.expect(token.RPAREN)
	stmt.Body = p.parseStmt()
	return &stmt
}

// parseExprOrAssignStmt parses either an assignment "lval = exp ;" or a bare
// expression statement. Both start with an expression; an "=" after an
// expression that designates storage makes it an assignment.
func (p *parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.val.Pos
	x := p.parseExp()

	if p.tok == token.ASSIGN {
		lval, ok := x.(*ast.LValExpr)
		if !ok {
			p.error(p.val.Pos, "cannot assign to this expression")
			panic(errPanicMode)
		}
		assignPos := p.val.Pos
		p.advance()
		rhs := p.parseExp()
		end := p.expect(token.SEMI) + 1
		return &ast.AssignStmt{Left: lval, AssignPos: assignPos, Right: rhs, End: end}
	}

	end := p.expect(token.SEMI) + 1
	return &ast.ExprStmt{X: x, Start: start, End: end}
}
