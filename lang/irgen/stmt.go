package irgen

import (
	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/cerr"
)

func (em *emitter) stmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.DeclStmt:
		return em.localDecl(s.D)

	case *ast.BlockStmt:
		return em.block(s.Body)

	case *ast.ExprStmt:
		if s.X == nil {
			return nil
		}
		prelude, _, err := em.expr(s.X)
		if err != nil {
			return err
		}
		em.code.WriteString(prelude)
		return nil

	case *ast.AssignStmt:
		return em.assign(s)

	case *ast.ReturnStmt:
		return em.returnStmt(s)

	case *ast.IfStmt:
		return em.ifStmt(s)

	case *ast.WhileStmt:
		return em.whileStmt(s)

	case *ast.BreakStmt:
		if em.loopEnd == "" {
			return cerr.Errorf(cerr.KindMismatch, "break outside of a loop")
		}
		em.codef("  jump %%%s\n", em.loopEnd)
		em.freshLabel()
		return nil

	case *ast.ContinueStmt:
		if em.loopEnter == "" {
			return cerr.Errorf(cerr.KindMismatch, "continue outside of a loop")
		}
		em.codef("  jump %%%s\n", em.loopEnter)
		em.freshLabel()
		return nil
	}
	return cerr.Errorf(cerr.KindMismatch, "unknown statement %v", s)
}

func (em *emitter) assign(s *ast.AssignStmt) error {
	prelude, addr, err := em.lvalAddr(s.Left)
	if err != nil {
		return err
	}
	rhsPrelude, rhs, err := em.expr(s.Right)
	if err != nil {
		return err
	}
	if !rhs.hasValue() {
		return cerr.Errorf(cerr.KindMismatch, "expression produces no value")
	}
	em.code.WriteString(prelude)
	em.code.WriteString(rhsPrelude)
	em.codef("  store %s, %s\n", rhs.operand(), addr)
	return nil
}

func (em *emitter) returnStmt(s *ast.ReturnStmt) error {
	if s.X == nil {
		if em.retVoid {
			em.codef("  ret\n")
		} else {
			// a bare return in an int function leaves the value unspecified;
			// zero keeps the IR well-typed
			em.codef("  ret 0\n")
		}
		em.freshLabel()
		return nil
	}

	if em.retVoid {
		return cerr.Errorf(cerr.KindMismatch, "void function cannot return a value")
	}
	prelude, res, err := em.expr(s.X)
	if err != nil {
		return err
	}
	if !res.hasValue() {
		return cerr.Errorf(cerr.KindMismatch, "expression produces no value")
	}
	em.code.WriteString(prelude)
	em.codef("  ret %s\n", res.operand())
	em.freshLabel()
	return nil
}

func (em *emitter) ifStmt(s *ast.IfStmt) error {
	prelude, cond, err := em.expr(s.Cond)
	if err != nil {
		return err
	}
	if !cond.hasValue() {
		return cerr.Errorf(cerr.KindMismatch, "condition produces no value")
	}

	thenL, elseL, endL := em.newFlag(), em.newFlag(), em.newFlag()

	em.code.WriteString(prelude)
	em.codef("  br %s, %%%s, %%%s\n", cond.operand(), thenL, elseL)

	em.codef("%%%s:\n", thenL)
	if err := em.stmt(s.Then); err != nil {
		return err
	}
	em.codef("  jump %%%s\n", endL)

	// the else label exists even without an else branch, holding only the
	// jump to the end
	em.codef("%%%s:\n", elseL)
	if s.Else != nil {
		if err := em.stmt(s.Else); err != nil {
			return err
		}
	}
	em.codef("  jump %%%s\n", endL)

	em.codef("%%%s:\n", endL)
	return nil
}

func (em *emitter) whileStmt(s *ast.WhileStmt) error {
	enterL, bodyL, endL := em.newFlag(), em.newFlag(), em.newFlag()

	em.codef("  jump %%%s\n", enterL)
	em.codef("%%%s:\n", enterL)

	prelude, cond, err := em.expr(s.Cond)
	if err != nil {
		return err
	}
	if !cond.hasValue() {
		return cerr.Errorf(cerr.KindMismatch, "condition produces no value")
	}
	em.code.WriteString(prelude)
	em.codef("  br %s, %%%s, %%%s\n", cond.operand(), bodyL, endL)

	em.codef("%%%s:\n", bodyL)

	// save the enclosing loop's labels so break/continue in the body target
	// this loop, and nested loops restore on exit
	prevEnter, prevEnd := em.loopEnter, em.loopEnd
	em.loopEnter, em.loopEnd = enterL, endL
	err = em.stmt(s.Body)
	em.loopEnter, em.loopEnd = prevEnter, prevEnd
	if err != nil {
		return err
	}

	em.codef("  jump %%%s\n", enterL)
	em.codef("%%%s:\n", endL)
	return nil
}
