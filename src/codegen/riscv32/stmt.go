package riscv32

import (
	"rv32cc/src/ast"
	"rv32cc/src/regfile"
)

// genStmt lowers a statement and all its children, per spec.md §4.6.
// extraSp is the stack-pointer displacement currently in effect (nonzero
// only while inside a call's argument-marshalling/caller-save region).
func genStmt(fg *funcGen, stmt ast.Stmt, extraSp int) error {
	switch n := stmt.(type) {
	case *ast.Block:
		fg.pushScope()
		for _, s := range n.Stmts {
			if err := genStmt(fg, s, extraSp); err != nil {
				fg.popScope()
				return err
			}
		}
		fg.popScope()
		return nil

	case *ast.Empty:
		return nil

	case *ast.ExprStmt:
		tmp, err := fg.allocWithSpill(regfile.Temp, n.Live())
		if err != nil {
			return err
		}
		if err := genExpr(fg, n.X, tmp, extraSp, n.Live()); err != nil {
			return err
		}
		fg.regs.Release(tmp)
		return nil

	case *ast.Decl:
		off := fg.allocateVar()
		fg.addVar(n.Name, off)
		if n.Init == nil {
			return nil
		}
		tmp, err := fg.allocWithSpill(regfile.Temp, n.Live())
		if err != nil {
			return err
		}
		if err := genExpr(fg, n.Init, tmp, extraSp, n.Live()); err != nil {
			return err
		}
		fg.w.LoadStore("sw", tmp, off+extraSp, "sp")
		fg.regs.Release(tmp)
		return nil

	case *ast.Assign:
		tmp, err := fg.allocWithSpill(regfile.Temp, n.Live())
		if err != nil {
			return err
		}
		if err := genExpr(fg, n.Value, tmp, extraSp, n.Live()); err != nil {
			return err
		}
		off, ok := fg.findVar(n.Name)
		if !ok {
			return genError("undeclared variable %q", n.Name)
		}
		fg.w.LoadStore("sw", tmp, off+extraSp, "sp")
		fg.regs.Release(tmp)
		return nil

	case *ast.If:
		return genIf(fg, n, extraSp)

	case *ast.While:
		return genWhile(fg, n, extraSp)

	case *ast.Break:
		if len(fg.loopEnd) == 0 {
			return genError("Break statement outside of loop")
		}
		fg.w.Jump(fg.loopEnd[len(fg.loopEnd)-1])
		return fg.w.Err()

	case *ast.Continue:
		if len(fg.loopStart) == 0 {
			return genError("Continue statement outside of loop")
		}
		fg.w.Jump(fg.loopStart[len(fg.loopStart)-1])
		return fg.w.Err()

	case *ast.Return:
		if n.Value != nil {
			if err := genExpr(fg, n.Value, "a0", extraSp, n.Live()); err != nil {
				return err
			}
		}
		fg.w.Jump(fg.returnLabel)
		return fg.w.Err()

	default:
		return genError("unsupported statement node %T", stmt)
	}
}

// genIf lowers an If per spec.md §4.6: a zero condition skips Then,
// landing on else_lbl (the else branch, or straight through if there is
// none).
func genIf(fg *funcGen, n *ast.If, extraSp int) error {
	cond, err := fg.allocWithSpill(regfile.Temp, n.Live())
	if err != nil {
		return err
	}
	if err := genExpr(fg, n.Cond, cond, extraSp, n.Live()); err != nil {
		return err
	}

	elseLabel := fg.gen.newLabel("if_else_")
	fg.w.BranchZero(cond, elseLabel)
	fg.regs.Release(cond)

	if err := genStmt(fg, n.Then, extraSp); err != nil {
		return err
	}

	if n.Else != nil {
		endLabel := fg.gen.newLabel("if_end_")
		fg.w.Jump(endLabel)
		fg.w.Label(elseLabel)
		if err := genStmt(fg, n.Else, extraSp); err != nil {
			return err
		}
		fg.w.Label(endLabel)
	} else {
		fg.w.Label(elseLabel)
	}
	return fg.w.Err()
}

// genWhile lowers a pre-tested loop, pushing its labels so nested
// Break/Continue statements can find them.
func genWhile(fg *funcGen, n *ast.While, extraSp int) error {
	startLabel := fg.gen.newLabel("while_start_")
	endLabel := fg.gen.newLabel("while_end_")

	fg.w.Label(startLabel)
	cond, err := fg.allocWithSpill(regfile.Temp, n.Live())
	if err != nil {
		return err
	}
	if err := genExpr(fg, n.Cond, cond, extraSp, n.Live()); err != nil {
		return err
	}
	fg.w.BranchZero(cond, endLabel)
	fg.regs.Release(cond)

	fg.loopStart = append(fg.loopStart, startLabel)
	fg.loopEnd = append(fg.loopEnd, endLabel)
	err = genStmt(fg, n.Body, extraSp)
	fg.loopStart = fg.loopStart[:len(fg.loopStart)-1]
	fg.loopEnd = fg.loopEnd[:len(fg.loopEnd)-1]
	if err != nil {
		return err
	}

	fg.w.Jump(startLabel)
	fg.w.Label(endLabel)
	return fg.w.Err()
}
