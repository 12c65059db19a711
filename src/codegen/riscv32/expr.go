package riscv32

import (
	"rv32cc/src/ast"
	"rv32cc/src/regfile"
)

// genExpr lowers e, leaving its value in destReg, per spec.md §4.5's
// generateExpr(expr, ctx, dest_reg, extra_sp_offset). liveIn is the
// enclosing statement's live-in set, consulted only by allocWithSpill's
// victim selection.
func genExpr(fg *funcGen, e ast.Expr, destReg string, extraSp int, liveIn map[string]struct{}) error {
	switch n := e.(type) {
	case *ast.IntLit:
		fg.w.LoadImmediate(destReg, n.Value)
		return nil

	case *ast.Var:
		off, ok := fg.findVar(n.Name)
		if !ok {
			return genError("undeclared variable %q", n.Name)
		}
		fg.w.LoadStore("lw", destReg, off+extraSp, "sp")
		return nil

	case *ast.UnOp:
		tmp, err := fg.allocWithSpill(regfile.Temp, liveIn)
		if err != nil {
			return err
		}
		if err := genExpr(fg, n.Operand, tmp, extraSp, liveIn); err != nil {
			return err
		}
		switch n.Op {
		case ast.Neg:
			fg.w.Ins2("neg", destReg, tmp)
		case ast.Not:
			fg.w.Ins2("seqz", destReg, tmp)
		default:
			return genError("unsupported unary operator %v", n.Op)
		}
		if !fg.regs.IsSpilled(tmp) {
			fg.regs.Release(tmp)
		}
		return nil

	case *ast.BinOp:
		return genBinOp(fg, n, destReg, extraSp, liveIn)

	case *ast.Call:
		return genCall(fg, n, destReg, extraSp, liveIn)

	default:
		return genError("unsupported expression node %T", e)
	}
}

// genBinOp dispatches to the short-circuit lowering for And/Or, or
// evaluates both operands in full and emits the per-opcode sequence of
// spec.md §4.5's table.
func genBinOp(fg *funcGen, n *ast.BinOp, destReg string, extraSp int, liveIn map[string]struct{}) error {
	if n.Op == ast.And || n.Op == ast.Or {
		return genShortCircuit(fg, n, destReg, extraSp, liveIn)
	}

	l, err := fg.allocWithSpill(regfile.Temp, liveIn)
	if err != nil {
		return err
	}
	if err := genExpr(fg, n.Left, l, extraSp, liveIn); err != nil {
		return err
	}
	r, err := fg.allocWithSpill(regfile.Temp, liveIn)
	if err != nil {
		return err
	}
	if err := genExpr(fg, n.Right, r, extraSp, liveIn); err != nil {
		return err
	}

	switch n.Op {
	case ast.Add:
		fg.w.Ins3("add", destReg, l, r)
	case ast.Sub:
		fg.w.Ins3("sub", destReg, l, r)
	case ast.Mul:
		fg.w.Ins3("mul", destReg, l, r)
	case ast.Div:
		fg.w.Ins3("div", destReg, l, r)
	case ast.Mod:
		fg.w.Ins3("rem", destReg, l, r)
	case ast.Lt:
		fg.w.Ins3("slt", destReg, l, r)
	case ast.Gt:
		fg.w.Ins3("slt", destReg, r, l)
	case ast.Le:
		fg.w.Ins3("slt", destReg, r, l)
		fg.w.Ins2Imm("xori", destReg, destReg, 1)
	case ast.Ge:
		fg.w.Ins3("slt", destReg, l, r)
		fg.w.Ins2Imm("xori", destReg, destReg, 1)
	case ast.Eq:
		fg.w.Ins3("sub", destReg, l, r)
		fg.w.Ins2("seqz", destReg, destReg)
	case ast.Ne:
		fg.w.Ins3("sub", destReg, l, r)
		fg.w.Ins2("snez", destReg, destReg)
	default:
		return genError("unsupported binary operator %v", n.Op)
	}

	if !fg.regs.IsSpilled(l) {
		fg.regs.Release(l)
	}
	if !fg.regs.IsSpilled(r) {
		fg.regs.Release(r)
	}
	return nil
}

// genShortCircuit lowers && (And) and || (Or) per spec.md §4.5: the left
// operand is evaluated into a Save register (since it must survive the
// right operand's evaluation across whatever calls or branches that
// involves), the branch skips the right operand when it already
// determines the result, and the final value is moved into destReg.
func genShortCircuit(fg *funcGen, n *ast.BinOp, destReg string, extraSp int, liveIn map[string]struct{}) error {
	isAnd := n.Op == ast.And

	l, err := fg.allocWithSpill(regfile.Save, liveIn)
	if err != nil {
		return err
	}
	if err := genExpr(fg, n.Left, l, extraSp, liveIn); err != nil {
		return err
	}

	var shortLabel, endLabel string
	if isAnd {
		shortLabel = fg.gen.newLabel("and_false_")
		endLabel = fg.gen.newLabel("and_end_")
		fg.w.BranchZero(l, shortLabel)
	} else {
		shortLabel = fg.gen.newLabel("or_true_")
		endLabel = fg.gen.newLabel("or_end_")
		fg.w.BranchNotZero(l, shortLabel)
	}

	r, err := fg.allocWithSpill(regfile.Save, liveIn)
	if err != nil {
		return err
	}
	if err := genExpr(fg, n.Right, r, extraSp, liveIn); err != nil {
		return err
	}
	fg.w.Move(l, r)
	if !fg.regs.IsSpilled(r) {
		fg.regs.Release(r)
	}
	fg.w.Jump(endLabel)

	fg.w.Label(shortLabel)
	if isAnd {
		fg.w.LoadImmediate(l, 0)
	} else {
		fg.w.LoadImmediate(l, 1)
	}
	fg.w.Label(endLabel)

	fg.w.Move(destReg, l)
	if !fg.regs.IsSpilled(l) {
		fg.regs.Release(l)
	}
	return nil
}
