package riscv32

import (
	"rv32cc/src/ast"
	"rv32cc/src/regfile"
)

// genCall lowers a direct call per spec.md §4.5's eight-step Call
// lowering: save every currently in-use caller-saved register, reserve
// and fill a memory-passed argument area, call, reclaim the argument
// area, restore the saved registers, then move the a0 result into
// destReg if it isn't already there. This is the source's own
// non-standard-ABI convention (see §9 and DESIGN.md), not the RV32
// register-argument ABI.
func genCall(fg *funcGen, n *ast.Call, destReg string, extraSp int, liveIn map[string]struct{}) error {
	info, ok := fg.funcs[n.Name]
	if !ok {
		return genError("call to undefined function %q", n.Name)
	}
	if len(n.Args) != info.nargs {
		return genError("function %q expects %d argument(s), got %d", n.Name, info.nargs, len(n.Args))
	}

	var saved []string
	for _, r := range fg.regs.UsedRegisters() {
		if k := fg.regs.KindOf(r); k == regfile.Temp || k == regfile.Arg {
			saved = append(saved, r)
		}
	}

	saveAreaSize := len(saved) * wordSize
	if saveAreaSize > 0 {
		fg.w.Ins2Imm("addi", "sp", "sp", -saveAreaSize)
		for i, r := range saved {
			fg.w.LoadStore("sw", r, i*wordSize, "sp")
		}
	}
	sp := extraSp + saveAreaSize

	argAreaSize := len(n.Args) * wordSize
	if argAreaSize > 0 {
		fg.w.Ins2Imm("addi", "sp", "sp", -argAreaSize)
	}
	sp += argAreaSize

	for i, a := range n.Args {
		tmp, err := fg.allocWithSpill(regfile.Temp, liveIn)
		if err != nil {
			return err
		}
		if err := genExpr(fg, a, tmp, sp, liveIn); err != nil {
			return err
		}
		fg.w.LoadStore("sw", tmp, i*wordSize, "sp")
		if !fg.regs.IsSpilled(tmp) {
			fg.regs.Release(tmp)
		}
	}

	fg.w.Call(n.Name)

	if argAreaSize > 0 {
		fg.w.Ins2Imm("addi", "sp", "sp", argAreaSize)
	}

	if saveAreaSize > 0 {
		for i := len(saved) - 1; i >= 0; i-- {
			fg.w.LoadStore("lw", saved[i], i*wordSize, "sp")
		}
		fg.w.Ins2Imm("addi", "sp", "sp", saveAreaSize)
	}

	if destReg != "a0" {
		fg.w.Move(destReg, "a0")
	}
	return nil
}
