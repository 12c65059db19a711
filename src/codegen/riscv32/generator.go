package riscv32

import (
	"fmt"
	"io"
	"strconv"

	"rv32cc/src/asmwriter"
	"rv32cc/src/ast"
)

// Generator tracks state shared across every function in a program: the
// monotonically increasing label counter. Per spec.md §9's design note,
// labels are unique across the whole program rather than reset per
// function (mirroring original_source's file-scope globalLabelCount).
type Generator struct {
	labelSeq int
}

// newLabel returns prefix+N for the current counter value, then
// increments it — matching original_source/cpp/src/Generator.cpp's
// uniqueLabel exactly (post-increment, so the first label drawn in a
// program is always suffixed "0").
func (g *Generator) newLabel(prefix string) string {
	n := g.labelSeq
	g.labelSeq++
	return prefix + strconv.Itoa(n)
}

// Generate lowers prog to assembly text written to dst. Every function is
// emitted with a two-phase approach: a shadow pass over a discarded sink
// first learns the function's stack_size, then a second, real pass emits
// the correctly sized prologue followed by the body — mirroring
// original_source's generateFunc, which runs a temporary Generator over
// the body before it can size its own prologue.
func Generate(dst io.Writer, prog *ast.Program) error {
	funcs := make(map[string]funcInfo, len(prog.Funcs))
	for _, fn := range prog.Funcs {
		funcs[fn.Name] = funcInfo{nargs: len(fn.Params), rtype: fn.RType}
	}

	gen := &Generator{}
	w := asmwriter.New(dst)
	w.Directive(".text")
	w.Directive(".globl main")

	for _, fn := range prog.Funcs {
		if err := genFunction(gen, w, fn, funcs); err != nil {
			return fmt.Errorf("generating function %q: %w", fn.Name, err)
		}
	}
	return w.Flush()
}

// genFunction runs the shadow pass then the real pass for a single
// function, writing the real pass's output to w.
func genFunction(gen *Generator, w *asmwriter.Writer, fn *ast.FuncDef, funcs map[string]funcInfo) error {
	base := newFuncGen(fn, funcs, gen)

	shadowLabelStart := gen.labelSeq
	shadow := base.cloneWithWriter(asmwriter.New(io.Discard))
	if err := genStmt(shadow, fn.Body, 0); err != nil {
		return err
	}
	frameSize := wordSize + shadow.stackSize // ra(4) + locals/params/spills
	gen.labelSeq = shadowLabelStart

	real := base.cloneWithWriter(w)
	return emitFunction(real, frameSize)
}

// emitFunction writes the prologue, the parameter copy-in, the body, and
// the unified epilogue, per spec.md §4.4/§4.6.
func emitFunction(fg *funcGen, frameSize int) error {
	fg.w.Label(fg.fn.Name)
	fg.w.Ins2Imm("addi", "sp", "sp", -frameSize)
	fg.w.LoadStore("sw", "ra", frameSize-wordSize, "sp")

	for i, off := range fg.paramOffsets {
		fg.w.LoadStore("lw", "t0", frameSize+i*wordSize, "sp")
		fg.w.LoadStore("sw", "t0", off, "sp")
	}

	if err := genStmt(fg, fg.fn.Body, 0); err != nil {
		return err
	}

	fg.w.Label(fg.returnLabel)
	fg.w.LoadStore("lw", "ra", frameSize-wordSize, "sp")
	fg.w.Ins2Imm("addi", "sp", "sp", frameSize)
	fg.w.Ret()
	return fg.w.Err()
}
