// Package riscv32 walks an optimized ast.Program and emits RISC-V 32-bit
// assembly text. It follows hhramberg-go-vslc/src/backend/riscv's overall
// shape (a typed register file, a per-function prologue/epilogue pair, and
// label-driven control flow), adapted line-for-line to the memory-passed
// calling convention and FunctionContext/allocWithSpill model of
// original_source/cpp/src/Generator.cpp (see DESIGN.md: the teacher's
// register-argument ABI and materialize-on-demand value tracking were
// dropped in favor of the original's destReg-threaded, extra_sp_offset
// scheme, since spec.md §4.4-4.6 pin that scheme's exact emitted text).
package riscv32

import (
	"fmt"

	"rv32cc/src/asmwriter"
	"rv32cc/src/ast"
	"rv32cc/src/compilerr"
	"rv32cc/src/regfile"
)

// wordSize is the size, in bytes, of a stack slot or register value.
const wordSize = 4

// funcInfo is the subset of a FuncDef's signature the generator needs to
// validate and lower calls to it.
type funcInfo struct {
	nargs int
	rtype ast.RetType
}

// funcGen is a single function's FunctionContext (spec.md §3.2): its
// scope chain, monotonic stack-size counter, loop-label stacks, and the
// register file live for the duration of one function's emission.
type funcGen struct {
	fn    *ast.FuncDef
	funcs map[string]funcInfo
	w     *asmwriter.Writer
	gen   *Generator
	regs  *regfile.RegisterFile

	scopes    []map[string]int // name -> stack offset, innermost last
	stackSize int              // monotonically increasing; never reclaimed

	loopStart []string
	loopEnd   []string

	lastSpill string // name of the most recently evicted register, never re-evicted back to back

	returnLabel  string
	paramOffsets []int
}

// newFuncGen builds the initial FunctionContext for fn: a single top-level
// scope with every parameter already bound to a monotonically allocated
// stack slot, exactly as original_source's generateFunc does before
// running the shadow pass.
func newFuncGen(fn *ast.FuncDef, funcs map[string]funcInfo, gen *Generator) *funcGen {
	fg := &funcGen{
		fn:          fn,
		funcs:       funcs,
		gen:         gen,
		regs:        regfile.New(),
		returnLabel: fn.Name + "_return",
	}
	fg.pushScope()
	fg.paramOffsets = make([]int, len(fn.Params))
	for i, p := range fn.Params {
		off := fg.allocateVar()
		fg.addVar(p, off)
		fg.paramOffsets[i] = off
	}
	return fg
}

// cloneWithWriter produces an independent funcGen sharing fg's scope chain
// and stack-size state but with its own writer and a freshly reset
// register file — used to run the shadow pass and the real pass from the
// same starting point (spec.md §4.4's two-phase emit).
func (fg *funcGen) cloneWithWriter(w *asmwriter.Writer) *funcGen {
	clone := &funcGen{
		fn:          fg.fn,
		funcs:       fg.funcs,
		w:           w,
		gen:         fg.gen,
		regs:        regfile.New(),
		stackSize:   fg.stackSize,
		returnLabel: fg.returnLabel,
		paramOffsets: append([]int(nil), fg.paramOffsets...),
	}
	clone.scopes = make([]map[string]int, len(fg.scopes))
	for i, s := range fg.scopes {
		m := make(map[string]int, len(s))
		for k, v := range s {
			m[k] = v
		}
		clone.scopes[i] = m
	}
	return clone
}

func (fg *funcGen) pushScope() { fg.scopes = append(fg.scopes, make(map[string]int)) }

func (fg *funcGen) popScope() { fg.scopes = fg.scopes[:len(fg.scopes)-1] }

func (fg *funcGen) addVar(name string, offset int) {
	fg.scopes[len(fg.scopes)-1][name] = offset
}

// findVar searches the scope chain from innermost to outermost.
func (fg *funcGen) findVar(name string) (int, bool) {
	for i := len(fg.scopes) - 1; i >= 0; i-- {
		if off, ok := fg.scopes[i][name]; ok {
			return off, true
		}
	}
	return 0, false
}

// allocateVar reserves the next free stack slot. Offsets are never
// reclaimed — spec.md §4.4 fixes stack_size as monotonically increasing,
// unlike a liveness-driven slot-reuse scheme.
func (fg *funcGen) allocateVar() int {
	off := fg.stackSize
	fg.stackSize += wordSize
	return off
}

// allocWithSpill implements spec.md §4.5's allocWithSpill: try a plain
// Alloc, and on exhaustion evict a victim chosen by the three-tier
// preference order (not live, not the last victim; else not the last
// victim; else anything of the right kind).
func (fg *funcGen) allocWithSpill(k regfile.Kind, liveIn map[string]struct{}) (string, error) {
	if name, err := fg.regs.Alloc(k); err == nil {
		return name, nil
	}
	used := fg.regs.UsedRegisters()

	pick := func(accept func(r string) bool) string {
		for _, r := range used {
			if fg.regs.KindOf(r) == k && accept(r) {
				return r
			}
		}
		return ""
	}

	victim := pick(func(r string) bool {
		_, live := liveIn[r]
		return !live && r != fg.lastSpill
	})
	if victim == "" {
		victim = pick(func(r string) bool { return r != fg.lastSpill })
	}
	if victim == "" {
		victim = pick(func(string) bool { return true })
	}
	if victim == "" {
		return "", genError("no register available to spill")
	}

	off := fg.allocateVar()
	fg.w.LoadStore("sw", victim, off, "sp")
	fg.regs.Spill(victim, off)
	fg.regs.Release(victim)
	fg.lastSpill = victim

	return fg.regs.Alloc(k)
}

func genError(format string, args ...interface{}) error {
	return &compilerr.GenError{Message: fmt.Sprintf(format, args...)}
}
