// Package asmwriter provides the line-oriented assembly emitter used by the
// code generator. It generalizes hhramberg-go-vslc/src/util/io.go's Writer
// methods (Ins1/Ins2/Ins2imm/Ins3/LoadStore/Label) to a plain io.Writer
// sink instead of the teacher's channel-based fan-in writer: this back end
// runs single-threaded (spec.md §5), so there is no worker goroutine whose
// output needs collecting through a channel.
//
// Instruction lines are single-space separated (mnemonic, then operands
// joined by ", "), matching original_source/cpp/src/Generator.cpp's output
// literally rather than the tab-indented style a hand-written assembly file
// usually has — spec.md §8's concrete scenarios pin exact substrings of the
// emitted text, and those substrings use this spacing.
package asmwriter

import (
	"bufio"
	"fmt"
	"io"
)

// Writer buffers and emits one assembly line per call. Errors from the
// underlying io.Writer are recorded and surfaced by Err/Flush rather than
// returned from every emit call, since the generator's tree walk would
// otherwise have to thread an error return through every instruction site.
type Writer struct {
	w   *bufio.Writer
	err error
}

// New wraps dst in a Writer.
func New(dst io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(dst)}
}

func (w *Writer) writeString(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.WriteString(s)
}

// WriteString emits a raw line of text verbatim, followed by a newline.
func (w *Writer) WriteString(s string) {
	w.writeString(s)
	w.writeString("\n")
}

// Write emits a formatted raw line, followed by a newline.
func (w *Writer) Write(format string, args ...interface{}) {
	w.writeString(fmt.Sprintf(format, args...))
	w.writeString("\n")
}

// LoadImmediate emits "li dest,v" — no space after the comma, matching the
// source's literal output (spec.md §8 scenario 2 pins this exact spacing).
func (w *Writer) LoadImmediate(dest string, v int32) {
	w.writeString(fmt.Sprintf("li %s,%d\n", dest, v))
}

// Ins1 emits a one-operand instruction, e.g. "jal ra".
func (w *Writer) Ins1(op, rs1 string) {
	w.writeString(fmt.Sprintf("%s %s\n", op, rs1))
}

// Ins2 emits a two-operand instruction, e.g. "mv a0, t0".
func (w *Writer) Ins2(op, rd, rs1 string) {
	w.writeString(fmt.Sprintf("%s %s, %s\n", op, rd, rs1))
}

// Ins2Imm emits a destination-register-plus-immediate instruction, e.g.
// "addi sp, sp, -16".
func (w *Writer) Ins2Imm(op, rd, rs1 string, imm int) {
	w.writeString(fmt.Sprintf("%s %s, %s, %d\n", op, rd, rs1, imm))
}

// Ins3 emits a three-register instruction, e.g. "add t0, t1, t2".
func (w *Writer) Ins3(op, rd, rs1, rs2 string) {
	w.writeString(fmt.Sprintf("%s %s, %s, %s\n", op, rd, rs1, rs2))
}

// LoadStore emits a load or store with a base-register-plus-offset
// addressing mode, e.g. "lw t0, 12(sp)".
func (w *Writer) LoadStore(op, reg string, offset int, base string) {
	w.writeString(fmt.Sprintf("%s %s, %d(%s)\n", op, reg, offset, base))
}

// Label emits a label definition line, e.g. "if_end_3:".
func (w *Writer) Label(name string) {
	w.writeString(fmt.Sprintf("%s:\n", name))
}

// Jump emits an unconditional jump.
func (w *Writer) Jump(label string) {
	w.writeString(fmt.Sprintf("j %s\n", label))
}

// BranchZero emits a branch-if-zero.
func (w *Writer) BranchZero(cond, label string) {
	w.writeString(fmt.Sprintf("beqz %s, %s\n", cond, label))
}

// BranchNotZero emits a branch-if-nonzero.
func (w *Writer) BranchNotZero(cond, label string) {
	w.writeString(fmt.Sprintf("bnez %s, %s\n", cond, label))
}

// Move emits a register-to-register move.
func (w *Writer) Move(dst, src string) {
	w.writeString(fmt.Sprintf("mv %s, %s\n", dst, src))
}

// Call emits a direct call instruction.
func (w *Writer) Call(name string) {
	w.writeString(fmt.Sprintf("call %s\n", name))
}

// Ret emits the function-return instruction.
func (w *Writer) Ret() {
	w.writeString("ret\n")
}

// Directive emits an assembler directive line verbatim, e.g. ".globl main".
func (w *Writer) Directive(format string, args ...interface{}) {
	w.writeString(fmt.Sprintf(format, args...))
	w.writeString("\n")
}

// Flush flushes any buffered output to the underlying writer and returns
// the first error encountered by either the Writer or the flush itself.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}

// Err returns the first error recorded by a prior emit call, if any.
func (w *Writer) Err() error {
	return w.err
}
