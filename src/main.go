// Command rv32cc reads a textual AST program from stdin, constant-folds and
// liveness-annotates it, and writes RISC-V 32-bit assembly to stdout.
//
// Usage (spec.md §6): the program takes no required arguments or flags.
// -vb enables verbose structured logging of stage transitions to stderr and
// promotes assembly-validator findings from warnings to a hard error,
// modeled on hhramberg-go-vslc/src/util/args.go's -vb flag and flat,
// hand-written switch (a full flag-parsing framework is unwarranted for a
// single boolean flag).
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"rv32cc/src/codegen/riscv32"
	"rv32cc/src/compilerr"
	"rv32cc/src/diag"
	"rv32cc/src/optimizer"
	"rv32cc/src/parser"
	"rv32cc/src/validate"
)

func main() {
	verbose := false
	for _, a := range os.Args[1:] {
		if a == "-vb" {
			verbose = true
		}
	}

	var log *diag.Logger
	if verbose {
		log = diag.New(os.Stderr)
	}

	if err := run(os.Stdin, os.Stdout, log, verbose); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// run drives the full parse -> fold -> liveness -> codegen -> validate
// pipeline, per the stage sequence in SPEC_FULL.md §2. Any error aborts
// before anything is written to dst, matching spec.md §7's no-partial-
// success rule.
func run(src io.Reader, dst io.Writer, log *diag.Logger, strict bool) error {
	text, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	log.Stage("parse")
	prog, err := parser.Parse(string(text))
	if err != nil {
		return err
	}
	log.StageDone("parse", "functions", len(prog.Funcs))

	log.Stage("fold")
	if err := optimizer.FoldProgram(prog); err != nil {
		return err
	}
	log.StageDone("fold")

	log.Stage("liveness")
	for _, fn := range prog.Funcs {
		optimizer.Liveness(fn)
	}
	log.StageDone("liveness")

	log.Stage("codegen")
	var buf strings.Builder
	if err := riscv32.Generate(&buf, prog); err != nil {
		return err
	}
	log.StageDone("codegen", "bytes", buf.Len())

	log.Stage("validate")
	issues := validate.Check(buf.String())
	if len(issues) > 0 {
		if strict {
			return fmt.Errorf("assembly validation found %d issue(s), first: %s", len(issues), issues[0])
		}
		for _, iss := range issues {
			log.Warn("assembly validation issue", "line", iss.Line, "message", iss.Message)
		}
	}
	log.StageDone("validate", "issues", len(issues))

	_, err = io.WriteString(dst, buf.String())
	return err
}

// formatError renders err as spec.md §6/§7's single-line diagnostic: a
// *compilerr.ParseError gets the "Parse error at line N: " prefix, every
// other error kind gets "Error: ".
func formatError(err error) string {
	var parseErr *compilerr.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("Parse error at line %d: %s", parseErr.Line, parseErr.Message)
	}
	return "Error: " + err.Error()
}
