package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rv32cc/src/compilerr"
)

// TestRunEmptyVoidFunction exercises the full parse->fold->liveness->
// codegen->validate pipeline end to end, using the textual AST format
// directly rather than hand-built ast nodes (codegen/riscv32's own test
// suite already covers the generator in isolation that way).
func TestRunEmptyVoidFunction(t *testing.T) {
	input := "Function f(returns void)\nParameters[ ]\nBody\n  Block\n"

	var out strings.Builder
	err := run(strings.NewReader(input), &out, nil, false)
	require.NoError(t, err)

	got := out.String()
	for _, want := range []string{".text", ".globl main", "f:", "f_return:", "ret"} {
		assert.Contains(t, got, want)
	}
}

func TestRunConstantFoldedReturn(t *testing.T) {
	input := strings.Join([]string{
		"Function f(returns int)",
		"Parameters[ ]",
		"Body",
		"  Block",
		"    Return",
		"      Binop",
		"      Operator: +",
		"      Left",
		"        IntLit(1)",
		"      Right",
		"        IntLit(2)",
		"",
	}, "\n")

	var out strings.Builder
	require.NoError(t, run(strings.NewReader(input), &out, nil, false))
	assert.Contains(t, out.String(), "li a0,3")
}

func TestRunParseErrorFormatting(t *testing.T) {
	var out strings.Builder
	err := run(strings.NewReader("not a valid program"), &out, nil, false)
	require.Error(t, err)

	var parseErr *compilerr.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.True(t, strings.HasPrefix(formatError(err), "Parse error at line "))
	assert.Empty(t, out.String(), "no assembly should be written once parsing has failed")
}
