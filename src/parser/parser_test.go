package parser

import (
	"testing"

	"rv32cc/src/ast"
	"rv32cc/src/compilerr"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse returned unexpected error: %v", err)
	}
	return prog
}

func TestParseEmptyFunction(t *testing.T) {
	src := "Function main(returns void)\n" +
		"Parameters[ ]\n" +
		"Body\n" +
		"  Block\n" +
		"    Return\n"

	prog := mustParse(t, src)
	if len(prog.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Funcs))
	}
	fn := prog.Funcs[0]
	if fn.Name != "main" || fn.RType != ast.Void {
		t.Fatalf("unexpected function header: %+v", fn)
	}
	if len(fn.Params) != 0 {
		t.Fatalf("expected no params, got %v", fn.Params)
	}
	blk, ok := fn.Body.(*ast.Block)
	if !ok {
		t.Fatalf("expected *ast.Block body, got %T", fn.Body)
	}
	if len(blk.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(blk.Stmts))
	}
	if _, ok := blk.Stmts[0].(*ast.Return); !ok {
		t.Fatalf("expected *ast.Return, got %T", blk.Stmts[0])
	}
}

func TestParseDeclAssignReturn(t *testing.T) {
	src := "Function main(returns int)\n" +
		"Parameters[ ]\n" +
		"Body\n" +
		"  Block\n" +
		"    Decl(x)\n" +
		"      IntLit(5)\n" +
		"    Assign(x)\n" +
		"      Binop\n" +
		"        Operator: +\n" +
		"        Left\n" +
		"          Var(x)\n" +
		"        Right\n" +
		"          IntLit(1)\n" +
		"    Return\n" +
		"      Var(x)\n"

	prog := mustParse(t, src)
	blk := prog.Funcs[0].Body.(*ast.Block)
	if len(blk.Stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(blk.Stmts))
	}

	decl, ok := blk.Stmts[0].(*ast.Decl)
	if !ok || decl.Name != "x" {
		t.Fatalf("unexpected decl: %+v", blk.Stmts[0])
	}
	init, ok := decl.Init.(*ast.IntLit)
	if !ok || init.Value != 5 {
		t.Fatalf("unexpected decl init: %+v", decl.Init)
	}

	assign, ok := blk.Stmts[1].(*ast.Assign)
	if !ok || assign.Name != "x" {
		t.Fatalf("unexpected assign: %+v", blk.Stmts[1])
	}
	bin, ok := assign.Value.(*ast.BinOp)
	if !ok || bin.Op != ast.Add {
		t.Fatalf("unexpected assign value: %+v", assign.Value)
	}
	if _, ok := bin.Left.(*ast.Var); !ok {
		t.Fatalf("unexpected binop left: %+v", bin.Left)
	}
	if lit, ok := bin.Right.(*ast.IntLit); !ok || lit.Value != 1 {
		t.Fatalf("unexpected binop right: %+v", bin.Right)
	}

	ret, ok := blk.Stmts[2].(*ast.Return)
	if !ok {
		t.Fatalf("unexpected return: %+v", blk.Stmts[2])
	}
	if v, ok := ret.Value.(*ast.Var); !ok || v.Name != "x" {
		t.Fatalf("unexpected return value: %+v", ret.Value)
	}
}

func TestParseIfElse(t *testing.T) {
	src := "Function f(returns int)\n" +
		"Parameters[n]\n" +
		"Body\n" +
		"  Block\n" +
		"    If\n" +
		"      Condition\n" +
		"        Binop\n" +
		"          Operator: >\n" +
		"          Left\n" +
		"            Var(n)\n" +
		"          Right\n" +
		"            IntLit(0)\n" +
		"      Then\n" +
		"        Block\n" +
		"          Return\n" +
		"            IntLit(1)\n" +
		"      Else\n" +
		"        Block\n" +
		"          Return\n" +
		"            IntLit(0)\n"

	prog := mustParse(t, src)
	fn := prog.Funcs[0]
	if len(fn.Params) != 1 || fn.Params[0] != "n" {
		t.Fatalf("unexpected params: %v", fn.Params)
	}
	blk := fn.Body.(*ast.Block)
	ifStmt, ok := blk.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", blk.Stmts[0])
	}
	if ifStmt.Else == nil {
		t.Fatalf("expected Else branch to be present")
	}
	thenBlk, ok := ifStmt.Then.(*ast.Block)
	if !ok || len(thenBlk.Stmts) != 1 {
		t.Fatalf("unexpected then branch: %+v", ifStmt.Then)
	}
	elseBlk, ok := ifStmt.Else.(*ast.Block)
	if !ok || len(elseBlk.Stmts) != 1 {
		t.Fatalf("unexpected else branch: %+v", ifStmt.Else)
	}
}

func TestParseCallWithArgs(t *testing.T) {
	src := "Function main(returns void)\n" +
		"Parameters[ ]\n" +
		"Body\n" +
		"  Block\n" +
		"    ExprStmt\n" +
		"      Call(foo)\n" +
		"        Arg[0]\n" +
		"          IntLit(1)\n" +
		"        Arg[1]\n" +
		"          IntLit(2)\n"

	prog := mustParse(t, src)
	blk := prog.Funcs[0].Body.(*ast.Block)
	exprStmt, ok := blk.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected *ast.ExprStmt, got %T", blk.Stmts[0])
	}
	call, ok := exprStmt.X.(*ast.Call)
	if !ok || call.Name != "foo" {
		t.Fatalf("unexpected call: %+v", exprStmt.X)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
	if lit, ok := call.Args[0].(*ast.IntLit); !ok || lit.Value != 1 {
		t.Fatalf("unexpected arg 0: %+v", call.Args[0])
	}
	if lit, ok := call.Args[1].(*ast.IntLit); !ok || lit.Value != 2 {
		t.Fatalf("unexpected arg 1: %+v", call.Args[1])
	}
}

func TestParseWhileBreakContinue(t *testing.T) {
	src := "Function loop(returns void)\n" +
		"Parameters[ ]\n" +
		"Body\n" +
		"  Block\n" +
		"    While\n" +
		"      Condition\n" +
		"        IntLit(1)\n" +
		"      Body\n" +
		"        Block\n" +
		"          Break\n" +
		"          Continue\n"

	prog := mustParse(t, src)
	blk := prog.Funcs[0].Body.(*ast.Block)
	whileStmt, ok := blk.Stmts[0].(*ast.While)
	if !ok {
		t.Fatalf("expected *ast.While, got %T", blk.Stmts[0])
	}
	bodyBlk, ok := whileStmt.Body.(*ast.Block)
	if !ok || len(bodyBlk.Stmts) != 2 {
		t.Fatalf("unexpected while body: %+v", whileStmt.Body)
	}
	if _, ok := bodyBlk.Stmts[0].(*ast.Break); !ok {
		t.Fatalf("expected *ast.Break, got %T", bodyBlk.Stmts[0])
	}
	if _, ok := bodyBlk.Stmts[1].(*ast.Continue); !ok {
		t.Fatalf("expected *ast.Continue, got %T", bodyBlk.Stmts[1])
	}
}

func TestParseUnaryAndComments(t *testing.T) {
	src := "Function f(returns int)\n" +
		"Parameters[ ]\n" +
		"Body\n" +
		"  Block\n" +
		"/ this is a comment and should be skipped\n" +
		"    Return\n" +
		"      Unop(-)\n" +
		"        IntLit(3)\n"

	prog := mustParse(t, src)
	blk := prog.Funcs[0].Body.(*ast.Block)
	ret, ok := blk.Stmts[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected *ast.Return, got %T", blk.Stmts[0])
	}
	un, ok := ret.Value.(*ast.UnOp)
	if !ok || un.Op != ast.Neg {
		t.Fatalf("unexpected unop: %+v", ret.Value)
	}
}

func TestParseMissingThenIsError(t *testing.T) {
	src := "Function f(returns void)\n" +
		"Parameters[ ]\n" +
		"Body\n" +
		"  Block\n" +
		"    If\n" +
		"      Condition\n" +
		"        IntLit(1)\n"

	_, err := Parse(src)
	if err == nil {
		t.Fatalf("expected a parse error, got nil")
	}
	if _, ok := err.(*compilerr.ParseError); !ok {
		t.Fatalf("expected *compilerr.ParseError, got %T", err)
	}
}

func TestParseIntLitOverflow(t *testing.T) {
	src := "Function f(returns int)\n" +
		"Parameters[ ]\n" +
		"Body\n" +
		"  Block\n" +
		"    Return\n" +
		"      IntLit(9999999999)\n"

	_, err := Parse(src)
	if err == nil {
		t.Fatalf("expected overflow error, got nil")
	}
}
