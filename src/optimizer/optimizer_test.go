package optimizer

import (
	"testing"

	"rv32cc/src/ast"
)

func TestFoldArithmetic(t *testing.T) {
	// (3 + 4) * 2 => 14
	e := &ast.BinOp{
		Op:   ast.Mul,
		Left: &ast.BinOp{Op: ast.Add, Left: &ast.IntLit{Value: 3}, Right: &ast.IntLit{Value: 4}},
		Right: &ast.IntLit{Value: 2},
	}
	got, err := FoldExpr(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit, ok := got.(*ast.IntLit)
	if !ok || lit.Value != 14 {
		t.Fatalf("expected IntLit(14), got %+v", got)
	}
}

func TestFoldDivisionTruncatesTowardZero(t *testing.T) {
	e := &ast.BinOp{Op: ast.Div, Left: &ast.IntLit{Value: -7}, Right: &ast.IntLit{Value: 2}}
	got, err := FoldExpr(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lit := got.(*ast.IntLit); lit.Value != -3 {
		t.Fatalf("expected -3, got %d", lit.Value)
	}
}

func TestFoldModSignOfDividend(t *testing.T) {
	e := &ast.BinOp{Op: ast.Mod, Left: &ast.IntLit{Value: -7}, Right: &ast.IntLit{Value: 2}}
	got, err := FoldExpr(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lit := got.(*ast.IntLit); lit.Value != -1 {
		t.Fatalf("expected -1, got %d", lit.Value)
	}
}

func TestFoldDivisionByZeroIsFoldError(t *testing.T) {
	e := &ast.BinOp{Op: ast.Div, Left: &ast.IntLit{Value: 1}, Right: &ast.IntLit{Value: 0}}
	_, err := FoldExpr(e)
	if err == nil {
		t.Fatalf("expected a fold error, got nil")
	}
}

func TestFoldLeavesVariableExpressionsAlone(t *testing.T) {
	e := &ast.BinOp{Op: ast.Add, Left: &ast.Var{Name: "x"}, Right: &ast.IntLit{Value: 1}}
	got, err := FoldExpr(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bin, ok := got.(*ast.BinOp)
	if !ok {
		t.Fatalf("expected unfolded BinOp, got %T", got)
	}
	if _, ok := bin.Left.(*ast.Var); !ok {
		t.Fatalf("expected Var left operand preserved, got %T", bin.Left)
	}
}

func TestFoldLogicalOperatorsEager(t *testing.T) {
	e := &ast.BinOp{Op: ast.And, Left: &ast.IntLit{Value: 0}, Right: &ast.IntLit{Value: 5}}
	got, err := FoldExpr(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lit := got.(*ast.IntLit); lit.Value != 0 {
		t.Fatalf("expected 0, got %d", lit.Value)
	}
}

func TestLivenessSimpleBlock(t *testing.T) {
	// Block:
	//   Decl(x) = IntLit(1)
	//   Return Var(x)
	decl := &ast.Decl{Name: "x", Init: &ast.IntLit{Value: 1}}
	ret := &ast.Return{Value: &ast.Var{Name: "x"}}
	block := &ast.Block{Stmts: []ast.Stmt{decl, ret}}
	fn := &ast.FuncDef{Name: "f", RType: ast.Int, Body: block}

	Liveness(fn)

	if _, ok := ret.Live()["x"]; !ok {
		t.Fatalf("expected x live-in at return, got %v", ret.Live())
	}
	if _, ok := decl.Live()["x"]; ok {
		t.Fatalf("expected x NOT live-in before its own declaration, got %v", decl.Live())
	}
	if len(block.LiveOut) != 0 {
		t.Fatalf("expected empty function-exit live-out, got %v", block.LiveOut)
	}
}

func TestLivenessAssignKillsVariable(t *testing.T) {
	// Block:
	//   Assign(y) = Var(x)
	//   Return (no value)
	assign := &ast.Assign{Name: "y", Value: &ast.Var{Name: "x"}}
	ret := &ast.Return{}
	block := &ast.Block{Stmts: []ast.Stmt{assign, ret}}
	fn := &ast.FuncDef{Name: "f", RType: ast.Void, Body: block}

	Liveness(fn)

	if _, ok := assign.Live()["x"]; !ok {
		t.Fatalf("expected x live-in at assign (it is used), got %v", assign.Live())
	}
	if _, ok := assign.Live()["y"]; ok {
		t.Fatalf("expected y NOT live-in at assign (it is killed, not used), got %v", assign.Live())
	}
}

func TestLivenessIfUnionsBothBranches(t *testing.T) {
	// If Var(c) Then Return Var(a) Else Return Var(b)
	thenRet := &ast.Return{Value: &ast.Var{Name: "a"}}
	elseRet := &ast.Return{Value: &ast.Var{Name: "b"}}
	ifStmt := &ast.If{Cond: &ast.Var{Name: "c"}, Then: thenRet, Else: elseRet}
	block := &ast.Block{Stmts: []ast.Stmt{ifStmt}}
	fn := &ast.FuncDef{Name: "f", RType: ast.Int, Body: block}

	Liveness(fn)

	live := ifStmt.Live()
	for _, want := range []string{"a", "b", "c"} {
		if _, ok := live[want]; !ok {
			t.Fatalf("expected %q live-in at if, got %v", want, live)
		}
	}
}
