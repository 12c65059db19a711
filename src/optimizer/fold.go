// Package optimizer implements the two tree-rewriting passes that run
// between parsing and code generation: constant folding and backward
// liveness annotation. Both operate on the ast package's sum type and
// modify the tree they are given in place: folding replaces child fields
// with their folded versions and returns the same node (or a new IntLit),
// so the input tree is not preserved. This matches hhramberg-go-vslc/src/ir's Optimise pipeline in spirit while
// folding with explicit 32-bit two's-complement arithmetic instead of the
// teacher's float/int dual-typed folding (this language has a single
// integer type, so the algebraic-identity special cases the teacher
// applies for float/int mixes do not apply here).
package optimizer

import (
	"rv32cc/src/ast"
	"rv32cc/src/compilerr"
)

// FoldProgram constant-folds every function body in prog in place,
// returning the first *compilerr.FoldError encountered (division or
// modulo by a literal zero).
func FoldProgram(prog *ast.Program) error {
	for _, fn := range prog.Funcs {
		body, err := FoldStmt(fn.Body)
		if err != nil {
			return err
		}
		fn.Body = body
	}
	return nil
}

// FoldStmt recursively folds every expression reachable from stmt and
// returns the (possibly identical) rewritten statement.
func FoldStmt(stmt ast.Stmt) (ast.Stmt, error) {
	switch s := stmt.(type) {
	case *ast.Block:
		for i, c := range s.Stmts {
			folded, err := FoldStmt(c)
			if err != nil {
				return nil, err
			}
			s.Stmts[i] = folded
		}
		return s, nil

	case *ast.Decl:
		if s.Init != nil {
			folded, err := FoldExpr(s.Init)
			if err != nil {
				return nil, err
			}
			s.Init = folded
		}
		return s, nil

	case *ast.Assign:
		folded, err := FoldExpr(s.Value)
		if err != nil {
			return nil, err
		}
		s.Value = folded
		return s, nil

	case *ast.If:
		cond, err := FoldExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		s.Cond = cond
		then, err := FoldStmt(s.Then)
		if err != nil {
			return nil, err
		}
		s.Then = then
		if s.Else != nil {
			elseStmt, err := FoldStmt(s.Else)
			if err != nil {
				return nil, err
			}
			s.Else = elseStmt
		}
		return s, nil

	case *ast.While:
		cond, err := FoldExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		s.Cond = cond
		body, err := FoldStmt(s.Body)
		if err != nil {
			return nil, err
		}
		s.Body = body
		return s, nil

	case *ast.Return:
		if s.Value != nil {
			folded, err := FoldExpr(s.Value)
			if err != nil {
				return nil, err
			}
			s.Value = folded
		}
		return s, nil

	case *ast.ExprStmt:
		folded, err := FoldExpr(s.X)
		if err != nil {
			return nil, err
		}
		s.X = folded
		return s, nil

	default: // Break, Continue, Empty carry no expressions
		return stmt, nil
	}
}

// FoldExpr recursively folds e, replacing any subtree whose operands are
// all IntLit with the single IntLit holding its computed value.
func FoldExpr(e ast.Expr) (ast.Expr, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return n, nil

	case *ast.Var:
		return n, nil

	case *ast.UnOp:
		operand, err := FoldExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		n.Operand = operand
		if lit, ok := operand.(*ast.IntLit); ok {
			return foldUnary(n.Op, lit.Value), nil
		}
		return n, nil

	case *ast.Call:
		for i, a := range n.Args {
			folded, err := FoldExpr(a)
			if err != nil {
				return nil, err
			}
			n.Args[i] = folded
		}
		return n, nil

	case *ast.BinOp:
		left, err := FoldExpr(n.Left)
		if err != nil {
			return nil, err
		}
		n.Left = left
		right, err := FoldExpr(n.Right)
		if err != nil {
			return nil, err
		}
		n.Right = right

		lLit, lok := left.(*ast.IntLit)
		rLit, rok := right.(*ast.IntLit)
		if !lok || !rok {
			return n, nil
		}
		return foldBinary(n.Op, lLit.Value, rLit.Value)

	default:
		return e, nil
	}
}

func foldUnary(op ast.UnOpKind, v int32) *ast.IntLit {
	switch op {
	case ast.Neg:
		return &ast.IntLit{Value: -v}
	case ast.Not:
		if v == 0 {
			return &ast.IntLit{Value: 1}
		}
		return &ast.IntLit{Value: 0}
	default:
		return &ast.IntLit{Value: v}
	}
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// foldBinary evaluates a binary operator over two known-constant 32-bit
// operands. Arithmetic wraps using ordinary int32 two's-complement
// semantics (Go's native behavior); division truncates toward zero and
// modulo takes the sign of the dividend, matching spec.md §4.2 exactly.
// Division or modulo by a literal zero is reported as a *compilerr.FoldError
// rather than propagated to run time, since both operands are already
// known at fold time.
func foldBinary(op ast.BinOpKind, a, b int32) (*ast.IntLit, error) {
	switch op {
	case ast.Add:
		return &ast.IntLit{Value: a + b}, nil
	case ast.Sub:
		return &ast.IntLit{Value: a - b}, nil
	case ast.Mul:
		return &ast.IntLit{Value: a * b}, nil
	case ast.Div:
		if b == 0 {
			return nil, &compilerr.FoldError{Message: "division by zero in constant expression"}
		}
		return &ast.IntLit{Value: a / b}, nil
	case ast.Mod:
		if b == 0 {
			return nil, &compilerr.FoldError{Message: "modulo by zero in constant expression"}
		}
		return &ast.IntLit{Value: a % b}, nil
	case ast.Lt:
		return &ast.IntLit{Value: boolInt(a < b)}, nil
	case ast.Gt:
		return &ast.IntLit{Value: boolInt(a > b)}, nil
	case ast.Le:
		return &ast.IntLit{Value: boolInt(a <= b)}, nil
	case ast.Ge:
		return &ast.IntLit{Value: boolInt(a >= b)}, nil
	case ast.Eq:
		return &ast.IntLit{Value: boolInt(a == b)}, nil
	case ast.Ne:
		return &ast.IntLit{Value: boolInt(a != b)}, nil
	case ast.And:
		// Eager: both literals are already evaluated above, so folding
		// never special-cases short-circuit skipping the way codegen does.
		return &ast.IntLit{Value: boolInt(a != 0 && b != 0)}, nil
	case ast.Or:
		return &ast.IntLit{Value: boolInt(a != 0 || b != 0)}, nil
	default:
		return &ast.IntLit{Value: 0}, nil
	}
}
