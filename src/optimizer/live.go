package optimizer

import "rv32cc/src/ast"

// varSet is the string-set representation used throughout liveness
// analysis; map[string]struct{} is the idiomatic zero-footprint Go set.
type varSet map[string]struct{}

func newSet() varSet { return make(varSet) }

func (s varSet) add(name string) { s[name] = struct{}{} }

// union returns a fresh set containing every member of a and b, never
// mutating either argument.
func union(a, b varSet) varSet {
	out := make(varSet, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func (s varSet) without(name string) varSet {
	out := make(varSet, len(s))
	for k := range s {
		if k != name {
			out[k] = struct{}{}
		}
	}
	return out
}

func toAstSet(s varSet) map[string]struct{} {
	return map[string]struct{}(s)
}

// Liveness runs the single-pass backward liveness analysis of spec.md
// §4.2 over fn.Body, annotating every statement's LiveIn (and Block/If/
// While's LiveOut) in place. The function's own exit has no live
// variables, matching the original's empty liveOut seed at the call site
// in ASTParser (see original_source/cpp/src/ASTParser.cpp, function
// analysis entry point).
func Liveness(fn *ast.FuncDef) {
	analyzeStmt(fn.Body, newSet())
}

// analyzeStmt is a direct line-by-line port of the original
// analyzeLiveVariables: it is NOT a fixed-point computation — each
// statement is visited exactly once, in reverse order within its
// enclosing Block, per spec.md §9's pinned design. It returns the
// live-in set for stmt (the original's "liveVars").
func analyzeStmt(stmt ast.Stmt, liveOut varSet) varSet {
	switch s := stmt.(type) {
	case *ast.Block:
		s.LiveOut = toAstSet(liveOut)
		curr := liveOut
		for i := len(s.Stmts) - 1; i >= 0; i-- {
			curr = analyzeStmt(s.Stmts[i], curr)
		}
		s.SetLive(toAstSet(curr))
		return curr

	case *ast.Assign:
		used := usedVars(s.Value)
		live := union(liveOut, used).without(s.Name)
		s.SetLive(toAstSet(live))
		return live

	case *ast.Decl:
		var used varSet
		if s.Init != nil {
			used = usedVars(s.Init)
		} else {
			used = newSet()
		}
		live := union(liveOut, used).without(s.Name)
		s.SetLive(toAstSet(live))
		return live

	case *ast.If:
		thenLive := analyzeStmt(s.Then, liveOut)
		liveIn := union(usedVars(s.Cond), thenLive)
		if s.Else != nil {
			elseLive := analyzeStmt(s.Else, liveOut)
			liveIn = union(liveIn, elseLive)
		}
		s.SetLive(toAstSet(liveIn))
		s.LiveOut = toAstSet(liveOut)
		return liveIn

	case *ast.While:
		bodyLive := analyzeStmt(s.Body, liveOut)
		liveIn := union(usedVars(s.Cond), bodyLive)
		s.SetLive(toAstSet(liveIn))
		s.LiveOut = toAstSet(liveOut)
		return liveIn

	case *ast.Return:
		var used varSet
		if s.Value != nil {
			used = usedVars(s.Value)
		} else {
			used = newSet()
		}
		live := union(liveOut, used)
		s.SetLive(toAstSet(live))
		return live

	case *ast.ExprStmt:
		live := union(liveOut, usedVars(s.X))
		s.SetLive(toAstSet(live))
		return live

	default: // Break, Continue, Empty: no uses, no kills
		live := union(liveOut, newSet())
		stmt.SetLive(toAstSet(live))
		return live
	}
}

// usedVars recursively collects the set of variable names read by e,
// mirroring getUsedVars in original_source/cpp/src/ASTParser.cpp:
// IntLit contributes nothing, Var contributes itself, and every
// composite expression contributes the union of its children's uses.
func usedVars(e ast.Expr) varSet {
	out := newSet()
	collectUsedVars(e, out)
	return out
}

func collectUsedVars(e ast.Expr, out varSet) {
	switch n := e.(type) {
	case nil:
		return
	case *ast.Var:
		out.add(n.Name)
	case *ast.BinOp:
		collectUsedVars(n.Left, out)
		collectUsedVars(n.Right, out)
	case *ast.UnOp:
		collectUsedVars(n.Operand, out)
	case *ast.Call:
		for _, a := range n.Args {
			collectUsedVars(a, out)
		}
	case *ast.IntLit:
		// contributes no variable uses
	}
}
