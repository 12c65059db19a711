// Package parser recovers a typed ast.Program from the textual, indentation-
// and keyword-structured AST format described by the compiler's front end
// contract. It is a hand-rolled recursive-descent reader over a line-buffered
// stream, in the spirit of hhramberg-go-vslc/src/frontend's rune-level lexer
// (line/column tracking, one-line look-ahead) adapted to the indentation-
// significant textual grammar rather than a goyacc token stream — the format
// has no ambiguity that would benefit from a generated parser, which is also
// how the original C++ ASTParser reads it directly line by line.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"rv32cc/src/ast"
	"rv32cc/src/compilerr"
)

// srcLine is one non-blank, non-comment line of input together with its
// indentation column and 1-indexed line number in the original source.
type srcLine struct {
	text   string // content with leading whitespace stripped
	col    int    // indentation column: spaces=1, tabs=4, summed
	lineNo int
}

// parser holds the filtered line buffer and a cursor into it.
type parser struct {
	lines []srcLine
	pos   int
}

// Parse reads the textual AST format from src and returns the recovered
// Program, or a *compilerr.ParseError describing the first malformed
// construct encountered.
func Parse(src string) (*ast.Program, error) {
	p := &parser{lines: splitLines(src)}
	return p.parseProgram()
}

// splitLines breaks src into raw lines, computes each line's indentation
// column, and drops blank lines and lines whose first non-whitespace
// character is '/' (comments), per the textual AST format's indentation
// rule.
func splitLines(src string) []srcLine {
	raw := strings.Split(src, "\n")
	out := make([]srcLine, 0, len(raw))
	for i, r := range raw {
		col, rest := leadingIndent(r)
		trimmed := strings.TrimRight(rest, " \t\r")
		if trimmed == "" {
			continue
		}
		if trimmed[0] == '/' {
			continue
		}
		out = append(out, srcLine{text: trimmed, col: col, lineNo: i + 1})
	}
	return out
}

// leadingIndent returns the indentation column of line (spaces count as 1,
// tabs count as 4, summed left to right) and the remainder of the line
// after the leading whitespace run.
func leadingIndent(line string) (int, string) {
	col := 0
	i := 0
	for i < len(line) {
		switch line[i] {
		case ' ':
			col++
		case '\t':
			col += 4
		default:
			return col, line[i:]
		}
		i++
	}
	return col, ""
}

// --------------------------
// ----- cursor helpers -----
// --------------------------

func (p *parser) peek() *srcLine {
	if p.pos >= len(p.lines) {
		return nil
	}
	return &p.lines[p.pos]
}

func (p *parser) advance() *srcLine {
	l := p.peek()
	if l != nil {
		p.pos++
	}
	return l
}

func (p *parser) lastLine() int {
	if p.pos > 0 && p.pos-1 < len(p.lines) {
		return p.lines[p.pos-1].lineNo
	}
	if len(p.lines) > 0 {
		return p.lines[len(p.lines)-1].lineNo
	}
	return 0
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &compilerr.ParseError{Line: p.lastLine(), Message: fmt.Sprintf(format, args...)}
}

// acceptPrefix consumes the current line if it begins with prefix, returning
// its full text. On mismatch it does not advance the cursor.
func (p *parser) acceptPrefix(prefix string) (string, bool) {
	l := p.peek()
	if l == nil || !strings.HasPrefix(l.text, prefix) {
		return "", false
	}
	p.advance()
	return l.text, true
}

// expectKeywordTolerant matches prefix against the current line, consuming
// it on success. If the current line does not match, it skips exactly one
// line and retries once before failing — this models the textual format's
// documented tolerance for one stray blank construct between a relation's
// sub-keywords, confined to the If and Binop productions per the format
// specification.
func (p *parser) expectKeywordTolerant(prefix string) (string, error) {
	if l, ok := p.acceptPrefix(prefix); ok {
		return l, nil
	}
	if p.peek() != nil {
		p.advance() // tolerate one stray line
	}
	if l, ok := p.acceptPrefix(prefix); ok {
		return l, nil
	}
	return "", p.errorf("expected %q", prefix)
}

func (p *parser) expectKeyword(prefix string) (string, error) {
	if l, ok := p.acceptPrefix(prefix); ok {
		return l, nil
	}
	if p.peek() == nil {
		return "", p.errorf("expected %q, got end of input", prefix)
	}
	return "", p.errorf("expected %q, got %q", prefix, p.peek().text)
}

// --------------------------
// ----- program/func -------
// --------------------------

func (p *parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.peek() != nil {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		prog.Funcs = append(prog.Funcs, fn)
	}
	return prog, nil
}

func (p *parser) parseFunction() (*ast.FuncDef, error) {
	head, err := p.expectKeyword("Function ")
	if err != nil {
		return nil, err
	}
	line := p.lines[p.pos-1].lineNo

	rest := strings.TrimPrefix(head, "Function ")
	open := strings.Index(rest, "(returns ")
	if open < 0 {
		return nil, &compilerr.ParseError{Line: line, Message: "malformed function header: missing \"(returns \""}
	}
	name := rest[:open]
	rest = rest[open+len("(returns "):]
	closeParen := strings.Index(rest, ")")
	if closeParen < 0 {
		return nil, &compilerr.ParseError{Line: line, Message: "malformed function header: missing closing ')'"}
	}
	rtype := rest[:closeParen]

	var rt ast.RetType
	switch rtype {
	case "int":
		rt = ast.Int
	case "void":
		rt = ast.Void
	default:
		return nil, &compilerr.ParseError{Line: line, Message: "unknown return type " + strconv.Quote(rtype)}
	}

	paramsLine, err := p.expectKeyword("Parameters")
	if err != nil {
		return nil, err
	}
	params, err := parseParamList(strings.TrimPrefix(paramsLine, "Parameters"))
	if err != nil {
		return nil, &compilerr.ParseError{Line: p.lines[p.pos-1].lineNo, Message: err.Error()}
	}

	if _, err := p.expectKeyword("Body"); err != nil {
		return nil, err
	}

	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}

	return &ast.FuncDef{Name: name, RType: rt, Params: params, Body: body}, nil
}

func parseParamList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, errMsg("malformed parameter list")
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, nil
	}
	parts := strings.Split(inner, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out, nil
}

// --------------------------
// ----- statements ----------
// --------------------------

func (p *parser) parseStmt() (ast.Stmt, error) {
	l := p.peek()
	if l == nil {
		return nil, p.errorf("expected statement, got end of input")
	}

	switch {
	case l.text == "Block":
		return p.parseBlock()
	case strings.HasPrefix(l.text, "Decl("):
		return p.parseDecl()
	case strings.HasPrefix(l.text, "Assign("):
		return p.parseAssign()
	case l.text == "If":
		return p.parseIf()
	case l.text == "While":
		return p.parseWhile()
	case l.text == "Return":
		return p.parseReturn()
	case l.text == "Break":
		p.advance()
		return &ast.Break{}, nil
	case l.text == "Continue":
		p.advance()
		return &ast.Continue{}, nil
	case l.text == "EmptyStmt":
		p.advance()
		return &ast.Empty{}, nil
	case l.text == "ExprStmt":
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: e}, nil
	default:
		return nil, p.errorf("unrecognized statement %q", l.text)
	}
}

func (p *parser) parseBlock() (*ast.Block, error) {
	head := p.advance() // consume "Block"
	blk := &ast.Block{}
	for p.peek() != nil && p.peek().col > head.col {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, s)
	}
	return blk, nil
}

func (p *parser) parseDecl() (*ast.Decl, error) {
	l := p.advance()
	name, err := parenName(l.text, "Decl(")
	if err != nil {
		return nil, &compilerr.ParseError{Line: l.lineNo, Message: err.Error()}
	}
	d := &ast.Decl{Name: name}
	if p.peek() != nil && p.peek().col > l.col {
		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		d.Init = init
	}
	return d, nil
}

func (p *parser) parseAssign() (*ast.Assign, error) {
	l := p.advance()
	name, err := parenName(l.text, "Assign(")
	if err != nil {
		return nil, &compilerr.ParseError{Line: l.lineNo, Message: err.Error()}
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Assign{Name: name, Value: value}, nil
}

func (p *parser) parseIf() (*ast.If, error) {
	p.advance() // consume "If"

	if _, err := p.expectKeyword("Condition"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectKeywordTolerant("Then"); err != nil {
		return nil, err
	}
	thenStmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}

	stmt := &ast.If{Cond: cond, Then: thenStmt}

	// "Else" is a keyword unique to this production: an inner If always
	// consumes its own optional Else before returning, so any Else line
	// still pending here belongs to this If regardless of its column.
	if l := p.peek(); l != nil && l.text == "Else" {
		p.advance()
		elseStmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseStmt
	}
	return stmt, nil
}

func (p *parser) parseWhile() (*ast.While, error) {
	p.advance() // consume "While"

	if _, err := p.expectKeyword("Condition"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectKeyword("Body"); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

func (p *parser) parseReturn() (*ast.Return, error) {
	l := p.advance() // consume "Return"
	ret := &ast.Return{}
	if p.peek() != nil && p.peek().col > l.col {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ret.Value = v
	}
	return ret, nil
}

// --------------------------
// ----- expressions ---------
// --------------------------

func (p *parser) parseExpr() (ast.Expr, error) {
	l := p.peek()
	if l == nil {
		return nil, p.errorf("expected expression, got end of input")
	}

	switch {
	case strings.HasPrefix(l.text, "IntLit("):
		return p.parseIntLit()
	case strings.HasPrefix(l.text, "Var("):
		return p.parseVar()
	case strings.HasPrefix(l.text, "Call("):
		return p.parseCall()
	case l.text == "Binop":
		return p.parseBinop()
	case strings.HasPrefix(l.text, "Unop("):
		return p.parseUnop()
	default:
		return nil, p.errorf("unrecognized expression %q", l.text)
	}
}

func (p *parser) parseIntLit() (*ast.IntLit, error) {
	l := p.advance()
	inner, err := parenBody(l.text, "IntLit(")
	if err != nil {
		return nil, &compilerr.ParseError{Line: l.lineNo, Message: err.Error()}
	}
	v, err := strconv.ParseInt(strings.TrimSpace(inner), 10, 64)
	if err != nil {
		return nil, &compilerr.ParseError{Line: l.lineNo, Message: "malformed integer literal " + strconv.Quote(inner)}
	}
	if v < -2147483648 || v > 2147483647 {
		return nil, &compilerr.ParseError{Line: l.lineNo, Message: "integer literal " + strconv.FormatInt(v, 10) + " overflows 32 bits"}
	}
	return &ast.IntLit{Value: int32(v)}, nil
}

func (p *parser) parseVar() (*ast.Var, error) {
	l := p.advance()
	name, err := parenName(l.text, "Var(")
	if err != nil {
		return nil, &compilerr.ParseError{Line: l.lineNo, Message: err.Error()}
	}
	return &ast.Var{Name: name}, nil
}

func (p *parser) parseCall() (*ast.Call, error) {
	l := p.advance()
	name, err := parenName(l.text, "Call(")
	if err != nil {
		return nil, &compilerr.ParseError{Line: l.lineNo, Message: err.Error()}
	}
	call := &ast.Call{Name: name}
	for p.peek() != nil && strings.HasPrefix(p.peek().text, "Arg[") {
		p.advance()
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	return call, nil
}

var binopSymbols = map[string]ast.BinOpKind{
	"+": ast.Add, "-": ast.Sub, "*": ast.Mul, "/": ast.Div, "%": ast.Mod,
	"<": ast.Lt, ">": ast.Gt, "<=": ast.Le, ">=": ast.Ge,
	"==": ast.Eq, "!=": ast.Ne, "&&": ast.And, "||": ast.Or,
}

func (p *parser) parseBinop() (*ast.BinOp, error) {
	p.advance() // consume "Binop"

	opLine, err := p.expectKeyword("Operator: ")
	if err != nil {
		return nil, err
	}
	sym := strings.TrimSpace(strings.TrimPrefix(opLine, "Operator: "))
	op, ok := binopSymbols[sym]
	if !ok {
		return nil, &compilerr.ParseError{Line: p.lines[p.pos-1].lineNo, Message: "unknown binary operator " + strconv.Quote(sym)}
	}

	if _, err := p.expectKeyword("Left"); err != nil {
		return nil, err
	}
	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectKeywordTolerant("Right"); err != nil {
		return nil, err
	}
	right, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ast.BinOp{Op: op, Left: left, Right: right}, nil
}

func (p *parser) parseUnop() (*ast.UnOp, error) {
	l := p.advance()
	sym, err := parenBody(l.text, "Unop(")
	if err != nil {
		return nil, &compilerr.ParseError{Line: l.lineNo, Message: err.Error()}
	}
	var op ast.UnOpKind
	switch strings.TrimSpace(sym) {
	case "-":
		op = ast.Neg
	case "!":
		op = ast.Not
	default:
		return nil, &compilerr.ParseError{Line: l.lineNo, Message: "unknown unary operator " + strconv.Quote(sym)}
	}
	operand, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.UnOp{Op: op, Operand: operand}, nil
}

// --------------------------
// ----- small helpers -------
// --------------------------

// parenBody returns the text between the opening "prefix(" and the matching
// closing ')' on a single line such as "IntLit(42)" or "Unop(-)".
func parenBody(text, prefix string) (string, error) {
	if !strings.HasPrefix(text, prefix) || !strings.HasSuffix(text, ")") {
		return "", errMsg("malformed " + strconv.Quote(text))
	}
	return text[len(prefix) : len(text)-1], nil
}

func parenName(text, prefix string) (string, error) {
	return parenBody(text, prefix)
}

func errMsg(s string) error { return &compilerr.ParseError{Message: s} }
