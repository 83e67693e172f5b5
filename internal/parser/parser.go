package parser

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/hwlang/idl/internal/ast"
	"github.com/hwlang/idl/internal/value"
)

// Parse turns one IDL source file into a frozen Program.
func Parse(file string, src []byte) (*ast.Program, error) {
	toks, err := lex(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{file: file, toks: toks}
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	ast.Freeze(prog)
	return prog, nil
}

// ParseExpr parses a single expression, as fed to the evaluator.
func ParseExpr(src string) (ast.Rvalue, error) {
	toks, err := lex("expr", []byte(src))
	if err != nil {
		return nil, err
	}
	p := &parser{file: "expr", toks: toks}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, p.errf(p.cur(), "unexpected %s after expression", p.cur())
	}
	ast.Freeze(e)
	return e, nil
}

type parser struct {
	file string
	toks []token
	pos  int
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) next() token { t := p.toks[p.pos]; p.pos++; return t }

func (p *parser) is(text string) bool {
	t := p.cur()
	return t.kind == tokPunct && t.text == text
}

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if !p.accept(text) {
		return p.errf(p.cur(), "expected %q, got %s", text, p.cur())
	}
	return nil
}

// expectGT closes a template bracket, consuming one ">". A nested
// close produces a single ">>" token; split it instead of failing.
func (p *parser) expectGT() error {
	if p.is(">>") {
		p.toks[p.pos].text = ">"
		p.toks[p.pos].col++
		return nil
	}
	return p.expect(">")
}

func (p *parser) isKw(kw string) bool {
	t := p.cur()
	return t.kind == tokIdent && t.text == kw
}

func (p *parser) acceptKw(kw string) bool {
	if p.isKw(kw) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) ident() (token, error) {
	t := p.cur()
	if t.kind != tokIdent {
		return token{}, p.errf(t, "expected a name, got %s", t)
	}
	p.pos++
	return t, nil
}

func (p *parser) span(t token) ast.Span {
	return ast.Span{File: p.file, Line: t.line, Col: t.col}
}

func (p *parser) errf(t token, format string, args ...any) error {
	return fmt.Errorf("%s:%d:%d: %s", p.file, t.line, t.col, fmt.Sprintf(format, args...))
}

// Top-level declarations

func (p *parser) parseProgram() (*ast.Program, error) {
	var decls []ast.Node
	for p.cur().kind != tokEOF {
		d, err := p.parseTopDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return ast.NewProgram(p.file, decls), nil
}

func (p *parser) parseTopDecl() (ast.Node, error) {
	switch {
	case p.isKw("enum"):
		return p.parseEnumDef()
	case p.isKw("bitfield"):
		return p.parseBitfieldDef()
	case p.isKw("struct"):
		return p.parseStructDef()
	case p.isKw("function"), p.isKw("builtin"):
		return p.parseFunctionDef()
	case p.isKw("constant"):
		d, err := p.parseVarDecl(true)
		if err != nil {
			return nil, err
		}
		d.Global = true
		return d, nil
	default:
		d, err := p.parseVarDecl(false)
		if err != nil {
			return nil, err
		}
		d.Global = true
		return d, nil
	}
}

func (p *parser) parseEnumDef() (*ast.EnumDef, error) {
	start := p.next() // enum
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var elems []ast.EnumElemDef
	for !p.accept("}") {
		el, err := p.ident()
		if err != nil {
			return nil, err
		}
		e := ast.EnumElemDef{Name: el.text}
		// An element value is a literal, possibly negated.
		if p.cur().kind == tokInt || p.cur().kind == tokSized || p.is("-") {
			v, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			e.Val = v
		}
		p.accept(",")
		elems = append(elems, e)
	}
	return ast.NewEnumDef(p.span(start), name.text, elems), nil
}

func (p *parser) parseBitfieldDef() (*ast.BitfieldDef, error) {
	start := p.next() // bitfield
	if err := p.expect("("); err != nil {
		return nil, err
	}
	width, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var ranges []ast.RangeDef
	for !p.accept("}") {
		fname, err := p.ident()
		if err != nil {
			return nil, err
		}
		hi, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		r := ast.RangeDef{Name: fname.text, Hi: hi}
		if p.accept("-") {
			lo, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			r.Lo = lo
		}
		p.accept(",")
		ranges = append(ranges, r)
	}
	return ast.NewBitfieldDef(p.span(start), name.text, width, ranges), nil
}

func (p *parser) parseStructDef() (*ast.StructDef, error) {
	start := p.next() // struct
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var members []ast.Param
	for !p.accept("}") {
		ref, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		mname, err := p.ident()
		if err != nil {
			return nil, err
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		members = append(members, ast.Param{Name: mname.text, Ref: ref})
	}
	return ast.NewStructDef(p.span(start), name.text, members), nil
}

func (p *parser) parseFunctionDef() (*ast.FunctionDef, error) {
	start := p.cur()
	builtin := p.acceptKw("builtin")
	if !p.acceptKw("function") {
		return nil, p.errf(p.cur(), "expected function, got %s", p.cur())
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	var templates []ast.Param
	if p.accept("<") {
		templates, err = p.parseParamList(">")
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	params, err := p.parseParamList(")")
	if err != nil {
		return nil, err
	}
	var rets []*ast.TypeRef
	if p.accept("->") {
		for {
			r, err := p.parseTypeRef()
			if err != nil {
				return nil, err
			}
			rets = append(rets, r)
			if !p.accept(",") {
				break
			}
		}
	}
	var body *ast.Block
	if !p.accept(";") {
		body, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	d := ast.NewFunctionDef(p.span(start), name.text, templates, params, rets, body)
	d.Builtin = builtin
	return d, nil
}

// parseParamList reads "T name" pairs up to the closing token.
func (p *parser) parseParamList(close string) ([]ast.Param, error) {
	var params []ast.Param
	for {
		if close == ">" && p.is(">") || close == ")" && p.is(")") {
			p.pos++
			return params, nil
		}
		ref, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: name.text, Ref: ref})
		if p.accept(",") {
			continue
		}
		if close == ">" {
			if err := p.expectGT(); err != nil {
				return nil, err
			}
			return params, nil
		}
		if err := p.expect(close); err != nil {
			return nil, err
		}
		return params, nil
	}
}

func (p *parser) parseTypeRef() (*ast.TypeRef, error) {
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	var width ast.Rvalue
	if name.text == "Bits" {
		if err := p.expect("<"); err != nil {
			return nil, err
		}
		// Parsed below the relational level so the closing > is
		// not taken as a comparison.
		width, err = p.parseShift()
		if err != nil {
			return nil, err
		}
		if err := p.expectGT(); err != nil {
			return nil, err
		}
	}
	var length ast.Rvalue
	if p.accept("[") {
		length, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
	}
	return ast.NewTypeRef(p.span(name), name.text, width, length), nil
}

// Statements

func (p *parser) parseBlock() (*ast.Block, error) {
	start := p.cur()
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.accept("}") {
		if p.cur().kind == tokEOF {
			return nil, p.errf(p.cur(), "unterminated block")
		}
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	return ast.NewBlock(p.span(start), stmts), nil
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.isKw("if"):
		return p.parseIf()
	case p.isKw("for"):
		return p.parseFor()
	case p.isKw("return"):
		return p.parseReturn()
	case p.isKw("constant"):
		return p.parseVarDecl(true)
	case p.is("("):
		return p.parseTupleAssign()
	case p.is("-"):
		return p.parseDiscard()
	}
	// A statement starting with a type is a declaration; anything
	// else is an assignment or a bare call. The forms are not
	// distinguishable without lookahead, so try the declaration
	// shape first and rewind when it does not fit.
	mark := p.pos
	if d, err := p.parseVarDecl(false); err == nil {
		return d, nil
	}
	p.pos = mark
	return p.parseSimpleStmt(true)
}

func (p *parser) parseVarDecl(constant bool) (*ast.VarDecl, error) {
	start := p.cur()
	if constant {
		p.next() // constant
	}
	ref, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	var init ast.Rvalue
	if p.accept("=") {
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	d := ast.NewVarDecl(p.span(start), ref, name.text, init)
	d.Const = constant
	return d, nil
}

// parseSimpleStmt reads an assignment, an increment, or a bare call.
// With terminated false the trailing semicolon is left to the caller
// (the for-loop update position).
func (p *parser) parseSimpleStmt(terminated bool) (ast.Stmt, error) {
	start := p.cur()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var st ast.Stmt
	switch {
	case p.accept("="):
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		st = ast.NewAssign(p.span(start), e, val)
	case p.accept("++"):
		id, ok := e.(*ast.IdentExpr)
		if !ok {
			return nil, p.errf(start, "++ needs a plain variable")
		}
		st = p.increment(start, id)
	default:
		st = ast.NewExprStmt(p.span(start), e)
	}
	if terminated {
		if err := p.expect(";"); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// increment desugars i++ into i = i + 1.
func (p *parser) increment(start token, id *ast.IdentExpr) ast.Stmt {
	s := p.span(start)
	one := ast.NewIntLit(s, big.NewInt(1), false)
	sum := ast.NewBinaryExpr(s, "+", false, ast.NewIdentExpr(s, id.Name), one)
	return ast.NewAssign(s, ast.NewIdentExpr(s, id.Name), sum)
}

func (p *parser) parseDiscard() (ast.Stmt, error) {
	start := p.next() // -
	if err := p.expect("="); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return ast.NewAssign(p.span(start), ast.NewDontCareExpr(p.span(start)), val), nil
}

func (p *parser) parseTupleAssign() (ast.Stmt, error) {
	start := p.next() // (
	var targets []ast.Rvalue
	for {
		if p.is("-") {
			t := p.next()
			targets = append(targets, ast.NewDontCareExpr(p.span(t)))
		} else {
			tgt, err := p.parsePostfix()
			if err != nil {
				return nil, err
			}
			targets = append(targets, tgt)
		}
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if err := p.expect("="); err != nil {
		return nil, err
	}
	call, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return ast.NewTupleAssign(p.span(start), targets, call), nil
}

func (p *parser) parseIf() (ast.Stmt, error) {
	start := p.next() // if
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.acceptKw("else") {
		if p.isKw("if") {
			els, err = p.parseIf()
		} else {
			var b *ast.Block
			b, err = p.parseBlock()
			els = b
		}
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIfStmt(p.span(start), cond, then, els), nil
}

func (p *parser) parseFor() (ast.Stmt, error) {
	start := p.next() // for
	if err := p.expect("("); err != nil {
		return nil, err
	}
	init, err := p.parseVarDecl(false)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	post, err := p.parseSimpleStmt(false)
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewForStmt(p.span(start), init, cond, post, body), nil
}

func (p *parser) parseReturn() (ast.Stmt, error) {
	start := p.next() // return
	var vals []ast.Rvalue
	if !p.is(";") {
		for {
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
			if !p.accept(",") {
				break
			}
		}
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return ast.NewReturnStmt(p.span(start), vals), nil
}

// Expressions, lowest precedence first.

func (p *parser) parseExpr() (ast.Rvalue, error) { return p.parseTernary() }

func (p *parser) parseTernary() (ast.Rvalue, error) {
	start := p.cur()
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.accept("?") {
		return cond, nil
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return ast.NewTernaryExpr(p.span(start), cond, then, els), nil
}

func (p *parser) parseOr() (ast.Rvalue, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.is("||") {
		tok := p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewLogicalExpr(p.span(tok), "||", left, right)
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Rvalue, error) {
	left, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	for p.is("&&") {
		tok := p.next()
		right, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		left = ast.NewLogicalExpr(p.span(tok), "&&", left, right)
	}
	return left, nil
}

func (p *parser) parseBitOr() (ast.Rvalue, error) {
	return p.parseBinaryLevel([]string{"|"}, p.parseBitXor)
}

func (p *parser) parseBitXor() (ast.Rvalue, error) {
	return p.parseBinaryLevel([]string{"^"}, p.parseBitAnd)
}

func (p *parser) parseBitAnd() (ast.Rvalue, error) {
	return p.parseBinaryLevel([]string{"&"}, p.parseEquality)
}

var cmpOps = map[string]value.CmpOp{
	"==": value.OpEq, "!=": value.OpNe,
	"<": value.OpLt, "<=": value.OpLe, ">": value.OpGt, ">=": value.OpGe,
}

func (p *parser) parseEquality() (ast.Rvalue, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.is("==") || p.is("!=") {
		tok := p.next()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = ast.NewCmpExpr(p.span(tok), cmpOps[tok.text], left, right)
	}
	return left, nil
}

func (p *parser) parseRelational() (ast.Rvalue, error) {
	left, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for p.is("<") || p.is("<=") || p.is(">") || p.is(">=") {
		tok := p.next()
		right, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		left = ast.NewCmpExpr(p.span(tok), cmpOps[tok.text], left, right)
	}
	return left, nil
}

func (p *parser) parseShift() (ast.Rvalue, error) {
	return p.parseBinaryLevel([]string{"<<", ">>", "`<<"}, p.parseAdd)
}

func (p *parser) parseAdd() (ast.Rvalue, error) {
	return p.parseBinaryLevel([]string{"+", "-", "`+", "`-"}, p.parseMul)
}

func (p *parser) parseMul() (ast.Rvalue, error) {
	return p.parseBinaryLevel([]string{"*", "/", "%", "`*"}, p.parseUnary)
}

func (p *parser) parseBinaryLevel(ops []string, sub func() (ast.Rvalue, error)) (ast.Rvalue, error) {
	left, err := sub()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		for _, o := range ops {
			if p.is(o) {
				op = o
				break
			}
		}
		if op == "" {
			return left, nil
		}
		tok := p.next()
		right, err := sub()
		if err != nil {
			return nil, err
		}
		widening := strings.HasPrefix(op, "`")
		left = ast.NewBinaryExpr(p.span(tok), strings.TrimPrefix(op, "`"), widening, left, right)
	}
}

func (p *parser) parseUnary() (ast.Rvalue, error) {
	for _, op := range []string{"-", "~", "!"} {
		if p.is(op) {
			tok := p.next()
			x, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return ast.NewUnaryExpr(p.span(tok), op, x), nil
		}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Rvalue, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("["):
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if p.accept(":") {
				lo, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				if err := p.expect("]"); err != nil {
					return nil, err
				}
				e = ast.NewExtractExpr(e.Span(), e, idx, lo)
				continue
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			e = ast.NewIndexExpr(e.Span(), e, idx)
		case p.accept("."):
			name, err := p.ident()
			if err != nil {
				return nil, err
			}
			e = ast.NewMemberExpr(e.Span(), e, name.text)
		default:
			return e, nil
		}
	}
}

func (p *parser) parsePrimary() (ast.Rvalue, error) {
	tok := p.cur()
	switch tok.kind {
	case tokInt:
		p.pos++
		return p.intLit(tok)
	case tokSized:
		p.pos++
		return p.sizedLit(tok)
	case tokString:
		p.pos++
		return ast.NewStrLit(p.span(tok), tok.text), nil
	case tokIdent:
		return p.parseIdentExpr()
	}
	if p.accept("(") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return e, nil
	}
	if p.is("{") {
		return p.parseArrayLit()
	}
	return nil, p.errf(tok, "unexpected %s", tok)
}

func (p *parser) parseArrayLit() (ast.Rvalue, error) {
	start := p.next() // {
	var elems []ast.Rvalue
	for !p.accept("}") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if !p.accept(",") && !p.is("}") {
			return nil, p.errf(p.cur(), "expected , or } in array literal")
		}
	}
	return ast.NewArrayLit(p.span(start), elems), nil
}

func (p *parser) parseIdentExpr() (ast.Rvalue, error) {
	name := p.next()
	switch name.text {
	case "true":
		return ast.NewBoolLit(p.span(name), true), nil
	case "false":
		return ast.NewBoolLit(p.span(name), false), nil
	case "CSR":
		if p.is("[") {
			return p.parseCSRExpr(name)
		}
	}
	if p.accept("::") {
		elem, err := p.ident()
		if err != nil {
			return nil, err
		}
		return ast.NewEnumRefExpr(p.span(name), name.text, elem.text), nil
	}
	if p.is("<") {
		// Could be a template call f<4>(x) or a comparison f < 4.
		// Try the call shape; rewind when it does not close into an
		// argument list.
		mark := p.pos
		if call, ok := p.tryTemplateCall(name); ok {
			return call, nil
		}
		p.pos = mark
	}
	if p.accept("(") {
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return ast.NewCallExpr(p.span(name), name.text, nil, args), nil
	}
	return ast.NewIdentExpr(p.span(name), name.text), nil
}

func (p *parser) parseCSRExpr(name token) (ast.Rvalue, error) {
	p.next() // [
	csr, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	if p.accept(".") {
		field, err := p.ident()
		if err != nil {
			return nil, err
		}
		return ast.NewCSRFieldExpr(p.span(name), csr.text, field.text), nil
	}
	return ast.NewCSRExpr(p.span(name), csr.text), nil
}

func (p *parser) tryTemplateCall(name token) (ast.Rvalue, bool) {
	p.next() // <
	var targs []ast.Rvalue
	for {
		a, err := p.parseShift()
		if err != nil {
			return nil, false
		}
		targs = append(targs, a)
		if p.accept(",") {
			continue
		}
		if p.expectGT() != nil {
			return nil, false
		}
		break
	}
	if !p.accept("(") {
		return nil, false
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, false
	}
	return ast.NewCallExpr(p.span(name), name.text, targs, args), true
}

func (p *parser) parseArgs() ([]ast.Rvalue, error) {
	var args []ast.Rvalue
	for !p.accept(")") {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !p.accept(",") && !p.is(")") {
			return nil, p.errf(p.cur(), "expected , or ) in arguments")
		}
	}
	return args, nil
}

func (p *parser) intLit(tok token) (ast.Rvalue, error) {
	hex := strings.HasPrefix(tok.text, "0x") || strings.HasPrefix(tok.text, "0X")
	s := tok.text
	base := 10
	if hex {
		s = s[2:]
		base = 16
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, p.errf(tok, "malformed integer %q", tok.text)
	}
	return ast.NewIntLit(p.span(tok), v, hex), nil
}

func (p *parser) sizedLit(tok token) (ast.Rvalue, error) {
	parts := strings.SplitN(tok.text, "'", 2)
	width, err := strconv.Atoi(parts[0])
	if err != nil || width <= 0 {
		return nil, p.errf(tok, "bad width in literal %q", tok.text)
	}
	rest := parts[1]
	signed := rest[0] == 's'
	if signed {
		rest = rest[1:]
	}
	base := rest[0]
	v, ok := new(big.Int).SetString(rest[1:], baseValue(base))
	if !ok {
		return nil, p.errf(tok, "malformed literal %q", tok.text)
	}
	return ast.NewBitsLit(p.span(tok), width, signed, base, v), nil
}

func baseValue(b byte) int {
	switch b {
	case 'h':
		return 16
	case 'b':
		return 2
	case 'o':
		return 8
	default:
		return 10
	}
}
