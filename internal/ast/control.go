package ast

import (
	"strings"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// forIterationLimit bounds compile-time loop execution. A loop still
// running after this many iterations is treated as non-terminating.
const forIterationLimit = 1 << 20

// IfStmt is an if/else chain. Else holds either a Block or another
// IfStmt for else-if.
type IfStmt struct {
	node
	Cond Rvalue
	Then *Block
	Else Stmt // nil, *Block, or *IfStmt
}

func NewIfStmt(s Span, cond Rvalue, then *Block, els Stmt) *IfStmt {
	st := &IfStmt{node: at(s), Cond: cond, Then: then, Else: els}
	st.adopt(st, cond, then, els)
	return st
}

// takenBranch reports which branch a known condition selects. The
// second result is false when the condition is not decidable, in
// which case both branches are live.
func (st *IfStmt) takenBranch(t *symtab.Table) (Stmt, bool) {
	cv, err := st.Cond.Value(t)
	if err != nil {
		return nil, false
	}
	if cv.Bool() {
		return st.Then, true
	}
	return st.Else, true
}

func (st *IfStmt) TypeCheck(t *symtab.Table) error {
	if err := st.Cond.TypeCheck(t); err != nil {
		return err
	}
	if st.Cond.Type(t).Kind() != types.Boolean {
		return errf(st.Cond, "if condition must be Boolean, not %s", st.Cond.Type(t))
	}
	check := func(s Stmt) error {
		if s == nil {
			return nil
		}
		t.Push("if")
		defer t.Pop()
		return s.TypeCheck(t)
	}
	// A decided condition leaves only one branch live; the dead one
	// is never checked.
	if taken, decided := st.takenBranch(t); decided {
		return check(taken)
	}
	if err := check(st.Then); err != nil {
		return err
	}
	return check(st.Else)
}

func (st *IfStmt) Execute(t *symtab.Table) error {
	if taken, decided := st.takenBranch(t); decided {
		if taken == nil {
			return nil
		}
		t.Push("if")
		defer t.Pop()
		return taken.Execute(t)
	}
	// Unknown condition: either branch may run, so every variable
	// either one writes becomes unknown. A return inside such a
	// branch makes the function's result undecidable too.
	st.ExecuteUnknown(t)
	if mayReturn(st.Then) || mayReturn(st.Else) {
		return &returnSignal{cause: unknownf(st, "return depends on a condition with no compile-time value")}
	}
	return nil
}

// mayReturn reports whether running the statement could yield from
// the enclosing function.
func mayReturn(s Stmt) bool {
	if isNilNode(s) {
		return false
	}
	switch st := s.(type) {
	case *ReturnStmt:
		return true
	case *Block:
		for _, c := range st.Stmts {
			if mayReturn(c) {
				return true
			}
		}
	case *IfStmt:
		return mayReturn(st.Then) || mayReturn(st.Else)
	case *ForStmt:
		return mayReturn(st.Body)
	}
	return false
}

func (st *IfStmt) ExecuteUnknown(t *symtab.Table) {
	for _, s := range []Stmt{st.Then, st.Else} {
		if s == nil {
			continue
		}
		t.Push("if")
		s.ExecuteUnknown(t)
		t.Pop()
	}
}

func (st *IfStmt) ReturnTypes(t *symtab.Table) []*types.Type {
	collect := func(s Stmt) []*types.Type {
		r, ok := s.(Returns)
		if s == nil || !ok {
			return nil
		}
		t.Push("if")
		defer t.Pop()
		return r.ReturnTypes(t)
	}
	if taken, decided := st.takenBranch(t); decided {
		if taken == nil {
			return nil
		}
		return collect(taken)
	}
	return append(collect(st.Then), collect(st.Else)...)
}

func (st *IfStmt) TextForm() string {
	s := "if (" + st.Cond.TextForm() + ") {\n" + st.Then.TextForm() + "}"
	switch els := st.Else.(type) {
	case nil:
	case *IfStmt:
		s += " else " + els.TextForm()
	default:
		s += " else {\n" + els.TextForm() + "}"
	}
	return s
}

// ForStmt is a counted loop, fully unrolled at compile time when the
// bounds are known.
type ForStmt struct {
	node
	Init *VarDecl
	Cond Rvalue
	Post Stmt // the update assignment
	Body *Block
}

func NewForStmt(s Span, init *VarDecl, cond Rvalue, post Stmt, body *Block) *ForStmt {
	st := &ForStmt{node: at(s), Init: init, Cond: cond, Post: post, Body: body}
	st.adopt(st, init, cond, post, body)
	return st
}

func (st *ForStmt) TypeCheck(t *symtab.Table) error {
	t.Push("for")
	defer t.Pop()
	if err := st.Init.TypeCheck(t); err != nil {
		return err
	}
	if err := st.Cond.TypeCheck(t); err != nil {
		return err
	}
	if st.Cond.Type(t).Kind() != types.Boolean {
		return errf(st.Cond, "for condition must be Boolean, not %s", st.Cond.Type(t))
	}
	if err := st.Post.TypeCheck(t); err != nil {
		return err
	}
	return st.Body.TypeCheck(t)
}

func (st *ForStmt) Execute(t *symtab.Table) error {
	t.Push("for")
	defer t.Pop()
	if err := st.Init.Execute(t); err != nil {
		return err
	}
	for i := 0; ; i++ {
		if i == forIterationLimit {
			internalf(st, "loop does not terminate at compile time")
		}
		cv, err := st.Cond.Value(t)
		if err != nil {
			if value.IsUnknown(err) {
				// Bounds not decidable; the body may run any
				// number of times, so a return inside it makes
				// the result undecidable.
				t.Push("for body")
				st.Body.ExecuteUnknown(t)
				t.Pop()
				st.Post.ExecuteUnknown(t)
				if mayReturn(st.Body) {
					return &returnSignal{cause: unknownf(st, "return depends on loop bounds with no compile-time value")}
				}
				return nil
			}
			return err
		}
		if !cv.Bool() {
			return nil
		}
		t.Push("for body")
		err = st.Body.Execute(t)
		t.Pop()
		if err != nil {
			return err
		}
		if err := st.Post.Execute(t); err != nil {
			return err
		}
	}
}

func (st *ForStmt) ExecuteUnknown(t *symtab.Table) {
	t.Push("for")
	st.Init.ExecuteUnknown(t)
	t.Push("for body")
	st.Body.ExecuteUnknown(t)
	t.Pop()
	st.Post.ExecuteUnknown(t)
	t.Pop()
}

func (st *ForStmt) ReturnTypes(t *symtab.Table) []*types.Type {
	t.Push("for")
	defer t.Pop()
	if err := st.Init.TypeCheck(t); err != nil {
		return nil
	}
	return st.Body.ReturnTypes(t)
}

func (st *ForStmt) TextForm() string {
	return "for (" + strings.TrimSuffix(st.Init.TextForm(), ";") + "; " +
		st.Cond.TextForm() + "; " +
		strings.TrimSuffix(st.Post.TextForm(), ";") + ") {\n" + st.Body.TextForm() + "}"
}

// ReturnStmt yields zero or more values from the enclosing function.
type ReturnStmt struct {
	node
	Vals []Rvalue
}

func NewReturnStmt(s Span, vals []Rvalue) *ReturnStmt {
	st := &ReturnStmt{node: at(s), Vals: vals}
	for _, v := range vals {
		st.adopt(st, v)
	}
	return st
}

func (st *ReturnStmt) TypeCheck(t *symtab.Table) error {
	for _, v := range st.Vals {
		if err := v.TypeCheck(t); err != nil {
			return err
		}
	}
	switch len(st.Vals) {
	case 0:
		st.setType(t, types.VoidType())
	case 1:
		st.setType(t, st.Vals[0].Type(t))
	default:
		elems := make([]*types.Type, len(st.Vals))
		for i, v := range st.Vals {
			elems[i] = v.Type(t)
		}
		st.setType(t, types.TupleType(elems))
	}
	return nil
}

func (st *ReturnStmt) Execute(t *symtab.Table) error {
	switch len(st.Vals) {
	case 0:
		return &returnSignal{known: true}
	case 1:
		v, err := st.Vals[0].Value(t)
		if err != nil {
			if value.IsUnknown(err) {
				return &returnSignal{cause: err}
			}
			return err
		}
		return &returnSignal{val: v, known: true}
	default:
		elems := make([]value.Value, len(st.Vals))
		for i, rv := range st.Vals {
			v, err := rv.Value(t)
			if err != nil {
				if value.IsUnknown(err) {
					return &returnSignal{cause: err}
				}
				return err
			}
			elems[i] = v
		}
		return &returnSignal{val: value.NewTuple(elems), known: true}
	}
}

func (st *ReturnStmt) ExecuteUnknown(t *symtab.Table) {}

func (st *ReturnStmt) ReturnTypes(t *symtab.Table) []*types.Type {
	return []*types.Type{st.mustType(st, t)}
}

func (st *ReturnStmt) TextForm() string {
	if len(st.Vals) == 0 {
		return "return;"
	}
	parts := make([]string, len(st.Vals))
	for i, v := range st.Vals {
		parts[i] = v.TextForm()
	}
	return "return " + strings.Join(parts, ", ") + ";"
}
