package ast

import (
	"math/big"
	"strings"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// Stmt is a statement-like variant: checkable and executable.
type Stmt interface {
	Node
	Executable
}

// returnSignal propagates a return statement's result out of a body
// execution. It travels the error path but is not a diagnostic; the
// call node intercepts it.
type returnSignal struct {
	val   value.Value
	known bool
	cause error // the Unknown that made the result unknowable
}

func (r *returnSignal) Error() string { return "uncaught function return" }

// Block is a statement sequence. It owns no scope of its own; the
// construct that contains it pushes one.
type Block struct {
	node
	Stmts []Stmt
}

func NewBlock(s Span, stmts []Stmt) *Block {
	b := &Block{node: at(s), Stmts: stmts}
	for _, st := range stmts {
		b.adopt(b, st)
	}
	return b
}

func (b *Block) TypeCheck(t *symtab.Table) error {
	for _, st := range b.Stmts {
		if err := st.TypeCheck(t); err != nil {
			return err
		}
	}
	return nil
}

func (b *Block) Execute(t *symtab.Table) error {
	for _, st := range b.Stmts {
		if err := st.Execute(t); err != nil {
			return err
		}
	}
	return nil
}

func (b *Block) ExecuteUnknown(t *symtab.Table) {
	for _, st := range b.Stmts {
		st.ExecuteUnknown(t)
	}
}

func (b *Block) ReturnTypes(t *symtab.Table) []*types.Type {
	var out []*types.Type
	for _, st := range b.Stmts {
		if r, ok := st.(Returns); ok {
			out = append(out, r.ReturnTypes(t)...)
		}
	}
	return out
}

func (b *Block) TextForm() string {
	var sb strings.Builder
	for _, st := range b.Stmts {
		sb.WriteString("  " + strings.ReplaceAll(st.TextForm(), "\n", "\n  ") + "\n")
	}
	return sb.String()
}

// VarDecl declares a variable, optionally initialized. Without an
// initializer the variable takes its type's zero value.
type VarDecl struct {
	node
	Ref    *TypeRef
	Name   string
	Init   Rvalue // may be nil
	Const  bool
	Global bool
}

func NewVarDecl(s Span, ref *TypeRef, name string, init Rvalue) *VarDecl {
	d := &VarDecl{node: at(s), Ref: ref, Name: name, Init: init}
	d.adopt(d, ref, init)
	return d
}

func (d *VarDecl) TypeCheck(t *symtab.Table) error {
	if err := d.Ref.TypeCheck(t); err != nil {
		return err
	}
	declared := d.Ref.Resolve(t)
	if d.Const {
		if d.Init == nil {
			return errf(d, "constant %s needs an initializer", d.Name)
		}
		declared = declared.Clone().MakeConst()
	}
	if d.Init != nil {
		if err := d.Init.TypeCheck(t); err != nil {
			return err
		}
		if !d.Init.Type(t).ConvertableTo(declared) {
			return errf(d.Init, "cannot initialize %s %s with %s", declared, d.Name, d.Init.Type(t))
		}
	}
	d.setType(t, declared)
	// Later statements in the same pass must see the binding.
	if err := d.AddSymbol(t); err != nil {
		return errf(d, "%s", err)
	}
	// A knowable initializer is folded once during checking so its
	// truncation diagnostics fire even in bodies that are never
	// executed. Only a constant's value is kept on the binding: the
	// checker does not track assignments, so mutable bindings stay
	// unknown here.
	if d.Init != nil {
		if iv, err := d.Init.Value(t); err == nil {
			iv, lost := iv.Truncate(widthOrKeep(iv, declared))
			if lost {
				t.Warn(d.Span().String(), "initializer truncated to "+declared.String())
			}
			if d.Const {
				if binding, ok := t.Get(d.Name); ok {
					binding.SetValue(iv)
				}
			}
		} else if !value.IsUnknown(err) {
			return err
		}
	}
	return nil
}

func (d *VarDecl) AddSymbol(t *symtab.Table) error {
	declared, ok := d.typeIn(t)
	if !ok {
		internalf(d, "symbol added before type check")
	}
	v := &symtab.Var{Name: d.Name, Type: declared}
	if d.Global {
		t.AddGlobal(d.Name, v)
		return nil
	}
	return t.Add(d.Name, v)
}

func (d *VarDecl) Execute(t *symtab.Table) error {
	declared, ok := d.typeIn(t)
	if !ok {
		internalf(d, "executed before type check")
	}
	v := &symtab.Var{Name: d.Name, Type: declared}
	if d.Init != nil {
		if iv, err := d.Init.Value(t); err == nil {
			iv, lost := iv.Truncate(widthOrKeep(iv, declared))
			if lost {
				t.Warn(d.Span().String(), "initializer truncated to "+declared.String())
			}
			v.SetValue(iv)
		} else if !value.IsUnknown(err) {
			return err
		}
	} else if zero, ok := declared.DefaultValue(); ok {
		v.SetValue(zero)
	}
	if err := t.Add(d.Name, v); err != nil {
		return errf(d, "%s", err)
	}
	return nil
}

func (d *VarDecl) ExecuteUnknown(t *symtab.Table) {
	declared, ok := d.typeIn(t)
	if !ok {
		internalf(d, "executed before type check")
	}
	_ = t.Add(d.Name, &symtab.Var{Name: d.Name, Type: declared})
}

func widthOrKeep(v value.Value, declared *types.Type) int {
	if declared.Width() == types.WidthUnknown {
		return v.Width()
	}
	switch declared.Kind() {
	case types.Bits, types.Bitfield:
		return declared.Width()
	}
	return v.Width()
}

func (d *VarDecl) TextForm() string {
	s := d.Ref.TextForm() + " " + d.Name
	if d.Const {
		s = "constant " + s
	}
	if d.Init != nil {
		s += " = " + d.Init.TextForm()
	}
	return s + ";"
}

// DontCareExpr is the "-" write target: the value is discarded.
type DontCareExpr struct {
	node
}

func NewDontCareExpr(s Span) *DontCareExpr { return &DontCareExpr{node: at(s)} }

func (e *DontCareExpr) TypeCheck(t *symtab.Table) error {
	e.setType(t, types.DontCareType())
	return nil
}

func (e *DontCareExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *DontCareExpr) Value(t *symtab.Table) (value.Value, error) {
	return value.Value{}, unknownf(e, "don't-care has no value")
}

func (e *DontCareExpr) TextForm() string { return "-" }

// Assign writes a value to a target: a whole variable, an array
// element, a bit range, a struct member, or the don't-care sink.
type Assign struct {
	node
	Target Rvalue
	Val    Rvalue
}

func NewAssign(s Span, target, val Rvalue) *Assign {
	a := &Assign{node: at(s), Target: target, Val: val}
	a.adopt(a, target, val)
	return a
}

// rootIdent returns the variable a (possibly nested) target writes to.
func rootIdent(e Rvalue) (*IdentExpr, bool) {
	switch x := e.(type) {
	case *IdentExpr:
		return x, true
	case *IndexExpr:
		return rootIdent(x.X)
	case *ExtractExpr:
		return rootIdent(x.X)
	case *MemberExpr:
		return rootIdent(x.X)
	}
	return nil, false
}

func (a *Assign) TypeCheck(t *symtab.Table) error {
	if err := a.Target.TypeCheck(t); err != nil {
		return err
	}
	if err := a.Val.TypeCheck(t); err != nil {
		return err
	}
	if _, isDiscard := a.Target.(*DontCareExpr); isDiscard {
		return nil
	}
	id, ok := rootIdent(a.Target)
	if !ok {
		return errf(a.Target, "%s is not assignable", a.Target.TextForm())
	}
	v, defined := t.Get(id.Name)
	if !defined {
		return errf(id, "%s is not defined", id.Name)
	}
	if v.Type.Const() {
		return errf(a, "cannot assign to constant %s", id.Name)
	}
	if !a.Val.Type(t).ConvertableTo(a.Target.Type(t)) {
		return errf(a, "cannot assign %s to %s", a.Val.Type(t), a.Target.Type(t))
	}
	return nil
}

func (a *Assign) Execute(t *symtab.Table) error {
	if _, isDiscard := a.Target.(*DontCareExpr); isDiscard {
		_, err := a.Val.Value(t)
		if err != nil && !value.IsUnknown(err) {
			return err
		}
		return nil
	}
	id, _ := rootIdent(a.Target)
	binding, ok := t.Get(id.Name)
	if !ok {
		internalf(a, "assignment to undefined %s", id.Name)
	}
	rv, err := a.Val.Value(t)
	if err != nil {
		if value.IsUnknown(err) {
			binding.ClearValue()
			return nil
		}
		return err
	}
	updated, err := a.storeInto(t, a.Target, binding, rv)
	if err != nil || !updated {
		binding.ClearValue()
	}
	return err
}

// storeInto writes rv through the target shape into the root binding.
// It reports false when the write cannot be represented statically
// (e.g. the old value or an index is unknown), in which case the
// binding is forced unknown.
func (a *Assign) storeInto(t *symtab.Table, target Rvalue, binding *symtab.Var, rv value.Value) (bool, error) {
	switch x := target.(type) {
	case *IdentExpr:
		rv, lost := rv.Truncate(widthOrKeep(rv, binding.Type))
		if lost {
			t.Warn(a.Span().String(), "assigned value truncated to "+binding.Type.String())
		}
		binding.SetValue(rv)
		return true, nil
	case *IndexExpr:
		if !binding.Known() {
			return false, nil
		}
		n, err := constIndex(x.Idx, t, "index")
		if err != nil {
			if value.IsUnknown(err) {
				return false, nil
			}
			return false, err
		}
		old := *binding.Value
		if old.Kind() == value.Array {
			if n < 0 || n >= len(old.Elems()) {
				return false, errf(x, "index %d out of bounds", n)
			}
			elems := append([]value.Value(nil), old.Elems()...)
			elems[n] = rv
			binding.SetValue(value.NewArray(elems))
			return true, nil
		}
		binding.SetValue(spliceBits(old, n, n, rv))
		return true, nil
	case *ExtractExpr:
		if !binding.Known() {
			return false, nil
		}
		hi, herr := constIndex(x.Hi, t, "bit range")
		lo, lerr := constIndex(x.Lo, t, "bit range")
		if herr != nil || lerr != nil {
			return false, firstFatal(herr, lerr)
		}
		binding.SetValue(spliceBits(*binding.Value, hi, lo, rv))
		return true, nil
	case *MemberExpr:
		if !binding.Known() {
			return false, nil
		}
		xt := x.X.Type(t)
		if xt.Kind() == types.Bitfield {
			r, ok := xt.Range(x.Name)
			if !ok {
				return false, nil
			}
			binding.SetValue(spliceBits(*binding.Value, r.Hi, r.Lo, rv))
			return true, nil
		}
		for i, m := range xt.Members() {
			if m.Name == x.Name {
				elems := append([]value.Value(nil), binding.Value.Elems()...)
				elems[i] = rv
				binding.SetValue(value.NewTuple(elems))
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

func firstFatal(errs ...error) error {
	for _, err := range errs {
		if err != nil && !value.IsUnknown(err) {
			return err
		}
	}
	return nil
}

// spliceBits overwrites bits [hi:lo] of old with v.
func spliceBits(old value.Value, hi, lo int, v value.Value) value.Value {
	width := old.Width()
	fieldW := hi - lo + 1
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(fieldW)), big.NewInt(1))
	cleared := new(big.Int).AndNot(twos(old), new(big.Int).Lsh(mask, uint(lo)))
	field := new(big.Int).And(twos(v), mask)
	out := value.NewBits(cleared.Or(cleared, new(big.Int).Lsh(field, uint(lo))), width, old.Signed())
	out, _ = out.Truncate(width)
	return out
}

func (a *Assign) ExecuteUnknown(t *symtab.Table) {
	if id, ok := rootIdent(a.Target); ok {
		if binding, defined := t.Get(id.Name); defined {
			binding.ClearValue()
		}
	}
}

func (a *Assign) TextForm() string {
	return a.Target.TextForm() + " = " + a.Val.TextForm() + ";"
}

// TupleAssign destructures a multi-valued call: (a, b) = f();
type TupleAssign struct {
	node
	Targets []Rvalue
	Call    Rvalue
}

func NewTupleAssign(s Span, targets []Rvalue, call Rvalue) *TupleAssign {
	a := &TupleAssign{node: at(s), Targets: targets, Call: call}
	for _, tgt := range targets {
		a.adopt(a, tgt)
	}
	a.adopt(a, call)
	return a
}

func (a *TupleAssign) TypeCheck(t *symtab.Table) error {
	if err := a.Call.TypeCheck(t); err != nil {
		return err
	}
	ct := a.Call.Type(t)
	if ct.Kind() != types.Tuple {
		return errf(a.Call, "%s does not return multiple values", a.Call.TextForm())
	}
	if len(ct.TupleElems()) != len(a.Targets) {
		return errf(a, "%d targets for %d returned values", len(a.Targets), len(ct.TupleElems()))
	}
	for i, tgt := range a.Targets {
		if err := tgt.TypeCheck(t); err != nil {
			return err
		}
		if _, isDiscard := tgt.(*DontCareExpr); isDiscard {
			continue
		}
		if _, ok := rootIdent(tgt); !ok {
			return errf(tgt, "%s is not assignable", tgt.TextForm())
		}
		if !ct.TupleElems()[i].ConvertableTo(tgt.Type(t)) {
			return errf(tgt, "cannot assign %s to %s", ct.TupleElems()[i], tgt.Type(t))
		}
	}
	return nil
}

func (a *TupleAssign) Execute(t *symtab.Table) error {
	cv, err := a.Call.Value(t)
	if err != nil {
		if value.IsUnknown(err) {
			a.ExecuteUnknown(t)
			return nil
		}
		return err
	}
	for i, tgt := range a.Targets {
		if _, isDiscard := tgt.(*DontCareExpr); isDiscard {
			continue
		}
		id, _ := rootIdent(tgt)
		if binding, ok := t.Get(id.Name); ok {
			binding.SetValue(cv.Elems()[i])
		}
	}
	return nil
}

func (a *TupleAssign) ExecuteUnknown(t *symtab.Table) {
	for _, tgt := range a.Targets {
		if id, ok := rootIdent(tgt); ok {
			if binding, defined := t.Get(id.Name); defined {
				binding.ClearValue()
			}
		}
	}
}

func (a *TupleAssign) TextForm() string {
	parts := make([]string, len(a.Targets))
	for i, tgt := range a.Targets {
		parts[i] = tgt.TextForm()
	}
	return "(" + strings.Join(parts, ", ") + ") = " + a.Call.TextForm() + ";"
}

// ExprStmt is an expression evaluated for effect, i.e. a bare call.
type ExprStmt struct {
	node
	X Rvalue
}

func NewExprStmt(s Span, x Rvalue) *ExprStmt {
	st := &ExprStmt{node: at(s), X: x}
	st.adopt(st, x)
	return st
}

func (st *ExprStmt) TypeCheck(t *symtab.Table) error { return st.X.TypeCheck(t) }

func (st *ExprStmt) Execute(t *symtab.Table) error {
	_, err := st.X.Value(t)
	if err != nil && !value.IsUnknown(err) {
		return err
	}
	return nil
}

func (st *ExprStmt) ExecuteUnknown(t *symtab.Table) {}

func (st *ExprStmt) TextForm() string { return st.X.TextForm() + ";" }
