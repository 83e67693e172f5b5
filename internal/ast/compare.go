package ast

import (
	"fmt"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// CmpExpr is an ordering or equality operator. Operands whose exact
// values are unknown can still decide the comparison when their
// possible-value sets are provably disjoint or ordered.
type CmpExpr struct {
	node
	Op   value.CmpOp
	L, R Rvalue
}

func NewCmpExpr(s Span, op value.CmpOp, l, r Rvalue) *CmpExpr {
	e := &CmpExpr{node: at(s), Op: op, L: l, R: r}
	e.adopt(e, l, r)
	return e
}

func (e *CmpExpr) TypeCheck(t *symtab.Table) error {
	if err := e.L.TypeCheck(t); err != nil {
		return err
	}
	if err := e.R.TypeCheck(t); err != nil {
		return err
	}
	lt, rt := e.L.Type(t), e.R.Type(t)
	if !lt.ComparableTo(rt) {
		return errf(e, "cannot compare %s to %s", lt, rt)
	}
	ordering := e.Op != value.OpEq && e.Op != value.OpNe
	if ordering && (lt.Kind() == types.Boolean || lt.Kind() == types.String) {
		return errf(e, "%s values cannot be ordered", lt)
	}
	typ := types.BoolType()
	if lt.Const() && rt.Const() {
		typ.MakeConst()
	}
	e.setType(t, typ)
	return nil
}

func (e *CmpExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *CmpExpr) Value(t *symtab.Table) (value.Value, error) {
	lv, lerr := e.L.Value(t)
	rv, rerr := e.R.Value(t)
	if lerr == nil && rerr == nil {
		switch lv.Kind() {
		case value.Bool:
			return value.NewBool((lv.Bool() == rv.Bool()) == (e.Op == value.OpEq)), nil
		case value.Str:
			return value.NewBool((lv.Text() == rv.Text()) == (e.Op == value.OpEq)), nil
		}
		return value.NewBool(value.Compare(e.Op, lv, rv)), nil
	}
	if lerr != nil && !value.IsUnknown(lerr) {
		return value.Value{}, lerr
	}
	if rerr != nil && !value.IsUnknown(rerr) {
		return value.Value{}, rerr
	}
	// Neither side fatal; numeric operands may still decide over
	// their possible-value sets.
	if k := e.L.Type(t).Kind(); k != types.Boolean && k != types.String {
		if res, definite := value.CompareSets(e.Op, possibleOf(e.L, t), possibleOf(e.R, t)); definite {
			return value.NewBool(res), nil
		}
	}
	return value.Value{}, unknownf(e, "operands have no decidable compile-time ordering")
}

func (e *CmpExpr) TextForm() string {
	return fmt.Sprintf("(%s %s %s)", e.L.TextForm(), e.Op, e.R.TextForm())
}
