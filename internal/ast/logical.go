package ast

import (
	"fmt"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// LogicalExpr is && or ||, evaluated left to right with short-circuit:
// when the left operand's known value alone determines the result, the
// right operand is neither checked nor asked for a value.
type LogicalExpr struct {
	node
	Op   string // "&&" or "||"
	L, R Rvalue
}

func NewLogicalExpr(s Span, op string, l, r Rvalue) *LogicalExpr {
	e := &LogicalExpr{node: at(s), Op: op, L: l, R: r}
	e.adopt(e, l, r)
	return e
}

// decides reports whether a known left value makes the right operand
// unreachable, and what the result is then.
func (e *LogicalExpr) decides(lv bool) (result, decided bool) {
	if e.Op == "&&" {
		return false, !lv
	}
	return true, lv
}

func (e *LogicalExpr) TypeCheck(t *symtab.Table) error {
	if err := e.L.TypeCheck(t); err != nil {
		return err
	}
	if e.L.Type(t).Kind() != types.Boolean {
		return errf(e.L, "%s requires Boolean operands, got %s", e.Op, e.L.Type(t))
	}
	skipRight := false
	if lv, err := e.L.Value(t); err == nil {
		if _, decided := e.decides(lv.Bool()); decided {
			skipRight = true
		}
	} else if !value.IsUnknown(err) {
		return err
	}
	if !skipRight {
		if err := e.R.TypeCheck(t); err != nil {
			return err
		}
		if e.R.Type(t).Kind() != types.Boolean {
			return errf(e.R, "%s requires Boolean operands, got %s", e.Op, e.R.Type(t))
		}
	}
	e.setType(t, types.BoolType())
	return nil
}

func (e *LogicalExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *LogicalExpr) Value(t *symtab.Table) (value.Value, error) {
	lv, lerr := e.L.Value(t)
	if lerr == nil {
		if res, decided := e.decides(lv.Bool()); decided {
			return value.NewBool(res), nil
		}
		return e.R.Value(t)
	}
	if !value.IsUnknown(lerr) {
		return value.Value{}, lerr
	}
	// Left unknown. The right operand can still decide on its own:
	// false && x is false no matter what x is, and likewise true || x.
	if rv, rerr := e.R.Value(t); rerr == nil {
		if res, decided := e.decides(rv.Bool()); decided {
			return value.NewBool(res), nil
		}
	} else if !value.IsUnknown(rerr) {
		return value.Value{}, rerr
	}
	return value.Value{}, unknownf(e, "neither operand decides the result")
}

func (e *LogicalExpr) TextForm() string {
	return fmt.Sprintf("(%s %s %s)", e.L.TextForm(), e.Op, e.R.TextForm())
}
