package ast

import (
	"fmt"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// TernaryExpr is cond ? a : b. The branch types must match exactly.
// When the condition folds at analysis time only the reachable branch
// is checked.
type TernaryExpr struct {
	node
	Cond, Then, Else Rvalue
}

func NewTernaryExpr(s Span, cond, then, els Rvalue) *TernaryExpr {
	e := &TernaryExpr{node: at(s), Cond: cond, Then: then, Else: els}
	e.adopt(e, cond, then, els)
	return e
}

func (e *TernaryExpr) TypeCheck(t *symtab.Table) error {
	if err := e.Cond.TypeCheck(t); err != nil {
		return err
	}
	if e.Cond.Type(t).Kind() != types.Boolean {
		return errf(e.Cond, "ternary condition must be Boolean, got %s", e.Cond.Type(t))
	}
	if cv, err := e.Cond.Value(t); err == nil {
		branch := e.Then
		if !cv.Bool() {
			branch = e.Else
		}
		if err := branch.TypeCheck(t); err != nil {
			return err
		}
		e.setType(t, branch.Type(t))
		return nil
	} else if !value.IsUnknown(err) {
		return err
	}
	if err := e.Then.TypeCheck(t); err != nil {
		return err
	}
	if err := e.Else.TypeCheck(t); err != nil {
		return err
	}
	if !e.Then.Type(t).EqualTo(e.Else.Type(t)) {
		return errf(e, "ternary branches must have the same type: %s vs %s",
			e.Then.Type(t), e.Else.Type(t))
	}
	e.setType(t, e.Then.Type(t))
	return nil
}

func (e *TernaryExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *TernaryExpr) Value(t *symtab.Table) (value.Value, error) {
	cv, err := e.Cond.Value(t)
	if err != nil {
		return value.Value{}, err
	}
	if cv.Bool() {
		return e.Then.Value(t)
	}
	return e.Else.Value(t)
}

// possible is the union of both branches' candidate sets when the
// condition cannot be decided.
func (e *TernaryExpr) possible(t *symtab.Table) []value.Value {
	if cv, err := e.Cond.Value(t); err == nil {
		if cv.Bool() {
			return possibleOf(e.Then, t)
		}
		return possibleOf(e.Else, t)
	}
	ts := possibleOf(e.Then, t)
	es := possibleOf(e.Else, t)
	if len(ts) == 0 || len(es) == 0 {
		return nil
	}
	return append(append([]value.Value(nil), ts...), es...)
}

func (e *TernaryExpr) TextForm() string {
	return fmt.Sprintf("(%s ? %s : %s)", e.Cond.TextForm(), e.Then.TextForm(), e.Else.TextForm())
}
