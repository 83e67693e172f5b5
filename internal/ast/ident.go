package ast

import (
	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// IdentExpr is a reference to a declared name.
type IdentExpr struct {
	node
	Name string
}

func NewIdentExpr(s Span, name string) *IdentExpr {
	return &IdentExpr{node: at(s), Name: name}
}

func (e *IdentExpr) TypeCheck(t *symtab.Table) error {
	v, ok := t.Get(e.Name)
	if !ok {
		return errf(e, "%s is not defined", e.Name)
	}
	if v.Type == nil {
		return errf(e, "%s cannot be used as a value", e.Name)
	}
	e.setType(t, v.Type)
	return nil
}

func (e *IdentExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *IdentExpr) Value(t *symtab.Table) (value.Value, error) {
	v, ok := t.Get(e.Name)
	if !ok {
		internalf(e, "value requested for undefined %s", e.Name)
	}
	if !v.Known() {
		return value.Value{}, unknownf(e, "%s has no compile-time value", e.Name)
	}
	return *v.Value, nil
}

// possible returns the binding's finite candidate set when the value
// itself is not pinned.
func (e *IdentExpr) possible(t *symtab.Table) []value.Value {
	v, ok := t.Get(e.Name)
	if !ok {
		return nil
	}
	if v.Known() {
		return []value.Value{*v.Value}
	}
	return v.Possible
}

func (e *IdentExpr) TextForm() string { return e.Name }
