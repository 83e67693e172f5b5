package ast

import (
	"fmt"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// TypeRef is a type as written in a declaration: Bits<E>, Boolean,
// String, a U32/U64 sugar form, a user-defined enum/bitfield/struct
// name, or an array T[N] of any of those. The width and length
// expressions may depend on template parameters; a width that cannot
// be pinned yet resolves to an unknown-width type and the dependent
// checks are deferred to a fully-instantiated check.
type TypeRef struct {
	node
	Name      string
	WidthExpr Rvalue // Bits<E> only
	Len       Rvalue // non-nil for arrays
}

func NewTypeRef(s Span, name string, width, length Rvalue) *TypeRef {
	r := &TypeRef{node: at(s), Name: name, WidthExpr: width, Len: length}
	r.adopt(r, width, length)
	return r
}

func (r *TypeRef) TypeCheck(t *symtab.Table) error {
	typ, err := r.resolve(t)
	if err != nil {
		return err
	}
	r.setType(t, typ)
	return nil
}

// Resolve returns the concrete type the reference denotes under the
// scope. TypeCheck must have run.
func (r *TypeRef) Resolve(t *symtab.Table) *types.Type {
	return r.mustType(r, t)
}

func (r *TypeRef) resolve(t *symtab.Table) (*types.Type, error) {
	elem, err := r.resolveScalar(t)
	if err != nil {
		return nil, err
	}
	if r.Len == nil {
		return elem, nil
	}
	if err := r.Len.TypeCheck(t); err != nil {
		return nil, err
	}
	n, err := constIndex(r.Len, t, "array length")
	if err != nil {
		if value.IsUnknown(err) {
			return types.ArrayType(elem, types.WidthUnknown), nil
		}
		return nil, err
	}
	if n <= 0 {
		return nil, errf(r.Len, "array length must be positive, got %d", n)
	}
	return types.ArrayType(elem, n), nil
}

func (r *TypeRef) resolveScalar(t *symtab.Table) (*types.Type, error) {
	switch r.Name {
	case "Bits":
		if r.WidthExpr == nil {
			return nil, errf(r, "Bits requires a width")
		}
		if err := r.WidthExpr.TypeCheck(t); err != nil {
			return nil, err
		}
		wt := r.WidthExpr.Type(t)
		if wt.Kind() != types.Bits {
			return nil, errf(r.WidthExpr, "Bits width must be a bit vector, got %s", wt)
		}
		w, err := constIndex(r.WidthExpr, t, "Bits width")
		if err != nil {
			if value.IsUnknown(err) {
				// Width depends on a not-yet-bound value (commonly a
				// template parameter); defer the width checks.
				return types.BitsType(types.WidthUnknown), nil
			}
			return nil, err
		}
		if w <= 0 {
			return nil, errf(r.WidthExpr, "Bits width must be positive, got %d", w)
		}
		return types.BitsType(w), nil
	case "Boolean":
		return types.BoolType(), nil
	case "String":
		return types.StringType(), nil
	case "U32":
		return types.BitsType(32), nil
	case "U64":
		return types.BitsType(64), nil
	}
	v, ok := t.Get(r.Name)
	if !ok || v.Type == nil {
		return nil, errf(r, "unknown type %s", r.Name)
	}
	switch v.Type.Kind() {
	case types.Enum:
		return v.Type.RefOf(), nil
	case types.Bitfield, types.Struct:
		return v.Type, nil
	}
	return nil, errf(r, "%s is not a type", r.Name)
}

// constIndex evaluates an expression that must be a compile-time
// integer small enough to use as a width, length or bit position.
func constIndex(e Rvalue, t *symtab.Table, what string) (int, error) {
	v, err := e.Value(t)
	if err != nil {
		return 0, err
	}
	if v.Kind() != value.Bits {
		return 0, errf(e, "%s must be an integer, got %s", what, v)
	}
	if !v.Int().IsInt64() {
		return 0, errf(e, "%s %s out of range", what, v)
	}
	n := v.Int().Int64()
	if n > 1<<24 {
		return 0, errf(e, "%s %d out of range", what, n)
	}
	return int(n), nil
}

func (r *TypeRef) TextForm() string {
	s := r.Name
	if r.Name == "Bits" && r.WidthExpr != nil {
		s = fmt.Sprintf("Bits<%s>", r.WidthExpr.TextForm())
	}
	if r.Len != nil {
		s += "[" + r.Len.TextForm() + "]"
	}
	return s
}
