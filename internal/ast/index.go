package ast

import (
	"fmt"
	"math/big"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// IndexExpr is a[i]: an array element, or a single bit of a bit
// vector.
type IndexExpr struct {
	node
	X   Rvalue
	Idx Rvalue
}

func NewIndexExpr(s Span, x, idx Rvalue) *IndexExpr {
	e := &IndexExpr{node: at(s), X: x, Idx: idx}
	e.adopt(e, x, idx)
	return e
}

func (e *IndexExpr) TypeCheck(t *symtab.Table) error {
	if err := e.X.TypeCheck(t); err != nil {
		return err
	}
	if err := e.Idx.TypeCheck(t); err != nil {
		return err
	}
	if _, err := bitsOperand(e.Idx, t); err != nil {
		return err
	}
	xt := e.X.Type(t)
	switch xt.Kind() {
	case types.Array:
		// Bounds are enforced when knowable.
		if n, err := constIndex(e.Idx, t, "index"); err == nil {
			if xt.Size() != types.WidthUnknown && (n < 0 || n >= xt.Size()) {
				return errf(e, "index %d out of bounds for %s", n, xt)
			}
		} else if !value.IsUnknown(err) {
			return err
		}
		e.setType(t, xt.Elem())
	case types.Bits, types.Bitfield:
		if n, err := constIndex(e.Idx, t, "bit index"); err == nil {
			if xt.Width() != types.WidthUnknown && (n < 0 || n >= xt.Width()) {
				return errf(e, "bit %d out of range for %s", n, xt)
			}
		} else if !value.IsUnknown(err) {
			return err
		}
		e.setType(t, types.BitsType(1))
	default:
		return errf(e, "%s cannot be indexed", xt)
	}
	return nil
}

func (e *IndexExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *IndexExpr) Value(t *symtab.Table) (value.Value, error) {
	xv, err := e.X.Value(t)
	if err != nil {
		return value.Value{}, err
	}
	n, err := constIndex(e.Idx, t, "index")
	if err != nil {
		return value.Value{}, err
	}
	if xv.Kind() == value.Array {
		if n < 0 || n >= len(xv.Elems()) {
			return value.Value{}, errf(e, "index %d out of bounds", n)
		}
		return xv.Elems()[n], nil
	}
	bit := new(big.Int).And(new(big.Int).Rsh(twos(xv), uint(n)), big.NewInt(1))
	return value.NewBits(bit, 1, false), nil
}

func (e *IndexExpr) TextForm() string {
	return fmt.Sprintf("%s[%s]", e.X.TextForm(), e.Idx.TextForm())
}

// ExtractExpr is x[hi:lo], a bit range of a bit vector.
type ExtractExpr struct {
	node
	X      Rvalue
	Hi, Lo Rvalue
}

func NewExtractExpr(s Span, x, hi, lo Rvalue) *ExtractExpr {
	e := &ExtractExpr{node: at(s), X: x, Hi: hi, Lo: lo}
	e.adopt(e, x, hi, lo)
	return e
}

func (e *ExtractExpr) TypeCheck(t *symtab.Table) error {
	for _, c := range []Rvalue{e.X, e.Hi, e.Lo} {
		if err := c.TypeCheck(t); err != nil {
			return err
		}
	}
	if _, err := bitsOperand(e.X, t); err != nil {
		return err
	}
	hi, herr := constIndex(e.Hi, t, "bit range")
	lo, lerr := constIndex(e.Lo, t, "bit range")
	for _, err := range []error{herr, lerr} {
		if err != nil && !value.IsUnknown(err) {
			return err
		}
	}
	if herr != nil || lerr != nil {
		// Range depends on an unbound value; width resolves later.
		e.setType(t, types.BitsType(types.WidthUnknown))
		return nil
	}
	if hi < lo {
		return errf(e, "bit range [%d:%d] is reversed", hi, lo)
	}
	if w := e.X.Type(t).Width(); w != types.WidthUnknown && hi >= w {
		return errf(e, "bit %d out of range for %s", hi, e.X.Type(t))
	}
	e.setType(t, types.BitsType(hi-lo+1))
	return nil
}

func (e *ExtractExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *ExtractExpr) Value(t *symtab.Table) (value.Value, error) {
	xv, err := e.X.Value(t)
	if err != nil {
		return value.Value{}, err
	}
	hi, err := constIndex(e.Hi, t, "bit range")
	if err != nil {
		return value.Value{}, err
	}
	lo, err := constIndex(e.Lo, t, "bit range")
	if err != nil {
		return value.Value{}, err
	}
	return extractBits(xv, hi, lo), nil
}

func extractBits(v value.Value, hi, lo int) value.Value {
	width := hi - lo + 1
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	out := new(big.Int).And(new(big.Int).Rsh(twos(v), uint(lo)), mask)
	return value.NewBits(out, width, false)
}

func (e *ExtractExpr) TextForm() string {
	return fmt.Sprintf("%s[%s:%s]", e.X.TextForm(), e.Hi.TextForm(), e.Lo.TextForm())
}

// MemberExpr is x.name: a struct member or a bitfield range.
type MemberExpr struct {
	node
	X    Rvalue
	Name string
}

func NewMemberExpr(s Span, x Rvalue, name string) *MemberExpr {
	e := &MemberExpr{node: at(s), X: x, Name: name}
	e.adopt(e, x)
	return e
}

func (e *MemberExpr) TypeCheck(t *symtab.Table) error {
	if err := e.X.TypeCheck(t); err != nil {
		return err
	}
	xt := e.X.Type(t)
	switch xt.Kind() {
	case types.Struct:
		m, ok := xt.Member(e.Name)
		if !ok {
			return errf(e, "struct %s has no member %s", xt.StructName(), e.Name)
		}
		e.setType(t, m.Type)
	case types.Bitfield:
		r, ok := xt.Range(e.Name)
		if !ok {
			return errf(e, "bitfield %s has no range %s", xt.StructName(), e.Name)
		}
		e.setType(t, types.BitsType(r.Width()))
	default:
		return errf(e, "%s has no members", xt)
	}
	return nil
}

func (e *MemberExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *MemberExpr) Value(t *symtab.Table) (value.Value, error) {
	xv, err := e.X.Value(t)
	if err != nil {
		return value.Value{}, err
	}
	xt := e.X.Type(t)
	switch xt.Kind() {
	case types.Struct:
		for i, m := range xt.Members() {
			if m.Name == e.Name {
				return xv.Elems()[i], nil
			}
		}
	case types.Bitfield:
		if r, ok := xt.Range(e.Name); ok {
			return extractBits(xv, r.Hi, r.Lo), nil
		}
	}
	internalf(e, "member %s vanished after check", e.Name)
	return value.Value{}, nil
}

func (e *MemberExpr) TextForm() string {
	return e.X.TextForm() + "." + e.Name
}

// EnumRefExpr is Class::Element.
type EnumRefExpr struct {
	node
	Class, Elem string
}

func NewEnumRefExpr(s Span, class, elem string) *EnumRefExpr {
	return &EnumRefExpr{node: at(s), Class: class, Elem: elem}
}

func (e *EnumRefExpr) TypeCheck(t *symtab.Table) error {
	v, ok := t.Get(e.Class)
	if !ok || v.Type == nil || v.Type.Kind() != types.Enum {
		return errf(e, "%s is not an enum", e.Class)
	}
	if _, ok := v.Type.EnumValue(e.Elem); !ok {
		return errf(e, "enum %s has no element %s", e.Class, e.Elem)
	}
	e.setType(t, v.Type.RefOf().MakeConst().MakeKnown())
	return nil
}

func (e *EnumRefExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *EnumRefExpr) Value(t *symtab.Table) (value.Value, error) {
	typ := e.Type(t)
	n, _ := typ.EnumValue(e.Elem)
	return value.NewEnumElem(e.Class, e.Elem, n, typ.Width()), nil
}

func (e *EnumRefExpr) TextForm() string { return e.Class + "::" + e.Elem }
