package ast

import (
	"math/big"

	"github.com/hwlang/idl/internal/arch"
	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// CSRExpr is CSR[name]: a whole-register read. It has a compile-time
// value only when every field of the register is statically read-only,
// in which case the value is the register's reset value.
type CSRExpr struct {
	node
	Name string
}

func NewCSRExpr(s Span, name string) *CSRExpr {
	return &CSRExpr{node: at(s), Name: name}
}

func (e *CSRExpr) csr(t *symtab.Table) (arch.CSR, bool) {
	if t.Arch == nil {
		return nil, false
	}
	return t.Arch.CSR(e.Name)
}

func (e *CSRExpr) TypeCheck(t *symtab.Table) error {
	c, ok := e.csr(t)
	if !ok {
		return errf(e, "CSR %s is not defined in this configuration", e.Name)
	}
	n, _ := c.Length(t.Arch.Base())
	e.setType(t, types.CSRType(e.Name, n))
	return nil
}

func (e *CSRExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *CSRExpr) Value(t *symtab.Table) (value.Value, error) {
	c, ok := e.csr(t)
	if !ok {
		internalf(e, "value requested for unchecked CSR %s", e.Name)
	}
	if n, dynamic := c.Length(t.Arch.Base()); !dynamic {
		if reset, ok := c.ResetValue(t.Arch.Base()); ok {
			return value.NewBits(new(big.Int).SetUint64(reset), n, false), nil
		}
	}
	return value.Value{}, unknownf(e, "CSR %s is not read-only", e.Name)
}

func (e *CSRExpr) TextForm() string { return "CSR[" + e.Name + "]" }

// CSRFieldExpr is CSR[name].FIELD. A statically read-only field with a
// known reset value evaluates to it; anything else is unknown until
// run time.
type CSRFieldExpr struct {
	node
	CSRName string
	Field   string
}

func NewCSRFieldExpr(s Span, csrName, field string) *CSRFieldExpr {
	return &CSRFieldExpr{node: at(s), CSRName: csrName, Field: field}
}

func (e *CSRFieldExpr) field(t *symtab.Table) (arch.Field, bool) {
	if t.Arch == nil {
		return nil, false
	}
	c, ok := t.Arch.CSR(e.CSRName)
	if !ok {
		return nil, false
	}
	for _, f := range c.Fields() {
		if f.Name() == e.Field {
			return f, true
		}
	}
	return nil, false
}

func (e *CSRFieldExpr) TypeCheck(t *symtab.Table) error {
	if t.Arch == nil {
		return errf(e, "CSR %s is not defined in this configuration", e.CSRName)
	}
	if _, ok := t.Arch.CSR(e.CSRName); !ok {
		return errf(e, "CSR %s is not defined in this configuration", e.CSRName)
	}
	f, ok := e.field(t)
	if !ok {
		return errf(e, "CSR %s has no field %s", e.CSRName, e.Field)
	}
	base := t.Arch.Base()
	if !f.DefinedIn(base) {
		return errf(e, "field %s.%s is not defined at base %d", e.CSRName, e.Field, base)
	}
	hi, lo, ok := f.Location(base)
	if !ok {
		return errf(e, "field %s.%s has no location at base %d", e.CSRName, e.Field, base)
	}
	e.setType(t, types.BitsType(hi-lo+1))
	return nil
}

func (e *CSRFieldExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *CSRFieldExpr) Value(t *symtab.Table) (value.Value, error) {
	f, ok := e.field(t)
	if !ok {
		internalf(e, "value requested for unchecked field %s.%s", e.CSRName, e.Field)
	}
	if !f.Implemented() {
		// An unimplemented field reads as zero everywhere.
		return value.NewUint(0, e.Type(t).Width()), nil
	}
	if f.ReadOnly() {
		if reset, ok := f.Reset(); ok {
			return value.NewUint(reset, e.Type(t).Width()), nil
		}
	}
	return value.Value{}, unknownf(e, "field %s.%s is writable at run time", e.CSRName, e.Field)
}

func (e *CSRFieldExpr) TextForm() string {
	return "CSR[" + e.CSRName + "]." + e.Field
}
