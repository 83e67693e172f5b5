package ast

import (
	"strings"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// EnumElemDef is one element of an enum definition. Val may be nil,
// in which case the element takes the previous value plus one.
type EnumElemDef struct {
	Name string
	Val  Rvalue
}

// EnumDef declares an enumeration type.
type EnumDef struct {
	node
	Name  string
	Elems []EnumElemDef
}

func NewEnumDef(s Span, name string, elems []EnumElemDef) *EnumDef {
	d := &EnumDef{node: at(s), Name: name, Elems: elems}
	for _, e := range elems {
		d.adopt(d, e.Val)
	}
	return d
}

func (d *EnumDef) TypeCheck(t *symtab.Table) error {
	seen := map[string]bool{}
	names := make([]string, len(d.Elems))
	values := make([]int64, len(d.Elems))
	next := int64(0)
	for i, e := range d.Elems {
		if seen[e.Name] {
			return errf(d, "duplicate element %s in enum %s", e.Name, d.Name)
		}
		seen[e.Name] = true
		names[i] = e.Name
		if e.Val != nil {
			if err := e.Val.TypeCheck(t); err != nil {
				return err
			}
			v, err := e.Val.Value(t)
			if err != nil {
				if value.IsUnknown(err) {
					return errf(e.Val, "enum element value must be compile-time-known")
				}
				return err
			}
			if v.Kind() != value.Bits || !v.Int().IsInt64() {
				return errf(e.Val, "enum element value must be an integer, got %s", v)
			}
			next = v.Int().Int64()
		}
		values[i] = next
		next++
	}
	typ := types.EnumType(d.Name, names, values)
	d.setType(t, typ)
	if err := t.Add(d.Name, &symtab.Var{Name: d.Name, Type: typ}); err != nil {
		return errf(d, "%s", err)
	}
	return nil
}

func (d *EnumDef) AddSymbol(t *symtab.Table) error { return d.TypeCheck(t) }

func (d *EnumDef) TextForm() string {
	var sb strings.Builder
	sb.WriteString("enum " + d.Name + " {\n")
	for _, e := range d.Elems {
		sb.WriteString("  " + e.Name)
		if e.Val != nil {
			sb.WriteString(" " + e.Val.TextForm())
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// RangeDef is one named bit range of a bitfield definition. Lo is nil
// for a single-bit field.
type RangeDef struct {
	Name string
	Hi   Rvalue
	Lo   Rvalue
}

// BitfieldDef declares a bitfield type: a fixed-width bit vector with
// named sub-ranges.
type BitfieldDef struct {
	node
	Name      string
	WidthExpr Rvalue
	Ranges    []RangeDef
}

func NewBitfieldDef(s Span, name string, width Rvalue, ranges []RangeDef) *BitfieldDef {
	d := &BitfieldDef{node: at(s), Name: name, WidthExpr: width, Ranges: ranges}
	d.adopt(d, width)
	for _, r := range ranges {
		d.adopt(d, r.Hi, r.Lo)
	}
	return d
}

func (d *BitfieldDef) TypeCheck(t *symtab.Table) error {
	if err := d.WidthExpr.TypeCheck(t); err != nil {
		return err
	}
	width, err := constIndex(d.WidthExpr, t, "bitfield width")
	if err != nil {
		if value.IsUnknown(err) {
			return errf(d.WidthExpr, "bitfield width must be compile-time-known")
		}
		return err
	}
	if width <= 0 {
		return errf(d.WidthExpr, "bitfield width must be positive, got %d", width)
	}
	seen := map[string]bool{}
	ranges := make([]types.Range, len(d.Ranges))
	for i, r := range d.Ranges {
		if seen[r.Name] {
			return errf(d, "duplicate range %s in bitfield %s", r.Name, d.Name)
		}
		seen[r.Name] = true
		hi, lo, err := d.rangeBounds(t, r)
		if err != nil {
			return err
		}
		if lo > hi {
			return errf(d, "range %s of %s is reversed (%d:%d)", r.Name, d.Name, hi, lo)
		}
		if hi >= width {
			return errf(d, "range %s of %s exceeds width %d", r.Name, d.Name, width)
		}
		ranges[i] = types.Range{Name: r.Name, Hi: hi, Lo: lo}
	}
	typ := types.BitfieldType(d.Name, width, ranges)
	d.setType(t, typ)
	if err := t.Add(d.Name, &symtab.Var{Name: d.Name, Type: typ}); err != nil {
		return errf(d, "%s", err)
	}
	return nil
}

func (d *BitfieldDef) rangeBounds(t *symtab.Table, r RangeDef) (hi, lo int, err error) {
	if err := r.Hi.TypeCheck(t); err != nil {
		return 0, 0, err
	}
	hi, err = constIndex(r.Hi, t, "bit position")
	if err != nil {
		return 0, 0, boundsErr(r.Hi, err)
	}
	if r.Lo == nil {
		return hi, hi, nil
	}
	if err := r.Lo.TypeCheck(t); err != nil {
		return 0, 0, err
	}
	lo, err = constIndex(r.Lo, t, "bit position")
	if err != nil {
		return 0, 0, boundsErr(r.Lo, err)
	}
	return hi, lo, nil
}

func boundsErr(n Node, err error) error {
	if value.IsUnknown(err) {
		return errf(n, "bit position must be compile-time-known")
	}
	return err
}

func (d *BitfieldDef) AddSymbol(t *symtab.Table) error { return d.TypeCheck(t) }

func (d *BitfieldDef) TextForm() string {
	var sb strings.Builder
	sb.WriteString("bitfield (" + d.WidthExpr.TextForm() + ") " + d.Name + " {\n")
	for _, r := range d.Ranges {
		sb.WriteString("  " + r.Name + " " + r.Hi.TextForm())
		if r.Lo != nil {
			sb.WriteString("-" + r.Lo.TextForm())
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// StructDef declares a named aggregate of typed members.
type StructDef struct {
	node
	Name    string
	Members []Param
}

func NewStructDef(s Span, name string, members []Param) *StructDef {
	d := &StructDef{node: at(s), Name: name, Members: members}
	for _, m := range members {
		d.adopt(d, m.Ref)
	}
	return d
}

func (d *StructDef) TypeCheck(t *symtab.Table) error {
	seen := map[string]bool{}
	members := make([]types.Member, len(d.Members))
	for i, m := range d.Members {
		if seen[m.Name] {
			return errf(d, "duplicate member %s in struct %s", m.Name, d.Name)
		}
		seen[m.Name] = true
		if err := m.Ref.TypeCheck(t); err != nil {
			return err
		}
		members[i] = types.Member{Name: m.Name, Type: m.Ref.Resolve(t)}
	}
	typ := types.StructType(d.Name, members)
	d.setType(t, typ)
	if err := t.Add(d.Name, &symtab.Var{Name: d.Name, Type: typ}); err != nil {
		return errf(d, "%s", err)
	}
	return nil
}

func (d *StructDef) AddSymbol(t *symtab.Table) error { return d.TypeCheck(t) }

func (d *StructDef) TextForm() string {
	var sb strings.Builder
	sb.WriteString("struct " + d.Name + " {\n")
	for _, m := range d.Members {
		sb.WriteString("  " + m.Ref.TextForm() + " " + m.Name + ";\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// Program is the root of one compilation unit: type definitions,
// global constants, and function definitions in source order.
type Program struct {
	node
	File  string
	Decls []Node
}

func NewProgram(file string, decls []Node) *Program {
	p := &Program{node: at(Span{File: file, Line: 1, Col: 1}), File: file, Decls: decls}
	for _, d := range decls {
		p.adopt(p, d)
	}
	return p
}

// TypeCheck registers and checks every declaration in source order.
// Function signatures are registered immediately; their bodies are
// checked lazily at call sites, or by the driver for plain functions.
func (p *Program) TypeCheck(t *symtab.Table) error {
	for _, d := range p.Decls {
		if fd, ok := d.(*FunctionDef); ok {
			if err := fd.AddSymbol(t); err != nil {
				return errf(fd, "%s", err)
			}
			if err := fd.TypeCheck(t); err != nil {
				return err
			}
			continue
		}
		if err := d.TypeCheck(t); err != nil {
			return err
		}
	}
	return nil
}

// Functions returns the function definitions in source order.
func (p *Program) Functions() []*FunctionDef {
	var out []*FunctionDef
	for _, d := range p.Decls {
		if fd, ok := d.(*FunctionDef); ok {
			out = append(out, fd)
		}
	}
	return out
}

func (p *Program) TextForm() string {
	parts := make([]string, len(p.Decls))
	for i, d := range p.Decls {
		parts[i] = d.TextForm()
	}
	return strings.Join(parts, "\n\n") + "\n"
}
