package ast

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// BitsLit is a sized bit-vector literal: 8'd200, 16'hFFCC, 4'b1010,
// or the signed form 8'sd100.
type BitsLit struct {
	node
	Width  int
	Signed bool
	Base   byte // 'd', 'h', 'b', 'o'
	Val    *big.Int
}

func NewBitsLit(s Span, width int, signed bool, base byte, v *big.Int) *BitsLit {
	return &BitsLit{node: at(s), Width: width, Signed: signed, Base: base, Val: v}
}

func (l *BitsLit) TypeCheck(t *symtab.Table) error {
	probe := value.NewBits(l.Val, value.WidthUnknown, l.Signed)
	if !probe.FitsIn(l.Width, l.Signed) {
		return errf(l, "literal %s does not fit in %d bits", l.TextForm(), l.Width)
	}
	typ := types.BitsType(l.Width).MakeConst().MakeKnown()
	if l.Signed {
		typ.MakeSigned()
	}
	l.setType(t, typ)
	return nil
}

func (l *BitsLit) Type(t *symtab.Table) *types.Type { return l.mustType(l, t) }

func (l *BitsLit) Value(t *symtab.Table) (value.Value, error) {
	return value.NewBits(l.Val, l.Width, l.Signed), nil
}

func (l *BitsLit) TextForm() string {
	sign := ""
	if l.Signed {
		sign = "s"
	}
	body := l.Val.Text(baseOf(l.Base))
	return fmt.Sprintf("%d'%s%c%s", l.Width, sign, l.Base, strings.TrimPrefix(body, "-"))
}

func baseOf(b byte) int {
	switch b {
	case 'h':
		return 16
	case 'b':
		return 2
	case 'o':
		return 8
	default:
		return 10
	}
}

// IntLit is a bare integer literal. Its width is the minimum that
// holds the value.
type IntLit struct {
	node
	Val *big.Int
	Hex bool
}

func NewIntLit(s Span, v *big.Int, hex bool) *IntLit {
	return &IntLit{node: at(s), Val: v, Hex: hex}
}

func (l *IntLit) width() int {
	return value.NewBits(l.Val, value.WidthUnknown, false).MinWidth()
}

func (l *IntLit) TypeCheck(t *symtab.Table) error {
	l.setType(t, types.BitsType(l.width()).MakeConst().MakeKnown())
	return nil
}

func (l *IntLit) Type(t *symtab.Table) *types.Type { return l.mustType(l, t) }

func (l *IntLit) Value(t *symtab.Table) (value.Value, error) {
	return value.NewBits(l.Val, l.width(), false), nil
}

func (l *IntLit) TextForm() string {
	if l.Hex {
		return "0x" + l.Val.Text(16)
	}
	return l.Val.String()
}

// BoolLit is true or false.
type BoolLit struct {
	node
	Val bool
}

func NewBoolLit(s Span, v bool) *BoolLit { return &BoolLit{node: at(s), Val: v} }

func (l *BoolLit) TypeCheck(t *symtab.Table) error {
	l.setType(t, types.BoolType().MakeConst().MakeKnown())
	return nil
}

func (l *BoolLit) Type(t *symtab.Table) *types.Type { return l.mustType(l, t) }

func (l *BoolLit) Value(t *symtab.Table) (value.Value, error) {
	return value.NewBool(l.Val), nil
}

func (l *BoolLit) TextForm() string {
	if l.Val {
		return "true"
	}
	return "false"
}

// StrLit is a double-quoted string literal.
type StrLit struct {
	node
	Val string
}

func NewStrLit(s Span, v string) *StrLit { return &StrLit{node: at(s), Val: v} }

func (l *StrLit) TypeCheck(t *symtab.Table) error {
	l.setType(t, types.StringType().MakeConst().MakeKnown())
	return nil
}

func (l *StrLit) Type(t *symtab.Table) *types.Type { return l.mustType(l, t) }

func (l *StrLit) Value(t *symtab.Table) (value.Value, error) {
	return value.NewString(l.Val), nil
}

func (l *StrLit) TextForm() string { return fmt.Sprintf("%q", l.Val) }

// ArrayLit is {e0, e1, ...}; every element must have the same type.
type ArrayLit struct {
	node
	Elems []Rvalue
}

func NewArrayLit(s Span, elems []Rvalue) *ArrayLit {
	l := &ArrayLit{node: at(s), Elems: elems}
	for _, e := range elems {
		l.adopt(l, e)
	}
	return l
}

func (l *ArrayLit) TypeCheck(t *symtab.Table) error {
	if len(l.Elems) == 0 {
		return errf(l, "empty array literal")
	}
	for _, e := range l.Elems {
		if err := e.TypeCheck(t); err != nil {
			return err
		}
	}
	first := l.Elems[0].Type(t)
	for _, e := range l.Elems[1:] {
		if !e.Type(t).EqualTo(first) {
			return errf(e, "array element type %s does not match %s", e.Type(t), first)
		}
	}
	l.setType(t, types.ArrayType(first, len(l.Elems)))
	return nil
}

func (l *ArrayLit) Type(t *symtab.Table) *types.Type { return l.mustType(l, t) }

func (l *ArrayLit) Value(t *symtab.Table) (value.Value, error) {
	elems := make([]value.Value, len(l.Elems))
	for i, e := range l.Elems {
		v, err := e.Value(t)
		if err != nil {
			return value.Value{}, err
		}
		elems[i] = v
	}
	return value.NewArray(elems), nil
}

func (l *ArrayLit) TextForm() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = e.TextForm()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
