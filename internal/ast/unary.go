package ast

import (
	"fmt"
	"math/big"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// UnaryExpr is -x, ~x or !x.
type UnaryExpr struct {
	node
	Op string
	X  Rvalue
}

func NewUnaryExpr(s Span, op string, x Rvalue) *UnaryExpr {
	e := &UnaryExpr{node: at(s), Op: op, X: x}
	e.adopt(e, x)
	return e
}

func (e *UnaryExpr) TypeCheck(t *symtab.Table) error {
	if err := e.X.TypeCheck(t); err != nil {
		return err
	}
	xt := e.X.Type(t)
	switch e.Op {
	case "!":
		if xt.Kind() != types.Boolean {
			return errf(e, "! requires a Boolean operand, got %s", xt)
		}
		typ := types.BoolType()
		if xt.Const() {
			typ.MakeConst()
		}
		e.setType(t, typ)
		return nil
	case "-", "~":
		if _, err := bitsOperand(e.X, t); err != nil {
			return err
		}
		typ := types.BitsType(xt.Width())
		if xt.Signed() {
			typ.MakeSigned()
		}
		if xt.Const() {
			typ.MakeConst()
		}
		e.setType(t, typ)
		return nil
	}
	internalf(e, "unknown unary operator %s", e.Op)
	return nil
}

func (e *UnaryExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *UnaryExpr) Value(t *symtab.Table) (value.Value, error) {
	xv, err := e.X.Value(t)
	if err != nil {
		return value.Value{}, err
	}
	typ := e.Type(t)
	switch e.Op {
	case "!":
		return value.NewBool(!xv.Bool()), nil
	case "-":
		// Negation wraps within the operand width; that is the point
		// of writing it, so no truncation warning here.
		out := value.NewBits(new(big.Int).Neg(xv.Int()), typ.Width(), typ.Signed())
		if typ.Width() != types.WidthUnknown {
			out, _ = out.Truncate(typ.Width())
		}
		return out, nil
	case "~":
		w := typ.Width()
		if w == types.WidthUnknown {
			return value.Value{}, unknownf(e, "~ needs a known operand width")
		}
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(w)), big.NewInt(1))
		out := value.NewBits(new(big.Int).Xor(twos(xv), mask), w, typ.Signed())
		out, _ = out.Truncate(w)
		return out, nil
	}
	internalf(e, "unknown unary operator %s", e.Op)
	return value.Value{}, nil
}

func (e *UnaryExpr) TextForm() string {
	return fmt.Sprintf("%s%s", e.Op, e.X.TextForm())
}
