package ast

import (
	"fmt"
	"math/big"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// maxPossible bounds the cartesian expansion when mapping arithmetic
// over possible-value sets.
const maxPossible = 64

// BinaryExpr is an arithmetic, bitwise or shift operator. The widening
// forms (spelled with a leading backtick: `+ `- `* `<<) grow the
// result width enough that truncation can never occur; the plain forms
// truncate to the statically-known result width with two's-complement
// rules, and a truncation that loses information is a warning.
type BinaryExpr struct {
	node
	Op       string
	Widening bool
	L, R     Rvalue
}

func NewBinaryExpr(s Span, op string, widening bool, l, r Rvalue) *BinaryExpr {
	e := &BinaryExpr{node: at(s), Op: op, Widening: widening, L: l, R: r}
	e.adopt(e, l, r)
	return e
}

// bitsOperand validates an operand usable in bit-vector arithmetic and
// returns its width.
func bitsOperand(e Rvalue, t *symtab.Table) (int, error) {
	typ := e.Type(t)
	switch typ.Kind() {
	case types.Bits, types.Bitfield, types.EnumRef, types.CSR:
		return typ.Width(), nil
	}
	return 0, errf(e, "operand must be a bit vector, got %s", typ)
}

func (e *BinaryExpr) TypeCheck(t *symtab.Table) error {
	if err := e.L.TypeCheck(t); err != nil {
		return err
	}
	if err := e.R.TypeCheck(t); err != nil {
		return err
	}
	wl, err := bitsOperand(e.L, t)
	if err != nil {
		return err
	}
	wr, err := bitsOperand(e.R, t)
	if err != nil {
		return err
	}

	width := types.WidthUnknown
	switch {
	case e.Widening && e.Op == "<<":
		// The amount a widening shift grows by must be known now.
		n, err := constIndex(e.R, t, "widening shift amount")
		if err != nil {
			if value.IsUnknown(err) {
				return errf(e.R, "widening shift amount must be compile-time-known")
			}
			return err
		}
		if n < 0 {
			return errf(e.R, "shift amount must not be negative")
		}
		if wl != types.WidthUnknown {
			width = wl + n
		}
	case e.Widening && e.Op == "*":
		if wl != types.WidthUnknown && wr != types.WidthUnknown {
			width = wl + wr
		}
	case e.Widening:
		// `+ and `- need one extra bit over the wider operand.
		if wl != types.WidthUnknown && wr != types.WidthUnknown {
			width = maxInt(wl, wr) + 1
		}
	case e.Op == "<<" || e.Op == ">>":
		width = wl
	default:
		if wl != types.WidthUnknown && wr != types.WidthUnknown {
			width = maxInt(wl, wr)
		}
	}

	typ := types.BitsType(width)
	if e.L.Type(t).Signed() && e.R.Type(t).Signed() {
		typ.MakeSigned()
	}
	if e.L.Type(t).Const() && e.R.Type(t).Const() {
		typ.MakeConst()
	}
	e.setType(t, typ)
	return nil
}

func (e *BinaryExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *BinaryExpr) Value(t *symtab.Table) (value.Value, error) {
	lv, err := e.L.Value(t)
	if err != nil {
		return value.Value{}, err
	}
	rv, err := e.R.Value(t)
	if err != nil {
		return value.Value{}, err
	}
	return e.apply(t, lv, rv, true)
}

// apply computes one binary operation at full precision and truncates
// to the result width. warn controls truncation reporting; mapping
// over possible-value sets stays silent.
func (e *BinaryExpr) apply(t *symtab.Table, lv, rv value.Value, warn bool) (value.Value, error) {
	typ := e.Type(t)
	full := new(big.Int)
	a, b := lv.Int(), rv.Int()
	switch e.Op {
	case "+":
		full.Add(a, b)
	case "-":
		full.Sub(a, b)
	case "*":
		full.Mul(a, b)
	case "/":
		if b.Sign() == 0 {
			return value.Value{}, errf(e, "division by zero")
		}
		full.Quo(a, b)
	case "%":
		if b.Sign() == 0 {
			return value.Value{}, errf(e, "modulo by zero")
		}
		full.Rem(a, b)
	case "<<":
		n, err := shiftAmount(e.R, b)
		if err != nil {
			return value.Value{}, err
		}
		full.Lsh(a, n)
	case ">>":
		n, err := shiftAmount(e.R, b)
		if err != nil {
			return value.Value{}, err
		}
		full.Rsh(a, n)
	case "&":
		full.And(twos(lv), twos(rv))
	case "|":
		full.Or(twos(lv), twos(rv))
	case "^":
		full.Xor(twos(lv), twos(rv))
	default:
		internalf(e, "unknown operator %s", e.Op)
	}

	out := value.NewBits(full, typ.Width(), typ.Signed())
	if typ.Width() == types.WidthUnknown {
		return out, nil
	}
	out, lost := out.Truncate(typ.Width())
	if lost && warn && !e.Widening {
		t.Warn(e.Span().String(), fmt.Sprintf(
			"result of %s truncated from %s to %d bits", e.TextForm(), full, typ.Width()))
	}
	return out, nil
}

// possible maps the operation over the operands' finite candidate
// sets, giving comparisons above this node something to decide with
// even when neither side has a single value.
func (e *BinaryExpr) possible(t *symtab.Table) []value.Value {
	ls := possibleOf(e.L, t)
	rs := possibleOf(e.R, t)
	if len(ls) == 0 || len(rs) == 0 || len(ls)*len(rs) > maxPossible {
		return nil
	}
	var out []value.Value
	for _, lv := range ls {
		for _, rv := range rs {
			v, err := e.apply(t, lv, rv, false)
			if err != nil {
				return nil
			}
			out = append(out, v)
		}
	}
	return out
}

func (e *BinaryExpr) TextForm() string {
	op := e.Op
	if e.Widening {
		op = "`" + op
	}
	return fmt.Sprintf("(%s %s %s)", e.L.TextForm(), op, e.R.TextForm())
}

// shiftAmount bounds a shift so an absurd operand cannot make the
// evaluator allocate unbounded big integers.
func shiftAmount(n Node, b *big.Int) (uint, error) {
	if b.Sign() < 0 {
		return 0, errf(n, "shift amount must not be negative")
	}
	if !b.IsInt64() || b.Int64() > 1<<20 {
		return 0, errf(n, "shift amount %s out of range", b)
	}
	return uint(b.Int64()), nil
}

// twos returns the operand's two's-complement reading at its own
// width, so bitwise operations see the bit pattern, not the sign.
func twos(v value.Value) *big.Int {
	if v.Int().Sign() >= 0 {
		return v.Int()
	}
	w := v.Width()
	if w == value.WidthUnknown {
		w = v.MinWidth()
	}
	return new(big.Int).Add(v.Int(), new(big.Int).Lsh(big.NewInt(1), uint(w)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// possibleValuer is implemented by expressions that can enumerate a
// finite candidate set when their exact value is unknown.
type possibleValuer interface {
	possible(t *symtab.Table) []value.Value
}

// possibleOf returns the expression's possible-value set: the single
// known value if there is one, else whatever finite set the node can
// derive, else nil.
func possibleOf(e Rvalue, t *symtab.Table) []value.Value {
	if v, err := e.Value(t); err == nil {
		return []value.Value{v}
	}
	if p, ok := e.(possibleValuer); ok {
		return p.possible(t)
	}
	return nil
}

// PossibleValues is possibleOf for callers outside the package: the
// expression's finite candidate set under the scope, or nil.
func PossibleValues(e Rvalue, t *symtab.Table) []value.Value {
	return possibleOf(e, t)
}
