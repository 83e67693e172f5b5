// Package value models compile-time IDL values: arbitrary-precision
// bit vectors with a width and signedness, plus the scalar kinds the
// evaluator can produce. Arithmetic is computed at full precision and
// truncated to the statically-known result width with two's-complement
// rules; truncation that loses information is reported to the caller,
// never silently dropped.
package value

import (
	"fmt"
	"math/big"
	"strings"
)

// WidthUnknown marks a value whose width is not statically determined.
const WidthUnknown = -1

// Kind identifies the representation of a Value.
type Kind int

const (
	Bits Kind = iota
	Bool
	Str
	EnumElem
	Array
	Tuple
)

// Value is one compile-time value. Bits values hold the mathematical
// (already sign-interpreted) integer; truncation reinterprets it.
type Value struct {
	kind   Kind
	i      *big.Int
	width  int
	signed bool
	b      bool
	s      string
	enum   string // enum class name, EnumElem only
	elem   string // enum element name, EnumElem only
	elems  []Value
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) Width() int     { return v.width }
func (v Value) Signed() bool   { return v.signed }
func (v Value) Bool() bool     { return v.b }
func (v Value) Text() string   { return v.s }
func (v Value) EnumName() string { return v.enum }
func (v Value) ElemName() string { return v.elem }
func (v Value) Elems() []Value { return v.elems }

// Int returns the mathematical integer of a Bits or EnumElem value.
// The result must not be mutated.
func (v Value) Int() *big.Int { return v.i }

// Uint64 returns the low 64 bits of the value's two's-complement form.
func (v Value) Uint64() uint64 {
	if v.i == nil {
		return 0
	}
	w := v.width
	if w == WidthUnknown || w > 64 {
		w = 64
	}
	t, _ := truncate(v.i, w)
	var u big.Int
	if t.Sign() < 0 {
		u.Add(t, new(big.Int).Lsh(big.NewInt(1), uint(w)))
	} else {
		u.Set(t)
	}
	return u.Uint64()
}

func NewBits(i *big.Int, width int, signed bool) Value {
	return Value{kind: Bits, i: new(big.Int).Set(i), width: width, signed: signed}
}

func NewUint(u uint64, width int) Value {
	return Value{kind: Bits, i: new(big.Int).SetUint64(u), width: width}
}

func NewInt(n int64, width int) Value {
	return Value{kind: Bits, i: big.NewInt(n), width: width, signed: n < 0}
}

func NewBool(b bool) Value { return Value{kind: Bool, b: b, width: 1} }

func NewString(s string) Value {
	return Value{kind: Str, s: s, width: WidthUnknown}
}

func NewEnumElem(class, elem string, v int64, width int) Value {
	return Value{kind: EnumElem, enum: class, elem: elem, i: big.NewInt(v), width: width}
}

func NewArray(elems []Value) Value {
	return Value{kind: Array, elems: elems, width: WidthUnknown}
}

func NewTuple(elems []Value) Value {
	return Value{kind: Tuple, elems: elems, width: WidthUnknown}
}

// Truncate reduces the value to width bits with two's-complement
// semantics, keeping the receiver's signedness for reinterpretation.
// lost reports whether the truncation discarded information, i.e. the
// full-precision value does not survive the round trip.
func (v Value) Truncate(width int) (Value, bool) {
	if v.kind != Bits && v.kind != EnumElem {
		return v, false
	}
	if width == WidthUnknown {
		return v, false
	}
	t, lost := truncate(v.i, width)
	if v.signed && width > 0 {
		// Reinterpret the low bits as a signed quantity.
		half := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
		if t.Cmp(half) >= 0 {
			t.Sub(t, new(big.Int).Lsh(big.NewInt(1), uint(width)))
		}
		lost = v.i.Cmp(t) != 0
	}
	out := v
	out.i = t
	out.width = width
	return out, lost
}

// truncate reduces i to its low `width` bits (non-negative result) and
// reports whether any information was discarded.
func truncate(i *big.Int, width int) (*big.Int, bool) {
	if width <= 0 {
		return big.NewInt(0), i.Sign() != 0
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(width))
	t := new(big.Int).Mod(i, mod)
	// Compare against the unsigned reading of the low bits.
	lost := i.Sign() < 0 || i.Cmp(t) != 0
	return t, lost
}

// FitsIn reports whether the mathematical value is representable in
// width bits with the given signedness, i.e. truncation would be lossless.
func (v Value) FitsIn(width int, signed bool) bool {
	if v.kind != Bits && v.kind != EnumElem {
		return true
	}
	if width == WidthUnknown {
		return true
	}
	if signed {
		min := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(width-1)))
		max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width-1)), big.NewInt(1))
		return v.i.Cmp(min) >= 0 && v.i.Cmp(max) <= 0
	}
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	return v.i.Sign() >= 0 && v.i.Cmp(max) <= 0
}

// MinWidth returns the smallest width that holds the value losslessly
// under its signedness.
func (v Value) MinWidth() int {
	if v.i == nil {
		return 1
	}
	n := v.i.BitLen()
	if n == 0 {
		n = 1
	}
	if v.signed || v.i.Sign() < 0 {
		n++
	}
	return n
}

// Equal reports deep equality of two values.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		if (a.kind == Bits && b.kind == EnumElem) || (a.kind == EnumElem && b.kind == Bits) {
			return a.i.Cmp(b.i) == 0
		}
		return false
	}
	switch a.kind {
	case Bits, EnumElem:
		return a.i.Cmp(b.i) == 0
	case Bool:
		return a.b == b.b
	case Str:
		return a.s == b.s
	case Array, Tuple:
		if len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Cmp orders two numeric values by their mathematical integers.
func Cmp(a, b Value) int { return a.i.Cmp(b.i) }

func (v Value) String() string {
	switch v.kind {
	case Bits:
		if v.width == WidthUnknown {
			return v.i.String()
		}
		if v.signed {
			return fmt.Sprintf("%d'sd%s", v.width, new(big.Int).Abs(v.i).String())
		}
		return fmt.Sprintf("%d'd%s", v.width, v.i.String())
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Str:
		return fmt.Sprintf("%q", v.s)
	case EnumElem:
		return v.enum + "::" + v.elem
	case Array, Tuple:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		open, close := "{", "}"
		if v.kind == Tuple {
			open, close = "(", ")"
		}
		return open + strings.Join(parts, ", ") + close
	}
	return "<invalid>"
}
