package types

import (
	"math/big"

	"github.com/hwlang/idl/internal/value"
)

// DefaultValue returns the zero value a declaration of this type takes
// when no initializer is given: 0 for bits and bitfields, false for
// Boolean, zero-filled for arrays, the empty string, and the minimum
// element value for an enum ref.
func (t *Type) DefaultValue() (value.Value, bool) {
	switch t.kind {
	case Bits:
		if t.width == WidthUnknown {
			return value.Value{}, false
		}
		v := value.NewBits(big.NewInt(0), t.width, t.Signed())
		return v, true
	case Bitfield:
		return value.NewUint(0, t.width), true
	case Boolean:
		return value.NewBool(false), true
	case String:
		return value.NewString(""), true
	case EnumRef:
		min := t.EnumMin()
		name := ""
		for i, v := range t.enumValues {
			if v == min {
				name = t.enumElems[i]
				break
			}
		}
		return value.NewEnumElem(t.enumName, name, min, t.width), true
	case Array:
		if t.size == WidthUnknown {
			return value.Value{}, false
		}
		elem, ok := t.elem.DefaultValue()
		if !ok {
			return value.Value{}, false
		}
		elems := make([]value.Value, t.size)
		for i := range elems {
			elems[i] = elem
		}
		return value.NewArray(elems), true
	case Struct:
		elems := make([]value.Value, len(t.members))
		for i, m := range t.members {
			v, ok := m.Type.DefaultValue()
			if !ok {
				return value.Value{}, false
			}
			elems[i] = v
		}
		return value.NewTuple(elems), true
	default:
		return value.Value{}, false
	}
}
