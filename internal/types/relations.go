package types

// Three relations exist between types and are deliberately distinct:
// EqualTo is structural identity ignoring qualifiers, ConvertableTo
// governs assignment and argument passing, and ComparableTo governs
// the two sides of an ordering or equality operator. Call sites must
// use the relation the language rule names, not a stronger one.

// EqualTo reports structural identity, ignoring qualifiers. An unknown
// width matches any width: the mismatch, if real, is caught once the
// width is resolved.
func (t *Type) EqualTo(o *Type) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case Bits:
		return widthsAgree(t.width, o.width)
	case Enum, EnumRef:
		return t.enumName == o.enumName
	case Bitfield:
		return t.structName == o.structName
	case Struct:
		return t.structName == o.structName
	case Array:
		if !t.elem.EqualTo(o.elem) {
			return false
		}
		return sizesAgree(t.size, o.size)
	case Tuple:
		if len(t.args) != len(o.args) {
			return false
		}
		for i := range t.args {
			if !t.args[i].EqualTo(o.args[i]) {
				return false
			}
		}
		return true
	case Function, TemplateFunction:
		return t.funcName == o.funcName
	case CSR:
		return t.csrName == o.csrName
	default:
		return true
	}
}

// ConvertableTo reports whether a value of type t may be assigned or
// passed to a target of type o. Bit vectors convert to a wider or
// unknown-width bits target; nothing converts to Boolean except
// Boolean; an enum ref converts only within its own enum class.
func (t *Type) ConvertableTo(o *Type) bool {
	if o.kind == DontCare {
		return true
	}
	switch t.kind {
	case Boolean:
		return o.kind == Boolean
	case Bits:
		switch o.kind {
		case Bits:
			return fitsWidth(t.width, o.width)
		case Bitfield:
			return widthsAgree(t.width, o.width)
		}
		return false
	case Bitfield:
		switch o.kind {
		case Bitfield:
			return t.structName == o.structName
		case Bits:
			return fitsWidth(t.width, o.width)
		}
		return false
	case EnumRef:
		switch o.kind {
		case EnumRef:
			return t.enumName == o.enumName
		case Bits:
			return fitsWidth(t.width, o.width)
		}
		return false
	case CSR:
		if o.kind == Bits {
			return fitsWidth(t.width, o.width)
		}
		return o.kind == CSR && t.csrName == o.csrName
	case Array:
		return o.kind == Array && t.elem.EqualTo(o.elem) && sizesAgree(t.size, o.size)
	case Tuple:
		if o.kind != Tuple || len(t.args) != len(o.args) {
			return false
		}
		for i := range t.args {
			if !t.args[i].ConvertableTo(o.args[i]) {
				return false
			}
		}
		return true
	case String:
		return o.kind == String
	case Struct:
		return o.kind == Struct && t.structName == o.structName
	default:
		return t.EqualTo(o)
	}
}

// ComparableTo reports whether values of the two types may appear on
// either side of an ordering/equality operator. For bit vectors this
// is stricter than convertibility: signedness must match as well.
func (t *Type) ComparableTo(o *Type) bool {
	switch t.kind {
	case Boolean:
		return o.kind == Boolean
	case Bits:
		switch o.kind {
		case Bits, Bitfield:
			return t.Signed() == o.Signed()
		}
		return false
	case Bitfield:
		return o.kind == Bits || o.kind == Bitfield
	case EnumRef:
		return o.kind == EnumRef && t.enumName == o.enumName
	case String:
		return o.kind == String
	default:
		return false
	}
}

// widthsAgree: exact match, with unknown wild.
func widthsAgree(a, b int) bool {
	return a == WidthUnknown || b == WidthUnknown || a == b
}

// fitsWidth: the source width fits a target that is at least as wide,
// with unknown wild on either side.
func fitsWidth(src, dst int) bool {
	return src == WidthUnknown || dst == WidthUnknown || src <= dst
}

func sizesAgree(a, b int) bool {
	return a == WidthUnknown || b == WidthUnknown || a == b
}
