package types

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"
)

// Kind identifies which family of IDL type a Type describes.
type Kind int

const (
	Void Kind = iota
	Boolean
	Bits     // fixed- or unknown-width bit vector
	Enum     // an enum definition (the class itself)
	EnumRef  // a value belonging to an enum class
	Bitfield // named bit ranges over a fixed width
	Struct
	Array
	Tuple // multiple function return values
	Function
	TemplateFunction
	CSR
	DontCare // the "don't care" write target
	String
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Boolean:
		return "Boolean"
	case Bits:
		return "Bits"
	case Enum:
		return "enum"
	case EnumRef:
		return "enum ref"
	case Bitfield:
		return "bitfield"
	case Struct:
		return "struct"
	case Array:
		return "array"
	case Tuple:
		return "tuple"
	case Function:
		return "function"
	case TemplateFunction:
		return "template function"
	case CSR:
		return "CSR"
	case DontCare:
		return "-"
	case String:
		return "String"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// WidthUnknown marks a bit-vector type whose width is not known at
// analysis time (e.g. it depends on an unbound template parameter).
const WidthUnknown = -1

// Qual is a set of independent type qualifiers. Adding a qualifier is
// idempotent and order-independent.
type Qual uint8

const (
	QualConst Qual = 1 << iota
	QualSigned
	QualKnown // value is compile-time-known
	QualGlobal
	QualTemplateVar
)

func (q Qual) Has(f Qual) bool { return q&f != 0 }

func (q Qual) String() string {
	var parts []string
	if q.Has(QualConst) {
		parts = append(parts, "const")
	}
	if q.Has(QualSigned) {
		parts = append(parts, "signed")
	}
	if q.Has(QualKnown) {
		parts = append(parts, "known")
	}
	if q.Has(QualGlobal) {
		parts = append(parts, "global")
	}
	if q.Has(QualTemplateVar) {
		parts = append(parts, "template")
	}
	return strings.Join(parts, " ")
}

// Member is one named element of a struct type, in declaration order.
type Member struct {
	Name string
	Type *Type
}

// Range is one named bit range of a bitfield type. Hi >= Lo.
type Range struct {
	Name string
	Hi   int
	Lo   int
}

// Width returns the number of bits the range covers.
func (r Range) Width() int { return r.Hi - r.Lo + 1 }

// Type describes one IDL type. A Type shared between symbol-table
// entries must be cloned before any qualifier is added; qualifying
// operations are monotonic and never remove qualifiers.
type Type struct {
	kind  Kind
	width int
	qual  Qual

	elem    *Type   // Array element type
	size    int     // Array length
	members []Member // Struct members
	ranges  []Range  // Bitfield ranges

	enumName   string
	enumElems  []string // Enum element names, declaration order
	enumValues []int64  // parallel to enumElems

	csrName string

	structName string

	// Function signature. A TemplateFunction additionally lists the
	// template parameter types.
	args     []*Type
	argNames []string
	ret      *Type
	tplArgs  []*Type
	tplNames []string
	funcName string
}

func (t *Type) Kind() Kind { return t.kind }

// Width is only meaningful for bit-vector-like kinds (Bits, Bitfield,
// EnumRef, CSR). It is WidthUnknown when not determinable.
func (t *Type) Width() int { return t.width }

func (t *Type) Qual() Qual              { return t.qual }
func (t *Type) Const() bool             { return t.qual.Has(QualConst) }
func (t *Type) Signed() bool            { return t.qual.Has(QualSigned) }
func (t *Type) Known() bool             { return t.qual.Has(QualKnown) }
func (t *Type) Global() bool            { return t.qual.Has(QualGlobal) }
func (t *Type) TemplateVar() bool       { return t.qual.Has(QualTemplateVar) }
func (t *Type) Elem() *Type             { return t.elem }
func (t *Type) Size() int               { return t.size }
func (t *Type) Members() []Member       { return t.members }
func (t *Type) Ranges() []Range         { return t.ranges }
func (t *Type) EnumName() string        { return t.enumName }
func (t *Type) EnumElems() []string     { return t.enumElems }
func (t *Type) StructName() string      { return t.structName }
func (t *Type) CSRName() string         { return t.csrName }
func (t *Type) FuncName() string        { return t.funcName }
func (t *Type) Args() []*Type           { return t.args }
func (t *Type) ArgNames() []string      { return t.argNames }
func (t *Type) Return() *Type           { return t.ret }
func (t *Type) TemplateArgs() []*Type   { return t.tplArgs }
func (t *Type) TemplateNames() []string { return t.tplNames }

// EnumValue returns the value bound to the named enum element.
func (t *Type) EnumValue(name string) (int64, bool) {
	for i, n := range t.enumElems {
		if n == name {
			return t.enumValues[i], true
		}
	}
	return 0, false
}

// EnumMin returns the smallest element value of an Enum or EnumRef type.
func (t *Type) EnumMin() int64 {
	min := int64(0)
	for i, v := range t.enumValues {
		if i == 0 || v < min {
			min = v
		}
	}
	return min
}

// EnumValues returns the element values in declaration order.
func (t *Type) EnumValues() []int64 { return t.enumValues }

// Range returns the named bitfield range.
func (t *Type) Range(name string) (Range, bool) {
	for _, r := range t.ranges {
		if r.Name == name {
			return r, true
		}
	}
	return Range{}, false
}

// Member returns the named struct member.
func (t *Type) Member(name string) (Member, bool) {
	for _, m := range t.members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// Clone returns an independent copy; qualifying a shared Type without
// cloning it first corrupts every binding that references it.
func (t *Type) Clone() *Type {
	c := *t
	c.members = append([]Member(nil), t.members...)
	c.ranges = append([]Range(nil), t.ranges...)
	c.enumElems = append([]string(nil), t.enumElems...)
	c.enumValues = append([]int64(nil), t.enumValues...)
	c.args = append([]*Type(nil), t.args...)
	c.argNames = append([]string(nil), t.argNames...)
	c.tplArgs = append([]*Type(nil), t.tplArgs...)
	c.tplNames = append([]string(nil), t.tplNames...)
	return &c
}

// Qualifying operations. Monotonic: they only ever add.

func (t *Type) MakeConst() *Type  { t.qual |= QualConst; return t }
func (t *Type) MakeSigned() *Type { t.qual |= QualSigned; return t }
func (t *Type) MakeKnown() *Type  { t.qual |= QualKnown; return t }
func (t *Type) MakeGlobal() *Type { t.qual |= QualGlobal; return t }
func (t *Type) MakeTemplateVar() *Type {
	t.qual |= QualTemplateVar
	return t
}

// Constructors.

func VoidType() *Type    { return &Type{kind: Void} }
func BoolType() *Type    { return &Type{kind: Boolean, width: 1} }
func StringType() *Type  { return &Type{kind: String, width: WidthUnknown} }
func DontCareType() *Type { return &Type{kind: DontCare} }

// BitsType describes Bits<width>. Pass WidthUnknown when the width
// depends on an unresolved template parameter.
func BitsType(width int) *Type { return &Type{kind: Bits, width: width} }

func SignedBitsType(width int) *Type {
	return &Type{kind: Bits, width: width, qual: QualSigned}
}

func ArrayType(elem *Type, size int) *Type {
	return &Type{kind: Array, elem: elem, size: size}
}

func TupleType(elems []*Type) *Type {
	t := &Type{kind: Tuple}
	t.args = elems
	return t
}

// TupleElems returns the element types of a Tuple type.
func (t *Type) TupleElems() []*Type { return t.args }

func EnumType(name string, elems []string, values []int64) *Type {
	return &Type{kind: Enum, width: enumWidth(values), enumName: name, enumElems: elems, enumValues: values}
}

// RefOf returns the EnumRef type for an Enum definition type.
func (t *Type) RefOf() *Type {
	return &Type{
		kind:       EnumRef,
		width:      t.width,
		enumName:   t.enumName,
		enumElems:  t.enumElems,
		enumValues: t.enumValues,
	}
}

func BitfieldType(name string, width int, ranges []Range) *Type {
	return &Type{kind: Bitfield, width: width, structName: name, ranges: ranges}
}

func StructType(name string, members []Member) *Type {
	return &Type{kind: Struct, structName: name, members: members}
}

func CSRType(name string, width int) *Type {
	return &Type{kind: CSR, width: width, csrName: name}
}

func FunctionType(name string, argNames []string, args []*Type, ret *Type) *Type {
	return &Type{kind: Function, funcName: name, argNames: argNames, args: args, ret: ret}
}

func TemplateFunctionType(name string, tplNames []string, tplArgs []*Type, argNames []string, args []*Type, ret *Type) *Type {
	return &Type{
		kind:     TemplateFunction,
		funcName: name,
		tplNames: tplNames,
		tplArgs:  tplArgs,
		argNames: argNames,
		args:     args,
		ret:      ret,
	}
}

func maxValue(values []int64) int64 {
	var max int64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}

// enumWidth is the minimum width holding every element value: plain
// binary when all are non-negative, two's complement otherwise.
func enumWidth(values []int64) int {
	var min int64
	for _, v := range values {
		if v < min {
			min = v
		}
	}
	if min >= 0 {
		return bitsFor(maxValue(values))
	}
	w := signedBits(maxValue(values))
	if neg := signedBits(min); neg > w {
		w = neg
	}
	return w
}

// signedBits is the minimum two's-complement width holding v.
func signedBits(v int64) int {
	if v < 0 {
		v = -(v + 1)
	}
	return bits.Len64(uint64(v)) + 1
}

// bitsFor returns the minimum width that can hold v (at least 1).
func bitsFor(v int64) int {
	w := 1
	for v > 1 {
		v >>= 1
		w++
	}
	return w
}

func (t *Type) String() string {
	switch t.kind {
	case Bits:
		s := "Bits<?>"
		if t.width != WidthUnknown {
			s = fmt.Sprintf("Bits<%d>", t.width)
		}
		if t.Signed() {
			s = "signed " + s
		}
		return s
	case Enum:
		return "enum " + t.enumName
	case EnumRef:
		return t.enumName
	case Bitfield:
		return "bitfield " + t.structName
	case Struct:
		return "struct " + t.structName
	case Array:
		if t.size == WidthUnknown {
			return t.elem.String() + "[]"
		}
		return fmt.Sprintf("%s[%d]", t.elem, t.size)
	case Tuple:
		names := make([]string, len(t.args))
		for i, a := range t.args {
			names[i] = a.String()
		}
		return "(" + strings.Join(names, ", ") + ")"
	case Function, TemplateFunction:
		return "function " + t.funcName
	case CSR:
		return "CSR[" + t.csrName + "]"
	default:
		return t.kind.String()
	}
}

// SortedRanges returns the bitfield ranges ordered high bit first.
func (t *Type) SortedRanges() []Range {
	out := append([]Range(nil), t.ranges...)
	sort.Slice(out, func(i, j int) bool { return out[i].Hi > out[j].Hi })
	return out
}
