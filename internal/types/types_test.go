package types

import "testing"

func TestEqualTo(t *testing.T) {
	cases := []struct {
		name string
		a, b *Type
		want bool
	}{
		{"same width", BitsType(8), BitsType(8), true},
		{"different width", BitsType(8), BitsType(9), false},
		{"unknown width wild", BitsType(WidthUnknown), BitsType(64), true},
		{"qualifiers ignored", BitsType(8).MakeConst().MakeKnown(), BitsType(8), true},
		{"bits vs bool", BitsType(1), BoolType(), false},
		{"same enum", EnumType("E", []string{"A"}, []int64{0}).RefOf(), EnumType("E", []string{"A"}, []int64{0}).RefOf(), true},
		{"different enum", EnumType("E", nil, nil).RefOf(), EnumType("F", nil, nil).RefOf(), false},
		{"array", ArrayType(BitsType(8), 4), ArrayType(BitsType(8), 4), true},
		{"array size", ArrayType(BitsType(8), 4), ArrayType(BitsType(8), 5), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.EqualTo(tc.b); got != tc.want {
				t.Errorf("EqualTo = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConvertableTo(t *testing.T) {
	bf := BitfieldType("Mstatus", 64, []Range{{Name: "SD", Hi: 63, Lo: 63}})
	enum := EnumType("PrivMode", []string{"U", "M"}, []int64{0, 3})
	cases := []struct {
		name string
		a, b *Type
		want bool
	}{
		{"narrow to wide", BitsType(8), BitsType(16), true},
		{"wide to narrow", BitsType(16), BitsType(8), false},
		{"same", BitsType(8), BitsType(8), true},
		{"to unknown", BitsType(8), BitsType(WidthUnknown), true},
		{"bits to bool", BitsType(1), BoolType(), false},
		{"bool to bool", BoolType(), BoolType(), true},
		{"bits to bitfield", BitsType(64), bf, true},
		{"narrow bits to bitfield", BitsType(32), bf, false},
		{"bitfield to bits", bf, BitsType(64), true},
		{"enumref to bits", enum.RefOf(), BitsType(8), true},
		{"enumref to narrow bits", enum.RefOf(), BitsType(1), false},
		{"csr to bits", CSRType("misa", 64), BitsType(64), true},
		{"anything to dontcare", BoolType(), DontCareType(), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.ConvertableTo(tc.b); got != tc.want {
				t.Errorf("ConvertableTo = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestComparableTo(t *testing.T) {
	cases := []struct {
		name string
		a, b *Type
		want bool
	}{
		{"unsigned widths differ", BitsType(32), BitsType(3), true},
		{"signed mismatch", BitsType(8), SignedBitsType(8), false},
		{"both signed", SignedBitsType(4), SignedBitsType(16), true},
		{"bool bool", BoolType(), BoolType(), true},
		{"bool bits", BoolType(), BitsType(1), false},
		{"string string", StringType(), StringType(), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.ComparableTo(tc.b); got != tc.want {
				t.Errorf("ComparableTo = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEnumType(t *testing.T) {
	e := EnumType("PrivMode", []string{"U", "S", "M"}, []int64{0, 1, 3})
	if e.Width() != 2 {
		t.Errorf("width = %d, want 2", e.Width())
	}
	if v, ok := e.EnumValue("M"); !ok || v != 3 {
		t.Errorf("EnumValue(M) = %d, %v", v, ok)
	}
	if _, ok := e.EnumValue("X"); ok {
		t.Error("EnumValue(X) should not resolve")
	}
	if min := e.EnumMin(); min != 0 {
		t.Errorf("EnumMin = %d, want 0", min)
	}
}

func TestDefaultValue(t *testing.T) {
	if v, ok := BitsType(8).DefaultValue(); !ok || v.Int().Int64() != 0 {
		t.Errorf("Bits default = %v, %v", v, ok)
	}
	if v, ok := BoolType().DefaultValue(); !ok || v.Bool() {
		t.Errorf("Boolean default = %v, %v", v, ok)
	}
	e := EnumType("E", []string{"B", "A"}, []int64{2, 1})
	if v, ok := e.RefOf().DefaultValue(); !ok || v.ElemName() != "A" {
		t.Errorf("enum default = %v, %v, want A", v, ok)
	}
	arr := ArrayType(BitsType(4), 3)
	if v, ok := arr.DefaultValue(); !ok || len(v.Elems()) != 3 {
		t.Errorf("array default = %v, %v", v, ok)
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		in   *Type
		want string
	}{
		{BitsType(8), "Bits<8>"},
		{BitsType(WidthUnknown), "Bits<?>"},
		{BoolType(), "Boolean"},
		{StringType(), "String"},
		{ArrayType(BitsType(8), 4), "Bits<8>[4]"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	e := EnumType("E", []string{"A"}, []int64{0})
	c := e.Clone().MakeConst()
	if e.Const() {
		t.Error("MakeConst on a clone must not qualify the original")
	}
	if !c.Const() {
		t.Error("clone should carry the qualifier")
	}
}

func TestEnumWidthNegative(t *testing.T) {
	tests := []struct {
		values []int64
		want   int
	}{
		{[]int64{0, 3}, 2},
		{[]int64{-1}, 1},
		{[]int64{-1, 0}, 1},
		{[]int64{-4, 3}, 3},
		{[]int64{-5, 2}, 4},
		{[]int64{-8, -1}, 4},
	}
	for _, tc := range tests {
		names := make([]string, len(tc.values))
		for i := range names {
			names[i] = string(rune('A' + i))
		}
		e := EnumType("E", names, tc.values)
		if e.Width() != tc.want {
			t.Errorf("EnumType(%v).Width() = %d, want %d", tc.values, e.Width(), tc.want)
		}
	}
}
