package value

import (
	"math/big"
	"testing"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		name  string
		in    Value
		width int
		want  int64
		lost  bool
	}{
		{"fits", NewUint(200, 8), 8, 200, false},
		{"wraps", NewUint(300, WidthUnknown), 8, 44, true},
		{"zero", NewUint(0, 4), 4, 0, false},
		{"signed survives", NewInt(-1, WidthUnknown), 8, -1, false},
		{"signed flips", NewBits(big.NewInt(200), 8, true), 8, -56, true},
		{"negative wraps", NewInt(-200, WidthUnknown), 4, -8, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, lost := tc.in.Truncate(tc.width)
			if got.Int().Int64() != tc.want {
				t.Errorf("value = %v, want %d", got.Int(), tc.want)
			}
			if lost != tc.lost {
				t.Errorf("lost = %v, want %v", lost, tc.lost)
			}
			if got.Width() != tc.width {
				t.Errorf("width = %d, want %d", got.Width(), tc.width)
			}
		})
	}
}

func TestMinWidth(t *testing.T) {
	cases := []struct {
		in   Value
		want int
	}{
		{NewUint(0, WidthUnknown), 1},
		{NewUint(1, WidthUnknown), 1},
		{NewUint(4, WidthUnknown), 3},
		{NewUint(300, WidthUnknown), 9},
		{NewInt(-1, WidthUnknown), 2},
		{NewInt(-8, WidthUnknown), 5},
	}
	for _, tc := range cases {
		if got := tc.in.MinWidth(); got != tc.want {
			t.Errorf("MinWidth(%s) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFitsIn(t *testing.T) {
	if !NewUint(255, WidthUnknown).FitsIn(8, false) {
		t.Error("255 should fit unsigned 8 bits")
	}
	if NewUint(256, WidthUnknown).FitsIn(8, false) {
		t.Error("256 should not fit unsigned 8 bits")
	}
	if NewUint(200, WidthUnknown).FitsIn(8, true) {
		t.Error("200 should not fit signed 8 bits")
	}
	if !NewInt(-128, WidthUnknown).FitsIn(8, true) {
		t.Error("-128 should fit signed 8 bits")
	}
	if NewInt(-129, WidthUnknown).FitsIn(8, true) {
		t.Error("-129 should not fit signed 8 bits")
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		in   Value
		want string
	}{
		{NewUint(200, 8), "8'd200"},
		{NewInt(-4, 8), "8'sd4"},
		{NewBool(true), "true"},
		{NewString("hi"), `"hi"`},
		{NewEnumElem("PrivMode", "M", 3, 2), "PrivMode::M"},
		{NewArray([]Value{NewUint(1, 4), NewUint(2, 4)}), "{4'd1, 4'd2}"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func set(ns ...int64) []Value {
	out := make([]Value, len(ns))
	for i, n := range ns {
		out[i] = NewInt(n, WidthUnknown)
	}
	return out
}

func TestCompareSets(t *testing.T) {
	cases := []struct {
		name     string
		op       CmpOp
		as, bs   []Value
		result   bool
		definite bool
	}{
		{"ordered lt", OpLt, set(32, 64), set(128), true, true},
		{"disjoint eq", OpEq, set(32, 64), set(48), false, true},
		{"overlap eq", OpEq, set(32, 64), set(64), false, false},
		{"ordered ge", OpGe, set(100, 200), set(50), true, true},
		{"mixed lt", OpLt, set(32, 64), set(48), false, false},
		{"empty", OpEq, nil, set(1), false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, definite := CompareSets(tc.op, tc.as, tc.bs)
			if definite != tc.definite {
				t.Fatalf("definite = %v, want %v", definite, tc.definite)
			}
			if definite && result != tc.result {
				t.Errorf("result = %v, want %v", result, tc.result)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	min, max := Bounds(set(64, 32, 128))
	if min.Int().Int64() != 32 || max.Int().Int64() != 128 {
		t.Errorf("Bounds = %s..%s, want 32..128", min, max)
	}
}

func TestUnknownSignal(t *testing.T) {
	err := Unknownf("x + y", "y has no compile-time value")
	if !IsUnknown(err) {
		t.Fatal("Unknownf result should satisfy IsUnknown")
	}
	if IsUnknown(errOther{}) {
		t.Error("unrelated error should not be unknown")
	}
}

type errOther struct{}

func (errOther) Error() string { return "other" }
