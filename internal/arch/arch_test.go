package arch

import (
	"testing"

	"github.com/hwlang/idl/internal/value"
)

const sample = `
base: 64
csrs:
  - name: misa
    length: {32: 32, 64: 64}
    fields:
      - name: MXL
        location: {32: [31, 30], 64: [63, 62]}
        read_only: true
        reset: 2
      - name: Extensions
        location: {32: [25, 0], 64: [25, 0]}
        read_only: true
        reset: 5
  - name: mcause
    fields:
      - name: INT
        location: {32: [31, 31], 64: [63, 63]}
  - name: mtval
    dynamic: true
params:
  - name: MXLEN
    schema: {type: integer, bits: 8, enum: [32, 64]}
    value: 64
  - name: MISALIGNED_LDST
    schema: {type: boolean}
    bool_value: true
  - name: VENDOR
    schema: {type: string}
    string_value: "acme"
  - name: OPEN
    schema: {type: integer, bits: 16}
`

func parseSample(t *testing.T) *File {
	t.Helper()
	f, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestCSRLookup(t *testing.T) {
	f := parseSample(t)
	c, ok := f.CSR("misa")
	if !ok {
		t.Fatal("misa should resolve")
	}
	if n, dyn := c.Length(64); n != 64 || dyn {
		t.Errorf("Length(64) = %d, %v", n, dyn)
	}
	if n, dyn := c.Length(32); n != 32 || dyn {
		t.Errorf("Length(32) = %d, %v", n, dyn)
	}
	if _, ok := f.CSR("nope"); ok {
		t.Error("unknown csr should not resolve")
	}
	mtval, _ := f.CSR("mtval")
	if _, dyn := mtval.Length(64); !dyn {
		t.Error("mtval length should be dynamic")
	}
}

func TestFieldLocationPerBase(t *testing.T) {
	f := parseSample(t)
	c, _ := f.CSR("misa")
	var mxl Field
	for _, fd := range c.Fields() {
		if fd.Name() == "MXL" {
			mxl = fd
		}
	}
	if hi, lo, ok := mxl.Location(64); !ok || hi != 63 || lo != 62 {
		t.Errorf("MXL at 64 = [%d, %d], %v", hi, lo, ok)
	}
	if hi, lo, ok := mxl.Location(32); !ok || hi != 31 || lo != 30 {
		t.Errorf("MXL at 32 = [%d, %d], %v", hi, lo, ok)
	}
}

func TestResetValue(t *testing.T) {
	f := parseSample(t)
	misa, _ := f.CSR("misa")
	v, ok := misa.ResetValue(64)
	if !ok {
		t.Fatal("misa is all read-only, reset should compose")
	}
	want := uint64(2)<<62 | 5
	if v != want {
		t.Errorf("reset = %#x, want %#x", v, want)
	}

	// A writable field spoils the static reset.
	mcause, _ := f.CSR("mcause")
	if _, ok := mcause.ResetValue(64); ok {
		t.Error("mcause has a writable field, reset should be unknown")
	}
}

func TestParameters(t *testing.T) {
	f := parseSample(t)
	p, ok := f.Parameter("MXLEN")
	if !ok {
		t.Fatal("MXLEN should resolve")
	}
	v, known := p.Value()
	if !known || v.Uint64() != 64 {
		t.Errorf("MXLEN value = %v, %v", v, known)
	}
	if s := p.Schema(); s.Bits != 8 || len(s.Enum) != 2 {
		t.Errorf("MXLEN schema = %+v", s)
	}

	b, _ := f.Parameter("MISALIGNED_LDST")
	if v, known := b.Value(); !known || v.Kind() != value.Bool || !v.Bool() {
		t.Errorf("MISALIGNED_LDST = %v, %v", v, known)
	}

	open, _ := f.Parameter("OPEN")
	if _, known := open.Value(); known {
		t.Error("OPEN has no pinned value")
	}
	if !open.SchemaKnown() {
		t.Error("OPEN schema is declared")
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad base", "base: 48"},
		{"duplicate csr", "csrs: [{name: a}, {name: a}]"},
		{"reversed location", `
csrs:
  - name: a
    fields:
      - name: F
        location: {64: [3, 7]}
`},
		{"duplicate param", "params: [{name: p}, {name: p}]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.yaml)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
