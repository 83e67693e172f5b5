package sema_test

import (
	"strings"
	"testing"

	"github.com/hwlang/idl/internal/sema"
	"github.com/hwlang/idl/internal/testutil"
)

const unit = `
enum PrivMode {
  U 0
  S 1
  M 3
}

bitfield (64) Mstatus {
  SD 63
  MPP 12-11
}

struct Pair {
  U32 lo;
  U32 hi;
}

constant U32 WORD = 32;

function clamp(U32 v, U32 max) -> U32 {
  if (v > max) {
    return max;
  }
  return v;
}

function widen<Bits<8> N>(Bits<N> x) -> Bits<N> {
  return x + 1;
}

function sum() -> U32 {
  U32 acc = 0;
  for (U32 i = 0; i < 5; i++) {
    acc = acc + i;
  }
  return acc;
}
`

func checkUnit(t *testing.T) *sema.Report {
	t.Helper()
	rep, err := sema.Check("unit.idl", []byte(unit), testutil.Arch(t))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	return rep
}

func TestCheckUnit(t *testing.T) {
	rep := checkUnit(t)
	if n := len(rep.Warnings); n != 0 {
		t.Errorf("got %d warnings, want 0: %v", n, rep.Warnings)
	}
	if n := len(rep.Program.Functions()); n != 3 {
		t.Errorf("functions = %d, want 3", n)
	}
	for _, name := range []string{"PrivMode", "Mstatus", "Pair", "WORD"} {
		if _, ok := rep.Table.Get(name); !ok {
			t.Errorf("%s missing from the global scope", name)
		}
	}
}

func TestEvalInUnitScope(t *testing.T) {
	rep := checkUnit(t)
	tests := []struct {
		expr string
		want string
	}{
		{"WORD", "32'd32"},
		{"WORD + 32'd8", "32'd40"},
		{"PrivMode::M", "PrivMode::M"},
		{"PrivMode(4'd3)", "PrivMode::M"},
		{"clamp(32'd7, 32'd5)", "32'd5"},
		{"clamp(32'd3, 32'd5)", "32'd3"},
		{"sum()", "32'd10"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.expr, func(t *testing.T) {
			res, err := sema.Eval(tc.expr, rep.Table)
			if err != nil {
				t.Fatalf("Eval(%q): %v", tc.expr, err)
			}
			if res.Value == nil {
				t.Fatalf("Eval(%q) = unknown (%s), want %s", tc.expr, res.Unknown, tc.want)
			}
			if got := res.Value.String(); got != tc.want {
				t.Errorf("Eval(%q) = %s, want %s", tc.expr, got, tc.want)
			}
		})
	}
}

// Two instantiations of the same template must not see each other's
// bindings: the body runs under its own scope key per argument set.
func TestTemplateInstantiationIsolation(t *testing.T) {
	rep := checkUnit(t)
	for _, tc := range []struct{ expr, want string }{
		{"widen<8'd4>(4'd3)", "4'd4"},
		{"widen<8'd8>(8'd200)", "8'd201"},
		{"widen<8'd4>(4'd9)", "4'd10"},
	} {
		res, err := sema.Eval(tc.expr, rep.Table)
		if err != nil {
			t.Fatalf("Eval(%q): %v", tc.expr, err)
		}
		if res.Value == nil || res.Value.String() != tc.want {
			t.Errorf("Eval(%q) = %v, want %s", tc.expr, res.Value, tc.want)
		}
	}
}

func TestTemplateArgMustBeKnown(t *testing.T) {
	rep := checkUnit(t)
	_, err := sema.Eval("widen<CACHE_BLOCK_SIZE>(4'd1)", rep.Table)
	if err == nil {
		t.Fatal("expected error for an open template argument")
	}
	if !strings.Contains(err.Error(), "compile-time") {
		t.Errorf("error = %v, want compile-time-value complaint", err)
	}
}

func TestBodyErrorSurfaces(t *testing.T) {
	src := `
function bad() -> U32 {
  return true;
}
`
	_, err := sema.Check("bad.idl", []byte(src), testutil.Arch(t))
	if err == nil {
		t.Fatal("expected a body type error")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error = %v, want it to name the function", err)
	}
}

// A templated body only has meaning once instantiated, so checking the
// unit alone must pass and the defect surfaces at the call.
func TestTemplateBodyDeferred(t *testing.T) {
	src := `
function broken<Bits<8> N>() -> Bits<N> {
  return true;
}
`
	rep, err := sema.Check("broken.idl", []byte(src), testutil.Arch(t))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if _, err := sema.Eval("broken<8'd4>()", rep.Table); err == nil {
		t.Fatal("expected the instantiation to fail")
	}
}

func TestBodyTruncationWarning(t *testing.T) {
	src := `
function f() -> U32 {
  Bits<8> x = 8'd200 + 8'd100;
  return 32'd0;
}
`
	rep, err := sema.Check("f.idl", []byte(src), testutil.Arch(t))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(rep.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(rep.Warnings), rep.Warnings)
	}
	if !strings.Contains(rep.Warnings[0].Msg, "truncated") {
		t.Errorf("warning = %q, want truncation notice", rep.Warnings[0].Msg)
	}
}

func TestCheckParseError(t *testing.T) {
	_, err := sema.Check("oops.idl", []byte("function {"), testutil.Arch(t))
	if err == nil {
		t.Fatal("expected a parse error")
	}
}

// A return inside a branch the condition cannot decide makes the
// call's result unknown, never a definite value from a later return.
func TestUndecidedBranchReturn(t *testing.T) {
	src := `
function pick(U32 v) -> U32 {
  if (v > 32'd5) {
    return 32'd1;
  }
  return 32'd0;
}

function count(U32 n) -> U32 {
  for (U32 i = 0; i < n; i++) {
    if (i == 32'd3) {
      return i;
    }
  }
  return 32'd0;
}
`
	rep, err := sema.Check("pick.idl", []byte(src), testutil.Arch(t))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	for _, expr := range []string{"pick(CACHE_BLOCK_SIZE)", "count(CACHE_BLOCK_SIZE)"} {
		res, err := sema.Eval(expr, rep.Table)
		if err != nil {
			t.Fatalf("Eval(%q): %v", expr, err)
		}
		if res.Value != nil {
			t.Errorf("Eval(%q) = %s, want unknown", expr, res.Value)
		}
	}

	res, err := sema.Eval("pick(32'd9)", rep.Table)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if res.Value == nil || res.Value.String() != "32'd1" {
		t.Errorf("pick(32'd9) = %v, want 32'd1", res.Value)
	}
}
