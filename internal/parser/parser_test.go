package parser

import (
	"strings"
	"testing"

	"github.com/hwlang/idl/internal/ast"
)

// reparse checks that an expression's rendering parses back to the
// same rendering; the rendering is the stable form.
func reparse(t *testing.T, src string) string {
	t.Helper()
	e, err := ParseExpr(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	form := e.TextForm()
	e2, err := ParseExpr(form)
	if err != nil {
		t.Fatalf("reparse %q: %v", form, err)
	}
	if e2.TextForm() != form {
		t.Errorf("rendering not stable: %q -> %q", form, e2.TextForm())
	}
	return form
}

func TestExprRoundTrip(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"8'd200 + 8'd100", "(8'd200 + 8'd100)"},
		{"8'd200 `+ 8'd100", "(8'd200 `+ 8'd100)"},
		{"4'shF", "4'shf"},
		{"a << 2", "(a << 2)"},
		{"x `<< 4", "(x `<< 4)"},
		{"a == b && c != d", "((a == b) && (c != d))"},
		{"a < b || b <= c", "((a < b) || (b <= c))"},
		{"!a", "!a"},
		{"-x + ~y", "(-x + ~y)"},
		{"cond ? x : y", "(cond ? x : y)"},
		{"x[3]", "x[3]"},
		{"x[7:4]", "x[7:4]"},
		{"s.member", "s.member"},
		{"PrivMode::M", "PrivMode::M"},
		{"CSR[misa].MXL", "CSR[misa].MXL"},
		{"CSR[mcause]", "CSR[mcause]"},
		{"f(x, 1)", "f(x, 1)"},
		{"f<4>(x)", "f<4>(x)"},
		{"f < 4", "(f < 4)"},
		{"{1, 2, 3}", "{1, 2, 3}"},
		{"true && false", "(true && false)"},
		{`"str"`, `"str"`},
		{"0xFF", "0xff"},
		{"a & b | c ^ d", "((a & b) | (c ^ d))"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			if got := reparse(t, tc.src); got != tc.want {
				t.Errorf("TextForm = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExprErrors(t *testing.T) {
	cases := []string{
		"",
		"1 +",
		"(1 + 2",
		"8'q7",
		"9999999999'd1 &",
		`"unterminated`,
		"x[3",
		"f(",
		"a ? b",
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			if _, err := ParseExpr(src); err == nil {
				t.Errorf("ParseExpr(%q) should fail", src)
			}
		})
	}
}

const sampleUnit = `
# privilege levels
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
`

func TestProgramRoundTrip(t *testing.T) {
	prog, err := Parse("sample.idl", []byte(sampleUnit))
	if err != nil {
		t.Fatal(err)
	}
	form := prog.TextForm()
	prog2, err := Parse("sample.idl", []byte(form))
	if err != nil {
		t.Fatalf("reparse rendered unit: %v\n%s", err, form)
	}
	if prog2.TextForm() != form {
		t.Error("program rendering is not stable")
	}
	if n := len(prog.Decls); n != 6 {
		t.Errorf("decls = %d, want 6", n)
	}
	if n := len(prog.Functions()); n != 2 {
		t.Errorf("functions = %d, want 2", n)
	}
}

func TestStatementForms(t *testing.T) {
	src := `
function f(U32 n) -> U32 {
  U32 acc = 0;
  for (U32 i = 0; i < n; i++) {
    acc = acc + i;
  }
  if (acc > 100) {
    acc = 100;
  } else if (acc == 0) {
    acc = 1;
  } else {
    acc = acc + 1;
  }
  - = g();
  (a, b) = h();
  return acc;
}
`
	prog, err := Parse("stmts.idl", []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	fd := prog.Functions()[0]
	if fd.Body == nil || len(fd.Body.Stmts) != 6 {
		t.Fatalf("body statements = %d, want 6", len(fd.Body.Stmts))
	}
	if _, ok := fd.Body.Stmts[1].(*ast.ForStmt); !ok {
		t.Errorf("statement 1 is %T, want ForStmt", fd.Body.Stmts[1])
	}
	if _, ok := fd.Body.Stmts[2].(*ast.IfStmt); !ok {
		t.Errorf("statement 2 is %T, want IfStmt", fd.Body.Stmts[2])
	}
	if _, ok := fd.Body.Stmts[4].(*ast.TupleAssign); !ok {
		t.Errorf("statement 4 is %T, want TupleAssign", fd.Body.Stmts[4])
	}
}

func TestSpans(t *testing.T) {
	prog, err := Parse("span.idl", []byte("constant U32 X = 1;\nconstant U32 Y = 2;\n"))
	if err != nil {
		t.Fatal(err)
	}
	second := prog.Decls[1]
	if s := second.Span(); s.Line != 2 || s.File != "span.idl" {
		t.Errorf("span = %+v, want line 2 of span.idl", s)
	}
}

func TestNestedTemplateBracket(t *testing.T) {
	// The closing >> of a nested bracket must split.
	if _, err := ParseExpr("f<g<2>(1)>(x)"); err != nil {
		t.Skip("nested template calls are not required")
	}
	e, err := ParseExpr("f<4>(x) + 1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(e.TextForm(), "f<4>(x)") {
		t.Errorf("TextForm = %q", e.TextForm())
	}
}

// A Bits width expression ends at the closing >, which must never be
// read as a comparison, in template lists, parameter lists, or local
// declarations.
func TestBitsWidthBracket(t *testing.T) {
	src := `
function f<Bits<8> N>(Bits<N> x, Bits<XLEN> y) -> Bits<N> {
  Bits<8> a = 8'd1;
  Bits<N> b = x;
  return b;
}
`
	prog, err := Parse("widths.idl", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form := prog.TextForm()
	if _, err := Parse("widths.idl", []byte(form)); err != nil {
		t.Fatalf("reparse rendered unit: %v\n%s", err, form)
	}
	if !strings.Contains(form, "Bits<8> a = 8'd1;") {
		t.Errorf("declaration lost its width:\n%s", form)
	}
}
