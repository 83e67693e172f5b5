package ast_test

import (
	"strings"
	"testing"

	"github.com/hwlang/idl/internal/sema"
	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/testutil"
)

func global(t *testing.T) *symtab.Table {
	t.Helper()
	return sema.NewGlobal(testutil.Arch(t))
}

func TestEvalValues(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"8'd200 + 8'd100", "8'd44"},
		{"8'd200 `+ 8'd100", "9'd300"},
		{"4'd10 - 4'd3", "4'd7"},
		{"8'd20 `* 8'd10", "16'd200"},
		{"8'd1 << 3'd3", "8'd8"},
		{"8'd1 `<< 4", "12'd16"},
		{"8'd7 & 8'd12", "8'd4"},
		{"8'd7 | 8'd12", "8'd15"},
		{"8'd7 ^ 8'd12", "8'd11"},
		{"16'd100 / 16'd7", "16'd14"},
		{"16'd100 % 16'd7", "16'd2"},

		// Only the reachable operand matters once the condition folds.
		{"true ? 4'd5 : bogus", "4'd5"},
		{"false ? bogus : 4'd6", "4'd6"},
		{"false && bogus", "false"},
		{"true || bogus", "true"},

		{"XLEN", "8'd64"},
		{"xlen()", "8'd64"},
		{"MXLEN", "8'd64"},
		{"MISALIGNED_LDST", "true"},
		{"VENDOR", `"acme"`},
		{`implemented?("MISALIGNED_LDST")`, "true"},

		{"highest_set_bit(8'd40)", "8'd5"},
		{"lowest_set_bit(8'd40)", "8'd3"},
		{"pow(32'd2, 32'd10)", "128'd1024"},

		{"CSR[misa].MXL", "2'd2"},
		{"CSR[misa].Extensions", "26'd0"},
		{"CSR[misa]", "64'd9223372036854775808"},

		// Every candidate in the set agrees, so the comparison folds.
		{"CACHE_BLOCK_SIZE < 16'd256", "true"},
		{"CACHE_BLOCK_SIZE == 16'd48", "false"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.expr, func(t *testing.T) {
			res, err := sema.Eval(tc.expr, global(t))
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

func TestEvalUnknown(t *testing.T) {
	tests := []struct {
		expr         string
		wantPossible int
	}{
		{"CACHE_BLOCK_SIZE", 3},
		{"CACHE_BLOCK_SIZE `+ 16'd1", 3},
		{"CACHE_BLOCK_SIZE == 16'd64", 0},
		{"CSR[mcause].CODE", 0},
		{"CSR[mcause]", 0},
		{"CSR[mtval]", 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.expr, func(t *testing.T) {
			res, err := sema.Eval(tc.expr, global(t))
			if err != nil {
				t.Fatalf("Eval(%q): %v", tc.expr, err)
			}
			if res.Value != nil {
				t.Fatalf("Eval(%q) = %s, want unknown", tc.expr, res.Value)
			}
			if res.Unknown == "" {
				t.Errorf("Eval(%q): missing unknown cause", tc.expr)
			}
			if len(res.Possible) != tc.wantPossible {
				t.Errorf("Eval(%q): %d candidates, want %d", tc.expr, len(res.Possible), tc.wantPossible)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		expr string
		msg  string
	}{
		{"8'd1 / 8'd0", "division by zero"},
		{"8'd1 % 8'd0", "modulo by zero"},
		{"bogus + 8'd1", "bogus"},
		{"true + 8'd1", "bit vector"},
		{"8'd1 && true", "Boolean"},
		{"CSR[nosuch]", "not defined"},
		{"CSR[misa].NOSUCH", "no field"},
		{"CACHE_BLOCK_SIZE `<< CACHE_BLOCK_SIZE", "compile-time-known"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.expr, func(t *testing.T) {
			_, err := sema.Eval(tc.expr, global(t))
			if err == nil {
				t.Fatalf("Eval(%q): expected error", tc.expr)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("Eval(%q) = %v, want message containing %q", tc.expr, err, tc.msg)
			}
		})
	}
}

func TestTruncationWarning(t *testing.T) {
	tab := global(t)
	if _, err := sema.Eval("8'd200 + 8'd100", tab); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	ws := tab.Warnings()
	if len(ws) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(ws), ws)
	}
	if !strings.Contains(ws[0].Msg, "truncated") {
		t.Errorf("warning = %q, want truncation notice", ws[0].Msg)
	}

	tab = global(t)
	if _, err := sema.Eval("8'd200 `+ 8'd100", tab); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if ws := tab.Warnings(); len(ws) != 0 {
		t.Errorf("widening add warned: %v", ws)
	}
}
