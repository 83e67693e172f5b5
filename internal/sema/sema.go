// Package sema drives semantic analysis of IDL units: it prepares the
// global scope from the architecture metadata, checks a parsed
// program against it, and evaluates standalone expressions.
package sema

import (
	"fmt"
	"os"

	"github.com/hwlang/idl/internal/arch"
	"github.com/hwlang/idl/internal/ast"
	"github.com/hwlang/idl/internal/parser"
	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// Report is the outcome of checking one unit.
type Report struct {
	Program  *ast.Program
	Table    *symtab.Table
	Warnings []symtab.Warning
}

// Check parses and checks one unit against the configuration. Bodies
// of plain functions are checked even without a call site; templated
// bodies only have meaning per instantiation, so an uncalled template
// is checked as far as its signature.
func Check(file string, src []byte, a arch.Arch) (*Report, error) {
	prog, err := parser.Parse(file, src)
	if err != nil {
		return nil, err
	}
	t := NewGlobal(a)
	if err := prog.TypeCheck(t); err != nil {
		return nil, err
	}
	for _, fd := range prog.Functions() {
		if err := fd.ForceCheck(t); err != nil {
			return nil, err
		}
	}
	return &Report{Program: prog, Table: t, Warnings: t.Warnings()}, nil
}

// CheckFile is Check over a file on disk.
func CheckFile(path string, a arch.Arch) (*Report, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read unit: %w", err)
	}
	return Check(path, src, a)
}

// Result is the analysis of one standalone expression.
type Result struct {
	Type     *types.Type
	Value    *value.Value
	Unknown  string // why no single value, when Value is nil
	Possible []value.Value
}

// Eval type-checks and evaluates an expression under an existing
// global scope, typically one built by NewGlobal or carried in a
// Report.
func Eval(expr string, t *symtab.Table) (*Result, error) {
	e, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, err
	}
	if err := e.TypeCheck(t); err != nil {
		return nil, err
	}
	res := &Result{Type: e.Type(t)}
	v, err := e.Value(t)
	switch {
	case err == nil:
		res.Value = &v
	case value.IsUnknown(err):
		res.Unknown = err.Error()
		res.Possible = ast.PossibleValues(e, t)
	default:
		return nil, err
	}
	return res, nil
}
