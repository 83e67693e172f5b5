package sema

import (
	"math/big"

	"github.com/hwlang/idl/internal/arch"
	"github.com/hwlang/idl/internal/ast"
	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// NewGlobal builds the global scope a unit is checked against: the
// base width, every configuration parameter, and the builtin
// functions. Parameters the configuration does not pin stay unknown,
// carrying their schema's candidate set where one exists.
func NewGlobal(a arch.Arch) *symtab.Table {
	t := symtab.New("global")
	t.Arch = a
	bindBase(t, a)
	for _, p := range a.Parameters() {
		bindParameter(t, p)
	}
	bindBuiltins(t, a)
	return t
}

// bindBase installs XLEN. A configuration that has not pinned its
// base width reports 0; XLEN is then unknown with candidates 32, 64.
func bindBase(t *symtab.Table, a arch.Arch) {
	v := &symtab.Var{
		Name: "XLEN",
		Type: types.BitsType(8).MakeConst().MakeGlobal(),
	}
	if base := a.Base(); base != 0 {
		v.Type = v.Type.Clone().MakeKnown()
		v.SetValue(value.NewUint(uint64(base), 8))
	} else {
		v.Possible = []value.Value{value.NewUint(32, 8), value.NewUint(64, 8)}
	}
	t.AddGlobal("XLEN", v)
}

func bindParameter(t *symtab.Table, p arch.Parameter) {
	v := &symtab.Var{Name: p.Name(), Type: parameterType(p)}
	if pv, ok := p.Value(); ok {
		v.Type = v.Type.Clone().MakeKnown()
		v.SetValue(pv)
	} else if enum := p.Schema().Enum; len(enum) > 0 {
		w := v.Type.Width()
		for _, e := range enum {
			v.Possible = append(v.Possible, value.NewInt(e, w))
		}
	}
	t.AddGlobal(p.Name(), v)
}

// parameterType maps a parameter schema onto a type. An ambiguous
// schema yields an unknown-width bit vector so every dependent check
// is deferred.
func parameterType(p arch.Parameter) *types.Type {
	if !p.SchemaKnown() {
		return types.BitsType(types.WidthUnknown).MakeConst().MakeGlobal()
	}
	s := p.Schema()
	switch s.Type {
	case "boolean":
		return types.BoolType().MakeConst().MakeGlobal()
	case "string":
		return types.StringType().MakeConst().MakeGlobal()
	}
	w := s.Bits
	if w == 0 {
		if pv, ok := p.Value(); ok {
			w = pv.MinWidth()
		} else if len(s.Enum) > 0 {
			w = enumWidth(s.Enum)
		} else {
			w = types.WidthUnknown
		}
	}
	return types.BitsType(w).MakeConst().MakeGlobal()
}

func enumWidth(vals []int64) int {
	var max int64
	for _, v := range vals {
		if v > max {
			max = v
		}
	}
	return value.NewInt(max, value.WidthUnknown).MinWidth()
}

// builtinSpan marks nodes synthesized here rather than parsed.
var builtinSpan = ast.Span{File: "builtin", Line: 1, Col: 1}

// bindBuiltins registers the functions the language provides without
// an IDL body. Each is a definition node with no body plus an Eval
// hook on its table entry.
func bindBuiltins(t *symtab.Table, a arch.Arch) {
	reg := func(def *ast.FunctionDef, eval func(args []value.Value) (value.Value, error)) {
		ast.Freeze(def)
		if err := def.AddSymbol(t); err != nil {
			return
		}
		v, _ := t.Get(def.Name)
		v.Func.Eval = eval
	}

	reg(builtinDef("xlen", nil, bitsRef(8)),
		func([]value.Value) (value.Value, error) {
			if base := a.Base(); base != 0 {
				return value.NewUint(uint64(base), 8), nil
			}
			return value.Value{}, value.Unknownf("xlen()", "base width is not pinned by the configuration")
		})

	reg(builtinDef("implemented?", []ast.Param{param("name", strRef())}, boolRef()),
		func(args []value.Value) (value.Value, error) {
			p, ok := a.Parameter(args[0].Text())
			if !ok {
				return value.Value{}, value.Unknownf("implemented?", "extension is not described by the configuration")
			}
			if pv, known := p.Value(); known && pv.Kind() == value.Bool {
				return pv, nil
			}
			return value.Value{}, value.Unknownf("implemented?", "configuration leaves the extension open")
		})

	reg(builtinDef("highest_set_bit", []ast.Param{param("v", bitsRef(66))}, bitsRef(8)),
		func(args []value.Value) (value.Value, error) {
			n := args[0].Int()
			if n.Sign() == 0 {
				return value.NewInt(-1, 8), nil
			}
			return value.NewUint(uint64(n.BitLen()-1), 8), nil
		})

	reg(builtinDef("lowest_set_bit", []ast.Param{param("v", bitsRef(66))}, bitsRef(8)),
		func(args []value.Value) (value.Value, error) {
			n := args[0].Int()
			if n.Sign() == 0 {
				return value.NewUint(66, 8), nil
			}
			for i := 0; ; i++ {
				if n.Bit(i) == 1 {
					return value.NewUint(uint64(i), 8), nil
				}
			}
		})

	reg(builtinDef("pow", []ast.Param{param("base", bitsRef(32)), param("exp", bitsRef(32))}, bitsRef(128)),
		func(args []value.Value) (value.Value, error) {
			r := new(big.Int).Exp(args[0].Int(), args[1].Int(), nil)
			return value.NewBits(r, 128, false), nil
		})
}

func builtinDef(name string, params []ast.Param, ret *ast.TypeRef) *ast.FunctionDef {
	d := ast.NewFunctionDef(builtinSpan, name, nil, params, []*ast.TypeRef{ret}, nil)
	d.Builtin = true
	return d
}

func param(name string, ref *ast.TypeRef) ast.Param {
	return ast.Param{Name: name, Ref: ref}
}

func bitsRef(w int) *ast.TypeRef {
	width := ast.NewIntLit(builtinSpan, big.NewInt(int64(w)), false)
	return ast.NewTypeRef(builtinSpan, "Bits", width, nil)
}

func boolRef() *ast.TypeRef { return ast.NewTypeRef(builtinSpan, "Boolean", nil, nil) }
func strRef() *ast.TypeRef  { return ast.NewTypeRef(builtinSpan, "String", nil, nil) }
