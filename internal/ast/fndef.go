package ast

import (
	"strings"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// Param is one declared parameter, ordinary or template.
type Param struct {
	Name string
	Ref  *TypeRef
}

// FunctionDef declares a function. Bodies are not checked here: the
// body of a function is only meaningful once template parameters are
// bound, so checking happens lazily per instantiation at the first
// call site. Builtin functions have no body and evaluate through the
// symbol table's Eval hook.
type FunctionDef struct {
	node
	Name      string
	Templates []Param
	Params    []Param
	Rets      []*TypeRef
	Body      *Block
	Builtin   bool
}

func NewFunctionDef(s Span, name string, templates, params []Param, rets []*TypeRef, body *Block) *FunctionDef {
	d := &FunctionDef{node: at(s), Name: name, Templates: templates, Params: params, Rets: rets, Body: body}
	for _, p := range templates {
		d.adopt(d, p.Ref)
	}
	for _, p := range params {
		d.adopt(d, p.Ref)
	}
	for _, r := range rets {
		d.adopt(d, r)
	}
	d.adopt(d, body)
	return d
}

// FuncName satisfies symtab.FuncDef.
func (d *FunctionDef) FuncName() string { return d.Name }

// Templated reports whether calls must supply template arguments.
func (d *FunctionDef) Templated() bool { return len(d.Templates) > 0 }

// TypeCheck only validates the surface of the declaration. Parameter
// and return types can reference template parameters, so they resolve
// per instantiation, not here.
func (d *FunctionDef) TypeCheck(t *symtab.Table) error {
	seen := map[string]bool{}
	for _, p := range append(append([]Param(nil), d.Templates...), d.Params...) {
		if seen[p.Name] {
			return errf(d, "duplicate parameter %s in %s", p.Name, d.Name)
		}
		seen[p.Name] = true
	}
	if d.Body == nil && !d.Builtin {
		return errf(d, "function %s has no body", d.Name)
	}
	d.setType(t, d.signatureType())
	return nil
}

func (d *FunctionDef) signatureType() *types.Type {
	if d.Templated() {
		names := make([]string, len(d.Templates))
		for i, p := range d.Templates {
			names[i] = p.Name
		}
		return types.TemplateFunctionType(d.Name, names, nil, nil, nil, nil)
	}
	return types.FunctionType(d.Name, nil, nil, nil)
}

// AddSymbol registers the function in the global scope. The signature
// type carries only the shape; the resolver fills in concrete
// parameter and return types per instantiation.
func (d *FunctionDef) AddSymbol(t *symtab.Table) error {
	sig := d.signatureType()
	d.setType(t, sig)
	fn := &symtab.Func{Type: sig, Def: d, Scope: t}
	return t.Add(d.Name, &symtab.Var{Name: d.Name, Type: sig, Func: fn})
}

// ForceCheck type-checks the body of a plain function without waiting
// for a call site. Templated functions cannot be checked this way;
// their bodies only make sense under bound template parameters.
func (d *FunctionDef) ForceCheck(t *symtab.Table) error {
	if d.Templated() || d.Body == nil {
		return nil
	}
	v, ok := t.Get(d.Name)
	if !ok || v.Func == nil {
		internalf(d, "function %s checked before registration", d.Name)
	}
	clone := v.Func.Scope.GlobalClone()
	defer clone.Release()
	key := d.Name + "<>"
	clone.SetScopeKey(key)
	return d.checkBody(clone, v.Func, key)
}

// bindTemplates installs the template parameter bindings into the
// global level of an instantiation clone. Template parameters are
// const and known by construction.
func (d *FunctionDef) bindTemplates(clone *symtab.Table, args []value.Value) error {
	for i, p := range d.Templates {
		if err := p.Ref.TypeCheck(clone); err != nil {
			return err
		}
		typ := p.Ref.Resolve(clone).Clone().MakeConst().MakeKnown().MakeTemplateVar()
		v := &symtab.Var{Name: p.Name, Type: typ}
		v.SetValue(args[i])
		clone.AddGlobal(p.Name, v)
	}
	return nil
}

// checkBody type-checks the body under an instantiation clone, once
// per instantiation key. The clone must be at the global level; the
// body is always checked at exactly one level below it.
func (d *FunctionDef) checkBody(clone *symtab.Table, fn *symtab.Func, key string) error {
	if fn.IsChecked(key) || d.Body == nil {
		return nil
	}
	if clone.Levels() != 1 {
		internalf(d, "body check of %s entered below the global level", d.Name)
	}
	clone.Push("fn " + key)
	defer clone.Pop()
	for _, p := range d.Params {
		if err := p.Ref.TypeCheck(clone); err != nil {
			return err
		}
		argType := p.Ref.Resolve(clone)
		if err := clone.Add(p.Name, &symtab.Var{Name: p.Name, Type: argType}); err != nil {
			return errf(d, "%s", err)
		}
	}
	// Marked before descending so a recursive call inside the body
	// does not re-enter the check for the same instantiation.
	fn.MarkChecked(key)
	if err := d.Body.TypeCheck(clone); err != nil {
		return err
	}
	return d.checkReturns(clone)
}

// checkReturns validates every reachable return against the declared
// return types.
func (d *FunctionDef) checkReturns(clone *symtab.Table) error {
	declared, err := d.returnType(clone)
	if err != nil {
		return err
	}
	got := d.Body.ReturnTypes(clone)
	if declared.Kind() == types.Void {
		for _, g := range got {
			if g.Kind() != types.Void {
				return errf(d, "function %s returns a value but declares none", d.Name)
			}
		}
		return nil
	}
	if len(got) == 0 {
		return errf(d, "function %s declares %s but never returns", d.Name, declared)
	}
	for _, g := range got {
		if !g.ConvertableTo(declared) {
			return errf(d, "function %s returns %s, want %s", d.Name, g, declared)
		}
	}
	return nil
}

// returnType resolves the declared return type under the clone: void,
// a single type, or a tuple.
func (d *FunctionDef) returnType(clone *symtab.Table) (*types.Type, error) {
	switch len(d.Rets) {
	case 0:
		return types.VoidType(), nil
	case 1:
		if err := d.Rets[0].TypeCheck(clone); err != nil {
			return nil, err
		}
		return d.Rets[0].Resolve(clone), nil
	default:
		elems := make([]*types.Type, len(d.Rets))
		for i, r := range d.Rets {
			if err := r.TypeCheck(clone); err != nil {
				return nil, err
			}
			elems[i] = r.Resolve(clone)
		}
		return types.TupleType(elems), nil
	}
}

func (d *FunctionDef) TextForm() string {
	var sb strings.Builder
	sb.WriteString("function " + d.Name)
	if d.Templated() {
		parts := make([]string, len(d.Templates))
		for i, p := range d.Templates {
			parts[i] = p.Ref.TextForm() + " " + p.Name
		}
		sb.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.Ref.TextForm() + " " + p.Name
	}
	sb.WriteString("(" + strings.Join(parts, ", ") + ")")
	if len(d.Rets) > 0 {
		rets := make([]string, len(d.Rets))
		for i, r := range d.Rets {
			rets[i] = r.TextForm()
		}
		sb.WriteString(" -> " + strings.Join(rets, ", "))
	}
	if d.Body == nil {
		return sb.String() + ";"
	}
	sb.WriteString(" {\n" + d.Body.TextForm() + "}")
	return sb.String()
}
