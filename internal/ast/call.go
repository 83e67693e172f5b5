package ast

import (
	"strings"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// CallExpr is a function call, f(a) or f<W>(a), or an enum cast E(x).
// Calling is where deferred function checking happens: the callee's
// body is type-checked under a sandboxed clone of the global scope,
// once per distinct instantiation.
type CallExpr struct {
	node
	Name         string
	TemplateArgs []Rvalue
	Args         []Rvalue
}

func NewCallExpr(s Span, name string, templateArgs, args []Rvalue) *CallExpr {
	e := &CallExpr{node: at(s), Name: name, TemplateArgs: templateArgs, Args: args}
	for _, a := range templateArgs {
		e.adopt(e, a)
	}
	for _, a := range args {
		e.adopt(e, a)
	}
	return e
}

// enumTarget reports the Enum definition type when the callee name is
// an enum cast rather than a function.
func (e *CallExpr) enumTarget(t *symtab.Table) (*types.Type, bool) {
	v, ok := t.Get(e.Name)
	if !ok || v.Type == nil || v.Type.Kind() != types.Enum {
		return nil, false
	}
	return v.Type, true
}

func (e *CallExpr) TypeCheck(t *symtab.Table) error {
	for _, a := range e.TemplateArgs {
		if err := a.TypeCheck(t); err != nil {
			return err
		}
	}
	for _, a := range e.Args {
		if err := a.TypeCheck(t); err != nil {
			return err
		}
	}
	if enum, ok := e.enumTarget(t); ok {
		return e.checkEnumCast(t, enum)
	}
	fn, def, err := e.callee(t)
	if err != nil {
		return err
	}
	key, _, err := e.instantiation(t, def)
	if err != nil {
		return err
	}
	clone, err := e.instantiate(t, fn, def, key)
	if err != nil {
		return err
	}
	defer clone.Release()
	if len(e.Args) != len(def.Params) {
		return errf(e, "%s takes %d arguments, got %d", e.Name, len(def.Params), len(e.Args))
	}
	for i, a := range e.Args {
		if err := def.Params[i].Ref.TypeCheck(clone); err != nil {
			return err
		}
		want := def.Params[i].Ref.Resolve(clone)
		if !a.Type(t).ConvertableTo(want) {
			return errf(a, "argument %s of %s wants %s, got %s", def.Params[i].Name, e.Name, want, a.Type(t))
		}
	}
	if err := def.checkBody(clone, fn, key); err != nil {
		return err
	}
	ret, err := def.returnType(clone)
	if err != nil {
		return err
	}
	e.setType(t, ret)
	return nil
}

func (e *CallExpr) checkEnumCast(t *symtab.Table, enum *types.Type) error {
	if len(e.TemplateArgs) != 0 {
		return errf(e, "enum cast %s takes no template arguments", e.Name)
	}
	if len(e.Args) != 1 {
		return errf(e, "enum cast %s takes exactly one argument", e.Name)
	}
	at := e.Args[0].Type(t)
	if at.Kind() != types.Bits && at.Kind() != types.Bitfield {
		return errf(e.Args[0], "cannot cast %s to enum %s", at, e.Name)
	}
	e.setType(t, enum.RefOf())
	return nil
}

// callee resolves the function binding. Enum casts are handled before
// this is reached.
func (e *CallExpr) callee(t *symtab.Table) (*symtab.Func, *FunctionDef, error) {
	v, ok := t.Get(e.Name)
	if !ok {
		return nil, nil, errf(e, "%s is not defined", e.Name)
	}
	if v.Func == nil {
		return nil, nil, errf(e, "%s is not a function", e.Name)
	}
	def, ok := v.Func.Def.(*FunctionDef)
	if !ok {
		internalf(e, "function %s has no definition node", e.Name)
	}
	return v.Func, def, nil
}

// instantiation validates the template arguments and renders the
// instantiation key, e.g. "f<4>". Template arguments must have a
// compile-time value; a deferred-width check cannot proceed without
// them. A plain function instantiates as "f<>".
func (e *CallExpr) instantiation(t *symtab.Table, def *FunctionDef) (string, []value.Value, error) {
	if len(e.TemplateArgs) != len(def.Templates) {
		return "", nil, errf(e, "%s takes %d template arguments, got %d", e.Name, len(def.Templates), len(e.TemplateArgs))
	}
	vals := make([]value.Value, len(e.TemplateArgs))
	parts := make([]string, len(e.TemplateArgs))
	for i, a := range e.TemplateArgs {
		v, err := a.Value(t)
		if err != nil {
			if value.IsUnknown(err) {
				return "", nil, errf(a, "template argument %s must have a compile-time value", a.TextForm())
			}
			return "", nil, err
		}
		vals[i] = v
		parts[i] = v.String()
	}
	return e.Name + "<" + strings.Join(parts, ",") + ">", vals, nil
}

// instantiate clones the callee's defining scope, keys it by the
// instantiation, and binds the template parameters. The caller must
// Release the clone.
func (e *CallExpr) instantiate(t *symtab.Table, fn *symtab.Func, def *FunctionDef, key string) (*symtab.Table, error) {
	_, vals, err := e.instantiation(t, def)
	if err != nil {
		return nil, err
	}
	clone := fn.Scope.GlobalClone()
	clone.SetScopeKey(key)
	if err := def.bindTemplates(clone, vals); err != nil {
		clone.Release()
		return nil, err
	}
	return clone, nil
}

func (e *CallExpr) Type(t *symtab.Table) *types.Type { return e.mustType(e, t) }

func (e *CallExpr) Value(t *symtab.Table) (value.Value, error) {
	if enum, ok := e.enumTarget(t); ok {
		return e.enumCastValue(t, enum)
	}
	fn, def, err := e.callee(t)
	if err != nil {
		return value.Value{}, err
	}
	argVals := make([]*value.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := a.Value(t)
		if err != nil {
			if !value.IsUnknown(err) {
				return value.Value{}, err
			}
			continue
		}
		argVals[i] = &v
	}
	if fn.Eval != nil {
		return e.evalBuiltin(fn, argVals)
	}
	if def.Body == nil {
		return value.Value{}, unknownf(e, "%s has no compile-time evaluation", e.Name)
	}
	key, _, err := e.instantiation(t, def)
	if err != nil {
		return value.Value{}, err
	}
	clone, err := e.instantiate(t, fn, def, key)
	if err != nil {
		return value.Value{}, err
	}
	defer clone.Release()
	clone.Push("call " + key)
	defer clone.Pop()
	for i, p := range def.Params {
		if err := p.Ref.TypeCheck(clone); err != nil {
			return value.Value{}, err
		}
		pv := &symtab.Var{Name: p.Name, Type: p.Ref.Resolve(clone)}
		if argVals[i] != nil {
			av := *argVals[i]
			if w := pv.Type.Width(); w != types.WidthUnknown && pv.Type.Kind() == types.Bits {
				av, _ = av.Truncate(w)
			}
			pv.SetValue(av)
		}
		if err := clone.Add(p.Name, pv); err != nil {
			return value.Value{}, errf(e, "%s", err)
		}
	}
	err = def.Body.Execute(clone)
	if ret, ok := err.(*returnSignal); ok {
		if !ret.known {
			return value.Value{}, unknownf(e, "%s", ret.cause.Error())
		}
		return ret.val, nil
	}
	if err != nil {
		return value.Value{}, err
	}
	// Fell off the end of the body: a void result.
	return value.Value{}, unknownf(e, "%s returns no value", e.Name)
}

func (e *CallExpr) evalBuiltin(fn *symtab.Func, argVals []*value.Value) (value.Value, error) {
	args := make([]value.Value, len(argVals))
	for i, v := range argVals {
		if v == nil {
			return value.Value{}, unknownf(e, "argument %s has no compile-time value", e.Args[i].TextForm())
		}
		args[i] = *v
	}
	v, err := fn.Eval(args)
	if err != nil {
		if value.IsUnknown(err) {
			return value.Value{}, err
		}
		return value.Value{}, errf(e, "%s", err)
	}
	return v, nil
}

func (e *CallExpr) enumCastValue(t *symtab.Table, enum *types.Type) (value.Value, error) {
	av, err := e.Args[0].Value(t)
	if err != nil {
		return value.Value{}, err
	}
	if !av.Int().IsInt64() {
		return value.Value{}, errf(e, "no element of %s has value %s", e.Name, av)
	}
	n := av.Int().Int64()
	for i, name := range enum.EnumElems() {
		if enum.EnumValues()[i] == n {
			return value.NewEnumElem(enum.EnumName(), name, n, enum.Width()), nil
		}
	}
	return value.Value{}, errf(e, "no element of %s has value %d", e.Name, n)
}

func (e *CallExpr) TextForm() string {
	var sb strings.Builder
	sb.WriteString(e.Name)
	if len(e.TemplateArgs) > 0 {
		parts := make([]string, len(e.TemplateArgs))
		for i, a := range e.TemplateArgs {
			parts[i] = a.TextForm()
		}
		sb.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.TextForm()
	}
	sb.WriteString("(" + strings.Join(parts, ", ") + ")")
	return sb.String()
}
