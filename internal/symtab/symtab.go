// Package symtab implements the scoped symbol table the checker and
// evaluator walk against. A table is an ordered stack of levels; level
// 1 is global and holds every declaration. Pushes and pops must stay
// balanced on all paths, and sandboxed evaluation (function bodies,
// template instantiations) runs against an independent clone of the
// global level so it can never mutate the caller's scope.
package symtab

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hwlang/idl/internal/arch"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// Var is one name binding: a type, and optionally a value known at
// analysis time. A variable without a known value still has a type. A
// binding may instead carry a finite set of possible values (e.g. a
// parameter whose schema enumerates its candidates).
type Var struct {
	Name     string
	Type     *types.Type
	Value    *value.Value
	Possible []value.Value
	Func     *Func
}

// Known reports whether the binding has a single compile-time value.
func (v *Var) Known() bool { return v.Value != nil }

// SetValue binds a known value.
func (v *Var) SetValue(val value.Value) {
	v.Value = &val
}

// ClearValue forces the binding into the unknown state, e.g. after a
// write whose right-hand side has no compile-time value.
func (v *Var) ClearValue() {
	v.Value = nil
	v.Possible = nil
}

func (v *Var) clone() *Var {
	c := *v
	if v.Value != nil {
		vv := *v.Value
		c.Value = &vv
	}
	c.Possible = append([]value.Value(nil), v.Possible...)
	return &c
}

// FuncDef is the slice of an AST function definition the table needs
// to carry; the resolver type-asserts back to the concrete node.
type FuncDef interface {
	FuncName() string
}

// Func binds a function name to its type, its defining AST node, and
// the global scope it was declared in. Builtin and generated functions
// have no body; Eval supplies their compile-time behavior.
type Func struct {
	Type  *types.Type
	Def   FuncDef
	Scope *Table
	Eval  func(args []value.Value) (value.Value, error)

	// Checked records instantiations (function name plus rendered
	// template arguments) whose bodies have been type-checked. Body
	// checking is deferred to first call and done once per distinct
	// instantiation.
	Checked map[string]bool
}

// MarkChecked records that the given instantiation's body passed.
func (f *Func) MarkChecked(key string) {
	if f.Checked == nil {
		f.Checked = make(map[string]bool)
	}
	f.Checked[key] = true
}

// IsChecked reports whether the instantiation's body already passed.
func (f *Func) IsChecked(key string) bool { return f.Checked[key] }

// Warning is a non-fatal diagnostic (e.g. arithmetic truncation)
// attached to the rendering of the offending source.
type Warning struct {
	Src string
	Msg string
}

func (w Warning) String() string { return w.Src + ": " + w.Msg }

type level struct {
	owner string
	names []string
	vars  map[string]*Var
}

// Table is the scope stack for one compilation unit or one sandboxed
// evaluation. The zero value is not usable; call New.
type Table struct {
	id       string
	scopeKey string
	levels   []*level
	released bool

	// Arch is the architecture boundary the unit is checked against.
	// Set while preparing the global scope; shared by clones.
	Arch arch.Arch

	// warnings is shared with every clone of this table so that
	// diagnostics produced inside sandboxed evaluation still reach
	// the unit's report.
	warnings *[]Warning
}

// New returns an empty table holding only the global level.
func New(owner string) *Table {
	var warnings []Warning
	id := uuid.NewString()
	return &Table{
		id:       id,
		scopeKey: id,
		levels:   []*level{newLevel(owner)},
		warnings: &warnings,
	}
}

func newLevel(owner string) *level {
	return &level{owner: owner, vars: make(map[string]*Var)}
}

// ID is the stable identity of this table instance, assigned at
// construction and again at clone time.
func (t *Table) ID() string { return t.id }

// ScopeKey keys caches of derived artifacts (computed node types,
// resolved function types). It defaults to the table's own identity,
// so entries can never leak across unrelated clones; the resolver
// overrides it on an instantiation clone with the instantiation key,
// letting repeat calls of the same instantiation reuse its artifacts.
func (t *Table) ScopeKey() string { return t.scopeKey }

// SetScopeKey overrides the cache key; see ScopeKey.
func (t *Table) SetScopeKey(k string) { t.scopeKey = k }

// Levels is the current stack depth; 1 means only the global level.
func (t *Table) Levels() int { return len(t.levels) }

// Push enters a nested scope. Every Push must be matched by a Pop on
// all exit paths before control returns to the caller.
func (t *Table) Push(owner string) {
	t.checkLive()
	t.levels = append(t.levels, newLevel(owner))
}

// Pop discards the innermost scope. Popping the global level is a
// defect in the core, not a user error.
func (t *Table) Pop() {
	t.checkLive()
	if len(t.levels) == 1 {
		panic("symtab: pop of global level")
	}
	t.levels = t.levels[:len(t.levels)-1]
}

// Add inserts a binding in the current scope. It fails if the name is
// already bound anywhere in the stack: IDL does not permit shadowing,
// so a rebind in any enclosing scope would be ambiguous.
func (t *Table) Add(name string, v *Var) error {
	t.checkLive()
	if _, ok := t.Get(name); ok {
		return fmt.Errorf("%s already defined", name)
	}
	t.levels[len(t.levels)-1].put(name, v)
	return nil
}

// AddGlobal inserts or replaces a binding at the global level,
// bypassing the current-scope restriction. Used for globals built
// while preparing a unit's scope.
func (t *Table) AddGlobal(name string, v *Var) {
	t.checkLive()
	t.levels[0].put(name, v)
}

func (l *level) put(name string, v *Var) {
	if _, ok := l.vars[name]; !ok {
		l.names = append(l.names, name)
	}
	l.vars[name] = v
}

// Get looks the name up from the innermost level outward.
func (t *Table) Get(name string) (*Var, bool) {
	t.checkLive()
	for i := len(t.levels) - 1; i >= 0; i-- {
		if v, ok := t.levels[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// GlobalNames returns the globally-declared names in insertion order.
func (t *Table) GlobalNames() []string {
	return append([]string(nil), t.levels[0].names...)
}

// GlobalClone duplicates the global level only, under a fresh table
// identity with an empty body-check cache. The clone shares the
// warning sink so diagnostics still surface, but no binding added or
// updated in the clone is visible to the original. Each clone must be
// ended with Release.
func (t *Table) GlobalClone() *Table {
	t.checkLive()
	g := newLevel(t.levels[0].owner)
	for _, name := range t.levels[0].names {
		g.put(name, t.levels[0].vars[name].clone())
	}
	id := uuid.NewString()
	return &Table{
		id:       id,
		scopeKey: id,
		levels:   []*level{g},
		Arch:     t.Arch,
		warnings: t.warnings,
	}
}

// Release ends a clone's lifetime. The clone must be back at the
// global level; an unbalanced push is a defect in the core.
func (t *Table) Release() {
	t.checkLive()
	if len(t.levels) != 1 {
		panic(fmt.Sprintf("symtab: release at level %d", len(t.levels)))
	}
	t.released = true
}

// Warn records a non-fatal diagnostic for the unit.
func (t *Table) Warn(src, msg string) {
	*t.warnings = append(*t.warnings, Warning{Src: src, Msg: msg})
}

// Warnings returns the diagnostics accumulated so far, including those
// produced inside clones.
func (t *Table) Warnings() []Warning { return *t.warnings }

func (t *Table) checkLive() {
	if t.released {
		panic("symtab: use of released table")
	}
}
