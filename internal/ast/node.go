// Package ast is the finalized syntax tree of an IDL unit and the
// semantic heart of the repository: every node knows how to type-check
// itself, how to report its compile-time value (or that it has none),
// and how to re-render itself as IDL source. Trees are built bottom-up
// by the front end, then frozen; after Freeze no child is ever added
// and no parent link changes.
package ast

import (
	"fmt"
	"reflect"

	"github.com/hwlang/idl/internal/symtab"
	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

// Span locates a node in its source file.
type Span struct {
	File string
	Line int
	Col  int
}

func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("line %d", s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}

// TypeError is a static violation of the language rules. It always
// carries the offending span and aborts checking of the whole unit;
// it is user-facing and never recovered from locally.
type TypeError struct {
	Span Span
	Msg  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Msg)
}

// errf builds a TypeError at the given node.
func errf(n Node, format string, args ...any) *TypeError {
	return &TypeError{Span: n.Span(), Msg: fmt.Sprintf(format, args...)}
}

// internalf reports a core invariant violation. These are defects in
// the core, never user input, so they panic with full node context.
func internalf(n Node, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	panic(fmt.Sprintf("idl internal error at %s: %s (node: %s)", n.Span(), msg, n.TextForm()))
}

// unknownf builds the value-unknown signal for a node.
func unknownf(n Node, format string, args ...any) *value.Unknown {
	return value.Unknownf(n.TextForm(), fmt.Sprintf(format, args...))
}

// Node is the common contract of every AST variant.
type Node interface {
	Span() Span
	Parent() Node
	Children() []Node
	// TypeCheck validates the node and its children against the
	// scope. The only error it returns is *TypeError.
	TypeCheck(t *symtab.Table) error
	// TextForm re-renders the node as IDL source. The rendering,
	// re-parsed, type-checks to an equivalent tree.
	TextForm() string

	setParent(p Node)
	freeze()
}

// Rvalue is implemented by nodes that can produce a value.
type Rvalue interface {
	Node
	// Type returns the node's type under the scope. Calling it
	// before TypeCheck has run for this scope is an internal error.
	Type(t *symtab.Table) *types.Type
	// Value returns the compile-time value, or an error that is
	// either *value.Unknown (no single value here; an expected,
	// locally-handled outcome) or *TypeError.
	Value(t *symtab.Table) (value.Value, error)
}

// Executable is implemented by statement-like nodes with compile-time
// effects on the scope.
type Executable interface {
	Node
	// Execute applies the node's compile-time effects.
	Execute(t *symtab.Table) error
	// ExecuteUnknown forces every binding the node could touch into
	// the unknown state, for paths whose reachability cannot be
	// decided at analysis time.
	ExecuteUnknown(t *symtab.Table)
}

// Returns is implemented by nodes that may terminate a function with
// a result; control-flow variants use it to collect the types a body
// can return.
type Returns interface {
	Node
	// ReturnTypes lists the types of every return statement reachable
	// through this node, in source order.
	ReturnTypes(t *symtab.Table) []*types.Type
}

// Decl is implemented by declaration nodes that introduce bindings.
type Decl interface {
	Node
	AddSymbol(t *symtab.Table) error
}

// node is the embedded base of every variant: span, ownership links,
// the freeze flag, and the per-scope type cache.
type node struct {
	span     Span
	parent   Node
	children []Node
	frozen   bool
	typs     map[string]*types.Type
}

func (n *node) Span() Span       { return n.span }
func (n *node) Parent() Node     { return n.parent }
func (n *node) Children() []Node { return n.children }

func (n *node) setParent(p Node) {
	if n.frozen {
		panic("ast: parent link change after freeze")
	}
	n.parent = p
}

func (n *node) freeze() { n.frozen = true }

// adopt wires children into the node. Construction is bottom-up, so
// children exist before their parent; the back-reference is set here,
// once, and never used for ownership.
func (n *node) adopt(self Node, children ...Node) {
	if n.frozen {
		panic("ast: child added after freeze")
	}
	for _, c := range children {
		if isNilNode(c) {
			continue
		}
		c.setParent(self)
		n.children = append(n.children, c)
	}
}

// isNilNode sees through interfaces wrapping nil pointers. Optional
// children (a bodyless function's block, a bare if's else arm) arrive
// that way.
func isNilNode(c Node) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// setType caches the node's computed type under the scope key.
func (n *node) setType(t *symtab.Table, typ *types.Type) {
	if n.typs == nil {
		n.typs = make(map[string]*types.Type)
	}
	n.typs[t.ScopeKey()] = typ
}

// typeIn retrieves the cached type for the scope; the second result
// is false when the node has not been checked under this scope key.
func (n *node) typeIn(t *symtab.Table) (*types.Type, bool) {
	typ, ok := n.typs[t.ScopeKey()]
	return typ, ok
}

// mustType is the shared Type implementation: a missing entry means
// Type was requested before TypeCheck, which is a core defect.
func (n *node) mustType(self Node, t *symtab.Table) *types.Type {
	typ, ok := n.typeIn(t)
	if !ok {
		internalf(self, "type requested before type check")
	}
	return typ
}

// Freeze finalizes the tree top-down. After it returns, every node in
// the tree is immutable.
func Freeze(root Node) {
	root.freeze()
	for _, c := range root.Children() {
		Freeze(c)
	}
}

// at builds the base node for a span.
func at(s Span) node { return node{span: s} }
