// Package arch is the boundary to the architecture metadata the core
// consumes: CSR layouts and configuration parameters. The core only
// sees the capability interfaces here; the YAML-backed implementation
// in this package exists for the CLI and tests.
package arch

import "github.com/hwlang/idl/internal/value"

// CSR describes one control/status register.
type CSR interface {
	Name() string
	// Length returns the register length in bits for the given base
	// width, and whether that length is runtime-dynamic (in which
	// case the returned length is only the static maximum).
	Length(base int) (bits int, dynamic bool)
	Fields() []Field
	// ResetValue returns the register's single known reset value.
	// It is only available when every field is statically read-only.
	ResetValue(base int) (uint64, bool)
}

// Field describes one field of a CSR.
type Field interface {
	Name() string
	// DefinedIn reports whether the field exists at the given base
	// width (32 or 64).
	DefinedIn(base int) bool
	// Location returns the field's bit range at the given base width;
	// a field's location may move between RV32 and RV64.
	Location(base int) (hi, lo int, ok bool)
	// Implemented reports whether the current configuration
	// implements the field at all.
	Implemented() bool
	// ReadOnly reports whether the field is statically read-only.
	ReadOnly() bool
	// Reset returns the field's reset value when it has one.
	Reset() (uint64, bool)
}

// Parameter describes one configuration-defined parameter.
type Parameter interface {
	Name() string
	Description() string
	Schema() Schema
	// SchemaKnown reports whether the schema is unambiguous in the
	// current, possibly partial, configuration.
	SchemaKnown() bool
	// Value returns the parameter's value when the configuration
	// pins it.
	Value() (value.Value, bool)
}

// Schema is the JSON-schema-like shape of a parameter.
type Schema struct {
	Type string  // "integer", "boolean", "string"
	Enum []int64 // allowed values, integer parameters only
	Bits int     // width of integer parameters; 0 means unconstrained
}

// Arch is the full consumed surface: CSRs, parameters, and the base
// width of the current configuration.
type Arch interface {
	Base() int
	CSR(name string) (CSR, bool)
	CSRs() []CSR
	Parameter(name string) (Parameter, bool)
	Parameters() []Parameter
}

// Empty is an Arch with no CSRs and no parameters, for units that do
// not touch the configuration.
func Empty(base int) Arch { return emptyArch{base: base} }

type emptyArch struct{ base int }

func (e emptyArch) Base() int                         { return e.base }
func (e emptyArch) CSR(string) (CSR, bool)            { return nil, false }
func (e emptyArch) CSRs() []CSR                       { return nil }
func (e emptyArch) Parameter(string) (Parameter, bool) { return nil, false }
func (e emptyArch) Parameters() []Parameter           { return nil }
