package arch

import (
	"fmt"
	"math/big"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hwlang/idl/internal/value"
)

// File is a YAML-backed Arch. The format mirrors the architecture
// database the IDL describes: a base width, CSR layouts, and
// configuration parameters.
type File struct {
	BaseWidth int         `yaml:"base"`
	CSRDefs   []*CSRDef   `yaml:"csrs"`
	ParamDefs []*ParamDef `yaml:"params"`

	csrs   map[string]*CSRDef
	params map[string]*ParamDef
}

// CSRDef is one register entry of the YAML file.
type CSRDef struct {
	CSRName string      `yaml:"name"`
	Lengths map[int]int `yaml:"length"` // base width -> bits
	Dynamic bool        `yaml:"dynamic"`
	Field   []*FieldDef `yaml:"fields"`
}

// FieldDef is one field entry of a CSR.
type FieldDef struct {
	FieldName  string           `yaml:"name"`
	Base       string           `yaml:"base"` // "rv32", "rv64", or "" for both
	Locations  map[int][2]int   `yaml:"location"` // base width -> [hi, lo]
	NotPresent bool             `yaml:"unimplemented"`
	RO         bool             `yaml:"read_only"`
	ResetVal   *uint64          `yaml:"reset"`
}

// ParamDef is one parameter entry.
type ParamDef struct {
	ParamName string  `yaml:"name"`
	Desc      string  `yaml:"description"`
	Shape     *Schema `yaml:"schema"`
	Val       *int64  `yaml:"value"`
	StrVal    *string `yaml:"string_value"`
	BoolVal   *bool   `yaml:"bool_value"`
}

// Load reads and validates an architecture file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates architecture YAML.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("architecture: %w", err)
	}
	if f.BaseWidth == 0 {
		f.BaseWidth = 64
	}
	if f.BaseWidth != 32 && f.BaseWidth != 64 {
		return nil, fmt.Errorf("architecture: base must be 32 or 64, got %d", f.BaseWidth)
	}
	f.csrs = make(map[string]*CSRDef, len(f.CSRDefs))
	for _, c := range f.CSRDefs {
		if c.CSRName == "" {
			return nil, fmt.Errorf("architecture: csr with no name")
		}
		if _, dup := f.csrs[c.CSRName]; dup {
			return nil, fmt.Errorf("architecture: duplicate csr %q", c.CSRName)
		}
		for _, fd := range c.Field {
			if fd.FieldName == "" {
				return nil, fmt.Errorf("architecture: csr %q has a field with no name", c.CSRName)
			}
			for base, loc := range fd.Locations {
				if loc[0] < loc[1] {
					return nil, fmt.Errorf("architecture: csr %q field %q: location [%d, %d] reversed at base %d",
						c.CSRName, fd.FieldName, loc[0], loc[1], base)
				}
			}
		}
		f.csrs[c.CSRName] = c
	}
	f.params = make(map[string]*ParamDef, len(f.ParamDefs))
	for _, p := range f.ParamDefs {
		if p.ParamName == "" {
			return nil, fmt.Errorf("architecture: param with no name")
		}
		if _, dup := f.params[p.ParamName]; dup {
			return nil, fmt.Errorf("architecture: duplicate param %q", p.ParamName)
		}
		f.params[p.ParamName] = p
	}
	return &f, nil
}

func (f *File) Base() int { return f.BaseWidth }

func (f *File) CSR(name string) (CSR, bool) {
	c, ok := f.csrs[name]
	return c, ok
}

func (f *File) CSRs() []CSR {
	out := make([]CSR, 0, len(f.CSRDefs))
	for _, c := range f.CSRDefs {
		out = append(out, c)
	}
	return out
}

func (f *File) Parameter(name string) (Parameter, bool) {
	p, ok := f.params[name]
	return p, ok
}

func (f *File) Parameters() []Parameter {
	out := make([]Parameter, 0, len(f.ParamDefs))
	for _, p := range f.ParamDefs {
		out = append(out, p)
	}
	return out
}

// CSR interface

func (c *CSRDef) Name() string { return c.CSRName }

func (c *CSRDef) Length(base int) (int, bool) {
	if n, ok := c.Lengths[base]; ok {
		return n, c.Dynamic
	}
	return base, c.Dynamic
}

func (c *CSRDef) Fields() []Field {
	out := make([]Field, 0, len(c.Field))
	for _, fd := range c.Field {
		out = append(out, fd)
	}
	return out
}

func (c *CSRDef) ResetValue(base int) (uint64, bool) {
	var v uint64
	for _, fd := range c.Field {
		if !fd.DefinedIn(base) {
			continue
		}
		if !fd.RO {
			return 0, false
		}
		r, ok := fd.Reset()
		if !ok {
			return 0, false
		}
		hi, lo, ok := fd.Location(base)
		if !ok {
			return 0, false
		}
		mask := uint64(1)<<uint(hi-lo+1) - 1
		v |= (r & mask) << uint(lo)
	}
	return v, true
}

// Field interface

func (fd *FieldDef) Name() string { return fd.FieldName }

func (fd *FieldDef) DefinedIn(base int) bool {
	switch fd.Base {
	case "", "both":
		return true
	case "rv32":
		return base == 32
	case "rv64":
		return base == 64
	}
	return false
}

func (fd *FieldDef) Location(base int) (int, int, bool) {
	if loc, ok := fd.Locations[base]; ok {
		return loc[0], loc[1], true
	}
	return 0, 0, false
}

func (fd *FieldDef) Implemented() bool { return !fd.NotPresent }
func (fd *FieldDef) ReadOnly() bool    { return fd.RO }

func (fd *FieldDef) Reset() (uint64, bool) {
	if fd.ResetVal == nil {
		return 0, false
	}
	return *fd.ResetVal, true
}

// Parameter interface

func (p *ParamDef) Name() string        { return p.ParamName }
func (p *ParamDef) Description() string { return p.Desc }

func (p *ParamDef) Schema() Schema {
	if p.Shape == nil {
		return Schema{Type: "integer"}
	}
	return *p.Shape
}

func (p *ParamDef) SchemaKnown() bool { return p.Shape != nil }

func (p *ParamDef) Value() (value.Value, bool) {
	switch {
	case p.Val != nil:
		w := p.Schema().Bits
		if w == 0 {
			w = value.WidthUnknown
		}
		return value.NewBits(big.NewInt(*p.Val), w, false), true
	case p.StrVal != nil:
		return value.NewString(*p.StrVal), true
	case p.BoolVal != nil:
		return value.NewBool(*p.BoolVal), true
	}
	return value.Value{}, false
}
