// Package testutil holds the shared fixtures the package tests check
// against: a small but realistic architecture configuration with
// read-only and writable CSRs and pinned and open parameters.
package testutil

import (
	"testing"

	"github.com/hwlang/idl/internal/arch"
)

// FixtureYAML is the canned configuration most tests load. misa's
// fields are all read-only with resets, so it has a static reset
// value; mcause is writable and therefore unknowable at compile time.
const FixtureYAML = `
base: 64
csrs:
  - name: misa
    length: {32: 32, 64: 64}
    fields:
      - name: MXL
        location: {32: [31, 30], 64: [63, 62]}
        read_only: true
        reset: 2
      - name: Extensions
        location: {32: [25, 0], 64: [25, 0]}
        read_only: true
        reset: 0
  - name: mcause
    length: {32: 32, 64: 64}
    fields:
      - name: INT
        location: {32: [31, 31], 64: [63, 63]}
      - name: CODE
        location: {32: [30, 0], 64: [62, 0]}
  - name: mtval
    dynamic: true
params:
  - name: MXLEN
    description: machine base width
    schema: {type: integer, bits: 8, enum: [32, 64]}
    value: 64
  - name: CACHE_BLOCK_SIZE
    description: block size for the cache ops
    schema: {type: integer, bits: 16, enum: [32, 64, 128]}
  - name: MISALIGNED_LDST
    description: whether misaligned loads and stores work
    schema: {type: boolean}
    bool_value: true
  - name: VENDOR
    description: vendor string
    schema: {type: string}
    string_value: "acme"
`

// Arch parses FixtureYAML, failing the test on error.
func Arch(t *testing.T) *arch.File {
	t.Helper()
	f, err := arch.Parse([]byte(FixtureYAML))
	if err != nil {
		t.Fatalf("fixture configuration: %v", err)
	}
	return f
}
