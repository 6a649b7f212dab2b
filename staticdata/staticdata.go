// Package staticdata loads the fixed table of legacy dispatch offsets, the
// statically linked entry points and the functions that are intentionally
// unused. The table is authoritative input; nothing here is generated.
package staticdata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMaxOffset is the last slot of the legacy ABI range.
const DefaultMaxOffset = 407

// Table is the decoded static data file.
type Table struct {
	MaxOffset       int            `yaml:"max_offset"`
	Offsets         map[string]int `yaml:"offsets"`
	StaticFunctions []string       `yaml:"static_functions"`
	UnusedFunctions []string       `yaml:"unused_functions"`

	static map[string]bool
	unused map[string]bool
}

// Load reads a static data table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read static data: %w", err)
	}
	return Parse(data)
}

// Parse decodes a static data table from YAML.
func Parse(data []byte) (*Table, error) {
	t := &Table{MaxOffset: -1}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse static data: %w", err)
	}
	if t.MaxOffset < 0 {
		t.MaxOffset = DefaultMaxOffset
	}
	for name, off := range t.Offsets {
		if off < 0 {
			return nil, fmt.Errorf("static data: negative offset %d for %s", off, name)
		}
	}
	t.index()
	return t, nil
}

// New builds a table in memory. It is mostly useful in tests.
func New(maxOffset int, offsets map[string]int, static, unused []string) *Table {
	t := &Table{
		MaxOffset:       maxOffset,
		Offsets:         offsets,
		StaticFunctions: static,
		UnusedFunctions: unused,
	}
	t.index()
	return t
}

func (t *Table) index() {
	t.static = make(map[string]bool, len(t.StaticFunctions))
	for _, name := range t.StaticFunctions {
		t.static[name] = true
	}
	t.unused = make(map[string]bool, len(t.UnusedFunctions))
	for _, name := range t.UnusedFunctions {
		t.unused[name] = true
	}
}

// Offset returns the reserved slot for name.
func (t *Table) Offset(name string) (int, bool) {
	off, ok := t.Offsets[name]
	return off, ok
}

// LegacyLimit returns the highest offset that belongs to the fixed ABI.
func (t *Table) LegacyLimit() int { return t.MaxOffset }

// IsStatic reports whether name is exported as a statically linked symbol.
func (t *Table) IsStatic(name string) bool { return t.static[name] }

// IsUnused reports whether name is known to have no implementation.
func (t *Table) IsUnused(name string) bool { return t.unused[name] }
