package model

import (
	"fmt"
)

// OffsetTable is the external table of legacy dispatch offsets.
// *staticdata.Table implements it.
type OffsetTable interface {
	Offset(name string) (int, bool)
	LegacyLimit() int
	IsStatic(name string) bool
	IsUnused(name string) bool
}

// Slot is the result of reserving an offset for one entry point.
type Slot struct {
	Offset int  // -1 when the slot is left for finalization
	Fixed  bool // True for legacy ABI slots
	Assign bool // True when finalization owns the slot
}

// Allocator hands out dispatch offsets: fixed slots from the table during
// loading and sequential slots during finalization.
type Allocator struct {
	table OffsetTable
}

func NewAllocator(table OffsetTable) *Allocator {
	return &Allocator{table: table}
}

// IsStatic reports whether name is a statically linked entry point.
func (a *Allocator) IsStatic(name string) bool { return a.table.IsStatic(name) }

// Reserve looks name up in the table. Entries inside the legacy range are
// fixed; entries beyond it are placeholders that stay assignable. Missing
// entries are an error unless the function is skipped or known unused.
func (a *Allocator) Reserve(name, execFlavor string) (Slot, error) {
	off, ok := a.table.Offset(name)
	switch {
	case ok && off <= a.table.LegacyLimit():
		return Slot{Offset: off, Fixed: true}, nil
	case ok:
		return Slot{Offset: off, Assign: true}, nil
	case execFlavor == ExecSkip || a.table.IsUnused(name):
		return Slot{Offset: -1, Assign: true}, nil
	}
	return Slot{}, fmt.Errorf("%w: %s", ErrMissingOffset, name)
}

// Finalize gives every function without an offset the next free slot,
// starting at next and following the order of fns. It returns the counter
// after the last assignment and fails if two functions share an offset.
func (a *Allocator) Finalize(fns []*Function, next int) (int, error) {
	for _, f := range fns {
		if f.Offset < 0 {
			f.Offset = next
			f.AssignOffset = true
			next++
		}
	}

	owners := make(map[int]string, len(fns))
	for _, f := range fns {
		if prev, ok := owners[f.Offset]; ok {
			return next, fmt.Errorf("%w: %d used by %s and %s", ErrDuplicateOffset, f.Offset, prev, f.Name)
		}
		owners[f.Offset] = f.Name
	}
	return next, nil
}
