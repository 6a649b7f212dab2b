package model

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/rs/zerolog"

	"github.com/mlwelles/glapigen/typeexpr"
)

// API is the aggregate root of the model. It is filled by the loader, then
// merged and finalized exactly once; after Finalize it is read-only.
type API struct {
	// NextOffset is the first dispatch slot not used by any function.
	NextOffset int

	functions  *linkedhashmap.Map // canonical name -> *Function
	pending    *linkedhashmap.Map // canonical name -> []*Declaration
	enums      map[string]*Enum
	types      map[string]*Type
	typeOrder  []string
	symbols    map[string]Category
	categories map[string]Category

	alloc     *Allocator
	order     VersionOrder
	logger    zerolog.Logger
	merged    bool
	finalized bool
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(a *API) { a.logger = l }
}

// WithVersionOrder selects how core versions are ordered.
func WithVersionOrder(o VersionOrder) Option {
	return func(a *API) { a.order = o }
}

// NewAPI returns an empty model whose offsets come from table.
func NewAPI(table OffsetTable, opts ...Option) *API {
	a := &API{
		functions:  linkedhashmap.New(),
		pending:    linkedhashmap.New(),
		enums:      make(map[string]*Enum),
		types:      make(map[string]*Type),
		symbols:    make(map[string]Category),
		categories: make(map[string]Category),
		alloc:      NewAllocator(table),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddCategory records a category seen in the input.
func (a *API) AddCategory(c Category) error {
	if a.finalized {
		return ErrFinalized
	}
	a.categories[c.Name] = c
	return nil
}

// AddType registers t under its C name so later parameters can use it.
func (a *API) AddType(t *Type) error {
	if a.finalized {
		return ErrFinalized
	}
	name := t.GLName()
	if _, ok := a.types[name]; !ok {
		a.typeOrder = append(a.typeOrder, name)
	}
	a.types[name] = t
	return nil
}

func (a *API) AddEnum(e *Enum) error {
	if a.finalized {
		return ErrFinalized
	}
	a.enums[e.Name] = e
	return nil
}

// AddDeclaration queues a function declaration for Merge and records which
// category declared its entry point.
func (a *API) AddDeclaration(d *Declaration) error {
	if a.merged || a.finalized {
		return ErrFinalized
	}
	a.symbols[d.Name] = d.Category

	name := d.CanonicalName()
	var decls []*Declaration
	if v, ok := a.pending.Get(name); ok {
		decls = v.([]*Declaration)
	}
	a.pending.Put(name, append(decls, d))
	return nil
}

// Merge turns the queued declarations into functions, keeping the order in
// which each canonical name was first seen.
func (a *API) Merge() error {
	if a.merged {
		return nil
	}
	for _, k := range a.pending.Keys() {
		name := k.(string)
		v, _ := a.pending.Get(name)
		f, err := Merge(v.([]*Declaration), a.alloc)
		if err != nil {
			return fmt.Errorf("merge %s: %w", name, err)
		}
		a.functions.Put(name, f)
		if f.Offset >= a.NextOffset {
			a.NextOffset = f.Offset + 1
		}
	}
	a.pending.Clear()
	a.merged = true
	a.logger.Debug().Int("functions", a.functions.Size()).Int("next_offset", a.NextOffset).Msg("merged declarations")
	return nil
}

// FilterEntryPoints restricts every function to the entry points allow
// accepts. Functions whose canonical name is dropped are renamed in place.
func (a *API) FilterEntryPoints(allow func(string) bool) error {
	if a.finalized {
		return ErrFinalized
	}
	if err := a.Merge(); err != nil {
		return err
	}

	filtered := linkedhashmap.New()
	for _, f := range a.Functions() {
		old := f.Name
		if err := f.FilterEntryPoints(allow); err != nil {
			return err
		}
		if _, ok := filtered.Get(f.Name); ok {
			return fmt.Errorf("%w: %s renamed to existing function %s", ErrNameRedefined, old, f.Name)
		}
		if old != f.Name {
			a.logger.Debug().Str("from", old).Str("to", f.Name).Msg("renamed function after filtering")
		}
		filtered.Put(f.Name, f)
	}
	a.functions = filtered
	return nil
}

// Finalize merges pending declarations if needed, then assigns sequential
// offsets in category order to every function still without one. The API
// is read-only afterwards.
func (a *API) Finalize() error {
	if a.finalized {
		return nil
	}
	if err := a.Merge(); err != nil {
		return err
	}

	next := 0
	for _, f := range a.Functions() {
		if f.Offset >= next {
			next = f.Offset + 1
		}
	}
	next = max(next, a.NextOffset)

	next, err := a.alloc.Finalize(a.FunctionsByCategory(""), next)
	if err != nil {
		return err
	}
	a.NextOffset = next
	a.finalized = true
	a.logger.Debug().Int("next_offset", next).Msg("assigned dispatch offsets")
	return nil
}

// Finalized reports whether Finalize has run.
func (a *API) Finalized() bool { return a.finalized }

// Functions returns all functions in the order they were first declared.
// Declarations added since the last Merge are not included.
func (a *API) Functions() []*Function {
	values := a.functions.Values()
	fns := make([]*Function, len(values))
	for i, v := range values {
		fns[i] = v.(*Function)
	}
	return fns
}

// Function returns the function with the given canonical name.
func (a *API) Function(name string) (*Function, bool) {
	v, ok := a.functions.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Function), true
}

// FunctionsByCategory returns functions ordered by the category that
// declared their canonical name, then by name. A non-empty cat restricts
// the result to that category. Only merged functions are listed.
func (a *API) FunctionsByCategory(cat string) []*Function {
	type keyed struct {
		fn  *Function
		key CategoryKey
	}

	var list []keyed
	for _, f := range a.Functions() {
		c := a.CategoryForName(f.Name)
		if cat != "" && c.Name != cat {
			continue
		}
		list = append(list, keyed{fn: f, key: Classify(c.Name, c.Number)})
	}

	slices.SortStableFunc(list, func(x, y keyed) int {
		if c := x.key.Compare(y.key, a.order); c != 0 {
			return c
		}
		return cmp.Compare(x.fn.Name, y.fn.Name)
	})

	fns := make([]*Function, len(list))
	for i, k := range list {
		fns[i] = k.fn
	}
	return fns
}

// FunctionsByOffset returns every merged function with an offset, in
// increasing offset order. Call Finalize first to include assigned slots.
func (a *API) FunctionsByOffset() []*Function {
	var fns []*Function
	for _, f := range a.Functions() {
		if f.Offset >= 0 {
			fns = append(fns, f)
		}
	}
	slices.SortFunc(fns, func(x, y *Function) int { return cmp.Compare(x.Offset, y.Offset) })
	return fns
}

// EnumsByName returns all enums sorted by name.
func (a *API) EnumsByName() []*Enum {
	names := make([]string, 0, len(a.enums))
	for name := range a.enums {
		names = append(names, name)
	}
	sort.Strings(names)

	enums := make([]*Enum, len(names))
	for i, name := range names {
		enums[i] = a.enums[name]
	}
	return enums
}

func (a *API) Enum(name string) (*Enum, bool) {
	e, ok := a.enums[name]
	return e, ok
}

// PreferredEnum returns the best name for value, the one with the lowest
// priority, breaking ties by name.
func (a *API) PreferredEnum(value int64) (*Enum, bool) {
	var best *Enum
	bestPriority := math.MaxInt
	for _, e := range a.EnumsByName() {
		if e.Value != value {
			continue
		}
		if p := e.Priority(); p < bestPriority {
			best, bestPriority = e, p
		}
	}
	return best, best != nil
}

// Types returns declared types in declaration order.
func (a *API) Types() []*Type {
	types := make([]*Type, len(a.typeOrder))
	for i, name := range a.typeOrder {
		types[i] = a.types[name]
	}
	return types
}

// FindType returns the expression of a declared type such as "GLfloat".
// A miss is logged and returns nil; callers must check.
func (a *API) FindType(name string) *typeexpr.Expression {
	if t, ok := a.types[name]; ok {
		return t.Expr
	}
	a.logger.Warn().Str("type", name).Msg("unable to find base type")
	return nil
}

// Categories returns every category seen, in canonical order.
func (a *API) Categories() []Category {
	cats := make([]Category, 0, len(a.categories))
	for _, c := range a.categories {
		cats = append(cats, c)
	}
	slices.SortFunc(cats, func(x, y Category) int {
		return Classify(x.Name, x.Number).Compare(Classify(y.Name, y.Number), a.order)
	})
	return cats
}

// CategoryForName returns the category that declared a function entry
// point or enum. Unknown names yield UnknownCategory.
func (a *API) CategoryForName(name string) Category {
	if c, ok := a.symbols[name]; ok {
		return c
	}
	if e, ok := a.enums[name]; ok {
		return e.Category
	}
	return UnknownCategory
}
