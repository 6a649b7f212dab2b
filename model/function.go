package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Exec flavors of a function.
const (
	DefaultExecFlavor = "normal" // Used when no declaration sets exec
	ExecSkip          = "skip"   // No dispatch code; gets an assigned slot if unlisted
)

// Declaration is one <function> element exactly as written. Every
// declaration naming the same canonical function is merged into a single
// Function by Merge.
type Declaration struct {
	Name        string                     // Entry point name as written
	Alias       string                     // Canonical name this entry point refers to, if any
	Category    Category                   // Category the element appeared in
	APIVersions map[string]decimal.Decimal // Minimum version per API tag, e.g. "es2": 3.0
	Exec        string                     // exec attribute; empty when absent
	Deprecated  *decimal.Decimal           // GL version that deprecated it, nil if never
	Desktop     bool                       // False when desktop="false"
	NoError     bool                       // True when a KHR_no_error variant exists
	ReturnType  string                     // "void" unless a <return> child says otherwise
	Parameters  []*Parameter               // <param> children in order
	HasChildren bool                       // False for bare references that carry no signature
}

// CanonicalName returns the alias target if there is one, else the name.
func (d *Declaration) CanonicalName() string {
	if d.Alias != "" {
		return d.Alias
	}
	return d.Name
}

// Function is the merged record for one dispatchable function and all of
// its entry points.
type Function struct {
	Name                 string                     // Canonical name
	EntryPoints          []string                   // In declaration order, canonical or not
	ReturnType           string                     // Canonical return type
	Parameters           []*Parameter               // Canonical signature
	Offset               int                        // Dispatch slot, -1 until assigned
	AssignOffset         bool                       // True if the slot is not part of the fixed ABI
	ExecFlavor           string                     // Last exec seen, DefaultExecFlavor if none
	Deprecated           *decimal.Decimal           // Last deprecated version seen
	APIMap               map[string]decimal.Decimal // Lowest version per API tag over all entry points
	HasNoErrorVariant    bool                       // Sticky once any declaration sets no_error
	Desktop              bool                       // Sticky false once any declaration clears it
	StaticEntryPoints    []string                   // Entry points exported statically
	EntryPointParameters map[string][]*Parameter    // As-declared signature per entry point

	initialized bool // Set by the first declaration carrying a signature
}

func newFunction() *Function {
	return &Function{
		ReturnType:           "void",
		Offset:               -1,
		ExecFlavor:           DefaultExecFlavor,
		Desktop:              true,
		APIMap:               make(map[string]decimal.Decimal),
		EntryPointParameters: make(map[string][]*Parameter),
	}
}

// Initialized reports whether a declaration with a signature has been seen.
func (f *Function) Initialized() bool { return f.initialized }

// IsABI reports whether the function occupies a fixed legacy slot.
func (f *Function) IsABI() bool { return f.Offset >= 0 && !f.AssignOffset }

func (f *Function) IsStaticEntryPoint(name string) bool {
	return slices.Contains(f.StaticEntryPoints, name)
}

// DispatchName is the symbol the dispatch table points at.
func (f *Function) DispatchName() string { return f.StaticName(f.Name) }

// StaticName returns name if it is statically exported, else the name of
// the generated stub for the function's slot.
func (f *Function) StaticName(name string) string {
	if f.IsStaticEntryPoint(name) {
		return name
	}
	return fmt.Sprintf("_dispatch_stub_%d", f.Offset)
}

// ParametersFor returns the signature declared for entry, or the canonical
// one when entry is empty.
func (f *Function) ParametersFor(entry string) []*Parameter {
	if entry == "" {
		return f.Parameters
	}
	return f.EntryPointParameters[entry]
}

// ParameterString renders the prototype argument list for entry.
func (f *Function) ParameterString(entry string) string {
	return parameterString(f.ParametersFor(entry), true)
}

// CalledParameterString renders the argument names used to forward a call.
func (f *Function) CalledParameterString() string {
	var names []string
	for _, p := range f.Parameters {
		if p.IsPadding {
			continue
		}
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

// Images returns the pixel transfer parameters of the canonical signature.
func (f *Function) Images() []*Parameter {
	var images []*Parameter
	for _, p := range f.Parameters {
		if p.IsImage() {
			images = append(images, p)
		}
	}
	return images
}

// FilterEntryPoints drops every entry point allow rejects. If the canonical
// name goes, the first remaining entry point becomes canonical and its
// declared signature becomes the canonical one.
func (f *Function) FilterEntryPoints(allow func(string) bool) error {
	if !f.initialized {
		return fmt.Errorf("%s: %w", f.Name, ErrNotInitialized)
	}

	var kept []string
	for _, ep := range f.EntryPoints {
		if allow(ep) {
			kept = append(kept, ep)
			continue
		}
		f.StaticEntryPoints = slices.DeleteFunc(f.StaticEntryPoints, func(s string) bool { return s == ep })
		delete(f.EntryPointParameters, ep)
	}
	if len(kept) == 0 {
		return fmt.Errorf("%s: %w", f.Name, ErrNoEntryPoints)
	}

	f.EntryPoints = kept
	if !slices.Contains(kept, f.Name) {
		f.Name = kept[0]
		f.Parameters = f.EntryPointParameters[kept[0]]
	}
	return nil
}
