// Package model defines the in-memory representation of a GL API description.
// The parser populates it from XML; code generators read it once it has been
// finalized. Functions are merged from every declaration of their entry
// points, categories are put into a canonical order, and every function is
// given a dispatch offset.
package model

import (
	"errors"
	"strings"

	"github.com/mlwelles/glapigen/typeexpr"
)

var (
	// ErrInvalidBool is returned for a boolean attribute other than "true" or "false".
	ErrInvalidBool = errors.New("invalid boolean attribute")
	// ErrInvalidCount is returned for a count or count_scale that is not an integer.
	ErrInvalidCount = errors.New("invalid count")
	// ErrSignature is returned when two declarations of a function disagree
	// on return type or parameter count.
	ErrSignature = errors.New("signature mismatch")
	// ErrNoEntryPoints is returned when filtering removes every entry point of a function.
	ErrNoEntryPoints = errors.New("no entry points after filtering")
	// ErrMissingOffset is returned for a function absent from the offset table
	// that is neither skipped nor listed as unused.
	ErrMissingOffset = errors.New("entry point is missing a static offset")
	// ErrNameRedefined is returned when declarations of one function name
	// different canonical functions.
	ErrNameRedefined = errors.New("function true name redefined")
	// ErrDuplicateOffset is returned when two functions share a dispatch slot.
	ErrDuplicateOffset = errors.New("duplicate dispatch offset")
	// ErrNotInitialized is returned when filtering a function that has no signature.
	ErrNotInitialized = errors.New("function has no signature yet")
	// ErrFinalized is returned when mutating an API after Finalize.
	ErrFinalized = errors.New("api is finalized")
	// ErrNoDeclarations is returned by Merge for an empty declaration list.
	ErrNoDeclarations = errors.New("no declarations to merge")
	// ErrUnknownCategory is returned for a category name that was never declared.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidAttribute is returned for a malformed numeric or version attribute.
	ErrInvalidAttribute = errors.New("invalid attribute")
)

// Category is a core version or extension that declares functions, enums and
// types. Number is nil for unnumbered extensions and core versions.
type Category struct {
	Name   string // Core version such as "1.5" or extension name
	Number *int   // Registry number, nil if absent
}

// UnknownCategory is returned for symbols that no category declared.
var UnknownCategory = Category{Name: "<unknown category>"}

// Type is a base type declared by the API, e.g. <type name="float" size="4"
// float="true"/>. It is registered under "GL" + Name.
type Type struct {
	Name     string               // Name without the GL prefix, e.g. "float"
	Category Category             // Declaring category
	Size     int                  // Size in bytes
	Float    bool                 // Floating point rather than integer
	Unsigned bool                 // Unsigned integer
	Pointer  bool                 // Pointer-sized handle type
	Expr     *typeexpr.Expression // Base node used by every parameter of this type
}

// GLName returns the C name of the type, e.g. "GLfloat".
func (t *Type) GLName() string { return "GL" + t.Name }

// Enum is a named integer constant. Several enums may share a value.
type Enum struct {
	Name         string   // Name without the GL_ prefix
	Category     Category // Declaring category
	Value        int64    // Numeric value; 64-bit unsigned values keep their bits
	DefaultCount int      // -1 when the count is unknown or variable
}

// Priority ranks the enum among all names sharing its value; lower is
// preferred. Core names win over ARB, ARB over EXT, EXT over vendor
// extensions, and *_BIT names lose to their peers.
func (e *Enum) Priority() int {
	bias := 0
	if strings.HasSuffix(e.Name, "_BIT") {
		bias = 1
	}

	cat := RealCategoryName(e.Category.Name)
	switch {
	case strings.HasPrefix(cat, "GL_VERSION_"):
		return 0 + bias
	case strings.HasPrefix(cat, "GL_ARB_"):
		return 2 + bias
	case strings.HasPrefix(cat, "GL_EXT_"):
		return 4 + bias
	default:
		return 6 + bias
	}
}
