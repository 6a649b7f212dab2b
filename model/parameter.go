package model

import (
	"fmt"
	"strings"

	"github.com/mlwelles/glapigen/typeexpr"
)

// CountShape tells how the element count of a parameter is known.
type CountShape int

const (
	CountLiteral  CountShape = iota // Count holds the number of elements (0 for scalars)
	CountVariable                   // CountParameterList names parameters that size it at run time
	CountCounter                    // Counter names a single parameter holding the count
)

// Parameter is one <param> of a function declaration.
type Parameter struct {
	Name               string
	Expr               *typeexpr.Expression
	Count              int      // Literal count, 0 when absent or given by Counter
	Counter            string   // Name of the sibling parameter that holds the count
	CountParameterList []string // Sibling parameters whose values determine the count
	CountScale         int      // Multiplier applied to the count, 1 by default
	ClientOnly         bool
	IsCounter          bool // True if another parameter's count refers to this one
	IsOutput           bool
	IsPadding          bool
	Image              ImageGeometry
}

// ImageGeometry describes a pixel transfer parameter. It is empty unless
// Width is set.
type ImageGeometry struct {
	Width, Height, Depth, Extent string // Names of the dimension parameters
	XOff, YOff, ZOff, WOff       string
	Format, Type, Target         string
	PadDimensions                bool
	NullFlag                     bool
	SendNull                     bool
}

// Compatible reports whether p may stand in for other at the same position
// in another declaration of the same function. Aliases are allowed to differ
// in parameter types, so any two parameters are compatible.
func (p *Parameter) Compatible(other *Parameter) bool { return true }

// Shape returns the way the element count is expressed. A counter takes
// precedence over a variable parameter list.
func (p *Parameter) Shape() CountShape {
	switch {
	case p.Counter != "":
		return CountCounter
	case len(p.CountParameterList) > 0:
		return CountVariable
	default:
		return CountLiteral
	}
}

func (p *Parameter) IsImage() bool { return p.Image.Width != "" }

func (p *Parameter) IsPointer() bool { return p.Expr.IsPointer() }

func (p *Parameter) IsArray() bool { return p.IsPointer() }

func (p *Parameter) IsVariableLength() bool {
	return len(p.CountParameterList) > 0 || p.Counter != ""
}

// Is64Bit reports whether a single element of the parameter is 8 bytes.
func (p *Parameter) Is64Bit() bool {
	if c := p.Expr.ElementCount(); c > 0 {
		return p.Size()/c == 8
	}
	return p.Size() == 8
}

// Size is the byte size of the parameter's data. Images have no fixed size.
func (p *Parameter) Size() int {
	if p.IsImage() {
		return 0
	}
	return p.Expr.ElementSize()
}

// ElementCount returns the literal element count, 1 for scalars.
func (p *Parameter) ElementCount() int {
	if c := p.Expr.ElementCount(); c > 0 {
		return c
	}
	return 1
}

func (p *Parameter) StackSize() int { return p.Expr.StackSize() }

func (p *Parameter) BaseTypeString() string { return p.Expr.BaseName() }

func (p *Parameter) TypeString() string { return p.Expr.String() }

func (p *Parameter) String() string { return p.Expr.String() + " " + p.Name }

// FormatString returns the printf verb used to trace the parameter. Enums
// are printed in hex.
func (p *Parameter) FormatString() string {
	if p.Expr.String() == "GLenum" {
		return "0x%x"
	}
	return p.Expr.FormatString()
}

// Dimensions returns the number of image dimensions and the names of the
// width, height, depth and extent parameters. Missing dimensions are "1";
// non-image parameters return 0 and "0" for every name.
func (p *Parameter) Dimensions() (int, [4]string) {
	if !p.IsImage() {
		return 0, [4]string{"0", "0", "0", "0"}
	}

	dim := 1
	names := [4]string{p.Image.Width, "1", "1", "1"}
	if p.Image.Height != "" {
		dim = 2
		names[1] = p.Image.Height
	}
	if p.Image.Depth != "" {
		dim = 3
		names[2] = p.Image.Depth
	}
	if p.Image.Extent != "" {
		dim = 4
		names[3] = p.Image.Extent
	}
	return dim, names
}

// SizeString returns a C expression for the parameter's size in bytes.
// Variable length parameters multiply the run-time "compsize" by their
// counter and element size, wrapped in safe_mul when parens is set.
func (p *Parameter) SizeString(parens bool) string {
	base := fmt.Sprintf("sizeof(%s)", p.BaseTypeString())
	if c := p.ElementCount(); c > 1 {
		base = fmt.Sprintf("%d * %s", c, base)
	}

	switch {
	case p.IsVariableLength():
		terms := []string{"compsize"}
		if p.Counter != "" {
			if len(p.CountParameterList) > 0 {
				terms = append(terms, p.Counter)
			} else {
				terms = []string{p.Counter}
			}
		}
		if p.Size() > 1 {
			terms = append(terms, base)
		}
		if len(terms) > 1 && parens {
			return "safe_mul(" + strings.Join(terms, ", ") + ")"
		}
		return strings.Join(terms, " * ")
	case p.IsImage():
		return "compsize"
	default:
		return base
	}
}

func parameterString(params []*Parameter, names bool) string {
	var parts []string
	for _, p := range params {
		if p.IsPadding {
			continue
		}
		if names {
			parts = append(parts, p.String())
		} else {
			parts = append(parts, p.TypeString())
		}
	}
	if len(parts) == 0 {
		return "void"
	}
	return strings.Join(parts, ", ")
}
