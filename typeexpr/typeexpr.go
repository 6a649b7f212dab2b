// Package typeexpr parses C type strings such as "const GLfloat *" into type
// expressions and answers size, pointer, signedness and formatting queries
// about them. Base types are either built in (char, int, float, ...) or
// supplied by a Resolver, which is normally the API model being loaded.
package typeexpr

import (
	"errors"
	"fmt"
	"strings"
)

// PointerSize is the size in bytes of a pointer node and of any argument
// passed by reference on the stack.
const PointerSize = 8

var (
	ErrEmpty           = errors.New("empty type expression")
	ErrUnknownBaseType = errors.New("unknown base type")
	ErrMultipleBase    = errors.New("multiple base types")
	ErrDanglingPointer = errors.New("pointer without base type")
)

// Node is one link of a type expression. The first node is always the base
// type; each '*' in the source string adds a pointer node after it.
type Node struct {
	Name     string // Base type name, e.g. "GLfloat"; empty for pointer nodes
	Size     int    // Size in bytes of one element of this node
	Integer  bool   // False for floating point base types
	Unsigned bool   // True for unsigned integer base types
	Pointer  bool   // True for pointer nodes and for opaque pointer base types
	Const    bool   // True if the node was const-qualified
	Elements int    // Element count for array-like parameters, 0 for scalars
}

// Expression is a parsed type string.
type Expression struct {
	Original string
	nodes    []*Node
}

// Resolver looks up non built-in base type names. Implementations return nil
// when the name is unknown.
type Resolver interface {
	FindType(name string) *Expression
}

var builtins = map[string]Node{
	"char":   {Name: "char", Size: 1, Integer: true},
	"short":  {Name: "short", Size: 2, Integer: true},
	"int":    {Name: "int", Size: 4, Integer: true},
	"long":   {Name: "long", Size: 8, Integer: true},
	"float":  {Name: "float", Size: 4},
	"double": {Name: "double", Size: 8},
	"enum":   {Name: "enum", Size: 4, Integer: true},
	"void":   {Name: "void", Size: 1, Integer: true},
}

// NewBase returns an expression consisting of a single base node. It is used
// to register types declared by the API description.
func NewBase(n Node) *Expression {
	node := n
	return &Expression{Original: n.Name, nodes: []*Node{&node}}
}

// Parse builds an expression from s. Base type names are looked up in the
// built-in table first and then through r, which may be nil.
func Parse(s string, r Resolver) (*Expression, error) {
	tokens := strings.Fields(strings.ReplaceAll(s, "*", " * "))
	if len(tokens) == 0 {
		return nil, ErrEmpty
	}

	e := &Expression{Original: strings.TrimSpace(s)}
	var (
		pendingConst bool
		signed       string
	)

	for _, tok := range tokens {
		switch tok {
		case "const":
			if len(e.nodes) > 0 {
				e.last().Const = true
			} else {
				pendingConst = true
			}
		case "unsigned", "signed":
			signed = tok
		case "*":
			if len(e.nodes) == 0 {
				if signed == "" {
					return nil, fmt.Errorf("%q: %w", s, ErrDanglingPointer)
				}
				e.appendBase(builtins["int"])
			}
			e.nodes = append(e.nodes, &Node{Size: PointerSize, Integer: true, Unsigned: true, Pointer: true})
		default:
			if len(e.nodes) > 0 {
				return nil, fmt.Errorf("%q: %w", s, ErrMultipleBase)
			}
			if b, ok := builtins[tok]; ok {
				e.appendBase(b)
				continue
			}
			var found *Expression
			if r != nil {
				found = r.FindType(tok)
			}
			if found == nil {
				return nil, fmt.Errorf("%q: %w %q", s, ErrUnknownBaseType, tok)
			}
			for _, n := range found.nodes {
				cp := *n
				e.nodes = append(e.nodes, &cp)
			}
		}
	}

	if len(e.nodes) == 0 {
		if signed == "" {
			return nil, fmt.Errorf("%q: %w", s, ErrEmpty)
		}
		e.appendBase(builtins["int"])
	}

	base := e.nodes[0]
	if pendingConst {
		base.Const = true
	}
	if signed == "unsigned" {
		base.Unsigned = true
	} else if signed == "signed" {
		base.Unsigned = false
	}
	return e, nil
}

func (e *Expression) appendBase(n Node) {
	node := n
	e.nodes = append(e.nodes, &node)
}

func (e *Expression) base() *Node { return e.nodes[0] }

func (e *Expression) last() *Node { return e.nodes[len(e.nodes)-1] }

// String returns the type string as it was written.
func (e *Expression) String() string { return e.Original }

// BaseName returns the name of the base type, e.g. "GLfloat" for
// "const GLfloat *".
func (e *Expression) BaseName() string { return e.base().Name }

// SetElements records the element count on the outermost node.
func (e *Expression) SetElements(n int) { e.last().Elements = n }

// ElementCount returns the element count set by SetElements.
func (e *Expression) ElementCount() int { return e.last().Elements }

// IsPointer reports whether any node of the expression is a pointer.
func (e *Expression) IsPointer() bool {
	for _, n := range e.nodes {
		if n.Pointer {
			return true
		}
	}
	return false
}

func (e *Expression) IsUnsigned() bool { return e.base().Unsigned }

func (e *Expression) IsInteger() bool { return e.base().Integer }

// ElementSize returns the size in bytes of the data the expression refers
// to: the pointee for pointer expressions, the value itself otherwise,
// multiplied by the element count when one is set.
func (e *Expression) ElementSize() int {
	size := e.base().Size
	if len(e.nodes) > 1 {
		size = e.nodes[len(e.nodes)-2].Size
	}
	if c := e.ElementCount(); c > 0 {
		size *= c
	}
	return size
}

// StackSize returns how many bytes the value occupies when passed as an
// argument.
func (e *Expression) StackSize() int {
	tn := e.last()
	switch {
	case tn.Elements > 0 || tn.Pointer:
		return PointerSize
	case !tn.Integer:
		return tn.Size
	case tn.Size < 4:
		return 4
	default:
		return tn.Size
	}
}

// FormatString returns a printf verb suitable for the value.
func (e *Expression) FormatString() string {
	tn := e.last()
	switch {
	case tn.Pointer:
		return "%p"
	case !tn.Integer:
		return "%f"
	case tn.Unsigned:
		return "%u"
	default:
		return "%d"
	}
}
