package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mlwelles/glapigen/model"
	"github.com/mlwelles/glapigen/typeexpr"
)

// apiTags are the attributes of <function> holding the first version of an
// API that has the function.
var apiTags = []string{"es1", "es2"}

// Factory is the table of entity constructors used by the loader. Replace
// individual entries to build alternate representations.
type Factory struct {
	NewType        func(el *Element, cat model.Category) (*model.Type, error)
	NewEnum        func(el *Element, cat model.Category) (*model.Enum, error)
	NewParameter   func(el *Element, types typeexpr.Resolver) (*model.Parameter, error)
	NewDeclaration func(el *Element, cat model.Category, f *Factory, types typeexpr.Resolver) (*model.Declaration, error)
}

// DefaultFactory returns the standard constructors.
func DefaultFactory() Factory {
	return Factory{
		NewType:        NewType,
		NewEnum:        NewEnum,
		NewParameter:   NewParameter,
		NewDeclaration: NewDeclaration,
	}
}

// NewType parses <type name size float unsigned pointer>.
func NewType(el *Element, cat model.Category) (*model.Type, error) {
	name, _ := el.Attr("name")
	size, err := strconv.ParseInt(el.AttrDefault("size", ""), 0, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: size: %v", model.ErrInvalidAttribute, err)
	}

	t := &model.Type{Name: name, Category: cat, Size: int(size)}
	if t.Float, err = el.Bool("float", false); err != nil {
		return nil, err
	}
	if t.Unsigned, err = el.Bool("unsigned", false); err != nil {
		return nil, err
	}
	if t.Pointer, err = el.Bool("pointer", false); err != nil {
		return nil, err
	}

	t.Expr = typeexpr.NewBase(typeexpr.Node{
		Name:     t.GLName(),
		Size:     t.Size,
		Integer:  !t.Float,
		Unsigned: t.Unsigned,
		Pointer:  t.Pointer,
	})
	return t, nil
}

// NewEnum parses <enum name value count>. A missing count or "?" means the
// count is unknown.
func NewEnum(el *Element, cat model.Category) (*model.Enum, error) {
	name, _ := el.Attr("name")
	value, err := parseEnumValue(el.AttrDefault("value", ""))
	if err != nil {
		return nil, err
	}

	e := &model.Enum{Name: name, Category: cat, Value: value, DefaultCount: -1}
	if c := el.AttrDefault("count", ""); c != "" && c != "?" {
		n, err := strconv.Atoi(c)
		if err != nil {
			return nil, fmt.Errorf("%w: count %q for enum %s, expected an integer", model.ErrInvalidCount, c, name)
		}
		e.DefaultCount = n
	}
	return e, nil
}

// parseEnumValue accepts decimal, octal and hex literals. Values that only
// fit unsigned 64 bits, like GL_TIMEOUT_IGNORED, keep their bit pattern.
func parseEnumValue(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err == nil {
		return v, nil
	}
	u, uerr := strconv.ParseUint(s, 0, 64)
	if uerr != nil {
		return 0, fmt.Errorf("%w: value %q: %v", model.ErrInvalidAttribute, s, err)
	}
	return int64(u), nil
}

// NewParameter parses a <param> element. The count attribute is either a
// literal element count or the name of the parameter holding the count.
func NewParameter(el *Element, types typeexpr.Resolver) (*model.Parameter, error) {
	name, _ := el.Attr("name")
	typ, ok := el.Attr("type")
	if !ok {
		return nil, fmt.Errorf("%w: parameter %s has no type", model.ErrInvalidAttribute, name)
	}
	expr, err := typeexpr.Parse(typ, types)
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", name, err)
	}

	p := &model.Parameter{Name: name, Expr: expr}
	if v, ok := el.Attr("variable_param"); ok {
		p.CountParameterList = strings.Fields(v)
	}

	count := 1
	if c, ok := el.Attr("count"); ok {
		if n, err := strconv.Atoi(c); err == nil {
			count = n
			p.Count = n
		} else {
			p.Counter = c
		}
	}

	p.CountScale, err = strconv.Atoi(el.AttrDefault("count_scale", "1"))
	if err != nil {
		return nil, fmt.Errorf("%w: count_scale for parameter %s: %v", model.ErrInvalidCount, name, err)
	}

	elements := count * p.CountScale
	if elements == 1 {
		elements = 0
	}
	p.Expr.SetElements(elements)

	flags := []struct {
		attr string
		dst  *bool
	}{
		{"client_only", &p.ClientOnly},
		{"counter", &p.IsCounter},
		{"output", &p.IsOutput},
		{"padding", &p.IsPadding},
		{"img_pad_dimensions", &p.Image.PadDimensions},
		{"img_null_flag", &p.Image.NullFlag},
		{"img_send_null", &p.Image.SendNull},
	}
	for _, f := range flags {
		if *f.dst, err = el.Bool(f.attr, false); err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
	}

	img := &p.Image
	img.Width = el.AttrDefault("img_width", "")
	img.Height = el.AttrDefault("img_height", "")
	img.Depth = el.AttrDefault("img_depth", "")
	img.Extent = el.AttrDefault("img_extent", "")
	img.XOff = el.AttrDefault("img_xoff", "")
	img.YOff = el.AttrDefault("img_yoff", "")
	img.ZOff = el.AttrDefault("img_zoff", "")
	img.WOff = el.AttrDefault("img_woff", "")
	img.Format = el.AttrDefault("img_format", "")
	img.Type = el.AttrDefault("img_type", "")
	img.Target = el.AttrDefault("img_target", "")
	return p, nil
}

// NewDeclaration parses one <function> element into a raw declaration.
// Parameters are built with f.NewParameter.
func NewDeclaration(el *Element, cat model.Category, f *Factory, types typeexpr.Resolver) (*model.Declaration, error) {
	name, _ := el.Attr("name")
	alias, _ := el.Attr("alias")
	d := &model.Declaration{
		Name:        name,
		Alias:       alias,
		Category:    cat,
		APIVersions: make(map[string]decimal.Decimal),
		Exec:        el.AttrDefault("exec", ""),
		ReturnType:  "void",
		HasChildren: len(el.Children) > 0,
	}

	for _, api := range apiTags {
		v := el.AttrDefault(api, "none")
		if v == "none" {
			continue
		}
		dec, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s version %q", model.ErrInvalidAttribute, api, v)
		}
		d.APIVersions[api] = dec
	}

	if v := el.AttrDefault("deprecated", "none"); v != "none" {
		dec, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("%w: deprecated version %q", model.ErrInvalidAttribute, v)
		}
		d.Deprecated = &dec
	}

	var err error
	if d.Desktop, err = el.Bool("desktop", true); err != nil {
		return nil, err
	}
	if d.NoError, err = el.Bool("no_error", false); err != nil {
		return nil, err
	}

	for i := range el.Children {
		child := &el.Children[i]
		switch child.Tag() {
		case "return":
			d.ReturnType = child.AttrDefault("type", "void")
		case "param":
			p, err := f.NewParameter(child, types)
			if err != nil {
				return nil, err
			}
			d.Parameters = append(d.Parameters, p)
		}
	}
	return d, nil
}
