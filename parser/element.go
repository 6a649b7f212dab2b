package parser

import (
	"encoding/xml"
	"fmt"

	"github.com/mlwelles/glapigen/model"
)

// Element is a generic XML element. Entity constructors read their
// attributes and children through it.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Element  `xml:",any"`
}

// Attr returns the value of an unqualified attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrDefault returns the attribute value or def when it is absent.
func (e *Element) AttrDefault(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// Bool reads a boolean attribute. Only "true" and "false" are accepted.
func (e *Element) Bool(name string, def bool) (bool, error) {
	v, ok := e.Attr(name)
	if !ok {
		return def, nil
	}
	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: value %q for %q", model.ErrInvalidBool, v, name)
}

// Tag returns the local name of the element.
func (e *Element) Tag() string { return e.XMLName.Local }
