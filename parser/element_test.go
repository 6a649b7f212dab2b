package parser

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlwelles/glapigen/model"
)

func decodeElement(t *testing.T, s string) *Element {
	t.Helper()
	var el Element
	require.NoError(t, xml.Unmarshal([]byte(s), &el))
	return &el
}

func TestElementAttributes(t *testing.T) {
	el := decodeElement(t, `<function xmlns:xi="http://www.w3.org/2001/XInclude" name="Foo" desktop="false"><param name="x"/></function>`)

	assert.Equal(t, "function", el.Tag())
	name, ok := el.Attr("name")
	assert.True(t, ok)
	assert.Equal(t, "Foo", name)
	_, ok = el.Attr("xi")
	assert.False(t, ok)
	assert.Equal(t, "none", el.AttrDefault("es2", "none"))
	require.Len(t, el.Children, 1)
	assert.Equal(t, "param", el.Children[0].Tag())
}

func TestElementBool(t *testing.T) {
	el := decodeElement(t, `<param a="true" b="false" c="True" d="1"/>`)

	tests := []struct {
		attr    string
		def     bool
		want    bool
		wantErr bool
	}{
		{"a", false, true, false},
		{"b", true, false, false},
		{"missing", true, true, false},
		{"missing", false, false, false},
		{"c", false, false, true},
		{"d", false, false, true},
	}
	for _, tt := range tests {
		got, err := el.Bool(tt.attr, tt.def)
		if tt.wantErr {
			assert.ErrorIs(t, err, model.ErrInvalidBool, tt.attr)
			continue
		}
		require.NoError(t, err, tt.attr)
		assert.Equal(t, tt.want, got, tt.attr)
	}
}
