package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlwelles/glapigen/staticdata"
	"github.com/mlwelles/glapigen/typeexpr"
)

var (
	glInt   = typeexpr.NewBase(typeexpr.Node{Name: "GLint", Size: 4, Integer: true})
	glFloat = typeexpr.NewBase(typeexpr.Node{Name: "GLfloat", Size: 4})
)

func param(name string, expr *typeexpr.Expression) *Parameter {
	return &Parameter{Name: name, Expr: expr, CountScale: 1}
}

func decl(name, alias string, params ...*Parameter) *Declaration {
	return &Declaration{
		Name:        name,
		Alias:       alias,
		Desktop:     true,
		ReturnType:  "void",
		Parameters:  params,
		HasChildren: true,
	}
}

func ref(name, alias string) *Declaration {
	return &Declaration{Name: name, Alias: alias, Desktop: true, ReturnType: "void"}
}

func testAllocator() *Allocator {
	return NewAllocator(staticdata.New(10,
		map[string]int{"Foo": 3, "Bar": 4, "Late": 42},
		[]string{"Foo"},
		[]string{"Unused"},
	))
}

func TestMergeAliasWithoutChildren(t *testing.T) {
	f, err := Merge([]*Declaration{
		decl("Foo", "", param("x", glInt)),
		ref("FooEXT", "Foo"),
	}, testAllocator())
	require.NoError(t, err)

	assert.Equal(t, "Foo", f.Name)
	assert.Equal(t, []string{"Foo", "FooEXT"}, f.EntryPoints)
	require.Len(t, f.Parameters, 1)
	assert.Equal(t, "x", f.Parameters[0].Name)

	eps, ok := f.EntryPointParameters["FooEXT"]
	require.True(t, ok)
	assert.Empty(t, eps)
	assert.Len(t, f.EntryPointParameters["Foo"], 1)

	assert.Equal(t, 3, f.Offset)
	assert.True(t, f.IsABI())
	assert.Equal(t, []string{"Foo"}, f.StaticEntryPoints)
}

func TestMergeParameterCountMismatch(t *testing.T) {
	_, err := Merge([]*Declaration{
		decl("Foo", "", param("x", glInt)),
		decl("FooEXT", "Foo", param("x", glInt), param("y", glInt)),
	}, testAllocator())
	assert.ErrorIs(t, err, ErrSignature)
	assert.Contains(t, err.Error(), "FooEXT")
}

func TestMergeReturnTypeMismatch(t *testing.T) {
	alias := decl("FooEXT", "Foo", param("x", glInt))
	alias.ReturnType = "GLint"
	_, err := Merge([]*Declaration{decl("Foo", "", param("x", glInt)), alias}, testAllocator())
	assert.ErrorIs(t, err, ErrSignature)
}

func TestMergeCompatibleParameters(t *testing.T) {
	f, err := Merge([]*Declaration{
		decl("Foo", "", param("x", glInt)),
		decl("FooEXT", "Foo", param("v", glFloat)),
	}, testAllocator())
	require.NoError(t, err)

	assert.Equal(t, "x", f.Parameters[0].Name)
	assert.Equal(t, "v", f.EntryPointParameters["FooEXT"][0].Name)
}

func TestMergeAliasFirstThenCanonical(t *testing.T) {
	f, err := Merge([]*Declaration{
		decl("FooARB", "Foo", param("a", glFloat)),
		decl("Foo", "", param("x", glInt)),
	}, testAllocator())
	require.NoError(t, err)

	assert.Equal(t, "Foo", f.Name)
	assert.Equal(t, []string{"FooARB", "Foo"}, f.EntryPoints)
	assert.Equal(t, "x", f.Parameters[0].Name, "canonical declaration re-establishes the signature")
}

func TestMergeNameRedefined(t *testing.T) {
	_, err := Merge([]*Declaration{
		decl("Foo", ""),
		decl("Bar", ""),
	}, testAllocator())
	assert.ErrorIs(t, err, ErrNameRedefined)
}

func TestMergeEmpty(t *testing.T) {
	_, err := Merge(nil, testAllocator())
	assert.ErrorIs(t, err, ErrNoDeclarations)
}

func TestMergeOffsets(t *testing.T) {
	t.Run("Placeholder", func(t *testing.T) {
		f, err := Merge([]*Declaration{decl("Late", "")}, testAllocator())
		require.NoError(t, err)
		assert.Equal(t, 42, f.Offset)
		assert.True(t, f.AssignOffset)
		assert.False(t, f.IsABI())
	})

	t.Run("MissingDispatched", func(t *testing.T) {
		_, err := Merge([]*Declaration{decl("Nowhere", "")}, testAllocator())
		assert.ErrorIs(t, err, ErrMissingOffset)
	})

	t.Run("MissingSkipped", func(t *testing.T) {
		d := decl("Nowhere", "")
		d.Exec = ExecSkip
		f, err := Merge([]*Declaration{d}, testAllocator())
		require.NoError(t, err)
		assert.Equal(t, -1, f.Offset)
		assert.True(t, f.AssignOffset)
	})

	t.Run("MissingUnused", func(t *testing.T) {
		f, err := Merge([]*Declaration{decl("Unused", "")}, testAllocator())
		require.NoError(t, err)
		assert.True(t, f.AssignOffset)
	})

	t.Run("AliasDoesNotReserve", func(t *testing.T) {
		f, err := Merge([]*Declaration{ref("NowhereEXT", "Foo")}, testAllocator())
		require.NoError(t, err)
		assert.Equal(t, -1, f.Offset)
		assert.False(t, f.AssignOffset)
	})

	t.Run("SkipFromEarlierDeclaration", func(t *testing.T) {
		alias := ref("NowhereEXT", "Nowhere")
		alias.Exec = ExecSkip
		f, err := Merge([]*Declaration{alias, decl("Nowhere", "")}, testAllocator())
		require.NoError(t, err)
		assert.Equal(t, ExecSkip, f.ExecFlavor)
		assert.True(t, f.AssignOffset)
	})
}

func TestMergeMetadata(t *testing.T) {
	first := decl("Foo", "", param("x", glInt))
	first.APIVersions = map[string]decimal.Decimal{"es2": decimal.RequireFromString("3.0")}
	first.NoError = true

	second := ref("FooOES", "Foo")
	second.APIVersions = map[string]decimal.Decimal{
		"es1": decimal.RequireFromString("1.1"),
		"es2": decimal.RequireFromString("2.0"),
	}
	second.Exec = "dynamic"
	dep := decimal.RequireFromString("3.1")
	second.Deprecated = &dep
	second.Desktop = false

	f, err := Merge([]*Declaration{first, second}, testAllocator())
	require.NoError(t, err)

	assert.True(t, f.APIMap["es1"].Equal(decimal.RequireFromString("1.1")))
	assert.True(t, f.APIMap["es2"].Equal(decimal.RequireFromString("2.0")))
	assert.Equal(t, "dynamic", f.ExecFlavor)
	require.NotNil(t, f.Deprecated)
	assert.Equal(t, "3.1", f.Deprecated.String())
	assert.False(t, f.Desktop)
	assert.True(t, f.HasNoErrorVariant, "no_error is sticky once set")
}

func TestMergeDefaults(t *testing.T) {
	f, err := Merge([]*Declaration{decl("Bar", "")}, testAllocator())
	require.NoError(t, err)
	assert.Equal(t, DefaultExecFlavor, f.ExecFlavor)
	assert.True(t, f.Desktop)
	assert.Nil(t, f.Deprecated)
	assert.Empty(t, f.APIMap)
	assert.Equal(t, "void", f.ReturnType)
	assert.Equal(t, "void", f.ParameterString(""))
}

func TestFilterEntryPoints(t *testing.T) {
	build := func(t *testing.T) *Function {
		f, err := Merge([]*Declaration{
			decl("Foo", "", param("x", glInt)),
			decl("FooEXT", "Foo", param("v", glFloat)),
		}, testAllocator())
		require.NoError(t, err)
		return f
	}
	only := func(names ...string) func(string) bool {
		return func(s string) bool {
			for _, n := range names {
				if n == s {
					return true
				}
			}
			return false
		}
	}

	t.Run("KeepCanonical", func(t *testing.T) {
		f := build(t)
		require.NoError(t, f.FilterEntryPoints(only("Foo")))
		assert.Equal(t, "Foo", f.Name)
		assert.Equal(t, []string{"Foo"}, f.EntryPoints)
		assert.NotContains(t, f.EntryPointParameters, "FooEXT")
	})

	t.Run("DropCanonical", func(t *testing.T) {
		f := build(t)
		require.NoError(t, f.FilterEntryPoints(only("FooEXT")))
		assert.Equal(t, "FooEXT", f.Name)
		assert.Equal(t, "v", f.Parameters[0].Name)
		assert.Empty(t, f.StaticEntryPoints)
	})

	t.Run("DropAll", func(t *testing.T) {
		f := build(t)
		assert.ErrorIs(t, f.FilterEntryPoints(only()), ErrNoEntryPoints)
	})

	t.Run("NotInitialized", func(t *testing.T) {
		f, err := Merge([]*Declaration{ref("FooEXT", "Foo")}, testAllocator())
		require.NoError(t, err)
		assert.ErrorIs(t, f.FilterEntryPoints(only("FooEXT")), ErrNotInitialized)
	})
}
