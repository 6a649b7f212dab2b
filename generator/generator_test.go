package generator

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mlwelles/glapigen/model"
	"github.com/mlwelles/glapigen/parser"
	"github.com/mlwelles/glapigen/staticdata"
)

var update = flag.Bool("update", false, "update golden files")

// thisDir returns the directory holding this test file.
func thisDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Dir(thisFile)
}

// goldenDir returns the path to the golden test data directory.
func goldenDir(t *testing.T) string {
	t.Helper()
	return filepath.Join(thisDir(t), "testdata", "golden")
}

// loadAPI parses the API description shared with the parser tests.
func loadAPI(t *testing.T) *model.API {
	t.Helper()
	dir := filepath.Join(filepath.Dir(thisDir(t)), "parser", "testdata")
	table, err := staticdata.Load(filepath.Join(dir, "static_data.yaml"))
	require.NoError(t, err)
	api, err := parser.Parse(filepath.Join(dir, "gl_API.xml"), table, parser.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	return api
}

func TestGenerate(t *testing.T) {
	api := loadAPI(t)

	tmpDir := t.TempDir()
	require.NoError(t, Generate(api, tmpDir))

	golden := goldenDir(t)

	if *update {
		t.Log("Updating golden files...")
		require.NoError(t, os.MkdirAll(golden, 0o755))
		data, err := os.ReadFile(filepath.Join(tmpDir, TableFile))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(golden, TableFile), data, 0o644))
		t.Log("Golden files updated.")
		return
	}

	goldenData, err := os.ReadFile(filepath.Join(golden, TableFile))
	require.NoError(t, err, "run with -update to create golden files")
	generatedData, err := os.ReadFile(filepath.Join(tmpDir, TableFile))
	require.NoError(t, err)

	if string(goldenData) != string(generatedData) {
		t.Errorf("generated output differs from golden file %s", TableFile)
		goldenLines := strings.Split(string(goldenData), "\n")
		generatedLines := strings.Split(string(generatedData), "\n")
		maxLines := max(len(goldenLines), len(generatedLines))
		diffCount := 0
		for i := 0; i < maxLines; i++ {
			var gl, genl string
			if i < len(goldenLines) {
				gl = goldenLines[i]
			}
			if i < len(generatedLines) {
				genl = generatedLines[i]
			}
			if gl != genl {
				if diffCount < 10 {
					t.Errorf("  line %d:\n    golden:    %q\n    generated: %q", i+1, gl, genl)
				}
				diffCount++
			}
		}
		if diffCount > 10 {
			t.Errorf("  ... and %d more differences", diffCount-10)
		}
	}
}

func TestGenerateOutputFiles(t *testing.T) {
	api := loadAPI(t)

	tmpDir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, Generate(api, tmpDir))

	for _, f := range []string{ManifestFile, TableFile} {
		t.Run(f, func(t *testing.T) {
			info, err := os.Stat(filepath.Join(tmpDir, f))
			require.NoError(t, err)
			assert.NotZero(t, info.Size())
		})
	}
}

func TestGenerateHeader(t *testing.T) {
	api := loadAPI(t)

	tmpDir := t.TempDir()
	require.NoError(t, Generate(api, tmpDir))

	headers := map[string]string{
		ManifestFile: "# Code generated by glapigen. DO NOT EDIT.",
		TableFile:    "/* Code generated by glapigen. DO NOT EDIT. */",
	}
	for name, header := range headers {
		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(tmpDir, name))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), header), "file %s does not start with expected header", name)
		})
	}
}

func TestGenerateRequiresFinalizedAPI(t *testing.T) {
	api := model.NewAPI(staticdata.New(0, nil, nil, nil))

	assert.ErrorIs(t, Generate(api, t.TempDir()), ErrNotFinalized)
	assert.ErrorIs(t, WriteManifest(api, &bytes.Buffer{}), ErrNotFinalized)
	assert.ErrorIs(t, WriteTable(api, &bytes.Buffer{}), ErrNotFinalized)
}

func TestWriteManifest(t *testing.T) {
	api := loadAPI(t)

	var buf bytes.Buffer
	require.NoError(t, WriteManifest(api, &buf))

	var m Manifest
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, BuildManifest(api), m)

	assert.Equal(t, 374, m.NextOffset)
	require.Len(t, m.Functions, 11)
	for i := 1; i < len(m.Functions); i++ {
		assert.Less(t, m.Functions[i-1].Offset, m.Functions[i].Offset)
	}

	var categories []string
	for _, c := range m.Categories {
		categories = append(categories, c.Name+":"+c.Bucket)
	}
	assert.Equal(t, []string{
		"1.0:core", "1.2:core",
		"GL_ARB_multitexture:arb",
		"GL_EXT_texture3D:numbered", "GL_APPLE_vertex_array_object:numbered",
		"GL_OES_fixed_point:unnumbered",
	}, categories)
}

func TestBuildManifestFunctions(t *testing.T) {
	m := BuildManifest(loadAPI(t))

	byName := make(map[string]FunctionEntry, len(m.Functions))
	for _, f := range m.Functions {
		byName[f.Name] = f
	}

	newList := byName["NewList"]
	assert.Equal(t, FunctionEntry{
		Name:        "NewList",
		Category:    "1.0",
		Offset:      0,
		ABI:         true,
		Dispatch:    "NewList",
		EntryPoints: []string{"NewList"},
		Static:      []string{"NewList"},
		ReturnType:  "void",
		Parameters:  []string{"GLuint list", "GLenum mode"},
		Exec:        model.DefaultExecFlavor,
		Desktop:     true,
	}, newList)

	active := byName["ActiveTexture"]
	assert.Equal(t, []string{"ActiveTexture", "ActiveTextureARB"}, active.EntryPoints)
	assert.Equal(t, "3.1", active.Deprecated)
	assert.Equal(t, map[string]string{"es1": "1", "es2": "2"}, active.APIs)

	texImage3D := byName["TexImage3D"]
	assert.False(t, texImage3D.ABI)
	assert.Equal(t, "_dispatch_stub_371", texImage3D.Dispatch)
	assert.Equal(t, "1.2", texImage3D.Category)

	oes := byName["ClearDepthxOES"]
	assert.Equal(t, model.ExecSkip, oes.Exec)
	assert.False(t, oes.Desktop)
	assert.Equal(t, 373, oes.Offset)

	assert.True(t, byName["ClientActiveTexture"].NoError)
}

func TestBuildManifestEnums(t *testing.T) {
	m := BuildManifest(loadAPI(t))

	require.Len(t, m.Enums, 7)
	assert.Equal(t, EnumEntry{Name: "COLOR_BUFFER_BIT", Value: "0x4000", Count: -1, Category: "1.0"}, m.Enums[0])
	assert.Equal(t, EnumEntry{Name: "LIGHT_MODEL_AMBIENT", Value: "0x0B53", Count: 4, Category: "1.0"}, m.Enums[1])
	assert.Equal(t, EnumEntry{Name: "TEXTURE_3D_EXT", Value: "0x806F", Count: -1, Category: "GL_EXT_texture3D"}, m.Enums[6])
}
