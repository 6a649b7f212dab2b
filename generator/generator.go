// Package generator writes dispatch artifacts for a finalized model.API:
// a YAML manifest of functions, categories and enums, and the C dispatch
// table header.
package generator

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/mlwelles/glapigen/model"
)

const (
	ManifestFile = "glapi_manifest.yaml"
	TableFile    = "glapitable.h"

	manifestHeader = "# Code generated by glapigen. DO NOT EDIT.\n"
)

var ErrNotFinalized = errors.New("api is not finalized")

//go:embed templates/*.tmpl
var templateFS embed.FS

var tableTemplate = template.Must(template.ParseFS(templateFS, "templates/glapitable.h.tmpl"))

// Generate writes every artifact into outputDir, creating it if needed.
func Generate(api *model.API, outputDir string) error {
	if !api.Finalized() {
		return ErrNotFinalized
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	outputs := []struct {
		name  string
		write func(*model.API, io.Writer) error
	}{
		{ManifestFile, WriteManifest},
		{TableFile, WriteTable},
	}
	for _, o := range outputs {
		var buf bytes.Buffer
		if err := o.write(api, &buf); err != nil {
			return fmt.Errorf("generating %s: %w", o.name, err)
		}
		if err := os.WriteFile(filepath.Join(outputDir, o.name), buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", o.name, err)
		}
	}
	return nil
}

// WriteManifest encodes the manifest of api as YAML.
func WriteManifest(api *model.API, w io.Writer) error {
	if !api.Finalized() {
		return ErrNotFinalized
	}
	if _, err := io.WriteString(w, manifestHeader); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(BuildManifest(api)); err != nil {
		return err
	}
	return enc.Close()
}

type tableEntry struct {
	Name       string
	ReturnType string
	Parameters string
	Offset     int
}

// WriteTable renders the dispatch table header, one slot per function in
// offset order.
func WriteTable(api *model.API, w io.Writer) error {
	if !api.Finalized() {
		return ErrNotFinalized
	}
	data := struct {
		NextOffset int
		Functions  []tableEntry
	}{NextOffset: api.NextOffset}

	for _, f := range api.FunctionsByOffset() {
		data.Functions = append(data.Functions, tableEntry{
			Name:       f.Name,
			ReturnType: f.ReturnType,
			Parameters: f.ParameterString(""),
			Offset:     f.Offset,
		})
	}
	return tableTemplate.Execute(w, data)
}
