package generator

import (
	"fmt"

	"github.com/mlwelles/glapigen/model"
)

// Manifest is the serializable summary of a finalized API.
type Manifest struct {
	NextOffset int             `yaml:"next_offset"`
	Categories []CategoryEntry `yaml:"categories"`
	Functions  []FunctionEntry `yaml:"functions"`
	Enums      []EnumEntry     `yaml:"enums"`
}

type CategoryEntry struct {
	Name   string `yaml:"name"`
	Number *int   `yaml:"number,omitempty"`
	Bucket string `yaml:"bucket"`
}

type FunctionEntry struct {
	Name        string            `yaml:"name"`
	Category    string            `yaml:"category"`
	Offset      int               `yaml:"offset"`
	ABI         bool              `yaml:"abi"`
	Dispatch    string            `yaml:"dispatch"`
	EntryPoints []string          `yaml:"entry_points"`
	Static      []string          `yaml:"static,omitempty"`
	ReturnType  string            `yaml:"return"`
	Parameters  []string          `yaml:"parameters,omitempty"`
	Exec        string            `yaml:"exec"`
	Desktop     bool              `yaml:"desktop"`
	NoError     bool              `yaml:"no_error,omitempty"`
	Deprecated  string            `yaml:"deprecated,omitempty"`
	APIs        map[string]string `yaml:"apis,omitempty"`
}

type EnumEntry struct {
	Name     string `yaml:"name"`
	Value    string `yaml:"value"`
	Count    int    `yaml:"count"`
	Category string `yaml:"category"`
}

// BuildManifest collects categories in canonical order, functions in
// offset order and enums by name.
func BuildManifest(api *model.API) Manifest {
	m := Manifest{NextOffset: api.NextOffset}

	for _, c := range api.Categories() {
		m.Categories = append(m.Categories, CategoryEntry{
			Name:   c.Name,
			Number: c.Number,
			Bucket: model.Classify(c.Name, c.Number).Bucket.String(),
		})
	}

	for _, f := range api.FunctionsByOffset() {
		e := FunctionEntry{
			Name:        f.Name,
			Category:    api.CategoryForName(f.Name).Name,
			Offset:      f.Offset,
			ABI:         f.IsABI(),
			Dispatch:    f.DispatchName(),
			EntryPoints: f.EntryPoints,
			Static:      f.StaticEntryPoints,
			ReturnType:  f.ReturnType,
			Exec:        f.ExecFlavor,
			Desktop:     f.Desktop,
			NoError:     f.HasNoErrorVariant,
		}
		for _, p := range f.Parameters {
			e.Parameters = append(e.Parameters, p.String())
		}
		if f.Deprecated != nil {
			e.Deprecated = f.Deprecated.String()
		}
		if len(f.APIMap) > 0 {
			e.APIs = make(map[string]string, len(f.APIMap))
			for tag, v := range f.APIMap {
				e.APIs[tag] = v.String()
			}
		}
		m.Functions = append(m.Functions, e)
	}

	for _, e := range api.EnumsByName() {
		m.Enums = append(m.Enums, EnumEntry{
			Name:     e.Name,
			Value:    fmt.Sprintf("0x%04X", uint64(e.Value)),
			Count:    e.DefaultCount,
			Category: e.Category.Name,
		})
	}
	return m
}
