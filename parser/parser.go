// Package parser reads a GL API description from XML and builds a finalized
// model.API. A description is a tree of OpenGLAPI elements holding
// categories, nested OpenGLAPI elements and XInclude directives; included
// files are parsed as if their contents appeared in place of the directive.
package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/mlwelles/glapigen/model"
)

const (
	rootTag     = "OpenGLAPI"
	xincludeNS  = "http://www.w3.org/2001/XInclude"
	includeTag  = "include"
	categoryTag = "category"

	// maxIncludeDepth bounds nested XIncludes so that a self-including file
	// fails with an error instead of exhausting the stack.
	maxIncludeDepth = 64
)

var ErrIncludeDepth = errors.New("include depth exceeded")

// Options configures Parse.
type Options struct {
	Factory      *Factory // Entity constructors; DefaultFactory when nil
	Logger       zerolog.Logger
	VersionOrder model.VersionOrder
	EntryPoints  []string // Glob patterns of entry points to keep; empty keeps all
}

// Parse loads the description rooted at path, merges function declarations,
// applies the entry point filter and assigns dispatch offsets. The returned
// API is finalized.
func Parse(path string, table model.OffsetTable, opts Options) (*model.API, error) {
	api := model.NewAPI(table,
		model.WithLogger(opts.Logger),
		model.WithVersionOrder(opts.VersionOrder),
	)

	factory := DefaultFactory()
	if opts.Factory != nil {
		factory = *opts.Factory
	}

	l := NewLoader(api, factory, opts.Logger)
	if err := l.ParseFile(path); err != nil {
		return nil, err
	}
	if err := api.Merge(); err != nil {
		return nil, err
	}
	if err := applyFilters(api, opts.EntryPoints); err != nil {
		return nil, err
	}
	if err := api.Finalize(); err != nil {
		return nil, err
	}

	opts.Logger.Info().
		Int("files", l.files).
		Int("functions", len(api.Functions())).
		Int("enums", len(api.EnumsByName())).
		Int("next_offset", api.NextOffset).
		Msg("loaded api")
	return api, nil
}

// Loader feeds XML elements into an API that is still being built.
type Loader struct {
	api     *model.API
	factory Factory
	logger  zerolog.Logger
	depth   int
	files   int
}

func NewLoader(api *model.API, factory Factory, logger zerolog.Logger) *Loader {
	return &Loader{api: api, factory: factory, logger: logger}
}

// ParseFile reads path and processes its root element. Files whose root is
// not OpenGLAPI are ignored.
func (l *Loader) ParseFile(path string) error {
	if l.depth >= maxIncludeDepth {
		return fmt.Errorf("%s: %w", path, ErrIncludeDepth)
	}
	l.depth++
	defer func() { l.depth-- }()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open api file: %w", err)
	}
	defer f.Close()

	var root Element
	if err := xml.NewDecoder(f).Decode(&root); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	l.files++

	if root.XMLName.Local != rootTag {
		l.logger.Debug().Str("file", path).Str("root", root.XMLName.Local).Msg("skipping file without api root")
		return nil
	}
	l.logger.Debug().Str("file", path).Int("depth", l.depth).Msg("parsing api file")
	return l.processAPI(path, &root)
}

func (l *Loader) processAPI(path string, el *Element) error {
	for i := range el.Children {
		child := &el.Children[i]
		switch {
		case child.XMLName.Space == xincludeNS && child.XMLName.Local == includeTag:
			href, ok := child.Attr("href")
			if !ok {
				return fmt.Errorf("%s: include without href", path)
			}
			if err := l.ParseFile(filepath.Join(filepath.Dir(path), href)); err != nil {
				return fmt.Errorf("%s: include %s: %w", path, href, err)
			}
		case child.XMLName.Local == rootTag:
			if err := l.processAPI(path, child); err != nil {
				return err
			}
		case child.XMLName.Local == categoryTag:
			if err := l.processCategory(path, child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loader) processCategory(path string, el *Element) error {
	name, _ := el.Attr("name")
	cat := model.Category{Name: name}
	if s, ok := el.Attr("number"); ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%s: category %s: %w: number %q", path, name, model.ErrInvalidAttribute, s)
		}
		cat.Number = &n
	}
	if err := l.api.AddCategory(cat); err != nil {
		return err
	}

	for i := range el.Children {
		child := &el.Children[i]
		if err := l.processItem(cat, child); err != nil {
			childName, _ := child.Attr("name")
			return fmt.Errorf("%s: category %s: %s %s: %w", path, name, child.XMLName.Local, childName, err)
		}
	}
	return nil
}

func (l *Loader) processItem(cat model.Category, el *Element) error {
	switch el.XMLName.Local {
	case "function":
		d, err := l.factory.NewDeclaration(el, cat, &l.factory, l.api)
		if err != nil {
			return err
		}
		return l.api.AddDeclaration(d)
	case "enum":
		e, err := l.factory.NewEnum(el, cat)
		if err != nil {
			return err
		}
		return l.api.AddEnum(e)
	case "type":
		t, err := l.factory.NewType(el, cat)
		if err != nil {
			return err
		}
		return l.api.AddType(t)
	}
	return nil
}
