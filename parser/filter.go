package parser

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/mlwelles/glapigen/model"
)

// applyFilters applies post-merge rules to the API before offsets are
// finalized.
//
// Rules:
//
//   - Entry points: when patterns is non-empty, only entry points matching
//     at least one glob survive. A function whose canonical name is dropped
//     is renamed to its first surviving alias; a function left with no entry
//     points is an error.
func applyFilters(api *model.API, patterns []string) error {
	if len(patterns) == 0 {
		return nil
	}
	allow, err := compileEntryPointFilter(patterns)
	if err != nil {
		return err
	}
	return api.FilterEntryPoints(allow)
}

// compileEntryPointFilter returns a predicate matching any of patterns.
func compileEntryPointFilter(patterns []string) (func(string) bool, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("entry point pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return func(name string) bool {
		for _, g := range globs {
			if g.Match(name) {
				return true
			}
		}
		return false
	}, nil
}
