package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the API description and print a summary",
	Long: `Load the API description, merge every function and assign offsets.

Fails on malformed XML, invalid attributes, signature mismatches between
aliases, functions missing from the offset table and duplicate offsets.

Examples:
  glapigen validate
  glapigen validate --api src/mapi/glapi/gen/gl_API.xml --static-data static_data.yaml`,
	RunE: runValidate,
}

var validateVerbose bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "list functions per category")
}

func runValidate(cmd *cobra.Command, args []string) error {
	api, cfg, err := loadAPI(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "API: %s\n", cfg.API.Path)
	fmt.Fprintf(out, "Functions: %d\n", len(api.Functions()))
	fmt.Fprintf(out, "Enums: %d\n", len(api.EnumsByName()))
	fmt.Fprintf(out, "Next offset: %d\n", api.NextOffset)
	fmt.Fprintf(out, "Categories: %d\n", len(api.Categories()))
	for _, c := range api.Categories() {
		fns := api.FunctionsByCategory(c.Name)
		abi := 0
		for _, f := range fns {
			if f.IsABI() {
				abi++
			}
		}
		fmt.Fprintf(out, "  - %s: %d functions (%d ABI)\n", c.Name, len(fns), abi)
		if !validateVerbose {
			continue
		}
		for _, f := range fns {
			fmt.Fprintf(out, "      %4d %s\n", f.Offset, f.Name)
		}
	}
	return nil
}
