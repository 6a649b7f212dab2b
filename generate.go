package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlwelles/glapigen/generator"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Write the YAML manifest of functions, categories and enums",
	Long: `Write the YAML manifest of the finalized API. Functions are listed in
offset order with their entry points, category and ABI status.

Examples:
  glapigen manifest
  glapigen manifest -o glapi_manifest.yaml`,
	RunE: runManifest,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the manifest and the dispatch table header",
	RunE:  runGenerate,
}

var (
	manifestOutput string
	generateOutput string
)

func init() {
	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(generateCmd)

	manifestCmd.Flags().StringVarP(&manifestOutput, "output", "o", "", "output file (default: stdout)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", ".", "output directory")
}

func runManifest(cmd *cobra.Command, args []string) error {
	api, _, err := loadAPI(cmd)
	if err != nil {
		return err
	}

	if manifestOutput == "" {
		return generator.WriteManifest(api, cmd.OutOrStdout())
	}

	f, err := os.Create(manifestOutput)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	if err := generator.WriteManifest(api, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	api, _, err := loadAPI(cmd)
	if err != nil {
		return err
	}
	if err := generator.Generate(api, generateOutput); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated %s and %s in %s\n", generator.ManifestFile, generator.TableFile, generateOutput)
	return nil
}
