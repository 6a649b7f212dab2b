package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlwelles/glapigen/config"
	"github.com/mlwelles/glapigen/model"
	"github.com/mlwelles/glapigen/parser"
	"github.com/mlwelles/glapigen/staticdata"
)

var (
	// Global flags
	cfgFile        string
	apiPath        string
	staticDataPath string
	entryPoints    []string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "glapigen",
	Short: "Build the GL dispatch model from the API XML description",
	Long: `glapigen loads gl_API.xml and everything it includes, merges the
declarations of each function, and assigns dispatch table offsets using the
legacy offset table.

Commands:
  glapigen validate            # Load the API and print a summary
  glapigen manifest -o FILE    # Write the YAML manifest
  glapigen generate -o DIR     # Write the manifest and dispatch table header`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "glapigen.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&apiPath, "api", "", "API description (overrides config)")
	rootCmd.PersistentFlags().StringVar(&staticDataPath, "static-data", "", "legacy offset table (overrides config)")
	rootCmd.PersistentFlags().StringSliceVar(&entryPoints, "entry-points", nil, "entry point globs to keep (overrides config)")
}

// loadConfig reads the config file, falling back to the environment, and
// applies command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, err
	}
	if apiPath != "" {
		cfg.API.Path = apiPath
	}
	if staticDataPath != "" {
		cfg.StaticData.Path = staticDataPath
	}
	if len(entryPoints) > 0 {
		cfg.EntryPoints.Include = entryPoints
	}
	return cfg, nil
}

// loadAPI builds the finalized API described by the configuration.
func loadAPI(cmd *cobra.Command) (*model.API, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := config.NewLogger(cfg.Logging, cmd.ErrOrStderr())

	table, err := staticdata.Load(cfg.StaticData.Path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug().
		Str("path", cfg.StaticData.Path).
		Int("max_offset", table.MaxOffset).
		Int("offsets", len(table.Offsets)).
		Msg("loaded offset table")

	api, err := parser.Parse(cfg.API.Path, table, parser.Options{
		Logger:       logger,
		VersionOrder: cfg.VersionOrder(),
		EntryPoints:  cfg.EntryPoints.Include,
	})
	if err != nil {
		return nil, nil, err
	}
	return api, cfg, nil
}
