// Package cli defines the command line interface of the catalog
// migration toolkit.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/jpcardozx/nova-ipe-sub022/internal/config"
	"github.com/jpcardozx/nova-ipe-sub022/pkg/logger"
)

// NewRootCmd creates the root command and attaches all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ipe-catalog",
		Short:         "Legacy listing import and catalog migration toolkit",
		Long:          "Imports the legacy WordPress property export into the review store,\nserves the review API and migrates approved listings into the production catalog.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newImportCmd(),
		newServeCmd(),
		newWorkersCmd(),
		newStatsCmd(),
		newCheckpointCmd(),
	)
	return rootCmd
}

// setup loads configuration and initializes logging for a subcommand.
func setup() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSchema returns the schema from the given path, or the built-in
// default when no path is set.
func loadSchema(path string) (*config.ColumnSchema, error) {
	if path == "" {
		return config.DefaultWPLSchema(), nil
	}
	return config.LoadSchema(path)
}
