// Package root contains the root command for the application
package root

import (
	"fmt"

	"bkowalczyk/pnl-csv/internal/config"
	"bkowalczyk/pnl-csv/internal/container"
	"bkowalczyk/pnl-csv/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
}

var (
	// App holds the wired application dependencies. It is built once in the
	// root PersistentPreRunE and shared by all subcommands.
	App *container.Container

	// Log is the shared logger instance for commands. It is replaced by the
	// configured logger once the container is built.
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// SharedFlags are common flags accessible to all commands
	SharedFlags = CommonFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "pnl-csv",
		Short: "Process bank CSV exports into categorized profit-and-loss records.",
		Long: `pnl-csv reads CSV exports from any bank, infers the column layout,
converts amounts to the reporting currency and categorizes every operation
using stored rules with an AI or keyword fallback.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to pnl-csv!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.InitializeConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			app, err := container.NewContainer(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initializing application: %w", err)
			}

			App = app
			Log = app.GetLogger()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if App != nil {
				if err := App.Close(); err != nil {
					Log.WithError(err).Warn("Failed to close application cleanly")
				}
			}
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input CSV file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output CSV file (default stdout)")
}
