// Package cli provides the command-line interface for docbridge.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docbridge/internal/core/ports/driven"
	"github.com/custodia-labs/docbridge/internal/core/ports/driving"
	"github.com/custodia-labs/docbridge/internal/core/services"
	"github.com/custodia-labs/docbridge/internal/logger"
	"github.com/custodia-labs/docbridge/internal/runtime"
)

// version is set at build time via ldflags.
var version = "dev"

// Services used by the commands, wired in by configureServices.
var (
	app             *runtime.Services
	docCache        driven.DocumentCache
	syncChannel     driven.Channel
	documentMutator driving.DocumentMutator
	conflictManager driving.ConflictManager
	settingsService *services.SettingsService
)

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "docbridge",
	Short: "Keep a local document collection in sync with a backend",
	Long: `docbridge maintains a live local copy of a remote document collection.
Local changes apply immediately and are confirmed or rolled back by the
backend; remote changes stream in over a websocket channel, with conflict
detection and resolution in between.`,
	SilenceUsage:      true,
	PersistentPreRunE: configureServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Config directory (default ~/.docbridge)")
}

// configureServices builds the application graph before a command runs.
// The version command works without it.
func configureServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd == versionCmd || app != nil {
		return nil
	}

	built, err := runtime.Build(configDir)
	if err != nil {
		return err
	}
	app = built
	docCache = built.Cache()
	syncChannel = built.Channel()
	documentMutator = built.Mutator()
	conflictManager = built.Resolver()
	settingsService = built.Settings()
	return nil
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if app != nil {
			_ = app.Close()
		}
	}()
	return rootCmd.Execute()
}
