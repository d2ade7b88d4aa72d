package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docbridge/internal/adapters/driving/watch"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the backend and keep syncing",
	Long: `Opens the sync channel and keeps the local collection live until
interrupted. If a watch directory is configured, files dropped there are
registered as new documents.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	if app == nil {
		return errors.New("services not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := app.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	cmd.Printf("Connected to %s\n", app.SyncConfig().ServerURL)

	if dir := app.SyncConfig().WatchDir; dir != "" {
		watcher := watch.NewWatcher(dir, documentMutator)
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				cmd.PrintErrf("watcher stopped: %v\n", err)
			}
		}()
		cmd.Printf("Watching %s for new documents\n", dir)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
		cmd.Println("\nShutting down...")
	case <-ctx.Done():
	}
	return nil
}
