package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection and sync state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if syncChannel == nil || docCache == nil || conflictManager == nil {
		return errors.New("services not configured")
	}

	info := syncChannel.Info()
	cmd.Printf("Connection: %s\n", info.State)
	if info.ReconnectAttempts > 0 {
		cmd.Printf("  Reconnect attempts: %d\n", info.ReconnectAttempts)
	}
	if !info.LastSyncAt.IsZero() {
		cmd.Printf("  Last sync: %s\n", info.LastSyncAt.Format("2006-01-02 15:04:05"))
	}

	cmd.Printf("Documents: %d\n", len(docCache.ListDocuments()))

	pending := docCache.PendingOperations("")
	cmd.Printf("Pending operations: %d\n", len(pending))
	for _, op := range pending {
		cmd.Printf("  %s %s %s\n", op.ID, op.Kind, op.DocumentID)
	}

	stats := conflictManager.Stats()
	cmd.Printf("Conflicts: %d active, %d resolved\n", stats.Active, stats.Resolved)
	return nil
}
