package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docbridge/internal/core/domain"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Inspect and resolve sync conflicts",
}

var conflictsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active conflicts",
	RunE:  runConflictsList,
}

var conflictsResolveCmd = &cobra.Command{
	Use:   "resolve [conflict-id]",
	Short: "Resolve one conflict",
	Args:  cobra.ExactArgs(1),
	RunE:  runConflictsResolve,
}

var conflictsResolveAllCmd = &cobra.Command{
	Use:   "resolve-all",
	Short: "Resolve every active conflict with one strategy",
	RunE:  runConflictsResolveAll,
}

var conflictsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past resolutions",
	RunE:  runConflictsHistory,
}

// Flags for conflict resolution.
var (
	resolveStrategy string
	resolveData     string
	historyLimit    int
)

func init() {
	conflictsResolveCmd.Flags().StringVarP(&resolveStrategy, "strategy", "s", "", "accept_local, accept_remote, merge_changes or user_resolve")
	conflictsResolveCmd.Flags().StringVarP(&resolveData, "data", "d", "", "Resolved fields as JSON (user_resolve)")
	conflictsResolveAllCmd.Flags().StringVarP(&resolveStrategy, "strategy", "s", "", "Strategy applied to every conflict")
	conflictsHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum records shown")

	conflictsCmd.AddCommand(conflictsListCmd)
	conflictsCmd.AddCommand(conflictsResolveCmd)
	conflictsCmd.AddCommand(conflictsResolveAllCmd)
	conflictsCmd.AddCommand(conflictsHistoryCmd)
	rootCmd.AddCommand(conflictsCmd)
}

func runConflictsList(cmd *cobra.Command, _ []string) error {
	if conflictManager == nil {
		return errors.New("conflict service not configured")
	}

	conflicts := conflictManager.ActiveConflicts()
	if len(conflicts) == 0 {
		cmd.Println("No active conflicts.")
		return nil
	}

	for i := range conflicts {
		c := &conflicts[i]
		cmd.Printf("  %s\n", c.ID)
		cmd.Printf("    Type:      %s\n", c.Type)
		cmd.Printf("    Document:  %s\n", c.Operation.DocumentID)
		cmd.Printf("    Detected:  %s\n", c.DetectedAt.Format("2006-01-02 15:04:05"))
		cmd.Printf("    Suggested: %s\n", c.Suggested)
		cmd.Printf("    %s\n", c.Description)
		cmd.Println()
	}

	cmd.Printf("Total: %d conflicts\n", len(conflicts))
	return nil
}

func runConflictsResolve(cmd *cobra.Command, args []string) error {
	if conflictManager == nil {
		return errors.New("conflict service not configured")
	}

	strategy, err := parseStrategy(resolveStrategy)
	if err != nil {
		return err
	}

	var resolved domain.Patch
	if resolveData != "" {
		if err := json.Unmarshal([]byte(resolveData), &resolved); err != nil {
			return fmt.Errorf("parse --data: %w", err)
		}
	}

	if err := conflictManager.Resolve(context.Background(), args[0], strategy, resolved); err != nil {
		return fmt.Errorf("resolve conflict: %w", err)
	}

	cmd.Printf("Conflict %s resolved with %s\n", args[0], strategy)
	return nil
}

func runConflictsResolveAll(cmd *cobra.Command, _ []string) error {
	if conflictManager == nil {
		return errors.New("conflict service not configured")
	}

	strategy, err := parseStrategy(resolveStrategy)
	if err != nil {
		return err
	}

	conflicts := conflictManager.ActiveConflicts()
	if len(conflicts) == 0 {
		cmd.Println("No active conflicts.")
		return nil
	}

	ids := make([]string, len(conflicts))
	for i := range conflicts {
		ids[i] = conflicts[i].ID
	}

	result := conflictManager.ResolveBatch(context.Background(), ids, strategy)
	cmd.Printf("Resolved %d conflicts, %d failed\n", result.Succeeded, result.Failed)
	return nil
}

func runConflictsHistory(cmd *cobra.Command, _ []string) error {
	if conflictManager == nil {
		return errors.New("conflict service not configured")
	}

	records, err := conflictManager.History(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(records) == 0 {
		cmd.Println("No resolutions recorded.")
		return nil
	}

	for i := range records {
		r := &records[i]
		cmd.Printf("  %s  %-18s %-14s %s\n",
			r.ResolvedAt.Format("2006-01-02 15:04:05"), r.ConflictType, r.Strategy, r.ConflictID)
	}
	return nil
}

// parseStrategy validates the strategy flag.
func parseStrategy(s string) (domain.ResolutionStrategy, error) {
	switch domain.ResolutionStrategy(s) {
	case domain.StrategyAcceptLocal, domain.StrategyAcceptRemote,
		domain.StrategyMergeChanges, domain.StrategyUserResolve:
		return domain.ResolutionStrategy(s), nil
	case "":
		return "", errors.New("missing --strategy")
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}
