package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage docbridge configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective sync settings",
	RunE:  runConfigShow,
}

var configSetServerCmd = &cobra.Command{
	Use:   "set-server [url]",
	Short: "Set the backend websocket endpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetServer,
}

var configSetTokenCmd = &cobra.Command{
	Use:   "set-token [token]",
	Short: "Set the bearer token presented on dial",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetToken,
}

var configSetWatchCmd = &cobra.Command{
	Use:   "set-watch [dir]",
	Short: "Set the directory watched for new documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetWatch,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetServerCmd)
	configCmd.AddCommand(configSetTokenCmd)
	configCmd.AddCommand(configSetWatchCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	s := settingsService.SyncSettings()
	cmd.Printf("Server:              %s\n", s.ServerURL)
	if s.AuthToken != "" {
		cmd.Println("Auth token:          (set)")
	} else {
		cmd.Println("Auth token:          (none)")
	}
	cmd.Printf("Heartbeat:           %s\n", s.HeartbeatInterval)
	cmd.Printf("Reconnect base:      %s\n", s.ReconnectBaseDelay)
	cmd.Printf("Reconnect attempts:  %d\n", s.MaxReconnectAttempts)
	if s.WatchDir != "" {
		cmd.Printf("Watch directory:     %s\n", s.WatchDir)
	}
	return nil
}

func runConfigSetServer(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetServerURL(args[0]); err != nil {
		return fmt.Errorf("set server: %w", err)
	}
	cmd.Printf("Server set to %s\n", args[0])
	return nil
}

func runConfigSetToken(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetAuthToken(args[0]); err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	cmd.Println("Token updated")
	return nil
}

func runConfigSetWatch(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetWatchDir(args[0]); err != nil {
		return fmt.Errorf("set watch dir: %w", err)
	}
	cmd.Printf("Watch directory set to %s\n", args[0])
	return nil
}
