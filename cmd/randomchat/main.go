// randomchat is an anonymous topic-room chat matchmaker for the terminal.
//
// Usage:
//
//	randomchat serve             - Start the TCP chat server
//	randomchat connect           - Connect to a server and start chatting
//	randomchat rooms             - List the configured topic rooms
//	randomchat history           - Show recent conversation records
//
// Global flags:
//
//	--config <path>  - Path to a custom config YAML
//	--db <path>      - Path to the chat database (default: ~/.randomchat/chats.db)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/randomchat/internal/config"
)

var (
	// Global flags
	flagConfig string
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "randomchat",
	Short: "Randomchat - Anonymous topic-room chats in your terminal",
	Long: `Randomchat pairs strangers for one-on-one chats inside named topic
rooms. Clients join a room, get matched with a random waiting user and
talk until one side stops, rerolls or disconnects.

Available commands:
  serve    - Start the TCP chat server
  connect  - Connect to a running server
  rooms    - List the configured topic rooms
  history  - View recent conversation records

Examples:
  randomchat serve
  randomchat serve --addr :7000
  randomchat connect --addr chat.example.com:6000
  randomchat history --limit 30`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to chat database (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(roomsCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig loads the configuration and applies global flag overrides.
func loadConfig(addrOverride string) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if addrOverride != "" {
		cfg.Server.Address = addrOverride
	}
	if flagDBPath != "" {
		cfg.Server.DBPath = flagDBPath
	}
	return cfg, nil
}
