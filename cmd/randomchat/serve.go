package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/randomchat/internal/server"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TCP chat server",
	Long: `Start a TCP server that pairs connected clients for anonymous
one-on-one chats inside topic rooms.

Each connection gets a command loop; after //command:START<room name>
the client waits to be matched with another user from the same room.
Finished conversations are recorded (room, nicknames, duration) in the
chat database. Message contents are never stored.

Examples:
  randomchat serve                       # Listen on the configured address
  randomchat serve --addr :7000          # Listen on port 7000
  randomchat serve --config ./chat.yaml  # Use a custom config
  randomchat serve --db ./chats.db       # Use a specific database

Users can connect with:
  randomchat connect --addr localhost:6000`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (host:port, overrides config)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig(flagServeAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	srv, err := server.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting randomchat server on %s\n", cfg.Server.Address)
	fmt.Printf("Rooms: %d\n", len(cfg.Rooms))
	fmt.Println("Press Ctrl+C to stop")

	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
