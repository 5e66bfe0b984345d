package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/randomchat/internal/client"
)

var flagConnectAddr string

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to a chat server",
	Long: `Connect to a running randomchat server and start chatting.

You will be asked for a nickname first. Once connected, type
//command:<HELP> to see the available commands, or join a room with
//command:START<room name> to get matched with a stranger.

Connection attempts are retried with increasing delays before giving up.

Examples:
  randomchat connect
  randomchat connect --addr chat.example.com:6000`,
	Run: runConnect,
}

func init() {
	connectCmd.Flags().StringVar(&flagConnectAddr, "addr", "localhost:6000", "Server address (host:port)")
}

func runConnect(_ *cobra.Command, _ []string) {
	conn, err := client.Dial(flagConnectAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting: %v\n", err)
		os.Exit(1)
	}

	// Get terminal size, fallback to reasonable defaults
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	if err := client.Run(client.NewConnection(conn), width, height); err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(1)
	}
}
