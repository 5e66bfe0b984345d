package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List the configured topic rooms",
	Long:  `Shows the topic rooms a server started with this configuration offers.`,
	Run:   runRooms,
}

func runRooms(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configured rooms:")
	fmt.Println()

	// Calculate column width
	maxNameLen := 4 // "Name" header
	for _, r := range cfg.Rooms {
		if len(r.Name) > maxNameLen {
			maxNameLen = len(r.Name)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxNameLen, "Name", "Description")
	fmt.Printf("  %-*s  %s\n", maxNameLen, "----", "-----------")
	for _, r := range cfg.Rooms {
		fmt.Printf("  %-*s  %s\n", maxNameLen, r.Name, r.Description)
	}
	fmt.Println()
	fmt.Println("Join one with: //command:START<room name>")
}
