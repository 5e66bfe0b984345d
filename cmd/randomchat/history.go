package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/randomchat/internal/storage"
)

var (
	flagHistoryLimit int
	flagHistoryRoom  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversation records",
	Long: `Display the most recent conversation records from the chat database,
plus per-room totals.

Only operational metadata is stored: room, nicknames, how the chat
ended and how long it lasted. Message contents are never recorded.

Examples:
  randomchat history
  randomchat history --limit 30
  randomchat history --room "Horror movies"`,
	Run: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Maximum number of records to show")
	historyCmd.Flags().StringVar(&flagHistoryRoom, "room", "", "Only show conversations from this room")
}

func runHistory(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Server.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening chat database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var entries []storage.ConversationEntry
	if flagHistoryRoom != "" {
		entries, err = store.RoomConversations(flagHistoryRoom, flagHistoryLimit)
	} else {
		entries, err = store.RecentConversations(flagHistoryLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving conversations: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Recent conversations")
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No conversations recorded yet.")
		fmt.Println()
		fmt.Println("Run 'randomchat serve' and let two clients chat to record the first one.")
		return
	}

	// Calculate room column width
	maxRoomLen := 4 // "Room" header
	for _, e := range entries {
		if len(e.Room) > maxRoomLen {
			maxRoomLen = len(e.Room)
		}
	}

	fmt.Printf("  %-*s  %-22s  %-12s  %-8s  %s\n", maxRoomLen, "Room", "Users", "Ended", "Length", "Date")
	fmt.Printf("  %-*s  %-22s  %-12s  %-8s  %s\n", maxRoomLen, "----", "-----", "-----", "------", "----")
	for _, e := range entries {
		users := fmt.Sprintf("%s & %s", e.NicknameA, e.NicknameB)
		length := fmt.Sprintf("%ds", e.DurationSecs)
		dateStr := e.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-*s  %-22s  %-12s  %-8s  %s\n", maxRoomLen, e.Room, users, e.EndReason, length, dateStr)
	}

	totals, err := store.RoomTotals()
	if err != nil || len(totals) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("Per-room totals:")
	for _, t := range totals {
		fmt.Printf("  %-*s  %d chats, avg %.0fs\n", maxRoomLen, t.Room, t.Conversations, t.AvgDurationSecs)
	}
}
