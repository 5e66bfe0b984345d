package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/randomchat/internal/chat"
)

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	started := time.Now().Add(-time.Minute)
	entries := []ConversationEntry{
		{Room: "Climate change", NicknameA: "Ann", NicknameB: "Bob", EndReason: "stopped", DurationSecs: 42, StartedAt: started},
		{Room: "Horror movies", NicknameA: "Cat", NicknameB: "Dan", EndReason: "rerolled", DurationSecs: 7, StartedAt: started},
		{Room: "Climate change", NicknameA: "Eve", NicknameB: "Fay", EndReason: "disconnected", DurationSecs: 120, StartedAt: started},
	}
	for _, e := range entries {
		if _, err := store.SaveConversationEntry(e); err != nil {
			t.Fatalf("SaveConversationEntry() failed: %v", err)
		}
	}

	recent, err := store.RecentConversations(10)
	if err != nil {
		t.Fatalf("RecentConversations() failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 conversations, got %d", len(recent))
	}

	// Most recent first
	if recent[0].NicknameA != "Eve" || recent[0].EndReason != "disconnected" {
		t.Errorf("Unexpected newest entry: %+v", recent[0])
	}
	if recent[2].NicknameA != "Ann" || recent[2].DurationSecs != 42 {
		t.Errorf("Unexpected oldest entry: %+v", recent[2])
	}
	if recent[0].StartedAt.IsZero() {
		t.Error("StartedAt was not round-tripped")
	}
}

func TestStoreRecentConversationsLimit(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	for i := 0; i < 5; i++ {
		store.SaveConversationEntry(ConversationEntry{
			Room: "Travel related", NicknameA: "A", NicknameB: "B",
			EndReason: "stopped", DurationSecs: i, StartedAt: time.Now(),
		})
	}

	recent, err := store.RecentConversations(3)
	if err != nil {
		t.Fatalf("RecentConversations() failed: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("Expected 3 conversations with limit, got %d", len(recent))
	}
	if recent[0].DurationSecs != 4 {
		t.Errorf("Expected newest entry first, got duration %d", recent[0].DurationSecs)
	}
}

func TestStoreRoomConversations(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	store.SaveConversationEntry(ConversationEntry{Room: "Horror movies", NicknameA: "A", NicknameB: "B", EndReason: "stopped", StartedAt: time.Now()})
	store.SaveConversationEntry(ConversationEntry{Room: "Travel related", NicknameA: "C", NicknameB: "D", EndReason: "stopped", StartedAt: time.Now()})
	store.SaveConversationEntry(ConversationEntry{Room: "Horror movies", NicknameA: "E", NicknameB: "F", EndReason: "rerolled", StartedAt: time.Now()})

	horror, err := store.RoomConversations("Horror movies", 10)
	if err != nil {
		t.Fatalf("RoomConversations() failed: %v", err)
	}
	if len(horror) != 2 {
		t.Errorf("Expected 2 Horror movies conversations, got %d", len(horror))
	}
	for _, e := range horror {
		if e.Room != "Horror movies" {
			t.Errorf("Got conversation from wrong room: %q", e.Room)
		}
	}
}

func TestStoreRoomTotals(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Empty database
	totals, err := store.RoomTotals()
	if err != nil {
		t.Fatalf("RoomTotals() failed: %v", err)
	}
	if len(totals) != 0 {
		t.Errorf("Expected no totals for empty database, got %d", len(totals))
	}

	store.SaveConversationEntry(ConversationEntry{Room: "Climate change", NicknameA: "A", NicknameB: "B", EndReason: "stopped", DurationSecs: 10, StartedAt: time.Now()})
	store.SaveConversationEntry(ConversationEntry{Room: "Climate change", NicknameA: "C", NicknameB: "D", EndReason: "rerolled", DurationSecs: 30, StartedAt: time.Now()})
	store.SaveConversationEntry(ConversationEntry{Room: "Travel related", NicknameA: "E", NicknameB: "F", EndReason: "stopped", DurationSecs: 5, StartedAt: time.Now()})

	totals, err = store.RoomTotals()
	if err != nil {
		t.Fatalf("RoomTotals() failed: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("Expected totals for 2 rooms, got %d", len(totals))
	}

	// Ordered by room name
	if totals[0].Room != "Climate change" || totals[0].Conversations != 2 {
		t.Errorf("Unexpected first total: %+v", totals[0])
	}
	if totals[0].AvgDurationSecs != 20 {
		t.Errorf("Expected avg duration 20, got %v", totals[0].AvgDurationSecs)
	}
	if totals[1].Room != "Travel related" || totals[1].Conversations != 1 {
		t.Errorf("Unexpected second total: %+v", totals[1])
	}
}

func TestStoreSaveConversationAdapter(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	rec := chat.ConversationRecord{
		Room:      "Horror movies",
		NicknameA: "Ann",
		NicknameB: "Bob",
		EndReason: "disconnected",
		StartedAt: time.Now().Add(-90 * time.Second),
		Duration:  90 * time.Second,
	}
	if err := store.SaveConversation(rec); err != nil {
		t.Fatalf("SaveConversation() failed: %v", err)
	}

	recent, err := store.RecentConversations(1)
	if err != nil {
		t.Fatalf("RecentConversations() failed: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("Expected 1 conversation, got %d", len(recent))
	}
	if recent[0].DurationSecs != 90 {
		t.Errorf("Expected 90s duration, got %d", recent[0].DurationSecs)
	}
	if recent[0].EndReason != "disconnected" {
		t.Errorf("Expected disconnected reason, got %q", recent[0].EndReason)
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
