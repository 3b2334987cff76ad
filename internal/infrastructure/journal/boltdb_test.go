package journal

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"), "mutations")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndRecentNewestFirst(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	for i, op := range []string{OperationCreate, OperationComplete, OperationDelete} {
		err := store.Append(Entry{
			UserID:    "u1",
			Entity:    EntityTask,
			Operation: op,
			After:     json.RawMessage(`{"title":"x"}`),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := store.Recent("u1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	want := []string{OperationDelete, OperationComplete, OperationCreate}
	for i, entry := range entries {
		if entry.Operation != want[i] {
			t.Fatalf("order = %v, want newest first", entries)
		}
	}
}

func TestRecentFiltersByUser(t *testing.T) {
	store := openTestStore(t)

	for _, userID := range []string{"u1", "u2", "u1"} {
		if err := store.Append(Entry{UserID: userID, Entity: EntityTask, Operation: OperationUpdate}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	mine, err := store.Recent("u1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("len = %d, want 2", len(mine))
	}

	all, err := store.Recent("", 10)
	if err != nil {
		t.Fatalf("recent all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
}

func TestPruneDropsOnlyExpired(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()

	old := Entry{UserID: "u1", Entity: EntityTask, Operation: OperationCreate, Timestamp: now.Add(-48 * time.Hour)}
	fresh := Entry{UserID: "u1", Entity: EntityTask, Operation: OperationUpdate, Timestamp: now}
	for _, entry := range []Entry{old, fresh} {
		if err := store.Append(entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	pruned, err := store.Prune(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("pruned = %d, want 1", pruned)
	}

	size, err := store.Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != 1 {
		t.Fatalf("size = %d, want 1", size)
	}

	left, err := store.Recent("u1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(left) != 1 || left[0].Operation != OperationUpdate {
		t.Fatalf("wrong entry survived: %v", left)
	}
}

func TestSizeEmpty(t *testing.T) {
	store := openTestStore(t)
	size, err := store.Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != 0 {
		t.Fatalf("size = %d, want 0", size)
	}
}
