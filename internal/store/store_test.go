package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/matheuskafuri/paperdeck/internal/arxiv"
	"github.com/matheuskafuri/paperdeck/internal/events"
)

func testLibrary(t *testing.T) (*Library, *events.Broker) {
	t.Helper()
	kv, err := OpenKV(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("opening test kv: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	broker := events.NewBroker()
	return NewLibrary(kv, broker), broker
}

func samplePaper(id string) arxiv.Paper {
	return arxiv.Paper{
		ID:       id,
		Title:    "Paper " + id,
		Authors:  []string{"Ada Lovelace"},
		Abstract: "An abstract.",
	}
}

func TestSaveAndList(t *testing.T) {
	lib, _ := testLibrary(t)

	if err := lib.Save(samplePaper("1111.1111"), 2, "@article{...}"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := lib.Save(samplePaper("2222.2222"), 1, ""); err != nil {
		t.Fatalf("save: %v", err)
	}

	saved, err := lib.Saved()
	if err != nil {
		t.Fatalf("saved: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 saved papers, got %d", len(saved))
	}
	if saved[0].Paper.ID != "1111.1111" {
		t.Errorf("expected save order preserved, got %s first", saved[0].Paper.ID)
	}
	if saved[0].LevelAtSave != 2 {
		t.Errorf("expected level_at_save 2, got %d", saved[0].LevelAtSave)
	}
	if saved[0].Citation == "" {
		t.Error("expected citation artifact preserved")
	}
	if saved[0].SavedAt.IsZero() {
		t.Error("expected saved_at timestamp")
	}
}

func TestSaveDuplicateIsConflict(t *testing.T) {
	lib, _ := testLibrary(t)

	if err := lib.Save(samplePaper("1111.1111"), 1, ""); err != nil {
		t.Fatalf("first save: %v", err)
	}

	err := lib.Save(samplePaper("1111.1111"), 3, "")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	saved, _ := lib.Saved()
	if len(saved) != 1 {
		t.Errorf("duplicate save must not add an entry, got %d", len(saved))
	}
}

func TestFirstSaveFlaggedOnce(t *testing.T) {
	lib, broker := testLibrary(t)
	ch := broker.Subscribe(events.FavoriteAdded)

	lib.Save(samplePaper("1111.1111"), 1, "")
	lib.Save(samplePaper("2222.2222"), 1, "")

	first := <-ch
	second := <-ch
	if !first.First {
		t.Error("expected First flag on first save of the session")
	}
	if second.First {
		t.Error("second save must not re-trigger the first-save flag")
	}
}

func TestRemoveSave(t *testing.T) {
	lib, broker := testLibrary(t)
	ch := broker.Subscribe(events.FavoriteRemoved)

	lib.Save(samplePaper("1111.1111"), 1, "")
	lib.Save(samplePaper("2222.2222"), 1, "")

	if err := lib.RemoveSave("1111.1111"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	saved, _ := lib.Saved()
	if len(saved) != 1 || saved[0].Paper.ID != "2222.2222" {
		t.Errorf("unexpected library after remove: %+v", saved)
	}
	if ev := <-ch; ev.PaperID != "1111.1111" {
		t.Errorf("unexpected removal event: %+v", ev)
	}

	// Removing an absent ID is a no-op, not an error.
	if err := lib.RemoveSave("9999.9999"); err != nil {
		t.Errorf("remove absent: %v", err)
	}
}

func TestClearAllRequiresConfirmation(t *testing.T) {
	lib, _ := testLibrary(t)
	lib.Save(samplePaper("1111.1111"), 1, "")

	if err := lib.ClearAll(false); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	saved, _ := lib.Saved()
	if len(saved) != 1 {
		t.Error("unconfirmed clear must not mutate the library")
	}

	if err := lib.ClearAll(true); err != nil {
		t.Fatalf("confirmed clear: %v", err)
	}
	saved, _ = lib.Saved()
	if len(saved) != 0 {
		t.Errorf("expected empty library after clear, got %d", len(saved))
	}
}

func TestConversationRoundTrip(t *testing.T) {
	lib, _ := testLibrary(t)

	msgs, err := lib.LoadConversation("1111.1111")
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty log, got %d", len(msgs))
	}

	if _, err := lib.AppendMessage("1111.1111", "user", "what about scaling?"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := lib.AppendMessage("1111.1111", "assistant", "the paper shows..."); err != nil {
		t.Fatalf("append: %v", err)
	}

	msgs, err = lib.LoadConversation("1111.1111")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("unexpected roles: %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].ID == msgs[1].ID {
		t.Error("expected distinct message IDs")
	}

	// Logs are per paper.
	other, _ := lib.LoadConversation("2222.2222")
	if len(other) != 0 {
		t.Errorf("expected empty log for other paper, got %d", len(other))
	}
}

func TestRemoveMessageRollsBackOrphan(t *testing.T) {
	lib, _ := testLibrary(t)

	msg, err := lib.AppendMessage("1111.1111", "user", "unanswered question")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := lib.RemoveMessage("1111.1111", msg.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	msgs, _ := lib.LoadConversation("1111.1111")
	if len(msgs) != 0 {
		t.Errorf("expected rolled-back log to be empty, got %d messages", len(msgs))
	}
}

func TestKVRoundTrip(t *testing.T) {
	kv, err := OpenKV(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	if _, ok, _ := kv.Get("missing"); ok {
		t.Error("expected missing key")
	}
	if err := kv.Set("k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set("k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, ok, err := kv.Get("k")
	if err != nil || !ok || got != "v2" {
		t.Errorf("get = %q, %v, %v; want v2", got, ok, err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get("k"); ok {
		t.Error("expected key gone after delete")
	}
}
