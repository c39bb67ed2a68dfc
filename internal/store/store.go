// Package store is the persistence adapter for the saved-paper library
// and per-paper conversation logs. It is the only writer of persisted
// state; every mutation is one read-modify-persist-notify unit, and
// observers follow changes through the event broker instead of
// re-reading ad hoc.
package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheuskafuri/paperdeck/internal/arxiv"
	"github.com/matheuskafuri/paperdeck/internal/events"
)

const savedKey = "library/saved"

func conversationKey(paperID string) string {
	return "conversations/" + paperID
}

// SavedPaper is a library entry: the paper plus save metadata. Never
// mutated after creation, only removed.
type SavedPaper struct {
	Paper       arxiv.Paper `json:"paper"`
	SavedAt     time.Time   `json:"saved_at"`
	LevelAtSave int         `json:"level_at_save"`
	Citation    string      `json:"citation,omitempty"`
}

// Message is one persisted turn of a paper conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConflictError reports a save for a paper already in the library.
// Recovered locally as a no-op with a notice, never a hard failure.
type ConflictError struct {
	PaperID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("paper %s is already saved", e.PaperID)
}

// ErrNotConfirmed is returned by ClearAll when the caller has not
// confirmed the wipe.
var ErrNotConfirmed = fmt.Errorf("clear not confirmed")

// Library persists saved papers and conversation logs through a KV
// store and broadcasts changes on the event broker.
type Library struct {
	kv     KV
	broker *events.Broker

	mu               sync.Mutex
	savedThisSession bool
}

func NewLibrary(kv KV, broker *events.Broker) *Library {
	return &Library{kv: kv, broker: broker}
}

// Save appends the paper to the library. Duplicate IDs return
// ConflictError and change nothing. The first successful save of the
// session is flagged on the published event.
func (l *Library) Save(paper arxiv.Paper, level int, citation string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	saved, err := l.loadSaved()
	if err != nil {
		return err
	}

	for _, s := range saved {
		if s.Paper.ID == paper.ID {
			return &ConflictError{PaperID: paper.ID}
		}
	}

	saved = append(saved, SavedPaper{
		Paper:       paper,
		SavedAt:     time.Now(),
		LevelAtSave: level,
		Citation:    citation,
	})
	if err := l.persistSaved(saved); err != nil {
		return err
	}

	first := !l.savedThisSession
	l.savedThisSession = true
	l.broker.Publish(events.Event{Type: events.FavoriteAdded, PaperID: paper.ID, First: first})
	return nil
}

// Saved returns the library in save order.
func (l *Library) Saved() ([]SavedPaper, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadSaved()
}

// IsSaved reports whether the paper is already in the library.
func (l *Library) IsSaved(paperID string) (bool, error) {
	saved, err := l.Saved()
	if err != nil {
		return false, err
	}
	for _, s := range saved {
		if s.Paper.ID == paperID {
			return true, nil
		}
	}
	return false, nil
}

// RemoveSave deletes one entry by paper ID. Removing an absent ID is a
// no-op.
func (l *Library) RemoveSave(paperID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	saved, err := l.loadSaved()
	if err != nil {
		return err
	}

	kept := saved[:0]
	removed := false
	for _, s := range saved {
		if s.Paper.ID == paperID {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	if !removed {
		return nil
	}

	if err := l.persistSaved(kept); err != nil {
		return err
	}
	l.broker.Publish(events.Event{Type: events.FavoriteRemoved, PaperID: paperID})
	return nil
}

// ClearAll erases the whole library. The caller must pass confirmed
// after an explicit confirmation step.
func (l *Library) ClearAll(confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.kv.Delete(savedKey); err != nil {
		return err
	}
	l.broker.Publish(events.Event{Type: events.LibraryCleared})
	return nil
}

// AppendMessage adds a message to the paper's conversation log,
// creating the log on first use, and returns the stored message.
func (l *Library) AppendMessage(paperID, role, content string) (Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs, err := l.loadConversation(paperID)
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	msgs = append(msgs, msg)
	if err := l.persistConversation(paperID, msgs); err != nil {
		return Message{}, err
	}

	l.broker.Publish(events.Event{Type: events.ConversationUpdated, PaperID: paperID})
	return msg, nil
}

// RemoveMessage rolls back an optimistically appended message, keeping
// the log free of unanswered user turns after a failed assistant call.
func (l *Library) RemoveMessage(paperID, messageID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs, err := l.loadConversation(paperID)
	if err != nil {
		return err
	}

	kept := msgs[:0]
	for _, m := range msgs {
		if m.ID == messageID {
			continue
		}
		kept = append(kept, m)
	}
	return l.persistConversation(paperID, kept)
}

// LoadConversation returns the paper's conversation log, oldest first.
// A paper with no log yields an empty slice.
func (l *Library) LoadConversation(paperID string) ([]Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadConversation(paperID)
}

func (l *Library) loadSaved() ([]SavedPaper, error) {
	raw, ok, err := l.kv.Get(savedKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var saved []SavedPaper
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		return nil, fmt.Errorf("decoding library: %w", err)
	}
	return saved, nil
}

func (l *Library) persistSaved(saved []SavedPaper) error {
	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("encoding library: %w", err)
	}
	return l.kv.Set(savedKey, string(data))
}

func (l *Library) loadConversation(paperID string) ([]Message, error) {
	raw, ok, err := l.kv.Get(conversationKey(paperID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, fmt.Errorf("decoding conversation for %s: %w", paperID, err)
	}
	return msgs, nil
}

func (l *Library) persistConversation(paperID string, msgs []Message) error {
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encoding conversation for %s: %w", paperID, err)
	}
	return l.kv.Set(conversationKey(paperID), string(data))
}
