package events

import "testing"

func TestSubscribeReceivesMatchingType(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(FavoriteAdded)

	b.Publish(Event{Type: FavoriteAdded, PaperID: "1234.5678", First: true})

	select {
	case ev := <-ch:
		if ev.PaperID != "1234.5678" || !ev.First {
			t.Errorf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected buffered event")
	}
}

func TestSubscribeFiltersOtherTypes(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(FavoriteAdded)

	b.Publish(Event{Type: FavoriteRemoved, PaperID: "x"})

	select {
	case ev := <-ch:
		t.Errorf("unexpected event: %+v", ev)
	default:
	}
}

func TestWildcardSubscription(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()

	b.Publish(Event{Type: LibraryCleared})
	b.Publish(Event{Type: ConversationUpdated, PaperID: "y"})

	if got := len(ch); got != 2 {
		t.Errorf("expected 2 buffered events, got %d", got)
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	b := NewBroker()
	b.Subscribe(FavoriteAdded) // never drained

	// Fill past the buffer; Publish must drop, not block.
	for i := 0; i < 100; i++ {
		b.Publish(Event{Type: FavoriteAdded})
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(FavoriteAdded, FavoriteRemoved)
	b.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	b.Publish(Event{Type: FavoriteAdded})
}
