package deck

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/matheuskafuri/paperdeck/internal/arxiv"
)

type fakeBatch struct {
	calls atomic.Int32
	err   error
	got   []arxiv.Paper
}

func (b *fakeBatch) BatchSummarize(_ context.Context, papers []arxiv.Paper, level int) (map[string]string, error) {
	b.calls.Add(1)
	b.got = papers
	if b.err != nil {
		return nil, b.err
	}
	out := make(map[string]string)
	for _, p := range papers {
		if p.ID == "skip.me" {
			continue // simulate a paper the batch could not summarize
		}
		out[p.ID] = "warm " + p.ID
	}
	return out, nil
}

func queueOf(n int) []arxiv.Paper {
	papers := make([]arxiv.Paper, n)
	for i := range papers {
		papers[i] = arxiv.Paper{ID: fmt.Sprintf("%04d.%04d", i, i), Abstract: "a"}
	}
	return papers
}

func TestWarmSeedsFirstK(t *testing.T) {
	b := &fakeBatch{}
	cache := NewContentCache(&countingSummarizer{})
	p := NewPrefetcher(b, 5)

	papers := queueOf(8)
	p.Warm(context.Background(), cache, papers)

	if len(b.got) != 5 {
		t.Fatalf("expected batch of 5, got %d", len(b.got))
	}
	for _, paper := range papers[:5] {
		if _, status := cache.Get(paper.ID, 1); status != StatusReady {
			t.Errorf("expected %s warmed, got %v", paper.ID, status)
		}
	}
	if _, status := cache.Get(papers[5].ID, 1); status != StatusAbsent {
		t.Error("papers beyond the warm window must stay absent")
	}
}

func TestWarmRunsOnce(t *testing.T) {
	b := &fakeBatch{}
	cache := NewContentCache(&countingSummarizer{})
	p := NewPrefetcher(b, 5)
	papers := queueOf(6)

	p.Warm(context.Background(), cache, papers)
	p.Warm(context.Background(), cache, papers)
	p.Warm(context.Background(), cache, papers)

	if n := b.calls.Load(); n != 1 {
		t.Errorf("expected 1 batch call, got %d", n)
	}
}

func TestWarmFailureIsNonBlocking(t *testing.T) {
	b := &fakeBatch{err: fmt.Errorf("batch down")}
	s := &countingSummarizer{}
	cache := NewContentCache(s)
	p := NewPrefetcher(b, 5)
	papers := queueOf(3)

	p.Warm(context.Background(), cache, papers)

	// The per-paper path still works as the fallback.
	got, err := cache.Fetch(context.Background(), papers[0].Abstract, papers[0].ID, 1)
	if err != nil || got == "" {
		t.Errorf("per-item fallback failed: %q, %v", got, err)
	}
}

func TestWarmMissingEntriesAreNotErrors(t *testing.T) {
	b := &fakeBatch{}
	cache := NewContentCache(&countingSummarizer{})
	p := NewPrefetcher(b, 5)

	papers := []arxiv.Paper{{ID: "1111.1111", Abstract: "a"}, {ID: "skip.me", Abstract: "b"}}
	p.Warm(context.Background(), cache, papers)

	if _, status := cache.Get("1111.1111", 1); status != StatusReady {
		t.Error("expected warmed entry")
	}
	if _, status := cache.Get("skip.me", 1); status != StatusAbsent {
		t.Error("missing batch entry must be treated as not yet available")
	}
}

func TestWarmShortQueue(t *testing.T) {
	b := &fakeBatch{}
	cache := NewContentCache(&countingSummarizer{})
	p := NewPrefetcher(b, 5)

	p.Warm(context.Background(), cache, queueOf(2))
	if len(b.got) != 2 {
		t.Errorf("expected batch clamped to queue size, got %d", len(b.got))
	}

	// Empty queue: no call at all.
	b2 := &fakeBatch{}
	p2 := NewPrefetcher(b2, 5)
	p2.Warm(context.Background(), NewContentCache(&countingSummarizer{}), nil)
	if n := b2.calls.Load(); n != 0 {
		t.Errorf("expected no batch call for empty queue, got %d", n)
	}
}
