package deck

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Status is the observable state of one (paperID, level) cache slot.
type Status int

const (
	StatusAbsent Status = iota
	StatusPending
	StatusReady
)

// ErrEmptyID rejects a fetch with no paper identifier before any
// network call is made.
var ErrEmptyID = errors.New("empty paper id")

// Summarizer is the narrow slice of the AI client the cache needs.
type Summarizer interface {
	Summarize(ctx context.Context, abstract string, level int, paperID string) (string, error)
}

type cacheKey struct {
	id    string
	level int
}

type cacheEntry struct {
	status  Status
	content string
	lastErr error
}

// ContentCache stores fetched summaries per (paperID, level). Concurrent
// requests for the same slot share a single in-flight call. A failed
// fetch leaves the slot absent so the next lookup retries it; the error
// is kept separately for display.
type ContentCache struct {
	summarizer Summarizer

	mu      sync.Mutex
	entries map[cacheKey]*cacheEntry
	group   singleflight.Group
}

func NewContentCache(s Summarizer) *ContentCache {
	return &ContentCache{
		summarizer: s,
		entries:    make(map[cacheKey]*cacheEntry),
	}
}

// Get returns the cached content (when ready) and the slot status.
func (c *ContentCache) Get(paperID string, level int) (string, Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[cacheKey{paperID, level}]
	if !ok {
		return "", StatusAbsent
	}
	return e.content, e.status
}

// LastError returns the most recent fetch error for the slot, if any.
// The slot itself stays retriable: a non-nil error here still means
// status absent, never a poisoned key.
func (c *ContentCache) LastError(paperID string, level int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[cacheKey{paperID, level}]; ok {
		return e.lastErr
	}
	return nil
}

// Put seeds a slot with already-fetched content (batch prefetch).
// In-flight or ready slots are left alone.
func (c *ContentCache) Put(paperID string, level int, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := cacheKey{paperID, level}
	e, ok := c.entries[k]
	if !ok {
		e = &cacheEntry{}
		c.entries[k] = e
	}
	if e.status != StatusAbsent {
		return
	}
	e.status = StatusReady
	e.content = content
	e.lastErr = nil
}

// Fetch returns the content for (paperID, level), issuing a summarize
// call on a miss. The slot is marked pending before the call starts so
// duplicate concurrent callers attach to the first request instead of
// issuing their own.
func (c *ContentCache) Fetch(ctx context.Context, abstract, paperID string, level int) (string, error) {
	if paperID == "" {
		return "", ErrEmptyID
	}

	if content, status := c.Get(paperID, level); status == StatusReady {
		return content, nil
	}

	// Everything below runs through singleflight: one caller executes
	// the fetch, concurrent duplicates attach to it and share the
	// result. The ready re-check inside covers callers that raced past
	// the fast path above.
	v, err, _ := c.group.Do(fmt.Sprintf("%s/%d", paperID, level), func() (any, error) {
		if content, status := c.Get(paperID, level); status == StatusReady {
			return content, nil
		}

		k := cacheKey{paperID, level}
		c.mu.Lock()
		e, ok := c.entries[k]
		if !ok {
			e = &cacheEntry{}
			c.entries[k] = e
		}
		e.status = StatusPending
		c.mu.Unlock()

		content, err := c.summarizer.Summarize(ctx, abstract, level, paperID)

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			// Failure is not cached: the slot returns to absent so
			// the next visit to this level triggers a fresh fetch.
			e.status = StatusAbsent
			e.lastErr = err
			return nil, err
		}
		e.status = StatusReady
		e.content = content
		e.lastErr = nil
		return content, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
