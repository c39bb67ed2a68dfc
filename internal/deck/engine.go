package deck

import (
	"context"
	"errors"

	"github.com/matheuskafuri/paperdeck/internal/arxiv"
	"github.com/matheuskafuri/paperdeck/internal/store"
)

// Saver is the slice of the persistence adapter the engine invokes on
// save actions.
type Saver interface {
	Save(paper arxiv.Paper, level int, citation string) error
}

// Result is what applying an action produced, for the presentation
// layer to act on.
type Result struct {
	// Exit is non-nil when an animation-gated transition started.
	Exit *Exit
	// Committed is true when the cursor changed synchronously.
	Committed bool
	// Saved is true when a new library entry was persisted.
	Saved bool
	// AlreadySaved is true when the save was a duplicate; informational,
	// the action still proceeds.
	AlreadySaved bool
	// Err is a hard save failure. The cursor does not move.
	Err error
}

// Engine binds one search queue to the cache, prefetcher, and library.
// It is the only component the presentation layer talks to.
type Engine struct {
	papers     []arxiv.Paper
	ctrl       *Controller
	cache      *ContentCache
	prefetcher *Prefetcher
	saver      Saver
	cite       func(arxiv.Paper) string
}

// NewEngine creates an engine for one queue. The queue is fixed for the
// engine's lifetime; a new search builds a new engine.
func NewEngine(papers []arxiv.Paper, cache *ContentCache, pre *Prefetcher, saver Saver, cite func(arxiv.Paper) string) *Engine {
	return &Engine{
		papers:     papers,
		ctrl:       NewController(len(papers)),
		cache:      cache,
		prefetcher: pre,
		saver:      saver,
		cite:       cite,
	}
}

// Warm runs the one-time batch prefetch for the front of the queue.
func (e *Engine) Warm(ctx context.Context) {
	if e.prefetcher != nil {
		e.prefetcher.Warm(ctx, e.cache, e.papers)
	}
}

// Len returns the queue length.
func (e *Engine) Len() int { return len(e.papers) }

// Cursor returns the current queue position.
func (e *Engine) Cursor() Cursor { return e.ctrl.Cursor() }

// Exhausted reports whether the whole queue has been consumed, so the
// presentation layer renders a completion state instead of asking for
// content.
func (e *Engine) Exhausted() bool { return e.ctrl.Exhausted() }

// Pending returns the exit transition in flight, or nil.
func (e *Engine) Pending() *Exit { return e.ctrl.Pending() }

// Current returns the paper under the cursor; ok is false once the
// queue is exhausted.
func (e *Engine) Current() (arxiv.Paper, bool) {
	if e.ctrl.Exhausted() {
		return arxiv.Paper{}, false
	}
	return e.papers[e.ctrl.Cursor().Index], true
}

// Content returns the cached summary and status for the current
// position.
func (e *Engine) Content() (string, Status) {
	p, ok := e.Current()
	if !ok {
		return "", StatusAbsent
	}
	return e.cache.Get(p.ID, e.ctrl.Cursor().Level)
}

// ContentError returns the last fetch error for the current position.
func (e *Engine) ContentError() error {
	p, ok := e.Current()
	if !ok {
		return nil
	}
	return e.cache.LastError(p.ID, e.ctrl.Cursor().Level)
}

// FetchCurrent performs lookup-or-fetch for the paper and level under
// the cursor. Called whenever position or level changes. The result is
// cached even if the cursor has moved on by the time it arrives.
func (e *Engine) FetchCurrent(ctx context.Context) (string, error) {
	p, ok := e.Current()
	if !ok {
		return "", nil
	}
	return e.cache.Fetch(ctx, p.Abstract, p.ID, e.ctrl.Cursor().Level)
}

// Apply routes an action through the controller, persisting the save
// first where the action requires one. Actions arriving during a
// pending transition, or after exhaustion, are dropped.
func (e *Engine) Apply(a Action) Result {
	if e.ctrl.Pending() != nil {
		return Result{}
	}
	paper, ok := e.Current()
	if !ok {
		return Result{}
	}

	var res Result

	// Save-bearing actions persist before any cursor mutation, so a
	// failed write leaves both the library and the cursor untouched.
	needsSave := a == ActionSave || (a == ActionAdvance && e.ctrl.Cursor().Level == MaxLevel)
	if needsSave {
		err := e.saver.Save(paper, e.ctrl.Cursor().Level, e.cite(paper))
		var conflict *store.ConflictError
		switch {
		case err == nil:
			res.Saved = true
		case errors.As(err, &conflict):
			// Duplicate save: informational notice, the action still
			// advances the cursor.
			res.AlreadySaved = true
		default:
			res.Err = err
			return res
		}
	}

	eff := e.ctrl.Apply(a)
	res.Exit = eff.Exit
	res.Committed = eff.Committed
	return res
}

// AnimationComplete reports the end of an exit animation. Returns true
// when the pending transition committed (the caller should refetch
// content for the new position).
func (e *Engine) AnimationComplete(a Action) bool {
	return e.ctrl.AnimationComplete(a)
}
