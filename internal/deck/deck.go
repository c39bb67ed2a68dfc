// Package deck implements the progressive-disclosure queue engine: a
// fixed queue of papers browsed one at a time, each revealing three
// summary detail levels. The engine owns the cursor state machine,
// per-level content caching with fetch de-duplication, and the
// exit-animation handshake that keeps visual and logical state in sync.
package deck

// Action is one of the three user-initiated operations.
type Action int

const (
	// ActionPass discards the current paper and moves to the next one.
	ActionPass Action = iota
	// ActionAdvance reveals the next detail level of the current paper.
	ActionAdvance
	// ActionSave stores the paper in the library and moves on.
	ActionSave
)

func (a Action) String() string {
	switch a {
	case ActionPass:
		return "pass"
	case ActionAdvance:
		return "advance"
	case ActionSave:
		return "save"
	}
	return "unknown"
}

// Direction is the visual motion of an exit animation. Leftward motion
// communicates discard, rightward going deeper.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
)

// Exit records an animation-gated transition in flight: the presentation
// layer animates the card out along Dir, then reports completion, and
// only then does the cursor commit Action.
type Exit struct {
	Action Action
	Dir    Direction
}

// Cursor is the queue position: Index in [0, len] and Level in {1,2,3}.
// Index == len means the queue is exhausted. Level resets to 1 whenever
// Index changes.
type Cursor struct {
	Index int
	Level int
}

// MaxLevel is the deepest summary detail level.
const MaxLevel = 3
