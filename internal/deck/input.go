package deck

// Guards are the input preconditions checked before any key or gesture
// maps to an action. When a guard fails the input is dropped, never
// queued.
type Guards struct {
	// FetchInFlight blocks actions while the current (paper, level)
	// content is still loading, preventing action spam mid-fetch.
	FetchInFlight bool
	// TextInputFocused blocks navigation while the user is typing in
	// a search or chat field.
	TextInputFocused bool
}

func (g Guards) allow() bool {
	return !g.FetchInFlight && !g.TextInputFocused
}

// Dispatcher normalizes keyboard and pointer input into actions.
type Dispatcher struct {
	// SwipeThreshold is the minimum horizontal drag distance, in cells,
	// for a gesture to register. Shorter drags snap back as no-ops.
	SwipeThreshold int
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{SwipeThreshold: 8}
}

// Key maps a key name (bubbletea msg.String() form) to an action.
func (d *Dispatcher) Key(key string, g Guards) (Action, bool) {
	if !g.allow() {
		return 0, false
	}
	switch key {
	case "left", "h":
		return ActionPass, true
	case "right", "l":
		return ActionAdvance, true
	case " ", "s":
		return ActionSave, true
	}
	return 0, false
}

// Swipe maps a completed drag of (dx, dy) cells to an action.
// Sub-threshold or mostly-vertical drags are no-ops.
func (d *Dispatcher) Swipe(dx, dy int, g Guards) (Action, bool) {
	if !g.allow() {
		return 0, false
	}

	abs := dx
	if abs < 0 {
		abs = -abs
	}
	vabs := dy
	if vabs < 0 {
		vabs = -vabs
	}
	if abs < d.SwipeThreshold || vabs > abs {
		return 0, false
	}
	if dx < 0 {
		return ActionPass, true
	}
	return ActionAdvance, true
}
