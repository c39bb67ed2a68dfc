package deck

// Effect is the outcome of applying an action in the controller.
type Effect struct {
	// Exit is non-nil when the transition is animation-gated: the
	// presentation layer must animate the card out and then call
	// AnimationComplete with the same action, exactly once.
	Exit *Exit
	// Committed is true when the cursor changed synchronously (the
	// Save path, which skips the animation handshake).
	Committed bool
}

// Controller is the transition state machine. It is the single owner of
// cursor mutation: Pass and Advance defer their commit until the exit
// animation completes, Save commits immediately, and any Pass/Advance
// arriving while a transition is in flight is dropped, not queued.
type Controller struct {
	queueLen int
	cursor   Cursor
	pending  *Exit
}

func NewController(queueLen int) *Controller {
	return &Controller{
		queueLen: queueLen,
		cursor:   Cursor{Index: 0, Level: 1},
	}
}

// Cursor returns the current position.
func (c *Controller) Cursor() Cursor { return c.cursor }

// Exhausted reports whether the queue has been consumed.
func (c *Controller) Exhausted() bool { return c.cursor.Index >= c.queueLen }

// Pending returns the transition in flight, or nil when idle.
func (c *Controller) Pending() *Exit { return c.pending }

// Apply runs one action through the transition table. Actions are
// dropped while a transition is in flight or once the queue is
// exhausted.
func (c *Controller) Apply(a Action) Effect {
	if c.pending != nil || c.Exhausted() {
		return Effect{}
	}

	switch a {
	case ActionPass:
		return c.beginPass()

	case ActionAdvance:
		if c.cursor.Level < MaxLevel {
			c.pending = &Exit{Action: ActionAdvance, Dir: DirRight}
			return Effect{Exit: c.pending}
		}
		// Deepest level already shown: advancing further behaves as a
		// pass (the caller persists the save before applying this).
		return c.beginPass()

	case ActionSave:
		// Save must feel instantaneous, so it commits without the
		// animation handshake.
		if c.cursor.Level < MaxLevel {
			c.cursor.Level++
		} else {
			c.cursor.Index++
			c.cursor.Level = 1
		}
		return Effect{Committed: true}
	}

	return Effect{}
}

func (c *Controller) beginPass() Effect {
	if c.cursor.Index == c.queueLen-1 {
		// Nothing further forward; stay put.
		return Effect{}
	}
	c.pending = &Exit{Action: ActionPass, Dir: DirLeft}
	return Effect{Exit: c.pending}
}

// AnimationComplete commits the pending transition. A signal that does
// not match the recorded intent is ignored. Returns true when the
// cursor was committed.
func (c *Controller) AnimationComplete(a Action) bool {
	if c.pending == nil || c.pending.Action != a {
		return false
	}

	switch a {
	case ActionPass:
		c.cursor.Index++
		c.cursor.Level = 1
	case ActionAdvance:
		if c.cursor.Level < MaxLevel {
			c.cursor.Level++
		} else {
			c.cursor.Index++
			c.cursor.Level = 1
		}
	}

	c.pending = nil
	return true
}
