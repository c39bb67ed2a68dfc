package deck

import "testing"

func TestInitialCursor(t *testing.T) {
	c := NewController(3)
	cur := c.Cursor()
	if cur.Index != 0 || cur.Level != 1 {
		t.Errorf("expected cursor (0,1), got (%d,%d)", cur.Index, cur.Level)
	}
	if c.Exhausted() {
		t.Error("fresh controller must not be exhausted")
	}
}

func TestPassDefersCommitUntilAnimation(t *testing.T) {
	c := NewController(3)

	eff := c.Apply(ActionPass)
	if eff.Exit == nil || eff.Exit.Action != ActionPass || eff.Exit.Dir != DirLeft {
		t.Fatalf("expected leftward pass exit, got %+v", eff)
	}
	if c.Cursor().Index != 0 {
		t.Error("cursor must not move before the animation completes")
	}

	if !c.AnimationComplete(ActionPass) {
		t.Fatal("expected commit")
	}
	cur := c.Cursor()
	if cur.Index != 1 || cur.Level != 1 {
		t.Errorf("expected (1,1) after pass, got (%d,%d)", cur.Index, cur.Level)
	}
	if c.Pending() != nil {
		t.Error("pending must clear after commit")
	}
}

func TestPassOnLastItemIsNoop(t *testing.T) {
	c := NewController(1)
	eff := c.Apply(ActionPass)
	if eff.Exit != nil || eff.Committed {
		t.Errorf("pass on last item must be a no-op, got %+v", eff)
	}
	if c.Cursor().Index != 0 {
		t.Error("cursor moved on no-op pass")
	}
}

func TestAdvanceDeepensLevel(t *testing.T) {
	c := NewController(2)

	eff := c.Apply(ActionAdvance)
	if eff.Exit == nil || eff.Exit.Action != ActionAdvance || eff.Exit.Dir != DirRight {
		t.Fatalf("expected rightward advance exit, got %+v", eff)
	}
	c.AnimationComplete(ActionAdvance)
	if cur := c.Cursor(); cur.Level != 2 || cur.Index != 0 {
		t.Errorf("expected (0,2), got (%d,%d)", cur.Index, cur.Level)
	}
}

func TestAdvanceAtMaxLevelBehavesAsPass(t *testing.T) {
	c := NewController(2)
	c.cursor.Level = MaxLevel

	eff := c.Apply(ActionAdvance)
	if eff.Exit == nil || eff.Exit.Action != ActionPass || eff.Exit.Dir != DirLeft {
		t.Fatalf("expected pass exit at max level, got %+v", eff)
	}
	c.AnimationComplete(ActionPass)
	if cur := c.Cursor(); cur.Index != 1 || cur.Level != 1 {
		t.Errorf("expected (1,1), got (%d,%d)", cur.Index, cur.Level)
	}
}

func TestSaveCommitsImmediately(t *testing.T) {
	c := NewController(2)

	eff := c.Apply(ActionSave)
	if !eff.Committed || eff.Exit != nil {
		t.Fatalf("save must commit synchronously with no exit, got %+v", eff)
	}
	if cur := c.Cursor(); cur.Level != 2 || cur.Index != 0 {
		t.Errorf("expected (0,2), got (%d,%d)", cur.Index, cur.Level)
	}
}

func TestSaveAtMaxLevelMovesToNextItem(t *testing.T) {
	c := NewController(2)
	c.cursor.Level = MaxLevel

	eff := c.Apply(ActionSave)
	if !eff.Committed {
		t.Fatal("expected synchronous commit")
	}
	if cur := c.Cursor(); cur.Index != 1 || cur.Level != 1 {
		t.Errorf("expected (1,1), got (%d,%d)", cur.Index, cur.Level)
	}
}

func TestSaveOnLastItemExhaustsQueue(t *testing.T) {
	c := NewController(1)
	c.cursor.Level = MaxLevel

	c.Apply(ActionSave)
	if !c.Exhausted() {
		t.Error("expected exhausted queue")
	}
	// Everything is dropped once exhausted.
	if eff := c.Apply(ActionSave); eff.Committed || eff.Exit != nil {
		t.Errorf("expected drop after exhaustion, got %+v", eff)
	}
}

func TestRepeatedPassCannotDoubleAdvance(t *testing.T) {
	c := NewController(5)

	c.Apply(ActionPass)
	// Spam before the animation completes: all dropped.
	for i := 0; i < 10; i++ {
		if eff := c.Apply(ActionPass); eff.Exit != nil || eff.Committed {
			t.Fatalf("input %d during pending transition must be dropped", i)
		}
	}
	c.AnimationComplete(ActionPass)

	if cur := c.Cursor(); cur.Index != 1 {
		t.Errorf("expected index advanced by exactly 1, got %d", cur.Index)
	}
}

func TestSaveDroppedDuringPendingExit(t *testing.T) {
	c := NewController(3)
	c.Apply(ActionPass)

	if eff := c.Apply(ActionSave); eff.Committed {
		t.Error("save during pending transition must be dropped")
	}
	if cur := c.Cursor(); cur.Level != 1 || cur.Index != 0 {
		t.Errorf("cursor mutated by dropped save: (%d,%d)", cur.Index, cur.Level)
	}
}

func TestAnimationCompleteMismatchIgnored(t *testing.T) {
	c := NewController(3)
	c.Apply(ActionPass)

	if c.AnimationComplete(ActionAdvance) {
		t.Error("mismatched completion must be ignored")
	}
	if c.Pending() == nil {
		t.Error("pending must survive a mismatched completion")
	}
	if !c.AnimationComplete(ActionPass) {
		t.Error("matching completion must commit")
	}
}

func TestAnimationCompleteWithoutPendingIgnored(t *testing.T) {
	c := NewController(3)
	if c.AnimationComplete(ActionPass) {
		t.Error("completion with no pending transition must be ignored")
	}
	if cur := c.Cursor(); cur.Index != 0 || cur.Level != 1 {
		t.Errorf("cursor mutated: (%d,%d)", cur.Index, cur.Level)
	}
}

func TestCursorInvariants(t *testing.T) {
	// Drive a long random-ish action sequence and check the §3-style
	// invariants hold at every step.
	c := NewController(4)
	actions := []Action{
		ActionAdvance, ActionSave, ActionPass, ActionAdvance, ActionAdvance,
		ActionAdvance, ActionSave, ActionSave, ActionSave, ActionPass,
		ActionSave, ActionAdvance, ActionSave, ActionSave, ActionSave,
	}
	for i, a := range actions {
		eff := c.Apply(a)
		if eff.Exit != nil {
			c.AnimationComplete(eff.Exit.Action)
		}
		cur := c.Cursor()
		if cur.Index < 0 || cur.Index > 4 {
			t.Fatalf("step %d: index %d out of range", i, cur.Index)
		}
		if cur.Level < 1 || cur.Level > MaxLevel {
			t.Fatalf("step %d: level %d out of range", i, cur.Level)
		}
	}
}
