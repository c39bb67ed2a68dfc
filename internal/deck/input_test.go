package deck

import "testing"

func TestKeyMapping(t *testing.T) {
	d := NewDispatcher()
	tests := []struct {
		key    string
		want   Action
		wantOK bool
	}{
		{"left", ActionPass, true},
		{"h", ActionPass, true},
		{"right", ActionAdvance, true},
		{"l", ActionAdvance, true},
		{" ", ActionSave, true},
		{"s", ActionSave, true},
		{"enter", 0, false},
		{"q", 0, false},
	}
	for _, tt := range tests {
		got, ok := d.Key(tt.key, Guards{})
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("Key(%q) = %v, %v; want %v, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGuardsDropInput(t *testing.T) {
	d := NewDispatcher()

	if _, ok := d.Key("left", Guards{FetchInFlight: true}); ok {
		t.Error("input during fetch must be dropped")
	}
	if _, ok := d.Key(" ", Guards{TextInputFocused: true}); ok {
		t.Error("input while typing must be dropped")
	}
	if _, ok := d.Swipe(-40, 0, Guards{FetchInFlight: true}); ok {
		t.Error("gesture during fetch must be dropped")
	}
}

func TestSwipeMapping(t *testing.T) {
	d := NewDispatcher()
	tests := []struct {
		name   string
		dx, dy int
		want   Action
		wantOK bool
	}{
		{"left swipe", -20, 2, ActionPass, true},
		{"right swipe", 20, -3, ActionAdvance, true},
		{"sub-threshold", -5, 0, 0, false},
		{"mostly vertical", 10, 30, 0, false},
		{"exactly threshold", 8, 0, ActionAdvance, true},
	}
	for _, tt := range tests {
		got, ok := d.Swipe(tt.dx, tt.dy, Guards{})
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("%s: Swipe(%d,%d) = %v, %v; want %v, %v", tt.name, tt.dx, tt.dy, got, ok, tt.want, tt.wantOK)
		}
	}
}
