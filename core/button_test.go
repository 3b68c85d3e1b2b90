package core

import "testing"

func activeHighButton() *Button {
	cfg := DefaultButtonConfig()
	cfg.PressedLevel = true
	return NewButton(cfg, nil, 0)
}

// click presses at t and releases at t+gap.
func click(b *Button, t, gap uint32) ButtonEvent {
	b.Update(true, t)
	return b.Update(false, t+gap)
}

func TestButtonDebounceWindow(t *testing.T) {
	b := activeHighButton()
	if ev := b.Update(true, 0); ev != ButtonPress {
		t.Fatalf("first press should commit immediately, got event %d", ev)
	}

	// Bounces inside the window are ignored
	for _, tick := range []uint32{1, 10, 24} {
		if ev := b.Update(false, tick); ev != ButtonNoEvent {
			t.Errorf("tick %d: expected no event inside window, got %d", tick, ev)
		}
		if b.State() != ButtonPressed {
			t.Errorf("tick %d: state changed inside debounce window", tick)
		}
	}

	// Exactly one commit at the window boundary
	if ev := b.Update(false, 25); ev != ButtonClick {
		t.Fatalf("Expected click at tick 25, got %d", ev)
	}
	if ev := b.Update(false, 26); ev != ButtonNoEvent {
		t.Errorf("repeated sample should not commit again")
	}
	if b.State() != ButtonReleased {
		t.Errorf("Expected released, got %s", b.State())
	}
}

func TestButtonClickCountingWraps(t *testing.T) {
	b := activeHighButton()
	want := []uint8{1, 2, 3, 0, 1}
	for i, w := range want {
		start := uint32(i) * 200
		if ev := click(b, start, 100); ev != ButtonClick {
			t.Fatalf("click %d: expected ButtonClick, got %d", i+1, ev)
		}
		if b.Clicks() != w {
			t.Errorf("after click %d: clicks = %d, want %d", i+1, b.Clicks(), w)
		}
	}
}

func TestButtonClickSeriesTimeout(t *testing.T) {
	b := activeHighButton()
	click(b, 0, 100)
	click(b, 200, 100)
	if b.Clicks() != 2 {
		t.Fatalf("Expected 2 clicks, got %d", b.Clicks())
	}

	// Gap longer than the series window starts a new series
	click(b, 300+6000, 100)
	if b.Clicks() != 1 {
		t.Errorf("Expected new series with 1 click, got %d", b.Clicks())
	}
	if b.LastClickTime() != 6400 {
		t.Errorf("Expected last click at 6400, got %d", b.LastClickTime())
	}
}

func TestButtonHoldOnce(t *testing.T) {
	b := activeHighButton()
	b.Update(true, 0)

	holds := 0
	for tick := uint32(1); tick <= 2500; tick++ {
		if b.Update(true, tick) == ButtonHold {
			holds++
			if tick != 2001 {
				t.Errorf("hold committed at tick %d, want 2001", tick)
			}
		}
		if tick == 2000 && b.State() != ButtonPressed {
			t.Errorf("should still be Pressed at exactly the hold threshold")
		}
	}
	if holds != 1 {
		t.Errorf("Expected exactly one hold event, got %d", holds)
	}
	if b.State() != ButtonHeld {
		t.Fatalf("Expected Held, got %s", b.State())
	}
	if b.HeldFor() != 500 {
		t.Errorf("Expected 500 held samples, got %d", b.HeldFor())
	}

	if ev := b.Update(false, 2600); ev != ButtonRelease {
		t.Errorf("release after hold should not count a click, got event %d", ev)
	}
	if b.Clicks() != 0 {
		t.Errorf("hold must not count a click, got %d", b.Clicks())
	}
	if b.State() != ButtonReleased {
		t.Errorf("Expected Released, got %s", b.State())
	}
}

func TestButtonClickResetWindow(t *testing.T) {
	cfg := DefaultButtonConfig()
	cfg.PressedLevel = true
	cfg.ClickResetTicks = 2000
	b := NewButton(cfg, nil, 0)

	click(b, 0, 100)
	b.Update(false, 2000)
	if b.Clicks() != 1 {
		t.Fatalf("count cleared too early: %d", b.Clicks())
	}
	b.Update(false, 2101)
	if b.Clicks() != 0 {
		t.Errorf("Expected count cleared after reset window, got %d", b.Clicks())
	}
}

func TestButtonActiveLowPoll(t *testing.T) {
	sim := NewSimGPIO()
	in, err := NewPinInput(sim, 15, PullUp)
	if err != nil {
		t.Fatalf("NewPinInput failed: %v", err)
	}
	b := NewButton(DefaultButtonConfig(), in, 0)
	if ev := b.Poll(0); ev != ButtonNoEvent {
		t.Errorf("idle line should not produce events, got %d", ev)
	}
	sim.Drive(15, false)
	if ev := b.Poll(10); ev != ButtonPress {
		t.Errorf("Expected press on low level, got %d", ev)
	}
	sim.Drive(15, true)
	if ev := b.Poll(40); ev != ButtonClick {
		t.Errorf("Expected click, got %d", ev)
	}
}

func TestButtonWrapAround(t *testing.T) {
	cfg := DefaultButtonConfig()
	cfg.PressedLevel = true
	start := ^uint32(0) - 10
	b := NewButton(cfg, nil, start)
	if b.Update(true, start) != ButtonPress {
		t.Fatalf("Expected press near the top of the counter")
	}
	if b.Update(false, start+5) != ButtonNoEvent {
		t.Errorf("bounce across wrap should be ignored")
	}
	if b.Update(false, start+30) != ButtonClick {
		t.Errorf("Expected click after the counter wrapped")
	}
}
