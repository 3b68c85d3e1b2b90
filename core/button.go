package core

// ButtonState is the committed logical state of the button
type ButtonState uint8

const (
	ButtonReleased ButtonState = iota
	ButtonPressed
	ButtonHeld
)

func (s ButtonState) String() string {
	switch s {
	case ButtonReleased:
		return "released"
	case ButtonPressed:
		return "pressed"
	case ButtonHeld:
		return "held"
	}
	return "unknown"
}

// ButtonEvent is what a single Update committed, if anything
type ButtonEvent uint8

const (
	ButtonNoEvent ButtonEvent = iota
	ButtonPress               // committed to the pressed level
	ButtonClick               // released after a short press; click counted
	ButtonRelease             // released after a hold; no click counted
	ButtonHold                // pressed long enough to become Held
)

// ButtonConfig holds the debounce and click timings, all in ticks.
type ButtonConfig struct {
	PressedLevel     bool   // raw level that means "pressed"
	DebounceTicks    uint32 // minimum spacing between committed changes
	HoldTicks        uint32 // continuous press needed to reach Held
	ClickSeriesTicks uint32 // max gap between clicks of one series
	MaxClicks        uint8  // count wraps to 0 past this
	ClickResetTicks  uint32 // idle time after which the count clears; 0 disables
}

// DefaultButtonConfig returns the reference timings for an active-low
// button sampled at 1 kHz.
func DefaultButtonConfig() ButtonConfig {
	return ButtonConfig{
		PressedLevel:     false,
		DebounceTicks:    25,
		HoldTicks:        2000,
		ClickSeriesTicks: 5000,
		MaxClicks:        3,
	}
}

// Button debounces one input line and counts clicks.
type Button struct {
	cfg  ButtonConfig
	line InputLine

	raw        bool
	prevRaw    bool
	changeTime uint32
	lastClick  uint32
	state      ButtonState
	clicks     uint8
	heldFor    uint32
}

// NewButton creates a debouncer in the Released state. The first change
// to the pressed level is accepted without waiting a debounce window.
func NewButton(cfg ButtonConfig, line InputLine, now uint32) *Button {
	b := &Button{
		cfg:        cfg,
		line:       line,
		prevRaw:    !cfg.PressedLevel,
		changeTime: now - cfg.DebounceTicks,
		lastClick:  now,
	}
	b.raw = b.prevRaw
	if line != nil {
		b.raw = line.Get()
	}
	return b
}

// Poll samples the input line and runs Update.
func (b *Button) Poll(now uint32) ButtonEvent {
	if b.line == nil {
		return ButtonNoEvent
	}
	return b.Update(b.line.Get(), now)
}

// Update feeds one raw sample taken at tick now.
func (b *Button) Update(raw bool, now uint32) ButtonEvent {
	b.raw = raw
	if b.cfg.ClickResetTicks > 0 && b.clicks > 0 &&
		Elapsed(now, b.lastClick) > b.cfg.ClickResetTicks {
		b.clicks = 0
	}

	if raw != b.prevRaw {
		if Elapsed(now, b.changeTime) < b.cfg.DebounceTicks {
			return ButtonNoEvent
		}
		b.prevRaw = raw
		b.changeTime = now
		if raw == b.cfg.PressedLevel {
			b.state = ButtonPressed
			b.heldFor = 0
			return ButtonPress
		}
		ev := ButtonRelease
		if b.state == ButtonPressed {
			b.countClick(now)
			ev = ButtonClick
		}
		b.state = ButtonReleased
		return ev
	}

	if raw == b.cfg.PressedLevel && b.state != ButtonReleased &&
		Elapsed(now, b.changeTime) > b.cfg.HoldTicks {
		b.heldFor++
		if b.state == ButtonPressed {
			b.state = ButtonHeld
			return ButtonHold
		}
	}
	return ButtonNoEvent
}

func (b *Button) countClick(now uint32) {
	if b.clicks == 0 || Elapsed(now, b.lastClick) <= b.cfg.ClickSeriesTicks {
		if b.clicks < b.cfg.MaxClicks {
			b.clicks++
		} else {
			b.clicks = 0
		}
	} else {
		b.clicks = 1
	}
	b.lastClick = now
}

func (b *Button) State() ButtonState { return b.state }
func (b *Button) Clicks() uint8      { return b.clicks }
func (b *Button) ResetClicks()       { b.clicks = 0 }

// LastClickTime is the tick of the most recent counted click.
func (b *Button) LastClickTime() uint32 { return b.lastClick }

// HeldFor counts the samples taken while Held.
func (b *Button) HeldFor() uint32 { return b.heldFor }

// Raw returns the most recent raw sample.
func (b *Button) Raw() bool { return b.raw }
