package core

// Mode selects which output engine owns the LED bank
type Mode uint8

const (
	ModePWM Mode = iota
	ModeSequence
	ModeStatic

	modeCount
)

var modeNames = [...]string{
	ModePWM:      "pwm",
	ModeSequence: "sequence",
	ModeStatic:   "static",
}

func (m Mode) String() string {
	if m < modeCount {
		return modeNames[m]
	}
	return "unknown"
}

// Valid reports whether m names a known mode
func (m Mode) Valid() bool { return m < modeCount }

// Next returns the mode a button click cycles to
func (m Mode) Next() Mode { return (m + 1) % modeCount }

// ParseMode maps a mode name to its value
func ParseMode(s string) (Mode, bool) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), true
		}
	}
	return 0, false
}

// AppState is the run state of the whole application
type AppState uint8

const (
	StateRunning AppState = iota
	StatePaused
	StateHalted
)

func (s AppState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateHalted:
		return "halted"
	}
	return "unknown"
}
