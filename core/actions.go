package core

// ButtonActions turns committed button events into control calls: a
// click cycles the output mode and a hold pauses or resumes output.
// It runs in the main loop, never inside Tick.
type ButtonActions struct {
	d *Dispatcher
}

func NewButtonActions(d *Dispatcher) *ButtonActions {
	return &ButtonActions{d: d}
}

// Handle applies one event
func (a *ButtonActions) Handle(ev Event) {
	switch ev.Kind {
	case EvtButtonClick:
		if a.d.State() == StateRunning {
			m := a.d.NextMode()
			DebugAsync("[BUTTON] mode " + m.String())
		}
	case EvtButtonHold:
		st := a.d.ToggleProcess()
		DebugAsync("[BUTTON] " + st.String())
	}
}

// Drain handles every queued event without blocking and returns how many
// were processed.
func (a *ButtonActions) Drain() int {
	n := 0
	for {
		select {
		case ev := <-a.d.Events().C():
			a.Handle(ev)
			n++
		default:
			return n
		}
	}
}
