package core

// DefaultPollTicks is how often the button is sampled
const DefaultPollTicks = 10

// Options configures a Dispatcher. Build one with DefaultOptions and
// override fields, or derive it from config.Config.
type Options struct {
	Button     ButtonConfig
	Wave       WaveConfig
	StepTicks  uint32 // sequence dwell per channel
	PollTicks  uint32 // button sampling interval
	Mode       Mode   // mode entered by Start
	QueueDepth int    // button events buffered for the main loop
}

// DefaultOptions returns the reference board behaviour
func DefaultOptions() Options {
	return Options{
		Button:     DefaultButtonConfig(),
		Wave:       DefaultWaveConfig(),
		StepTicks:  DefaultStepTicks,
		PollTicks:  DefaultPollTicks,
		Mode:       ModePWM,
		QueueDepth: 8,
	}
}

// Status is a consistent copy of the dispatcher state for display
type Status struct {
	Now        uint32
	Mode       Mode
	State      AppState
	WaveActive bool
	SeqActive  bool
	Phase      uint32
	Speed      uint32
	Period     uint32
	Current    int
	Button     ButtonState
	Clicks     uint8
	LastClick  uint32
	Dropped    uint32
	Fault      string
}

// Dispatcher owns the clock, the button and both output engines. Tick
// runs from the timer interrupt; every other exported method may be
// called from the main loop and runs inside a critical section.
type Dispatcher struct {
	opts Options

	clock  TickClock
	leds   *LEDBank
	button *Button
	wave   *WaveEngine
	seq    *Sequencer

	mode      Mode
	state     AppState
	stepTicks uint32 // dwell used when the sequence (re)starts
	lastPoll  uint32
	fault     string

	ring   EventRing
	events *EventQueue
}

// NewDispatcher wires the engines to the output bank and button line.
// All outputs start off and no engine runs until Start or SetMode.
func NewDispatcher(out OutputBank, in InputLine, opts Options) *Dispatcher {
	d := &Dispatcher{
		opts:      opts,
		mode:      ModeStatic,
		stepTicks: opts.StepTicks,
		events: NewEventQueue(opts.QueueDepth),
	}
	if !opts.Mode.Valid() {
		d.opts.Mode = ModePWM
	}
	d.leds = NewLEDBank(out, &d.clock)
	d.button = NewButton(opts.Button, in, d.clock.Now())
	d.wave = NewWaveEngine(d.leds, opts.Wave)
	d.seq = NewSequencer(d.leds)
	return d
}

// Start enters the configured startup mode
func (d *Dispatcher) Start() {
	state := disableInterrupts()
	d.setMode(d.opts.Mode)
	restoreInterrupts(state)
}

// Tick is the interrupt entry point: advance the clock, sample the button
// when due, then run whichever output engine is active.
func (d *Dispatcher) Tick() {
	state := disableInterrupts()
	d.tick()
	restoreInterrupts(state)
}

func (d *Dispatcher) tick() {
	if d.state == StateHalted {
		return
	}
	d.clock.Advance()
	now := d.clock.Now()

	if Elapsed(now, d.lastPoll) >= d.opts.PollTicks {
		d.lastPoll = now
		if ev := d.button.Poll(now); ev != ButtonNoEvent {
			d.onButton(ev, now)
		}
	}

	if d.wave.Active() {
		d.wave.Update(now)
	} else if d.seq.Active() {
		if d.seq.Update(now) {
			d.ring.Record(EvtSequenceStep, now, uint32(d.seq.Current()))
		}
	}

	if assertsEnabled {
		d.checkInvariants()
	}
}

func (d *Dispatcher) onButton(ev ButtonEvent, now uint32) {
	var kind EventKind
	switch ev {
	case ButtonPress:
		kind = EvtButtonPress
	case ButtonClick:
		kind = EvtButtonClick
	case ButtonRelease:
		kind = EvtButtonRelease
	case ButtonHold:
		kind = EvtButtonHold
	default:
		return
	}
	e := Event{Kind: kind, Clock: now, Value: uint32(d.button.Clicks())}
	d.ring.Record(e.Kind, e.Clock, e.Value)
	d.events.Push(e)
}

func (d *Dispatcher) checkInvariants() {
	switch {
	case d.wave.Active() && d.seq.Active():
		d.halt("wave and sequence both active")
	case d.seq.Active() && d.leds.LitCount() != 1:
		d.halt("sequence must light exactly one channel")
	case d.button.Clicks() > d.opts.Button.MaxClicks:
		d.halt("click count above maximum")
	}
}

// halt stops all processing and forces outputs off. Caller holds the
// critical section.
func (d *Dispatcher) halt(reason string) {
	if d.state == StateHalted {
		return
	}
	d.wave.Stop()
	d.seq.Stop()
	d.leds.AllOff()
	d.state = StateHalted
	d.fault = reason
	d.ring.Record(EvtFault, d.clock.Now(), 0)
}

// Fault halts the dispatcher. Subsequent ticks do nothing and control
// calls are ignored until the board is reset.
func (d *Dispatcher) Fault(reason string) {
	state := disableInterrupts()
	d.halt(reason)
	restoreInterrupts(state)
}

// stopEngines stops whichever engine is running and clears the bank
func (d *Dispatcher) stopEngines() {
	now := d.clock.Now()
	if d.wave.Active() {
		d.wave.Stop()
		d.ring.Record(EvtWaveStop, now, 0)
	}
	if d.seq.Active() {
		d.seq.Stop()
		d.ring.Record(EvtSequenceStop, now, 0)
	}
	d.leds.AllOff()
}

func (d *Dispatcher) setMode(m Mode) {
	if d.state == StateHalted || !m.Valid() {
		return
	}
	d.mode = m
	d.stepTicks = d.opts.StepTicks
	d.ring.Record(EvtModeChange, d.clock.Now(), uint32(m))
	d.stopEngines()
	if d.state == StatePaused {
		return
	}
	d.startMode()
}

func (d *Dispatcher) startMode() {
	now := d.clock.Now()
	switch d.mode {
	case ModePWM:
		d.wave.SetSpeed(d.opts.Wave.Speed)
		d.wave.SetPeriod(d.opts.Wave.Period)
		d.wave.Start(now)
		d.ring.Record(EvtWaveStart, now, d.opts.Wave.Period)
	case ModeSequence:
		d.seq.Start(d.stepTicks, now)
		d.ring.Record(EvtSequenceStart, now, d.stepTicks)
	case ModeStatic:
	}
}

// SetMode stops the active engine, forces all outputs off and starts the
// engine for m with the configured defaults. Unknown modes are ignored.
func (d *Dispatcher) SetMode(m Mode) {
	state := disableInterrupts()
	d.setMode(m)
	restoreInterrupts(state)
}

// NextMode cycles to the next mode
func (d *Dispatcher) NextMode() Mode {
	state := disableInterrupts()
	d.setMode(d.mode.Next())
	m := d.mode
	restoreInterrupts(state)
	return m
}

func (d *Dispatcher) Mode() Mode {
	state := disableInterrupts()
	m := d.mode
	restoreInterrupts(state)
	return m
}

func (d *Dispatcher) State() AppState {
	state := disableInterrupts()
	s := d.state
	restoreInterrupts(state)
	return s
}

// ToggleProcess pauses or resumes the output engines. Pausing forces all
// outputs off; resuming restarts the current mode from its beginning.
func (d *Dispatcher) ToggleProcess() AppState {
	state := disableInterrupts()
	now := d.clock.Now()
	switch d.state {
	case StateRunning:
		d.stopEngines()
		d.state = StatePaused
		d.ring.Record(EvtPause, now, 0)
	case StatePaused:
		d.state = StateRunning
		d.ring.Record(EvtResume, now, 0)
		d.startMode()
	}
	s := d.state
	restoreInterrupts(state)
	return s
}

// StartWave hands the bank to the wave engine, stopping the sequencer.
// While paused the mode is recorded and the wave starts on resume.
func (d *Dispatcher) StartWave() {
	state := disableInterrupts()
	switch d.state {
	case StateRunning:
		d.stopEngines()
		d.mode = ModePWM
		now := d.clock.Now()
		d.wave.Start(now)
		d.ring.Record(EvtWaveStart, now, d.wave.Period())
	case StatePaused:
		d.mode = ModePWM
		d.ring.Record(EvtModeChange, d.clock.Now(), uint32(ModePWM))
	}
	restoreInterrupts(state)
}

// StopWave stops the wave and forces its outputs off. A paused wave is
// dropped so that resume leaves the board static.
func (d *Dispatcher) StopWave() {
	state := disableInterrupts()
	switch {
	case d.wave.Active():
		d.wave.Stop()
		d.mode = ModeStatic
		d.ring.Record(EvtWaveStop, d.clock.Now(), 0)
	case d.state == StatePaused && d.mode == ModePWM:
		d.mode = ModeStatic
		d.ring.Record(EvtModeChange, d.clock.Now(), uint32(ModeStatic))
	}
	restoreInterrupts(state)
}

// SetWaveSpeed takes effect on the next update without a phase reset
func (d *Dispatcher) SetWaveSpeed(speed uint32) {
	state := disableInterrupts()
	d.wave.SetSpeed(speed)
	restoreInterrupts(state)
}

// SetWavePeriod takes effect on the next update without a phase reset.
// A zero period stalls the wave rather than dividing by zero.
func (d *Dispatcher) SetWavePeriod(period uint32) {
	state := disableInterrupts()
	d.wave.SetPeriod(period)
	restoreInterrupts(state)
}

// StartSequence hands the bank to the sequencer, stopping the wave.
// While paused the mode and dwell are recorded for resume.
func (d *Dispatcher) StartSequence(stepTicks uint32) {
	state := disableInterrupts()
	switch d.state {
	case StateRunning:
		d.stopEngines()
		d.mode = ModeSequence
		d.stepTicks = stepTicks
		now := d.clock.Now()
		d.seq.Start(stepTicks, now)
		d.ring.Record(EvtSequenceStart, now, stepTicks)
	case StatePaused:
		d.mode = ModeSequence
		d.stepTicks = stepTicks
		d.ring.Record(EvtModeChange, d.clock.Now(), uint32(ModeSequence))
	}
	restoreInterrupts(state)
}

// StopSequence stops the sequencer and forces its outputs off
func (d *Dispatcher) StopSequence() {
	state := disableInterrupts()
	switch {
	case d.seq.Active():
		d.seq.Stop()
		d.mode = ModeStatic
		d.ring.Record(EvtSequenceStop, d.clock.Now(), 0)
	case d.state == StatePaused && d.mode == ModeSequence:
		d.mode = ModeStatic
		d.ring.Record(EvtModeChange, d.clock.Now(), uint32(ModeStatic))
	}
	restoreInterrupts(state)
}

func (d *Dispatcher) ButtonState() ButtonState {
	state := disableInterrupts()
	s := d.button.State()
	restoreInterrupts(state)
	return s
}

func (d *Dispatcher) ClickCount() uint8 {
	state := disableInterrupts()
	n := d.button.Clicks()
	restoreInterrupts(state)
	return n
}

func (d *Dispatcher) ResetClickCount() {
	state := disableInterrupts()
	d.button.ResetClicks()
	restoreInterrupts(state)
}

// Now returns the current tick
func (d *Dispatcher) Now() uint32 { return d.clock.Now() }

// Clock exposes the tick clock for startup synchronisation and tests
func (d *Dispatcher) Clock() *TickClock { return &d.clock }

// Events returns the queue of button events for the main loop
func (d *Dispatcher) Events() *EventQueue { return d.events }

// Status returns a consistent snapshot of the dispatcher
func (d *Dispatcher) Status() Status {
	state := disableInterrupts()
	s := Status{
		Now:        d.clock.Now(),
		Mode:       d.mode,
		State:      d.state,
		WaveActive: d.wave.Active(),
		SeqActive:  d.seq.Active(),
		Phase:      d.wave.Phase(),
		Speed:      d.wave.Speed(),
		Period:     d.wave.Period(),
		Current:    d.seq.Current(),
		Button:     d.button.State(),
		Clicks:     d.button.Clicks(),
		LastClick:  d.button.LastClickTime(),
		Dropped:    d.events.Dropped(),
		Fault:      d.fault,
	}
	restoreInterrupts(state)
	return s
}

// Outputs copies the logical state of every LED channel into dst and
// returns it.
func (d *Dispatcher) Outputs(dst []bool) []bool {
	state := disableInterrupts()
	dst = dst[:0]
	for i := 0; i < d.leds.Len(); i++ {
		dst = append(dst, d.leds.State(i))
	}
	restoreInterrupts(state)
	return dst
}

// Duties copies the wave engine's last computed duties into dst.
func (d *Dispatcher) Duties(dst []uint8) []uint8 {
	state := disableInterrupts()
	dst = dst[:0]
	for i := 0; i < d.leds.Len(); i++ {
		dst = append(dst, d.wave.Duty(i))
	}
	restoreInterrupts(state)
	return dst
}

// History returns the recorded events, oldest first
func (d *Dispatcher) History() []Event {
	state := disableInterrupts()
	h := d.ring.Snapshot()
	restoreInterrupts(state)
	return h
}

// DumpEvents writes the event ring through the debug writer. Call it from
// the main loop, never from Tick.
func (d *Dispatcher) DumpEvents() {
	state := disableInterrupts()
	ring := d.ring
	restoreInterrupts(state)
	ring.Dump(debugPrintln)
}
