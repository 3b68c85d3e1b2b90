package core

import "testing"

func newTestDispatcher() (*Dispatcher, *memBank, *fakeLine) {
	bank := newMemBank(4)
	line := &fakeLine{level: true} // active-low button, idle high
	return NewDispatcher(bank, line, DefaultOptions()), bank, line
}

func ticks(d *Dispatcher, n int) {
	for i := 0; i < n; i++ {
		d.Tick()
	}
}

func TestDispatcherStartsInConfiguredMode(t *testing.T) {
	d, _, _ := newTestDispatcher()
	if len(d.Outputs(nil)) != 4 {
		t.Fatalf("Expected 4 outputs")
	}
	d.Start()
	s := d.Status()
	if s.Mode != ModePWM || !s.WaveActive || s.SeqActive {
		t.Fatalf("Expected PWM mode with wave active, got %+v", s)
	}
	if s.Period != 1500 || s.Speed != 1 {
		t.Errorf("Expected period 1500 speed 1, got %d/%d", s.Period, s.Speed)
	}
	ticks(d, 1500)
	if d.Status().Phase != 0 {
		t.Errorf("Expected phase to close after 1500 ticks, got %d", d.Status().Phase)
	}
	if d.Now() != 1500 {
		t.Errorf("Expected clock 1500, got %d", d.Now())
	}
}

func TestDispatcherSequenceMode(t *testing.T) {
	d, bank, _ := newTestDispatcher()
	d.SetMode(ModeSequence)
	for tick := 0; tick < 800; tick++ {
		want := (tick / 200) % 4
		lit := bank.lit()
		if len(lit) != 1 || lit[0] != want {
			t.Fatalf("tick %d: lit %v, want [%d]", tick, lit, want)
		}
		d.Tick()
	}
}

func TestDispatcherModeSwitchForcesOff(t *testing.T) {
	d, bank, _ := newTestDispatcher()
	d.SetWaveSpeed(0)
	d.StartWave()
	ticks(d, 5)
	if len(bank.lit()) == 0 {
		t.Fatalf("Expected lit channels while the wave runs")
	}

	d.SetMode(ModeStatic)
	s := d.Status()
	if s.WaveActive || s.SeqActive {
		t.Errorf("no engine should run in static mode: %+v", s)
	}
	if lit := bank.lit(); len(lit) != 0 {
		t.Errorf("static mode left %v lit", lit)
	}
	ticks(d, 50)
	if lit := bank.lit(); len(lit) != 0 {
		t.Errorf("outputs changed in static mode: %v", lit)
	}
}

func TestDispatcherStartSequenceStopsWave(t *testing.T) {
	d, bank, _ := newTestDispatcher()
	d.Start()
	ticks(d, 10)
	d.StartSequence(50)
	s := d.Status()
	if s.WaveActive || !s.SeqActive || s.Mode != ModeSequence {
		t.Fatalf("Expected only the sequencer active: %+v", s)
	}
	if lit := bank.lit(); len(lit) != 1 || lit[0] != 0 {
		t.Errorf("Expected only channel 0 lit, got %v", lit)
	}
	d.StopSequence()
	if d.Mode() != ModeStatic || len(bank.lit()) != 0 {
		t.Errorf("StopSequence should leave static mode with outputs off")
	}
}

func TestDispatcherButtonPolledEveryTenTicks(t *testing.T) {
	d, _, line := newTestDispatcher()
	line.level = false // pressed
	ticks(d, 9)
	if d.ButtonState() != ButtonReleased {
		t.Fatalf("button sampled before the poll interval")
	}
	ticks(d, 1)
	if d.ButtonState() != ButtonPressed {
		t.Fatalf("Expected press at tick 10")
	}

	line.level = true
	ticks(d, 20) // tick 30: only 20 ticks since the press
	if d.ButtonState() != ButtonPressed {
		t.Fatalf("release inside the debounce window was accepted")
	}
	ticks(d, 10) // tick 40
	if d.ButtonState() != ButtonReleased || d.ClickCount() != 1 {
		t.Fatalf("Expected released with 1 click, got %s/%d", d.ButtonState(), d.ClickCount())
	}
	if d.Status().LastClick != 40 {
		t.Errorf("Expected last click at 40, got %d", d.Status().LastClick)
	}

	var got []EventKind
	for len(d.Events().C()) > 0 {
		got = append(got, (<-d.Events().C()).Kind)
	}
	if len(got) != 2 || got[0] != EvtButtonPress || got[1] != EvtButtonClick {
		t.Errorf("Expected press then click events, got %v", got)
	}

	d.ResetClickCount()
	if d.ClickCount() != 0 {
		t.Errorf("ResetClickCount did not clear the count")
	}
}

func TestPressReleaseEndToEnd(t *testing.T) {
	b := NewButton(DefaultButtonConfig(), nil, 0)
	b.Update(false, 0)  // active-low press
	b.Update(false, 10) // still pressed
	b.Update(true, 30)  // release
	if b.Clicks() != 1 {
		t.Errorf("Expected 1 click, got %d", b.Clicks())
	}
	if b.State() != ButtonReleased {
		t.Errorf("Expected Released, got %s", b.State())
	}
	if b.LastClickTime() != 30 {
		t.Errorf("Expected last click at 30, got %d", b.LastClickTime())
	}
}

func TestDispatcherEventQueueDrops(t *testing.T) {
	opts := DefaultOptions()
	opts.QueueDepth = 1
	opts.PollTicks = 1
	opts.Button.DebounceTicks = 1
	line := &fakeLine{level: true}
	d := NewDispatcher(newMemBank(4), line, opts)

	for i := 0; i < 6; i++ {
		line.level = !line.level
		d.Tick()
	}
	if d.Events().Dropped() == 0 {
		t.Errorf("Expected dropped events with a queue depth of 1")
	}
	if d.Status().Dropped != d.Events().Dropped() {
		t.Errorf("status drop count out of sync")
	}
}

func TestDispatcherPauseResume(t *testing.T) {
	d, bank, _ := newTestDispatcher()
	d.SetMode(ModeSequence)
	ticks(d, 250)

	if st := d.ToggleProcess(); st != StatePaused {
		t.Fatalf("Expected paused, got %s", st)
	}
	if lit := bank.lit(); len(lit) != 0 {
		t.Errorf("pause left %v lit", lit)
	}
	ticks(d, 500)
	if len(bank.lit()) != 0 {
		t.Errorf("paused engines drove outputs")
	}

	// Mode changes while paused are remembered but do not start
	d.SetMode(ModePWM)
	if d.Status().WaveActive {
		t.Errorf("wave started while paused")
	}

	if st := d.ToggleProcess(); st != StateRunning {
		t.Fatalf("Expected running, got %s", st)
	}
	if !d.Status().WaveActive {
		t.Errorf("resume should restart the current mode")
	}
}

func TestDispatcherStartWhilePaused(t *testing.T) {
	d, bank, _ := newTestDispatcher()
	d.SetMode(ModeSequence)
	d.ToggleProcess()

	d.StartWave()
	if st := d.Status(); st.WaveActive || st.Mode != ModePWM {
		t.Errorf("paused StartWave: mode=%s wave=%v", st.Mode, st.WaveActive)
	}
	d.ToggleProcess()
	if st := d.Status(); !st.WaveActive || st.SeqActive {
		t.Errorf("Expected wave after resume, got wave=%v seq=%v", st.WaveActive, st.SeqActive)
	}

	d.ToggleProcess()
	d.StartSequence(50)
	if d.Status().SeqActive || len(bank.lit()) != 0 {
		t.Errorf("sequence started while paused")
	}
	d.ToggleProcess()
	st := d.Status()
	if st.Mode != ModeSequence || !st.SeqActive || st.WaveActive {
		t.Fatalf("Expected sequence after resume, got mode=%s seq=%v wave=%v", st.Mode, st.SeqActive, st.WaveActive)
	}
	if step := d.seq.StepTicks(); step != 50 {
		t.Errorf("Expected dwell 50 after resume, got %d", step)
	}

	// SetMode goes back to the configured dwell
	d.SetMode(ModeSequence)
	if step := d.seq.StepTicks(); step != DefaultStepTicks {
		t.Errorf("Expected default dwell, got %d", step)
	}
}

func TestDispatcherStopWhilePaused(t *testing.T) {
	d, bank, _ := newTestDispatcher()
	d.SetMode(ModePWM)
	d.ToggleProcess()
	d.StopWave()
	d.ToggleProcess()
	if st := d.Status(); st.Mode != ModeStatic || st.WaveActive {
		t.Errorf("stopped wave came back: mode=%s wave=%v", st.Mode, st.WaveActive)
	}

	d.SetMode(ModeSequence)
	d.ToggleProcess()
	d.StopSequence()
	d.ToggleProcess()
	if st := d.Status(); st.Mode != ModeStatic || st.SeqActive {
		t.Errorf("stopped sequence came back: mode=%s seq=%v", st.Mode, st.SeqActive)
	}
	ticks(d, 300)
	if lit := bank.lit(); len(lit) != 0 {
		t.Errorf("Expected all off, got %v", lit)
	}

	// Stopping the engine that does not own the mode changes nothing
	d.SetMode(ModeSequence)
	d.ToggleProcess()
	d.StopWave()
	d.ToggleProcess()
	if !d.Status().SeqActive {
		t.Errorf("StopWave cancelled a paused sequence")
	}
}

func TestDispatcherFaultHalts(t *testing.T) {
	d, bank, _ := newTestDispatcher()
	d.Start()
	d.SetWaveSpeed(0)
	ticks(d, 5)
	d.Fault("test")

	if d.State() != StateHalted {
		t.Fatalf("Expected halted, got %s", d.State())
	}
	if len(bank.lit()) != 0 {
		t.Errorf("fault left outputs on")
	}
	now := d.Now()
	ticks(d, 100)
	if d.Now() != now {
		t.Errorf("clock advanced after fault")
	}
	d.SetMode(ModeSequence)
	d.StartWave()
	if s := d.Status(); s.WaveActive || s.SeqActive {
		t.Errorf("engines restarted after fault: %+v", s)
	}
	if d.Status().Fault != "test" {
		t.Errorf("fault reason lost")
	}

	h := d.History()
	if len(h) == 0 || h[len(h)-1].Kind != EvtFault {
		t.Errorf("Expected fault as the last recorded event")
	}
}

func TestDispatcherSetWavePeriodZero(t *testing.T) {
	d, _, _ := newTestDispatcher()
	d.Start()
	ticks(d, 3)
	d.SetWavePeriod(0)
	phase := d.Status().Phase
	ticks(d, 10)
	if d.Status().Phase != phase {
		t.Errorf("zero period should stall the wave")
	}
	if d.State() != StateRunning {
		t.Errorf("zero period must not fault")
	}
}

func TestDispatcherClockWrap(t *testing.T) {
	d, bank, _ := newTestDispatcher()
	d.Clock().Set(^uint32(0) - 100)
	d.StartSequence(200)
	for i := 0; i < 199; i++ {
		d.Tick()
	}
	if lit := bank.lit(); len(lit) != 1 || lit[0] != 0 {
		t.Fatalf("stepped early across the wrap: %v", lit)
	}
	d.Tick()
	if lit := bank.lit(); len(lit) != 1 || lit[0] != 1 {
		t.Errorf("Expected step to channel 1 at 200 ticks, got %v", lit)
	}
}
