package board

import (
	"testing"
	"time"

	"blinky/config"
	"blinky/core"
	"blinky/errcode"
	"blinky/host/simboard"
)

func connectSim(t *testing.T) (*Board, *simboard.Board) {
	t.Helper()
	sim, err := simboard.New(config.Default())
	if err != nil {
		t.Fatalf("simboard.New: %v", err)
	}
	b := New(sim)
	t.Cleanup(func() { b.Close() })
	if err := b.RetrieveDictionary(); err != nil {
		t.Fatalf("RetrieveDictionary: %v", err)
	}
	return b, sim
}

func TestRetrieveDictionary(t *testing.T) {
	b, _ := connectSim(t)
	d := b.Dictionary()
	if d.App != "blinky" || d.Version != "sim" {
		t.Errorf("unexpected identity %q %q", d.App, d.Version)
	}
	if d.Config["CHANNELS"] != "4" {
		t.Errorf("Expected CHANNELS=4, got %q", d.Config["CHANNELS"])
	}
	if d.Enumerations["mode"]["sequence"] != int(core.ModeSequence) {
		t.Errorf("mode enumeration wrong: %v", d.Enumerations["mode"])
	}
	if _, ok := b.Command("set_wave_speed"); !ok {
		t.Errorf("set_wave_speed missing from %v", b.CommandNames())
	}
}

func TestCallStatus(t *testing.T) {
	b, _ := connectSim(t)
	r, err := b.Call("get_status", nil, "status", time.Second)
	if err != nil {
		t.Fatalf("get_status: %v", err)
	}
	if r.Values["mode"] != uint32(core.ModePWM) || r.Values["wave"] != 1 {
		t.Errorf("Expected the wave running in PWM mode, got %s", r)
	}
	if r.Values["period"] != 1500 {
		t.Errorf("Expected period 1500, got %d", r.Values["period"])
	}
	if b.Enum("mode", r.Values["mode"]) != "pwm" {
		t.Errorf("Enum lookup failed")
	}
}

func TestSendByEnumName(t *testing.T) {
	b, sim := connectSim(t)
	r, err := b.Call("set_mode", map[string]string{"mode": "sequence"}, "status", time.Second)
	if err != nil {
		t.Fatalf("set_mode: %v", err)
	}
	if r.Values["sequence"] != 1 {
		t.Errorf("Expected the sequencer active, got %s", r)
	}
	if sim.Dispatcher().Mode() != core.ModeSequence {
		t.Errorf("board mode is %s", sim.Dispatcher().Mode())
	}
}

func TestBoardRejection(t *testing.T) {
	b, _ := connectSim(t)
	_, err := b.Call("start_sequence", map[string]string{"step_ticks": "0"}, "status", time.Second)
	if errcode.Of(err) != errcode.OutOfRange {
		t.Errorf("Expected out_of_range from the board, got %v", err)
	}
}

func TestSendValidatesLocally(t *testing.T) {
	b, _ := connectSim(t)
	if err := b.Send("set_mode", nil); errcode.Of(err) != errcode.InvalidParams {
		t.Errorf("missing argument: got %v", err)
	}
	if err := b.Send("set_mode", map[string]string{"mode": "disco"}); errcode.Of(err) != errcode.InvalidParams {
		t.Errorf("bad enum value: got %v", err)
	}
	if err := b.Send("get_clock", map[string]string{"x": "1"}); errcode.Of(err) != errcode.InvalidParams {
		t.Errorf("unknown parameter: got %v", err)
	}
	if err := b.Send("self_destruct", nil); errcode.Of(err) != errcode.UnknownCommand {
		t.Errorf("unknown command: got %v", err)
	}
}

func TestButtonOverLink(t *testing.T) {
	b, sim := connectSim(t)
	sim.Press()
	sim.Step(30)
	sim.Release()
	sim.Step(30)

	r, err := b.Call("get_button", nil, "button", time.Second)
	if err != nil {
		t.Fatalf("get_button: %v", err)
	}
	if r.Values["clicks"] != 1 {
		t.Errorf("Expected one click, got %s", r)
	}
	// The click moved the board from PWM to sequence
	if sim.Dispatcher().Mode() != core.ModeSequence {
		t.Errorf("Expected sequence mode after a click, got %s", sim.Dispatcher().Mode())
	}
}

func TestDumpEventsDrain(t *testing.T) {
	b, sim := connectSim(t)
	sim.Dispatcher().StartSequence(10)
	sim.Step(35)
	if err := b.Send("dump_events", nil); err != nil {
		t.Fatal(err)
	}
	events := b.Drain(200 * time.Millisecond)
	steps := 0
	for _, r := range events {
		if r.Name == "event" && b.Enum("event_kind", r.Values["kind"]) == core.EvtSequenceStep.String() {
			steps++
		}
	}
	if steps != 3 {
		t.Errorf("Expected 3 sequence steps, got %d in %d events", steps, len(events))
	}
}

func TestWaitTimeout(t *testing.T) {
	b, _ := connectSim(t)
	if err := b.Send("reset_clicks", nil); err != nil {
		t.Fatal(err)
	}
	_, err := b.Wait("button", 50*time.Millisecond)
	if err == nil {
		t.Error("Expected a timeout, reset_clicks has no response")
	}
}
