package simboard

import (
	"io"
	"testing"

	"blinky/config"
	"blinky/core"
)

func TestNewStartsConfiguredMode(t *testing.T) {
	b, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if b.Dispatcher().Mode() != core.ModePWM {
		t.Errorf("Expected PWM mode, got %s", b.Dispatcher().Mode())
	}
	for _, p := range config.Default().Pins.LEDs {
		if !b.GPIO().IsOutput(core.GPIOPin(p)) {
			t.Errorf("LED pin %d not configured as output", p)
		}
	}
}

func TestStepDrivesPins(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultMode = "sequence"
	b, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	first := core.GPIOPin(cfg.Pins.LEDs[0])
	second := core.GPIOPin(cfg.Pins.LEDs[1])
	if !b.GPIO().ReadPin(first) {
		t.Fatalf("Expected the first LED lit at start")
	}
	b.Step(int(cfg.Sequence.StepTicks))
	if b.GPIO().ReadPin(first) || !b.GPIO().ReadPin(second) {
		t.Errorf("Expected the second LED lit after one step")
	}
}

func TestHoldPauses(t *testing.T) {
	b, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	b.Press()
	b.Step(2100)
	b.Release()
	b.Step(50)
	if b.Dispatcher().State() != core.StatePaused {
		t.Errorf("Expected a hold to pause, got %s", b.Dispatcher().State())
	}
	if b.Dispatcher().Mode() != core.ModePWM {
		t.Errorf("a hold must not count as a click, mode is %s", b.Dispatcher().Mode())
	}
}

func TestClosedPort(t *testing.T) {
	b, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	b.Close()
	if _, err := b.Read(make([]byte, 8)); err != io.EOF {
		t.Errorf("Read after Close: got %v", err)
	}
	if _, err := b.Write([]byte{1}); err == nil {
		t.Errorf("Write after Close should fail")
	}
}
