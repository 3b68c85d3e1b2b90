package core

import "testing"

func TestSequencerSchedule(t *testing.T) {
	bank := newMemBank(4)
	var clock TickClock
	s := NewSequencer(NewLEDBank(bank, &clock))
	s.Start(200, 0)

	for tick := uint32(0); tick < 1000; tick++ {
		s.Update(tick)
		want := int(tick/200) % 4
		lit := bank.lit()
		if len(lit) != 1 || lit[0] != want {
			t.Fatalf("tick %d: lit %v, want only channel %d", tick, lit, want)
		}
	}
}

func TestSequencerOffBeforeOn(t *testing.T) {
	order := &orderBank{n: 3}
	var clock TickClock
	leds := NewLEDBank(order, &clock)
	s := NewSequencer(leds)
	s.Start(10, 0)
	order.log = nil

	if !s.Update(10) {
		t.Fatalf("Expected a step at tick 10")
	}
	want := []string{"0-off", "1-on"}
	if len(order.log) != len(want) {
		t.Fatalf("Expected writes %v, got %v", want, order.log)
	}
	for i := range want {
		if order.log[i] != want[i] {
			t.Errorf("write %d: got %s, want %s", i, order.log[i], want[i])
		}
	}
}

func TestSequencerStop(t *testing.T) {
	bank := newMemBank(4)
	var clock TickClock
	s := NewSequencer(NewLEDBank(bank, &clock))
	s.Start(200, 0)
	s.Update(250)
	s.Stop()
	if s.Active() {
		t.Errorf("still active after Stop")
	}
	if lit := bank.lit(); len(lit) != 0 {
		t.Errorf("channels %v lit after Stop", lit)
	}
	if s.Update(1000) {
		t.Errorf("stopped sequencer should not step")
	}
}

type orderBank struct {
	n   int
	log []string
}

func (o *orderBank) Len() int { return o.n }

func (o *orderBank) Set(ch int, on bool) {
	s := "off"
	if on {
		s = "on"
	}
	o.log = append(o.log, string(rune('0'+ch))+"-"+s)
}
