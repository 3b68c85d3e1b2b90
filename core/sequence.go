package core

// DefaultStepTicks is the reference dwell time of each sequence step
const DefaultStepTicks = 200

// Sequencer lights exactly one channel at a time and moves to the next
// channel every stepTicks.
type Sequencer struct {
	leds *LEDBank

	active    bool
	current   int
	stepTicks uint32
	lastStep  uint32
}

func NewSequencer(leds *LEDBank) *Sequencer {
	return &Sequencer{leds: leds, stepTicks: DefaultStepTicks}
}

// Start turns everything off, lights channel 0 and stamps now.
func (s *Sequencer) Start(stepTicks, now uint32) {
	s.leds.AllOff()
	s.stepTicks = stepTicks
	s.current = 0
	s.lastStep = now
	s.active = true
	s.leds.On(0)
}

// Stop disables stepping and forces every channel off
func (s *Sequencer) Stop() {
	s.active = false
	s.leds.AllOff()
}

// Update advances to the next channel once stepTicks have elapsed.
// Returns true when a step happened.
func (s *Sequencer) Update(now uint32) bool {
	if !s.active || s.leds.Len() == 0 {
		return false
	}
	if Elapsed(now, s.lastStep) < s.stepTicks {
		return false
	}
	s.leds.Off(s.current)
	s.current = (s.current + 1) % s.leds.Len()
	s.leds.On(s.current)
	s.lastStep = now
	return true
}

func (s *Sequencer) Active() bool      { return s.active }
func (s *Sequencer) Current() int      { return s.current }
func (s *Sequencer) StepTicks() uint32 { return s.stepTicks }
