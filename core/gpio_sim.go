package core

import "sync"

// SimGPIO is an in-memory GPIODriver. The host simulator drives its
// button pin and reads LED levels from it; tests use it as a fake board.
type SimGPIO struct {
	mu         sync.Mutex
	levels     map[GPIOPin]bool
	outputs    map[GPIOPin]bool
	pulls      map[GPIOPin]Pull
	writeCount map[GPIOPin]int
}

func NewSimGPIO() *SimGPIO {
	return &SimGPIO{
		levels:     make(map[GPIOPin]bool),
		outputs:    make(map[GPIOPin]bool),
		pulls:      make(map[GPIOPin]Pull),
		writeCount: make(map[GPIOPin]int),
	}
}

func (s *SimGPIO) ConfigureOutput(pin GPIOPin) error {
	s.mu.Lock()
	s.outputs[pin] = true
	s.levels[pin] = false
	s.mu.Unlock()
	return nil
}

// ConfigureInput sets the idle level implied by the bias resistor.
func (s *SimGPIO) ConfigureInput(pin GPIOPin, pull Pull) error {
	s.mu.Lock()
	s.outputs[pin] = false
	s.pulls[pin] = pull
	s.levels[pin] = pull == PullUp
	s.mu.Unlock()
	return nil
}

func (s *SimGPIO) SetPin(pin GPIOPin, value bool) {
	s.mu.Lock()
	s.levels[pin] = value
	s.writeCount[pin]++
	s.mu.Unlock()
}

func (s *SimGPIO) ReadPin(pin GPIOPin) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[pin]
}

// Drive forces the level seen on an input pin.
func (s *SimGPIO) Drive(pin GPIOPin, level bool) {
	s.mu.Lock()
	s.levels[pin] = level
	s.mu.Unlock()
}

// IsOutput reports whether pin was configured as an output.
func (s *SimGPIO) IsOutput(pin GPIOPin) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputs[pin]
}

// Writes returns how many times SetPin was called for pin.
func (s *SimGPIO) Writes(pin GPIOPin) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeCount[pin]
}
