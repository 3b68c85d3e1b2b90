package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// Pull selects the input bias resistor
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInput configures a pin as a digital input with the given bias
	ConfigureInput(pin GPIOPin, pull Pull) error

	// SetPin drives the pin high (true) or low (false)
	SetPin(pin GPIOPin, value bool)

	// ReadPin reads the current pin level
	ReadPin(pin GPIOPin) bool
}

// OutputBank is the per-channel digital output capability the LED engines
// drive. Channel indices are in [0, Len()).
type OutputBank interface {
	Len() int
	Set(ch int, on bool)
}

// InputLine is a single digital input sampled by the button debouncer.
type InputLine interface {
	Get() bool
}

// PinBank drives a list of GPIO pins as an OutputBank.
type PinBank struct {
	drv       GPIODriver
	pins      []GPIOPin
	activeLow bool
}

// NewPinBank configures every pin as an output and returns the bank.
// With activeLow set, "on" drives the pin low.
func NewPinBank(drv GPIODriver, pins []GPIOPin, activeLow bool) (*PinBank, error) {
	for _, p := range pins {
		if err := drv.ConfigureOutput(p); err != nil {
			return nil, err
		}
	}
	return &PinBank{drv: drv, pins: pins, activeLow: activeLow}, nil
}

func (b *PinBank) Len() int { return len(b.pins) }

func (b *PinBank) Set(ch int, on bool) {
	b.drv.SetPin(b.pins[ch], on != b.activeLow)
}

// PinInput reads one GPIO pin as an InputLine.
type PinInput struct {
	drv GPIODriver
	pin GPIOPin
}

// NewPinInput configures pin as an input with the given bias.
func NewPinInput(drv GPIODriver, pin GPIOPin, pull Pull) (*PinInput, error) {
	if err := drv.ConfigureInput(pin, pull); err != nil {
		return nil, err
	}
	return &PinInput{drv: drv, pin: pin}, nil
}

func (in *PinInput) Get() bool { return in.drv.ReadPin(in.pin) }
