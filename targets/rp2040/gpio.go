//go:build rp2040 || rp2350

package main

import (
	"machine"

	"blinky/core"
)

// RPGPIODriver implements core.GPIODriver on the RP2 GPIO block
type RPGPIODriver struct {
	// Track configured pins to prevent conflicts
	configuredPins map[core.GPIOPin]machine.Pin
}

func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

// ConfigureOutput configures a pin as a push-pull output, driven low
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		return pinInUseError(pin)
	}
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	d.configuredPins[pin] = p
	return nil
}

// ConfigureInput configures a pin as an input with the given bias
func (d *RPGPIODriver) ConfigureInput(pin core.GPIOPin, pull core.Pull) error {
	if _, exists := d.configuredPins[pin]; exists {
		return pinInUseError(pin)
	}
	mode := machine.PinInput
	switch pull {
	case core.PullUp:
		mode = machine.PinInputPullup
	case core.PullDown:
		mode = machine.PinInputPulldown
	}
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: mode})
	d.configuredPins[pin] = p
	return nil
}

// SetPin runs in the tick interrupt; unknown pins are ignored
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) {
	if p, ok := d.configuredPins[pin]; ok {
		p.Set(value)
	}
}

func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	p, ok := d.configuredPins[pin]
	if !ok {
		return false
	}
	return p.Get()
}

type pinInUseError core.GPIOPin

func (e pinInUseError) Error() string {
	return "gpio" + itoa(int(e)) + " already configured"
}

// itoa converts int to string without importing strconv (for embedded)
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [12]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}
