//go:build (rp2040 && !uartlink) || rp2350

package main

import (
	"errors"
	"machine"
)

var (
	usbWasDisconnected       bool
	usbReconnected           bool
	consecutiveWriteFailures uint32
)

var errUSBStalled = errors.New("usb write stalled")

// InitLink configures USB CDC. The descriptors come from the TinyGo
// runtime.
func InitLink() error {
	return machine.Serial.Configure(machine.UARTConfig{})
}

// LinkRead copies whatever USB has buffered into buf without blocking
func LinkRead(buf []byte) int {
	n := 0
	for n < len(buf) && machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		buf[n] = b
		n++
	}
	if n > 0 && usbWasDisconnected {
		usbWasDisconnected = false
		usbReconnected = true
	}
	return n
}

// linkReconnected reports, once, that data arrived after a disconnect
func linkReconnected() bool {
	r := usbReconnected
	usbReconnected = false
	return r
}

// LinkWrite writes a block of frames. After repeated failures the host is
// assumed gone and the next received byte starts a new session.
func LinkWrite(data []byte) error {
	written := 0
	for written < len(data) {
		n, err := machine.Serial.Write(data[written:])
		if err != nil || n == 0 {
			consecutiveWriteFailures++
			if consecutiveWriteFailures > 10 {
				usbWasDisconnected = true
				consecutiveWriteFailures = 0
			}
			if err == nil {
				err = errUSBStalled
			}
			return err
		}
		written += n
	}
	consecutiveWriteFailures = 0
	return nil
}
