//go:build rp2040 && uartlink

package main

import (
	"context"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// Link over UART0 on GPIO0/GPIO1 for boards wired to a host UART instead
// of USB. Build with -tags uartlink.
const linkBaud = 250000

var linkUART *uartx.UART

func InitLink() error {
	linkUART = uartx.UART0
	return linkUART.Configure(uartx.UARTConfig{
		BaudRate: linkBaud,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	})
}

// LinkRead blocks until at least one byte arrives
func LinkRead(buf []byte) int {
	n, err := linkUART.RecvSomeContext(context.Background(), buf)
	if err != nil {
		return 0
	}
	return n
}

// A UART has no connection state
func linkReconnected() bool { return false }

func LinkWrite(data []byte) error {
	_, err := linkUART.Write(data)
	return err
}
