//go:build rp2040 || rp2350

package main

import (
	"device/arm"
	"machine"
)

// InitTicker starts SysTick at tickHz. Every interrupt advances the
// dispatcher by one tick.
func InitTicker(tickHz uint32) error {
	return arm.SetupSystemTimer(machine.CPUFrequency() / tickHz)
}

//export SysTick_Handler
func sysTickHandler() {
	if dispatcher != nil {
		dispatcher.Tick()
	}
}
