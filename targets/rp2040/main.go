//go:build rp2040 || rp2350

package main

import (
	"machine"
	"runtime"
	"time"

	"blinky/config"
	"blinky/core"
)

const version = "0.3.0"

var (
	dispatcher *core.Dispatcher
	firmware   *core.Firmware

	// Debug counters
	readerRestarts uint32
)

func main() {
	// Clear any watchdog state left by a previous reset
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitDebugUART()
	core.SetDebugWriter(DebugPrintln)
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	cfg, err := config.Board()
	if err != nil {
		// Board falls back to the built-in reference board
		core.DebugPrintln("[CONFIG] " + err.Error())
	}

	gpio := NewRPGPIODriver()
	bank, err := core.NewPinBank(gpio, cfg.LEDPins(), cfg.Pins.LEDActiveLow)
	if err != nil {
		panic("led pins: " + err.Error())
	}
	button, err := core.NewPinInput(gpio, core.GPIOPin(cfg.Pins.Button), cfg.ButtonPull())
	if err != nil {
		panic("button pin: " + err.Error())
	}
	dispatcher = core.NewDispatcher(bank, button, cfg.Options())

	linkErr := InitLink()
	firmware = core.NewFirmware(dispatcher, core.BuildInfo{
		Version:       version,
		BuildVersions: runtime.Version(),
		MCU:           mcuName,
	}, cfg.TickHz, LinkWrite)
	firmware.Console.SetResetHandler(watchdogReset)
	if light := InitStatusLight(cfg); light != nil {
		firmware.SetStatusLight(light)
	}

	dispatcher.Start()
	if linkErr != nil {
		core.DebugPrintln("[BOOT] link: " + linkErr.Error())
		dispatcher.Fault("link: " + linkErr.Error())
	}
	if err := InitTicker(cfg.TickHz); err != nil {
		dispatcher.Fault("systick: " + err.Error())
	}
	core.DebugAsync("[BOOT] " + mcuName + " mode " + dispatcher.Mode().String())

	go linkReaderLoop()

	for {
		// Firmware.Poll recovers from handler panics itself
		firmware.Poll()
		time.Sleep(100 * time.Microsecond)
	}
}

// linkReaderLoop moves received bytes into the firmware input buffer
func linkReaderLoop() {
	// Recover from panics to prevent a firmware crash
	defer func() {
		if r := recover(); r != nil {
			readerRestarts++
			time.Sleep(100 * time.Millisecond)
			go linkReaderLoop()
		}
	}()

	var buf [64]byte
	for {
		n := LinkRead(buf[:])
		if n > 0 && linkReconnected() {
			// Start the new session from a clean link
			firmware.Reset()
		}
		for p := buf[:n]; len(p) > 0; {
			w := firmware.Feed(p)
			p = p[w:]
			if w == 0 {
				// Main loop is behind; give it time to drain
				time.Sleep(time.Millisecond)
			}
		}
		// Yield to avoid a busy loop
		time.Sleep(100 * time.Microsecond)
	}
}

// watchdogReset reboots through the watchdog, which also re-enumerates USB
func watchdogReset() {
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1})
	if err != nil {
		return
	}
	if err := machine.Watchdog.Start(); err != nil {
		return
	}
	for {
		time.Sleep(time.Millisecond)
	}
}
