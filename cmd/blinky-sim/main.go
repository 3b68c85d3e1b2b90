// Command blinky-sim runs the board firmware on the host with simulated
// pins and draws the LED duty cycles in the terminal. Type c (click),
// h (hold), p/r (press/release) or q (quit) followed by enter.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"time"

	"blinky/config"
	"blinky/core"
	"blinky/host/simboard"
)

var (
	configPath = flag.String("config", "", "Board JSON (default: built-in board)")
	frame      = flag.Duration("frame", 50*time.Millisecond, "Redraw interval")
	duration   = flag.Duration("duration", 0, "Stop after this long (0 = until q)")
	debug      = flag.Bool("debug", false, "Print firmware debug messages to stderr")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
	core.SetDebugEnabled(*debug)
	core.InitAsyncDebug()

	sb, err := simboard.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer sb.Close()

	var light atomic.Value
	light.Store(core.ColorOff)
	sb.Firmware().SetStatusLight(func(on bool, c color.RGBA) {
		light.Store(core.Scale(c, on))
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if *duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	go sb.Run(ctx, 1)
	go readKeys(ctx, cancel, sb, cfg)

	ticker := time.NewTicker(*frame)
	defer ticker.Stop()
	duties := make([]uint8, len(cfg.Pins.LEDs))
	outs := make([]bool, len(cfg.Pins.LEDs))
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			sb.Dispatcher().DumpEvents()
			return
		case <-ticker.C:
			c, _ := light.Load().(color.RGBA)
			d := sb.Dispatcher()
			st := d.Status()
			if st.WaveActive {
				duties = d.Duties(duties)
			} else {
				outs = d.Outputs(outs)
				for i, on := range outs {
					duties[i] = 0
					if on {
						duties[i] = 100
					}
				}
			}
			fmt.Print("\r" + render(st, duties, c))
		}
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath == "" {
		return config.Default(), nil
	}
	data, err := os.ReadFile(*configPath)
	if err != nil {
		return nil, err
	}
	return config.Load(data)
}

// readKeys turns stdin lines into button gestures
func readKeys(ctx context.Context, quit func(), sb *simboard.Board, cfg *config.Config) {
	tick := time.Second / time.Duration(cfg.TickHz)
	click := time.Duration(3*cfg.Button.DebounceTicks) * tick
	hold := time.Duration(cfg.Button.HoldTicks+5*cfg.Button.PollTicks) * tick

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "c":
			gesture(ctx, sb, click)
		case "h":
			gesture(ctx, sb, hold)
		case "p":
			sb.Press()
		case "r":
			sb.Release()
		case "q":
			quit()
			return
		}
	}
}

func gesture(ctx context.Context, sb *simboard.Board, d time.Duration) {
	sb.Press()
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
	sb.Release()
}

// render draws one status line: a bar per LED, the mode and the status
// light colour.
func render(s core.Status, duties []uint8, light color.RGBA) string {
	var sb strings.Builder
	for i, d := range duties {
		n := int(d) / 10
		fmt.Fprintf(&sb, "%d[%s%s] ", i, strings.Repeat("#", n), strings.Repeat(" ", 10-n))
	}
	fmt.Fprintf(&sb, "%-8s %-7s clicks=%d light=%02x%02x%02x t=%d",
		s.Mode, s.State, s.Clicks, light.R, light.G, light.B, s.Now)
	if s.Fault != "" {
		sb.WriteString(" FAULT: " + s.Fault)
	}
	return sb.String()
}
