package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"

	"blinky/config"
	"blinky/host/board"
	"blinky/host/serial"
	"blinky/host/simboard"
)

var (
	device  = flag.String("device", "", "Serial device path (default: first RP2040/RP2350 found)")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	backend = flag.String("backend", string(serial.BackendTarm), "Serial library: tarm or bugst")
	list    = flag.Bool("list", false, "List serial ports and exit")
	sim     = flag.Bool("sim", false, "Talk to an in-process simulated board")
	timeout = flag.Duration("timeout", time.Second, "Response timeout")
	verbose = flag.Bool("verbose", false, "Print link statistics after each command")
)

func main() {
	flag.Parse()

	if *list {
		if err := listPorts(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("Blinky Host - board console")
	fmt.Println("===========================")
	fmt.Println()

	b, err := connect()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer b.Close()

	b.Unsolicited = func(r *board.Response) { fmt.Printf("  < %s\n", describe(b, r)) }
	printDictionary(b)

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if !runLine(b, parts) {
			fmt.Println("Goodbye!")
			return
		}
		if *verbose {
			st := b.LinkStats()
			fmt.Printf("  link: frames=%d errors=%d resyncs=%d\n", st.Frames, st.Errors, st.Resyncs)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func connect() (*board.Board, error) {
	if *sim {
		sb, err := simboard.New(config.Default())
		if err != nil {
			return nil, err
		}
		go sb.Run(context.Background(), 10)
		fmt.Println("Connected to simulated board")
		b := board.New(sb)
		if err := b.RetrieveDictionary(); err != nil {
			b.Close()
			return nil, fmt.Errorf("retrieve dictionary: %w", err)
		}
		return b, nil
	}

	dev := *device
	if dev == "" {
		found, err := serial.FindBoard()
		if err != nil {
			return nil, err
		}
		dev = found
	}
	cfg := serial.DefaultConfig(dev)
	cfg.Baud = *baud
	cfg.Backend = serial.Backend(*backend)

	fmt.Printf("Connecting to board on %s...\n", dev)
	b, err := board.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	fmt.Println("Connected successfully!")
	return b, nil
}

// runLine executes one console line and returns false on quit
func runLine(b *board.Board, parts []string) bool {
	cmd, rest := parts[0], parts[1:]
	switch cmd {
	case "quit", "exit", "q":
		return false
	case "help", "?":
		printHelp(b)
	case "dict":
		printDictionary(b)
	case "raw":
		raw := b.Raw()
		fmt.Printf("Raw dictionary data (%d bytes):\n%s\n", len(raw), string(raw))
	case "status":
		call(b, "get_status", nil, "status")
	case "button":
		call(b, "get_button", nil, "button")
	case "clock":
		call(b, "get_clock", nil, "clock")
	case "mode":
		if len(rest) != 1 {
			fmt.Println("usage: mode pwm|sequence|static")
			break
		}
		call(b, "set_mode", map[string]string{"mode": rest[0]}, "status")
	default:
		args, err := parseArgs(rest)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		if err := b.Send(cmd, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		for _, r := range b.Drain(100 * time.Millisecond) {
			fmt.Printf("  < %s\n", describe(b, r))
		}
	}
	return true
}

func call(b *board.Board, name string, args map[string]string, response string) {
	r, err := b.Call(name, args, response, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Printf("  < %s\n", describe(b, r))
}

// parseArgs turns "key=value" words into an argument map
func parseArgs(words []string) (map[string]string, error) {
	args := make(map[string]string, len(words))
	for _, w := range words {
		k, v, ok := strings.Cut(w, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q is not key=value", w)
		}
		args[k] = v
	}
	return args, nil
}

// describe renders a response, naming enumerated values
func describe(b *board.Board, r *board.Response) string {
	switch r.Name {
	case "status":
		return fmt.Sprintf("status mode=%s state=%s wave=%d sequence=%d phase=%d period=%d speed=%d",
			b.Enum("mode", r.Values["mode"]), b.Enum("app_state", r.Values["state"]),
			r.Values["wave"], r.Values["sequence"], r.Values["phase"], r.Values["period"], r.Values["speed"])
	case "button":
		return fmt.Sprintf("button state=%s clicks=%d last_click=%d",
			b.Enum("button_state", r.Values["state"]), r.Values["clicks"], r.Values["last_click"])
	case "event":
		return fmt.Sprintf("event %-10s clock=%d value=%d",
			b.Enum("event_kind", r.Values["kind"]), r.Values["clock"], r.Values["value"])
	}
	return r.String()
}

func printDictionary(b *board.Board) {
	d := b.Dictionary()
	if d == nil {
		fmt.Println("No dictionary loaded")
		return
	}
	fmt.Println("\n=== Board Dictionary ===")
	fmt.Printf("App: %s  Version: %s\n", d.App, d.Version)
	fmt.Printf("Build: %s\n", d.BuildVersions)
	fmt.Println("\nConfig:")
	for k, v := range d.Config {
		fmt.Printf("  %s = %s\n", k, v)
	}
	fmt.Printf("\nCommands: %d  Responses: %d  Enumerations: %d\n",
		len(d.Commands), len(d.Responses), len(d.Enumerations))
	fmt.Println("========================")
	fmt.Println()
}

func printHelp(b *board.Board) {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  help           - Show this help message")
	fmt.Println("  dict           - Print dictionary summary")
	fmt.Println("  raw            - Print raw dictionary data")
	fmt.Println("  status         - Show mode, run state and wave settings")
	fmt.Println("  button         - Show button state and click count")
	fmt.Println("  clock          - Show the board tick counter")
	fmt.Println("  mode <name>    - Switch to pwm, sequence or static")
	fmt.Println("  quit/exit/q    - Exit the program")
	fmt.Println("\nBoard commands (name key=value ...):")
	for _, name := range b.CommandNames() {
		if name == "identify" {
			continue
		}
		f, _ := b.Command(name)
		var params []string
		for _, p := range f.Params {
			params = append(params, p.Name+"=")
		}
		fmt.Printf("  %-16s %s\n", name, strings.Join(params, " "))
	}
	fmt.Println()
}

func listPorts() error {
	ports, err := serial.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}
	for _, p := range ports {
		mark := " "
		if p.IsBoard() {
			mark = "*"
		}
		fmt.Printf("%s %s\n", mark, p)
	}
	return nil
}
