// Package board is the host side client for the board console: it
// downloads the dictionary, then sends commands and decodes responses by
// name.
package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"blinky/errcode"
	"blinky/host/serial"
	"blinky/protocol"
)

// Dictionary IDs fixed by the firmware so the download can bootstrap
const (
	identifyResponseID = 0
	identifyID         = 1
	identifyChunk      = 40
)

// Dictionary is the parsed board dictionary
type Dictionary struct {
	Version       string                    `json:"version"`
	BuildVersions string                    `json:"build_versions"`
	App           string                    `json:"app"`
	Config        map[string]string         `json:"config"`
	Commands      map[string]int            `json:"commands"`
	Responses     map[string]int            `json:"responses"`
	Enumerations  map[string]map[string]int `json:"enumerations,omitempty"`
}

// Board is a connection to one board
type Board struct {
	transport *protocol.HostTransport

	dict      *Dictionary
	raw       []byte
	commands  map[string]*Format
	responses map[uint16]*Format

	// Unsolicited receives responses skipped while waiting for another
	Unsolicited func(*Response)
}

// New wraps an open port
func New(port io.ReadWriteCloser) *Board {
	return &Board{transport: protocol.NewHostTransport(port)}
}

// Connect opens the serial device and downloads the dictionary
func Connect(cfg *serial.Config) (*Board, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	b := New(port)
	// Give a board that just enumerated time to start its main loop
	time.Sleep(100 * time.Millisecond)
	if err := b.RetrieveDictionary(); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Board) Close() error { return b.transport.Close() }

// RetrieveDictionary downloads the dictionary with identify and indexes
// its commands and responses.
func (b *Board) RetrieveDictionary() error {
	var buf bytes.Buffer
	for offset := uint32(0); ; {
		chunk, err := b.identify(offset)
		if err != nil {
			return fmt.Errorf("dictionary chunk at %d: %w", offset, err)
		}
		buf.Write(chunk)
		offset += uint32(len(chunk))
		if len(chunk) < identifyChunk {
			break
		}
	}
	b.raw = buf.Bytes()

	dict := &Dictionary{}
	if err := json.Unmarshal(b.raw, dict); err != nil {
		return fmt.Errorf("parse dictionary: %w", err)
	}
	return b.index(dict)
}

func (b *Board) index(dict *Dictionary) error {
	b.commands = make(map[string]*Format, len(dict.Commands))
	b.responses = make(map[uint16]*Format, len(dict.Responses))
	for sig, id := range dict.Commands {
		f, err := ParseFormat(sig, id)
		if err != nil {
			return err
		}
		b.commands[f.Name] = f
	}
	for sig, id := range dict.Responses {
		f, err := ParseFormat(sig, id)
		if err != nil {
			return err
		}
		b.responses[f.ID] = f
	}
	b.dict = dict
	return nil
}

func (b *Board) identify(offset uint32) ([]byte, error) {
	err := b.transport.SendCommand(identifyID, func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, offset)
		protocol.EncodeVLQUint(out, identifyChunk)
	})
	if err != nil {
		return nil, err
	}
	for {
		msg, err := b.transport.ReceiveResponse(time.Second)
		if err != nil {
			return nil, err
		}
		id, data, err := msg.CommandID()
		if err != nil {
			return nil, err
		}
		if id != identifyResponseID {
			continue
		}
		got, err := protocol.DecodeVLQUint(&data)
		if err != nil {
			return nil, err
		}
		if got != offset {
			return nil, fmt.Errorf("offset mismatch: asked %d, got %d", offset, got)
		}
		return protocol.DecodeVLQBytes(&data)
	}
}

// Dictionary returns the parsed dictionary, nil before RetrieveDictionary
func (b *Board) Dictionary() *Dictionary { return b.dict }

// Raw returns the dictionary JSON as downloaded
func (b *Board) Raw() []byte { return b.raw }

// CommandNames lists the commands the board accepts, sorted
func (b *Board) CommandNames() []string {
	names := make([]string, 0, len(b.commands))
	for n := range b.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Command returns the format of a command by name
func (b *Board) Command(name string) (*Format, bool) {
	f, ok := b.commands[name]
	return f, ok
}

// Send encodes and sends a command and waits for its ACK
func (b *Board) Send(name string, args map[string]string) error {
	if b.dict == nil {
		return errcode.New(errcode.NotConnected, name, "dictionary not loaded")
	}
	f, ok := b.commands[name]
	if !ok {
		return errcode.New(errcode.UnknownCommand, name, "")
	}
	enc := protocol.NewScratchOutput()
	if err := f.Encode(enc, args, b.dict.Enumerations); err != nil {
		return err
	}
	return b.transport.SendCommand(f.ID, func(out protocol.OutputBuffer) {
		out.Output(enc.Result())
	})
}

// Next decodes the next response from the board
func (b *Board) Next(timeout time.Duration) (*Response, error) {
	msg, err := b.transport.ReceiveResponse(timeout)
	if err != nil {
		return nil, err
	}
	id, data, err := msg.CommandID()
	if err != nil {
		return nil, err
	}
	f, ok := b.responses[id]
	if !ok {
		return nil, fmt.Errorf("response %d not in dictionary", id)
	}
	return f.Decode(data)
}

// Wait returns the next response called name. A command_error received
// first is returned as an error carrying the board's code; other
// responses go to Unsolicited.
func (b *Board) Wait(name string, timeout time.Duration) (*Response, error) {
	deadline := time.Now().Add(timeout)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return nil, errcode.New(errcode.Timeout, name, "no response")
		}
		r, err := b.Next(left)
		if err != nil {
			return nil, err
		}
		switch {
		case r.Name == name:
			return r, nil
		case r.Name == "command_error":
			return nil, errcode.New(errcode.Code(r.Data["code"]), name, "rejected by board")
		case b.Unsolicited != nil:
			b.Unsolicited(r)
		}
	}
}

// Call sends a command and waits for the named response
func (b *Board) Call(name string, args map[string]string, response string, timeout time.Duration) (*Response, error) {
	if err := b.Send(name, args); err != nil {
		return nil, err
	}
	return b.Wait(response, timeout)
}

// Drain collects responses until none arrives within quiet
func (b *Board) Drain(quiet time.Duration) []*Response {
	var out []*Response
	for {
		r, err := b.Next(quiet)
		if err != nil {
			return out
		}
		out = append(out, r)
	}
}

// Enum returns the value name for v in the named enumeration
func (b *Board) Enum(name string, v uint32) string {
	if b.dict != nil {
		for k, n := range b.dict.Enumerations[name] {
			if uint32(n) == v {
				return k
			}
		}
	}
	return fmt.Sprint(v)
}

// LinkStats returns framing counters for received data
func (b *Board) LinkStats() protocol.LinkStats { return b.transport.Stats() }
