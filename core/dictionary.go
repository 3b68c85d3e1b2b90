package core

import (
	"sort"
	"sync"
)

// BuildInfo identifies the firmware in the dictionary
type BuildInfo struct {
	Version       string
	BuildVersions string
	MCU           string
}

// Dictionary describes the link to the host: every command and response
// with its ID, board constants and enumerations. It is served as JSON in
// chunks by the identify command.
type Dictionary struct {
	mu           sync.RWMutex
	reg          *CommandRegistry
	info         BuildInfo
	constants    map[string]string
	enumerations map[string][]string
	cached       []byte
}

func NewDictionary(reg *CommandRegistry, info BuildInfo) *Dictionary {
	return &Dictionary{
		reg:          reg,
		info:         info,
		constants:    make(map[string]string),
		enumerations: make(map[string][]string),
	}
}

// AddConstant exposes a numeric board constant
func (d *Dictionary) AddConstant(name string, value uint32) {
	d.AddConstantString(name, utoa(value))
}

func (d *Dictionary) AddConstantString(name, value string) {
	d.mu.Lock()
	d.constants[name] = value
	d.cached = nil
	d.mu.Unlock()
}

// AddEnumeration maps each value name to its index
func (d *Dictionary) AddEnumeration(name string, values []string) {
	d.mu.Lock()
	d.enumerations[name] = append([]string(nil), values...)
	d.cached = nil
	d.mu.Unlock()
}

// Generate returns the JSON dictionary, building it on first use
func (d *Dictionary) Generate() []byte {
	cmds := d.reg.Commands()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cached == nil {
		d.cached = d.buildJSON(cmds)
	}
	return d.cached
}

func (d *Dictionary) buildJSON(cmds []*Command) []byte {
	b := make([]byte, 0, 1024)
	b = append(b, `{"version":`...)
	b = appendJSONString(b, d.info.Version)
	b = append(b, `,"build_versions":`...)
	b = appendJSONString(b, d.info.BuildVersions)
	b = append(b, `,"app":`...)
	b = appendJSONString(b, "blinky")

	b = append(b, `,"config":{`...)
	for i, name := range sortedKeys(d.constants) {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendJSONString(b, name)
		b = append(b, ':')
		b = appendJSONString(b, d.constants[name])
	}

	b = append(b, `},"commands":{`...)
	b = appendCommands(b, cmds, false)
	b = append(b, `},"responses":{`...)
	b = appendCommands(b, cmds, true)

	b = append(b, `},"enumerations":{`...)
	for i, name := range sortedKeys(d.enumerations) {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendJSONString(b, name)
		b = append(b, ":{"...)
		for j, v := range d.enumerations[name] {
			if j > 0 {
				b = append(b, ',')
			}
			b = appendJSONString(b, v)
			b = append(b, ':')
			b = append(b, utoa(uint32(j))...)
		}
		b = append(b, '}')
	}
	return append(b, "}}"...)
}

func appendCommands(b []byte, cmds []*Command, responses bool) []byte {
	first := true
	for _, c := range cmds {
		if c.IsResponse() != responses {
			continue
		}
		if !first {
			b = append(b, ',')
		}
		first = false
		b = appendJSONString(b, c.Signature())
		b = append(b, ':')
		b = append(b, utoa(uint32(c.ID))...)
	}
	return b
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// appendJSONString quotes s. Dictionary strings are ASCII identifiers and
// format strings, so only quotes and backslashes need escaping.
func appendJSONString(b []byte, s string) []byte {
	b = append(b, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b = append(b, '\\')
		}
		b = append(b, c)
	}
	return append(b, '"')
}

// GetChunk returns a copy of count bytes of the dictionary from offset.
// Past the end it returns an empty chunk, which ends the host's download.
func (d *Dictionary) GetChunk(offset uint32, count uint8) []byte {
	data := d.Generate()
	if offset >= uint32(len(data)) {
		return []byte{}
	}
	end := offset + uint32(count)
	if end > uint32(len(data)) {
		end = uint32(len(data))
	}
	chunk := make([]byte, end-offset)
	copy(chunk, data[offset:end])
	return chunk
}
