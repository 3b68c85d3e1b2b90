package board

import (
	"fmt"
	"strconv"
	"strings"

	"blinky/errcode"
	"blinky/protocol"
)

// ParamKind is how one argument travels on the wire
type ParamKind uint8

const (
	ParamInt   ParamKind = iota // %u %i %c %hu, VLQ encoded
	ParamBytes                  // %*s %.*s, length-prefixed
)

type Param struct {
	Name string
	Kind ParamKind
}

// Format is one dictionary entry: a command or response with its
// argument list.
type Format struct {
	Name   string
	ID     uint16
	Params []Param
}

// ParseFormat parses a dictionary signature such as
// "set_mode mode=%c".
func ParseFormat(sig string, id int) (*Format, error) {
	fields := strings.Fields(sig)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty signature")
	}
	f := &Format{Name: fields[0], ID: uint16(id)}
	for _, field := range fields[1:] {
		name, spec, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("%s: malformed parameter %q", f.Name, field)
		}
		var kind ParamKind
		switch spec {
		case "%u", "%i", "%c", "%hu", "%hi":
			kind = ParamInt
		case "%*s", "%.*s":
			kind = ParamBytes
		default:
			return nil, fmt.Errorf("%s: unsupported type %q for %s", f.Name, spec, name)
		}
		f.Params = append(f.Params, Param{Name: name, Kind: kind})
	}
	return f, nil
}

// Encode appends the arguments named in args. Integer values may be
// numbers or, when enums has an enumeration named after the parameter,
// one of its value names.
func (f *Format) Encode(out protocol.OutputBuffer, args map[string]string, enums map[string]map[string]int) error {
	for _, p := range f.Params {
		v, ok := args[p.Name]
		if !ok {
			return errcode.New(errcode.InvalidParams, f.Name, "missing "+p.Name)
		}
		if p.Kind == ParamBytes {
			protocol.EncodeVLQBytes(out, []byte(v))
			continue
		}
		n, err := parseInt(v, enums[p.Name])
		if err != nil {
			return errcode.New(errcode.InvalidParams, f.Name, p.Name+": "+err.Error())
		}
		protocol.EncodeVLQUint(out, n)
	}
	for name := range args {
		if !f.has(name) {
			return errcode.New(errcode.InvalidParams, f.Name, "unknown parameter "+name)
		}
	}
	return nil
}

func (f *Format) has(name string) bool {
	for _, p := range f.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

func parseInt(s string, enum map[string]int) (uint32, error) {
	if v, ok := enum[s]; ok {
		return uint32(v), nil
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return uint32(n), nil
}

// Response is a decoded response frame
type Response struct {
	Name   string
	ID     uint16
	Values map[string]uint32
	Data   map[string][]byte
	format *Format
}

// Decode reads the arguments of f from data
func (f *Format) Decode(data []byte) (*Response, error) {
	r := &Response{Name: f.Name, ID: f.ID, Values: map[string]uint32{}, Data: map[string][]byte{}, format: f}
	for _, p := range f.Params {
		if p.Kind == ParamBytes {
			b, err := protocol.DecodeVLQBytes(&data)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", f.Name, p.Name, err)
			}
			r.Data[p.Name] = b
			continue
		}
		v, err := protocol.DecodeVLQUint(&data)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", f.Name, p.Name, err)
		}
		r.Values[p.Name] = v
	}
	return r, nil
}

// String renders the response as "name key=value ..." in parameter order
func (r *Response) String() string {
	var sb strings.Builder
	sb.WriteString(r.Name)
	for _, p := range r.format.Params {
		sb.WriteByte(' ')
		sb.WriteString(p.Name)
		sb.WriteByte('=')
		if p.Kind == ParamBytes {
			sb.WriteString(strconv.Quote(string(r.Data[p.Name])))
		} else {
			sb.WriteString(strconv.FormatUint(uint64(r.Values[p.Name]), 10))
		}
	}
	return sb.String()
}
