package board

import (
	"testing"

	"blinky/protocol"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("button state=%c clicks=%c last_click=%u", 7)
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "button" || f.ID != 7 || len(f.Params) != 3 {
		t.Fatalf("unexpected format %+v", f)
	}
	if f.Params[2].Name != "last_click" || f.Params[2].Kind != ParamInt {
		t.Errorf("unexpected param %+v", f.Params[2])
	}

	f, err = ParseFormat("fault reason=%*s", 3)
	if err != nil || f.Params[0].Kind != ParamBytes {
		t.Errorf("Expected a bytes param, got %+v (%v)", f, err)
	}

	for _, bad := range []string{"", "cmd x", "cmd x=%f"} {
		if _, err := ParseFormat(bad, 0); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestEncodeDecodeArgs(t *testing.T) {
	f, _ := ParseFormat("event kind=%c clock=%u value=%u", 9)
	enums := map[string]map[string]int{"kind": {"PRESS": 2}}

	out := protocol.NewScratchOutput()
	err := f.Encode(out, map[string]string{"kind": "PRESS", "clock": "0x10", "value": "4000000000"}, enums)
	if err != nil {
		t.Fatal(err)
	}
	r, err := f.Decode(out.Result())
	if err != nil {
		t.Fatal(err)
	}
	if r.Values["kind"] != 2 || r.Values["clock"] != 16 || r.Values["value"] != 4000000000 {
		t.Errorf("unexpected values %v", r.Values)
	}
	if got := r.String(); got != "event kind=2 clock=16 value=4000000000" {
		t.Errorf("String() = %q", got)
	}
}

func TestDecodeTruncated(t *testing.T) {
	f, _ := ParseFormat("clock clock=%u", 2)
	if _, err := f.Decode(nil); err == nil {
		t.Error("Expected an error decoding an empty payload")
	}
}
