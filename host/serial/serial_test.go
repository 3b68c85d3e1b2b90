package serial

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyACM0")
	if cfg.Device != "/dev/ttyACM0" || cfg.Backend != BackendTarm {
		t.Errorf("unexpected default config %+v", cfg)
	}
	if cfg.ReadTimeout == 0 {
		t.Errorf("Expected a read timeout so the reader can notice Close")
	}
}

func TestOpenRejects(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("Expected an error for a nil config")
	}
	cfg := DefaultConfig("/dev/null")
	cfg.Backend = "carrier-pigeon"
	if _, err := Open(cfg); err == nil {
		t.Error("Expected an error for an unknown backend")
	}
}

func TestPortInfoIsBoard(t *testing.T) {
	tests := []struct {
		info PortInfo
		want bool
	}{
		{PortInfo{Name: "/dev/ttyACM0", USB: true, VID: "2e8a", PID: "000a"}, true},
		{PortInfo{Name: "/dev/ttyUSB0", USB: true, VID: "0403", PID: "6001"}, false},
		{PortInfo{Name: "/dev/ttyS0"}, false},
	}
	for _, tt := range tests {
		if got := tt.info.IsBoard(); got != tt.want {
			t.Errorf("%s: IsBoard() = %v, want %v", tt.info.Name, got, tt.want)
		}
	}
}
